// Package docstore reads and replaces server documents on behalf of the
// editor. A Store only moves bytes; Editor runs one read-mutate-write cycle
// per call and never writes when the mutation fails.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/renameio/v2"
)

// ErrNotFound is returned when a named document does not exist.
var ErrNotFound = errors.New("document not found")

// ErrNotXML is returned by FileStore for paths without an .xml extension.
var ErrNotXML = errors.New("document must be an .xml file")

// Store reads a document's current bytes and accepts replacement bytes.
type Store interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
}

// FileStore stores documents on the local file system. Names are paths;
// relative names resolve against Root when it is set.
type FileStore struct {
	Root string
}

func (s FileStore) path(name string) (string, error) {
	if !strings.EqualFold(filepath.Ext(name), ".xml") {
		return "", fmt.Errorf("%w: %s", ErrNotXML, name)
	}
	if s.Root != "" && !filepath.IsAbs(name) {
		name = filepath.Join(s.Root, name)
	}
	return filepath.Clean(name), nil
}

// Read returns the file contents.
func (s FileStore) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	return data, nil
}

// Write atomically replaces the file, keeping its permission bits. The
// previous contents stay in place if any step fails.
func (s FileStore) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(name)
	if err != nil {
		return err
	}
	perm := os.FileMode(0o644)
	if info, err := os.Stat(p); err == nil {
		perm = info.Mode().Perm()
	}
	if err := renameio.WriteFile(p, data, perm); err != nil {
		return fmt.Errorf("writing %s: %w", p, err)
	}
	return nil
}

// MemStore keeps documents in memory. It is safe for concurrent use.
type MemStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemStore returns a MemStore seeded with docs.
func NewMemStore(docs map[string][]byte) *MemStore {
	m := &MemStore{docs: make(map[string][]byte, len(docs))}
	for name, data := range docs {
		m.docs[name] = append([]byte(nil), data...)
	}
	return m
}

// Read returns a copy of the stored bytes.
func (m *MemStore) Read(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.docs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return append([]byte(nil), data...), nil
}

// Write stores a copy of data.
func (m *MemStore) Write(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs == nil {
		m.docs = make(map[string][]byte)
	}
	m.docs[name] = append([]byte(nil), data...)
	return nil
}
