package docstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	s := FileStore{Root: dir}

	if _, err := s.Read(ctx, "server.xml"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read missing error = %v, want ErrNotFound", err)
	}
	if err := s.Write(ctx, "server.xml", []byte("<server/>")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read(ctx, "server.xml")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "<server/>" {
		t.Errorf("Read = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "server.xml")); err != nil {
		t.Errorf("file not created under root: %v", err)
	}
}

func TestFileStore_KeepsPermissions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "server.xml")
	if err := os.WriteFile(path, []byte("<server/>"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := (FileStore{}).Write(ctx, path, []byte("<server></server>")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestFileStore_RejectsNonXML(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := FileStore{Root: t.TempDir()}
	if _, err := s.Read(ctx, "server.txt"); !errors.Is(err, ErrNotXML) {
		t.Errorf("Read error = %v, want ErrNotXML", err)
	}
	if err := s.Write(ctx, "server.json", nil); !errors.Is(err, ErrNotXML) {
		t.Errorf("Write error = %v, want ErrNotXML", err)
	}
}

func TestFileStore_CanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (FileStore{}).Read(ctx, "server.xml"); !errors.Is(err, context.Canceled) {
		t.Errorf("Read error = %v, want context.Canceled", err)
	}
}

func TestMemStore_CopiesBytes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	seed := []byte("<server/>")
	m := NewMemStore(map[string][]byte{"a.xml": seed})
	seed[1] = 'X'

	got, _ := m.Read(ctx, "a.xml")
	if string(got) != "<server/>" {
		t.Errorf("seed mutation leaked into store: %q", got)
	}
	got[1] = 'Y'
	again, _ := m.Read(ctx, "a.xml")
	if string(again) != "<server/>" {
		t.Errorf("read mutation leaked into store: %q", again)
	}
	if _, err := m.Read(ctx, "missing.xml"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read missing error = %v", err)
	}
}
