// Package journal keeps a local history of document edits in SQLite so
// that the most recent change to a document can be listed and undone.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/srvxml/internal/docstore"
	"github.com/papapumpkin/srvxml/internal/serverxml"
)

// ErrEmpty is returned when a document has no undoable entries.
var ErrEmpty = errors.New("no recorded edits")

const schema = `
CREATE TABLE IF NOT EXISTS edits (
    id         TEXT PRIMARY KEY,
    seq        INTEGER NOT NULL,
    document   TEXT NOT NULL,
    kind       TEXT NOT NULL,
    arg        TEXT NOT NULL DEFAULT '',
    before_doc BLOB NOT NULL,
    after_doc  BLOB NOT NULL,
    undone     INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS edits_document_seq ON edits (document, seq);
`

// Entry is one recorded edit.
type Entry struct {
	ID       string
	Document string
	Op       serverxml.Op
	Before   []byte
	After    []byte
	Undone   bool
	At       time.Time
}

// Journal implements docstore.Recorder on a SQLite database.
type Journal struct {
	db *sql.DB
}

var _ docstore.Recorder = (*Journal)(nil)

// Open opens (or creates) the journal database at path.
func Open(ctx context.Context, path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("journal: create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores a change. Document names are stored as absolute paths when
// they resolve on the local file system.
func (j *Journal) Record(ctx context.Context, c docstore.Change) error {
	const q = `
		INSERT INTO edits (id, seq, document, kind, arg, before_doc, after_doc, created_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM edits), ?, ?, ?, ?, ?, ?)`
	at := c.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := j.db.ExecContext(ctx, q,
		uuid.NewString(), documentKey(c.Document), string(c.Op.Kind), c.Op.Arg,
		c.Before, c.After, at.UTC())
	if err != nil {
		return fmt.Errorf("journal: record %s: %w", c.Op, err)
	}
	return nil
}

// List returns up to limit entries for document, newest first. A limit of
// zero or less returns every entry.
func (j *Journal) List(ctx context.Context, document string, limit int) ([]Entry, error) {
	q := `SELECT id, document, kind, arg, before_doc, after_doc, undone, created_at
		FROM edits WHERE document = ? ORDER BY seq DESC`
	args := []any{documentKey(document)}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: list: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: list: %w", err)
	}
	return entries, nil
}

// LastActive returns the newest entry for document that has not been undone.
func (j *Journal) LastActive(ctx context.Context, document string) (Entry, error) {
	const q = `SELECT id, document, kind, arg, before_doc, after_doc, undone, created_at
		FROM edits WHERE document = ? AND undone = 0 ORDER BY seq DESC LIMIT 1`
	row := j.db.QueryRowContext(ctx, q, documentKey(document))
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w for %s", ErrEmpty, document)
	}
	return e, err
}

// MarkUndone flags an entry so it is skipped by LastActive.
func (j *Journal) MarkUndone(ctx context.Context, id string) error {
	res, err := j.db.ExecContext(ctx, "UPDATE edits SET undone = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("journal: mark undone %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("journal: entry %s not found", id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e      Entry
		kind   string
		undone int
	)
	if err := s.Scan(&e.ID, &e.Document, &kind, &e.Op.Arg, &e.Before, &e.After, &undone, &e.At); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("journal: scan entry: %w", err)
	}
	e.Op.Kind = serverxml.Kind(kind)
	e.Undone = undone != 0
	return e, nil
}

func documentKey(name string) string {
	if abs, err := filepath.Abs(name); err == nil {
		return abs
	}
	return name
}

// Undo restores the document to its state before the newest active entry.
// It refuses with docstore.ErrConflict when the document was changed after
// that entry was recorded.
func (j *Journal) Undo(ctx context.Context, ed *docstore.Editor, document string) (Entry, error) {
	e, err := j.LastActive(ctx, document)
	if err != nil {
		return Entry{}, err
	}
	if err := ed.Restore(ctx, document, e.After, e.Before); err != nil {
		return Entry{}, err
	}
	if err := j.MarkUndone(ctx, e.ID); err != nil {
		return Entry{}, err
	}
	e.Undone = true
	return e, nil
}
