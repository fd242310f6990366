package docstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/papapumpkin/srvxml/internal/log"
	"github.com/papapumpkin/srvxml/internal/serverxml"
)

// ErrConflict is returned by Restore when the document no longer holds the
// bytes the caller expected.
var ErrConflict = errors.New("document changed since the recorded edit")

// Change describes one successful edit that modified a document.
type Change struct {
	Document string
	Op       serverxml.Op
	Before   []byte
	After    []byte
	At       time.Time
}

// Recorder receives every change written by an Editor.
type Recorder interface {
	Record(ctx context.Context, c Change) error
}

// Result reports the outcome of one Apply call.
type Result struct {
	Op      serverxml.Op
	Changed bool // false for no-op edits such as adding a declared feature
	Data    []byte
}

// Editor applies serverxml operations to documents held in a Store.
type Editor struct {
	store    Store
	recorder Recorder
	logger   zerolog.Logger
	now      func() time.Time
}

// Option configures an Editor.
type Option func(*Editor)

// WithRecorder records every change written by the editor.
func WithRecorder(r Recorder) Option {
	return func(e *Editor) { e.recorder = r }
}

// WithLogger overrides the editor's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// NewEditor returns an Editor over store.
func NewEditor(store Store, opts ...Option) *Editor {
	e := &Editor{
		store:  store,
		logger: log.WithComponent("docstore"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Read returns the current bytes of the named document.
func (e *Editor) Read(ctx context.Context, name string) ([]byte, error) {
	return e.store.Read(ctx, name)
}

// Apply reads the named document, applies op and writes the result back.
// When op fails nothing is written and the error carries the document name.
func (e *Editor) Apply(ctx context.Context, name string, op serverxml.Op) (Result, error) {
	before, err := e.store.Read(ctx, name)
	if err != nil {
		return Result{}, err
	}

	after, err := op.Apply(before)
	if err != nil {
		var ee *serverxml.EditError
		if errors.As(err, &ee) && ee.Document == "" {
			ee.Document = name
		}
		return Result{}, err
	}

	if bytes.Equal(before, after) {
		e.logger.Debug().Str(log.FieldPath, name).Str(log.FieldOp, op.String()).Msg("document unchanged")
		return Result{Op: op, Data: after}, nil
	}

	if err := e.store.Write(ctx, name, after); err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	e.logger.Info().
		Str(log.FieldPath, name).
		Str(log.FieldOp, string(op.Kind)).
		Str(log.FieldFeature, op.Arg).
		Msg("document updated")

	if e.recorder != nil {
		c := Change{Document: name, Op: op, Before: before, After: after, At: e.now()}
		if err := e.recorder.Record(ctx, c); err != nil {
			e.logger.Warn().Err(err).Str(log.FieldPath, name).Msg("recording change failed")
		}
	}
	return Result{Op: op, Changed: true, Data: after}, nil
}

// ApplyAll runs each op as its own read-mutate-write cycle, stopping at the
// first failure. Results for the ops that completed are returned with the error.
func (e *Editor) ApplyAll(ctx context.Context, name string, ops []serverxml.Op) ([]Result, error) {
	results := make([]Result, 0, len(ops))
	for _, op := range ops {
		r, err := e.Apply(ctx, name, op)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

// Restore replaces the document with data, provided it still holds expect.
func (e *Editor) Restore(ctx context.Context, name string, expect, data []byte) error {
	current, err := e.store.Read(ctx, name)
	if err != nil {
		return err
	}
	if !bytes.Equal(current, expect) {
		return fmt.Errorf("%w: %s", ErrConflict, name)
	}
	if err := e.store.Write(ctx, name, data); err != nil {
		return err
	}
	e.logger.Info().Str(log.FieldPath, name).Msg("document restored")
	return nil
}
