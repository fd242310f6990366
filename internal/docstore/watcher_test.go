package docstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testDoc = "<server>\n  <featureManager/>\n</server>\n"

// startWatcher creates server.xml in a temp dir and starts watching it.
func startWatcher(t *testing.T) (*Watcher, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "server.xml")
	if err := os.WriteFile(path, []byte(testDoc), 0o644); err != nil {
		t.Fatalf("failed to create document: %v", err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(w.Stop)
	return w, path
}

func waitEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}
	return Event{}
}

func TestWatcher_DetectsWrite(t *testing.T) {
	w, path := startWatcher(t)

	if err := os.WriteFile(path, []byte("<server/>\n"), 0o644); err != nil {
		t.Fatalf("failed to update document: %v", err)
	}

	ev := waitEvent(t, w)
	if ev.Kind != EventModified {
		t.Errorf("expected EventModified, got %d", ev.Kind)
	}
	if ev.Path != w.Path {
		t.Errorf("event path = %q, want %q", ev.Path, w.Path)
	}
}

func TestWatcher_DetectsAtomicReplace(t *testing.T) {
	w, path := startWatcher(t)

	if err := (FileStore{}).Write(context.Background(), path, []byte("<server/>\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// The rename lands the new file on the watched name.
	if ev := waitEvent(t, w); ev.Kind != EventModified {
		t.Errorf("expected EventModified after replace, got %d", ev.Kind)
	}
}

func TestWatcher_DetectsRemoval(t *testing.T) {
	w, path := startWatcher(t)

	if err := os.Remove(path); err != nil {
		t.Fatalf("failed to remove document: %v", err)
	}

	if ev := waitEvent(t, w); ev.Kind != EventRemoved {
		t.Errorf("expected EventRemoved, got %d", ev.Kind)
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	w, path := startWatcher(t)

	sibling := filepath.Join(filepath.Dir(path), "bootstrap.properties")
	if err := os.WriteFile(sibling, []byte("x=1\n"), 0o644); err != nil {
		t.Fatalf("failed to create sibling: %v", err)
	}

	select {
	case ev := <-w.Events:
		t.Errorf("unexpected event for sibling file: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StopClosesEvents(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(filepath.Join(dir, "server.xml"))
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	w.Stop()

	select {
	case _, ok := <-w.Events:
		if ok {
			t.Error("expected Events to be closed after Stop")
		}
	case <-time.After(time.Second):
		t.Fatal("Events not closed after Stop")
	}
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "server.xml"))
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		w.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without Start")
	}
	if _, ok := <-w.Events; ok {
		t.Error("expected Events to be closed")
	}
}

func TestWatcher_StartFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-dir", "server.xml")
	w, err := NewWatcher(missing)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Start(); err == nil {
		t.Fatal("expected Start to fail for a missing directory")
	}

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked after failed Start")
	}
}
