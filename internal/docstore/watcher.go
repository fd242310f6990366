package docstore

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventKind describes the type of file change detected.
type EventKind int

const (
	EventModified EventKind = iota // document written or replaced
	EventRemoved                   // document deleted or renamed away
)

// Event reports a change to a watched document.
type Event struct {
	Kind EventKind
	Path string
}

// Watcher monitors a single document file. The parent directory is watched
// so that atomic replace-by-rename writes are observed too.
type Watcher struct {
	Path   string
	Events <-chan Event // Read-only external channel

	events   chan Event
	done     chan struct{}
	watcher  *fsnotify.Watcher
	debounce time.Duration
	started  bool
	stopOnce sync.Once
}

// NewWatcher creates a watcher for the document at path.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Event, 16)
	return &Watcher{
		Path:     abs,
		Events:   ch,
		events:   ch,
		done:     make(chan struct{}),
		watcher:  fw,
		debounce: 100 * time.Millisecond,
	}, nil
}

// Start begins watching the document. On failure the underlying watcher is
// released.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.Path)); err != nil {
		w.watcher.Close()
		return err
	}
	w.started = true
	go w.loop()
	return nil
}

// Stop closes the watcher and the Events channel. It may be called more
// than once, and without a successful Start.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.watcher.Close()
		if w.started {
			<-w.done
		}
		close(w.events)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	var (
		pending  bool
		lastSeen time.Time
		lastKind EventKind
	)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if pending {
					w.emit(lastKind)
				}
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			switch {
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				lastKind = EventModified
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				lastKind = EventRemoved
			default:
				continue
			}
			pending = true
			lastSeen = time.Now()

		case <-ticker.C:
			if pending && time.Since(lastSeen) >= w.debounce {
				w.emit(lastKind)
				pending = false
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the next event re-syncs.
		}
	}
}

func (w *Watcher) emit(kind EventKind) {
	select {
	case w.events <- Event{Kind: kind, Path: w.Path}:
	default:
		// Consumer is behind; it will re-read the document on the queued event.
	}
}
