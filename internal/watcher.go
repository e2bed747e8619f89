package internal

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher wraps an fsnotify watcher on one folder and reports media files
// that appear in it, either created or moved in.
type Watcher struct {
	watcher *fsnotify.Watcher
	cfg     *Config
	events  chan Candidate
	errors  chan error
	done    chan struct{}
}

// NewWatcher watches dir (not its subdirectories) for new media files.
func NewWatcher(dir string, cfg *Config) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}
	if err := fsWatcher.Add(abs); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: fsWatcher,
		cfg:     cfg,
		events:  make(chan Candidate, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}
	go w.processEvents()
	return w, nil
}

// processEvents filters raw fsnotify events down to media-file creations
func (w *Watcher) processEvents() {
	defer close(w.events)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// A rename into the folder arrives as Create for the new name.
			if !event.Has(fsnotify.Create) {
				continue
			}
			c, err := w.cfg.NewCandidate(event.Name)
			if err != nil || c.Class == ClassOther {
				continue
			}
			select {
			case w.events <- c:
			case <-w.done:
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				// full
			}

		case <-w.done:
			return
		}
	}
}

// Events returns new media files; it is closed when the watcher stops.
func (w *Watcher) Events() <-chan Candidate {
	return w.events
}

// Errors reports fsnotify failures; errors beyond the buffer are dropped.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops event delivery and releases the fsnotify watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
