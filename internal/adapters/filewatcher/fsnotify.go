// Package filewatcher provides file system monitoring adapters.
// Adapter implementing ports.FileWatcher.
package filewatcher

import (
	"context"
	"log"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/0xcro3dile/snapsolve/internal/domain/ports"
)

// FSNotifyWatcher implements ports.FileWatcher using fsnotify.
// Only files whose base name matches one of names are reported.
type FSNotifyWatcher struct {
	watcher *fsnotify.Watcher
	names   []string
}

// NewFSNotifyWatcher creates a watcher reporting changes to the given file names.
// A name also matches its SQLite companions (name-wal, name-journal).
func NewFSNotifyWatcher(names ...string) (*FSNotifyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	bases := make([]string, len(names))
	for i, n := range names {
		bases[i] = filepath.Base(n)
	}
	return &FSNotifyWatcher{
		watcher: w,
		names:   bases,
	}, nil
}

// ForDocument watches the directory holding path for changes to that file.
// The directory is watched rather than the file, since atomic rename
// replaces the inode.
func ForDocument(ctx context.Context, path string) (*FSNotifyWatcher, <-chan ports.FileEvent, error) {
	w, err := NewFSNotifyWatcher(path)
	if err != nil {
		return nil, nil, err
	}
	events, err := w.Watch(ctx, filepath.Dir(path))
	if err != nil {
		w.Stop()
		return nil, nil, err
	}
	return w, events, nil
}

// Watch starts monitoring the directory and emits events.
func (w *FSNotifyWatcher) Watch(ctx context.Context, dir string) (<-chan ports.FileEvent, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	events := make(chan ports.FileEvent, 100)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !w.matches(event.Name) {
					continue
				}

				var op ports.FileOperation
				switch {
				case event.Op.Has(fsnotify.Create):
					op = ports.FileCreated
				case event.Op.Has(fsnotify.Write):
					op = ports.FileModified
				case event.Op.Has(fsnotify.Remove):
					op = ports.FileDeleted
				case event.Op.Has(fsnotify.Rename):
					op = ports.FileRenamed
				default:
					continue
				}

				select {
				case events <- ports.FileEvent{Path: event.Name, Operation: op}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[WARN] file watcher: %v", err)
			}
		}
	}()

	return events, nil
}

// Stop stops the watcher.
func (w *FSNotifyWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *FSNotifyWatcher) matches(path string) bool {
	if len(w.names) == 0 {
		return true
	}
	base := filepath.Base(path)
	for _, n := range w.names {
		if base == n || strings.HasPrefix(base, n+"-") {
			return true
		}
	}
	return false
}
