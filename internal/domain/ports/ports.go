// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions; adapters implement them.
package ports

import (
	"context"
	"time"

	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
)

// EntryStore persists the ordered list of entries.
// Callers load, mutate in memory and save the full list; Append does exactly that.
type EntryStore interface {
	// Init creates an empty document if none exists.
	Init(ctx context.Context) error

	// Load returns every entry in insertion order.
	Load(ctx context.Context) ([]entities.Entry, error)

	// Save overwrites the document with entries.
	Save(ctx context.Context, entries []entities.Entry) error

	// Append adds one entry at the end of the document.
	Append(ctx context.Context, entry entities.Entry) error

	// Path is the on-disk location of the document, "" if none.
	Path() string

	Close() error
}

// ScreenCapturer grabs the screen into the images directory.
type ScreenCapturer interface {
	// Capture writes a new image and returns its filename.
	Capture(ctx context.Context) (string, error)
}

// ImageReader reads back a captured image.
type ImageReader interface {
	ReadImage(filename string) ([]byte, error)
}

// ModelClient talks to the local inference endpoint.
type ModelClient interface {
	// AnalyzeImage sends a base64 image with the instruction prompt to the vision model.
	AnalyzeImage(ctx context.Context, base64Image string) (string, error)

	// Solve asks the coding model to solve an extracted problem description.
	Solve(ctx context.Context, problem string) (string, error)
}

// Clock is the loop's source of time, swappable in tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
	FileRenamed
)
