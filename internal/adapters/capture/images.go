// Package capture provides screen capture adapters.
// Adapters implementing ports.ScreenCapturer and ports.ImageReader.
package capture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
)

// DefaultDir is where screenshots land when no directory is configured.
const DefaultDir = "./images"

// ImageDir is the directory screenshots are written to and read back from.
type ImageDir struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// NewImageDir creates an ImageDir rooted at path.
func NewImageDir(path string) *ImageDir {
	if path == "" {
		path = DefaultDir
	}
	return &ImageDir{path: path, now: time.Now}
}

// Path returns the directory location.
func (d *ImageDir) Path() string {
	return d.path
}

// Init creates the directory if it does not exist.
func (d *ImageDir) Init() error {
	if err := os.MkdirAll(d.path, 0755); err != nil {
		return &entities.CaptureError{Op: "creating " + d.path, Err: err}
	}
	return nil
}

// ReadImage reads a screenshot by bare filename.
func (d *ImageDir) ReadImage(filename string) ([]byte, error) {
	if filename == "" || filepath.Base(filename) != filename {
		return nil, &entities.CaptureError{Op: "reading image", Err: fmt.Errorf("invalid filename %q", filename)}
	}
	data, err := os.ReadFile(filepath.Join(d.path, filename))
	if err != nil {
		return nil, &entities.CaptureError{Op: "reading " + filename, Err: err}
	}
	return data, nil
}

// reserve picks a fresh screenshot-<ms>.png name, adding -N when the
// millisecond name is already taken.
func (d *ImageDir) reserve() (string, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.Init(); err != nil {
		return "", "", err
	}

	base := fmt.Sprintf("screenshot-%d", d.now().UnixMilli())
	name := base + ".png"
	for i := 1; ; i++ {
		full := filepath.Join(d.path, name)
		_, err := os.Stat(full)
		if errors.Is(err, os.ErrNotExist) {
			return name, full, nil
		}
		if err != nil {
			return "", "", &entities.CaptureError{Op: "checking " + name, Err: err}
		}
		name = fmt.Sprintf("%s-%d.png", base, i)
	}
}
