package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"

	"github.com/kbinani/screenshot"

	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
)

// DisplayCapturer grabs a whole display with kbinani/screenshot and
// stores it as PNG.
type DisplayCapturer struct {
	*ImageDir
	display int
	grab    func(display int) (image.Image, error)
}

// NewDisplayCapturer creates a capturer for the given display index (0 = primary).
func NewDisplayCapturer(dir *ImageDir, display int) *DisplayCapturer {
	return &DisplayCapturer{
		ImageDir: dir,
		display:  display,
		grab:     grabDisplay,
	}
}

// Capture writes a new screenshot and returns its filename.
func (c *DisplayCapturer) Capture(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &entities.CaptureError{Op: "grabbing display", Err: err}
	}

	img, err := c.grab(c.display)
	if err != nil {
		return "", &entities.CaptureError{Op: fmt.Sprintf("grabbing display %d", c.display), Err: err}
	}

	name, full, err := c.reserve()
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", &entities.CaptureError{Op: "creating " + name, Err: err}
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(full)
		return "", &entities.CaptureError{Op: "encoding " + name, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", &entities.CaptureError{Op: "writing " + name, Err: err}
	}

	log.Printf("[DEBUG] Screenshot saved: %s", name)
	return name, nil
}

// Displays returns the number of active displays.
func Displays() int {
	return screenshot.NumActiveDisplays()
}

func grabDisplay(display int) (image.Image, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, errors.New("no active displays")
	}
	if display < 0 || display >= n {
		return nil, fmt.Errorf("display %d out of range (have %d)", display, n)
	}

	img, err := screenshot.CaptureRect(screenshot.GetDisplayBounds(display))
	if err != nil {
		return nil, err
	}
	return img, nil
}
