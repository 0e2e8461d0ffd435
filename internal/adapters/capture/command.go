package capture

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
)

// OutputPlaceholder marks the argument replaced by the target file path.
const OutputPlaceholder = "{output}"

// CommandCapturer runs an external screenshot tool such as grim, scrot or
// screencapture. The tool must write a PNG to the {output} path.
type CommandCapturer struct {
	*ImageDir
	argv []string
}

// NewCommandCapturer creates a capturer that runs argv. If no argument
// contains {output}, the path is appended as the last argument.
func NewCommandCapturer(dir *ImageDir, argv []string) (*CommandCapturer, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, errors.New("capture command is empty")
	}
	return &CommandCapturer{ImageDir: dir, argv: argv}, nil
}

// Capture writes a new screenshot and returns its filename.
func (c *CommandCapturer) Capture(ctx context.Context) (string, error) {
	name, full, err := c.reserve()
	if err != nil {
		return "", err
	}

	args := make([]string, 0, len(c.argv))
	substituted := false
	for _, a := range c.argv[1:] {
		if strings.Contains(a, OutputPlaceholder) {
			a = strings.ReplaceAll(a, OutputPlaceholder, full)
			substituted = true
		}
		args = append(args, a)
	}
	if !substituted {
		args = append(args, full)
	}

	cmd := exec.CommandContext(ctx, c.argv[0], args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(full)
		msg := strings.TrimSpace(string(output))
		if msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return "", &entities.CaptureError{Op: "running " + c.argv[0], Err: err}
	}

	info, err := os.Stat(full)
	if err != nil {
		return "", &entities.CaptureError{Op: c.argv[0] + " produced no file", Err: err}
	}
	if info.Size() == 0 {
		os.Remove(full)
		return "", &entities.CaptureError{Op: c.argv[0] + " produced an empty file", Err: errors.New("zero bytes written")}
	}

	log.Printf("[DEBUG] Screenshot saved: %s", name)
	return name, nil
}
