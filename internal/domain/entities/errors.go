package entities

import "fmt"

// CaptureError is a screen-capture device or image filesystem failure.
type CaptureError struct {
	Op  string
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture: %s: %v", e.Op, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// UpstreamError is a failed or malformed call to the inference endpoint.
// Status is zero when no HTTP response was received.
type UpstreamError struct {
	Model   string
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s: status %d: %s", e.Model, e.Status, msg)
	}
	return fmt.Sprintf("upstream %s: %s", e.Model, msg)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// StorageError is an unreadable or unwritable entry document.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ParseError means the entry document exists but is not a JSON array of entries.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
