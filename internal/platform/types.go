package platform

import (
	"errors"
	"fmt"

	"github.com/mj1618/winwatch/internal/model"
)

// ErrSourceUnavailable is matched by every *SourceError.
var ErrSourceUnavailable = errors.New("window source unavailable")

// ErrNoWindow is returned when an action targets a handle the OS no longer knows.
var ErrNoWindow = errors.New("no such window")

// SourceError wraps a failure from the OS windowing layer.
type SourceError struct {
	Op     string       // "enumerate", "title", "visible", "front", "show"
	Handle model.Handle // zero for enumerate
	Err    error
}

func (e *SourceError) Error() string {
	if e.Handle == 0 {
		return fmt.Sprintf("%s: %s: %v", ErrSourceUnavailable, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: %v", ErrSourceUnavailable, e.Op, e.Handle, e.Err)
}

func (e *SourceError) Unwrap() []error { return []error{ErrSourceUnavailable, e.Err} }
