package compositor

import (
	"errors"
	"fmt"
)

// Common session errors.
var (
	// ErrNotFound is matched by every *LookupError.
	ErrNotFound = errors.New("compositor: not found")

	// ErrCannotSetSize is returned by ApplyConfig when a stored output
	// configuration asks for a size other than the host window's. Nested
	// windows are sized by the host, not by configuration.
	ErrCannotSetSize = errors.New("compositor: cannot set window size")

	// ErrShutdown is returned by operations on a session that was shut down.
	ErrShutdown = errors.New("compositor: session shut down")
)

// AllocationError reports that the buffer allocator could not be set up or
// could not produce a buffer.
type AllocationError struct {
	// Backend is the allocator name, empty when selection itself failed.
	Backend string
	// Op is the failed operation, e.g. "select" or "acquire".
	Op  string
	Err error
}

func (e *AllocationError) Error() string {
	if e.Backend == "" {
		return fmt.Sprintf("compositor: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("compositor: %s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// RenderError reports a failed frame. The session stays usable; the
// surface's buffers and damage history were reset.
type RenderError struct {
	Output string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("compositor: render %s: %v", e.Output, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// LookupError reports an unknown output or window id.
type LookupError struct {
	// Kind is "output" or "window".
	Kind string
	ID   uint64
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("compositor: unknown %s %d", e.Kind, e.ID)
}

// Is matches ErrNotFound.
func (e *LookupError) Is(target error) bool {
	return target == ErrNotFound
}
