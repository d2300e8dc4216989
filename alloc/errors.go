package alloc

import "errors"

// Common allocator errors.
var (
	// ErrNoBackendAvailable is returned by Select when every candidate failed.
	ErrNoBackendAvailable = errors.New("alloc: no backend available")

	// ErrUnavailable marks a backend that is not present on this system.
	// Candidates wrap it to signal an expected, low-severity failure.
	ErrUnavailable = errors.New("alloc: backend unavailable")

	// ErrUnsupportedFormat is returned when no requested format/modifier
	// pair can be allocated.
	ErrUnsupportedFormat = errors.New("alloc: unsupported format or modifier")

	// ErrInvalidDimensions is returned when width or height is not positive.
	ErrInvalidDimensions = errors.New("alloc: invalid dimensions")

	// ErrClosed is returned when allocating from a closed allocator.
	ErrClosed = errors.New("alloc: allocator closed")
)

// UnknownBackendError indicates a backend name with no registered factory.
type UnknownBackendError struct {
	Name string
}

func (e *UnknownBackendError) Error() string {
	return "alloc: unknown backend: " + e.Name
}
