package alloc

import (
	"errors"
	"fmt"
)

// Select tries candidates in order and returns the first allocator that
// initializes. Each failure is logged and selection moves on; when every
// candidate fails the error wraps ErrNoBackendAvailable and each candidate
// error.
func Select(candidates []Candidate) (Allocator, error) {
	var errs []error
	for _, c := range candidates {
		a, err := c.Try()
		if err == nil && a != nil {
			return a, nil
		}
		if err == nil {
			err = fmt.Errorf("%w: %s returned no allocator", ErrUnavailable, c.Name)
		}

		if errors.Is(err, ErrUnavailable) {
			slogger().Debug("alloc: backend unavailable, trying next", "backend", c.Name, "error", err)
		} else {
			slogger().Warn("alloc: backend failed, trying next", "backend", c.Name, "error", err)
		}
		errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))
	}

	if len(errs) == 0 {
		return nil, ErrNoBackendAvailable
	}
	return nil, fmt.Errorf("%w: %w", ErrNoBackendAvailable, errors.Join(errs...))
}
