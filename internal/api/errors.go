package api

import (
	"fmt"
	"time"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

// StatusError is a non-2xx response. Message carries the "message" field
// of the JSON body when the API sent one.
type StatusError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: something went wrong (%s)", e.Status)
	}
	return fmt.Sprintf("api: something went wrong (%s): %s", e.Status, e.Message)
}

// Unwrap lets callers match with errors.Is(err, domain.ErrNetwork).
func (e *StatusError) Unwrap() error { return domain.ErrNetwork }

// TimeoutError means the request lost the race against the timer.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("api: request took too long, timeout after %s", e.Duration)
}

func (e *TimeoutError) Unwrap() error { return domain.ErrTimeout }

// NetworkError wraps a transport failure as-is.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "api: " + e.Err.Error() }

func (e *NetworkError) Unwrap() []error { return []error{domain.ErrNetwork, e.Err} }
