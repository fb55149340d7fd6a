package domain

import "errors"

// Sentinel errors used across layers. Typed errors in other packages
// unwrap to one of these so use cases can branch with errors.Is.
var (
	ErrNotFound = errors.New("not found")
	// ErrNetwork covers rejected requests and non-2xx responses.
	ErrNetwork = errors.New("network failure")
	// ErrTimeout means the per-request deadline fired first.
	ErrTimeout = errors.New("request timed out")
	// ErrFormat reports malformed user input, e.g. an ingredient line
	// that does not split into quantity, unit and description.
	ErrFormat = errors.New("wrong format")
	// ErrEmptyResult is surfaced as a view display state, never as a fault.
	ErrEmptyResult = errors.New("nothing to render")
	// ErrSuperseded is returned to a recipe load cancelled by a newer one.
	ErrSuperseded = errors.New("superseded by a newer request")
)
