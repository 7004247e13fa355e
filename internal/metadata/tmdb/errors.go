package tmdb

import (
	"fmt"
)

// ValidationError reports invalid caller input. It is returned before any
// request is sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UpstreamError reports a non-2xx response or a transport failure.
// Status is 0 for transport failures.
type UpstreamError struct {
	Status  int
	Message string
	Cause   error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("tmdb request failed: %s", e.Message)
	}
	return fmt.Sprintf("tmdb API error %d: %s", e.Status, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// NotFound reports whether the upstream answered 404.
func (e *UpstreamError) NotFound() bool {
	return e.Status == 404
}
