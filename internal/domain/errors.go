package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when neither a query nor an image was supplied
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUpstreamUnavailable is returned when an upstream service fails or answers non-2xx
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrMalformedOutput is returned when a generative model answers outside its schema
	ErrMalformedOutput = errors.New("malformed structured output")

	// ErrMissingCredential is returned when an optional service has no API key configured
	ErrMissingCredential = errors.New("credential not configured")
)

// UpstreamError describes a failed call to an external service.
// Status is zero when the request never produced an HTTP response.
type UpstreamError struct {
	Service string
	Status  int
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstreamUnavailable}
	}
	return []error{ErrUpstreamUnavailable, e.Err}
}

// StatusLabel renders the status for user-facing text, e.g. "500" or "network error"
func (e *UpstreamError) StatusLabel() string {
	if e.Status > 0 {
		return fmt.Sprintf("%d", e.Status)
	}
	return "network error"
}

// UpstreamStatusLabel extracts a StatusLabel from any error chain
func UpstreamStatusLabel(err error) string {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr.StatusLabel()
	}
	return "network error"
}
