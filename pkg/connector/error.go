package connector

import (
	"fmt"
)

// APIError describes a request to the management API that did not produce a
// usable response.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
	Cause  error
}

func (e *APIError) Error() string {

	if e == nil {
		return "<nil>"
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Cause)
	}

	if len(e.Body) > 0 {
		return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.Status, e.Body)
	}

	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Status)
}

func (e *APIError) Unwrap() error { return e.Cause }

// Transport reports whether the request never got an HTTP response.
func (e *APIError) Transport() bool {
	return e.Status == 0
}
