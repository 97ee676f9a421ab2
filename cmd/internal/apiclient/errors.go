package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnknownEnvelope is returned by DecodeList when the body is not one of the recognized list shapes.
	ErrUnknownEnvelope = errors.New("unrecognized list envelope")

	// ErrUnsupportedQueryValue is returned when a query parameter is not a string, number or bool.
	ErrUnsupportedQueryValue = errors.New("unsupported query parameter value")

	// ErrNoCandidates is returned when no candidate URL could be built.
	ErrNoCandidates = errors.New("no candidate urls")
)

// Error is a failed API call. Status is 0 for transport failures.
type Error struct {
	Status  int
	Message string
	Method  string
	URL     string

	// Err is the underlying transport error, if any.
	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: transport error: %s", e.Method, e.URL, e.Message)
	}
	return fmt.Sprintf("%s %s: status=%d message=%s", e.Method, e.URL, e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// StatusOf returns the HTTP status carried by err, 0 for transport errors, or -1 if err is not an *Error.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return -1
}

// IsUnauthorized reports whether err is a 401 *Error.
func IsUnauthorized(err error) bool { return StatusOf(err) == http.StatusUnauthorized }

// IsNotFound reports whether err is a 404 *Error.
func IsNotFound(err error) bool { return StatusOf(err) == http.StatusNotFound }

// IsTransport reports whether err is a transport-level *Error.
func IsTransport(err error) bool { return StatusOf(err) == 0 }

// prefer picks the error to surface after all candidates failed.
// A recorded 404 is replaced only by a different, non-zero status.
func prefer(recorded, next *Error) *Error {
	if recorded == nil {
		return next
	}
	if recorded.Status == http.StatusNotFound && next.Status != http.StatusNotFound && next.Status != 0 {
		return next
	}
	return recorded
}
