package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// maxErrorBody caps how much of an upstream error body is retained.
const maxErrorBody = 2048

// TransportError reports a failed exchange with the profile API: either the
// request never completed (Err set, Status 0) or the server answered with a
// non-2xx status (Status and Body set).
type TransportError struct {
	Op     string // logical operation, e.g. "models.list"
	Method string
	URL    string
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s %s: HTTP %d", e.Op, e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NotFound reports whether the server answered 404.
func (e *TransportError) NotFound() bool { return e.Status == http.StatusNotFound }

// Retryable reports whether repeating the same request may succeed:
// network failures, 408, 429 and 5xx are retryable; other 4xx are not.
func (e *TransportError) Retryable() bool {
	switch {
	case e.Status == 0:
		return true
	case e.Status == http.StatusRequestTimeout, e.Status == http.StatusTooManyRequests:
		return true
	case e.Status >= 500:
		return true
	default:
		return false
	}
}

// MalformedResponseError reports a 2xx answer whose body violates the
// expected contract. Index is the offending list element, or -1.
type MalformedResponseError struct {
	Op     string
	URL    string
	Reason string
	Index  int
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: malformed response from %s: element %d: %s", e.Op, e.URL, e.Index, e.reason())
	}
	return fmt.Sprintf("%s: malformed response from %s: %s", e.Op, e.URL, e.reason())
}

func (e *MalformedResponseError) reason() string {
	switch {
	case e.Reason != "" && e.Err != nil:
		return e.Reason + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Reason
	}
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a TransportError for HTTP 404.
func IsNotFound(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.NotFound()
}

// IsRetryable reports whether err is a TransportError worth one more try.
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Retryable()
}

func truncateBody(b []byte) string {
	if len(b) <= maxErrorBody {
		return string(b)
	}
	return string(b[:maxErrorBody]) + "…"
}
