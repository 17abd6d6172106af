package api

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why a call to the service failed.
type Kind string

const (
	// KindTransport means the service could not be reached.
	KindTransport Kind = "transport"
	// KindStatus means the service answered with a non-2xx status.
	KindStatus Kind = "status"
	// KindDecode means the response body was not the expected JSON.
	KindDecode Kind = "decode"
	// KindRejected means a 2xx response carried success:false.
	KindRejected Kind = "rejected"
)

// Error is returned by every Client call that reached, or tried to reach,
// the service.
type Error struct {
	Op         string
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Detail includes the operation and status for logs.
func (e *Error) Detail() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (%s, status %d)", e.Op, e.Message, e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Op, e.Message, e.Kind)
}

// KindOf returns the Kind of err, or "" when err did not come from the service.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsUnauthorized reports whether the service rejected the bearer token.
func IsUnauthorized(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindStatus && (e.StatusCode == 401 || e.StatusCode == 403)
}

// IsNotFound reports whether the service answered 404.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindStatus && e.StatusCode == 404
}
