package services

import (
	"errors"

	"github.com/desertthunder/xes/internal/shared"
)

const notLoggedInMessage = "未登录"

// APIError is the single error kind surfaced by the client.
//
// What carries the human-readable message (usually the server's errmsg/msg).
// The error unwraps to a category sentinel from the shared package
// ([shared.ErrAPIRequest], [shared.ErrNotAuthenticated], [shared.ErrInvalidCaptcha], ...)
// and to the underlying transport error, if any.
type APIError struct {
	What string

	kind  error
	cause error
}

// errNotLoggedIn is returned by every write operation on a handle without a session.
// Each call returns a new value.
func errNotLoggedIn() *APIError {
	return &APIError{What: notLoggedInMessage, kind: shared.ErrNotAuthenticated}
}

func newAPIError(what string) *APIError {
	return &APIError{What: what, kind: shared.ErrAPIRequest}
}

func wrapAPIError(what string, cause error) *APIError {
	return &APIError{What: what, kind: shared.ErrAPIRequest, cause: cause}
}

func (e *APIError) Error() string {
	if e.cause != nil {
		return e.What + ": " + e.cause.Error()
	}
	return e.What
}

// Unwrap exposes the category sentinel and the transport cause to [errors.Is] and [errors.As].
func (e *APIError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.kind != nil {
		errs = append(errs, e.kind)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// Message extracts the human-readable message from err if it is (or wraps) an [APIError].
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.What
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
