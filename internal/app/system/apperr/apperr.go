// Package apperr defines the application error taxonomy.
//
// Stores and policies return these (or sentinel errors translated into
// them at the feature boundary); httpjson maps each kind to its HTTP
// status exactly once. Nothing else in the app writes status codes for
// error paths.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	KindNotFound Kind = iota
	KindDuplicate
	KindPermissionDenied
	KindUnauthorized
	KindValidation
	KindRateLimited
)

// Error is a typed application error with an optional per-field detail
// map (only populated for validation errors).
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string { return e.Message }

// Status returns the HTTP status code for the error's kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicate:
		return http.StatusConflict
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// NotFound reports a referenced entity that does not exist.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Duplicate reports a uniqueness violation.
func Duplicate(msg string) *Error {
	return &Error{Kind: KindDuplicate, Message: msg}
}

// PermissionDenied reports a failed role or ownership check.
func PermissionDenied() *Error {
	return &Error{Kind: KindPermissionDenied, Message: "permission denied"}
}

// Unauthorized reports missing or invalid credentials.
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// RateLimited reports a request rejected by a throttle window.
func RateLimited(msg string) *Error {
	return &Error{Kind: KindRateLimited, Message: msg}
}

// Validation reports a malformed input shape.
func Validation(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// As unwraps err into an *Error if it is one.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsNotFound reports whether err is a not-found application error.
func IsNotFound(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindNotFound
}

// IsDuplicate reports whether err is a duplicate-record application error.
func IsDuplicate(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindDuplicate
}
