package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without
// leaking infrastructure details.
//
// ErrCodeInvalid deliberately covers no-record, wrong-code, and expired
// alike: the caller must not be able to tell which occurred.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrCodeInvalid  = errors.New("invalid or expired code")
	ErrTokenInvalid = errors.New("invalid or expired token")
	ErrDispatch     = errors.New("delivery failed")
)
