package domain

import "errors"

var (
	// ErrNotFound indicates the requested resource does not exist upstream.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable indicates a transient upstream failure (network or server).
	ErrUnavailable = errors.New("service unavailable")
	// ErrUnauthorized indicates the stored credential was rejected by the backend.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrCorrupt indicates a persisted blob failed to parse. Callers treat the
	// value as absent and fall back to a default state.
	ErrCorrupt = errors.New("corrupt persisted value")
)
