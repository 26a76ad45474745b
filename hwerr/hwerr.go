// Package hwerr holds the error kinds shared by the clock and power drivers.
// Callers compare with errors.Is; drivers wrap them with register context.
package hwerr

import "errors"

var (
	// ErrNullArgument is returned when a required register file, unit or config is absent.
	ErrNullArgument = errors.New("null argument")
	// ErrInvalidParameter is returned for out of range channel ids, masks and unit indices.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrTimeout is returned when a bounded poll didn't see the expected value.
	ErrTimeout = errors.New("timeout")
	// ErrAlreadyInitialized reports hardware that was already running. It's informational.
	ErrAlreadyInitialized = errors.New("already initialized")
)
