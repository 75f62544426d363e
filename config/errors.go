// SPDX-License-Identifier: MIT
package config

import "errors"

// Sentinel errors for the config package. All public setters validate
// eagerly and return one of these wrapped with context, never panic: a
// configuration error is surfaced before any solver work starts.
var (
	// ErrInvalidValue indicates a parameter value failed its documented range
	// check (e.g. a negative epsilon, a Wolfe pair outside 0 < c1 < c2 < 1).
	ErrInvalidValue = errors.New("config: invalid parameter value")

	// ErrMissingKey indicates a key with no value. The Get* accessors do
	// not return it: they fall back to the caller-supplied default.
	ErrMissingKey = errors.New("config: key not set")

	// ErrWrongType indicates a stored value does not match the type the
	// caller asked for (e.g. GetInt on a key holding a string). The Get*
	// accessors do not return it: they fall back to the caller-supplied
	// default.
	ErrWrongType = errors.New("config: value has wrong type")
)
