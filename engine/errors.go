// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import "errors"

// Error kinds. None of them leaves a mutation behind.
var (
	ErrValidation   = errors.New("validation failed")
	ErrLocked       = errors.New("locked")
	ErrPrecondition = errors.New("precondition failed")
)

// Error carries a kind and a short machine-readable reason such as
// "self-vote-only".
type Error struct {
	Kind   error
	Reason string
}

func (e *Error) Error() string { return e.Kind.Error() + ": " + e.Reason }

func (e *Error) Unwrap() error { return e.Kind }

// Reason returns the reason of an engine error, or "" for other errors.
func Reason(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}

func validation(reason string) error   { return &Error{Kind: ErrValidation, Reason: reason} }
func locked(reason string) error       { return &Error{Kind: ErrLocked, Reason: reason} }
func precondition(reason string) error { return &Error{Kind: ErrPrecondition, Reason: reason} }
