// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the error kinds shared by the case query service,
// the statistics engine and the stores. Callers match kinds with errors.Is
// and may show the message of an *Error to clients as-is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks bad client input: unknown parameters, malformed
	// values, references to records that do not exist.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks an operation on a case id that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConsistency marks stored data that violates an invariant, such as a
	// category whose parent is missing. It is never caused by client input.
	ErrConsistency = errors.New("consistency fault")
)

// Error carries a client-facing message and the kind it belongs to.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Unwrap returns the kind so errors.Is(err, ErrValidation) works.
func (e *Error) Unwrap() error { return e.kind }

// Validationf returns an ErrValidation error with a formatted message.
func Validationf(format string, args ...any) error {
	return &Error{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// NotFoundf returns an ErrNotFound error with a formatted message.
func NotFoundf(format string, args ...any) error {
	return &Error{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

// Consistencyf returns an ErrConsistency error with a formatted message.
func Consistencyf(format string, args ...any) error {
	return &Error{kind: ErrConsistency, msg: fmt.Sprintf(format, args...)}
}

// Message returns the client-facing message of err if it is an *Error,
// otherwise fallback.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.msg
	}
	return fallback
}
