// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific ErrorKind.
const (
	// ErrPoolExhausted indicates every address in the pool is already bound
	// to a hardware identifier.
	ErrPoolExhausted = ErrorKind("ErrPoolExhausted")

	// ErrInvalidPool indicates the configured address pool is empty or
	// overlaps the reserved addresses.
	ErrInvalidPool = ErrorKind("ErrInvalidPool")

	// ErrBindingDB indicates an error reading or writing the persisted
	// binding database.
	ErrBindingDB = ErrorKind("ErrBindingDB")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an address table error.  It has full support for errors.Is
// and errors.As, so the caller can ascertain the specific reason for the error
// by checking the underlying error.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// makeError creates an Error given a set of arguments.
func makeError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}
