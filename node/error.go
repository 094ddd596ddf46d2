// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific ErrorKind.
const (
	// ErrUnreachable indicates no node answered the resolution of the
	// destination address in time.
	ErrUnreachable = ErrorKind("ErrUnreachable")

	// ErrWrongNetwork indicates a message was addressed to a logical network
	// other than the one the node belongs to.
	ErrWrongNetwork = ErrorKind("ErrWrongNetwork")

	// ErrExhausted indicates the coordinator had no free address for the
	// node.
	ErrExhausted = ErrorKind("ErrExhausted")

	// ErrStartupFailed indicates the node could not obtain an address.
	ErrStartupFailed = ErrorKind("ErrStartupFailed")

	// ErrPayloadTooLarge indicates a message payload exceeds the maximum
	// payload size of a data frame.
	ErrPayloadTooLarge = ErrorKind("ErrPayloadTooLarge")

	// ErrNotStarted indicates an operation that requires an address was
	// attempted before the node obtained one.
	ErrNotStarted = ErrorKind("ErrNotStarted")

	// ErrShutdown indicates the node was stopped.
	ErrShutdown = ErrorKind("ErrShutdown")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies a node error.  It has full support for errors.Is and
// errors.As, so the caller can ascertain the specific reason for the error by
// checking the underlying error.
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
