// Copyright (c) 2013-2015 The btcsuite developers
// Copyright (c) 2015-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrShortFrame is returned when a frame ends before all of the fields
	// required by its kind have been read.
	ErrShortFrame = ErrorKind("ErrShortFrame")

	// ErrTrailingBytes is returned when a frame contains bytes beyond the
	// fixed layout of its kind.
	ErrTrailingBytes = ErrorKind("ErrTrailingBytes")

	// ErrUnknownKind is returned when a frame carries a kind tag that is not
	// one of the known frame kinds.
	ErrUnknownKind = ErrorKind("ErrUnknownKind")

	// ErrPayloadTooLarge is returned when a data payload exceeds the maximum
	// payload size allowed.
	ErrPayloadTooLarge = ErrorKind("ErrPayloadTooLarge")

	// ErrInvalidAddress is returned when a node address can not be
	// represented in the field it is encoded into.
	ErrInvalidAddress = ErrorKind("ErrInvalidAddress")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// MessageError identifies an error related to wire frames. It has full support
// for errors.Is and errors.As, so the caller can ascertain the specific reason
// for the error by checking the underlying error.
type MessageError struct {
	Func        string
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e MessageError) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e MessageError) Unwrap() error {
	return e.Err
}

// messageError creates a MessageError given a set of arguments.
func messageError(fn string, kind ErrorKind, desc string) MessageError {
	return MessageError{Func: fn, Err: kind, Description: desc}
}
