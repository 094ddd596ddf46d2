// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"
)

// FrameHeaderSize is the number of bytes in a frame header.
// Source hardware identifier 1 byte + destination hardware identifier 1 byte +
// frame kind 1 byte.
const FrameHeaderSize = 3

// FrameKind is the tag in the third byte of every frame that selects the
// layout of the rest of the frame.
type FrameKind uint8

// Frame kinds.  The values are part of the wire format.
const (
	KindResolveRequest  FrameKind = 75
	KindResolveResponse FrameKind = 76
	KindAssignRequest   FrameKind = 77
	KindAssignResponse  FrameKind = 78
	KindData            FrameKind = 79
)

// kindStrings is a map of frame kinds back to their constant names for pretty
// printing.
var kindStrings = map[FrameKind]string{
	KindResolveRequest:  "ResolveRequest",
	KindResolveResponse: "ResolveResponse",
	KindAssignRequest:   "AssignRequest",
	KindAssignResponse:  "AssignResponse",
	KindData:            "Data",
}

// String returns the FrameKind in human-readable form.
func (k FrameKind) String() string {
	if s, ok := kindStrings[k]; ok {
		return s
	}
	return fmt.Sprintf("Unknown FrameKind (%d)", uint8(k))
}

// Message is an interface that describes the kind-specific body of a frame.  A
// type that implements Message has complete control over the representation
// of its data.
type Message interface {
	Decode(io.Reader) error
	Encode(io.Writer) error
	Kind() FrameKind
}

// FrameHeader is the common header shared by every frame kind.
type FrameHeader struct {
	From HardwareID
	To   HardwareID
	Kind FrameKind
}

// makeEmptyMessage creates a message of the appropriate concrete type based
// on the frame kind.
func makeEmptyMessage(kind FrameKind) (Message, error) {
	const op = "makeEmptyMessage"

	var msg Message
	switch kind {
	case KindResolveRequest:
		msg = &MsgResolveRequest{}

	case KindResolveResponse:
		msg = &MsgResolveResponse{}

	case KindAssignRequest:
		msg = &MsgAssignRequest{}

	case KindAssignResponse:
		msg = &MsgAssignResponse{}

	case KindData:
		msg = &MsgData{}

	default:
		str := fmt.Sprintf("unhandled frame kind [%d]", uint8(kind))
		return nil, messageError(op, ErrUnknownKind, str)
	}
	return msg, nil
}

// WriteFrame writes a complete frame, header followed by the message body, to
// w.
func WriteFrame(w io.Writer, from, to HardwareID, msg Message) error {
	for _, b := range [FrameHeaderSize]byte{byte(from), byte(to),
		byte(msg.Kind())} {

		if err := writeUint8(w, b); err != nil {
			return err
		}
	}
	return msg.Encode(w)
}

// EncodeFrame returns the serialized frame for the provided message.
func EncodeFrame(from, to HardwareID, msg Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, from, to, msg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeFrame parses a serialized frame.  The kind tag is read first and only
// the layout that matches it is parsed.  Frames that are truncated, carry
// bytes beyond their layout, or have an unknown tag are rejected.
func DecodeFrame(frame []byte) (*FrameHeader, Message, error) {
	const op = "DecodeFrame"
	if len(frame) < FrameHeaderSize {
		str := fmt.Sprintf("frame of %d bytes is shorter than the %d byte "+
			"header", len(frame), FrameHeaderSize)
		return nil, nil, messageError(op, ErrShortFrame, str)
	}

	hdr := FrameHeader{
		From: HardwareID(frame[0]),
		To:   HardwareID(frame[1]),
		Kind: FrameKind(frame[2]),
	}
	msg, err := makeEmptyMessage(hdr.Kind)
	if err != nil {
		return nil, nil, err
	}

	r := bytes.NewReader(frame[FrameHeaderSize:])
	if err := msg.Decode(r); err != nil {
		return nil, nil, err
	}
	if r.Len() != 0 {
		str := fmt.Sprintf("%v frame has %d unexpected trailing bytes",
			hdr.Kind, r.Len())
		return nil, nil, messageError(op, ErrTrailingBytes, str)
	}

	return &hdr, msg, nil
}
