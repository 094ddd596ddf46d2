// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

// TestFrameWire tests the exact wire encoding of every frame kind as well as
// decoding the encoded bytes back into the same header and message.
func TestFrameWire(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from HardwareID
		to   HardwareID
		msg  Message
		want []byte
	}{{
		name: "assign request",
		from: 'B',
		to:   DefaultCoordinator,
		msg:  NewMsgAssignRequest(),
		want: []byte{'B', 'A', 77},
	}, {
		name: "assign response",
		from: DefaultCoordinator,
		to:   'B',
		msg:  NewMsgAssignResponse(2, DefaultNetwork),
		want: []byte{'A', 'B', 78, 0x02, 0, 0, 0, 0x01, 0, 0, 0},
	}, {
		name: "assign response exhausted",
		from: DefaultCoordinator,
		to:   'J',
		msg:  NewMsgAssignExhausted(),
		want: []byte{'A', 'J', 78, 0, 0, 0, 0, 0, 0, 0, 0},
	}, {
		name: "resolve request",
		from: 'C',
		to:   Broadcast,
		msg:  NewMsgResolveRequest(2),
		want: []byte{'C', 0x00, 75, 0x02, 0, 0, 0},
	}, {
		name: "resolve response",
		from: 'B',
		to:   'C',
		msg:  NewMsgResolveResponse(2, 'B'),
		want: []byte{'B', 'C', 76, 0x02, 0, 0, 0, 'B'},
	}, {
		name: "data",
		from: 'C',
		to:   'B',
		msg:  &MsgData{Network: 1, To: 2, Payload: []byte("hi")},
		want: []byte{'C', 'B', 79, 0x01, 0x02, 0x02, 'h', 'i'},
	}, {
		name: "data empty payload",
		from: 'C',
		to:   'B',
		msg:  &MsgData{Network: 1, To: 2, Payload: []byte{}},
		want: []byte{'C', 'B', 79, 0x01, 0x02, 0x00},
	}}

	for _, test := range tests {
		got, err := EncodeFrame(test.from, test.to, test.msg)
		if err != nil {
			t.Errorf("%s: unexpected encode error: %v", test.name, err)
			continue
		}
		if !bytes.Equal(got, test.want) {
			t.Errorf("%s: mismatched bytes -- got: %s want: %s", test.name,
				spew.Sdump(got), spew.Sdump(test.want))
			continue
		}

		hdr, msg, err := DecodeFrame(test.want)
		if err != nil {
			t.Errorf("%s: unexpected decode error: %v", test.name, err)
			continue
		}
		wantHdr := FrameHeader{From: test.from, To: test.to,
			Kind: test.msg.Kind()}
		if *hdr != wantHdr {
			t.Errorf("%s: mismatched header -- got %+v, want %+v", test.name,
				*hdr, wantHdr)
			continue
		}
		if !reflect.DeepEqual(msg, test.msg) {
			t.Errorf("%s: mismatched message -- got: %s want: %s", test.name,
				spew.Sdump(msg), spew.Sdump(test.msg))
			continue
		}
	}
}

// TestDecodeFrameErrors ensures malformed frames are rejected with the
// expected error kind rather than being reinterpreted.
func TestDecodeFrameErrors(t *testing.T) {
	t.Parallel()

	oversize := append([]byte{'C', 'B', 79, 1, 2, MaxPayloadSize + 1},
		make([]byte, MaxPayloadSize+1)...)

	tests := []struct {
		name  string
		frame []byte
		want  ErrorKind
	}{{
		name:  "empty frame",
		frame: nil,
		want:  ErrShortFrame,
	}, {
		name:  "header only two bytes",
		frame: []byte{'B', 'A'},
		want:  ErrShortFrame,
	}, {
		name:  "unknown kind",
		frame: []byte{'B', 'A', 80},
		want:  ErrUnknownKind,
	}, {
		name:  "zero kind",
		frame: []byte{'B', 'A', 0, 1, 2, 3, 4},
		want:  ErrUnknownKind,
	}, {
		name:  "assign request trailing bytes",
		frame: []byte{'B', 'A', 77, 0},
		want:  ErrTrailingBytes,
	}, {
		name:  "assign response truncated address",
		frame: []byte{'A', 'B', 78, 2, 0},
		want:  ErrShortFrame,
	}, {
		name:  "assign response missing network",
		frame: []byte{'A', 'B', 78, 2, 0, 0, 0},
		want:  ErrShortFrame,
	}, {
		name:  "resolve request truncated",
		frame: []byte{'C', 0, 75, 2, 0, 0},
		want:  ErrShortFrame,
	}, {
		name:  "resolve response missing owner",
		frame: []byte{'B', 'C', 76, 2, 0, 0, 0},
		want:  ErrShortFrame,
	}, {
		name:  "resolve response trailing",
		frame: []byte{'B', 'C', 76, 2, 0, 0, 0, 'B', 'X'},
		want:  ErrTrailingBytes,
	}, {
		name:  "data missing length",
		frame: []byte{'C', 'B', 79, 1, 2},
		want:  ErrShortFrame,
	}, {
		name:  "data truncated payload",
		frame: []byte{'C', 'B', 79, 1, 2, 5, 'h', 'i'},
		want:  ErrShortFrame,
	}, {
		name:  "data payload longer than prefix",
		frame: []byte{'C', 'B', 79, 1, 2, 1, 'h', 'i'},
		want:  ErrTrailingBytes,
	}, {
		name:  "data payload length over max",
		frame: oversize,
		want:  ErrPayloadTooLarge,
	}}

	for _, test := range tests {
		_, _, err := DecodeFrame(test.frame)
		if !errors.Is(err, test.want) {
			t.Errorf("%s: mismatched error -- got %v, want %v", test.name,
				err, test.want)
			continue
		}
		var merr MessageError
		if !errors.As(err, &merr) {
			t.Errorf("%s: error is not a MessageError: %T", test.name, err)
		}
	}
}

// TestFrameKindStringer tests the stringized output for the FrameKind type.
func TestFrameKindStringer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   FrameKind
		want string
	}{
		{KindResolveRequest, "ResolveRequest"},
		{KindResolveResponse, "ResolveResponse"},
		{KindAssignRequest, "AssignRequest"},
		{KindAssignResponse, "AssignResponse"},
		{KindData, "Data"},
		{0xff, "Unknown FrameKind (255)"},
	}

	for i, test := range tests {
		result := test.in.String()
		if result != test.want {
			t.Errorf("String #%d\n got: %s want: %s", i, result, test.want)
		}
	}
}

// TestHardwareIDStringer ensures printable identifiers render as characters
// and everything else as hex.
func TestHardwareIDStringer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   HardwareID
		want string
	}{
		{'A', "A"},
		{'z', "z"},
		{0, "0x00"},
		{' ', "0x20"},
		{0xff, "0xff"},
	}

	for i, test := range tests {
		result := test.in.String()
		if result != test.want {
			t.Errorf("String #%d\n got: %s want: %s", i, result, test.want)
		}
	}
}
