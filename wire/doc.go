// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package wire implements the frame format of the local link address protocol.

Every frame starts with a three byte header made of the source hardware
identifier, the destination hardware identifier, and the frame kind.  The
destination NoHardware (also exported as Broadcast) addresses every node on
the link.  The body that follows the header depends on the kind:

	Kind               Value  Body
	ResolveRequest     75     target address (uint32 LE)
	ResolveResponse    76     resolved address (uint32 LE), owner hardware (1 byte)
	AssignRequest      77     empty
	AssignResponse     78     granted address (uint32 LE), network (uint32 LE)
	Data               79     network (1 byte), destination (1 byte),
	                          payload length (1 byte), payload

An AssignResponse that grants NoAddress tells the requester the coordinator's
address pool is exhausted.  Data payloads are limited to MaxPayloadSize bytes.

# Encoding and Decoding

EncodeFrame and WriteFrame serialize a Message behind a header while
DecodeFrame parses a received frame into its header and a concrete Message
such as *MsgAssignResponse.  Malformed frames are rejected with a MessageError
whose kind, for example ErrShortFrame or ErrTrailingBytes, can be checked with
errors.Is:

	hdr, msg, err := wire.DecodeFrame(frame)
	if errors.Is(err, wire.ErrShortFrame) {
		// Drop the frame.
	}
*/
package wire
