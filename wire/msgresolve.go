// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgResolveRequest implements the Message interface and represents a
// broadcast query for the hardware identifier that owns a node address.
type MsgResolveRequest struct {
	Target NodeAddress
}

// Decode decodes r into the receiver.  This is part of the Message interface
// implementation.
func (msg *MsgResolveRequest) Decode(r io.Reader) error {
	const op = "MsgResolveRequest.Decode"
	var target uint32
	if err := readUint32LE(r, op, "target address", &target); err != nil {
		return err
	}
	msg.Target = NodeAddress(target)
	return nil
}

// Encode encodes the receiver to w.  This is part of the Message interface
// implementation.
func (msg *MsgResolveRequest) Encode(w io.Writer) error {
	return writeUint32LE(w, uint32(msg.Target))
}

// Kind returns the frame kind for the message.  This is part of the Message
// interface implementation.
func (msg *MsgResolveRequest) Kind() FrameKind {
	return KindResolveRequest
}

// NewMsgResolveRequest returns a new resolution request for the target
// address.
func NewMsgResolveRequest(target NodeAddress) *MsgResolveRequest {
	return &MsgResolveRequest{Target: target}
}

// MsgResolveResponse implements the Message interface and represents the
// answer of the node that owns a node address.
type MsgResolveResponse struct {
	Address NodeAddress
	Owner   HardwareID
}

// Decode decodes r into the receiver.  This is part of the Message interface
// implementation.
func (msg *MsgResolveResponse) Decode(r io.Reader) error {
	const op = "MsgResolveResponse.Decode"
	var addr uint32
	if err := readUint32LE(r, op, "address", &addr); err != nil {
		return err
	}
	var owner uint8
	if err := readUint8(r, op, "owner", &owner); err != nil {
		return err
	}
	msg.Address = NodeAddress(addr)
	msg.Owner = HardwareID(owner)
	return nil
}

// Encode encodes the receiver to w.  This is part of the Message interface
// implementation.
func (msg *MsgResolveResponse) Encode(w io.Writer) error {
	if err := writeUint32LE(w, uint32(msg.Address)); err != nil {
		return err
	}
	return writeUint8(w, uint8(msg.Owner))
}

// Kind returns the frame kind for the message.  This is part of the Message
// interface implementation.
func (msg *MsgResolveResponse) Kind() FrameKind {
	return KindResolveResponse
}

// NewMsgResolveResponse returns a new resolution response announcing that owner
// holds addr.
func NewMsgResolveResponse(addr NodeAddress, owner HardwareID) *MsgResolveResponse {
	return &MsgResolveResponse{Address: addr, Owner: owner}
}
