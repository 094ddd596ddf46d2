// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
)

// MsgAssignRequest implements the Message interface and represents a request
// for a node address sent by a node to the coordinator.  The requesting node
// is identified by the source hardware identifier of the frame, so the
// message has no body.
type MsgAssignRequest struct{}

// Decode decodes r into the receiver.  This is part of the Message interface
// implementation.
func (msg *MsgAssignRequest) Decode(r io.Reader) error {
	return nil
}

// Encode encodes the receiver to w.  This is part of the Message interface
// implementation.
func (msg *MsgAssignRequest) Encode(w io.Writer) error {
	return nil
}

// Kind returns the frame kind for the message.  This is part of the Message
// interface implementation.
func (msg *MsgAssignRequest) Kind() FrameKind {
	return KindAssignRequest
}

// NewMsgAssignRequest returns a new assignment request message.
func NewMsgAssignRequest() *MsgAssignRequest {
	return &MsgAssignRequest{}
}

// MsgAssignResponse implements the Message interface and represents the
// coordinator's answer to an assignment request.
//
// A granted address of NoAddress is an explicit failure response telling the
// requester that the coordinator's address pool is exhausted.
type MsgAssignResponse struct {
	Address NodeAddress
	Network NetworkID
}

// Exhausted returns whether the response reports that the coordinator had no
// free address to grant.
func (msg *MsgAssignResponse) Exhausted() bool {
	return msg.Address == NoAddress
}

// Decode decodes r into the receiver.  This is part of the Message interface
// implementation.
func (msg *MsgAssignResponse) Decode(r io.Reader) error {
	const op = "MsgAssignResponse.Decode"
	var addr, network uint32
	if err := readUint32LE(r, op, "granted address", &addr); err != nil {
		return err
	}
	if err := readUint32LE(r, op, "network", &network); err != nil {
		return err
	}
	msg.Address = NodeAddress(addr)
	msg.Network = NetworkID(network)
	return nil
}

// Encode encodes the receiver to w.  This is part of the Message interface
// implementation.
func (msg *MsgAssignResponse) Encode(w io.Writer) error {
	if err := writeUint32LE(w, uint32(msg.Address)); err != nil {
		return err
	}
	return writeUint32LE(w, uint32(msg.Network))
}

// Kind returns the frame kind for the message.  This is part of the Message
// interface implementation.
func (msg *MsgAssignResponse) Kind() FrameKind {
	return KindAssignResponse
}

// String returns a human-readable summary of the response.
func (msg *MsgAssignResponse) String() string {
	if msg.Exhausted() {
		return "exhausted"
	}
	return fmt.Sprintf("address %v, network %v", msg.Address, msg.Network)
}

// NewMsgAssignResponse returns a new assignment response granting the provided
// address on the provided network.
func NewMsgAssignResponse(addr NodeAddress, network NetworkID) *MsgAssignResponse {
	return &MsgAssignResponse{Address: addr, Network: network}
}

// NewMsgAssignExhausted returns a new assignment response reporting that the
// address pool is exhausted.
func NewMsgAssignExhausted() *MsgAssignResponse {
	return &MsgAssignResponse{Address: NoAddress}
}
