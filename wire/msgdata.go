// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
	"math"
)

// MaxPayloadSize is the maximum number of payload bytes a data frame can carry.
const MaxPayloadSize = 64

// MsgData implements the Message interface and represents a user payload sent
// to a node address.
//
// The body layout is: network identifier (1 byte), destination node address (1
// byte), payload length (1 byte), payload.  The payload is length prefixed
// rather than null terminated so it may carry arbitrary bytes.
type MsgData struct {
	Network NetworkID
	To      NodeAddress
	Payload []byte
}

// Decode decodes r into the receiver.  This is part of the Message interface
// implementation.
func (msg *MsgData) Decode(r io.Reader) error {
	const op = "MsgData.Decode"
	var network, to, size uint8
	if err := readUint8(r, op, "network", &network); err != nil {
		return err
	}
	if err := readUint8(r, op, "destination", &to); err != nil {
		return err
	}
	if err := readUint8(r, op, "payload length", &size); err != nil {
		return err
	}
	if size > MaxPayloadSize {
		str := fmt.Sprintf("payload of %d bytes exceeds max of %d", size,
			MaxPayloadSize)
		return messageError(op, ErrPayloadTooLarge, str)
	}

	payload := make([]byte, size)
	n, err := io.ReadFull(r, payload)
	if err != nil {
		str := fmt.Sprintf("frame ended while reading payload [read %d of "+
			"%d bytes]", n, size)
		return messageError(op, ErrShortFrame, str)
	}

	msg.Network = NetworkID(network)
	msg.To = NodeAddress(to)
	msg.Payload = payload
	return nil
}

// Encode encodes the receiver to w.  This is part of the Message interface
// implementation.
func (msg *MsgData) Encode(w io.Writer) error {
	const op = "MsgData.Encode"
	if err := msg.validate(op); err != nil {
		return err
	}

	if err := writeUint8(w, uint8(msg.Network)); err != nil {
		return err
	}
	if err := writeUint8(w, uint8(msg.To)); err != nil {
		return err
	}
	if err := writeUint8(w, uint8(len(msg.Payload))); err != nil {
		return err
	}
	_, err := w.Write(msg.Payload)
	return err
}

// validate ensures every field fits the single byte or bounded length it is
// encoded into.
func (msg *MsgData) validate(op string) error {
	if msg.Network > math.MaxUint8 {
		str := fmt.Sprintf("network %v does not fit a data frame", msg.Network)
		return messageError(op, ErrInvalidAddress, str)
	}
	if msg.To > math.MaxUint8 {
		str := fmt.Sprintf("destination %v does not fit a data frame", msg.To)
		return messageError(op, ErrInvalidAddress, str)
	}
	if len(msg.Payload) > MaxPayloadSize {
		str := fmt.Sprintf("payload of %d bytes exceeds max of %d",
			len(msg.Payload), MaxPayloadSize)
		return messageError(op, ErrPayloadTooLarge, str)
	}
	return nil
}

// Kind returns the frame kind for the message.  This is part of the Message
// interface implementation.
func (msg *MsgData) Kind() FrameKind {
	return KindData
}

// NewMsgData returns a new data message for the provided destination.  An
// error is returned when the message could not be encoded.
func NewMsgData(network NetworkID, to NodeAddress, payload []byte) (*MsgData, error) {
	msg := &MsgData{Network: network, To: to, Payload: payload}
	if err := msg.validate("NewMsgData"); err != nil {
		return nil, err
	}
	return msg, nil
}
