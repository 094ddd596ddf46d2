// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/decred/lanaddr/internal/pending"
	"github.com/decred/lanaddr/wire"
)

// Send transmits the payload to the node owning the destination address on
// the provided logical network.  The destination is resolved first when its
// owner is not cached, which blocks the caller until the owner responds or the
// resolution window elapses.
//
// Send fails with ErrWrongNetwork when the network is not the node's own,
// ErrPayloadTooLarge when the payload exceeds wire.MaxPayloadSize, and
// ErrUnreachable when no node owns the destination.  Nothing is transmitted in
// any of these cases.  Messages to the node's own address are delivered
// locally.
func (n *Node) Send(ctx context.Context, dest wire.NodeAddress, network wire.NetworkID, payload []byte) error {
	if atomic.LoadInt32(&n.shutdown) != 0 {
		return makeError(ErrShutdown, "node is stopped")
	}
	if n.State() != StateAssigned {
		str := fmt.Sprintf("%v has no address yet", n.cfg.Hardware)
		return makeError(ErrNotStarted, str)
	}
	if own := n.Network(); network != own {
		str := fmt.Sprintf("message for network %v does not match network %v",
			network, own)
		return makeError(ErrWrongNetwork, str)
	}
	if dest == wire.NoAddress {
		str := fmt.Sprintf("address %v is unreachable: no node owns it", dest)
		return makeError(ErrUnreachable, str)
	}
	msg, err := wire.NewMsgData(network, dest, payload)
	switch {
	case errors.Is(err, wire.ErrPayloadTooLarge):
		str := fmt.Sprintf("payload of %d bytes exceeds the maximum of %d",
			len(payload), wire.MaxPayloadSize)
		return makeError(ErrPayloadTooLarge, str)

	case errors.Is(err, wire.ErrInvalidAddress):
		str := fmt.Sprintf("address %v is unreachable: %v", dest, err)
		return makeError(ErrUnreachable, str)

	case err != nil:
		return err
	}

	if dest == n.Address() {
		n.deliver(n.cfg.Hardware, msg.Payload)
		return nil
	}

	hw, err := n.resolver.Resolve(ctx, dest)
	switch {
	case errors.Is(err, pending.ErrTimeout):
		str := fmt.Sprintf("address %v is unreachable: no owner answered "+
			"within %v", dest, n.cfg.ResolveTimeout)
		return makeError(ErrUnreachable, str)

	case errors.Is(err, pending.ErrShutdown):
		str := fmt.Sprintf("%v stopped while resolving address %v",
			n.cfg.Hardware, dest)
		return makeError(ErrShutdown, str)

	case err != nil:
		return err
	}

	frame, err := wire.EncodeFrame(n.cfg.Hardware, hw, msg)
	if err != nil {
		return err
	}
	log.Debugf("%v sending %d bytes to %v (%v)", n.cfg.Hardware,
		len(payload), dest, hw)
	return n.cfg.Link.Send(frame)
}

// handleData delivers an inbound message addressed to the node's address and
// network.  Messages for any other destination are dropped.
func (n *Node) handleData(hdr *wire.FrameHeader, msg wire.Message) {
	data := msg.(*wire.MsgData)
	own := n.Address()
	if own == wire.NoAddress || data.To != own {
		return
	}
	if data.Network != n.Network() {
		log.Debugf("%v dropping message from %v for network %v",
			n.cfg.Hardware, hdr.From, data.Network)
		return
	}
	n.deliver(hdr.From, data.Payload)
}

// deliver hands a message to the consumer, if any.
func (n *Node) deliver(sender wire.HardwareID, payload []byte) {
	n.handlerMtx.RLock()
	handler := n.onMessage
	n.handlerMtx.RUnlock()
	if handler == nil {
		log.Debugf("%v has no consumer for message from %v", n.cfg.Hardware,
			sender)
		return
	}
	handler(sender, payload)
}
