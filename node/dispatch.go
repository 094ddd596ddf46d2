// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"sync/atomic"

	"github.com/decred/lanaddr/wire"
)

// Receive is the entry point for every frame the link delivers to the node.
// It decodes the frame and routes it to the handler for its kind.  Malformed
// frames and frames of unknown kinds are dropped.
//
// Receive never blocks beyond the address table lock and transmitting a
// response on the link, so it is safe to call from the receive context.
func (n *Node) Receive(frame []byte) {
	if atomic.LoadInt32(&n.shutdown) != 0 {
		return
	}

	hdr, msg, err := wire.DecodeFrame(frame)
	if err != nil {
		log.Debugf("%v dropping malformed frame %x: %v", n.cfg.Hardware,
			frame, err)
		return
	}
	handler, ok := n.handlers[hdr.Kind]
	if !ok {
		log.Debugf("%v dropping frame of unhandled kind %v", n.cfg.Hardware,
			hdr.Kind)
		return
	}
	log.Tracef("%v received %v from %v to %v", n.cfg.Hardware, hdr.Kind,
		hdr.From, hdr.To)
	handler(hdr, msg)
}

// handleAssignRequest assigns an address to the requester when the node is the
// coordinator.  Other nodes ignore assignment requests.
func (n *Node) handleAssignRequest(hdr *wire.FrameHeader, _ wire.Message) {
	if n.server == nil {
		return
	}
	if err := n.server.HandleRequest(hdr); err != nil {
		log.Errorf("Failed to answer assignment request from %v: %v",
			hdr.From, err)
	}
}

// handleAssignResponse completes the node's outstanding assignment request.
func (n *Node) handleAssignResponse(hdr *wire.FrameHeader, msg wire.Message) {
	if n.assigner == nil {
		return
	}
	n.assigner.HandleResponse(hdr, msg.(*wire.MsgAssignResponse))
}

// handleResolveRequest answers resolutions of the node's own address.
func (n *Node) handleResolveRequest(hdr *wire.FrameHeader, msg wire.Message) {
	err := n.resolver.HandleRequest(hdr, msg.(*wire.MsgResolveRequest))
	if err != nil {
		log.Errorf("Failed to answer resolution request from %v: %v",
			hdr.From, err)
	}
}

// handleResolveResponse completes the matching outstanding resolution.
func (n *Node) handleResolveResponse(hdr *wire.FrameHeader, msg wire.Message) {
	n.resolver.HandleResponse(hdr, msg.(*wire.MsgResolveResponse))
}
