// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package resolve implements the address resolution protocol that translates
// node addresses into the hardware identifiers owning them.
package resolve

import (
	"context"
	"time"

	"github.com/decred/lanaddr/addrmgr"
	"github.com/decred/lanaddr/internal/pending"
	"github.com/decred/lanaddr/wire"
)

// Link transmits encoded frames to every other node on the shared link.
type Link interface {
	Send(frame []byte) error
}

// Config houses the configuration of a resolver.
type Config struct {
	// Hardware is the hardware identifier of the local node.
	Hardware wire.HardwareID

	// LocalAddress returns the node address of the local node, or
	// wire.NoAddress while it has none.  Requests for it are answered.
	LocalAddress func() wire.NodeAddress

	// Table caches resolved bindings.
	Table *addrmgr.AddressTable

	// Timeout is the window in which the owner of an address must respond.
	Timeout time.Duration

	// Link transmits requests and responses.
	Link Link
}

// Resolver provides both sides of the address resolution protocol for a single
// node.
type Resolver struct {
	cfg      Config
	requests *pending.Registry[wire.NodeAddress, wire.HardwareID]
}

// New returns a resolver for the provided configuration.
func New(cfg *Config) *Resolver {
	return &Resolver{
		cfg:      *cfg,
		requests: pending.New[wire.NodeAddress, wire.HardwareID](),
	}
}

// Resolve returns the hardware identifier owning the target address.  Cached
// bindings are returned immediately.  Otherwise a resolution request is
// broadcast, or an outstanding one for the same target is joined, and the
// caller blocks until the owner responds, the timeout elapses, the context is
// cancelled, or the resolver is shut down.
//
// Errors wrap pending.ErrTimeout when no owner responds in time and
// pending.ErrShutdown when the resolver is shut down.
func (r *Resolver) Resolve(ctx context.Context, target wire.NodeAddress) (wire.HardwareID, error) {
	if target == wire.NoAddress {
		return wire.NoHardware, makeError(ErrNoAddress, "the zero address "+
			"is never assigned")
	}
	if hw, ok := r.cfg.Table.LookupHardware(target); ok {
		return hw, nil
	}
	if target != wire.NoAddress && target == r.cfg.LocalAddress() {
		return r.cfg.Hardware, nil
	}

	send := func() error {
		frame, err := wire.EncodeFrame(r.cfg.Hardware, wire.Broadcast,
			wire.NewMsgResolveRequest(target))
		if err != nil {
			return err
		}
		log.Debugf("%v resolving address %v", r.cfg.Hardware, target)
		return r.cfg.Link.Send(frame)
	}
	hw, err := r.requests.Wait(ctx, target, r.cfg.Timeout, send)
	if err != nil {
		log.Debugf("%v failed to resolve address %v: %v", r.cfg.Hardware,
			target, err)
		return wire.NoHardware, err
	}
	return hw, nil
}

// HandleRequest answers an inbound resolution request when the requested
// address is owned by the local node.  Requests for any other address are
// ignored.
//
// The only error returned is one from transmitting the response.
func (r *Resolver) HandleRequest(hdr *wire.FrameHeader, msg *wire.MsgResolveRequest) error {
	own := r.cfg.LocalAddress()
	if own == wire.NoAddress || msg.Target != own {
		return nil
	}
	if hdr.From == wire.NoHardware || hdr.From == r.cfg.Hardware {
		return nil
	}

	log.Tracef("%v answering resolution of %v for %v", r.cfg.Hardware, own,
		hdr.From)
	frame, err := wire.EncodeFrame(r.cfg.Hardware, hdr.From,
		wire.NewMsgResolveResponse(own, r.cfg.Hardware))
	if err != nil {
		return err
	}
	return r.cfg.Link.Send(frame)
}

// HandleResponse caches the binding carried by an inbound resolution response
// and completes the matching outstanding request.  Responses addressed to
// other nodes, responses whose owner is not the sender, and responses that do
// not match an outstanding request are ignored.
//
// This function never blocks.
func (r *Resolver) HandleResponse(hdr *wire.FrameHeader, msg *wire.MsgResolveResponse) pending.Outcome {
	if hdr.To != r.cfg.Hardware {
		return pending.Unsolicited
	}
	if msg.Owner != hdr.From || msg.Owner == wire.NoHardware {
		log.Warnf("Ignoring resolution response from %v claiming %v owns %v",
			hdr.From, msg.Owner, msg.Address)
		return pending.Unsolicited
	}
	// Only solicited bindings are cached.
	if r.requests.Pending(msg.Address) {
		r.cfg.Table.Bind(msg.Owner, msg.Address)
	}
	outcome := r.requests.Complete(msg.Address, msg.Owner, nil)
	if outcome != pending.Completed {
		log.Debugf("Ignoring %s resolution response %v => %v", outcome,
			msg.Address, msg.Owner)
		return outcome
	}
	log.Debugf("%v resolved address %v to %v", r.cfg.Hardware, msg.Address,
		msg.Owner)
	return outcome
}

// Shutdown aborts every outstanding resolution with pending.ErrShutdown and
// causes every later resolution that is not cached to fail.
func (r *Resolver) Shutdown() {
	r.requests.Shutdown()
}
