// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package assign

import (
	"context"
	"fmt"
	"time"

	"github.com/decred/lanaddr/internal/pending"
	"github.com/decred/lanaddr/wire"
)

// waitLogInterval is the interval between log messages reporting that a
// requester is still waiting on its assignment.
const waitLogInterval = time.Second

// Link transmits encoded frames to every other node on the shared link.
type Link interface {
	Send(frame []byte) error
}

// Grant is the node address and logical network a coordinator assigned.
type Grant struct {
	Address wire.NodeAddress
	Network wire.NetworkID
}

// ClientConfig houses the configuration of an assignment requester.
type ClientConfig struct {
	// Hardware is the hardware identifier of the requesting node.
	Hardware wire.HardwareID

	// Coordinator is the hardware identifier requests are addressed to.
	Coordinator wire.HardwareID

	// Timeout is the window in which the coordinator must respond.
	Timeout time.Duration

	// Link transmits the request.
	Link Link
}

// Client is the requester side of the address assignment protocol.  A node
// uses it once during startup to obtain its node address.
type Client struct {
	cfg      ClientConfig
	requests *pending.Registry[wire.HardwareID, Grant]
}

// NewClient returns a requester for the provided configuration.
func NewClient(cfg *ClientConfig) *Client {
	return &Client{
		cfg:      *cfg,
		requests: pending.New[wire.HardwareID, Grant](),
	}
}

// Request sends an assignment request to the coordinator and blocks until it
// answers, the timeout elapses, the context is cancelled, or the client is
// shut down.  Concurrent calls share a single outstanding request.
//
// Errors wrap pending.ErrTimeout when the coordinator does not answer in time,
// pending.ErrShutdown when the client is shut down, and ErrExhausted when the
// coordinator has no free address.
func (c *Client) Request(ctx context.Context) (Grant, error) {
	hw := c.cfg.Hardware

	// Report progress while waiting until the request finishes.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(waitLogInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				log.Infof("%v waiting for an assignment response from %v",
					hw, c.cfg.Coordinator)
			case <-done:
				return
			}
		}
	}()

	send := func() error {
		frame, err := wire.EncodeFrame(hw, c.cfg.Coordinator,
			wire.NewMsgAssignRequest())
		if err != nil {
			return err
		}
		log.Debugf("%v requesting a node address from %v", hw,
			c.cfg.Coordinator)
		return c.cfg.Link.Send(frame)
	}
	return c.requests.Wait(ctx, hw, c.cfg.Timeout, send)
}

// HandleResponse completes the outstanding request with an inbound assignment
// response.  Responses addressed to other nodes, responses without an
// outstanding request, and responses from anyone but the coordinator are
// ignored.
//
// This function never blocks.
func (c *Client) HandleResponse(hdr *wire.FrameHeader, msg *wire.MsgAssignResponse) pending.Outcome {
	hw := c.cfg.Hardware
	if hdr.To != hw {
		return pending.Unsolicited
	}
	if hdr.From != c.cfg.Coordinator {
		log.Warnf("Ignoring assignment response for %v from non-coordinator "+
			"%v", hw, hdr.From)
		return pending.Unsolicited
	}

	var outcome pending.Outcome
	if msg.Exhausted() {
		str := fmt.Sprintf("coordinator %v has no free address for %v",
			hdr.From, hw)
		outcome = c.requests.Complete(hw, Grant{}, makeError(ErrExhausted,
			str))
	} else {
		grant := Grant{Address: msg.Address, Network: msg.Network}
		outcome = c.requests.Complete(hw, grant, nil)
	}
	if outcome != pending.Completed {
		log.Debugf("Ignoring %s assignment response %v for %v", outcome, msg,
			hw)
	}
	return outcome
}

// Shutdown aborts an outstanding request with pending.ErrShutdown and causes
// every later request to fail.
func (c *Client) Shutdown() {
	c.requests.Shutdown()
}
