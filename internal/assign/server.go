// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package assign

import (
	"errors"

	"github.com/decred/lanaddr/addrmgr"
	"github.com/decred/lanaddr/wire"
)

// ServerConfig houses the configuration of the coordinator side of the
// assignment protocol.
type ServerConfig struct {
	// Hardware is the hardware identifier of the coordinator.
	Hardware wire.HardwareID

	// Network is the logical network identifier handed out with every
	// address.
	Network wire.NetworkID

	// Table is the address table addresses are assigned from.
	Table *addrmgr.AddressTable

	// Link transmits the responses.
	Link Link
}

// Server is the coordinator side of the address assignment protocol.
type Server struct {
	cfg ServerConfig
}

// NewServer returns a coordinator for the provided configuration.
func NewServer(cfg *ServerConfig) *Server {
	return &Server{cfg: *cfg}
}

// HandleRequest assigns an address to the sender of an inbound assignment
// request and responds to it.  When the address pool is exhausted, the
// response is an explicit failure.  Requests addressed to other nodes or
// without a sender are ignored.
//
// The only error returned is one from transmitting the response.  This
// function never blocks beyond the table lock and the link.
func (s *Server) HandleRequest(hdr *wire.FrameHeader) error {
	if hdr.To != s.cfg.Hardware && hdr.To != wire.Broadcast {
		return nil
	}
	requester := hdr.From
	if requester == wire.NoHardware || requester == s.cfg.Hardware {
		log.Debugf("Ignoring assignment request from %v", requester)
		return nil
	}

	var resp *wire.MsgAssignResponse
	addr, err := s.cfg.Table.Assign(requester)
	switch {
	case errors.Is(err, addrmgr.ErrPoolExhausted):
		log.Warnf("Refusing assignment request from %v: %v", requester, err)
		resp = wire.NewMsgAssignExhausted()

	case err != nil:
		return err

	default:
		log.Infof("Assigned address %v on network %v to %v", addr,
			s.cfg.Network, requester)
		resp = wire.NewMsgAssignResponse(addr, s.cfg.Network)
	}

	frame, err := wire.EncodeFrame(s.cfg.Hardware, requester, resp)
	if err != nil {
		return err
	}
	return s.cfg.Link.Send(frame)
}
