// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/decred/lanaddr/addrmgr"
	"github.com/decred/lanaddr/internal/assign"
	"github.com/decred/lanaddr/internal/pending"
	"github.com/decred/lanaddr/internal/resolve"
	"github.com/decred/lanaddr/wire"
)

const (
	// DefaultAssignTimeout is the default window in which the coordinator
	// must answer an assignment request.
	DefaultAssignTimeout = 5 * time.Second

	// DefaultResolveTimeout is the default window in which the owner of an
	// address must answer a resolution request.
	DefaultResolveTimeout = 5 * time.Second
)

// Link is the shared broadcast medium a node transmits frames through.  Every
// frame sent is delivered to every other node attached to the link, which in
// turn hands it to Node.Receive.
type Link interface {
	Send(frame []byte) error
}

// MessageHandler is invoked with the sender and payload of every message
// delivered to the node.  It runs in the receive context and must not block.
type MessageHandler func(sender wire.HardwareID, payload []byte)

// State is the address assignment state of a node.
type State int32

const (
	// StateIdle means the node has no address and has not requested one.
	StateIdle State = iota

	// StateRequestSent means the node is waiting for the coordinator to
	// answer its assignment request.
	StateRequestSent

	// StateAssigned means the node has an address.
	StateAssigned
)

// String returns the state as a human-readable string.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequestSent:
		return "request sent"
	case StateAssigned:
		return "assigned"
	}
	return fmt.Sprintf("Unknown State (%d)", int32(s))
}

// Config houses the configuration of a node.
type Config struct {
	// Hardware is the hardware identifier of the node's link interface.
	Hardware wire.HardwareID

	// Coordinator is the hardware identifier of the coordinator.  A node
	// whose hardware identifier equals it acts as the coordinator.  It
	// defaults to wire.DefaultCoordinator.
	Coordinator wire.HardwareID

	// Network is the logical network the coordinator hands out.  It is only
	// used by the coordinator and defaults to wire.DefaultNetwork.
	Network wire.NetworkID

	// Link is the medium frames are transmitted through.
	Link Link

	// Table is the address table of the node.  The coordinator assigns
	// addresses from it and every node caches resolved bindings in it.  A
	// table with the default pool is created when nil.  The caller owns the
	// lifecycle of a provided table.
	Table *addrmgr.AddressTable

	// AssignTimeout and ResolveTimeout override the default wait windows.
	AssignTimeout  time.Duration
	ResolveTimeout time.Duration
}

// frameHandler handles a decoded inbound frame.
type frameHandler func(hdr *wire.FrameHeader, msg wire.Message)

// Node is a single participant on the shared link.  It obtains its node
// address from the coordinator, answers resolutions of that address, resolves
// the addresses it sends to, and delivers inbound messages to the consumer.
// The coordinator is a node too, one that assigns addresses instead of
// requesting one.
type Node struct {
	cfg      Config
	table    *addrmgr.AddressTable
	assigner *assign.Client
	server   *assign.Server
	resolver *resolve.Resolver

	// handlers maps every frame kind the node understands to its handler.
	handlers map[wire.FrameKind]frameHandler

	state    int32
	addr     uint32
	network  uint32
	shutdown int32

	// startMtx serializes assignment so concurrent Start calls observe a
	// single state transition.
	startMtx sync.Mutex

	handlerMtx sync.RWMutex
	onMessage  MessageHandler
}

// New returns a node for the provided configuration.  The node is idle until
// Start is called, although it begins handling frames immediately once the
// link delivers them to Receive.
func New(cfg *Config) (*Node, error) {
	c := *cfg
	if c.Link == nil {
		return nil, errors.New("node requires a link")
	}
	if c.Hardware == wire.NoHardware {
		return nil, errors.New("node requires a hardware identifier")
	}
	if c.Coordinator == wire.NoHardware {
		c.Coordinator = wire.DefaultCoordinator
	}
	if c.Network == 0 {
		c.Network = wire.DefaultNetwork
	}
	if c.Network > math.MaxUint8 {
		return nil, fmt.Errorf("network %v does not fit a data frame",
			c.Network)
	}
	if c.AssignTimeout <= 0 {
		c.AssignTimeout = DefaultAssignTimeout
	}
	if c.ResolveTimeout <= 0 {
		c.ResolveTimeout = DefaultResolveTimeout
	}
	if c.Table == nil {
		table, err := addrmgr.New(nil)
		if err != nil {
			return nil, err
		}
		c.Table = table
	}

	n := &Node{
		cfg:   c,
		table: c.Table,
	}
	if n.IsCoordinator() {
		n.server = assign.NewServer(&assign.ServerConfig{
			Hardware: c.Hardware,
			Network:  c.Network,
			Table:    c.Table,
			Link:     c.Link,
		})
	} else {
		n.assigner = assign.NewClient(&assign.ClientConfig{
			Hardware:    c.Hardware,
			Coordinator: c.Coordinator,
			Timeout:     c.AssignTimeout,
			Link:        c.Link,
		})
	}
	n.resolver = resolve.New(&resolve.Config{
		Hardware:     c.Hardware,
		LocalAddress: n.Address,
		Table:        c.Table,
		Timeout:      c.ResolveTimeout,
		Link:         c.Link,
	})
	n.handlers = map[wire.FrameKind]frameHandler{
		wire.KindAssignRequest:   n.handleAssignRequest,
		wire.KindAssignResponse:  n.handleAssignResponse,
		wire.KindResolveRequest:  n.handleResolveRequest,
		wire.KindResolveResponse: n.handleResolveResponse,
		wire.KindData:            n.handleData,
	}
	return n, nil
}

// Hardware returns the hardware identifier of the node.
func (n *Node) Hardware() wire.HardwareID {
	return n.cfg.Hardware
}

// IsCoordinator returns whether the node is the coordinator.
func (n *Node) IsCoordinator() bool {
	return n.cfg.Hardware == n.cfg.Coordinator
}

// Address returns the node address of the node, or wire.NoAddress until one
// is assigned.
//
// This function is safe for concurrent access.
func (n *Node) Address() wire.NodeAddress {
	return wire.NodeAddress(atomic.LoadUint32(&n.addr))
}

// Network returns the logical network of the node, or zero until an address
// is assigned.
//
// This function is safe for concurrent access.
func (n *Node) Network() wire.NetworkID {
	return wire.NetworkID(atomic.LoadUint32(&n.network))
}

// State returns the address assignment state of the node.
//
// This function is safe for concurrent access.
func (n *Node) State() State {
	return State(atomic.LoadInt32(&n.state))
}

// Table returns the address table of the node.
func (n *Node) Table() *addrmgr.AddressTable {
	return n.table
}

// OnMessage sets the consumer of inbound messages, replacing any previous
// one.
//
// This function is safe for concurrent access.
func (n *Node) OnMessage(handler MessageHandler) {
	n.handlerMtx.Lock()
	n.onMessage = handler
	n.handlerMtx.Unlock()
}

// assigned records the granted address and network and transitions to the
// assigned state.
func (n *Node) assigned(addr wire.NodeAddress, network wire.NetworkID) {
	atomic.StoreUint32(&n.network, uint32(network))
	atomic.StoreUint32(&n.addr, uint32(addr))
	atomic.StoreInt32(&n.state, int32(StateAssigned))
}

// Start obtains the node address of the node and returns it.  The coordinator
// takes the coordinator address without any exchange.  Every other node
// requests an address from the coordinator and blocks until it is granted.
//
// A node that does not obtain an address fails with ErrStartupFailed.  When
// the coordinator refused because its pool is exhausted, the error also
// matches ErrExhausted.  Calling Start on a node that already has an address
// returns it.
func (n *Node) Start(ctx context.Context) (wire.NodeAddress, error) {
	n.startMtx.Lock()
	defer n.startMtx.Unlock()

	if atomic.LoadInt32(&n.shutdown) != 0 {
		return wire.NoAddress, makeError(ErrShutdown, "node is stopped")
	}
	if n.State() == StateAssigned {
		return n.Address(), nil
	}

	if n.IsCoordinator() {
		n.assigned(wire.CoordinatorAddress, n.cfg.Network)
		log.Infof("Coordinator %v started with address %v on network %v",
			n.cfg.Hardware, wire.CoordinatorAddress, n.cfg.Network)
		return wire.CoordinatorAddress, nil
	}

	atomic.StoreInt32(&n.state, int32(StateRequestSent))
	grant, err := n.assigner.Request(ctx)
	if err != nil {
		atomic.StoreInt32(&n.state, int32(StateIdle))
		return wire.NoAddress, n.startupError(err)
	}

	n.assigned(grant.Address, grant.Network)
	log.Infof("%v assigned address %v on network %v", n.cfg.Hardware,
		grant.Address, grant.Network)
	return grant.Address, nil
}

// startupError converts an assignment failure into a node error.
func (n *Node) startupError(err error) error {
	hw := n.cfg.Hardware
	switch {
	case errors.Is(err, assign.ErrExhausted):
		str := fmt.Sprintf("%v failed to start: %v", hw, err)
		return Error{Err: errors.Join(ErrStartupFailed, ErrExhausted),
			Description: str}

	case errors.Is(err, pending.ErrShutdown):
		str := fmt.Sprintf("%v stopped while waiting for an address", hw)
		return makeError(ErrShutdown, str)

	case errors.Is(err, pending.ErrTimeout):
		str := fmt.Sprintf("%v failed to start: coordinator %v did not "+
			"answer within %v", hw, n.cfg.Coordinator, n.cfg.AssignTimeout)
		return makeError(ErrStartupFailed, str)
	}

	str := fmt.Sprintf("%v failed to start: %v", hw, err)
	return Error{Err: errors.Join(ErrStartupFailed, err), Description: str}
}

// Stop aborts every outstanding wait with ErrShutdown.  Frames received after
// Stop are ignored and later operations fail with ErrShutdown.
//
// This function is safe for concurrent access.
func (n *Node) Stop() {
	if atomic.AddInt32(&n.shutdown, 1) != 1 {
		log.Warnf("Node %v is already in the process of shutting down",
			n.cfg.Hardware)
		return
	}

	log.Debugf("Node %v shutting down", n.cfg.Hardware)
	if n.assigner != nil {
		n.assigner.Shutdown()
	}
	n.resolver.Shutdown()
}
