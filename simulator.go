// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/decred/lanaddr/addrmgr"
	"github.com/decred/lanaddr/link"
	"github.com/decred/lanaddr/node"
	"github.com/decred/lanaddr/wire"
	"github.com/syndtr/goleveldb/leveldb"
	"golang.org/x/sync/errgroup"
)

// simulator runs a coordinator and a set of requester nodes attached to an
// in-memory bus.
type simulator struct {
	cfg         *config
	bus         *link.Bus
	table       *addrmgr.AddressTable
	db          *leveldb.DB
	coordinator *node.Node
	requesters  []*node.Node
	nodes       map[wire.HardwareID]*node.Node
}

// requesterIDs returns the hardware identifiers of n requesters.  They are
// consecutive printable characters starting at 'B' that skip the coordinator.
func requesterIDs(coordinator wire.HardwareID, n int) []wire.HardwareID {
	ids := make([]wire.HardwareID, 0, n)
	for hw := wire.HardwareID('B'); len(ids) < n && hw <= '~'; hw++ {
		if hw != coordinator {
			ids = append(ids, hw)
		}
	}
	return ids
}

// newSimulator creates the bus, the coordinator's address table, and every
// node described by the configuration.
func newSimulator(cfg *config) (*simulator, error) {
	s := &simulator{
		cfg:   cfg,
		bus:   link.NewBus(),
		nodes: make(map[wire.HardwareID]*node.Node),
	}

	tableCfg := addrmgr.Config{}
	if cfg.Persist {
		db, err := addrmgr.OpenBindingDB(cfg.DataDir)
		if err != nil {
			s.bus.Stop()
			return nil, err
		}
		s.db = db
		tableCfg.DB = db
	}
	table, err := addrmgr.New(&tableCfg)
	if err != nil {
		s.close()
		return nil, err
	}
	s.table = table

	s.coordinator, err = s.attach(cfg.coordinator, table)
	if err != nil {
		s.close()
		return nil, err
	}
	for _, hw := range requesterIDs(cfg.coordinator, cfg.Nodes) {
		n, err := s.attach(hw, nil)
		if err != nil {
			s.close()
			return nil, err
		}
		s.requesters = append(s.requesters, n)
	}
	return s, nil
}

// attach creates a node with the provided hardware identifier and attaches it
// to the bus.
func (s *simulator) attach(hw wire.HardwareID, table *addrmgr.AddressTable) (*node.Node, error) {
	// Frames may only be handed to the node once it exists.
	var n *node.Node
	var ready sync.WaitGroup
	ready.Add(1)
	port, err := s.bus.Attach(hw.String(), link.ReceiverFunc(func(frame []byte) {
		ready.Wait()
		if n != nil {
			n.Receive(frame)
		}
	}))
	if err != nil {
		return nil, err
	}

	n, err = node.New(&node.Config{
		Hardware:       hw,
		Coordinator:    s.cfg.coordinator,
		Link:           port,
		Table:          table,
		AssignTimeout:  s.cfg.AssignTimeout,
		ResolveTimeout: s.cfg.ResolveTimeout,
	})
	ready.Done()
	if err != nil {
		return nil, err
	}
	n.OnMessage(func(sender wire.HardwareID, payload []byte) {
		landLog.Infof("%v received message from %v: %q", hw, sender, payload)
	})
	s.nodes[hw] = n
	return n, nil
}

// startNodes starts the coordinator followed by every requester concurrently.
// Requesters that fail to obtain an address are logged and left idle.  Only a
// coordinator failure or cancellation is returned.
func (s *simulator) startNodes(ctx context.Context) error {
	s.table.Start()
	if _, err := s.coordinator.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, n := range s.requesters {
		n := n
		g.Go(func() error {
			addr, err := n.Start(gctx)
			switch {
			case errors.Is(err, node.ErrExhausted):
				landLog.Warnf("%v did not get an address: the "+
					"coordinator's pool is exhausted", n.Hardware())
				return nil

			case errors.Is(err, node.ErrStartupFailed):
				landLog.Errorf("%v: %v", n.Hardware(), err)
				return nil

			case err != nil:
				return err
			}
			landLog.Infof("Node %v started with address %v", n.Hardware(),
				addr)
			return nil
		})
	}
	return g.Wait()
}

// runScript sends every scripted message in order.  Failed sends are logged.
func (s *simulator) runScript(ctx context.Context) {
	for _, send := range s.cfg.sends {
		if shutdownRequested(ctx) {
			return
		}
		n, ok := s.nodes[send.from]
		if !ok {
			landLog.Warnf("Skipping message from unknown node %v", send.from)
			continue
		}
		err := n.Send(ctx, send.dest, send.network, send.payload)
		if err != nil {
			landLog.Errorf("%v failed to send to %v: %v", send.from,
				send.dest, err)
			continue
		}
		landLog.Infof("%v sent %q to %v on network %v", send.from,
			send.payload, send.dest, send.network)
	}
}

// logBindings logs the assignments the coordinator made.
func (s *simulator) logBindings() {
	bindings := s.table.Bindings()
	landLog.Infof("Coordinator %v assigned %d addresses", s.cfg.coordinator,
		len(bindings))
	for _, b := range bindings {
		landLog.Debugf("  %v => %v", b.Hardware, b.Address)
	}
}

// run starts every node, sends the scripted messages, and then blocks until
// the context is cancelled.
func (s *simulator) run(ctx context.Context) error {
	defer s.close()

	if err := s.startNodes(ctx); err != nil {
		if shutdownRequested(ctx) {
			return nil
		}
		return fmt.Errorf("unable to start nodes: %w", err)
	}
	s.logBindings()
	s.runScript(ctx)

	landLog.Infof("Simulation running with %d nodes on the link",
		len(s.nodes))
	<-ctx.Done()
	return nil
}

// close stops every node and the bus and flushes the coordinator's bindings.
func (s *simulator) close() {
	for _, n := range s.nodes {
		n.Stop()
	}
	s.bus.Stop()
	if s.table != nil {
		s.table.Stop()
	}
	if s.db != nil {
		landLog.Infof("Gracefully shutting down the binding database...")
		if err := s.db.Close(); err != nil {
			landLog.Errorf("Failed to close the binding database: %v", err)
		}
	}
}
