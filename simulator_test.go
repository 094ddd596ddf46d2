// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/lanaddr/wire"
)

// testConfig returns a simulation configuration with the provided number of
// requesters and a private data directory.
func testConfig(t *testing.T, nodes int) *config {
	return &config{
		DataDir:        t.TempDir(),
		Nodes:          nodes,
		AssignTimeout:  2 * time.Second,
		ResolveTimeout: 2 * time.Second,
		coordinator:    wire.DefaultCoordinator,
	}
}

// startedAddrs starts every node of a new simulator and returns the address
// each requester obtained keyed by hardware identifier.
func startedAddrs(t *testing.T, cfg *config) map[wire.HardwareID]wire.NodeAddress {
	t.Helper()

	sim, err := newSimulator(cfg)
	if err != nil {
		t.Fatalf("newSimulator: unexpected error: %v", err)
	}
	defer sim.close()

	if err := sim.startNodes(context.Background()); err != nil {
		t.Fatalf("startNodes: unexpected error: %v", err)
	}
	addrs := make(map[wire.HardwareID]wire.NodeAddress)
	for _, n := range sim.requesters {
		addrs[n.Hardware()] = n.Address()
	}
	return addrs
}

// TestSimulatorStart ensures every requester obtains a distinct address from
// the pool and that requesters beyond the pool are left without one.
func TestSimulatorStart(t *testing.T) {
	tests := []struct {
		name     string
		nodes    int
		assigned int
	}{
		{"no requesters", 0, 0},
		{"three requesters", 3, 3},
		{"pool exhausted", 9, 7},
	}

	for _, test := range tests {
		addrs := startedAddrs(t, testConfig(t, test.nodes))
		if len(addrs) != test.nodes {
			t.Errorf("%s: got %d requesters, want %d", test.name,
				len(addrs), test.nodes)
			continue
		}

		seen := make(map[wire.NodeAddress]bool)
		for hw, addr := range addrs {
			if addr == wire.NoAddress {
				continue
			}
			if addr < 2 || addr > 8 || seen[addr] {
				t.Errorf("%s: %v got unexpected address %v", test.name,
					hw, addr)
			}
			seen[addr] = true
		}
		if len(seen) != test.assigned {
			t.Errorf("%s: got %d assigned requesters, want %d", test.name,
				len(seen), test.assigned)
		}
	}
}

// TestSimulatorPersist ensures requesters obtain the same addresses after a
// restart when the coordinator's bindings are persisted.
func TestSimulatorPersist(t *testing.T) {
	cfg := testConfig(t, 5)
	cfg.Persist = true

	first := startedAddrs(t, cfg)
	second := startedAddrs(t, cfg)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("mismatched addresses after restart -- got %s, want %s",
			spew.Sdump(second), spew.Sdump(first))
	}
}

// TestSimulatorRun ensures scripted messages are delivered once the nodes are
// started and that run returns when the context is cancelled.
func TestSimulatorRun(t *testing.T) {
	cfg := testConfig(t, 2)
	cfg.sends = []scriptedSend{{
		from:    'B',
		network: 1,
		dest:    wire.CoordinatorAddress,
		payload: []byte("hello"),
	}, {
		from:    'Q',
		network: 1,
		dest:    wire.CoordinatorAddress,
		payload: []byte("unknown sender"),
	}}

	sim, err := newSimulator(cfg)
	if err != nil {
		t.Fatalf("newSimulator: unexpected error: %v", err)
	}
	received := make(chan string, 2)
	sim.coordinator.OnMessage(func(sender wire.HardwareID, payload []byte) {
		received <- sender.String() + ":" + string(payload)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errChan := make(chan error, 1)
	go func() { errChan <- sim.run(ctx) }()

	select {
	case got := <-received:
		want := wire.HardwareID('B').String() + ":hello"
		if got != want {
			t.Fatalf("got message %q, want %q", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for the scripted message")
	}

	cancel()
	select {
	case err := <-errChan:
		if err != nil {
			t.Fatalf("run: unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
	select {
	case got := <-received:
		t.Fatalf("unexpected message %q", got)
	default:
	}
}
