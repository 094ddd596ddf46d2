// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2015-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/decred/lanaddr/wire"
	"github.com/syndtr/goleveldb/leveldb"
)

const (
	// DefaultPoolStart is the lowest node address handed out by default.
	DefaultPoolStart wire.NodeAddress = 2

	// DefaultPoolEnd is the highest node address handed out by default.
	DefaultPoolEnd wire.NodeAddress = 8

	// defaultFlushInterval is the interval used to flush changed bindings to
	// the binding database.
	defaultFlushInterval = time.Second * 30
)

// Binding is a single hardware identifier to node address pairing.
type Binding struct {
	Hardware wire.HardwareID
	Address  wire.NodeAddress
}

// Config houses the configuration of an address table.
type Config struct {
	// PoolStart and PoolEnd define the inclusive range of node addresses
	// Assign hands out.  Both default to the standard pool when zero.
	PoolStart wire.NodeAddress
	PoolEnd   wire.NodeAddress

	// DB is an optional database the table persists its bindings to.  When
	// set, Start loads the persisted bindings and changes are flushed on an
	// interval and on Stop.
	DB *leveldb.DB

	// FlushInterval overrides the default binding flush interval.
	FlushInterval time.Duration
}

// AddressTable provides a concurrency safe bijective mapping between hardware
// identifiers and node addresses.  A coordinator uses it to hand out addresses
// from its pool, and every node uses it to cache resolved addresses.
//
// Every operation takes the table mutex for its whole duration and none of
// them perform I/O, so check-then-act sequences such as Assign are atomic.
type AddressTable struct {
	// mtx is used to ensure safe concurrent access to fields on an instance
	// of the address table.
	mtx sync.Mutex

	// byHardware and byAddress are mutual inverses.
	byHardware map[wire.HardwareID]wire.NodeAddress
	byAddress  map[wire.NodeAddress]wire.HardwareID

	poolStart wire.NodeAddress
	poolEnd   wire.NodeAddress

	// changed signals whether the table needs to have its bindings flushed
	// to the binding database.
	changed bool

	db            *leveldb.DB
	flushInterval time.Duration

	// started and shutdown are used for lifecycle management of the
	// persistence handler.
	started  int32
	shutdown int32
	wg       sync.WaitGroup
	quit     chan struct{}
}

// New returns a new address table for the provided configuration.  A nil
// configuration uses the default pool without persistence.
func New(cfg *Config) (*AddressTable, error) {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	if c.PoolStart == 0 && c.PoolEnd == 0 {
		c.PoolStart, c.PoolEnd = DefaultPoolStart, DefaultPoolEnd
	}
	if c.PoolStart <= wire.CoordinatorAddress || c.PoolEnd < c.PoolStart {
		str := fmt.Sprintf("invalid address pool [%v, %v]", c.PoolStart,
			c.PoolEnd)
		return nil, makeError(ErrInvalidPool, str)
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = defaultFlushInterval
	}

	return &AddressTable{
		byHardware:    make(map[wire.HardwareID]wire.NodeAddress),
		byAddress:     make(map[wire.NodeAddress]wire.HardwareID),
		poolStart:     c.PoolStart,
		poolEnd:       c.PoolEnd,
		db:            c.DB,
		flushInterval: c.FlushInterval,
		quit:          make(chan struct{}),
	}, nil
}

// LookupAddress returns the node address bound to the provided hardware
// identifier and whether or not it was found.
//
// This function is safe for concurrent access.
func (t *AddressTable) LookupAddress(hw wire.HardwareID) (wire.NodeAddress, bool) {
	t.mtx.Lock()
	addr, ok := t.byHardware[hw]
	t.mtx.Unlock()
	return addr, ok
}

// LookupHardware returns the hardware identifier bound to the provided node
// address and whether or not it was found.
//
// This function is safe for concurrent access.
func (t *AddressTable) LookupHardware(addr wire.NodeAddress) (wire.HardwareID, bool) {
	t.mtx.Lock()
	hw, ok := t.byAddress[addr]
	t.mtx.Unlock()
	return hw, ok
}

// bind pairs the hardware identifier with the address in both directions,
// dropping any prior binding of either key so the two maps remain inverses.
//
// This function MUST be called with the table mutex held (for writes).
func (t *AddressTable) bind(hw wire.HardwareID, addr wire.NodeAddress) {
	if oldAddr, ok := t.byHardware[hw]; ok {
		if oldAddr == addr {
			return
		}
		delete(t.byAddress, oldAddr)
		log.Debugf("Rebinding %v from address %v to %v", hw, oldAddr, addr)
	}
	if oldHW, ok := t.byAddress[addr]; ok {
		delete(t.byHardware, oldHW)
		log.Debugf("Address %v moves from %v to %v", addr, oldHW, hw)
	}
	t.byHardware[hw] = addr
	t.byAddress[addr] = hw
	t.changed = true
}

// Bind pairs the hardware identifier with the node address, overwriting any
// prior binding of either one.  The last writer wins.
//
// This function is safe for concurrent access.
func (t *AddressTable) Bind(hw wire.HardwareID, addr wire.NodeAddress) {
	t.mtx.Lock()
	t.bind(hw, addr)
	t.mtx.Unlock()
}

// Assign returns the node address bound to the hardware identifier, binding
// the lowest free address of the pool first when it has none.  Repeated calls
// for the same hardware identifier return the same address.  ErrPoolExhausted
// is returned when every pool address is taken.
//
// This function is safe for concurrent access.
func (t *AddressTable) Assign(hw wire.HardwareID) (wire.NodeAddress, error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if addr, ok := t.byHardware[hw]; ok {
		return addr, nil
	}
	for addr := t.poolStart; addr <= t.poolEnd; addr++ {
		if _, ok := t.byAddress[addr]; ok {
			continue
		}
		t.bind(hw, addr)
		log.Debugf("Assigned address %v to %v", addr, hw)
		return addr, nil
	}

	str := fmt.Sprintf("no free address in pool [%v, %v] for %v",
		t.poolStart, t.poolEnd, hw)
	return wire.NoAddress, makeError(ErrPoolExhausted, str)
}

// Len returns the number of bindings in the table.
//
// This function is safe for concurrent access.
func (t *AddressTable) Len() int {
	t.mtx.Lock()
	n := len(t.byHardware)
	t.mtx.Unlock()
	return n
}

// bindings returns a snapshot of every binding ordered by node address.
//
// This function MUST be called with the table mutex held (for reads).
func (t *AddressTable) bindings() []Binding {
	bindings := make([]Binding, 0, len(t.byAddress))
	for addr, hw := range t.byAddress {
		bindings = append(bindings, Binding{Hardware: hw, Address: addr})
	}
	sort.Slice(bindings, func(i, j int) bool {
		return bindings[i].Address < bindings[j].Address
	})
	return bindings
}

// Bindings returns a snapshot of every binding ordered by node address.
//
// This function is safe for concurrent access.
func (t *AddressTable) Bindings() []Binding {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.bindings()
}

// bindingHandler is the persistence handler for the address table.  It must
// be run as a goroutine.
func (t *AddressTable) bindingHandler() {
	flushTicker := time.NewTicker(t.flushInterval)
	defer flushTicker.Stop()
out:
	for {
		select {
		case <-flushTicker.C:
			t.flushBindings()

		case <-t.quit:
			break out
		}
	}
	t.flushBindings()
	log.Trace("Binding handler done")
	t.wg.Done()
}

// Start loads the persisted bindings and begins the handler that flushes
// changes to the binding database.  It has no effect when the table has no
// database or was already started.
//
// This function is safe for concurrent access.
func (t *AddressTable) Start() {
	if t.db == nil {
		return
	}

	// Return early if the address table has already been started.
	if atomic.AddInt32(&t.started, 1) != 1 {
		return
	}

	log.Trace("Starting address table")
	t.loadBindings()

	t.wg.Add(1)
	go t.bindingHandler()
}

// Stop flushes outstanding changes and shuts down the persistence handler.
//
// This function is safe for concurrent access.
func (t *AddressTable) Stop() {
	if t.db == nil || atomic.LoadInt32(&t.started) == 0 {
		return
	}

	// Return early if the address table has already been stopped.
	if atomic.AddInt32(&t.shutdown, 1) != 1 {
		log.Warnf("Address table is already in the process of shutting down")
		return
	}

	log.Infof("Address table shutting down")
	close(t.quit)
	t.wg.Wait()
}
