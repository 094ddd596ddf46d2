// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package link

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/decred/dcrd/crypto/rand"
)

// Receiver is invoked once for every frame delivered to a port.
type Receiver interface {
	Receive(frame []byte)
}

// ReceiverFunc is an adapter that allows the use of ordinary functions as
// receivers.
type ReceiverFunc func(frame []byte)

// Receive calls f(frame).
func (f ReceiverFunc) Receive(frame []byte) {
	f(frame)
}

// Bus is an in-memory broadcast medium.  Every frame sent through one of its
// ports is delivered to every other port, never to the sender.
//
// Each port receives frames on its own goroutine in the order they were
// enqueued, so frames from a single sender arrive in the order they were sent.
// Sending never blocks on receivers.  The order in which the other ports are
// enqueued is randomized for every frame.
type Bus struct {
	mtx   sync.RWMutex
	ports []*Port

	numFrames uint64

	shutdown int32
	wg       sync.WaitGroup
	quit     chan struct{}
}

// NewBus returns a new bus without any ports.
func NewBus() *Bus {
	return &Bus{quit: make(chan struct{})}
}

// Port is the attachment of a single receiver to a bus.  It implements the
// link a node transmits frames through.
type Port struct {
	bus  *Bus
	name string
	recv Receiver

	mtx    sync.Mutex
	queue  [][]byte
	signal chan struct{}
}

// Attach connects a receiver to the bus and starts delivering frames sent by
// the other ports to it.  The name is only used for logging.
//
// This function is safe for concurrent access.
func (b *Bus) Attach(name string, recv Receiver) (*Port, error) {
	p := &Port{
		bus:    b,
		name:   name,
		recv:   recv,
		signal: make(chan struct{}, 1),
	}

	// Stop flags shutdown under the same lock, so a port is either counted in
	// the wait group before Stop waits or rejected.
	b.mtx.Lock()
	if atomic.LoadInt32(&b.shutdown) != 0 {
		b.mtx.Unlock()
		str := fmt.Sprintf("unable to attach %s to stopped bus", name)
		return nil, makeError(ErrBusStopped, str)
	}
	b.ports = append(b.ports, p)
	b.wg.Add(1)
	b.mtx.Unlock()

	go p.deliverHandler()
	log.Debugf("Attached %s to the bus", name)
	return p, nil
}

// Send broadcasts a copy of the frame to every other port on the bus.  It
// never blocks on the receivers.
//
// This function is safe for concurrent access.
func (p *Port) Send(frame []byte) error {
	b := p.bus
	if atomic.LoadInt32(&b.shutdown) != 0 {
		str := fmt.Sprintf("%s unable to send on stopped bus", p.name)
		return makeError(ErrBusStopped, str)
	}

	b.mtx.RLock()
	targets := make([]*Port, 0, len(b.ports))
	for _, other := range b.ports {
		if other != p {
			targets = append(targets, other)
		}
	}
	b.mtx.RUnlock()

	rand.Shuffle(len(targets), func(i, j int) {
		targets[i], targets[j] = targets[j], targets[i]
	})
	for _, other := range targets {
		other.enqueue(append([]byte(nil), frame...))
	}
	n := atomic.AddUint64(&b.numFrames, 1)
	log.Tracef("%s sent frame %d (%x) to %d ports", p.name, n, frame,
		len(targets))
	return nil
}

// enqueue appends the frame to the delivery queue of the port and wakes its
// delivery handler.
func (p *Port) enqueue(frame []byte) {
	p.mtx.Lock()
	p.queue = append(p.queue, frame)
	p.mtx.Unlock()

	select {
	case p.signal <- struct{}{}:
	default:
	}
}

// deliverHandler hands queued frames to the receiver of the port in order.  It
// must be run as a goroutine.
func (p *Port) deliverHandler() {
	defer p.bus.wg.Done()
	for {
		select {
		case <-p.signal:
		case <-p.bus.quit:
			log.Tracef("Delivery handler for %s done", p.name)
			return
		}

		for {
			p.mtx.Lock()
			if len(p.queue) == 0 {
				p.mtx.Unlock()
				break
			}
			frame := p.queue[0]
			p.queue[0] = nil
			p.queue = p.queue[1:]
			p.mtx.Unlock()

			p.recv.Receive(frame)

			select {
			case <-p.bus.quit:
				return
			default:
			}
		}
	}
}

// NumFrames returns the number of frames sent on the bus.
func (b *Bus) NumFrames() uint64 {
	return atomic.LoadUint64(&b.numFrames)
}

// Stop stops delivery to every port and waits for the delivery handlers to
// finish.  Frames still queued are discarded.
//
// This function is safe for concurrent access.
func (b *Bus) Stop() {
	b.mtx.Lock()
	if atomic.AddInt32(&b.shutdown, 1) != 1 {
		b.mtx.Unlock()
		log.Warnf("Bus is already in the process of shutting down")
		return
	}
	b.mtx.Unlock()

	log.Debugf("Bus shutting down")
	close(b.quit)
	b.wg.Wait()
}
