// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package link

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"golang.org/x/sync/errgroup"
)

// recorder is a receiver that records every delivered frame.
type recorder struct {
	mtx    sync.Mutex
	frames [][]byte
}

func (r *recorder) Receive(frame []byte) {
	r.mtx.Lock()
	r.frames = append(r.frames, frame)
	r.mtx.Unlock()
}

func (r *recorder) received() [][]byte {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return append([][]byte(nil), r.frames...)
}

// waitReceived waits until the recorder has received n frames.
func waitReceived(t *testing.T, r *recorder, n int) [][]byte {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for {
		frames := r.received()
		if len(frames) >= n {
			return frames
		}
		if time.Now().After(deadline) {
			t.Fatalf("received %d frames, want %d", len(frames), n)
		}
		time.Sleep(time.Millisecond)
	}
}

// TestBroadcast ensures every frame reaches every port except the sender.
func TestBroadcast(t *testing.T) {
	bus := NewBus()
	defer bus.Stop()

	recorders := make([]*recorder, 3)
	ports := make([]*Port, 3)
	for i := range recorders {
		recorders[i] = new(recorder)
		port, err := bus.Attach(fmt.Sprintf("node%d", i), recorders[i])
		if err != nil {
			t.Fatalf("Attach: unexpected error: %v", err)
		}
		ports[i] = port
	}

	frame := []byte{'B', 0, 75, 2, 0, 0, 0}
	if err := ports[0].Send(frame); err != nil {
		t.Fatalf("Send: unexpected error: %v", err)
	}

	// The sender's buffer may be reused once Send returns.
	frame[0] = 'X'

	want := [][]byte{{'B', 0, 75, 2, 0, 0, 0}}
	for i := 1; i < len(recorders); i++ {
		got := waitReceived(t, recorders[i], 1)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("port %d: mismatched frames -- got %s, want %s", i,
				spew.Sdump(got), spew.Sdump(want))
		}
	}

	// Deliver a frame from another port so it is known that any frame to the
	// sender would have been delivered by now.
	if err := ports[1].Send([]byte{1}); err != nil {
		t.Fatalf("Send: unexpected error: %v", err)
	}
	got := waitReceived(t, recorders[0], 1)
	if len(got) != 1 || !bytes.Equal(got[0], []byte{1}) {
		t.Fatalf("sender received its own frame: %s", spew.Sdump(got))
	}
	if n := bus.NumFrames(); n != 2 {
		t.Fatalf("NumFrames: got %d, want 2", n)
	}
}

// TestPerSenderOrder ensures frames from each sender are delivered to a
// receiver in the order they were sent while several senders transmit
// concurrently.
func TestPerSenderOrder(t *testing.T) {
	bus := NewBus()
	defer bus.Stop()

	const numSenders = 4
	const numFrames = 200

	sink := new(recorder)
	if _, err := bus.Attach("sink", sink); err != nil {
		t.Fatalf("Attach: unexpected error: %v", err)
	}
	senders := make([]*Port, numSenders)
	for i := range senders {
		port, err := bus.Attach(fmt.Sprintf("sender%d", i),
			ReceiverFunc(func([]byte) {}))
		if err != nil {
			t.Fatalf("Attach: unexpected error: %v", err)
		}
		senders[i] = port
	}

	var g errgroup.Group
	for i, port := range senders {
		i, port := i, port
		g.Go(func() error {
			for seq := 0; seq < numFrames; seq++ {
				if err := port.Send([]byte{byte(i), byte(seq)}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Send: unexpected error: %v", err)
	}

	frames := waitReceived(t, sink, numSenders*numFrames)
	next := make([]int, numSenders)
	for _, frame := range frames {
		sender, seq := int(frame[0]), int(frame[1])
		if seq != next[sender] {
			t.Fatalf("sender %d: got frame %d, want %d", sender, seq,
				next[sender])
		}
		next[sender]++
	}
}

// TestStop ensures a stopped bus rejects new ports and frames.
func TestStop(t *testing.T) {
	bus := NewBus()
	port, err := bus.Attach("node", new(recorder))
	if err != nil {
		t.Fatalf("Attach: unexpected error: %v", err)
	}
	bus.Stop()
	bus.Stop()

	if err := port.Send([]byte{1}); !errors.Is(err, ErrBusStopped) {
		t.Fatalf("Send: got err %v, want %v", err, ErrBusStopped)
	}
	if _, err := bus.Attach("late", new(recorder)); !errors.Is(err, ErrBusStopped) {
		t.Fatalf("Attach: got err %v, want %v", err, ErrBusStopped)
	}
}

// TestAttachDuringStop ensures ports attached concurrently with Stop are either
// attached and shut down with the bus or rejected.
func TestAttachDuringStop(t *testing.T) {
	const numPorts = 32

	bus := NewBus()
	var g errgroup.Group
	for i := 0; i < numPorts; i++ {
		name := fmt.Sprintf("port%d", i)
		g.Go(func() error {
			_, err := bus.Attach(name, new(recorder))
			if err != nil && !errors.Is(err, ErrBusStopped) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		bus.Stop()
		return nil
	})
	if err := g.Wait(); err != nil {
		t.Fatalf("Attach: unexpected error: %v", err)
	}

	if _, err := bus.Attach("late", new(recorder)); !errors.Is(err, ErrBusStopped) {
		t.Fatalf("Attach: got err %v, want %v", err, ErrBusStopped)
	}
}
