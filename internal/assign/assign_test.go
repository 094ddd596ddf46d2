// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package assign

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/lanaddr/addrmgr"
	"github.com/decred/lanaddr/internal/pending"
	"github.com/decred/lanaddr/wire"
	"github.com/decred/slog"
)

type testLog struct {
	*testing.T
}

func (t *testLog) Write(b []byte) (int, error) {
	t.Logf("%s", b)
	return len(b), nil
}

// useTestLogger sets the package logger to a backend that writes trace-level
// logs to the test log until the test finishes.
func useTestLogger(t *testing.T) {
	backend := slog.NewBackend(&testLog{T: t})
	l := backend.Logger("TEST")
	l.SetLevel(slog.LevelTrace)
	UseLogger(l)
	t.Cleanup(func() { UseLogger(slog.Disabled) })
}

// testLink records every transmitted frame and optionally hands it to a
// delivery function.
type testLink struct {
	mtx     sync.Mutex
	frames  [][]byte
	deliver func(frame []byte)
}

func (l *testLink) Send(frame []byte) error {
	l.mtx.Lock()
	l.frames = append(l.frames, frame)
	deliver := l.deliver
	l.mtx.Unlock()
	if deliver != nil {
		deliver(frame)
	}
	return nil
}

func (l *testLink) sent() [][]byte {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return append([][]byte(nil), l.frames...)
}

// decode decodes a frame and fails the test when it is malformed.
func decode(t *testing.T, frame []byte) (*wire.FrameHeader, wire.Message) {
	t.Helper()

	hdr, msg, err := wire.DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame(%x): unexpected error: %v", frame, err)
	}
	return hdr, msg
}

// newTestServer returns a coordinator with hardware identifier 'A' using the
// default pool.
func newTestServer(t *testing.T, link Link) *Server {
	t.Helper()

	table, err := addrmgr.New(nil)
	if err != nil {
		t.Fatalf("addrmgr.New: unexpected error: %v", err)
	}
	return NewServer(&ServerConfig{
		Hardware: wire.DefaultCoordinator,
		Network:  wire.DefaultNetwork,
		Table:    table,
		Link:     link,
	})
}

// TestServerAssigns ensures the coordinator answers requests with ascending
// pool addresses, repeats the same answer for repeated requests, and sends an
// explicit failure once the pool is exhausted.
func TestServerAssigns(t *testing.T) {
	useTestLogger(t)

	link := new(testLink)
	s := newTestServer(t, link)

	requesters := []wire.HardwareID{'B', 'C', 'D', 'E', 'F', 'G', 'H', 'B',
		'I'}
	for _, hw := range requesters {
		hdr := &wire.FrameHeader{From: hw, To: wire.DefaultCoordinator,
			Kind: wire.KindAssignRequest}
		if err := s.HandleRequest(hdr); err != nil {
			t.Fatalf("HandleRequest(%v): unexpected error: %v", hw, err)
		}
	}

	wantAddrs := []wire.NodeAddress{2, 3, 4, 5, 6, 7, 8, 2, wire.NoAddress}
	frames := link.sent()
	if len(frames) != len(wantAddrs) {
		t.Fatalf("got %d responses, want %d", len(frames), len(wantAddrs))
	}
	for i, frame := range frames {
		hdr, msg := decode(t, frame)
		wantHdr := &wire.FrameHeader{From: wire.DefaultCoordinator,
			To: requesters[i], Kind: wire.KindAssignResponse}
		if !reflect.DeepEqual(hdr, wantHdr) {
			t.Fatalf("response %d: mismatched header -- got %s, want %s", i,
				spew.Sdump(hdr), spew.Sdump(wantHdr))
		}
		resp := msg.(*wire.MsgAssignResponse)
		if resp.Address != wantAddrs[i] {
			t.Fatalf("response %d: got address %v, want %v", i, resp.Address,
				wantAddrs[i])
		}
		if resp.Exhausted() != (wantAddrs[i] == wire.NoAddress) {
			t.Fatalf("response %d: mismatched exhaustion %v", i,
				resp.Exhausted())
		}
	}
}

// TestServerIgnores ensures requests that are not for the coordinator or lack
// a valid sender produce no response.
func TestServerIgnores(t *testing.T) {
	tests := []struct {
		name string
		hdr  wire.FrameHeader
	}{{
		name: "addressed to another node",
		hdr:  wire.FrameHeader{From: 'B', To: 'C'},
	}, {
		name: "no sender",
		hdr:  wire.FrameHeader{From: wire.NoHardware, To: 'A'},
	}, {
		name: "sent by the coordinator itself",
		hdr:  wire.FrameHeader{From: 'A', To: wire.Broadcast},
	}}

	for _, test := range tests {
		link := new(testLink)
		s := newTestServer(t, link)
		hdr := test.hdr
		hdr.Kind = wire.KindAssignRequest
		if err := s.HandleRequest(&hdr); err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		if n := len(link.sent()); n != 0 {
			t.Errorf("%s: sent %d responses, want none", test.name, n)
		}
	}
}

// wireClientServer connects a client and a coordinator through test links so
// each request is answered synchronously.
func wireClientServer(t *testing.T, hw wire.HardwareID, s *Server, serverLink *testLink) *Client {
	t.Helper()

	c := NewClient(&ClientConfig{
		Hardware:    hw,
		Coordinator: wire.DefaultCoordinator,
		Timeout:     5 * time.Second,
		Link: &testLink{deliver: func(frame []byte) {
			hdr, _ := decode(t, frame)
			if err := s.HandleRequest(hdr); err != nil {
				t.Errorf("HandleRequest: unexpected error: %v", err)
			}
		}},
	})
	serverLink.mtx.Lock()
	prev := serverLink.deliver
	serverLink.deliver = func(frame []byte) {
		if prev != nil {
			prev(frame)
		}
		hdr, msg := decode(t, frame)
		c.HandleResponse(hdr, msg.(*wire.MsgAssignResponse))
	}
	serverLink.mtx.Unlock()
	return c
}

// TestClientRequest ensures a requester obtains the address granted by the
// coordinator and that exhaustion is surfaced as ErrExhausted.
func TestClientRequest(t *testing.T) {
	useTestLogger(t)

	serverLink := new(testLink)
	s := newTestServer(t, serverLink)

	for i, hw := range []wire.HardwareID{'B', 'C', 'D', 'E', 'F', 'G', 'H'} {
		c := wireClientServer(t, hw, s, serverLink)
		grant, err := c.Request(context.Background())
		if err != nil {
			t.Fatalf("Request(%v): unexpected error: %v", hw, err)
		}
		want := Grant{Address: wire.NodeAddress(2 + i),
			Network: wire.DefaultNetwork}
		if grant != want {
			t.Fatalf("Request(%v): got %+v, want %+v", hw, grant, want)
		}
	}

	c := wireClientServer(t, 'I', s, serverLink)
	_, err := c.Request(context.Background())
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("Request on exhausted pool: got err %v, want %v", err,
			ErrExhausted)
	}
}

// TestClientTimeout ensures a requester whose coordinator never answers fails
// with a timeout instead of waiting forever.
func TestClientTimeout(t *testing.T) {
	link := new(testLink)
	c := NewClient(&ClientConfig{
		Hardware:    'B',
		Coordinator: wire.DefaultCoordinator,
		Timeout:     20 * time.Millisecond,
		Link:        link,
	})
	_, err := c.Request(context.Background())
	if !errors.Is(err, pending.ErrTimeout) {
		t.Fatalf("Request: got err %v, want %v", err, pending.ErrTimeout)
	}

	frames := link.sent()
	if len(frames) != 1 {
		t.Fatalf("sent %d frames, want 1", len(frames))
	}
	hdr, msg := decode(t, frames[0])
	want := &wire.FrameHeader{From: 'B', To: wire.DefaultCoordinator,
		Kind: wire.KindAssignRequest}
	if !reflect.DeepEqual(hdr, want) {
		t.Fatalf("mismatched request header -- got %s, want %s",
			spew.Sdump(hdr), spew.Sdump(want))
	}
	if _, ok := msg.(*wire.MsgAssignRequest); !ok {
		t.Fatalf("sent %T, want *wire.MsgAssignRequest", msg)
	}
}

// TestClientIgnoresResponses ensures responses that do not belong to the
// client's outstanding request do not complete it.
func TestClientIgnoresResponses(t *testing.T) {
	c := NewClient(&ClientConfig{
		Hardware:    'B',
		Coordinator: wire.DefaultCoordinator,
		Timeout:     5 * time.Second,
		Link:        new(testLink),
	})
	resp := wire.NewMsgAssignResponse(2, wire.DefaultNetwork)

	tests := []struct {
		name string
		hdr  wire.FrameHeader
		want pending.Outcome
	}{{
		name: "no outstanding request",
		hdr:  wire.FrameHeader{From: 'A', To: 'B'},
		want: pending.Unsolicited,
	}, {
		name: "addressed to another node",
		hdr:  wire.FrameHeader{From: 'A', To: 'C'},
		want: pending.Unsolicited,
	}, {
		name: "sent by a non-coordinator",
		hdr:  wire.FrameHeader{From: 'Z', To: 'B'},
		want: pending.Unsolicited,
	}}

	for _, test := range tests {
		hdr := test.hdr
		hdr.Kind = wire.KindAssignResponse
		if got := c.HandleResponse(&hdr, resp); got != test.want {
			t.Errorf("%s: got outcome %v, want %v", test.name, got, test.want)
		}
	}
}

// TestClientShutdown ensures shutting down the client aborts an outstanding
// request.
func TestClientShutdown(t *testing.T) {
	link := new(testLink)
	c := NewClient(&ClientConfig{
		Hardware:    'B',
		Coordinator: wire.DefaultCoordinator,
		Timeout:     time.Minute,
		Link:        link,
	})

	errC := make(chan error, 1)
	go func() {
		_, err := c.Request(context.Background())
		errC <- err
	}()
	deadline := time.Now().Add(time.Second)
	for len(link.sent()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("request was never sent")
		}
		time.Sleep(time.Millisecond)
	}

	c.Shutdown()
	select {
	case err := <-errC:
		if !errors.Is(err, pending.ErrShutdown) {
			t.Fatalf("Request: got err %v, want %v", err, pending.ErrShutdown)
		}
	case <-time.After(time.Second):
		t.Fatal("request was not aborted by shutdown")
	}
}
