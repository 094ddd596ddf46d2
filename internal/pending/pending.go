// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pending tracks in-flight protocol requests that wait on a response
// delivered by another goroutine.
package pending

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/decred/dcrd/container/lru"
)

const (
	// recentLimit is the maximum number of recently completed keys that are
	// remembered in order to classify duplicate responses.
	recentLimit = 256

	// recentTTL is how long a completed key is remembered.
	recentTTL = time.Minute
)

// Outcome describes what happened to a response handed to Complete.
type Outcome int

const (
	// Unsolicited means no request for the key was outstanding or recently
	// completed.
	Unsolicited Outcome = iota

	// Completed means the response completed an outstanding request.
	Completed

	// Duplicate means the request for the key was already completed by an
	// earlier response.
	Duplicate
)

// String returns the outcome as a human-readable string.
func (o Outcome) String() string {
	switch o {
	case Unsolicited:
		return "unsolicited"
	case Completed:
		return "completed"
	case Duplicate:
		return "duplicate"
	}
	return fmt.Sprintf("Unknown Outcome (%d)", int(o))
}

// request is the shared wait state of every waiter for a single key.  result
// and err are written with the registry mutex held before done is closed.
type request[V any] struct {
	done    chan struct{}
	waiters int
	result  V
	err     error
}

// Registry holds at most one outstanding request per key.  Waiters for a key
// that already has an outstanding request join it instead of issuing another.
//
// The zero value is not usable.  Use New.
type Registry[K comparable, V any] struct {
	mtx      sync.Mutex
	requests map[K]*request[V]
	recent   *lru.Set[K]
	shutdown bool
}

// New returns an empty registry.
func New[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{
		requests: make(map[K]*request[V]),
		recent:   lru.NewSetWithDefaultTTL[K](recentLimit, recentTTL),
	}
}

// Wait blocks until the request for key is completed, the timeout elapses,
// the context is cancelled, or the registry is shut down.
//
// When no request for key is outstanding, a new one is registered and send is
// invoked to transmit it.  Otherwise the caller joins the outstanding request
// and send is not invoked.  An error returned by send fails the request for
// every waiter.
//
// ErrTimeout is returned when the timeout elapses and ErrShutdown when the
// registry is shut down.
func (r *Registry[K, V]) Wait(ctx context.Context, key K, timeout time.Duration, send func() error) (V, error) {
	var zero V

	r.mtx.Lock()
	if r.shutdown {
		r.mtx.Unlock()
		str := fmt.Sprintf("request for %v not sent: registry is shut down",
			key)
		return zero, makeError(ErrShutdown, str)
	}
	req, joined := r.requests[key]
	if !joined {
		req = &request[V]{done: make(chan struct{})}
		r.requests[key] = req
		r.recent.Delete(key)
	}
	req.waiters++
	r.mtx.Unlock()

	if !joined && send != nil {
		if err := send(); err != nil {
			r.finish(key, req, zero, err, false)
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-req.done:
		return req.result, req.err

	case <-timer.C:
		if r.abandon(key, req) {
			return req.result, req.err
		}
		str := fmt.Sprintf("no response for %v within %v", key, timeout)
		return zero, makeError(ErrTimeout, str)

	case <-ctx.Done():
		if r.abandon(key, req) {
			return req.result, req.err
		}
		return zero, ctx.Err()
	}
}

// abandon removes the caller from the waiters of the request and discards the
// request once nobody waits on it.  It reports whether the request was already
// finished, in which case its result is valid.
func (r *Registry[K, V]) abandon(key K, req *request[V]) bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	select {
	case <-req.done:
		return true
	default:
	}
	req.waiters--
	if req.waiters == 0 && r.requests[key] == req {
		delete(r.requests, key)
	}
	return false
}

// finish completes the provided request with the result when it is still the
// outstanding request for key.  It reports whether it did so.
func (r *Registry[K, V]) finish(key K, req *request[V], result V, err error, remember bool) bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.requests[key] != req {
		return false
	}
	delete(r.requests, key)
	req.result, req.err = result, err
	close(req.done)
	if remember {
		r.recent.Put(key)
	}
	return true
}

// Complete finishes the outstanding request for key with the provided result
// and error, waking every waiter.  Responses for keys without an outstanding
// request are ignored and classified as either Duplicate or Unsolicited.
//
// This function is safe for concurrent access and never blocks.
func (r *Registry[K, V]) Complete(key K, result V, err error) Outcome {
	r.mtx.Lock()
	req, ok := r.requests[key]
	r.mtx.Unlock()
	if ok && r.finish(key, req, result, err, true) {
		return Completed
	}
	if r.recent.Contains(key) {
		return Duplicate
	}
	return Unsolicited
}

// Pending returns whether a request for key is outstanding.
func (r *Registry[K, V]) Pending(key K) bool {
	r.mtx.Lock()
	_, ok := r.requests[key]
	r.mtx.Unlock()
	return ok
}

// Len returns the number of outstanding requests.
func (r *Registry[K, V]) Len() int {
	r.mtx.Lock()
	n := len(r.requests)
	r.mtx.Unlock()
	return n
}

// Shutdown fails every outstanding request with ErrShutdown and causes all
// future waits to fail immediately.  It is safe to call more than once.
func (r *Registry[K, V]) Shutdown() {
	var zero V

	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.shutdown = true
	for key, req := range r.requests {
		str := fmt.Sprintf("request for %v aborted: registry is shut down",
			key)
		req.result, req.err = zero, makeError(ErrShutdown, str)
		close(req.done)
		delete(r.requests, key)
	}
}
