// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package node implements a participant on a shared broadcast link that obtains
a logical node address from a coordinator and exchanges messages with other
nodes by address.

# Roles

Exactly one node acts as the coordinator.  It is designated statically by its
hardware identifier, takes the reserved coordinator address when started, and
assigns addresses from its address table to every other node that asks.  All
other nodes request an address when started and cannot send until they have
one.

# Frame Dispatch

The link hands every inbound frame to Receive.  Receive decodes the frame and
routes it by kind:

  - Assignment requests are answered by the coordinator and ignored elsewhere
  - Assignment responses complete the node's own pending assignment
  - Resolution requests for the node's address are answered with its hardware
    identifier
  - Resolution responses populate the address table and complete the matching
    pending resolution
  - Data frames addressed to the node's address and network are handed to the
    consumer registered with OnMessage

Malformed frames are dropped.  Receive never waits on a response, so the link
may invoke it from its delivery goroutine.

# Sending

Send resolves the destination address to a hardware identifier before
transmitting, consulting the address table first.  Resolution blocks only the
caller of Send and fails with ErrUnreachable when no node owns the address.

# Errors

Errors returned by this package are of type node.Error and wrap an ErrorKind,
so callers can use errors.Is to check for ErrUnreachable, ErrWrongNetwork,
ErrExhausted, ErrStartupFailed, ErrPayloadTooLarge, ErrNotStarted and
ErrShutdown.
*/
package node
