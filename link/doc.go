// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package link provides an in-memory broadcast medium that connects simulated
nodes.

A Bus models a shared link: each attached receiver gets a Port it transmits
through, and every frame sent through a port is delivered to all other ports.
Delivery to a port happens on a goroutine dedicated to that port, so receivers
are invoked asynchronously with respect to the sender, much like an interrupt
handler on real hardware.  Frames from one sender are delivered to each
receiver in the order they were sent, but no ordering is guaranteed between
frames from different senders.

The package is not part of the addressing protocols themselves.  It exists so
tests and the lanaddrd simulator can run many nodes in one process.
*/
package link
