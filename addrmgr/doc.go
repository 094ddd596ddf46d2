// Copyright (c) 2014 The btcsuite developers
// Copyright (c) 2015-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package addrmgr implements a concurrency-safe address table for nodes sharing a
broadcast link.

# Address Table Overview

Every interface on the link carries an immutable hardware identifier, while
nodes talk to each other by small logical node addresses.  The address table
keeps the two in a bijective mapping: each hardware identifier maps to at most
one node address and each node address to at most one hardware identifier.

The coordinator of the link owns the authoritative table and hands out
addresses from a bounded pool with Assign.  Assign is idempotent, so a node
that asks again receives the address it already holds, and it hands out the
lowest free address first.  Other nodes use the same type as a cache of the
addresses they resolved, populated through Bind, which silently replaces any
previous binding of either key.

The coordinator may optionally persist its bindings in a leveldb database so
that addresses survive a restart.  Changes are flushed by a background handler
started with Start and stopped with Stop, and never while the table lock is
held.
*/
package addrmgr
