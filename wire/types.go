// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "fmt"

// HardwareID uniquely names a physical interface on the link.  It is the
// analog of a MAC address and is immutable once assigned to an interface.
type HardwareID uint8

// NoHardware is the zero hardware identifier.  As a destination it addresses
// every node on the link.
const NoHardware HardwareID = 0

// Broadcast is the destination hardware identifier for frames meant for every
// node on the link.
const Broadcast = NoHardware

// DefaultCoordinator is the hardware identifier statically designated as the
// address coordinator unless configured otherwise.
const DefaultCoordinator HardwareID = 'A'

// String returns the hardware identifier as a printable character when it is
// one and as a hex byte otherwise.
func (h HardwareID) String() string {
	if h >= 0x21 && h <= 0x7e {
		return string(rune(h))
	}
	return fmt.Sprintf("0x%02x", uint8(h))
}

// NodeAddress is a logical address assigned by the coordinator.
type NodeAddress uint32

// NoAddress is the zero node address.  It never identifies a node.  In an
// assignment response it signals that the coordinator had no free address.
const NoAddress NodeAddress = 0

// CoordinatorAddress is the node address reserved for the coordinator.  It is
// never handed out from the address pool.
const CoordinatorAddress NodeAddress = 1

// String returns the node address in decimal.
func (a NodeAddress) String() string {
	return fmt.Sprintf("%d", uint32(a))
}

// NetworkID identifies the logical network (broadcast domain) a node belongs
// to.
type NetworkID uint32

// DefaultNetwork is the logical network identifier handed out by the
// coordinator.
const DefaultNetwork NetworkID = 1

// String returns the network identifier in decimal.
func (n NetworkID) String() string {
	return fmt.Sprintf("%d", uint32(n))
}
