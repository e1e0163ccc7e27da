// Package platform declares the OS-level helpers spec.md §2 calls
// "Platform helpers... consumed only": index↔name resolution, MAC reads,
// ethtool link/speed/duplex, sysfs STP-state reads, and raw packet send.
// The interface itself is this module's only hard requirement; linux.go
// in this package supplies a real implementation so the rest of the
// module is runnable, grounded in the teacher's netlink/sysfs usage
// (see DESIGN.md).
package platform

import "net"

// Platform is the leaf dependency internal/registry, internal/bridgetrack
// and internal/bpdu use to query and drive the host's network stack.
type Platform interface {
	// IfIndexToName resolves an OS interface index to its current name.
	IfIndexToName(ifIndex int) (string, error)

	// HWAddr reads the current MAC address of the named interface.
	HWAddr(name string) (net.HardwareAddr, error)

	// LinkUp reports the named interface's current administrative/
	// operational up state.
	LinkUp(name string) (bool, error)

	// SpeedDuplex reads the named interface's current link speed (in
	// Mbps) and duplex (0 = half, 1 = full) via ethtool. Returns a
	// negative speed or an error when the values are unavailable; the
	// caller (internal/bridgetrack) is responsible for substituting
	// the speed=10/duplex=half default spec.md §4.3 requires.
	SpeedDuplex(name string) (speedMbps int, duplex int, err error)

	// StpState reads the raw integer value of
	// /sys/class/net/<name>/bridge/stp_state. A value of 2 means
	// user-space STP is enabled.
	StpState(name string) (int, error)

	// BridgePortNo reads the named interface's bridge-relative port
	// number (the bridge driver's brport/port_no attribute).
	BridgePortNo(name string) (int, error)

	// Send transmits frame as a single link-layer frame on the
	// interface identified by ifIndex.
	Send(ifIndex int, frame []byte) error
}
