// Package model holds the in-memory bridge/port/tree entities tracked by
// the adapter. It mirrors the C source's bridge_t/port_t/tree_t/
// per_tree_port_t structures, replacing intrusive lists with owned slices
// and non-owning back-references (the caller/scheduling model guarantees a
// Bridge outlives its Ports, so the back-reference never dangles).
package model

import "net"

// MAX_PORT_NUMBER is the largest bridge-relative port number a Port may
// carry, per IEEE 802.1Q's 12-bit port-ID field.
const MAX_PORT_NUMBER = 0xFFF

// PortState is the per-tree-port forwarding state maintained by the
// protocol engine and committed by MSTP_OUT_set_state.
type PortState int

const (
	StateDisabled PortState = iota
	StateListening
	StateLearning
	StateForwarding
	StateBlocking
)

func (s PortState) String() string {
	switch s {
	case StateListening:
		return "listening"
	case StateLearning:
		return "learning"
	case StateForwarding:
		return "forwarding"
	case StateBlocking:
		return "blocking"
	default:
		return "disabled"
	}
}

// Bridge is a tracked local bridge master interface.
type Bridge struct {
	IfIndex int
	Name    string
	MAC     net.HardwareAddr

	AdminUp bool // OS link state
	StpUp   bool // sysfs bridge/stp_state == 2

	Ports []*Port
	Trees []*Tree

	MstConfigID MstConfigIdentifier

	// VID2FID maps a 12-bit VLAN ID to a Filtering ID, host byte order.
	VID2FID [4096]uint16
	// FID2MSTID maps a Filtering ID to an MSTID, stored network byte
	// order per the original source (see model.HostMSTID/NetMSTID).
	FID2MSTID [4096]uint16
}

// MstConfigIdentifier is the MST Configuration Identifier (802.1Q-2005
// clause 13.7): a revision number and a region name.
type MstConfigIdentifier struct {
	Revision uint16
	Name     string
}

// FindPort returns the Port on this bridge with the given interface index,
// or nil.
func (b *Bridge) FindPort(ifIndex int) *Port {
	for _, p := range b.Ports {
		if p.IfIndex == ifIndex {
			return p
		}
	}
	return nil
}

// FindTree returns the Tree on this bridge whose MSTID (network byte
// order) matches, or nil.
func (b *Bridge) FindTree(netMSTID uint16) *Tree {
	for _, t := range b.Trees {
		if t.MSTID == netMSTID {
			return t
		}
	}
	return nil
}

// CIST returns this bridge's Common and Internal Spanning Tree, which
// always exists once the bridge does.
func (b *Bridge) CIST() *Tree {
	return b.FindTree(0)
}

// removePort drops p from the bridge's port slice without touching the
// protocol engine; callers are responsible for the MSTP_IN_delete_port
// call and for detaching p's per-tree-ports.
func (b *Bridge) removePort(p *Port) {
	for i, existing := range b.Ports {
		if existing == p {
			b.Ports = append(b.Ports[:i], b.Ports[i+1:]...)
			return
		}
	}
}

// AttachPort appends p to the bridge's member-port list. Called by
// internal/registry once the protocol engine has accepted the port.
func (b *Bridge) AttachPort(p *Port) {
	p.Bridge = b
	b.Ports = append(b.Ports, p)
}

// DetachPort removes p from the bridge's member-port list and from every
// tree it projected into. Called by internal/registry after the protocol
// engine has been told to delete the port.
func (b *Bridge) DetachPort(p *Port) {
	for _, ptp := range append([]*PerTreePort(nil), p.Trees...) {
		DetachPerTreePort(ptp)
	}
	b.removePort(p)
}

// AttachTree appends t to the bridge's tree list.
func (b *Bridge) AttachTree(t *Tree) {
	t.Bridge = b
	b.Trees = append(b.Trees, t)
}

// DetachTree removes t from the bridge's tree list along with every
// per-tree-port it owns.
func (b *Bridge) DetachTree(t *Tree) {
	for _, ptp := range append([]*PerTreePort(nil), t.Ports...) {
		DetachPerTreePort(ptp)
	}
	for i, existing := range b.Trees {
		if existing == t {
			b.Trees = append(b.Trees[:i], b.Trees[i+1:]...)
			return
		}
	}
}

// AttachPerTreePort creates the projection of port into tree and links it
// from both sides. The protocol engine calls this (directly, or through
// its own create_and_add_tail-style helper) whenever a port or an MSTI is
// created, in lockstep per spec.md §3.
func AttachPerTreePort(port *Port, tree *Tree, portID uint16) *PerTreePort {
	ptp := &PerTreePort{Port: port, Tree: tree, PortID: portID, State: StateDisabled}
	port.Trees = append(port.Trees, ptp)
	tree.Ports = append(tree.Ports, ptp)
	return ptp
}

// DetachPerTreePort unlinks ptp from both its port and its tree.
func DetachPerTreePort(ptp *PerTreePort) {
	ptp.Port.removeTree(ptp)
	ptp.Tree.removePort(ptp)
}

// Port is a bridge member interface.
type Port struct {
	IfIndex int
	Name    string
	MAC     net.HardwareAddr
	PortNo  int // bridge-relative, in [1..MAX_PORT_NUMBER]

	Up     bool
	Speed  int // Mbps
	Duplex int // 0 = half, 1 = full

	Bridge *Bridge // non-owning back-reference

	Trees []*PerTreePort
}

// FindTree returns this port's projection into the tree whose MSTID
// (network byte order) matches, or nil.
func (p *Port) FindTree(netMSTID uint16) *PerTreePort {
	for _, ptp := range p.Trees {
		if ptp.Tree.MSTID == netMSTID {
			return ptp
		}
	}
	return nil
}

func (p *Port) removeTree(ptp *PerTreePort) {
	for i, existing := range p.Trees {
		if existing == ptp {
			p.Trees = append(p.Trees[:i], p.Trees[i+1:]...)
			return
		}
	}
}

// Tree is the CIST (MSTID 0) or one MSTI owned by a Bridge.
type Tree struct {
	MSTID  uint16 // network byte order
	Bridge *Bridge

	Ports []*PerTreePort
}

func (t *Tree) removePort(ptp *PerTreePort) {
	for i, existing := range t.Ports {
		if existing == ptp {
			t.Ports = append(t.Ports[:i], t.Ports[i+1:]...)
			return
		}
	}
}

// PerTreePort is the projection of a Port into a Tree: the protocol
// engine's per-(port,tree) state.
type PerTreePort struct {
	Port *Port
	Tree *Tree

	PortID uint16
	State  PortState
}

// NetMSTID converts a host-order MSTID to the network-order form stored
// on Tree/PerTreePort/FID2MSTID, per spec.md §9.
func NetMSTID(host uint16) uint16 {
	return (host>>8)&0xff | (host<<8)&0xff00
}

// HostMSTID converts a stored network-order MSTID back to host order for
// the control-plane boundary.
func HostMSTID(net uint16) uint16 {
	return (net>>8)&0xff | (net<<8)&0xff00
}
