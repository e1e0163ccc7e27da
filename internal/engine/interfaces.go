// Package engine declares the two interfaces this module shares with the
// MSTP protocol engine (a separate, non-goal component per spec.md §1):
// Engine is the upstream surface this module calls into (the C source's
// MSTP_IN_* functions); Sink is the downstream surface the engine calls
// into this module (MSTP_OUT_*). Splitting them mirrors the
// one-interface-per-collaborator shape the teacher uses for its own
// external collaborators in pkg/protocol/interfaces.go (Bonder,
// HealthChecker, Router, ...).
package engine

import (
	"net"

	"github.com/for454/mstpd/internal/model"
)

// Engine is implemented by the MSTP protocol engine and called by
// internal/registry, internal/bridgetrack, internal/bpdu and
// internal/control. Every method here corresponds 1:1 to an MSTP_IN_*
// entry point in spec.md §6.
//
// Implementations are expected to mutate the model.Bridge/model.Port
// objects they are handed in place where the spec calls for it (notably:
// PortCreateAndAddTail and CreateMSTI must call model.AttachPerTreePort
// for every (port, tree) pair that comes into existence as a result, per
// spec.md §3's "created... by the protocol engine in lockstep" note).
type Engine interface {
	// BridgeCreate initializes engine-side state for a newly tracked
	// bridge. Returns false to reject creation (registry then discards
	// the bridge).
	BridgeCreate(br *model.Bridge, mac net.HardwareAddr) bool
	// DeleteBridge releases engine-side state for br. Called after all
	// of br's ports have already been deleted.
	DeleteBridge(br *model.Bridge)

	// PortCreateAndAddTail initializes engine-side state for a newly
	// tracked port at the given bridge-relative port number, and must
	// attach a PerTreePort for every tree already on port.Bridge
	// (at minimum the CIST). Returns false to reject creation.
	PortCreateAndAddTail(port *model.Port, portNo int) bool
	// DeletePort releases engine-side state for port, including every
	// PerTreePort it owns.
	DeletePort(port *model.Port)

	// SetBridgeAddress notifies the engine that br's MAC address
	// changed.
	SetBridgeAddress(br *model.Bridge, mac net.HardwareAddr)
	// SetBridgeEnable notifies the engine that br's enabled state
	// (admin_up && stp_up) changed.
	SetBridgeEnable(br *model.Bridge, enabled bool)
	// SetPortEnable notifies the engine that port's up/speed/duplex
	// changed.
	SetPortEnable(port *model.Port, up bool, speedMbps int, duplex int)

	// OneSecond delivers the once-per-second tick to br.
	OneSecond(br *model.Bridge)

	// RxBPDU delivers a validated BPDU payload (LLC header stripped)
	// received on port.
	RxBPDU(port *model.Port, payload []byte)

	// AllFIDsFlushed completes an asynchronous MSTP_OUT_flush_all_fids
	// request for ptp.
	AllFIDsFlushed(ptp *model.PerTreePort)

	// GetCISTBridgeStatus / SetCISTBridgeConfig implement the CIST
	// bridge get/set control operations.
	GetCISTBridgeStatus(br *model.Bridge) CISTBridgeStatus
	SetCISTBridgeConfig(br *model.Bridge, cfg CISTBridgeConfig) bool

	// GetMSTIBridgeStatus / SetMSTIBridgeConfig implement the MSTI
	// bridge get/set control operations. tree is already resolved by
	// MSTID.
	GetMSTIBridgeStatus(tree *model.Tree) MSTIBridgeStatus
	SetMSTIBridgeConfig(tree *model.Tree, priority uint8) bool

	// GetCISTPortStatus / SetCISTPortConfig implement the CIST port
	// get/set control operations.
	GetCISTPortStatus(port *model.Port) CISTPortStatus
	SetCISTPortConfig(port *model.Port, cfg CISTPortConfig) bool

	// GetMSTIPortStatus / SetMSTIPortConfig implement the MSTI port
	// get/set control operations. ptp is already resolved by port and
	// MSTID.
	GetMSTIPortStatus(ptp *model.PerTreePort) MSTIPortStatus
	SetMSTIPortConfig(ptp *model.PerTreePort, cfg MSTIPortConfig) bool

	// PortMcheck forces a protocol-migration check on port.
	PortMcheck(port *model.Port) bool

	// GetMSTIList returns the host-order MSTIDs of every MSTI on br
	// (the CIST, MSTID 0, is never included).
	GetMSTIList(br *model.Bridge) []uint16
	// CreateMSTI creates a new MSTI with the given host-order MSTID on
	// br, attaching a PerTreePort for every existing port.
	CreateMSTI(br *model.Bridge, hostMSTID uint16) bool
	// DeleteMSTI removes the MSTI with the given host-order MSTID from
	// br.
	DeleteMSTI(br *model.Bridge, hostMSTID uint16) bool

	// SetMSTConfigID sets br's MST Configuration Identifier.
	SetMSTConfigID(br *model.Bridge, revision uint16, name string)

	// SetVID2FID / SetFID2MSTID implement the single-entry VID/FID
	// table control operations.
	SetVID2FID(br *model.Bridge, vid, fid uint16) bool
	SetFID2MSTID(br *model.Bridge, fid uint16, hostMSTID uint16) bool
	// SetAllVID2FID / SetAllFID2MSTID implement the bulk VID/FID table
	// control operations. The FID2MSTID table is supplied (and stored)
	// in network byte order per spec.md §9; VID2FID is host order.
	SetAllVID2FID(br *model.Bridge, table *[4096]uint16) bool
	SetAllFID2MSTID(br *model.Bridge, table *[4096]uint16) bool
}

// Sink is implemented by internal/bridgetrack and internal/bpdu jointly
// and called by the MSTP protocol engine. Every method corresponds 1:1
// to an MSTP_OUT_* entry point in spec.md §6.
type Sink interface {
	// SetState commits ptp's new forwarding state. A no-op if
	// ptp.State already equals newState.
	SetState(ptp *model.PerTreePort, newState model.PortState)
	// FlushAllFIDs begins flushing FDB entries for ptp's port in every
	// FID mapped to ptp's tree. Must eventually call
	// Engine.AllFIDsFlushed(ptp).
	FlushAllFIDs(ptp *model.PerTreePort)
	// SetAgeingTime programs br's FDB ageing time; a negative value
	// requests the driver's default.
	SetAgeingTime(br *model.Bridge, seconds int)
	// TxBPDU transmits payload as a BPDU out port, framed per spec.md
	// §4.5/§6.
	TxBPDU(port *model.Port, payload []byte) error
}
