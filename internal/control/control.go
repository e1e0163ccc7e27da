// Package control implements the Control Adapter (spec.md §4.8):
// synchronous request handlers that resolve (bridge, port, tree) triples
// and forward typed get/set requests into the protocol engine. It is
// grounded on the C source's CTL_CHECK_BRIDGE* macros and every CTL_*
// function, one method per original function, with the same lookup
// order and the same 0/-1 (here: nil/error) return convention.
package control

import (
	"fmt"

	"github.com/for454/mstpd/internal/engine"
	"github.com/for454/mstpd/internal/logx"
	"github.com/for454/mstpd/internal/model"
	"github.com/for454/mstpd/internal/registry"
)

// Adapter is the control-plane entry point used by an external
// controller (the CLI front-end is explicitly out of scope, spec.md
// §1). Every method returns an error on lookup or engine failure and
// nil on success, mirroring the original's -1/0 convention.
type Adapter struct {
	reg    *registry.Registry
	engine engine.Engine
	log    logx.Logger
}

// New constructs a control Adapter over the given registry and engine.
func New(reg *registry.Registry, eng engine.Engine, log logx.Logger) *Adapter {
	return &Adapter{reg: reg, engine: eng, log: log}
}

func (a *Adapter) lookupBridge(brIndex int) (*model.Bridge, error) {
	br := a.reg.FindBridge(brIndex)
	if br == nil {
		a.log.Error("couldn't find bridge", "if_index", brIndex)
		return nil, fmt.Errorf("bridge %d: %w", brIndex, registry.ErrBridgeNotFound)
	}
	return br, nil
}

func (a *Adapter) lookupPort(brIndex, portIndex int) (*model.Bridge, *model.Port, error) {
	br, err := a.lookupBridge(brIndex)
	if err != nil {
		return nil, nil, err
	}
	port := br.FindPort(portIndex)
	if port == nil {
		a.log.Error("couldn't find port", "bridge", br.Name, "if_index", portIndex)
		return nil, nil, fmt.Errorf("port %d: %w", portIndex, registry.ErrPortNotFound)
	}
	return br, port, nil
}

func (a *Adapter) lookupTree(brIndex int, mstid uint16) (*model.Bridge, *model.Tree, error) {
	br, err := a.lookupBridge(brIndex)
	if err != nil {
		return nil, nil, err
	}
	tree := br.FindTree(model.NetMSTID(mstid))
	if tree == nil {
		a.log.Error("couldn't find msti", "bridge", br.Name, "mstid", mstid)
		return nil, nil, fmt.Errorf("msti %d: not found on bridge %s", mstid, br.Name)
	}
	return br, tree, nil
}

func (a *Adapter) lookupPerTreePort(brIndex, portIndex int, mstid uint16) (*model.Port, *model.PerTreePort, error) {
	_, port, err := a.lookupPort(brIndex, portIndex)
	if err != nil {
		return nil, nil, err
	}
	ptp := port.FindTree(model.NetMSTID(mstid))
	if ptp == nil {
		a.log.Error("couldn't find msti on port", "port", port.Name, "mstid", mstid)
		return nil, nil, fmt.Errorf("msti %d: not found on port %s", mstid, port.Name)
	}
	return port, ptp, nil
}

// rootPortName resolves tree's current root port by matching
// status.RootPortID against each of tree's per-tree-ports' PortID, per
// the additional contract in spec.md §4.8. Returns "" if none matches.
func rootPortName(tree *model.Tree, rootPortID uint16) string {
	for _, ptp := range tree.Ports {
		if ptp.PortID == rootPortID {
			return ptp.Port.Name
		}
	}
	return ""
}

// GetCISTBridgeStatus returns the CIST bridge status for brIndex along
// with the name of the current root port.
func (a *Adapter) GetCISTBridgeStatus(brIndex int) (engine.CISTBridgeStatus, string, error) {
	br, err := a.lookupBridge(brIndex)
	if err != nil {
		return engine.CISTBridgeStatus{}, "", err
	}
	status := a.engine.GetCISTBridgeStatus(br)
	return status, rootPortName(br.CIST(), status.RootPortID), nil
}

// GetMSTIBridgeStatus returns the MSTI bridge status for (brIndex,
// mstid) along with the name of the current root port.
func (a *Adapter) GetMSTIBridgeStatus(brIndex int, mstid uint16) (engine.MSTIBridgeStatus, string, error) {
	_, tree, err := a.lookupTree(brIndex, mstid)
	if err != nil {
		return engine.MSTIBridgeStatus{}, "", err
	}
	status := a.engine.GetMSTIBridgeStatus(tree)
	return status, rootPortName(tree, status.RootPortID), nil
}

// SetCISTBridgeConfig applies cfg to brIndex's CIST bridge parameters.
func (a *Adapter) SetCISTBridgeConfig(brIndex int, cfg engine.CISTBridgeConfig) error {
	br, err := a.lookupBridge(brIndex)
	if err != nil {
		return err
	}
	if !a.engine.SetCISTBridgeConfig(br, cfg) {
		return fmt.Errorf("set cist bridge config: %w", registry.ErrEngineRejected)
	}
	return nil
}

// SetMSTIBridgeConfig applies the given bridge priority to (brIndex,
// mstid)'s MSTI bridge parameters.
func (a *Adapter) SetMSTIBridgeConfig(brIndex int, mstid uint16, bridgePriority uint8) error {
	_, tree, err := a.lookupTree(brIndex, mstid)
	if err != nil {
		return err
	}
	if !a.engine.SetMSTIBridgeConfig(tree, bridgePriority) {
		return fmt.Errorf("set msti bridge config: %w", registry.ErrEngineRejected)
	}
	return nil
}

// GetCISTPortStatus returns the CIST port status for (brIndex,
// portIndex).
func (a *Adapter) GetCISTPortStatus(brIndex, portIndex int) (engine.CISTPortStatus, error) {
	_, port, err := a.lookupPort(brIndex, portIndex)
	if err != nil {
		return engine.CISTPortStatus{}, err
	}
	return a.engine.GetCISTPortStatus(port), nil
}

// GetMSTIPortStatus returns the MSTI port status for (brIndex,
// portIndex, mstid).
func (a *Adapter) GetMSTIPortStatus(brIndex, portIndex int, mstid uint16) (engine.MSTIPortStatus, error) {
	_, ptp, err := a.lookupPerTreePort(brIndex, portIndex, mstid)
	if err != nil {
		return engine.MSTIPortStatus{}, err
	}
	return a.engine.GetMSTIPortStatus(ptp), nil
}

// SetCISTPortConfig applies cfg to (brIndex, portIndex)'s CIST port
// parameters.
func (a *Adapter) SetCISTPortConfig(brIndex, portIndex int, cfg engine.CISTPortConfig) error {
	_, port, err := a.lookupPort(brIndex, portIndex)
	if err != nil {
		return err
	}
	if !a.engine.SetCISTPortConfig(port, cfg) {
		return fmt.Errorf("set cist port config: %w", registry.ErrEngineRejected)
	}
	return nil
}

// SetMSTIPortConfig applies cfg to (brIndex, portIndex, mstid)'s MSTI
// port parameters.
func (a *Adapter) SetMSTIPortConfig(brIndex, portIndex int, mstid uint16, cfg engine.MSTIPortConfig) error {
	_, ptp, err := a.lookupPerTreePort(brIndex, portIndex, mstid)
	if err != nil {
		return err
	}
	if !a.engine.SetMSTIPortConfig(ptp, cfg) {
		return fmt.Errorf("set msti port config: %w", registry.ErrEngineRejected)
	}
	return nil
}

// PortMcheck forces a protocol-migration check on (brIndex, portIndex).
func (a *Adapter) PortMcheck(brIndex, portIndex int) error {
	_, port, err := a.lookupPort(brIndex, portIndex)
	if err != nil {
		return err
	}
	if !a.engine.PortMcheck(port) {
		return fmt.Errorf("port mcheck: %w", registry.ErrEngineRejected)
	}
	return nil
}

// GetMSTIList returns the host-order MSTIDs of every MSTI on brIndex.
func (a *Adapter) GetMSTIList(brIndex int) ([]uint16, error) {
	br, err := a.lookupBridge(brIndex)
	if err != nil {
		return nil, err
	}
	return a.engine.GetMSTIList(br), nil
}

// CreateMSTI creates a new MSTI with the given host-order MSTID on
// brIndex.
func (a *Adapter) CreateMSTI(brIndex int, mstid uint16) error {
	br, err := a.lookupBridge(brIndex)
	if err != nil {
		return err
	}
	if !a.engine.CreateMSTI(br, mstid) {
		return fmt.Errorf("create msti %d: %w", mstid, registry.ErrEngineRejected)
	}
	return nil
}

// DeleteMSTI removes the MSTI with the given host-order MSTID from
// brIndex.
func (a *Adapter) DeleteMSTI(brIndex int, mstid uint16) error {
	br, err := a.lookupBridge(brIndex)
	if err != nil {
		return err
	}
	if !a.engine.DeleteMSTI(br, mstid) {
		return fmt.Errorf("delete msti %d: %w", mstid, registry.ErrEngineRejected)
	}
	return nil
}

// GetMSTConfigID returns brIndex's MST Configuration Identifier.
func (a *Adapter) GetMSTConfigID(brIndex int) (model.MstConfigIdentifier, error) {
	br, err := a.lookupBridge(brIndex)
	if err != nil {
		return model.MstConfigIdentifier{}, err
	}
	return br.MstConfigID, nil
}

// SetMSTConfigID sets brIndex's MST Configuration Identifier.
func (a *Adapter) SetMSTConfigID(brIndex int, revision uint16, name string) error {
	br, err := a.lookupBridge(brIndex)
	if err != nil {
		return err
	}
	a.engine.SetMSTConfigID(br, revision, name)
	return nil
}

// GetVID2FID returns a copy of brIndex's VID→FID table (host byte
// order), per spec.md §9's explicit "VID2FID bulk read does not convert
// from big-endian" note.
func (a *Adapter) GetVID2FID(brIndex int) ([4096]uint16, error) {
	br, err := a.lookupBridge(brIndex)
	if err != nil {
		return [4096]uint16{}, err
	}
	return br.VID2FID, nil
}

// GetFID2MSTID returns brIndex's FID→MSTID table converted from
// network byte order to host byte order per entry, per spec.md §9.
func (a *Adapter) GetFID2MSTID(brIndex int) ([4096]uint16, error) {
	br, err := a.lookupBridge(brIndex)
	if err != nil {
		return [4096]uint16{}, err
	}
	var out [4096]uint16
	for i, v := range br.FID2MSTID {
		out[i] = model.HostMSTID(v)
	}
	return out, nil
}

// SetVID2FID sets a single VID→FID table entry.
func (a *Adapter) SetVID2FID(brIndex int, vid, fid uint16) error {
	br, err := a.lookupBridge(brIndex)
	if err != nil {
		return err
	}
	if !a.engine.SetVID2FID(br, vid, fid) {
		return fmt.Errorf("set vid2fid: %w", registry.ErrEngineRejected)
	}
	return nil
}

// SetFID2MSTID sets a single FID→MSTID table entry (mstid is host
// order; the engine stores it network order).
func (a *Adapter) SetFID2MSTID(brIndex int, fid uint16, mstid uint16) error {
	br, err := a.lookupBridge(brIndex)
	if err != nil {
		return err
	}
	if !a.engine.SetFID2MSTID(br, fid, mstid) {
		return fmt.Errorf("set fid2mstid: %w", registry.ErrEngineRejected)
	}
	return nil
}

// SetAllVID2FID replaces the entire VID→FID table (host byte order).
func (a *Adapter) SetAllVID2FID(brIndex int, table [4096]uint16) error {
	br, err := a.lookupBridge(brIndex)
	if err != nil {
		return err
	}
	if !a.engine.SetAllVID2FID(br, &table) {
		return fmt.Errorf("set all vid2fid: %w", registry.ErrEngineRejected)
	}
	return nil
}

// SetAllFID2MSTID replaces the entire FID→MSTID table. table is stored
// big-endian per entry, per spec.md §9.
func (a *Adapter) SetAllFID2MSTID(brIndex int, table [4096]uint16) error {
	br, err := a.lookupBridge(brIndex)
	if err != nil {
		return err
	}
	if !a.engine.SetAllFID2MSTID(br, &table) {
		return fmt.Errorf("set all fid2mstid: %w", registry.ErrEngineRejected)
	}
	return nil
}

// SetLogLevel implements the control plane's "set log level" operation
// (CTL_set_debug_level in the original source).
func (a *Adapter) SetLogLevel(level int) error {
	setter, ok := a.log.(logx.LevelSetter)
	if !ok {
		return fmt.Errorf("logger does not support runtime level changes")
	}
	a.log.Info("set log level", "level", level)
	setter.SetLevel(level)
	return nil
}
