package engine

import (
	"net"

	"github.com/for454/mstpd/internal/logx"
	"github.com/for454/mstpd/internal/model"
)

// NoopEngine is a placeholder Engine that logs every call and accepts
// every create/config request, attaching a PerTreePort for every tree
// already on the port's bridge (at minimum the CIST) per the Engine
// contract. It exists so cmd/mstpd is a
// runnable composition root without the real MSTP protocol engine,
// which is an external collaborator this module only ever calls into
// (spec.md §1 non-goal) and is never implemented here.
type NoopEngine struct {
	log logx.Logger
}

// NewNoop constructs a NoopEngine.
func NewNoop(log logx.Logger) *NoopEngine {
	return &NoopEngine{log: log}
}

func (e *NoopEngine) BridgeCreate(br *model.Bridge, mac net.HardwareAddr) bool {
	e.log.Debug("noop engine: bridge create", "bridge", br.Name)
	return true
}

func (e *NoopEngine) DeleteBridge(br *model.Bridge) {
	e.log.Debug("noop engine: bridge delete", "bridge", br.Name)
}

func (e *NoopEngine) PortCreateAndAddTail(port *model.Port, portNo int) bool {
	e.log.Debug("noop engine: port create", "port", port.Name, "portno", portNo)
	if port.Bridge != nil {
		for _, tree := range port.Bridge.Trees {
			model.AttachPerTreePort(port, tree, uint16(portNo))
		}
	}
	return true
}

func (e *NoopEngine) DeletePort(port *model.Port) {
	e.log.Debug("noop engine: port delete", "port", port.Name)
}

func (e *NoopEngine) SetBridgeAddress(br *model.Bridge, mac net.HardwareAddr) {
	e.log.Debug("noop engine: bridge address changed", "bridge", br.Name, "mac", mac)
}

func (e *NoopEngine) SetBridgeEnable(br *model.Bridge, enabled bool) {
	e.log.Debug("noop engine: bridge enable changed", "bridge", br.Name, "enabled", enabled)
}

func (e *NoopEngine) SetPortEnable(port *model.Port, up bool, speedMbps int, duplex int) {
	e.log.Debug("noop engine: port enable changed", "port", port.Name, "up", up, "speed", speedMbps, "duplex", duplex)
}

func (e *NoopEngine) OneSecond(br *model.Bridge) {}

func (e *NoopEngine) RxBPDU(port *model.Port, payload []byte) {
	e.log.Debug("noop engine: rx bpdu", "port", port.Name, "len", len(payload))
}

func (e *NoopEngine) AllFIDsFlushed(ptp *model.PerTreePort) {}

func (e *NoopEngine) GetCISTBridgeStatus(br *model.Bridge) CISTBridgeStatus {
	return CISTBridgeStatus{}
}

func (e *NoopEngine) SetCISTBridgeConfig(br *model.Bridge, cfg CISTBridgeConfig) bool { return true }

func (e *NoopEngine) GetMSTIBridgeStatus(tree *model.Tree) MSTIBridgeStatus {
	return MSTIBridgeStatus{}
}

func (e *NoopEngine) SetMSTIBridgeConfig(tree *model.Tree, priority uint8) bool { return true }

func (e *NoopEngine) GetCISTPortStatus(port *model.Port) CISTPortStatus {
	return CISTPortStatus{}
}

func (e *NoopEngine) SetCISTPortConfig(port *model.Port, cfg CISTPortConfig) bool { return true }

func (e *NoopEngine) GetMSTIPortStatus(ptp *model.PerTreePort) MSTIPortStatus {
	return MSTIPortStatus{}
}

func (e *NoopEngine) SetMSTIPortConfig(ptp *model.PerTreePort, cfg MSTIPortConfig) bool {
	return true
}

func (e *NoopEngine) PortMcheck(port *model.Port) bool { return true }

func (e *NoopEngine) GetMSTIList(br *model.Bridge) []uint16 {
	var ids []uint16
	for _, t := range br.Trees {
		if t == br.CIST() {
			continue
		}
		ids = append(ids, model.HostMSTID(t.MSTID))
	}
	return ids
}

func (e *NoopEngine) CreateMSTI(br *model.Bridge, hostMSTID uint16) bool {
	netID := model.NetMSTID(hostMSTID)
	if br.FindTree(netID) != nil {
		return false
	}
	tree := &model.Tree{MSTID: netID}
	br.AttachTree(tree)
	for _, port := range br.Ports {
		model.AttachPerTreePort(port, tree, uint16(port.PortNo))
	}
	return true
}

func (e *NoopEngine) DeleteMSTI(br *model.Bridge, hostMSTID uint16) bool {
	tree := br.FindTree(model.NetMSTID(hostMSTID))
	if tree == nil || tree == br.CIST() {
		return false
	}
	br.DetachTree(tree)
	return true
}

func (e *NoopEngine) SetMSTConfigID(br *model.Bridge, revision uint16, name string) {
	br.MstConfigID = model.MstConfigIdentifier{Revision: revision, Name: name}
}

func (e *NoopEngine) SetVID2FID(br *model.Bridge, vid, fid uint16) bool {
	if int(vid) >= len(br.VID2FID) {
		return false
	}
	br.VID2FID[vid] = fid
	return true
}

func (e *NoopEngine) SetFID2MSTID(br *model.Bridge, fid uint16, hostMSTID uint16) bool {
	if int(fid) >= len(br.FID2MSTID) {
		return false
	}
	br.FID2MSTID[fid] = model.NetMSTID(hostMSTID)
	return true
}

func (e *NoopEngine) SetAllVID2FID(br *model.Bridge, table *[4096]uint16) bool {
	br.VID2FID = *table
	return true
}

func (e *NoopEngine) SetAllFID2MSTID(br *model.Bridge, table *[4096]uint16) bool {
	br.FID2MSTID = *table
	return true
}

var _ Engine = (*NoopEngine)(nil)
