// Package testutil holds hand-written fakes for engine.Engine and
// platform.Platform, shared across this module's package tests instead
// of each package rolling its own, matching the shape of the teacher's
// own small in-package mocks for its external collaborators.
package testutil

import (
	"fmt"
	"net"

	"github.com/for454/mstpd/internal/engine"
	"github.com/for454/mstpd/internal/logx"
	"github.com/for454/mstpd/internal/model"
	"github.com/for454/mstpd/internal/platform"
)

// NoopLogger discards everything; it satisfies logx.Logger for tests
// that don't care about log output.
type NoopLogger struct{}

func (NoopLogger) Debug(msg string, fields ...any) {}
func (NoopLogger) Info(msg string, fields ...any)  {}
func (NoopLogger) Error(msg string, fields ...any) {}

var _ logx.Logger = NoopLogger{}

// FakeEngine is a recording, scriptable engine.Engine.
type FakeEngine struct {
	RejectBridgeCreate bool
	RejectPortCreate   bool

	SetPortEnableCalls   int
	SetBridgeEnableCalls int
	DeletedPorts         []int
	DeletedBridges       []int
}

func NewFakeEngine() *FakeEngine {
	return &FakeEngine{}
}

func (e *FakeEngine) BridgeCreate(br *model.Bridge, mac net.HardwareAddr) bool {
	return !e.RejectBridgeCreate
}

func (e *FakeEngine) DeleteBridge(br *model.Bridge) {
	e.DeletedBridges = append(e.DeletedBridges, br.IfIndex)
}

func (e *FakeEngine) PortCreateAndAddTail(port *model.Port, portNo int) bool {
	if e.RejectPortCreate {
		return false
	}
	if port.Bridge != nil {
		if cist := port.Bridge.CIST(); cist != nil {
			model.AttachPerTreePort(port, cist, uint16(portNo))
		}
	}
	return true
}

func (e *FakeEngine) DeletePort(port *model.Port) {
	e.DeletedPorts = append(e.DeletedPorts, port.IfIndex)
}

func (e *FakeEngine) SetBridgeAddress(br *model.Bridge, mac net.HardwareAddr) {}

func (e *FakeEngine) SetBridgeEnable(br *model.Bridge, enabled bool) {
	e.SetBridgeEnableCalls++
}

func (e *FakeEngine) SetPortEnable(port *model.Port, up bool, speedMbps int, duplex int) {
	e.SetPortEnableCalls++
}

func (e *FakeEngine) OneSecond(br *model.Bridge) {}

func (e *FakeEngine) RxBPDU(port *model.Port, payload []byte) {}

func (e *FakeEngine) AllFIDsFlushed(ptp *model.PerTreePort) {}

func (e *FakeEngine) GetCISTBridgeStatus(br *model.Bridge) engine.CISTBridgeStatus {
	return engine.CISTBridgeStatus{}
}

func (e *FakeEngine) SetCISTBridgeConfig(br *model.Bridge, cfg engine.CISTBridgeConfig) bool {
	return true
}

func (e *FakeEngine) GetMSTIBridgeStatus(tree *model.Tree) engine.MSTIBridgeStatus {
	return engine.MSTIBridgeStatus{}
}

func (e *FakeEngine) SetMSTIBridgeConfig(tree *model.Tree, priority uint8) bool { return true }

func (e *FakeEngine) GetCISTPortStatus(port *model.Port) engine.CISTPortStatus {
	return engine.CISTPortStatus{}
}

func (e *FakeEngine) SetCISTPortConfig(port *model.Port, cfg engine.CISTPortConfig) bool {
	return true
}

func (e *FakeEngine) GetMSTIPortStatus(ptp *model.PerTreePort) engine.MSTIPortStatus {
	return engine.MSTIPortStatus{}
}

func (e *FakeEngine) SetMSTIPortConfig(ptp *model.PerTreePort, cfg engine.MSTIPortConfig) bool {
	return true
}

func (e *FakeEngine) PortMcheck(port *model.Port) bool { return true }

func (e *FakeEngine) GetMSTIList(br *model.Bridge) []uint16 {
	var ids []uint16
	for _, t := range br.Trees {
		if t == br.CIST() {
			continue
		}
		ids = append(ids, model.HostMSTID(t.MSTID))
	}
	return ids
}

func (e *FakeEngine) CreateMSTI(br *model.Bridge, hostMSTID uint16) bool {
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

func (e *FakeEngine) DeleteMSTI(br *model.Bridge, hostMSTID uint16) bool {
	tree := br.FindTree(model.NetMSTID(hostMSTID))
	if tree == nil || tree == br.CIST() {
		return false
	}
	br.DetachTree(tree)
	return true
}

func (e *FakeEngine) SetMSTConfigID(br *model.Bridge, revision uint16, name string) {
	br.MstConfigID = model.MstConfigIdentifier{Revision: revision, Name: name}
}

func (e *FakeEngine) SetVID2FID(br *model.Bridge, vid, fid uint16) bool {
	br.VID2FID[vid] = fid
	return true
}

func (e *FakeEngine) SetFID2MSTID(br *model.Bridge, fid uint16, hostMSTID uint16) bool {
	br.FID2MSTID[fid] = model.NetMSTID(hostMSTID)
	return true
}

func (e *FakeEngine) SetAllVID2FID(br *model.Bridge, table *[4096]uint16) bool {
	br.VID2FID = *table
	return true
}

func (e *FakeEngine) SetAllFID2MSTID(br *model.Bridge, table *[4096]uint16) bool {
	br.FID2MSTID = *table
	return true
}

var _ engine.Engine = (*FakeEngine)(nil)

// FakePlatform is a scriptable platform.Platform backed by plain maps
// keyed by interface name/index, instead of touching the real OS.
type FakePlatform struct {
	NamesByIndex map[int]string
	MACs         map[string]net.HardwareAddr
	LinksUp      map[string]bool
	Speeds       map[string]int
	Duplexes     map[string]int
	StpStates    map[string]int
	PortNumbers  map[string]int

	SentFrames []SentFrame

	SpeedDuplexErr map[string]bool
}

type SentFrame struct {
	IfIndex int
	Frame   []byte
}

func NewFakePlatform() *FakePlatform {
	return &FakePlatform{
		NamesByIndex:   make(map[int]string),
		MACs:           make(map[string]net.HardwareAddr),
		LinksUp:        make(map[string]bool),
		Speeds:         make(map[string]int),
		Duplexes:       make(map[string]int),
		StpStates:      make(map[string]int),
		PortNumbers:    make(map[string]int),
		SpeedDuplexErr: make(map[string]bool),
	}
}

func (p *FakePlatform) IfIndexToName(ifIndex int) (string, error) {
	name, ok := p.NamesByIndex[ifIndex]
	if !ok {
		return "", fmt.Errorf("no such if_index %d", ifIndex)
	}
	return name, nil
}

func (p *FakePlatform) HWAddr(name string) (net.HardwareAddr, error) {
	mac, ok := p.MACs[name]
	if !ok {
		return nil, fmt.Errorf("no mac for %s", name)
	}
	return mac, nil
}

func (p *FakePlatform) LinkUp(name string) (bool, error) {
	return p.LinksUp[name], nil
}

func (p *FakePlatform) SpeedDuplex(name string) (int, int, error) {
	if p.SpeedDuplexErr[name] {
		return -1, -1, fmt.Errorf("ethtool failed for %s", name)
	}
	return p.Speeds[name], p.Duplexes[name], nil
}

func (p *FakePlatform) StpState(name string) (int, error) {
	return p.StpStates[name], nil
}

func (p *FakePlatform) BridgePortNo(name string) (int, error) {
	n, ok := p.PortNumbers[name]
	if !ok {
		return 0, fmt.Errorf("no port number for %s", name)
	}
	return n, nil
}

func (p *FakePlatform) Send(ifIndex int, frame []byte) error {
	cp := make([]byte, len(frame))
	copy(cp, frame)
	p.SentFrames = append(p.SentFrames, SentFrame{IfIndex: ifIndex, Frame: cp})
	return nil
}

var _ platform.Platform = (*FakePlatform)(nil)
