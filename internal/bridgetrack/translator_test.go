package bridgetrack_test

import (
	"net"
	"testing"

	"github.com/for454/mstpd/internal/bridgetrack"
	"github.com/for454/mstpd/internal/model"
	"github.com/for454/mstpd/internal/registry"
	"github.com/for454/mstpd/internal/testutil"
)

func newTranslator() (*bridgetrack.Translator, *registry.Registry, *testutil.FakeEngine, *testutil.FakePlatform) {
	eng := testutil.NewFakeEngine()
	plat := testutil.NewFakePlatform()
	reg := registry.New(eng, plat, testutil.NoopLogger{})
	tr := bridgetrack.New(reg, eng, plat, testutil.NoopLogger{})
	return tr, reg, eng, plat
}

func seedBridge(plat *testutil.FakePlatform, ifIndex int, name string, stpState int, up bool) {
	plat.NamesByIndex[ifIndex] = name
	plat.MACs[name] = net.HardwareAddr{1, 2, 3, 4, 5, byte(ifIndex)}
	plat.StpStates[name] = stpState
	plat.LinksUp[name] = up
}

func seedPort(plat *testutil.FakePlatform, ifIndex int, name string, portNo, speed, duplex int, up bool) {
	plat.NamesByIndex[ifIndex] = name
	plat.MACs[name] = net.HardwareAddr{1, 2, 3, 4, 6, byte(ifIndex)}
	plat.PortNumbers[name] = portNo
	plat.Speeds[name] = speed
	plat.Duplexes[name] = duplex
	plat.LinksUp[name] = up
}

// S1: bridge comes up with user-space STP enabled.
func TestBridgeUpWithSTPEnabled(t *testing.T) {
	tr, reg, eng, plat := newTranslator()
	seedBridge(plat, 10, "br0", 2, true)

	if err := tr.Notify(10, 10, true, true); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	br := reg.FindBridge(10)
	if br == nil {
		t.Fatal("expected bridge to be tracked")
	}
	if !br.AdminUp || !br.StpUp {
		t.Fatalf("expected admin_up && stp_up, got admin_up=%v stp_up=%v", br.AdminUp, br.StpUp)
	}
	if eng.SetBridgeEnableCalls != 1 {
		t.Fatalf("expected exactly one SetBridgeEnable call, got %d", eng.SetBridgeEnableCalls)
	}
}

// Invariant: engine_enabled observed by the engine always equals
// admin_up && stp_up (checked indirectly: flipping stp off with
// admin still up must still report enabled=false via a second call).
func TestEnabledTracksAdminAndStpConjunction(t *testing.T) {
	tr, reg, eng, plat := newTranslator()
	seedBridge(plat, 10, "br0", 2, true)
	if err := tr.Notify(10, 10, true, true); err != nil {
		t.Fatal(err)
	}
	br := reg.FindBridge(10)
	if !(br.AdminUp && br.StpUp) {
		t.Fatal("expected enabled after first notify")
	}

	plat.StpStates["br0"] = 0 // STP disabled in sysfs
	if err := tr.Notify(10, 10, true, true); err != nil {
		t.Fatal(err)
	}
	if br.AdminUp && br.StpUp {
		t.Fatal("expected enabled to go false once stp_state no longer reports 2")
	}
	if eng.SetBridgeEnableCalls != 2 {
		t.Fatalf("expected a second SetBridgeEnable call on the transition, got %d", eng.SetBridgeEnableCalls)
	}
}

// S2: a port observed on bridge A, then reported on bridge B without an
// intervening DELLINK (missed move notification).
func TestPortMoveAcrossBridgesWithoutDellink(t *testing.T) {
	tr, reg, _, plat := newTranslator()
	seedBridge(plat, 10, "br0", 2, true)
	seedBridge(plat, 20, "br1", 2, true)
	seedPort(plat, 100, "eth0", 1, 1000, 1, true)

	if err := tr.Notify(10, 100, true, true); err != nil {
		t.Fatalf("first notify: %v", err)
	}
	br0 := reg.FindBridge(10)
	if br0.FindPort(100) == nil {
		t.Fatal("expected eth0 attached to br0")
	}

	plat.PortNumbers["eth0"] = 1 // unchanged, now reported under br1
	if err := tr.Notify(20, 100, true, true); err != nil {
		t.Fatalf("second notify: %v", err)
	}
	br1 := reg.FindBridge(20)
	if br0.FindPort(100) != nil {
		t.Fatal("eth0 must be detached from br0 after the move")
	}
	if br1.FindPort(100) == nil {
		t.Fatal("eth0 must be attached to br1 after the move")
	}
}

// S3: DELLINK for a port if_index unknown anywhere in the registry.
func TestUnknownDellinkReturnsError(t *testing.T) {
	tr, _, _, plat := newTranslator()
	seedBridge(plat, 10, "br0", 2, true)

	err := tr.Notify(10, 999, false, false)
	if err == nil {
		t.Fatal("expected an error for DELLINK of an unknown port")
	}
}

// S6: ethtool (speed/duplex) read failure defaults to 10/half.
func TestSpeedDuplexFailureDefaultsTo10Half(t *testing.T) {
	tr, reg, eng, plat := newTranslator()
	seedBridge(plat, 10, "br0", 2, true)
	seedPort(plat, 100, "eth0", 1, 1000, 1, true)
	plat.SpeedDuplexErr["eth0"] = true

	if err := tr.Notify(10, 100, true, true); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	port := reg.FindBridge(10).FindPort(100)
	if port.Speed != 10 || port.Duplex != 0 {
		t.Fatalf("expected speed=10 duplex=0 default, got speed=%d duplex=%d", port.Speed, port.Duplex)
	}
	if eng.SetPortEnableCalls != 1 {
		t.Fatalf("expected one SetPortEnable call, got %d", eng.SetPortEnableCalls)
	}
}

// Invariant 5: repeating the identical (up, speed, duplex) observation
// is idempotent — exactly one SetPortEnable call total.
func TestRepeatedIdenticalPortObservationIsIdempotent(t *testing.T) {
	tr, reg, eng, plat := newTranslator()
	seedBridge(plat, 10, "br0", 2, true)
	seedPort(plat, 100, "eth0", 1, 1000, 1, true)

	if err := tr.Notify(10, 100, true, true); err != nil {
		t.Fatalf("first notify: %v", err)
	}
	if err := tr.Notify(10, 100, true, true); err != nil {
		t.Fatalf("second notify: %v", err)
	}
	if eng.SetPortEnableCalls != 1 {
		t.Fatalf("expected exactly one SetPortEnable call across repeats, got %d", eng.SetPortEnableCalls)
	}
	port := reg.FindBridge(10).FindPort(100)
	if !port.Up {
		t.Fatal("expected port to remain up")
	}
}

// Invariant 6: SetState with newState equal to the current state is a
// no-op (no log, no mutation beyond the already-current value).
func TestSetStateNoOpWhenUnchanged(t *testing.T) {
	tr, reg, _, plat := newTranslator()
	seedBridge(plat, 10, "br0", 2, true)
	seedPort(plat, 100, "eth0", 1, 1000, 1, true)
	if err := tr.Notify(10, 100, true, true); err != nil {
		t.Fatalf("notify: %v", err)
	}
	port := reg.FindBridge(10).FindPort(100)
	ptp := port.FindTree(model.NetMSTID(0))
	if ptp == nil {
		t.Fatal("expected a CIST per-tree-port to exist")
	}

	tr.SetState(ptp, model.StateForwarding)
	if ptp.State != model.StateForwarding {
		t.Fatalf("expected state forwarding, got %v", ptp.State)
	}

	tr.SetState(ptp, model.StateForwarding)
	if ptp.State != model.StateForwarding {
		t.Fatal("expected state to remain forwarding after a repeated identical SetState")
	}
}

func TestSetStateCoercesInvalidStateToDisabled(t *testing.T) {
	tr, reg, _, plat := newTranslator()
	seedBridge(plat, 10, "br0", 2, true)
	seedPort(plat, 100, "eth0", 1, 1000, 1, true)
	if err := tr.Notify(10, 100, true, true); err != nil {
		t.Fatalf("notify: %v", err)
	}
	port := reg.FindBridge(10).FindPort(100)
	ptp := port.FindTree(model.NetMSTID(0))

	tr.SetState(ptp, model.PortState(99))
	if ptp.State != model.StateDisabled {
		t.Fatalf("expected an invalid state to coerce to disabled, got %v", ptp.State)
	}
}
