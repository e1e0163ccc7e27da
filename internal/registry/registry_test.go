package registry_test

import (
	"errors"
	"net"
	"testing"

	"github.com/for454/mstpd/internal/model"
	"github.com/for454/mstpd/internal/registry"
	"github.com/for454/mstpd/internal/testutil"
)

func newRegistry() (*registry.Registry, *testutil.FakeEngine, *testutil.FakePlatform) {
	eng := testutil.NewFakeEngine()
	plat := testutil.NewFakePlatform()
	log := testutil.NoopLogger{}
	return registry.New(eng, plat, log), eng, plat
}

func addBridge(t *testing.T, reg *registry.Registry, plat *testutil.FakePlatform, ifIndex int, name string) *model.Bridge {
	t.Helper()
	plat.NamesByIndex[ifIndex] = name
	plat.MACs[name] = net.HardwareAddr{0, 1, 2, 3, 4, byte(ifIndex)}
	br, err := reg.CreateBridge(ifIndex)
	if err != nil {
		t.Fatalf("CreateBridge(%d): %v", ifIndex, err)
	}
	return br
}

func addPort(t *testing.T, reg *registry.Registry, plat *testutil.FakePlatform, br *model.Bridge, ifIndex int, name string, portNo int) *model.Port {
	t.Helper()
	plat.NamesByIndex[ifIndex] = name
	plat.MACs[name] = net.HardwareAddr{0, 1, 2, 3, 5, byte(ifIndex)}
	plat.PortNumbers[name] = portNo
	p, err := reg.CreatePort(br, ifIndex)
	if err != nil {
		t.Fatalf("CreatePort(%d): %v", ifIndex, err)
	}
	return p
}

func TestCreateBridgeAttachesCIST(t *testing.T) {
	reg, _, plat := newRegistry()
	br := addBridge(t, reg, plat, 10, "br0")
	if br.CIST() == nil {
		t.Fatal("expected CIST tree to exist after CreateBridge")
	}
	if got := reg.FindBridge(10); got != br {
		t.Fatal("FindBridge did not return the created bridge")
	}
}

func TestIfIndexUniqueAcrossRegistry(t *testing.T) {
	reg, _, plat := newRegistry()
	br1 := addBridge(t, reg, plat, 10, "br0")
	br2 := addBridge(t, reg, plat, 20, "br1")
	addPort(t, reg, plat, br1, 100, "eth0", 1)

	// Same if_index cannot simultaneously belong to a second bridge: a
	// lookup of if_index 100 anywhere in the registry finds it once, on
	// its actual owner.
	owner, port := reg.FindPortAnywhere(100)
	if owner != br1 || port == nil {
		t.Fatalf("expected if_index 100 to resolve to br1, got owner=%v port=%v", owner, port)
	}
	if p := br2.FindPort(100); p != nil {
		t.Fatal("if_index 100 must not also resolve under br2")
	}
}

func TestDeleteBridgeCascadesOnlyItsOwnPorts(t *testing.T) {
	reg, eng, plat := newRegistry()
	br1 := addBridge(t, reg, plat, 10, "br0")
	br2 := addBridge(t, reg, plat, 20, "br1")
	addPort(t, reg, plat, br1, 100, "eth0", 1)
	addPort(t, reg, plat, br2, 200, "eth1", 1)

	if !reg.DeleteBridge(10) {
		t.Fatal("DeleteBridge(10) should report true")
	}

	if reg.FindBridge(10) != nil {
		t.Fatal("br0 should no longer be tracked")
	}
	if reg.FindBridge(20) == nil {
		t.Fatal("br1 must survive deleting br0")
	}
	if br2.FindPort(200) == nil {
		t.Fatal("br1's port must survive deleting br0")
	}
	if len(eng.DeletedBridges) != 1 || eng.DeletedBridges[0] != 10 {
		t.Fatalf("expected engine.DeleteBridge(10) exactly once, got %v", eng.DeletedBridges)
	}
}

func TestCreatePortRejectsPortNumberZero(t *testing.T) {
	reg, _, plat := newRegistry()
	br := addBridge(t, reg, plat, 10, "br0")
	plat.NamesByIndex[100] = "eth0"
	plat.MACs["eth0"] = net.HardwareAddr{1, 2, 3, 4, 5, 6}
	plat.PortNumbers["eth0"] = 0

	_, err := reg.CreatePort(br, 100)
	if !errors.Is(err, registry.ErrPortNumberInvalid) {
		t.Fatalf("expected ErrPortNumberInvalid, got %v", err)
	}
	if br.FindPort(100) != nil {
		t.Fatal("rejected port must not be attached")
	}
}

func TestCreatePortAcceptsMaxPortNumber(t *testing.T) {
	reg, _, plat := newRegistry()
	br := addBridge(t, reg, plat, 10, "br0")
	plat.NamesByIndex[100] = "eth0"
	plat.MACs["eth0"] = net.HardwareAddr{1, 2, 3, 4, 5, 6}
	plat.PortNumbers["eth0"] = model.MAX_PORT_NUMBER

	port, err := reg.CreatePort(br, 100)
	if err != nil {
		t.Fatalf("expected MAX_PORT_NUMBER to be accepted, got %v", err)
	}
	if port.PortNo != model.MAX_PORT_NUMBER {
		t.Fatalf("expected portno %d, got %d", model.MAX_PORT_NUMBER, port.PortNo)
	}
}

func TestCreatePortRejectsPortNumberAboveMax(t *testing.T) {
	reg, _, plat := newRegistry()
	br := addBridge(t, reg, plat, 10, "br0")
	plat.NamesByIndex[100] = "eth0"
	plat.MACs["eth0"] = net.HardwareAddr{1, 2, 3, 4, 5, 6}
	plat.PortNumbers["eth0"] = model.MAX_PORT_NUMBER + 1

	_, err := reg.CreatePort(br, 100)
	if !errors.Is(err, registry.ErrPortNumberInvalid) {
		t.Fatalf("expected ErrPortNumberInvalid, got %v", err)
	}
}

func TestCreateBridgeRejectedByEngineLeavesNoTrace(t *testing.T) {
	eng := testutil.NewFakeEngine()
	eng.RejectBridgeCreate = true
	plat := testutil.NewFakePlatform()
	reg := registry.New(eng, plat, testutil.NoopLogger{})
	plat.NamesByIndex[10] = "br0"
	plat.MACs["br0"] = net.HardwareAddr{1, 2, 3, 4, 5, 6}

	_, err := reg.CreateBridge(10)
	if !errors.Is(err, registry.ErrEngineRejected) {
		t.Fatalf("expected ErrEngineRejected, got %v", err)
	}
	if reg.FindBridge(10) != nil {
		t.Fatal("rejected bridge must not be tracked")
	}
}
