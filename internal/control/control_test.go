package control_test

import (
	"errors"
	"net"
	"testing"

	"github.com/for454/mstpd/internal/control"
	"github.com/for454/mstpd/internal/registry"
	"github.com/for454/mstpd/internal/testutil"
)

func newAdapter(t *testing.T) (*control.Adapter, *registry.Registry) {
	t.Helper()
	eng := testutil.NewFakeEngine()
	plat := testutil.NewFakePlatform()
	reg := registry.New(eng, plat, testutil.NoopLogger{})

	plat.NamesByIndex[10] = "br0"
	plat.MACs["br0"] = net.HardwareAddr{1, 2, 3, 4, 5, 6}
	if _, err := reg.CreateBridge(10); err != nil {
		t.Fatalf("CreateBridge: %v", err)
	}
	return control.New(reg, eng, testutil.NoopLogger{}), reg
}

// S5: create an MSTI, see it listed, delete it, then confirm a
// subsequent set against it fails.
func TestMSTILifecycle(t *testing.T) {
	a, _ := newAdapter(t)

	if err := a.CreateMSTI(10, 7); err != nil {
		t.Fatalf("CreateMSTI: %v", err)
	}

	ids, err := a.GetMSTIList(10)
	if err != nil {
		t.Fatalf("GetMSTIList: %v", err)
	}
	found := false
	for _, id := range ids {
		if id == 7 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected MSTID 7 in list %v", ids)
	}

	if err := a.DeleteMSTI(10, 7); err != nil {
		t.Fatalf("DeleteMSTI: %v", err)
	}

	if err := a.SetMSTIBridgeConfig(10, 7, 32); err == nil {
		t.Fatal("expected SetMSTIBridgeConfig against a deleted MSTI to fail")
	}
}

func TestCreateMSTIDuplicateRejected(t *testing.T) {
	a, _ := newAdapter(t)
	if err := a.CreateMSTI(10, 3); err != nil {
		t.Fatalf("first CreateMSTI: %v", err)
	}
	if err := a.CreateMSTI(10, 3); err == nil {
		t.Fatal("expected a duplicate MSTID create to fail")
	}
}

func TestLookupUnknownBridgeFails(t *testing.T) {
	a, _ := newAdapter(t)
	if _, err := a.GetMSTIList(999); !errors.Is(err, registry.ErrBridgeNotFound) {
		t.Fatalf("expected ErrBridgeNotFound, got %v", err)
	}
}

func TestSetLogLevelRejectsLoggerWithoutLevelSetter(t *testing.T) {
	eng := testutil.NewFakeEngine()
	plat := testutil.NewFakePlatform()
	reg := registry.New(eng, plat, testutil.NoopLogger{})
	// testutil.NoopLogger does not implement logx.LevelSetter.
	a := control.New(reg, eng, testutil.NoopLogger{})
	if err := a.SetLogLevel(2); err == nil {
		t.Fatal("expected SetLogLevel to fail against a logger without LevelSetter support")
	}
}
