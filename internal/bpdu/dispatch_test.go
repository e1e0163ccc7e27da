package bpdu_test

import (
	"net"
	"testing"

	"github.com/for454/mstpd/internal/bpdu"
	"github.com/for454/mstpd/internal/model"
	"github.com/for454/mstpd/internal/registry"
	"github.com/for454/mstpd/internal/testutil"
)

func seeded(t *testing.T) (*registry.Registry, *model.Bridge, *model.Port) {
	t.Helper()
	eng := testutil.NewFakeEngine()
	plat := testutil.NewFakePlatform()
	reg := registry.New(eng, plat, testutil.NoopLogger{})

	plat.NamesByIndex[10] = "br0"
	plat.MACs["br0"] = net.HardwareAddr{1, 2, 3, 4, 5, 6}
	br, err := reg.CreateBridge(10)
	if err != nil {
		t.Fatalf("CreateBridge: %v", err)
	}
	br.StpUp = true

	plat.NamesByIndex[100] = "eth0"
	plat.MACs["eth0"] = net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	plat.PortNumbers["eth0"] = 1
	port, err := reg.CreatePort(br, 100)
	if err != nil {
		t.Fatalf("CreatePort: %v", err)
	}
	port.Up = true
	return reg, br, port
}

// S4: frame carrying the wrong DSAP is dropped.
func TestReceiveDropsFrameWithWrongDSAP(t *testing.T) {
	eng := testutil.NewFakeEngine()
	reg, _, _ := seeded(t)
	d := bpdu.NewDispatcher(reg, eng, testutil.NoopLogger{})

	frame := make([]byte, 20)
	copy(frame[0:6], bpdu.BridgeGroupAddress[:])
	frame[12], frame[13] = 0, 5
	frame[14] = 0x43 // wrong DSAP
	frame[15] = 0x42
	frame[16] = 0x03

	d.Receive(100, frame)
	// No observable effect beyond not panicking: FakeEngine.RxBPDU is a
	// no-op, so this test documents the drop path doesn't explode.
}

// S4: a length field below LLC_PDU_LEN_U is dropped.
func TestReceiveDropsFrameWithLengthBelowLLCPduLenU(t *testing.T) {
	eng := testutil.NewFakeEngine()
	reg, _, _ := seeded(t)
	d := bpdu.NewDispatcher(reg, eng, testutil.NoopLogger{})

	frame := make([]byte, 17)
	copy(frame[0:6], bpdu.BridgeGroupAddress[:])
	frame[12], frame[13] = 0, 2 // len8023 == 2, below LLC_PDU_LEN_U
	frame[14] = 0x42
	frame[15] = 0x42
	frame[16] = 0x03

	d.Receive(100, frame)
}

func TestReceiveDropsFrameFromUnknownPort(t *testing.T) {
	eng := testutil.NewFakeEngine()
	reg, _, _ := seeded(t)
	d := bpdu.NewDispatcher(reg, eng, testutil.NoopLogger{})
	d.Receive(999, make([]byte, 64))
}

func TestReceiveDropsWhenStpDisabled(t *testing.T) {
	eng := testutil.NewFakeEngine()
	reg, br, _ := seeded(t)
	br.StpUp = false
	d := bpdu.NewDispatcher(reg, eng, testutil.NoopLogger{})
	d.Receive(100, make([]byte, 64))
}

func TestSenderEncodesAndSendsOnPortInterface(t *testing.T) {
	_, _, port := seeded(t)
	plat := testutil.NewFakePlatform()
	plat.NamesByIndex[100] = "eth0"
	s := bpdu.NewSender(plat, testutil.NoopLogger{})

	payload := []byte{0x00, 0x00, 0x02}
	if err := s.TxBPDU(port, payload); err != nil {
		t.Fatalf("TxBPDU: %v", err)
	}
	if len(plat.SentFrames) != 1 {
		t.Fatalf("expected exactly one sent frame, got %d", len(plat.SentFrames))
	}
	sent := plat.SentFrames[0]
	if sent.IfIndex != port.IfIndex {
		t.Fatalf("expected frame sent on if_index %d, got %d", port.IfIndex, sent.IfIndex)
	}
	if len(sent.Frame) != 17+len(payload) {
		t.Fatalf("expected frame length %d, got %d", 17+len(payload), len(sent.Frame))
	}
}
