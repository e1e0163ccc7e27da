package bpdu

import (
	"github.com/for454/mstpd/internal/engine"
	"github.com/for454/mstpd/internal/logx"
	"github.com/for454/mstpd/internal/registry"
)

// Dispatcher implements BPDU ingress (spec.md §4.4): resolving the
// receiving port, validating the frame, and delivering the payload to
// the protocol engine.
type Dispatcher struct {
	reg    *registry.Registry
	engine engine.Engine
	log    logx.Logger
}

// NewDispatcher constructs a Dispatcher over the given registry and
// engine.
func NewDispatcher(reg *registry.Registry, eng engine.Engine, log logx.Logger) *Dispatcher {
	return &Dispatcher{reg: reg, engine: eng, log: log}
}

// Receive processes one frame received on ifIndex, per spec.md §4.4's
// five steps. Any failure drops the frame; an unknown port, a port or
// bridge that is not ready, or a too-short frame is logged at debug
// level, and a decoded header that fails validation at info level. A
// drop is never a fatal condition, per spec.md §7.
func (d *Dispatcher) Receive(ifIndex int, frame []byte) {
	br, port := d.reg.FindPortAnywhere(ifIndex)
	if port == nil {
		d.log.Debug("bpdu on unknown port", "if_index", ifIndex)
		return
	}

	if port.Bridge != br || !port.Up || !br.StpUp {
		d.log.Debug("bpdu dropped, port/bridge not ready",
			"if_index", ifIndex, "port_up", port.Up, "stp_up", br.StpUp)
		return
	}

	decoded, ok := decodeFrame(frame)
	if !ok {
		d.log.Debug("bpdu frame too short", "if_index", ifIndex, "len", len(frame))
		return
	}
	if !decoded.validate(len(frame)) {
		d.log.Info("bpdu frame failed validation", "if_index", ifIndex,
			"dest", decoded.dest, "len8023", decoded.len8023, "dsap", decoded.dsap, "ssap", decoded.ssap)
		return
	}

	d.engine.RxBPDU(port, decoded.bpduPayload())
}
