package bpdu

import (
	"github.com/for454/mstpd/internal/logx"
	"github.com/for454/mstpd/internal/model"
	"github.com/for454/mstpd/internal/platform"
)

// Sender implements BPDU egress (spec.md §4.5): synthesizing the LLC
// header and handing the resulting frame to the platform's raw-socket
// send. It implements the TxBPDU half of engine.Sink.
type Sender struct {
	platform platform.Platform
	log      logx.Logger
}

// NewSender constructs a Sender bound to the given platform.
func NewSender(plat platform.Platform, log logx.Logger) *Sender {
	return &Sender{platform: plat, log: log}
}

// TxBPDU synthesizes the LLC header described in spec.md §4.5/§6 and
// emits the resulting frame on port. There is no retry on send failure;
// the protocol engine owns retransmission timing, per spec.md §4.5.
func (s *Sender) TxBPDU(port *model.Port, payload []byte) error {
	frame := encodeFrame(port.MAC, payload)
	if err := s.platform.Send(port.IfIndex, frame); err != nil {
		s.log.Error("bpdu send failed", "port", port.Name, "err", err)
		return err
	}
	s.log.Debug("bpdu sent", "port", port.Name, "size", len(payload))
	return nil
}
