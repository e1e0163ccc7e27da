// Package bridgetrack implements the Event Translator (spec.md §4.2),
// its state-refresh helpers (§4.3), the once-per-second tick (§4.6), and
// the SetState half of the port-state commit (§4.7). It is grounded on
// the C source's bridge_notify, set_br_up, set_if_up, bridge_one_second
// and MSTP_OUT_set_state, translated line for line in control flow —
// including the sibling-bridge recovery scan bridge_notify performs to
// paper over a missed netlink move notification.
package bridgetrack

import (
	"fmt"

	"github.com/for454/mstpd/internal/engine"
	"github.com/for454/mstpd/internal/logx"
	"github.com/for454/mstpd/internal/model"
	"github.com/for454/mstpd/internal/platform"
	"github.com/for454/mstpd/internal/registry"
)

// Translator consumes link notifications and the per-second tick,
// mutating the Bridge Registry and forwarding deltas into the protocol
// engine.
type Translator struct {
	reg      *registry.Registry
	engine   engine.Engine
	platform platform.Platform
	log      logx.Logger
}

// New constructs a Translator over the given registry, engine and
// platform.
func New(reg *registry.Registry, eng engine.Engine, plat platform.Platform, log logx.Logger) *Translator {
	return &Translator{reg: reg, engine: eng, platform: plat, log: log}
}

// Notify processes one link notification, per spec.md §4.2's exhaustive
// algorithm. brIndex == ifIndex means ifIndex is a bridge master;
// brIndex >= 0 && brIndex != ifIndex means ifIndex is a slave of the
// bridge at brIndex; brIndex < 0 means a non-slave event.
func (t *Translator) Notify(brIndex, ifIndex int, newlink, up bool) error {
	t.log.Debug("bridge_notify", "br_index", brIndex, "if_index", ifIndex, "newlink", newlink, "up", up)

	if brIndex >= 0 && brIndex != ifIndex {
		return t.notifySlaveEvent(brIndex, ifIndex, newlink, up)
	}
	return t.notifyNonSlaveEvent(brIndex, ifIndex, newlink, up)
}

func (t *Translator) notifySlaveEvent(brIndex, ifIndex int, newlink, up bool) error {
	br := t.reg.FindBridge(brIndex)
	if br == nil {
		var err error
		br, err = t.reg.CreateBridge(brIndex)
		if err != nil {
			t.log.Error("couldn't create data for bridge interface", "if_index", brIndex, "err", err)
			return fmt.Errorf("bridge_notify: %w", err)
		}
	}
	if brUp, err := t.platform.LinkUp(br.Name); err == nil {
		t.setBridgeUp(br, brUp)
	}

	port := br.FindPort(ifIndex)
	if port == nil {
		if !newlink {
			t.log.Info("got DELLINK for unknown port on bridge", "if_index", ifIndex, "br_index", brIndex)
			return fmt.Errorf("bridge_notify: unknown port deletion")
		}
		// This interface may be a slave of another bridge; the kernel
		// may have dropped the deletion notification for the move.
		for _, other := range t.reg.IterBridges() {
			if other == br {
				continue
			}
			if stale := other.FindPort(ifIndex); stale != nil {
				t.log.Info("device moved to another bridge, missed deletion notify",
					"if_index", ifIndex, "new_bridge", brIndex, "old_bridge", other.IfIndex)
				t.reg.DeletePort(stale)
				break
			}
		}
		var err error
		port, err = t.reg.CreatePort(br, ifIndex)
		if err != nil {
			t.log.Error("couldn't create data for interface", "if_index", ifIndex, "master", brIndex, "err", err)
			return fmt.Errorf("bridge_notify: %w", err)
		}
	}

	if !newlink {
		t.reg.DeletePort(port)
		return nil
	}
	t.setPortUp(port, up)
	return nil
}

func (t *Translator) notifyNonSlaveEvent(brIndex, ifIndex int, newlink, up bool) error {
	if !newlink {
		// Interface unregistered: clean up a removed bridge, or a
		// removed bridge slave.
		if !t.reg.DeleteBridge(ifIndex) {
			for _, br := range t.reg.IterBridges() {
				if port := br.FindPort(ifIndex); port != nil {
					t.reg.DeletePort(port)
					break
				}
			}
		}
		return nil
	}

	if brIndex == ifIndex {
		br := t.reg.FindBridge(brIndex)
		if br == nil {
			var err error
			br, err = t.reg.CreateBridge(brIndex)
			if err != nil {
				t.log.Error("couldn't create data for bridge interface", "if_index", brIndex, "err", err)
				return fmt.Errorf("bridge_notify: %w", err)
			}
		}
		t.setBridgeUp(br, up)
	}
	// Any other combination (br_index < 0, br_index != if_index) is
	// silently ignored, per spec.md §4.2.
	return nil
}

// setBridgeUp re-reads STP state and MAC, then notifies the engine of
// enable and address changes, per spec.md §4.3. The MAC-change
// notification runs before the enable-change notification so the two
// are never observed out of order.
func (t *Translator) setBridgeUp(br *model.Bridge, up bool) {
	stpState, err := t.platform.StpState(br.Name)
	stpUp := err == nil && stpState == 2

	changed := false
	if up != br.AdminUp {
		br.AdminUp = up
		changed = true
	}
	if stpUp != br.StpUp {
		br.StpUp = stpUp
		changed = true
	}

	if mac, err := t.platform.HWAddr(br.Name); err == nil && !macEqual(mac, br.MAC) {
		br.MAC = mac
		t.engine.SetBridgeAddress(br, mac)
	}

	if changed {
		t.engine.SetBridgeEnable(br, br.AdminUp && br.StpUp)
	}
}

// setPortUp re-reads the port's MAC, speed and duplex, and notifies the
// engine of any change, per spec.md §4.3.
//
// Open question (spec.md §9, preserved unresolved): a MAC-only change
// (no up/down or speed/duplex delta) never reaches
// Engine.SetPortEnable. This mirrors the original mstpd source exactly
// (original_source/bridge_track.c's set_if_up); whether that is a
// latent bug is a question for the protocol engine's owners, not this
// adapter.
func (t *Translator) setPortUp(port *model.Port, up bool) {
	if mac, err := t.platform.HWAddr(port.Name); err == nil && !macEqual(mac, port.MAC) {
		port.MAC = mac
		if br := port.Bridge; br != nil {
			if brMAC, err := t.platform.HWAddr(br.Name); err == nil && !macEqual(brMAC, br.MAC) {
				br.MAC = brMAC
				t.engine.SetBridgeAddress(br, brMAC)
			}
		}
	}

	changed := false
	speed, duplex := port.Speed, port.Duplex

	if !up {
		if port.Up {
			port.Up = false
			changed = true
		}
	} else {
		s, d, err := t.platform.SpeedDuplex(port.Name)
		if err != nil || s < 0 {
			s = 10
		}
		if err != nil || d < 0 {
			d = 0
		}
		speed, duplex = s, d

		if speed != port.Speed {
			port.Speed = speed
			changed = true
		}
		if duplex != port.Duplex {
			port.Duplex = duplex
			changed = true
		}
		if !port.Up {
			port.Up = true
			changed = true
		}
	}

	if changed {
		t.engine.SetPortEnable(port, port.Up, port.Speed, port.Duplex)
	}
}

func macEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// OneSecond delivers the once-per-second tick to every tracked bridge,
// in registry insertion order, per spec.md §4.6.
func (t *Translator) OneSecond() {
	for _, br := range t.reg.IterBridges() {
		t.engine.OneSecond(br)
	}
}

// SetState implements the engine.Sink half of spec.md §4.7: it maps the
// engine's requested state, no-ops if unchanged, and otherwise commits
// it. Programming the OS bridge driver's per-port STP state is a stub,
// per spec.md §1/§9 — a production implementation must push this to the
// driver.
func (t *Translator) SetState(ptp *model.PerTreePort, newState model.PortState) {
	switch newState {
	case model.StateListening, model.StateLearning, model.StateForwarding, model.StateBlocking, model.StateDisabled:
		// valid
	default:
		t.log.Error("attempt to set invalid state", "port", ptp.Port.Name, "state", int(newState))
		newState = model.StateDisabled
	}

	if ptp.State == newState {
		return
	}

	// TODO(driver): push ptp's new state to the OS bridge driver.
	ptp.State = newState
	t.log.Info("entering state", "port", ptp.Port.Name, "state", newState.String())
}

// FlushAllFIDs implements the engine.Sink half of spec.md §4.7's sibling
// stub: flushing FDB entries for ptp's port is not implemented (spec.md
// §1 non-goal), so the completion is signaled immediately. A production
// implementation must talk to the bridge driver and keep this
// asynchronous, per spec.md §9, so the engine's state machine observes
// the correct ordering.
func (t *Translator) FlushAllFIDs(ptp *model.PerTreePort) {
	t.engine.AllFIDsFlushed(ptp)
}

// SetAgeingTime implements the engine.Sink half of spec.md §4.7's other
// stub: programming the FDB ageing time is not implemented (spec.md §1
// non-goal). A negative seconds value requests the driver's default.
func (t *Translator) SetAgeingTime(br *model.Bridge, seconds int) {
	// TODO(driver): program br's FDB ageing time (seconds < 0 == driver default).
}
