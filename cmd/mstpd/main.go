// Command mstpd is the bridge-tracking and MSTP I/O adapter's
// composition root: it wires the Bridge Registry, Event Translator,
// BPDU codec, and Control Adapter to a real Linux platform and a
// placeholder protocol engine, and drives them all from one
// single-threaded event loop, per spec.md §5.
package main

import (
	"errors"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"github.com/for454/mstpd/internal/bpdu"
	"github.com/for454/mstpd/internal/bridgetrack"
	"github.com/for454/mstpd/internal/control"
	"github.com/for454/mstpd/internal/engine"
	"github.com/for454/mstpd/internal/logx"
	"github.com/for454/mstpd/internal/mstpdconfig"
	"github.com/for454/mstpd/internal/platform"
	"github.com/for454/mstpd/internal/registry"
)

// sink satisfies engine.Sink by composing the Event Translator's state/
// ageing/flush half with the BPDU Sender's transmit half; neither alone
// implements the full interface.
type sink struct {
	*bridgetrack.Translator
	*bpdu.Sender
}

var _ engine.Sink = (*sink)(nil)

type linkEvent struct {
	brIndex, ifIndex int
	newlink, up      bool
}

type bpduEvent struct {
	ifIndex int
	frame   []byte
}

func main() {
	configPath := flag.String("config", "", "path to mstpd.json (optional)")
	flag.Parse()

	cfg := mstpdconfig.Default()
	if *configPath != "" {
		loaded, err := mstpdconfig.Load(*configPath)
		if err != nil {
			os.Stderr.WriteString("mstpd: " + err.Error() + "\n")
			os.Exit(1)
		}
		cfg = loaded
	}

	log := logx.New(cfg.LogLevel)
	plat := platform.NewLinux()
	defer plat.Close()

	eng := engine.NewNoop(log)
	reg := registry.New(eng, plat, log)
	translator := bridgetrack.New(reg, eng, plat, log)
	sender := bpdu.NewSender(plat, log)
	dispatcher := bpdu.NewDispatcher(reg, eng, log)
	_ = control.New(reg, eng, log) // the control adapter is driven by an external controller, out of scope here
	// A real protocol engine binary is handed &sink{translator, sender}
	// as its engine.Sink; NoopEngine never calls back into one.
	_ = sink{Translator: translator, Sender: sender}

	linkEvents := make(chan linkEvent, 64)
	bpduEvents := make(chan bpduEvent, 64)

	nlUpdates := make(chan netlink.LinkUpdate, 64)
	nlDone := make(chan struct{})
	if err := netlink.LinkSubscribe(nlUpdates, nlDone); err != nil {
		log.Error("netlink subscribe failed", "err", err)
		os.Exit(1)
	}
	defer close(nlDone)

	go func() {
		for update := range nlUpdates {
			attrs := update.Link.Attrs()
			if !cfg.Tracked(attrs.Name) {
				continue
			}
			newlink := update.Header.Type == unix.RTM_NEWLINK
			up := attrs.Flags&net.FlagUp != 0 && attrs.OperState != netlink.OperDown

			brIndex := -1
			if _, ok := update.Link.(*netlink.Bridge); ok {
				brIndex = attrs.Index
			} else if attrs.MasterIndex > 0 {
				brIndex = attrs.MasterIndex
			}

			linkEvents <- linkEvent{brIndex: brIndex, ifIndex: attrs.Index, newlink: newlink, up: up}
		}
	}()

	receivers := make(map[int]*platform.Receiver)
	stopReceiving := func(ifIndex int) {
		if r, ok := receivers[ifIndex]; ok {
			r.Close()
			delete(receivers, ifIndex)
		}
	}
	startReceiving := func(ifIndex int) {
		if _, ok := receivers[ifIndex]; ok {
			return
		}
		r, err := plat.OpenReceiver(ifIndex)
		if err != nil {
			log.Error("open bpdu receiver failed", "if_index", ifIndex, "err", err)
			return
		}
		receivers[ifIndex] = r
		go func() {
			for {
				frame, err := r.Read()
				if err != nil {
					return
				}
				bpduEvents <- bpduEvent{ifIndex: ifIndex, frame: frame}
			}
		}()
	}
	reconcileReceivers := func() {
		wanted := make(map[int]struct{})
		for _, br := range reg.IterBridges() {
			for _, port := range br.Ports {
				wanted[port.IfIndex] = struct{}{}
				startReceiving(port.IfIndex)
			}
		}
		for ifIndex := range receivers {
			if _, ok := wanted[ifIndex]; !ok {
				stopReceiving(ifIndex)
			}
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	log.Info("mstpd adapter started")
	for {
		select {
		case ev := <-linkEvents:
			if err := translator.Notify(ev.brIndex, ev.ifIndex, ev.newlink, ev.up); err != nil {
				if !errors.Is(err, registry.ErrBridgeNotFound) {
					log.Debug("bridge_notify returned error", "err", err)
				}
			}
			reconcileReceivers()

		case ev := <-bpduEvents:
			dispatcher.Receive(ev.ifIndex, ev.frame)

		case <-ticker.C:
			if cfg.TickEnabled {
				translator.OneSecond()
			}

		case <-sig:
			log.Info("mstpd adapter shutting down")
			for ifIndex := range receivers {
				stopReceiving(ifIndex)
			}
			return
		}
	}
}
