//go:build linux

package platform

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/gopacket/afpacket"
	"github.com/vishvananda/netlink"
)

// LinuxPlatform is the real Platform implementation for Linux, grounded
// on the teacher's pkg/network/detector_linux.go (sysfs-then-fallback
// reads, netlink link attribute access) and
// pkg/network/bonding/manager_linux.go (netlink usage idiom).
type LinuxPlatform struct {
	mu      sync.Mutex
	sockets map[int]*afpacket.TPacket // by if_index
}

// NewLinux constructs a LinuxPlatform.
func NewLinux() *LinuxPlatform {
	return &LinuxPlatform{sockets: make(map[int]*afpacket.TPacket)}
}

// Close releases every raw socket opened by Send.
func (p *LinuxPlatform) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for ifIndex, tp := range p.sockets {
		tp.Close()
		delete(p.sockets, ifIndex)
	}
	return firstErr
}

func (p *LinuxPlatform) IfIndexToName(ifIndex int) (string, error) {
	link, err := netlink.LinkByIndex(ifIndex)
	if err != nil {
		return "", fmt.Errorf("if_indextoname(%d): %w", ifIndex, err)
	}
	return link.Attrs().Name, nil
}

func (p *LinuxPlatform) HWAddr(name string) (net.HardwareAddr, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return nil, fmt.Errorf("get_hwaddr(%s): %w", name, err)
	}
	return link.Attrs().HardwareAddr, nil
}

func (p *LinuxPlatform) LinkUp(name string) (bool, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return false, fmt.Errorf("ethtool_get_link(%s): %w", name, err)
	}
	attrs := link.Attrs()
	return attrs.Flags&net.FlagUp != 0 && attrs.OperState != netlink.OperDown, nil
}

// SpeedDuplex reads speed/duplex from sysfs first, matching the
// teacher's getSpeedAndDuplex: the fast path for an interface the
// kernel already reports on, with no fallback to exec'ing ethtool since
// that is explicitly an external collaborator this module only
// consumes (spec.md §1) — the sysfs attributes are the kernel's own
// mirror of the same ethtool state.
func (p *LinuxPlatform) SpeedDuplex(name string) (int, int, error) {
	speedData, err := os.ReadFile(fmt.Sprintf("/sys/class/net/%s/speed", name))
	if err != nil {
		return -1, -1, fmt.Errorf("ethtool_get_speed_duplex(%s): %w", name, err)
	}
	speedMbps, err := strconv.Atoi(strings.TrimSpace(string(speedData)))
	if err != nil || speedMbps < 0 {
		return -1, -1, fmt.Errorf("ethtool_get_speed_duplex(%s): invalid speed", name)
	}

	duplex := 0
	if duplexData, err := os.ReadFile(fmt.Sprintf("/sys/class/net/%s/duplex", name)); err == nil {
		switch strings.TrimSpace(string(duplexData)) {
		case "full":
			duplex = 1
		case "half":
			duplex = 0
		default:
			return speedMbps, -1, fmt.Errorf("ethtool_get_speed_duplex(%s): unknown duplex", name)
		}
	} else {
		return speedMbps, -1, fmt.Errorf("ethtool_get_speed_duplex(%s): %w", name, err)
	}
	return speedMbps, duplex, nil
}

func (p *LinuxPlatform) StpState(name string) (int, error) {
	data, err := os.ReadFile(fmt.Sprintf("/sys/class/net/%s/bridge/stp_state", name))
	if err != nil {
		return 0, fmt.Errorf("stp_enabled(%s): %w", name, err)
	}
	state, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("stp_enabled(%s): %w", name, err)
	}
	return state, nil
}

func (p *LinuxPlatform) BridgePortNo(name string) (int, error) {
	data, err := os.ReadFile(fmt.Sprintf("/sys/class/net/%s/brport/port_no", name))
	if err != nil {
		return 0, fmt.Errorf("get_bridge_portno(%s): %w", name, err)
	}
	// port_no is reported in hex, e.g. "0x2".
	trimmed := strings.TrimSpace(string(data))
	n, err := strconv.ParseInt(strings.TrimPrefix(trimmed, "0x"), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("get_bridge_portno(%s): %w", name, err)
	}
	return int(n), nil
}

// Send emits frame as a single TPACKET raw-socket write bound to
// ifIndex, grounded on niac-go's pkg/capture gopacket send idiom
// (minus the pcap/libpcap dependency, and bound to one interface index
// rather than a live capture filter, per spec.md §6).
func (p *LinuxPlatform) Send(ifIndex int, frame []byte) error {
	tp, err := p.socketFor(ifIndex)
	if err != nil {
		return err
	}
	return tp.WritePacketData(frame)
}

func (p *LinuxPlatform) socketFor(ifIndex int) (*afpacket.TPacket, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if tp, ok := p.sockets[ifIndex]; ok {
		return tp, nil
	}
	name, err := p.IfIndexToName(ifIndex)
	if err != nil {
		return nil, err
	}
	tp, err := afpacket.NewTPacket(afpacket.OptInterface(name))
	if err != nil {
		return nil, fmt.Errorf("packet_send: open %s: %w", name, err)
	}
	p.sockets[ifIndex] = tp
	return tp, nil
}

// Receiver reads raw link-layer frames from one interface. It is
// returned by OpenReceiver, a LinuxPlatform-only extension the
// Platform interface does not declare: receiving is driven by
// cmd/mstpd's event loop directly against the concrete platform, the
// same way the teacher's pkg/capture readers are handed to its
// composition root rather than threaded through an interface.
type Receiver struct {
	tp *afpacket.TPacket
}

// OpenReceiver binds a raw socket to ifIndex for BPDU reception.
func (p *LinuxPlatform) OpenReceiver(ifIndex int) (*Receiver, error) {
	name, err := p.IfIndexToName(ifIndex)
	if err != nil {
		return nil, err
	}
	tp, err := afpacket.NewTPacket(afpacket.OptInterface(name))
	if err != nil {
		return nil, fmt.Errorf("open receiver %s: %w", name, err)
	}
	return &Receiver{tp: tp}, nil
}

// Read blocks until one frame arrives and returns it.
func (r *Receiver) Read() ([]byte, error) {
	data, _, err := r.tp.ZeroCopyReadPacketData()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Close releases the receiver's socket.
func (r *Receiver) Close() {
	r.tp.Close()
}

var _ Platform = (*LinuxPlatform)(nil)
