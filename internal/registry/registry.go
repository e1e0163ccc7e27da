// Package registry implements the Bridge Registry (spec.md §4.1): the
// in-memory set of tracked bridges and their member ports, keyed by OS
// interface index. It is grounded on the C source's create_br/find_br/
// create_if/find_if/delete_if/delete_br_byindex, translated from
// intrusive lists to an owned slice of *model.Bridge plus the owned
// slices model.Bridge already carries for its ports and trees.
package registry

import (
	"github.com/for454/mstpd/internal/engine"
	"github.com/for454/mstpd/internal/logx"
	"github.com/for454/mstpd/internal/model"
	"github.com/for454/mstpd/internal/platform"
)

// Registry is the process-wide set of tracked bridges. It is not safe
// for concurrent use; spec.md §5 funnels every caller through a single
// event-loop goroutine.
type Registry struct {
	bridges []*model.Bridge

	engine   engine.Engine
	platform platform.Platform
	log      logx.Logger
}

// New constructs an empty Registry.
func New(eng engine.Engine, plat platform.Platform, log logx.Logger) *Registry {
	return &Registry{engine: eng, platform: plat, log: log}
}

// FindBridge returns the tracked bridge with the given interface index,
// or nil.
func (r *Registry) FindBridge(ifIndex int) *model.Bridge {
	for _, br := range r.bridges {
		if br.IfIndex == ifIndex {
			return br
		}
	}
	return nil
}

// FindPortAnywhere scans every tracked bridge for a port with the given
// interface index, returning the owning bridge and the port, or
// (nil, nil). Ports are unique across the whole registry (spec.md §3
// invariant), so at most one match exists.
func (r *Registry) FindPortAnywhere(ifIndex int) (*model.Bridge, *model.Port) {
	for _, br := range r.bridges {
		if p := br.FindPort(ifIndex); p != nil {
			return br, p
		}
	}
	return nil, nil
}

// IterBridges returns the tracked bridges in registry insertion order.
// Callers must not mutate the returned slice.
func (r *Registry) IterBridges() []*model.Bridge {
	return r.bridges
}

// CreateBridge resolves if_index's name and MAC, asks the protocol
// engine to initialize bridge state, and — only on success — appends a
// new Bridge (with its CIST already attached) to the registry.
func (r *Registry) CreateBridge(ifIndex int) (*model.Bridge, error) {
	name, err := r.platform.IfIndexToName(ifIndex)
	if err != nil {
		r.log.Error("resolve bridge name failed", "if_index", ifIndex, "err", err)
		return nil, &BridgeError{Op: "create_bridge", IfIndex: ifIndex, Err: err}
	}
	mac, err := r.platform.HWAddr(name)
	if err != nil {
		r.log.Error("resolve bridge mac failed", "name", name, "err", err)
		return nil, &BridgeError{Op: "create_bridge", IfIndex: ifIndex, Err: err}
	}

	br := &model.Bridge{IfIndex: ifIndex, Name: name, MAC: mac}

	r.log.Info("add bridge", "name", name, "if_index", ifIndex)
	if !r.engine.BridgeCreate(br, mac) {
		r.log.Error("engine rejected bridge create", "name", name)
		return nil, &BridgeError{Op: "create_bridge", IfIndex: ifIndex, Err: ErrEngineRejected}
	}

	// The CIST always exists once the bridge does (spec.md §3); unlike
	// an MSTI it has no dedicated MSTP_IN_create call, so the registry
	// creates it directly.
	br.AttachTree(&model.Tree{MSTID: model.NetMSTID(0)})

	r.bridges = append(r.bridges, br)
	return br, nil
}

// DeleteBridge removes the bridge with the given interface index, if
// any, cascading to all of its ports.
func (r *Registry) DeleteBridge(ifIndex int) bool {
	for i, br := range r.bridges {
		if br.IfIndex != ifIndex {
			continue
		}
		r.log.Info("delete bridge", "name", br.Name, "if_index", ifIndex)
		for _, port := range append([]*model.Port(nil), br.Ports...) {
			r.DeletePort(port)
		}
		r.engine.DeleteBridge(br)
		r.bridges = append(r.bridges[:i], r.bridges[i+1:]...)
		return true
	}
	return false
}

// FindPort returns the port with the given interface index on br, or
// nil.
func (r *Registry) FindPort(br *model.Bridge, ifIndex int) *model.Port {
	return br.FindPort(ifIndex)
}

// CreatePort resolves if_index's name, MAC, and bridge-relative port
// number, asks the protocol engine to initialize port state, and — only
// on success — attaches the new Port to br.
//
// Port numbers outside (0, MAX_PORT_NUMBER] are rejected with no
// registry mutation, per spec.md §4.1.
func (r *Registry) CreatePort(br *model.Bridge, ifIndex int) (*model.Port, error) {
	name, err := r.platform.IfIndexToName(ifIndex)
	if err != nil {
		r.log.Error("resolve port name failed", "if_index", ifIndex, "err", err)
		return nil, &PortError{Op: "create_port", IfIndex: ifIndex, Err: err}
	}
	mac, err := r.platform.HWAddr(name)
	if err != nil {
		r.log.Error("resolve port mac failed", "name", name, "err", err)
		return nil, &PortError{Op: "create_port", IfIndex: ifIndex, Err: err}
	}
	portNo, err := r.platform.BridgePortNo(name)
	if err != nil {
		r.log.Error("couldn't get port number", "name", name, "err", err)
		return nil, &PortError{Op: "create_port", IfIndex: ifIndex, Err: err}
	}
	if portNo <= 0 || portNo > model.MAX_PORT_NUMBER {
		r.log.Error("port number invalid", "name", name, "portno", portNo)
		return nil, &PortError{Op: "create_port", IfIndex: ifIndex, Err: ErrPortNumberInvalid}
	}

	p := &model.Port{IfIndex: ifIndex, Name: name, MAC: mac, PortNo: portNo}

	r.log.Info("add port", "name", name, "portno", portNo, "bridge", br.Name)
	p.Bridge = br // visible to Engine.PortCreateAndAddTail before it is registered
	if !r.engine.PortCreateAndAddTail(p, portNo) {
		r.log.Error("engine rejected port create", "name", name)
		return nil, &PortError{Op: "create_port", IfIndex: ifIndex, Err: ErrEngineRejected}
	}

	br.AttachPort(p)
	return p, nil
}

// DeletePort tells the protocol engine to release port's state and
// detaches it from its owning bridge.
func (r *Registry) DeletePort(port *model.Port) {
	br := port.Bridge
	r.log.Info("delete port", "name", port.Name, "bridge", br.Name)
	r.engine.DeletePort(port)
	br.DetachPort(port)
}
