package engine

// The structures below are opaque, engine-defined status/config records
// from this module's point of view (spec.md §6: "typed config/status
// records"). Fields are kept to what the control adapter itself needs to
// touch (notably RootPortID, used to resolve a root-port name in
// spec.md §4.8's additional contract); a production engine likely carries
// many more 802.1Q-2005 clause-13 fields behind these same names.

// CISTBridgeStatus is the CIST bridge status record returned by
// GET_cist_bridge_status.
type CISTBridgeStatus struct {
	BridgeID        uint64
	RootID          uint64
	RegRootID       uint64
	RootPathCost    uint32
	IntRootPathCost uint32
	RootPortID      uint16
	BridgePriority  uint16
	MaxAge          uint16
	ForwardDelay    uint16
	HelloTime       uint16
	HoldTime        uint16
	TimeSinceTC     uint32
	TopologyChanges uint32
}

// CISTBridgeConfig is the CIST bridge configuration record accepted by
// SET_cist_bridge_config.
type CISTBridgeConfig struct {
	BridgePriority  uint16
	MaxAge          uint16
	ForwardDelay    uint16
	HelloTime       uint16
	MaxHops         uint16
	TxHoldCount     uint16
	ForceProtocolVersion int
}

// MSTIBridgeStatus is the MSTI bridge status record returned by
// GET_msti_bridge_status.
type MSTIBridgeStatus struct {
	BridgeID       uint64
	RegRootID      uint64
	RootPathCost   uint32
	RootPortID     uint16
	BridgePriority uint16
}

// CISTPortStatus is the CIST port status record returned by
// GET_cist_port_status.
type CISTPortStatus struct {
	PortID           uint16
	State            int
	Role             int
	PathCost         uint32
	DesignatedRoot   uint64
	DesignatedCost   uint32
	DesignatedBridge uint64
	DesignatedPort   uint16
	AdminPointToPoint bool
	OperPointToPoint  bool
	AdminEdgePort    bool
	OperEdgePort     bool
}

// CISTPortConfig is the CIST port configuration record accepted by
// SET_cist_port_config.
type CISTPortConfig struct {
	PathCost          uint32
	Priority          uint8
	AdminEdgePort     bool
	AdminPointToPoint int // -1 auto, 0 no, 1 yes
	AdminNonStp       bool
}

// MSTIPortStatus is the MSTI port status record returned by
// GET_msti_port_status.
type MSTIPortStatus struct {
	PortID           uint16
	State            int
	Role             int
	PathCost         uint32
	DesignatedBridge uint64
	DesignatedPort   uint16
}

// MSTIPortConfig is the MSTI port configuration record accepted by
// SET_msti_port_config.
type MSTIPortConfig struct {
	PathCost uint32
	Priority uint8
}
