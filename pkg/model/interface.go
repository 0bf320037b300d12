package model

import "strings"

// Interface represents a network interface on a host
type Interface struct {
	Name               string              `json:"name" yaml:"name"` // e.g., "GigabitEthernet0/0", "Port-channel1"
	Description        *string             `json:"description,omitempty" yaml:"description,omitempty"`
	Neighbor           *InterfaceNeighbor  `json:"neighbor,omitempty" yaml:"neighbor,omitempty"`
	DiscoveryProtocols *DiscoveryProtocols `json:"discovery_protocols,omitempty" yaml:"discovery_protocols,omitempty"`
	LagMember          *LagMemberConfig    `json:"lag_member,omitempty" yaml:"lag_member,omitempty"`
	L3Port             *RouteportModel     `json:"l3_port,omitempty" yaml:"l3_port,omitempty"`
}

// InterfaceNeighbor is a relation to the interface on the far end of a link
type InterfaceNeighbor struct {
	Host      string `json:"host" yaml:"host"`
	Interface string `json:"interface" yaml:"interface"`
}

// DiscoveryProtocols holds neighbor discovery settings for an interface
type DiscoveryProtocols struct {
	CDP  *CdpConfig  `json:"cdp,omitempty" yaml:"cdp,omitempty"`
	LLDP *LldpConfig `json:"lldp,omitempty" yaml:"lldp,omitempty"`
}

// CdpConfig enables or disables CDP on an interface
type CdpConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// LldpConfig controls LLDP transmit/receive on an interface
type LldpConfig struct {
	Transmit *bool `json:"transmit,omitempty" yaml:"transmit,omitempty"`
	Receive  *bool `json:"receive,omitempty" yaml:"receive,omitempty"`
}

// NewInterface creates an interface with the given name
func NewInterface(name string) *Interface {
	return &Interface{Name: name}
}

// EnsureL3Port creates the routed-port sub-model if absent and returns it
func (i *Interface) EnsureL3Port() *RouteportModel {
	if i.L3Port == nil {
		i.L3Port = &RouteportModel{}
	}
	return i.L3Port
}

// SetDescriptionIfAbsent sets the description only when none is set yet
func (i *Interface) SetDescriptionIfAbsent(desc string) bool {
	if i.Description != nil || desc == "" {
		return false
	}
	i.Description = &desc
	return true
}

// IsLAG returns true if this is a Port-channel interface
func (i *Interface) IsLAG() bool {
	return strings.HasPrefix(strings.ToLower(i.Name), "port-channel")
}

// IsLAGMember returns true if this interface is a member of a LAG
func (i *Interface) IsLAGMember() bool {
	return i.LagMember != nil
}

// IsRouted returns true if the interface carries a routed-port sub-model
func (i *Interface) IsRouted() bool {
	return i.L3Port != nil
}

// Connect writes a symmetric neighbor relation between two interfaces:
// a points at (zHost, z) and z points at (aHost, a).
func Connect(aHost string, a *Interface, zHost string, z *Interface) {
	a.Neighbor = &InterfaceNeighbor{Host: zHost, Interface: z.Name}
	z.Neighbor = &InterfaceNeighbor{Host: aHost, Interface: a.Name}
}
