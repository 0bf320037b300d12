// Package model defines the per-device configuration model built from
// topology tables.
package model

import "sort"

// Host represents a network device in the inventory
type Host struct {
	Name   string      `json:"name" yaml:"name"`
	Groups []string    `json:"groups,omitempty" yaml:"groups,omitempty"`
	Config *HostConfig `json:"config,omitempty" yaml:"config,omitempty"`
}

// HostConfig holds the per-device configuration
type HostConfig struct {
	Interfaces map[string]*Interface `json:"interfaces" yaml:"interfaces"`
	Routing    *RoutingConfig        `json:"routing,omitempty" yaml:"routing,omitempty"`
}

// Group represents an inventory group (e.g. "switches")
type Group struct {
	Name   string       `json:"name" yaml:"name"`
	Config *GroupConfig `json:"config,omitempty" yaml:"config,omitempty"`
}

// GroupConfig holds configuration shared by every member of a group
type GroupConfig struct {
	VlanDefinitions []VLANDefinition `json:"vlan_definitions,omitempty" yaml:"vlan_definitions,omitempty"`
}

// NewHost creates a host with an empty interface map
func NewHost(name string) *Host {
	return &Host{
		Name:   name,
		Config: &HostConfig{Interfaces: make(map[string]*Interface)},
	}
}

// EnsureConfig creates the host config if absent and returns it
func (h *Host) EnsureConfig() *HostConfig {
	if h.Config == nil {
		h.Config = &HostConfig{Interfaces: make(map[string]*Interface)}
	}
	if h.Config.Interfaces == nil {
		h.Config.Interfaces = make(map[string]*Interface)
	}
	return h.Config
}

// EnsureBGP creates Config, Routing and the BGP process in turn, as needed.
// The ASN is only applied when the process is created; an existing process
// keeps its ASN. It reports whether a new process was created.
func (h *Host) EnsureBGP(asn int64) (*BgpProcess, bool) {
	cfg := h.EnsureConfig()
	if cfg.Routing == nil {
		cfg.Routing = &RoutingConfig{}
	}
	if cfg.Routing.BGP != nil {
		return cfg.Routing.BGP, false
	}
	cfg.Routing.BGP = &BgpProcess{ASN: asn}
	return cfg.Routing.BGP, true
}

// BGP returns the host's BGP process, or nil if none is configured
func (h *Host) BGP() *BgpProcess {
	if h.Config == nil || h.Config.Routing == nil {
		return nil
	}
	return h.Config.Routing.BGP
}

// Interface returns an interface by name, or nil
func (h *Host) Interface(name string) *Interface {
	if h.Config == nil {
		return nil
	}
	return h.Config.Interfaces[name]
}

// InterfaceNames returns the host's interface names in sorted order
func (h *Host) InterfaceNames() []string {
	if h.Config == nil {
		return nil
	}
	names := make([]string, 0, len(h.Config.Interfaces))
	for name := range h.Config.Interfaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InGroup returns true if the host is a member of the group
func (h *Host) InGroup(group string) bool {
	for _, g := range h.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// EnsureConfig creates the group config if absent and returns it
func (g *Group) EnsureConfig() *GroupConfig {
	if g.Config == nil {
		g.Config = &GroupConfig{}
	}
	return g.Config
}
