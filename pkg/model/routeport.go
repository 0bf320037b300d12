package model

import (
	"fmt"

	"github.com/newtron-network/topobuild/pkg/util"
)

// RouteportModel is the L3 (routed port) configuration of an interface
type RouteportModel struct {
	VRF   *string        `json:"vrf,omitempty" yaml:"vrf,omitempty"`
	IPv4  *IPv4Container `json:"ipv4,omitempty" yaml:"ipv4,omitempty"`
	IPv6  *IPv6Container `json:"ipv6,omitempty" yaml:"ipv6,omitempty"`
	IPMTU *int           `json:"ip_mtu,omitempty" yaml:"ip_mtu,omitempty"`
	OSPF  *OspfConfig    `json:"ospf,omitempty" yaml:"ospf,omitempty"`
	ISIS  *IsisConfig    `json:"isis,omitempty" yaml:"isis,omitempty"`
	BFD   *BfdConfig     `json:"bfd,omitempty" yaml:"bfd,omitempty"`
}

// BfdConfig references a named BFD template
type BfdConfig struct {
	Template string `json:"template" yaml:"template" validate:"required"`
}

// Clone returns a copy of the BFD config
func (b *BfdConfig) Clone() *BfdConfig {
	if b == nil {
		return nil
	}
	out := *b
	return &out
}

// IsisMetric is a per-level IS-IS metric
type IsisMetric struct {
	Level  string `json:"level" yaml:"level"` // level-1, level-2
	Metric int    `json:"metric" yaml:"metric"`
}

// IsisAuthentication configures IS-IS interface authentication
type IsisAuthentication struct {
	Mode     *string `json:"mode,omitempty" yaml:"mode,omitempty"` // md5, text
	Keychain *string `json:"keychain,omitempty" yaml:"keychain,omitempty"`
}

// IsisConfig is the IS-IS configuration of a routed port
type IsisConfig struct {
	NetworkType    *string             `json:"network_type,omitempty" yaml:"network_type,omitempty"`
	CircuitType    *string             `json:"circuit_type,omitempty" yaml:"circuit_type,omitempty"`
	ProcessID      *string             `json:"process_id,omitempty" yaml:"process_id,omitempty"`
	Authentication *IsisAuthentication `json:"authentication,omitempty" yaml:"authentication,omitempty"`
	Metric         []IsisMetric        `json:"metric,omitempty" yaml:"metric,omitempty"`
}

// SetVRF places the port in a VRF. Global or empty values leave the port in
// the default routing table and write nothing.
func (r *RouteportModel) SetVRF(vrf *string) bool {
	if IsGlobalVRF(vrf) {
		return false
	}
	r.VRF = util.Ptr(*vrf)
	return true
}

// EnsureIPv4 creates an empty IPv4 container if absent
func (r *RouteportModel) EnsureIPv4() *IPv4Container {
	if r.IPv4 == nil {
		r.IPv4 = &IPv4Container{}
	}
	return r.IPv4
}

// AddIPv4Address is the only supported way to add an IPv4 address to a
// port. It creates the container if needed and revalidates it; on failure
// the port is unchanged.
func (r *RouteportModel) AddIPv4Address(addr IPv4Address) error {
	created := r.IPv4 == nil
	c := r.EnsureIPv4()
	if err := c.Add(addr); err != nil {
		if created {
			r.IPv4 = nil
		}
		return err
	}
	return nil
}

// SetOSPF validates and attaches an OSPF config. The caller hands over
// ownership; templates must be cloned before being passed in.
func (r *RouteportModel) SetOSPF(cfg *OspfConfig) error {
	if cfg != nil {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	r.OSPF = cfg
	return nil
}

// SetIPMTU sets the IP MTU
func (r *RouteportModel) SetIPMTU(mtu int) error {
	if mtu < 68 || mtu > 9216 {
		return fmt.Errorf("%w: IP MTU must be between 68 and 9216, got %d", util.ErrInvalidConfig, mtu)
	}
	r.IPMTU = &mtu
	return nil
}
