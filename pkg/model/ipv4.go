package model

import (
	"fmt"
	"net/netip"

	"github.com/newtron-network/topobuild/pkg/util"
)

// IPv4Address is an interface address with its prefix length
type IPv4Address struct {
	Address   netip.Prefix `json:"address" yaml:"address"`
	Secondary *bool        `json:"secondary,omitempty" yaml:"secondary,omitempty"`
}

// IsPrimary returns true when secondary is unset or false
func (a IPv4Address) IsPrimary() bool {
	return a.Secondary == nil || !*a.Secondary
}

// Validate checks that the address can be assigned to an interface
func (a IPv4Address) Validate() error {
	if !a.Address.IsValid() || !a.Address.Addr().Is4() {
		return fmt.Errorf("%w: %q is not an IPv4 interface address", util.ErrInvalidAddressing, a.Address)
	}
	if !util.IsAssignableIPv4(a.Address) {
		return fmt.Errorf("%w: %s is the network or broadcast address of its subnet", util.ErrInvalidAddressing, a.Address)
	}
	return nil
}

// ParseIPv4Address parses "a.b.c.d/len" into a primary address
func ParseIPv4Address(s string) (IPv4Address, error) {
	p, err := util.ParseIPv4Interface(s)
	if err != nil {
		return IPv4Address{}, fmt.Errorf("%w: %v", util.ErrInvalidAddressing, err)
	}
	addr := IPv4Address{Address: p}
	return addr, addr.Validate()
}

// DhcpClientConfig enables a DHCP client on the interface
type DhcpClientConfig struct {
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// IPv4Container is the IPv4 configuration of a routed port. A container
// obtained from NewIPv4Container or mutated through Add always satisfies:
// no two addresses overlap, and at most one address is primary.
type IPv4Container struct {
	Addresses  []IPv4Address     `json:"addresses,omitempty" yaml:"addresses,omitempty"`
	Unnumbered *string           `json:"unnumbered,omitempty" yaml:"unnumbered,omitempty"`
	DHCPClient *DhcpClientConfig `json:"dhcp_client,omitempty" yaml:"dhcp_client,omitempty"`
}

// NewIPv4Container builds a container from addresses, failing if the result
// would violate the container invariants.
func NewIPv4Container(addrs ...IPv4Address) (*IPv4Container, error) {
	c := &IPv4Container{}
	if len(addrs) > 0 {
		c.Addresses = append([]IPv4Address(nil), addrs...)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Add appends an address and revalidates. On failure the container is left
// unchanged.
func (c *IPv4Container) Add(addr IPv4Address) error {
	if err := addr.Validate(); err != nil {
		return err
	}
	candidate := &IPv4Container{
		Addresses: append(append(make([]IPv4Address, 0, len(c.Addresses)+1), c.Addresses...), addr),
	}
	if err := candidate.Validate(); err != nil {
		return err
	}
	c.Addresses = candidate.Addresses
	return nil
}

// Validate checks every pair of addresses for overlap in either direction,
// then counts primary addresses.
func (c *IPv4Container) Validate() error {
	for i := 0; i < len(c.Addresses); i++ {
		for j := i + 1; j < len(c.Addresses); j++ {
			if util.PrefixesOverlap(c.Addresses[i].Address, c.Addresses[j].Address) {
				return &util.AddressConflictError{
					Address: c.Addresses[i].Address.String(),
					Other:   c.Addresses[j].Address.String(),
					Reason:  util.ErrAddressConflict,
				}
			}
		}
	}

	var primary *IPv4Address
	for i := range c.Addresses {
		if !c.Addresses[i].IsPrimary() {
			continue
		}
		if primary != nil {
			return &util.AddressConflictError{
				Address: c.Addresses[i].Address.String(),
				Other:   primary.Address.String(),
				Reason:  util.ErrMultiplePrimaryAddress,
			}
		}
		primary = &c.Addresses[i]
	}
	return nil
}

// Primary returns the primary address, if any
func (c *IPv4Container) Primary() (IPv4Address, bool) {
	for _, a := range c.Addresses {
		if a.IsPrimary() {
			return a, true
		}
	}
	return IPv4Address{}, false
}

// Clone returns an independent copy of the container
func (c *IPv4Container) Clone() *IPv4Container {
	if c == nil {
		return nil
	}
	out := &IPv4Container{}
	for _, a := range c.Addresses {
		if a.Secondary != nil {
			a.Secondary = util.Ptr(*a.Secondary)
		}
		out.Addresses = append(out.Addresses, a)
	}
	if c.Unnumbered != nil {
		out.Unnumbered = util.Ptr(*c.Unnumbered)
	}
	if c.DHCPClient != nil {
		d := *c.DHCPClient
		if d.Enabled != nil {
			d.Enabled = util.Ptr(*d.Enabled)
		}
		out.DHCPClient = &d
	}
	return out
}

// IPv6Address is an IPv6 interface address
type IPv6Address struct {
	Address netip.Prefix `json:"address" yaml:"address"`
}

// IPv6Container is the IPv6 configuration of a routed port
type IPv6Container struct {
	Addresses []IPv6Address `json:"addresses,omitempty" yaml:"addresses,omitempty"`
}
