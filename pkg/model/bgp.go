package model

// RoutingConfig holds the routing processes of a host
type RoutingConfig struct {
	BGP *BgpProcess `json:"bgp,omitempty" yaml:"bgp,omitempty"`
}

// BgpProcess is the BGP router process of a host
type BgpProcess struct {
	ASN        int64           `json:"asn" yaml:"asn"`
	RouterID   *string         `json:"router_id,omitempty" yaml:"router_id,omitempty"`
	PeerGroups []*BgpPeerGroup `json:"peer_groups,omitempty" yaml:"peer_groups,omitempty"`
	Neighbors  []*BgpNeighbor  `json:"neighbors,omitempty" yaml:"neighbors,omitempty"`
}

// BgpSessionParams are the session parameters shared by peer groups and
// neighbors.
type BgpSessionParams struct {
	ASN                  *int64  `json:"asn,omitempty" yaml:"asn,omitempty" validate:"omitempty,min=1,max=4294967295"`
	Description          *string `json:"description,omitempty" yaml:"description,omitempty"`
	SourceInterface      *string `json:"source_interface,omitempty" yaml:"source_interface,omitempty"`
	EbgpMultihop         *int    `json:"ebgp_multihop,omitempty" yaml:"ebgp_multihop,omitempty" validate:"omitempty,min=1,max=255"`
	Password             *string `json:"password,omitempty" yaml:"password,omitempty"`
	NextHopSelf          *bool   `json:"next_hop_self,omitempty" yaml:"next_hop_self,omitempty"`
	RouteReflectorClient *bool   `json:"route_reflector_client,omitempty" yaml:"route_reflector_client,omitempty"`
	SendCommunity        *string `json:"send_community,omitempty" yaml:"send_community,omitempty" validate:"omitempty,oneof=standard extended both large all"`
	Keepalive            *int    `json:"keepalive,omitempty" yaml:"keepalive,omitempty" validate:"omitempty,min=0,max=65535"`
	Hold                 *int    `json:"hold,omitempty" yaml:"hold,omitempty" validate:"omitempty,min=0,max=65535"`
}

// BgpPeerGroup is a named template of BGP session parameters
type BgpPeerGroup struct {
	Name             string `json:"name" yaml:"name" validate:"required"`
	BgpSessionParams `yaml:",inline"`
}

// BgpNeighbor is a BGP session, optionally bound to a peer group
type BgpNeighbor struct {
	Address          string  `json:"address" yaml:"address" validate:"required,ip"`
	PeerGroup        *string `json:"peer_group,omitempty" yaml:"peer_group,omitempty"`
	Shutdown         *bool   `json:"shutdown,omitempty" yaml:"shutdown,omitempty"`
	BgpSessionParams `yaml:",inline"`
}

// Clone returns a copy of the peer group that shares no pointers with it
func (p *BgpPeerGroup) Clone() *BgpPeerGroup {
	out := &BgpPeerGroup{Name: p.Name}
	out.BgpSessionParams = p.BgpSessionParams.clone()
	return out
}

func (s BgpSessionParams) clone() BgpSessionParams {
	out := s
	if s.ASN != nil {
		v := *s.ASN
		out.ASN = &v
	}
	if s.Description != nil {
		v := *s.Description
		out.Description = &v
	}
	if s.SourceInterface != nil {
		v := *s.SourceInterface
		out.SourceInterface = &v
	}
	if s.EbgpMultihop != nil {
		v := *s.EbgpMultihop
		out.EbgpMultihop = &v
	}
	if s.Password != nil {
		v := *s.Password
		out.Password = &v
	}
	if s.NextHopSelf != nil {
		v := *s.NextHopSelf
		out.NextHopSelf = &v
	}
	if s.RouteReflectorClient != nil {
		v := *s.RouteReflectorClient
		out.RouteReflectorClient = &v
	}
	if s.SendCommunity != nil {
		v := *s.SendCommunity
		out.SendCommunity = &v
	}
	if s.Keepalive != nil {
		v := *s.Keepalive
		out.Keepalive = &v
	}
	if s.Hold != nil {
		v := *s.Hold
		out.Hold = &v
	}
	return out
}

// AttachPeerGroup appends a peer group to the process. Repeated attachment
// of the same name appends again; the list mirrors neighbor references.
func (b *BgpProcess) AttachPeerGroup(pg *BgpPeerGroup) {
	b.PeerGroups = append(b.PeerGroups, pg)
}

// AddNeighbor appends a neighbor to the process
func (b *BgpProcess) AddNeighbor(n *BgpNeighbor) {
	b.Neighbors = append(b.Neighbors, n)
}

// PeerGroup returns the first attached peer group with the given name
func (b *BgpProcess) PeerGroup(name string) *BgpPeerGroup {
	for _, pg := range b.PeerGroups {
		if pg.Name == name {
			return pg
		}
	}
	return nil
}

// Neighbor returns the first neighbor with the given address
func (b *BgpProcess) Neighbor(address string) *BgpNeighbor {
	for _, n := range b.Neighbors {
		if n.Address == address {
			return n
		}
	}
	return nil
}

// IsIBGP returns true if neighbor is iBGP (same AS)
func (n *BgpNeighbor) IsIBGP(localAS int64) bool {
	return n.ASN != nil && *n.ASN == localAS
}

// FindPeerGroup returns the first entry with the given name in an ordered
// list, or nil.
func FindPeerGroup(groups []*BgpPeerGroup, name string) *BgpPeerGroup {
	for _, pg := range groups {
		if pg.Name == name {
			return pg
		}
	}
	return nil
}
