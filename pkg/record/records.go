package record

import (
	"net/netip"

	"github.com/newtron-network/topobuild/pkg/model"
)

// PhysicalLink is a row of the physical_links table
type PhysicalLink struct {
	AHost        string         `json:"a_host" validate:"required"`
	AInterface   string         `json:"a_interface" validate:"required"`
	ADescription *string        `json:"a_description,omitempty"`
	ALagGroup    *int           `json:"a_lag_group,omitempty" validate:"omitempty,min=1"`
	ALagMode     *model.LagMode `json:"a_lag_mode,omitempty"`
	ZHost        string         `json:"z_host" validate:"required"`
	ZInterface   string         `json:"z_interface" validate:"required"`
	ZDescription *string        `json:"z_description,omitempty"`
	ZLagGroup    *int           `json:"z_lag_group,omitempty" validate:"omitempty,min=1"`
	ZLagMode     *model.LagMode `json:"z_lag_mode,omitempty"`
	CdpEnabled   *bool          `json:"cdp_enabled,omitempty"`
}

// OspfTemplate is a row of the templates_ospf table
type OspfTemplate struct {
	TemplateName string                 `json:"template_name" validate:"required"`
	ProcessID    *int                   `json:"process_id,omitempty" validate:"omitempty,min=1,max=65535"`
	Area         *int                   `json:"area,omitempty" validate:"omitempty,min=0"`
	NetworkType  *model.OspfNetworkType `json:"network_type,omitempty"`
	Cost         *int                   `json:"cost,omitempty" validate:"omitempty,min=1,max=65535"`
	Priority     *int                   `json:"priority,omitempty" validate:"omitempty,min=0,max=255"`
}

// Config builds the validated OSPF config described by the row
func (t *OspfTemplate) Config() (*model.OspfConfig, error) {
	cfg := &model.OspfConfig{
		ProcessID:   t.ProcessID,
		Area:        t.Area,
		NetworkType: t.NetworkType,
		Cost:        t.Cost,
		Priority:    t.Priority,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// L3Link is a row of the l3_links table
type L3Link struct {
	AHost        string        `json:"a_host" validate:"required"`
	AInterface   string        `json:"a_interface" validate:"required"`
	ADescription *string       `json:"a_description,omitempty"`
	AVrf         *string       `json:"a_vrf,omitempty"`
	AIPv4Address *netip.Prefix `json:"a_ipv4_address,omitempty"`
	ZHost        string        `json:"z_host" validate:"required"`
	ZInterface   string        `json:"z_interface" validate:"required"`
	ZDescription *string       `json:"z_description,omitempty"`
	ZVrf         *string       `json:"z_vrf,omitempty"`
	ZIPv4Address *netip.Prefix `json:"z_ipv4_address,omitempty"`
	IPv4Network  *netip.Prefix `json:"ipv4_network,omitempty"`
	OspfTemplate *string       `json:"ospf_template,omitempty"`
	BfdTemplate  *string       `json:"bfd_template,omitempty"`
}

// HasExplicitAddresses returns true when both ends carry an address
func (l *L3Link) HasExplicitAddresses() bool {
	return l.AIPv4Address != nil && l.ZIPv4Address != nil
}

// HasAddressing returns true when the row assigns IPv4 addresses
func (l *L3Link) HasAddressing() bool {
	return l.HasExplicitAddresses() || l.IPv4Network != nil
}

// L3Port is a row of the l3_ports table
type L3Port struct {
	Host        string        `json:"host" validate:"required"`
	Interface   string        `json:"interface" validate:"required"`
	Description *string       `json:"description,omitempty"`
	Vrf         *string       `json:"vrf,omitempty"`
	IPv4Address *netip.Prefix `json:"ipv4_address,omitempty"`
	IPMTU       *int          `json:"ip_mtu,omitempty"`
}

// BgpRouter is a row of the bgp_routers table
type BgpRouter struct {
	Host     string  `json:"host" validate:"required"`
	ASN      int64   `json:"asn" validate:"required,min=1,max=4294967295"`
	RouterID *string `json:"router_id,omitempty" validate:"omitempty,ipv4"`
}

// BgpNeighbor is a row of the bgp_neighbors table: the neighbor record plus
// the host it is configured on
type BgpNeighbor struct {
	Host string `json:"host" validate:"required"`
	model.BgpNeighbor
}
