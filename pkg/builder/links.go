package builder

import (
	"fmt"
	"net/netip"

	"github.com/newtron-network/topobuild/pkg/model"
	"github.com/newtron-network/topobuild/pkg/record"
	"github.com/newtron-network/topobuild/pkg/util"
)

// endpoint is one resolved side of a link row
type endpoint struct {
	host  string
	iface *model.Interface
}

func (l *Loader) resolveEndpoint(host, name, field string) (endpoint, error) {
	iface, err := l.inv.GetInterface(host, name)
	if err != nil {
		return endpoint{}, atField(field, err)
	}
	return endpoint{host: host, iface: iface}, nil
}

func (l *Loader) resolveLink(aHost, aIf, zHost, zIf string) (a, z endpoint, err error) {
	if a, err = l.resolveEndpoint(aHost, aIf, "a_interface"); err != nil {
		return
	}
	z, err = l.resolveEndpoint(zHost, zIf, "z_interface")
	return
}

// LoadPhysicalLinks wires neighbor relations, CDP and LAG membership from
// the physical_links table.
func (l *Loader) LoadPhysicalLinks() error {
	return loadTable(l, record.PhysicalLinks, l.applyPhysicalLink)
}

func (l *Loader) applyPhysicalLink(row int, rec record.PhysicalLink) error {
	a, z, err := l.resolveLink(rec.AHost, rec.AInterface, rec.ZHost, rec.ZInterface)
	if err != nil {
		return err
	}
	log := util.WithFields(map[string]interface{}{
		"table": record.PhysicalLinks.Table,
		"row":   row,
		"link":  fmt.Sprintf("%s:%s <-> %s:%s", a.host, a.iface.Name, z.host, z.iface.Name),
	})

	model.Connect(a.host, a.iface, z.host, z.iface)
	if rec.ADescription != nil {
		a.iface.SetDescriptionIfAbsent(*rec.ADescription)
	}
	if rec.ZDescription != nil {
		z.iface.SetDescriptionIfAbsent(*rec.ZDescription)
	}

	if rec.CdpEnabled != nil {
		for _, ep := range []endpoint{a, z} {
			if !util.SetIfAbsent(&ep.iface.DiscoveryProtocols, model.DiscoveryProtocols{
				CDP: &model.CdpConfig{Enabled: *rec.CdpEnabled},
			}) {
				log.Debugf("Discovery protocols already set on %s:%s, keeping", ep.host, ep.iface.Name)
			}
		}
	}

	aLag, err := l.joinLAG(a, rec.ALagGroup, rec.ALagMode, "a_lag_group")
	if err != nil {
		return err
	}
	zLag, err := l.joinLAG(z, rec.ZLagGroup, rec.ZLagMode, "z_lag_group")
	if err != nil {
		return err
	}
	if aLag != nil && zLag != nil {
		model.Connect(a.host, aLag, z.host, zLag)
		log.Debugf("Connected %s to %s", aLag.Name, zLag.Name)
	}
	log.Debug("Link applied")
	return nil
}

// joinLAG makes ep a member of its Port-channel sibling and returns the
// sibling. It returns nil when the row names no LAG group for this side.
func (l *Loader) joinLAG(ep endpoint, group *int, mode *model.LagMode, field string) (*model.Interface, error) {
	if group == nil {
		return nil, nil
	}
	lag, err := l.inv.GetInterface(ep.host, model.PortChannelName(*group))
	if err != nil {
		return nil, atField(field, err)
	}
	m := l.defaultLagMode
	if mode != nil {
		m = *mode
	}
	ep.iface.LagMember = &model.LagMemberConfig{Group: *group, Mode: m}
	return lag, nil
}

// LoadL3Links configures both ends of each routed point-to-point link
func (l *Loader) LoadL3Links() error {
	return loadTable(l, record.L3Links, l.applyL3Link)
}

func (l *Loader) applyL3Link(row int, rec record.L3Link) error {
	a, z, err := l.resolveLink(rec.AHost, rec.AInterface, rec.ZHost, rec.ZInterface)
	if err != nil {
		return err
	}
	log := util.WithFields(map[string]interface{}{
		"table": record.L3Links.Table,
		"row":   row,
		"link":  fmt.Sprintf("%s:%s <-> %s:%s", a.host, a.iface.Name, z.host, z.iface.Name),
	})

	model.Connect(a.host, a.iface, z.host, z.iface)
	if rec.ADescription != nil {
		a.iface.SetDescriptionIfAbsent(*rec.ADescription)
	}
	if rec.ZDescription != nil {
		z.iface.SetDescriptionIfAbsent(*rec.ZDescription)
	}

	aPort, zPort := a.iface.EnsureL3Port(), z.iface.EnsureL3Port()
	aPort.SetVRF(rec.AVrf)
	zPort.SetVRF(rec.ZVrf)

	if rec.HasAddressing() {
		aAddr, zAddr, ok, err := linkAddresses(rec)
		if err != nil {
			return err
		}
		aPort.EnsureIPv4()
		zPort.EnsureIPv4()
		if ok {
			if err := aPort.AddIPv4Address(model.IPv4Address{Address: aAddr}); err != nil {
				return atField("a_ipv4_address", err)
			}
			if err := zPort.AddIPv4Address(model.IPv4Address{Address: zAddr}); err != nil {
				return atField("z_ipv4_address", err)
			}
			log.Debugf("Addressed %s and %s", aAddr, zAddr)
		}
	} else if rec.AIPv4Address != nil || rec.ZIPv4Address != nil {
		log.Warn("Only one side carries an address and no network is given, no addresses assigned")
	}

	if rec.OspfTemplate != nil {
		for _, p := range []*model.RouteportModel{aPort, zPort} {
			cfg, err := l.templates.OSPF.Resolve(*rec.OspfTemplate)
			if err != nil {
				return atField("ospf_template", err)
			}
			if err := p.SetOSPF(cfg); err != nil {
				return atField("ospf_template", err)
			}
		}
	}

	if rec.BfdTemplate != nil {
		aPort.BFD = &model.BfdConfig{Template: *rec.BfdTemplate}
		zPort.BFD = &model.BfdConfig{Template: *rec.BfdTemplate}
	}
	log.Debug("L3 link applied")
	return nil
}

// linkAddresses picks the addresses of both ends. Explicit addresses win
// over the network; with only a network the a side gets the first usable
// host and the z side the last. ok is false when neither rule applies.
func linkAddresses(rec record.L3Link) (a, z netip.Prefix, ok bool, err error) {
	if rec.HasExplicitAddresses() {
		return *rec.AIPv4Address, *rec.ZIPv4Address, true, nil
	}
	if rec.IPv4Network == nil {
		return netip.Prefix{}, netip.Prefix{}, false, nil
	}
	a, z, err = DeriveLinkAddresses(*rec.IPv4Network)
	if err != nil {
		return netip.Prefix{}, netip.Prefix{}, false, atField("ipv4_network", err)
	}
	return a, z, true, nil
}

// DeriveLinkAddresses returns the first and last usable host of network as
// interface prefixes carrying the network's length. Networks with fewer
// than two usable hosts are rejected.
func DeriveLinkAddresses(network netip.Prefix) (first, last netip.Prefix, err error) {
	lo, hi, count := util.UsableHosts(network)
	if count < 2 {
		return netip.Prefix{}, netip.Prefix{}, fmt.Errorf("%w: network %s has %d usable host(s), need 2",
			util.ErrInvalidAddressing, network.Masked(), count)
	}
	bits := network.Bits()
	return netip.PrefixFrom(lo, bits), netip.PrefixFrom(hi, bits), nil
}
