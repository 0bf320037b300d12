package builder

import (
	"github.com/newtron-network/topobuild/pkg/model"
	"github.com/newtron-network/topobuild/pkg/record"
	"github.com/newtron-network/topobuild/pkg/util"
)

// LoadL3Ports configures standalone routed ports such as loopbacks
func (l *Loader) LoadL3Ports() error {
	return loadTable(l, record.L3Ports, l.applyL3Port)
}

func (l *Loader) applyL3Port(row int, rec record.L3Port) error {
	if _, err := l.inv.GetHost(rec.Host); err != nil {
		return atField("host", err)
	}
	iface, err := l.inv.GetInterface(rec.Host, rec.Interface)
	if err != nil {
		return atField("interface", err)
	}

	port := iface.EnsureL3Port()
	if rec.Description != nil {
		iface.SetDescriptionIfAbsent(*rec.Description)
	}
	port.SetVRF(rec.Vrf)
	if rec.IPv4Address != nil {
		if err := port.AddIPv4Address(model.IPv4Address{Address: *rec.IPv4Address}); err != nil {
			return atField("ipv4_address", err)
		}
	}
	if rec.IPMTU != nil {
		if err := port.SetIPMTU(*rec.IPMTU); err != nil {
			return atField("ip_mtu", err)
		}
	}
	util.WithHost(rec.Host).WithField("row", row).Debugf("Configured L3 port %s", iface.Name)
	return nil
}
