package builder

import (
	"errors"
	"fmt"

	"github.com/newtron-network/topobuild/pkg/model"
	"github.com/newtron-network/topobuild/pkg/record"
	"github.com/newtron-network/topobuild/pkg/table"
	"github.com/newtron-network/topobuild/pkg/util"
)

// LoadBgpRouters creates the BGP process of each listed host. An existing
// process keeps its ASN and router ID.
func (l *Loader) LoadBgpRouters() error {
	return loadTable(l, record.BgpRouters, l.applyBgpRouter)
}

func (l *Loader) applyBgpRouter(row int, rec record.BgpRouter) error {
	if err := util.ValidateASN(rec.ASN); err != nil {
		return atField("asn", fmt.Errorf("%w: %v", util.ErrInvalidConfig, err))
	}
	host, err := l.inv.GetHost(rec.Host)
	if err != nil {
		return atField("host", err)
	}
	log := util.WithHost(host.Name).WithField("row", row)

	bgp, created := host.EnsureBGP(rec.ASN)
	if !created && bgp.ASN != rec.ASN {
		log.Warnf("BGP process already has AS %d, ignoring AS %d", bgp.ASN, rec.ASN)
	}
	if rec.RouterID != nil {
		util.SetIfAbsent(&bgp.RouterID, *rec.RouterID)
	}
	log.Debugf("BGP process AS %d", bgp.ASN)
	return nil
}

// LoadBgpPeerGroups decodes the bgp_peer_groups table into the loader's
// peer-group list, replacing any earlier list. Table order is kept.
func (l *Loader) LoadBgpPeerGroups() error {
	l.peerGroups = nil
	return loadTable(l, record.BgpPeerGroups, func(_ int, pg model.BgpPeerGroup) error {
		if model.FindPeerGroup(l.peerGroups, pg.Name) != nil {
			util.WithField("peer_group", pg.Name).Warn("Duplicate peer group, the first definition is used")
		}
		l.peerGroups = append(l.peerGroups, &pg)
		return nil
	})
}

// LoadBgpNeighbors attaches neighbors, and the peer groups they reference,
// to the BGP process of their host. Peer groups are loaded first; a workbook
// without a bgp_peer_groups table has none.
func (l *Loader) LoadBgpNeighbors() error {
	if err := l.LoadBgpPeerGroups(); err != nil && !errors.Is(err, table.ErrTableNotFound) {
		return err
	}
	return loadTable(l, record.BgpNeighbors, l.applyBgpNeighbor)
}

func (l *Loader) applyBgpNeighbor(row int, rec record.BgpNeighbor) error {
	host, err := l.inv.GetHost(rec.Host)
	if err != nil {
		return atField("host", err)
	}
	bgp := host.BGP()
	if bgp == nil {
		return atField("host", fmt.Errorf("%w on host '%s'", util.ErrMissingBgpProcess, host.Name))
	}

	n := rec.BgpNeighbor
	if n.PeerGroup != nil {
		pg := model.FindPeerGroup(l.peerGroups, *n.PeerGroup)
		if pg == nil {
			return atField("peer_group", fmt.Errorf("%w: '%s'", util.ErrUnknownPeerGroup, *n.PeerGroup))
		}
		bgp.AttachPeerGroup(pg.Clone())
	}
	bgp.AddNeighbor(&n)
	util.WithHost(host.Name).WithField("row", row).Debugf("Added BGP neighbor %s", n.Address)
	return nil
}
