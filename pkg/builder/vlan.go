package builder

import (
	"github.com/newtron-network/topobuild/pkg/model"
	"github.com/newtron-network/topobuild/pkg/record"
	"github.com/newtron-network/topobuild/pkg/util"
)

// LoadVlanDefinitions appends the used VLAN rows, ordered by VLAN ID, to the
// switches group. Rows are collected first, so a bad row leaves the group
// untouched.
func (l *Loader) LoadVlanDefinitions() error {
	var defs []model.VLANDefinition
	err := loadTable(l, record.VLANDefinitions, func(_ int, def model.VLANDefinition) error {
		defs = append(defs, def)
		return nil
	})
	if err != nil {
		return err
	}

	group, err := l.inv.GetGroup(l.switchesGroup)
	if err != nil {
		return tableError(record.VLANDefinitions.Table, 0, err)
	}
	model.SortVLANDefinitions(defs)
	cfg := group.EnsureConfig()
	cfg.VlanDefinitions = append(cfg.VlanDefinitions, defs...)
	util.WithField("group", group.Name).Infof("Added %d VLAN definitions", len(defs))
	return nil
}
