package builder

import (
	"fmt"

	"github.com/newtron-network/topobuild/pkg/record"
	"github.com/newtron-network/topobuild/pkg/util"
)

// LoadOspfTemplates stores one OSPF template per row of templates_ospf.
// A later row with the same name replaces the earlier one.
func (l *Loader) LoadOspfTemplates() error {
	err := loadTable(l, record.OspfTemplates, func(_ int, rec record.OspfTemplate) error {
		cfg, err := rec.Config()
		if err != nil {
			return atField(ospfErrorField(rec), err)
		}
		l.templates.OSPF.Store(rec.TemplateName, cfg)
		return nil
	})
	l.metrics.setTemplates("ospf", l.templates.OSPF.Len())
	return err
}

// ospfErrorField names the column an invalid template row is blamed on
func ospfErrorField(rec record.OspfTemplate) string {
	switch {
	case rec.NetworkType != nil && !rec.NetworkType.Valid():
		return "network_type"
	case rec.ProcessID == nil:
		return "process_id"
	default:
		return "area"
	}
}

// LoadBfdTemplates is not supported; BFD templates are referenced by name
// only.
func (l *Loader) LoadBfdTemplates() error {
	return fmt.Errorf("loading BFD templates: %w", util.ErrNotImplemented)
}
