// Package builder compiles workbook tables into the per-device model held by
// an inventory.
//
// A Loader owns everything one build needs: the table source, the inventory
// it mutates, the template registries and the decoded BGP peer groups. Load
// operations run one table at a time and must run in dependency order,
// because later tables read state written by earlier ones. A failure stops
// the current table; rows applied before it stay applied.
package builder

import (
	"context"
	"errors"
	"time"

	"github.com/newtron-network/topobuild/pkg/audit"
	"github.com/newtron-network/topobuild/pkg/inventory"
	"github.com/newtron-network/topobuild/pkg/model"
	"github.com/newtron-network/topobuild/pkg/record"
	"github.com/newtron-network/topobuild/pkg/table"
	"github.com/newtron-network/topobuild/pkg/template"
	"github.com/newtron-network/topobuild/pkg/util"
)

// DefaultSwitchesGroup receives the VLAN definitions
const DefaultSwitchesGroup = "switches"

// Loader is one build session
type Loader struct {
	source    table.Source
	inv       inventory.Accessor
	templates *template.Registries
	// peerGroups keeps table order; lookups take the first match
	peerGroups []*model.BgpPeerGroup

	defaultLagMode model.LagMode
	policy         record.Policy
	switchesGroup  string

	metrics  *Metrics
	auditLog audit.Logger
	runID    string
	workbook string
	user     string

	reports []TableReport
}

// Option configures a Loader
type Option func(*Loader)

// WithDefaultLagMode sets the mode of LAG members whose row has no mode
func WithDefaultLagMode(mode model.LagMode) Option {
	return func(l *Loader) { l.defaultLagMode = mode }
}

// WithDecodePolicy sets the malformed-row policy
func WithDecodePolicy(p record.Policy) Option {
	return func(l *Loader) { l.policy = p }
}

// WithSwitchesGroup sets the group that receives VLAN definitions
func WithSwitchesGroup(name string) Option {
	return func(l *Loader) { l.switchesGroup = name }
}

// WithMetrics records table loads in m
func WithMetrics(m *Metrics) Option {
	return func(l *Loader) { l.metrics = m }
}

// WithAuditLogger writes an audit event per table load
func WithAuditLogger(a audit.Logger) Option {
	return func(l *Loader) { l.auditLog = a }
}

// WithRunID sets the run identifier used in audit events
func WithRunID(id string) Option {
	return func(l *Loader) { l.runID = id }
}

// WithWorkbook names the workbook in audit events
func WithWorkbook(path string) Option {
	return func(l *Loader) { l.workbook = path }
}

// WithUser names the user in audit events
func WithUser(user string) Option {
	return func(l *Loader) { l.user = user }
}

// NewLoader creates a loader reading from source and writing into inv.
// Template registries and the peer-group list start empty.
func NewLoader(source table.Source, inv inventory.Accessor, opts ...Option) *Loader {
	l := &Loader{
		source:         source,
		inv:            inv,
		templates:      template.NewRegistries(),
		defaultLagMode: model.LagModeActive,
		policy:         record.AbortOnMalformed,
		switchesGroup:  DefaultSwitchesGroup,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.runID == "" {
		l.runID = audit.NewRunID()
	}
	return l
}

// Templates returns the loader's template registries
func (l *Loader) Templates() *template.Registries {
	return l.templates
}

// PeerGroups returns the decoded peer groups in table order
func (l *Loader) PeerGroups() []*model.BgpPeerGroup {
	return l.peerGroups
}

// RunID returns the run identifier
func (l *Loader) RunID() string {
	return l.runID
}

// Reports returns one report per table load attempted so far
func (l *Loader) Reports() []TableReport {
	return append([]TableReport(nil), l.reports...)
}

// LoadAll loads every table in dependency order. Tables missing from the
// workbook are skipped. The context is checked between tables only.
func (l *Loader) LoadAll(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { l.auditBuild(err, time.Since(start)) }()

	steps := []struct {
		table string
		load  func() error
	}{
		{record.VLANDefinitions.Table, l.LoadVlanDefinitions},
		{record.PhysicalLinks.Table, l.LoadPhysicalLinks},
		{record.OspfTemplates.Table, l.LoadOspfTemplates},
		{record.L3Links.Table, l.LoadL3Links},
		{record.L3Ports.Table, l.LoadL3Ports},
		{record.BgpRouters.Table, l.LoadBgpRouters},
		{record.BgpNeighbors.Table, l.LoadBgpNeighbors},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := step.load()
		if err == nil {
			continue
		}
		if isTableAbsent(err, step.table) {
			util.WithTable(step.table).Debug("Table not in workbook, skipping")
			continue
		}
		return err
	}
	return nil
}

// auditBuild writes one event summarizing the whole build
func (l *Loader) auditBuild(err error, d time.Duration) {
	if l.auditLog == nil {
		return
	}
	var rows, applied, skipped int
	for _, r := range l.reports {
		rows += r.Rows
		applied += r.Applied
		skipped += r.Skipped
	}
	event := audit.NewEvent(l.runID, audit.OperationBuild).
		WithUser(l.user).
		WithWorkbook(l.workbook).
		WithCounts(rows, applied, skipped).
		WithDuration(d)
	if err != nil {
		event.WithError(err)
	} else {
		event.WithSuccess()
	}
	if logErr := l.auditLog.Log(event); logErr != nil {
		util.Warnf("Writing audit event: %v", logErr)
	}
}

func isTableAbsent(err error, name string) bool {
	var te *util.TableError
	return errors.Is(err, table.ErrTableNotFound) && errors.As(err, &te) && te.Table == name && te.Row == 0
}
