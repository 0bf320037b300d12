package builder

import (
	"errors"
	"time"

	"github.com/newtron-network/topobuild/pkg/audit"
	"github.com/newtron-network/topobuild/pkg/record"
	"github.com/newtron-network/topobuild/pkg/table"
	"github.com/newtron-network/topobuild/pkg/util"
)

// Table load outcomes
const (
	StatusLoaded = "loaded"
	StatusFailed = "failed"
	StatusAbsent = "absent"
)

// TableReport summarizes one table load
type TableReport struct {
	Table    string        `json:"table" yaml:"table"`
	Status   string        `json:"status" yaml:"status"`
	Rows     int           `json:"rows" yaml:"rows"`
	Applied  int           `json:"applied" yaml:"applied"`
	Skipped  int           `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// atField attributes an error to a column of the current row. The table and
// row are filled in by loadTable.
func atField(field string, err error) error {
	return &util.TableError{Field: field, Err: err}
}

// tableError wraps err so it names the table and, where known, row and field
func tableError(name string, row int, err error) error {
	if te, ok := err.(*util.TableError); ok {
		te.Table = name
		if te.Row == 0 {
			te.Row = row
		}
		return te
	}
	var recErr *util.RecordError
	if errors.As(err, &recErr) {
		return &util.TableError{Table: name, Row: recErr.Row, Field: recErr.Field, Err: err}
	}
	return &util.TableError{Table: name, Row: row, Err: err}
}

// loadTable reads a table, keeps the rows whose use flag is set and applies
// each decoded record in order.
func loadTable[T any](l *Loader, s record.Schema, apply func(row int, rec T) error) (err error) {
	start := time.Now()
	rep := TableReport{Table: s.Table}
	log := util.WithTable(s.Table)
	log.Info("Loading table")

	defer func() {
		rep.Duration = time.Since(start)
		switch {
		case err == nil:
			rep.Status = StatusLoaded
			log.Infof("Applied %d of %d rows", rep.Applied, rep.Rows)
		case errors.Is(err, table.ErrTableNotFound) && rep.Rows == 0:
			rep.Status = StatusAbsent
		default:
			rep.Status = StatusFailed
			rep.Error = err.Error()
		}
		l.finish(rep)
	}()

	all, err := l.source.ReadTable(s.Table, s.Rename)
	if err != nil {
		return &util.TableError{Table: s.Table, Err: err}
	}
	rows := table.FilterByUseFlag(all)
	rep.Rows = len(rows)
	l.metrics.recordRows(s.Table, rowsFiltered, len(all)-len(rows))

	skipped, err := record.Each[T](rows, s, l.policy, func(d record.Decoded[T]) error {
		if err := apply(d.Row, d.Record); err != nil {
			return tableError(s.Table, d.Row, err)
		}
		rep.Applied++
		return nil
	})
	rep.Skipped = len(skipped)
	if err != nil {
		return tableError(s.Table, 0, err)
	}
	return nil
}

// finish records a table load in the report list, metrics and audit log
func (l *Loader) finish(rep TableReport) {
	l.reports = append(l.reports, rep)

	l.metrics.recordTable(rep.Table, rep.Status, rep.Duration)
	l.metrics.recordRows(rep.Table, rowsApplied, rep.Applied)
	l.metrics.recordRows(rep.Table, rowsSkipped, rep.Skipped)

	if l.auditLog == nil || rep.Status == StatusAbsent {
		return
	}
	event := audit.NewEvent(l.runID, audit.OperationTableLoad).
		WithUser(l.user).
		WithWorkbook(l.workbook).
		WithTable(rep.Table).
		WithCounts(rep.Rows, rep.Applied, rep.Skipped).
		WithDuration(rep.Duration)
	if rep.Status == StatusFailed {
		event.WithError(errors.New(rep.Error))
	} else {
		event.WithSuccess()
	}
	if err := l.auditLog.Log(event); err != nil {
		util.WithTable(rep.Table).Warnf("Writing audit event: %v", err)
	}
}
