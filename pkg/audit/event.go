// Package audit records table loads as JSON-lines events.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Operation names
const (
	OperationTableLoad = "table.load"
	OperationBuild     = "build"
)

// Event represents one auditable load of a workbook table
type Event struct {
	ID        string        `json:"id"`
	RunID     string        `json:"run_id"`
	Timestamp time.Time     `json:"timestamp"`
	User      string        `json:"user,omitempty"`
	Workbook  string        `json:"workbook,omitempty"`
	Operation string        `json:"operation"`
	Table     string        `json:"table,omitempty"`
	Rows      int           `json:"rows"`
	Applied   int           `json:"applied"`
	Skipped   int           `json:"skipped,omitempty"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Filter selects runs and the events shown for them. RunID, User and the
// time window match whole runs by their first event; Operation, Table and
// the success flags pick events within a run. Limit and Offset count runs,
// newest first.
type Filter struct {
	RunID       string
	User        string
	Operation   string
	Table       string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event for a run
func NewEvent(runID, operation string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		RunID:     runID,
		Timestamp: time.Now(),
		Operation: operation,
	}
}

// NewRunID returns a fresh identifier grouping the events of one build
func NewRunID() string {
	return uuid.NewString()
}

// WithUser sets the user who started the run
func (e *Event) WithUser(user string) *Event {
	e.User = user
	return e
}

// WithWorkbook sets the workbook path
func (e *Event) WithWorkbook(path string) *Event {
	e.Workbook = path
	return e
}

// WithTable sets the table name
func (e *Event) WithTable(table string) *Event {
	e.Table = table
	return e
}

// WithCounts sets the row counts
func (e *Event) WithCounts(rows, applied, skipped int) *Event {
	e.Rows = rows
	e.Applied = applied
	e.Skipped = skipped
	return e
}

// WithSuccess marks the event as successful
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the operation duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}
