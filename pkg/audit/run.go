package audit

import (
	"sort"
	"time"
)

// Run is one build as recorded in the audit log: its table loads in the
// order they ran and the closing build event.
type Run struct {
	ID     string   `json:"run_id"`
	Build  *Event   `json:"build,omitempty"` // nil while running or after a crash
	Tables []*Event `json:"tables,omitempty"`
}

// Started returns the time of the run's first event
func (r *Run) Started() time.Time {
	if len(r.Tables) > 0 {
		return r.Tables[0].Timestamp
	}
	if r.Build != nil {
		return r.Build.Timestamp
	}
	return time.Time{}
}

// User returns the user recorded on the run
func (r *Run) User() string {
	if r.Build != nil && r.Build.User != "" {
		return r.Build.User
	}
	for _, e := range r.Tables {
		if e.User != "" {
			return e.User
		}
	}
	return ""
}

// Complete reports whether the build event was written
func (r *Run) Complete() bool {
	return r.Build != nil
}

// Events returns the build event followed by the table loads
func (r *Run) Events() []*Event {
	events := make([]*Event, 0, len(r.Tables)+1)
	if r.Build != nil {
		events = append(events, r.Build)
	}
	return append(events, r.Tables...)
}

// FailedTable returns the table load that stopped the build, if any
func (r *Run) FailedTable() *Event {
	for _, e := range r.Tables {
		if !e.Success {
			return e
		}
	}
	return nil
}

// groupRuns collects events into runs, ordered by start time. A table load
// logged after the run's build event (a second build reusing the ID) is
// still attached to that run.
func groupRuns(events []*Event) []*Run {
	byID := make(map[string]*Run)
	var runs []*Run
	for _, e := range events {
		r, ok := byID[e.RunID]
		if !ok {
			r = &Run{ID: e.RunID}
			byID[e.RunID] = r
			runs = append(runs, r)
		}
		switch e.Operation {
		case OperationBuild:
			r.Build = e
		default:
			r.Tables = append(r.Tables, e)
		}
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Started().Before(runs[j].Started())
	})
	return runs
}

// selectRuns applies a filter: run-level criteria pick runs, event-level
// criteria prune the events inside them. Runs left empty are dropped.
// Offset and Limit count runs from the most recent.
func selectRuns(runs []*Run, f Filter) []*Run {
	var out []*Run
	for _, r := range runs {
		if f.RunID != "" && r.ID != f.RunID {
			continue
		}
		if f.User != "" && r.User() != f.User {
			continue
		}
		started := r.Started()
		if !f.StartTime.IsZero() && started.Before(f.StartTime) {
			continue
		}
		if !f.EndTime.IsZero() && started.After(f.EndTime) {
			continue
		}
		if pruned := pruneRun(r, f); pruned != nil {
			out = append(out, pruned)
		}
	}

	end := len(out) - f.Offset
	if end <= 0 {
		return nil
	}
	begin := 0
	if f.Limit > 0 && end > f.Limit {
		begin = end - f.Limit
	}
	return out[begin:end]
}

func pruneRun(r *Run, f Filter) *Run {
	keep := func(e *Event) bool {
		switch {
		case f.Operation != "" && e.Operation != f.Operation:
			return false
		case f.Table != "" && e.Table != f.Table:
			return false
		case f.SuccessOnly && !e.Success:
			return false
		case f.FailureOnly && e.Success:
			return false
		}
		return true
	}

	out := &Run{ID: r.ID}
	if r.Build != nil && keep(r.Build) {
		out.Build = r.Build
	}
	for _, e := range r.Tables {
		if keep(e) {
			out.Tables = append(out.Tables, e)
		}
	}
	if out.Build == nil && len(out.Tables) == 0 {
		return nil
	}
	return out
}
