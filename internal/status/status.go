// Package status aggregates per-command log records into phase and overall
// severities. A CommandStatus is owned by exactly one command invocation and
// is the sink every other component reports into; it cannot itself fail.
package status

import "geoflow/internal/model"

type CommandStatus struct {
	records map[model.Phase][]model.LogRecord
	floors  map[model.Phase]model.Severity
}

func New() *CommandStatus {
	return &CommandStatus{
		records: make(map[model.Phase][]model.LogRecord),
		floors:  make(map[model.Phase]model.Severity),
	}
}

// AddLog appends a record under its phase. Append-only; never fails.
func (cs *CommandStatus) AddLog(rec model.LogRecord) {
	cs.records[rec.Phase] = append(cs.records[rec.Phase], rec)
}

// RefreshPhaseSeverity raises the phase's effective severity to at least
// floor. Used to mark a phase success once it completed without records;
// a higher-severity record always wins.
func (cs *CommandStatus) RefreshPhaseSeverity(phase model.Phase, floor model.Severity) {
	cs.floors[phase] = model.MaxSeverity(cs.floors[phase], floor)
}

// PhaseSeverity returns the maximum severity among the phase's records and
// its floor. A phase that never ran and has no records reports unknown.
func (cs *CommandStatus) PhaseSeverity(phase model.Phase) model.Severity {
	sev := cs.floors[phase]
	for _, rec := range cs.records[phase] {
		sev = model.MaxSeverity(sev, rec.Severity)
	}
	return sev
}

// OverallSeverity is the maximum phase severity across all phases.
func (cs *CommandStatus) OverallSeverity() model.Severity {
	sev := model.SeverityUnknown
	for _, p := range model.Phases {
		sev = model.MaxSeverity(sev, cs.PhaseSeverity(p))
	}
	return sev
}

// Records returns a copy of the phase's records in logging order.
func (cs *CommandStatus) Records(phase model.Phase) []model.LogRecord {
	recs := cs.records[phase]
	out := make([]model.LogRecord, len(recs))
	copy(out, recs)
	return out
}

// AllRecords returns every record grouped by phase in lifecycle order.
func (cs *CommandStatus) AllRecords() []model.LogRecord {
	var out []model.LogRecord
	for _, p := range model.Phases {
		out = append(out, cs.records[p]...)
	}
	return out
}
