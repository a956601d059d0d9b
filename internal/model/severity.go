// Package model defines the value types shared by every geoflow component:
// severities, phases, log records, collision policies, and typed parameter
// values.
package model

import "fmt"

// Severity is the outcome level attached to a log record. The order matters:
// aggregation always keeps the maximum.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityFailure
)

func (s Severity) String() string {
	switch s {
	case SeverityUnknown:
		return "unknown"
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityFailure:
		return "failure"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalYAML renders the severity by name in reports.
func (s Severity) MarshalYAML() (any, error) {
	return s.String(), nil
}

// MaxSeverity returns the worse of the two severities.
func MaxSeverity(a, b Severity) Severity {
	if a > b {
		return a
	}
	return b
}

// Phase is a logical stage within a command's lifecycle. Each phase
// accumulates its own records and severity.
type Phase int

const (
	PhaseInitialization Phase = iota
	PhaseDiscovery
	PhaseRun
)

// Phases lists all phases in lifecycle order.
var Phases = []Phase{PhaseInitialization, PhaseDiscovery, PhaseRun}

func (p Phase) String() string {
	switch p {
	case PhaseInitialization:
		return "initialization"
	case PhaseDiscovery:
		return "discovery"
	case PhaseRun:
		return "run"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p Phase) MarshalYAML() (any, error) {
	return p.String(), nil
}
