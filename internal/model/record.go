package model

// LogRecord is one immutable entry in a command's status: what happened, how
// bad it was, and what the user should do about it.
type LogRecord struct {
	Phase          Phase    `yaml:"phase"`
	Severity       Severity `yaml:"severity"`
	Message        string   `yaml:"message"`
	Recommendation string   `yaml:"recommendation,omitempty"`
}

// NewRecord builds a LogRecord. Records are passed and stored by value; there
// is no way to mutate one after creation.
func NewRecord(phase Phase, severity Severity, message, recommendation string) LogRecord {
	return LogRecord{
		Phase:          phase,
		Severity:       severity,
		Message:        message,
		Recommendation: recommendation,
	}
}
