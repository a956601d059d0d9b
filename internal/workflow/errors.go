package workflow

import (
	"fmt"

	"geoflow/internal/model"
)

// ParameterError signals that a command's parameters failed validation. It is
// one of the two error kinds that cross the invocation/processor boundary;
// the command never runs after it.
type ParameterError struct {
	Command string
	Records []model.LogRecord
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %d parameter error(s)", e.Command, len(e.Records))
}

// RunError signals that a command finished its run phase with warnings or
// failures on record. The effect may or may not have executed; the command's
// status carries the detail.
type RunError struct {
	Command  string
	Warnings int
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s: finished with %d warning(s)", e.Command, e.Warnings)
}
