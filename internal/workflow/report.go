package workflow

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"geoflow/internal/model"
	yamlutil "geoflow/internal/yaml"
)

// Report is the YAML run report: one entry per command with its phase
// records, plus the run summary.
type Report struct {
	RunID    string          `yaml:"run_id"`
	Workflow string          `yaml:"workflow"`
	Started  time.Time       `yaml:"started"`
	Finished time.Time       `yaml:"finished"`
	Summary  Summary         `yaml:"summary"`
	Commands []CommandReport `yaml:"commands"`
}

type CommandReport struct {
	Index    int               `yaml:"index"`
	Name     string            `yaml:"name"`
	State    string            `yaml:"state"`
	Severity string            `yaml:"severity"`
	Error    string            `yaml:"error,omitempty"`
	Records  []model.LogRecord `yaml:"records,omitempty"`
}

// BuildReport snapshots a finished processor into a report.
func BuildReport(p *Processor, workflowPath string, summary Summary, started, finished time.Time) *Report {
	rep := &Report{
		RunID:    uuid.NewString(),
		Workflow: workflowPath,
		Started:  started.UTC(),
		Finished: finished.UTC(),
		Summary:  summary,
	}
	for _, res := range p.Results() {
		inv := p.Invocations()[res.Index]
		cr := CommandReport{
			Index:    res.Index,
			Name:     res.Name,
			State:    res.State.String(),
			Severity: inv.Status().OverallSeverity().String(),
			Records:  inv.Status().AllRecords(),
		}
		if res.Err != nil {
			cr.Error = res.Err.Error()
		}
		rep.Commands = append(rep.Commands, cr)
	}
	return rep
}

// Write stores the report atomically under dir and returns the path.
func (r *Report) Write(dir string) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("run-%s.yaml", r.RunID))
	if err := yamlutil.AtomicWrite(path, r); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
