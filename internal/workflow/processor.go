package workflow

import (
	"errors"

	"go.uber.org/zap"

	"geoflow/internal/model"
)

// Summary is the run-level outcome. The caller decides whether a nonzero
// Failed count makes the whole process fail.
type Summary struct {
	Executed int `yaml:"executed"`
	Failed   int `yaml:"failed"`
}

// CommandResult records one command's fate, indexed by list position.
type CommandResult struct {
	Index int
	Name  string
	State State
	Err   error
}

// EventSink receives command lifecycle events, for audit logging.
type EventSink interface {
	Record(event string, details map[string]any)
}

// Processor executes an ordered command list against one shared context.
// Execution is strictly sequential and in list order: later commands depend
// on registry state mutated by earlier ones, so there is no reordering and
// no per-command parallelism.
type Processor struct {
	ctx     *Context
	invs    []*Invocation
	results []CommandResult
	sink    EventSink
	log     *zap.Logger
}

func NewProcessor(ctx *Context, invs []*Invocation) *Processor {
	return &Processor{ctx: ctx, invs: invs, log: ctx.Log}
}

// WithEventSink attaches an audit sink. Nil is allowed and means no audit.
func (p *Processor) WithEventSink(sink EventSink) *Processor {
	p.sink = sink
	return p
}

func (p *Processor) Invocations() []*Invocation { return p.invs }
func (p *Processor) Results() []CommandResult   { return p.results }

// ExecuteAll runs every command in order. A command's parameter or run error
// is recorded against its index and execution continues with the next
// command; one command's failure never aborts the workflow.
func (p *Processor) ExecuteAll() Summary {
	var summary Summary
	p.results = make([]CommandResult, 0, len(p.invs))

	for i, inv := range p.invs {
		name := inv.Command().Name()
		summary.Executed++
		p.record("command_start", map[string]any{"index": i, "command": name})

		err := inv.Validate(p.ctx)
		if err == nil && inv.State() == StateReady {
			err = inv.Execute(p.ctx)
		}

		result := CommandResult{Index: i, Name: name, State: inv.State(), Err: err}
		p.results = append(p.results, result)

		if err != nil {
			summary.Failed++
			var paramErr *ParameterError
			var runErr *RunError
			switch {
			case errors.As(err, &paramErr):
				p.log.Warn("command parameters invalid",
					zap.Int("index", i),
					zap.String("command", name),
					zap.Int("errors", len(paramErr.Records)))
			case errors.As(err, &runErr):
				p.log.Warn("command finished with warnings",
					zap.Int("index", i),
					zap.String("command", name),
					zap.String("state", inv.State().String()),
					zap.Int("warnings", runErr.Warnings))
			default:
				p.log.Warn("command failed",
					zap.Int("index", i),
					zap.String("command", name),
					zap.Error(err))
			}
		} else {
			p.log.Info("command completed",
				zap.Int("index", i),
				zap.String("command", name),
				zap.String("severity", inv.Status().OverallSeverity().String()))
		}

		p.record("command_end", map[string]any{
			"index":    i,
			"command":  name,
			"state":    inv.State().String(),
			"severity": inv.Status().OverallSeverity().String(),
			"failed":   err != nil,
		})
	}

	p.log.Info("workflow finished",
		zap.Int("executed", summary.Executed),
		zap.Int("failed", summary.Failed))
	return summary
}

// WorstSeverity folds every command's overall severity into one value.
func (p *Processor) WorstSeverity() model.Severity {
	worst := model.SeverityUnknown
	for _, inv := range p.invs {
		worst = model.MaxSeverity(worst, inv.Status().OverallSeverity())
	}
	return worst
}

func (p *Processor) record(event string, details map[string]any) {
	if p.sink != nil {
		p.sink.Record(event, details)
	}
}
