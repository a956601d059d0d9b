package workflow

import (
	"fmt"

	"geoflow/internal/check"
	"geoflow/internal/model"
	"geoflow/internal/registry"
	"geoflow/internal/status"
)

// State tracks one invocation through its lifecycle.
type State int

const (
	StateCreated State = iota
	StateValidating
	StateValidationFailed
	StateReady
	StateRunning
	StateCompleted
	StateSkipped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateValidating:
		return "validating"
	case StateValidationFailed:
		return "validation-failed"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Invocation is one command instance inside a workflow: the raw parameters
// from the script, the typed values produced by validation, and the status
// everything reports into.
type Invocation struct {
	cmd    Command
	raw    map[string]string
	values map[string]model.Value
	status *status.CommandStatus

	state    State
	warnings int
	blocked  bool
}

func NewInvocation(cmd Command, raw map[string]string) *Invocation {
	params := make(map[string]string, len(raw))
	for k, v := range raw {
		params[k] = v
	}
	return &Invocation{
		cmd:    cmd,
		raw:    params,
		values: make(map[string]model.Value),
		status: status.New(),
		state:  StateCreated,
	}
}

func (inv *Invocation) Command() Command              { return inv.cmd }
func (inv *Invocation) State() State                  { return inv.state }
func (inv *Invocation) Status() *status.CommandStatus { return inv.status }
func (inv *Invocation) WarningCount() int             { return inv.warnings }

// RawParams returns a copy of the raw parameter map as parsed from the
// script, before expansion.
func (inv *Invocation) RawParams() map[string]string {
	out := make(map[string]string, len(inv.raw))
	for k, v := range inv.raw {
		out[k] = v
	}
	return out
}

// Log records one entry. Warning-or-worse records added during the run phase
// count toward the invocation's warning total, once each.
func (inv *Invocation) Log(phase model.Phase, sev model.Severity, message, recommendation string) {
	inv.status.AddLog(model.NewRecord(phase, sev, message, recommendation))
	if inv.state == StateRunning && phase == model.PhaseRun && sev >= model.SeverityWarning {
		inv.warnings++
	}
}

// Validate checks the raw parameters against the command's declared specs:
// unknown names, required presence, enum membership, type coercion. Values
// are expanded against the property store first (the store's state at this
// point reflects every previously executed command), then coerced once into
// typed values. Any failure leaves the invocation in StateValidationFailed
// and returns a ParameterError.
func (inv *Invocation) Validate(ctx *Context) error {
	if inv.state != StateCreated {
		panic(fmt.Sprintf("Validate called in state %s", inv.state))
	}
	inv.state = StateValidating

	specs := inv.cmd.Params()
	known := make(map[string]model.ParamSpec, len(specs))
	for _, ps := range specs {
		known[ps.Name] = ps
	}

	for name := range inv.raw {
		if _, ok := known[name]; !ok {
			inv.Log(model.PhaseInitialization, model.SeverityFailure,
				fmt.Sprintf("unknown parameter %q for command %s", name, inv.cmd.Name()),
				"remove the parameter or fix its spelling")
		}
	}

	for _, ps := range specs {
		raw, present := inv.raw[ps.Name]
		if !present {
			if ps.Required {
				inv.Log(model.PhaseInitialization, model.SeverityFailure,
					fmt.Sprintf("required parameter %q is missing", ps.Name),
					"add the parameter to the command")
			}
			continue
		}

		expanded, unresolved := ctx.Props.Expand(raw)
		for _, tok := range unresolved {
			inv.Log(model.PhaseInitialization, model.SeverityWarning,
				fmt.Sprintf("parameter %q references unresolved token ${%s}", ps.Name, tok),
				"set the property before this command or fix the token")
		}

		if !ps.AllowsValue(expanded) {
			inv.Log(model.PhaseInitialization, model.SeverityFailure,
				fmt.Sprintf("parameter %q has value %q, expected one of: %v", ps.Name, expanded, ps.Enum),
				"use one of the listed values")
			continue
		}

		v, err := model.CoerceValue(ps.Kind, expanded)
		if err != nil {
			inv.Log(model.PhaseInitialization, model.SeverityFailure,
				fmt.Sprintf("parameter %q: %v (expected %s)", ps.Name, err, ps.Kind),
				"fix the parameter value")
			continue
		}
		inv.values[ps.Name] = v
	}

	if inv.status.PhaseSeverity(model.PhaseInitialization) >= model.SeverityFailure {
		inv.state = StateValidationFailed
		return &ParameterError{
			Command: inv.cmd.Name(),
			Records: inv.status.Records(model.PhaseInitialization),
		}
	}
	inv.status.RefreshPhaseSeverity(model.PhaseInitialization, model.SeveritySuccess)
	inv.state = StateReady
	return nil
}

// Execute runs the discovery pass (when the command implements Discoverer)
// and then the effect. Only callable from StateReady. Effect errors never
// escape raw: they end up as run-phase failure records. The invocation
// finishes Completed, or Skipped when a blocking check stopped the effect;
// a nonzero warning total surfaces as a RunError either way.
func (inv *Invocation) Execute(ctx *Context) error {
	if inv.state != StateReady {
		panic(fmt.Sprintf("Execute called in state %s", inv.state))
	}
	inv.state = StateRunning

	if d, ok := inv.cmd.(Discoverer); ok {
		if err := d.Discover(inv, ctx); err != nil {
			inv.Log(model.PhaseDiscovery, model.SeverityWarning,
				fmt.Sprintf("discovery: %v", err), "")
		}
		inv.status.RefreshPhaseSeverity(model.PhaseDiscovery, model.SeveritySuccess)
	}

	if err := inv.cmd.Run(inv, ctx); err != nil {
		inv.Log(model.PhaseRun, model.SeverityFailure,
			fmt.Sprintf("%s failed: %v", inv.cmd.Name(), err),
			"check the run report for details")
	}
	inv.status.RefreshPhaseSeverity(model.PhaseRun, model.SeveritySuccess)

	if inv.blocked {
		inv.state = StateSkipped
	} else {
		inv.state = StateCompleted
	}

	if inv.warnings > 0 {
		return &RunError{Command: inv.cmd.Name(), Warnings: inv.warnings}
	}
	return nil
}

// Check evaluates one precondition and logs the outcome. It returns true
// when the command may keep going: either the predicate passed, or it failed
// under a warn-only policy. A false return means the effect must not run;
// the invocation will finish Skipped.
func (inv *Invocation) Check(ctx *Context, cond check.Condition, in check.Input, policy check.Policy) bool {
	res := check.Evaluate(cond, in, ctx.CheckEnv(), policy)
	if res.Passed {
		return true
	}
	inv.Log(model.PhaseRun, res.Severity, res.Message, res.Recommendation)
	if res.Blocking {
		inv.blocked = true
		return false
	}
	return true
}

// RegisterEntity registers obj under id, translating the collision outcome
// into log records. Returns whether the object was actually inserted.
// Registration happens after the effect, so a failed outcome is a run
// failure on record rather than a skip.
func RegisterEntity[T any](inv *Invocation, r *registry.Registry[T], id string, obj T, policy model.CollisionPolicy) bool {
	out := r.Register(id, obj, policy)
	switch {
	case out.Failed:
		inv.Log(model.PhaseRun, model.SeverityFailure,
			fmt.Sprintf("%s id %q is already registered", r.Kind(), id),
			fmt.Sprintf("choose another id or pass IfExists=\"%s\"", model.CollisionReplace))
	case out.Warned && out.Inserted:
		inv.Log(model.PhaseRun, model.SeverityWarning,
			fmt.Sprintf("replaced existing %s %q", r.Kind(), id), "")
	case out.Warned:
		inv.Log(model.PhaseRun, model.SeverityWarning,
			fmt.Sprintf("kept existing %s %q; the new object was discarded", r.Kind(), id), "")
	}
	return out.Inserted
}

// Typed parameter accessors. Commands declare their specs, so a present
// parameter always carries the declared kind after validation.

func (inv *Invocation) HasParam(name string) bool {
	_, ok := inv.values[name]
	return ok
}

func (inv *Invocation) StringParam(name string) string {
	return inv.values[name].Str
}

func (inv *Invocation) BoolParam(name string) bool {
	return inv.values[name].Bool
}

func (inv *Invocation) IntParam(name string) int {
	return inv.values[name].Int
}

func (inv *Invocation) ListParam(name string) []string {
	return inv.values[name].List
}

// PolicyParam reads a collision-policy parameter, defaulting to Fail when
// the parameter is absent. Validation already constrained the spelling via
// the parameter's Enum.
func (inv *Invocation) PolicyParam(name string) model.CollisionPolicy {
	v, ok := inv.values[name]
	if !ok {
		return model.CollisionFail
	}
	p, err := model.ParseCollisionPolicy(v.Str)
	if err != nil {
		return model.CollisionFail
	}
	return p
}
