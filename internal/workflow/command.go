package workflow

import "geoflow/internal/model"

// Command is one registered command type. Implementations are stateless;
// per-run state (raw parameters, typed values, status) lives in the
// Invocation. Run performs the effect after validation passed: it evaluates
// its runtime checks through the invocation helpers and returns an error only
// for effect-layer failures, which the invocation absorbs into the status.
type Command interface {
	Name() string
	Params() []model.ParamSpec
	Run(inv *Invocation, ctx *Context) error
}

// Discoverer is implemented by commands that do a lighter pre-run scan, for
// example to pre-register expected outputs. Discovery problems are recorded
// under the discovery phase and never block the run by themselves.
type Discoverer interface {
	Discover(inv *Invocation, ctx *Context) error
}
