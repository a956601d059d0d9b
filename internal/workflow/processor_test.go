package workflow

import (
	"errors"
	"testing"
	"time"

	"geoflow/internal/model"
)

func TestExecuteAllContinuesPastFailure(t *testing.T) {
	ctx := testContext(t)
	var order []string
	ok := func(name string) *fakeCommand {
		return &fakeCommand{
			name: name,
			run: func(inv *Invocation, c *Context) error {
				order = append(order, name)
				return nil
			},
		}
	}
	broken := &fakeCommand{
		name:   "Second",
		params: []model.ParamSpec{{Name: "Path", Required: true, Kind: model.KindString}},
	}

	invs := []*Invocation{
		NewInvocation(ok("First"), nil),
		NewInvocation(broken, nil), // required parameter missing
		NewInvocation(ok("Third"), nil),
	}
	p := NewProcessor(ctx, invs)
	summary := p.ExecuteAll()

	if summary.Executed != 3 || summary.Failed != 1 {
		t.Fatalf("summary = %+v, want executed=3 failed=1", summary)
	}
	if len(order) != 2 || order[0] != "First" || order[1] != "Third" {
		t.Fatalf("effects ran: %v", order)
	}

	results := p.Results()
	if results[1].State != StateValidationFailed {
		t.Errorf("second command state = %v", results[1].State)
	}
	var paramErr *ParameterError
	if !errors.As(results[1].Err, &paramErr) {
		t.Errorf("second command error = %v", results[1].Err)
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("healthy commands reported errors: %v, %v", results[0].Err, results[2].Err)
	}
}

func TestExecuteAllStrictOrder(t *testing.T) {
	ctx := testContext(t)
	var order []int
	invs := make([]*Invocation, 0, 5)
	for i := 0; i < 5; i++ {
		i := i
		invs = append(invs, NewInvocation(&fakeCommand{
			name: "Step",
			run: func(inv *Invocation, c *Context) error {
				order = append(order, i)
				return nil
			},
		}, nil))
	}
	NewProcessor(ctx, invs).ExecuteAll()
	for i, got := range order {
		if got != i {
			t.Fatalf("execution order %v", order)
		}
	}
}

func TestExecuteAllSharedState(t *testing.T) {
	// Command N sees command N-1's property mutation.
	ctx := testContext(t)
	setter := &fakeCommand{
		name: "Set",
		run: func(inv *Invocation, c *Context) error {
			return c.Props.SetString("Region", "kanto")
		},
	}
	var seen string
	reader := &fakeCommand{
		name:   "Read",
		params: []model.ParamSpec{{Name: "Id", Kind: model.KindString}},
		run: func(inv *Invocation, c *Context) error {
			seen = inv.StringParam("Id")
			return nil
		},
	}
	invs := []*Invocation{
		NewInvocation(setter, nil),
		NewInvocation(reader, map[string]string{"Id": "clip-${Region}"}),
	}
	summary := NewProcessor(ctx, invs).ExecuteAll()
	if summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if seen != "clip-kanto" {
		t.Fatalf("later command did not see earlier mutation: %q", seen)
	}
}

type memorySink struct {
	events []string
}

func (m *memorySink) Record(event string, details map[string]any) {
	m.events = append(m.events, event)
}

func TestProcessorEmitsEvents(t *testing.T) {
	ctx := testContext(t)
	sink := &memorySink{}
	invs := []*Invocation{NewInvocation(&fakeCommand{name: "Only"}, nil)}
	NewProcessor(ctx, invs).WithEventSink(sink).ExecuteAll()

	if len(sink.events) != 2 || sink.events[0] != "command_start" || sink.events[1] != "command_end" {
		t.Fatalf("events = %v", sink.events)
	}
}

func TestBuildReport(t *testing.T) {
	ctx := testContext(t)
	invs := []*Invocation{
		NewInvocation(&fakeCommand{name: "Good"}, nil),
		NewInvocation(&fakeCommand{
			name: "Bad",
			run: func(inv *Invocation, c *Context) error {
				inv.Log(model.PhaseRun, model.SeverityWarning, "careful", "look closer")
				return nil
			},
		}, nil),
	}
	p := NewProcessor(ctx, invs)
	started := time.Now()
	summary := p.ExecuteAll()
	rep := BuildReport(p, "wf.gfw", summary, started, time.Now())

	if rep.RunID == "" {
		t.Error("report missing run id")
	}
	if rep.Summary.Executed != 2 || rep.Summary.Failed != 1 {
		t.Fatalf("report summary = %+v", rep.Summary)
	}
	if len(rep.Commands) != 2 {
		t.Fatalf("report commands = %d", len(rep.Commands))
	}
	if rep.Commands[0].Severity != "success" || rep.Commands[1].Severity != "warning" {
		t.Errorf("severities: %q, %q", rep.Commands[0].Severity, rep.Commands[1].Severity)
	}
	if rep.Commands[1].Error == "" {
		t.Error("failed command must carry its error")
	}

	path, err := rep.Write(t.TempDir())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if path == "" {
		t.Fatal("empty report path")
	}
}

func TestWorstSeverity(t *testing.T) {
	ctx := testContext(t)
	invs := []*Invocation{
		NewInvocation(&fakeCommand{name: "Good"}, nil),
		NewInvocation(&fakeCommand{
			name: "Warny",
			run: func(inv *Invocation, c *Context) error {
				inv.Log(model.PhaseRun, model.SeverityWarning, "w", "")
				return nil
			},
		}, nil),
	}
	p := NewProcessor(ctx, invs)
	p.ExecuteAll()
	if got := p.WorstSeverity(); got != model.SeverityWarning {
		t.Fatalf("WorstSeverity = %v", got)
	}
}
