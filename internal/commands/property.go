package commands

import (
	"errors"
	"fmt"

	"geoflow/internal/model"
	"geoflow/internal/property"
	"geoflow/internal/workflow"
)

// setProperty stores a user property. Overwriting a user property is normal;
// the write-once built-ins reject the write and that becomes a run failure.
type setProperty struct{}

func (*setProperty) Name() string { return "SetProperty" }

func (*setProperty) Params() []model.ParamSpec {
	return []model.ParamSpec{
		{Name: "Name", Required: true, Kind: model.KindString},
		{Name: "Value", Required: true, Kind: model.KindString},
	}
}

func (*setProperty) Run(inv *workflow.Invocation, ctx *workflow.Context) error {
	name := inv.StringParam("Name")
	value := inv.StringParam("Value")

	if err := ctx.Props.SetString(name, value); err != nil {
		var immutable *property.ImmutablePropertyError
		if errors.As(err, &immutable) {
			inv.Log(model.PhaseRun, model.SeverityFailure,
				fmt.Sprintf("property %q is built-in and write-once", name),
				"use a different property name")
			return nil
		}
		return err
	}
	return nil
}
