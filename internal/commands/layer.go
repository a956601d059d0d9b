package commands

import (
	"fmt"

	"geoflow/internal/check"
	"geoflow/internal/geo"
	"geoflow/internal/model"
	"geoflow/internal/workflow"
)

func ifExistsSpec() model.ParamSpec {
	return model.ParamSpec{Name: "IfExists", Kind: model.KindString, Enum: model.CollisionPolicyNames}
}

// readLayer reads a vector layer from disk and registers it.
type readLayer struct{}

func (*readLayer) Name() string { return "ReadLayer" }

func (*readLayer) Params() []model.ParamSpec {
	return []model.ParamSpec{
		{Name: "Path", Required: true, Kind: model.KindString},
		{Name: "Id", Required: true, Kind: model.KindString},
		ifExistsSpec(),
	}
}

func (*readLayer) Run(inv *workflow.Invocation, ctx *workflow.Context) error {
	path := ctx.ResolvePath(inv.StringParam("Path"))
	if !inv.Check(ctx, check.CondFileExists, check.Input{Value: path}, check.PolicyFail) {
		return nil
	}

	layer, err := ctx.Codec.ReadLayer(path)
	if err != nil {
		return err
	}
	if workflow.RegisterEntity(inv, ctx.Layers, inv.StringParam("Id"), layer, inv.PolicyParam("IfExists")) {
		inv.Log(model.PhaseRun, model.SeveritySuccess,
			fmt.Sprintf("read %s from %s", geo.FormatFeatureCount(layer.FeatureCount()), path), "")
	}
	return nil
}

// writeLayer writes a registered layer to disk.
type writeLayer struct{}

func (*writeLayer) Name() string { return "WriteLayer" }

func (*writeLayer) Params() []model.ParamSpec {
	return []model.ParamSpec{
		{Name: "Id", Required: true, Kind: model.KindString},
		{Name: "Path", Required: true, Kind: model.KindString},
		{Name: "Format", Kind: model.KindString},
	}
}

func (*writeLayer) Run(inv *workflow.Invocation, ctx *workflow.Context) error {
	id := inv.StringParam("Id")
	if !inv.Check(ctx, check.CondLayerExists, check.Input{Value: id}, check.PolicyFail) {
		return nil
	}
	format := inv.StringParam("Format")
	if format != "" {
		if !inv.Check(ctx, check.CondMemberOfSet,
			check.Input{Value: format, Set: []string{"geojson"}}, check.PolicyFail) {
			return nil
		}
	}

	layer, _ := ctx.Layers.Get(id)
	path := ctx.ResolvePath(inv.StringParam("Path"))
	if err := ctx.Codec.WriteLayer(layer, path, format); err != nil {
		return err
	}
	inv.Log(model.PhaseRun, model.SeveritySuccess,
		fmt.Sprintf("wrote %s to %s", geo.FormatFeatureCount(layer.FeatureCount()), path), "")
	return nil
}

// copyLayer registers an existing layer's handle under a second id.
type copyLayer struct{}

func (*copyLayer) Name() string { return "CopyLayer" }

func (*copyLayer) Params() []model.ParamSpec {
	return []model.ParamSpec{
		{Name: "Id", Required: true, Kind: model.KindString},
		{Name: "TargetId", Required: true, Kind: model.KindString},
		ifExistsSpec(),
	}
}

func (*copyLayer) Run(inv *workflow.Invocation, ctx *workflow.Context) error {
	id := inv.StringParam("Id")
	if !inv.Check(ctx, check.CondLayerExists, check.Input{Value: id}, check.PolicyFail) {
		return nil
	}
	layer, _ := ctx.Layers.Get(id)
	workflow.RegisterEntity(inv, ctx.Layers, inv.StringParam("TargetId"), layer, inv.PolicyParam("IfExists"))
	return nil
}

// removeLayer deregisters a layer. A missing id is worth a warning but the
// command still completes; removal is idempotent.
type removeLayer struct{}

func (*removeLayer) Name() string { return "RemoveLayer" }

func (*removeLayer) Params() []model.ParamSpec {
	return []model.ParamSpec{
		{Name: "Id", Required: true, Kind: model.KindString},
	}
}

func (*removeLayer) Run(inv *workflow.Invocation, ctx *workflow.Context) error {
	id := inv.StringParam("Id")
	inv.Check(ctx, check.CondLayerExists, check.Input{Value: id}, check.PolicyWarn)
	ctx.Layers.Remove(id)
	return nil
}
