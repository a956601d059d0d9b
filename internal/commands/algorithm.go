package commands

import (
	"fmt"

	"geoflow/internal/check"
	"geoflow/internal/geo"
	"geoflow/internal/model"
	"geoflow/internal/workflow"
)

// mergeLayers folds two or more registered layers into one via the engine's
// merge algorithm. Pairwise merging goes through temporary registry entries;
// they are removed afterwards whether or not every merge step succeeded,
// which is why registry removal has to be idempotent.
type mergeLayers struct{}

func (*mergeLayers) Name() string { return "MergeLayers" }

func (*mergeLayers) Params() []model.ParamSpec {
	return []model.ParamSpec{
		{Name: "Ids", Required: true, Kind: model.KindList},
		{Name: "TargetId", Required: true, Kind: model.KindString},
		ifExistsSpec(),
	}
}

func (*mergeLayers) Run(inv *workflow.Invocation, ctx *workflow.Context) error {
	ids := inv.ListParam("Ids")
	if len(ids) < 2 {
		inv.Log(model.PhaseRun, model.SeverityFailure,
			fmt.Sprintf("MergeLayers needs at least two ids, got %d", len(ids)),
			"list two or more registered layer ids")
		return nil
	}
	for _, id := range ids {
		if !inv.Check(ctx, check.CondLayerExists, check.Input{Value: id}, check.PolicyFail) {
			return nil
		}
	}

	target := inv.StringParam("TargetId")
	var temps []string
	defer func() {
		for _, tmp := range temps {
			ctx.Layers.Remove(tmp)
		}
	}()

	acc, _ := ctx.Layers.Get(ids[0])
	for i, id := range ids[1:] {
		next, _ := ctx.Layers.Get(id)
		tmpID := fmt.Sprintf("%s__merge%d", target, i)
		if !inv.Check(ctx, check.CondLayerIDFree, check.Input{Value: tmpID}, check.PolicyFail) {
			return nil
		}
		out, err := ctx.Engine.RunAlgorithm("merge",
			map[string]string{"output": tmpID},
			map[string]geo.Layer{"a": acc, "b": next})
		if err != nil {
			return err
		}
		acc = out["output"]
		ctx.Layers.Register(tmpID, acc, model.CollisionReplace)
		temps = append(temps, tmpID)
	}

	workflow.RegisterEntity(inv, ctx.Layers, target, acc, inv.PolicyParam("IfExists"))
	return nil
}

// clipLayer clips a layer by a mask layer. The two inputs must share a
// coordinate system; a non-polygon mask is suspicious but not fatal.
type clipLayer struct{}

func (*clipLayer) Name() string { return "ClipLayer" }

func (*clipLayer) Params() []model.ParamSpec {
	return []model.ParamSpec{
		{Name: "Id", Required: true, Kind: model.KindString},
		{Name: "MaskId", Required: true, Kind: model.KindString},
		{Name: "TargetId", Required: true, Kind: model.KindString},
		ifExistsSpec(),
	}
}

func (*clipLayer) Run(inv *workflow.Invocation, ctx *workflow.Context) error {
	id, maskID := inv.StringParam("Id"), inv.StringParam("MaskId")
	if !inv.Check(ctx, check.CondLayerExists, check.Input{Value: id}, check.PolicyFail) {
		return nil
	}
	if !inv.Check(ctx, check.CondLayerExists, check.Input{Value: maskID}, check.PolicyFail) {
		return nil
	}
	if !inv.Check(ctx, check.CondSameCRS, check.Input{Value: id, Other: maskID}, check.PolicyWarnSkip) {
		return nil
	}
	inv.Check(ctx, check.CondGeometryKindIn,
		check.Input{Value: maskID, Set: []string{string(geo.GeometryPolygon)}}, check.PolicyWarn)

	target := inv.StringParam("TargetId")
	in, _ := ctx.Layers.Get(id)
	mask, _ := ctx.Layers.Get(maskID)
	out, err := ctx.Engine.RunAlgorithm("clip",
		map[string]string{"output": target},
		map[string]geo.Layer{"input": in, "mask": mask})
	if err != nil {
		return err
	}
	workflow.RegisterEntity(inv, ctx.Layers, target, out["output"], inv.PolicyParam("IfExists"))
	return nil
}

// reprojectLayer transforms a layer into a target coordinate system.
type reprojectLayer struct{}

func (*reprojectLayer) Name() string { return "ReprojectLayer" }

func (*reprojectLayer) Params() []model.ParamSpec {
	return []model.ParamSpec{
		{Name: "Id", Required: true, Kind: model.KindString},
		{Name: "TargetCrs", Required: true, Kind: model.KindString},
		{Name: "TargetId", Required: true, Kind: model.KindString},
		ifExistsSpec(),
	}
}

func (*reprojectLayer) Run(inv *workflow.Invocation, ctx *workflow.Context) error {
	id := inv.StringParam("Id")
	crs := inv.StringParam("TargetCrs")
	if !inv.Check(ctx, check.CondLayerExists, check.Input{Value: id}, check.PolicyFail) {
		return nil
	}
	if !inv.Check(ctx, check.CondValidCRSCode, check.Input{Value: crs}, check.PolicyFail) {
		return nil
	}

	target := inv.StringParam("TargetId")
	in, _ := ctx.Layers.Get(id)
	out, err := ctx.Engine.RunAlgorithm("reproject",
		map[string]string{"output": target, "crs": crs},
		map[string]geo.Layer{"input": in})
	if err != nil {
		return err
	}
	workflow.RegisterEntity(inv, ctx.Layers, target, out["output"], inv.PolicyParam("IfExists"))
	return nil
}
