package commands

import (
	"geoflow/internal/check"
	"geoflow/internal/model"
	"geoflow/internal/workflow"
)

type readTable struct{}

func (*readTable) Name() string { return "ReadTable" }

func (*readTable) Params() []model.ParamSpec {
	return []model.ParamSpec{
		{Name: "Path", Required: true, Kind: model.KindString},
		{Name: "Id", Required: true, Kind: model.KindString},
		ifExistsSpec(),
	}
}

func (*readTable) Run(inv *workflow.Invocation, ctx *workflow.Context) error {
	path := ctx.ResolvePath(inv.StringParam("Path"))
	if !inv.Check(ctx, check.CondFileExists, check.Input{Value: path}, check.PolicyFail) {
		return nil
	}
	table, err := ctx.Codec.ReadTable(path)
	if err != nil {
		return err
	}
	workflow.RegisterEntity(inv, ctx.Tables, inv.StringParam("Id"), table, inv.PolicyParam("IfExists"))
	return nil
}

type writeTable struct{}

func (*writeTable) Name() string { return "WriteTable" }

func (*writeTable) Params() []model.ParamSpec {
	return []model.ParamSpec{
		{Name: "Id", Required: true, Kind: model.KindString},
		{Name: "Path", Required: true, Kind: model.KindString},
		{Name: "Sheet", Kind: model.KindString},
	}
}

func (*writeTable) Run(inv *workflow.Invocation, ctx *workflow.Context) error {
	id := inv.StringParam("Id")
	if !inv.Check(ctx, check.CondTableExists, check.Input{Value: id}, check.PolicyFail) {
		return nil
	}
	table, _ := ctx.Tables.Get(id)
	return ctx.Codec.WriteTable(table, ctx.ResolvePath(inv.StringParam("Path")), inv.StringParam("Sheet"))
}
