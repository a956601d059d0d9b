package commands

import (
	"fmt"
	"net/url"

	"geoflow/internal/check"
	"geoflow/internal/geo"
	"geoflow/internal/model"
	"geoflow/internal/workflow"
)

// download fetches a remote resource into the working directory.
type download struct{}

func (*download) Name() string { return "Download" }

func (*download) Params() []model.ParamSpec {
	return []model.ParamSpec{
		{Name: "Url", Required: true, Kind: model.KindString},
		{Name: "Path", Required: true, Kind: model.KindString},
	}
}

// Discover pre-checks the URL shape so obviously broken workflows surface
// before any network traffic.
func (*download) Discover(inv *workflow.Invocation, ctx *workflow.Context) error {
	raw := inv.StringParam("Url")
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("url %q does not look fetchable", raw)
	}
	return nil
}

func (*download) Run(inv *workflow.Invocation, ctx *workflow.Context) error {
	dest := ctx.ResolvePath(inv.StringParam("Path"))
	return ctx.Fetcher.Download(ctx.Ctx, inv.StringParam("Url"), dest)
}

// unzip extracts an archive and optionally registers the destination
// directory as a datastore.
type unzip struct{}

func (*unzip) Name() string { return "Unzip" }

func (*unzip) Params() []model.ParamSpec {
	return []model.ParamSpec{
		{Name: "Path", Required: true, Kind: model.KindString},
		{Name: "TargetDir", Required: true, Kind: model.KindString},
		{Name: "Id", Kind: model.KindString},
		ifExistsSpec(),
	}
}

func (*unzip) Run(inv *workflow.Invocation, ctx *workflow.Context) error {
	src := ctx.ResolvePath(inv.StringParam("Path"))
	if !inv.Check(ctx, check.CondFileExists, check.Input{Value: src}, check.PolicyFail) {
		return nil
	}
	dest := ctx.ResolvePath(inv.StringParam("TargetDir"))
	if err := ctx.Archiver.Unzip(src, dest); err != nil {
		return err
	}
	if id := inv.StringParam("Id"); id != "" {
		workflow.RegisterEntity[geo.DataStore](inv, ctx.DataStores, id, geo.NewFolderStore(id, dest), inv.PolicyParam("IfExists"))
	}
	return nil
}
