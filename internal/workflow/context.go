// Package workflow holds the execution core: the shared context, the command
// invocation state machine, the script parser, and the sequential processor.
package workflow

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"geoflow/internal/check"
	"geoflow/internal/geo"
	"geoflow/internal/property"
	"geoflow/internal/registry"
)

// Context is the shared state one workflow run mutates: the property store,
// one registry per entity kind, the external collaborators, and the working
// directories. It is created for a single run and passed explicitly into
// every command; nothing here is process-global.
type Context struct {
	Props      *property.Store
	Layers     *registry.Registry[geo.Layer]
	Tables     *registry.Registry[geo.Table]
	DataStores *registry.Registry[geo.DataStore]

	Engine   geo.Engine
	Codec    geo.Codec
	Archiver geo.Archiver
	Fetcher  geo.Fetcher

	WorkDir string
	TempDir string

	// Ctx is forwarded to blocking collaborators (downloads).
	Ctx context.Context
	Log *zap.Logger
}

// Collaborators bundles the external services a context is wired with.
type Collaborators struct {
	Engine   geo.Engine
	Codec    geo.Codec
	Archiver geo.Archiver
	Fetcher  geo.Fetcher
}

// NewContext builds a run context. WorkingDir and TempDir are seeded into the
// property store as write-once built-ins.
func NewContext(ctx context.Context, workDir, tempDir string, collab Collaborators, log *zap.Logger) (*Context, error) {
	if log == nil {
		log = zap.NewNop()
	}
	props := property.NewStore()
	if err := props.SetString(property.WorkingDirProperty, workDir); err != nil {
		return nil, fmt.Errorf("seed %s: %w", property.WorkingDirProperty, err)
	}
	if err := props.SetString(property.TempDirProperty, tempDir); err != nil {
		return nil, fmt.Errorf("seed %s: %w", property.TempDirProperty, err)
	}
	return &Context{
		Props:      props,
		Layers:     registry.New[geo.Layer]("layer"),
		Tables:     registry.New[geo.Table]("table"),
		DataStores: registry.New[geo.DataStore]("datastore"),
		Engine:     collab.Engine,
		Codec:      collab.Codec,
		Archiver:   collab.Archiver,
		Fetcher:    collab.Fetcher,
		WorkDir:    workDir,
		TempDir:    tempDir,
		Ctx:        ctx,
		Log:        log,
	}, nil
}

// CheckEnv exposes the slice of the context the check dispatcher reads.
func (c *Context) CheckEnv() *check.Env {
	return &check.Env{
		Layers:     c.Layers,
		Tables:     c.Tables,
		DataStores: c.DataStores,
		Props:      c.Props,
	}
}

// ResolvePath anchors a relative path at the working directory. Absolute
// paths pass through unchanged.
func (c *Context) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.WorkDir, p)
}

// Teardown clears the registries at the end of a run. Entry lifetime is
// bounded by the run; a re-executed workflow starts from an empty context.
func (c *Context) Teardown() {
	c.Layers.Clear()
	c.Tables.Clear()
	c.DataStores.Clear()
}
