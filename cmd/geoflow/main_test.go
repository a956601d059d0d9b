package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"geoflow/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	c := config.Default()
	c.Project.WorkingDir = dir
	c.Run.ReportDir = filepath.Join(dir, "reports")
	c.Run.AuditDir = filepath.Join(dir, "audit")
	c.Run.LockFile = filepath.Join(dir, ".geoflow.lock")
	return c
}

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "workflow.gfs")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRunOnceSuccess(t *testing.T) {
	logger = zap.NewNop()
	cfg = testConfig(t)
	script := writeScript(t, cfg.Project.WorkingDir, `
# two-step workflow
SetProperty(Name="Region", Value="north")
SetProperty(Name="OutputDir", Value="${WorkingDir}/out")
`)

	summary, err := runOnce(context.Background(), script)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Executed)
	assert.Equal(t, 0, summary.Failed)

	entries, err := os.ReadDir(cfg.Run.ReportDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "run-")

	assert.FileExists(t, filepath.Join(cfg.Run.AuditDir, "audit.jsonl"))
}

func TestRunOnceContinuesPastFailure(t *testing.T) {
	logger = zap.NewNop()
	cfg = testConfig(t)
	script := writeScript(t, cfg.Project.WorkingDir, `
RemoveLayer(LayerID="absent")
SetProperty(Name="A", Value="1")
`)

	summary, err := runOnce(context.Background(), script)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Executed)
	assert.Equal(t, 1, summary.Failed)
}

func TestRunOnceUnknownCommand(t *testing.T) {
	logger = zap.NewNop()
	cfg = testConfig(t)
	script := writeScript(t, cfg.Project.WorkingDir, `Teleport(Dest="mars")`+"\n")

	_, err := runOnce(context.Background(), script)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Teleport")
}

func TestValidateWorkflowReportsBadParams(t *testing.T) {
	logger = zap.NewNop()
	cfg = testConfig(t)
	script := writeScript(t, cfg.Project.WorkingDir, `SetProperty(Nam="typo", Value="x")`+"\n")

	err := validateWorkflow(script)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed validation")
}

func TestFormatWorkflowNormalizes(t *testing.T) {
	logger = zap.NewNop()
	cfg = testConfig(t)
	script := writeScript(t, cfg.Project.WorkingDir, `
# comment dropped
SetProperty(  Value="1" ,Name="A" )
`)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	require.NoError(t, formatWorkflow(cmd, script))
	assert.Equal(t, "SetProperty(Name=\"A\", Value=\"1\")\n", out.String())
}

func TestRunWorkflowHoldsLock(t *testing.T) {
	logger = zap.NewNop()
	cfg = testConfig(t)
	script := writeScript(t, cfg.Project.WorkingDir, `SetProperty(Name="A", Value="1")`+"\n")

	watchMode = false
	require.NoError(t, runWorkflow(script))
	// Lock is released after the run, so a second run succeeds.
	require.NoError(t, runWorkflow(script))
}
