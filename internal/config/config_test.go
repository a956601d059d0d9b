package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "geoflow.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 60*time.Second, cfg.FetchTimeout())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "geoflow.yaml")
	doc := `
project:
  name: coastline
  working_dir: /srv/data
logging:
  level: debug
fetch:
  timeout_sec: 10
watch:
  debounce_ms: 250
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "coastline", cfg.Project.Name)
	assert.Equal(t, "/srv/data", cfg.Project.WorkingDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout())
	assert.Equal(t, 250*time.Millisecond, cfg.WatchDebounce())
	// Untouched sections keep their defaults.
	assert.Equal(t, "reports", cfg.Run.ReportDir)
	assert.Equal(t, ".geoflow.lock", cfg.Run.LockFile)
}

func TestLoadRejectsBadLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "geoflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown logging level")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "geoflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - ]["), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
