// Package config loads the geoflow.yaml project configuration.
package config

import (
	"fmt"
	"os"
	"time"

	yamlv3 "gopkg.in/yaml.v3"
)

type Config struct {
	Project Project `yaml:"project"`
	Run     Run     `yaml:"run"`
	Logging Logging `yaml:"logging"`
	Fetch   Fetch   `yaml:"fetch"`
	Watch   Watch   `yaml:"watch"`
}

type Project struct {
	Name       string `yaml:"name"`
	WorkingDir string `yaml:"working_dir"`
	TempDir    string `yaml:"temp_dir"`
}

type Run struct {
	ReportDir string `yaml:"report_dir"`
	AuditDir  string `yaml:"audit_dir"`
	LockFile  string `yaml:"lock_file"`
}

type Logging struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

type Fetch struct {
	TimeoutSec int `yaml:"timeout_sec"`
}

type Watch struct {
	DebounceMs int `yaml:"debounce_ms"`
}

// Default returns the configuration used when no geoflow.yaml is present.
func Default() Config {
	return Config{
		Project: Project{
			Name:       "geoflow",
			WorkingDir: ".",
			TempDir:    "",
		},
		Run: Run{
			ReportDir: "reports",
			AuditDir:  "audit",
			LockFile:  ".geoflow.lock",
		},
		Logging: Logging{Level: "info"},
		Fetch:   Fetch{TimeoutSec: 60},
		Watch:   Watch{DebounceMs: 500},
	}
}

// Load reads path and overlays it on the defaults. A missing file is not an
// error; the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yamlv3.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging level %q", c.Logging.Level)
	}
	if c.Fetch.TimeoutSec < 0 {
		return fmt.Errorf("fetch timeout_sec must not be negative")
	}
	if c.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch debounce_ms must not be negative")
	}
	return nil
}

// FetchTimeout returns the download timeout as a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSec) * time.Second
}

// WatchDebounce returns the watch debounce window as a duration.
func (c Config) WatchDebounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}
