// Package config builds the process-wide run configuration. A Run value
// is constructed once at startup from the config file plus CLI flags and
// then threaded through every constructor; no component reads environment
// variables or flags on its own.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config mirrors rigup.toml.
type Config struct {
	Target  TargetConfig  `toml:"target"`
	Mode    string        `toml:"mode"`
	Paths   PathsConfig   `toml:"paths"`
	Session SessionConfig `toml:"session"`
}

// TargetConfig names the unprivileged account installs run under.
type TargetConfig struct {
	User string `toml:"user"`
	Home string `toml:"home"`
}

// PathsConfig locates the run inputs.
type PathsConfig struct {
	Manifest string `toml:"manifest"`
	Registry string `toml:"registry"`
}

// SessionConfig tunes detached session launches.
type SessionConfig struct {
	SettleSeconds int `toml:"settle_seconds"`
}

// Defaults returns the configuration used when no rigup.toml exists.
func Defaults() *Config {
	return &Config{
		Target: TargetConfig{User: "deploy"},
		Mode:   "full",
		Paths: PathsConfig{
			Manifest: filepath.Join(ConfigDir(), "manifest.yaml"),
			Registry: filepath.Join(ConfigDir(), "checksums.toml"),
		},
		Session: SessionConfig{SettleSeconds: 2},
	}
}

// LoadFromFile reads rigup.toml, layering it over Defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Run is the resolved, read-only run configuration threaded through the
// pipeline. It is built exactly once, in the CLI layer.
type Run struct {
	DryRun        bool
	TargetUser    string
	TargetHome    string
	Mode          string
	ManifestPath  string
	RegistryPath  string
	SessionSettle time.Duration
}

// NewRun resolves a Config plus the dry-run flag into a Run. The target
// home directory is resolved here, once, and never re-derived.
func (c *Config) NewRun(dryRun bool) (*Run, error) {
	if c.Target.User == "" {
		return nil, fmt.Errorf("config: target.user must be set")
	}

	home := c.Target.Home
	if home == "" {
		home = filepath.Join("/home", c.Target.User)
	}

	settle := time.Duration(c.Session.SettleSeconds) * time.Second

	return &Run{
		DryRun:        dryRun,
		TargetUser:    c.Target.User,
		TargetHome:    home,
		Mode:          c.Mode,
		ManifestPath:  c.Paths.Manifest,
		RegistryPath:  c.Paths.Registry,
		SessionSettle: settle,
	}, nil
}
