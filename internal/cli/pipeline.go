package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/rigup-sh/rigup/internal/checksum"
	"github.com/rigup-sh/rigup/internal/config"
	shexec "github.com/rigup-sh/rigup/internal/exec"
	"github.com/rigup-sh/rigup/internal/logging"
	"github.com/rigup-sh/rigup/internal/manifest"
)

// pipeline holds everything both commands need, constructed exactly once
// per invocation. RunConfig is resolved here and only here.
type pipeline struct {
	run      *config.Run
	logger   *slog.Logger
	manifest *manifest.Manifest
	registry *checksum.Registry
	router   *shexec.Router
	runner   shexec.Runner
}

// buildPipeline loads config, logging, the manifest, and the checksum
// registry. manifestArg, when non-empty, overrides the configured
// manifest path.
func buildPipeline(manifestArg string, dryRun bool) (*pipeline, error) {
	cfgPath := config.ConfigFilePath()
	cfg, err := config.LoadFromFile(cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("No config file found, using defaults.")
			fmt.Printf("Create %s to customize.\n\n", cfgPath)
			cfg = config.Defaults()
		} else {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	run, err := cfg.NewRun(dryRun)
	if err != nil {
		return nil, err
	}

	logger, err := logging.Setup(config.LogFilePath(), flagVerbose)
	if err != nil {
		logger = slog.New(logging.NopHandler{})
	}

	manifestPath := run.ManifestPath
	if manifestArg != "" {
		manifestPath = manifestArg
	}
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	// The registry is only a hard requirement when some module actually
	// fetches through it.
	reg, regErr := checksum.Load(run.RegistryPath)
	if regErr != nil {
		if m.NeedsRegistry() {
			return nil, fmt.Errorf("manifest has verified-fetch steps but no usable checksum registry: %w", regErr)
		}
		reg = checksum.Empty()
	}

	runner := &shexec.DefaultRunner{}
	router := shexec.NewRouter(runner, run.TargetUser, run.TargetHome, run.DryRun, logger)

	return &pipeline{
		run:      run,
		logger:   logger,
		manifest: m,
		registry: reg,
		router:   router,
		runner:   runner,
	}, nil
}
