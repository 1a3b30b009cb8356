package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rigup-sh/rigup/internal/manifest"
)

// SkipRecord notes an optional module whose failure did not abort the run.
type SkipRecord struct {
	ModuleID string `json:"module_id"`
	Reason   string `json:"reason"`
}

// Summary is the whole-run tally. It is always complete, even when the
// run aborted partway through a required module.
type Summary struct {
	RunID   string
	Passed  int
	Failed  int
	Skipped int
	Skips   []SkipRecord
	Results []ModuleResult
}

// ModuleCallback is invoked when a module begins executing.
type ModuleCallback func(mod *manifest.Module, index, total int)

// InstallAll runs modules strictly in manifest order. A required module's
// failure aborts the run immediately with a non-nil error; an optional
// module's failure records a SkipRecord and continues. The returned
// Summary is complete either way.
func (in *Installer) InstallAll(ctx context.Context, mods []manifest.Module, onModule ModuleCallback) (Summary, error) {
	summary := Summary{RunID: uuid.NewString()}
	logger := in.logger.With(slog.String("run_id", summary.RunID))

	logger.Info("run starting",
		slog.Int("modules", len(mods)),
		slog.Bool("dry_run", in.cfg.DryRun),
		slog.String("mode", in.cfg.Mode),
	)

	for i := range mods {
		mod := &mods[i]
		if onModule != nil {
			onModule(mod, i, len(mods))
		}

		result := in.InstallModule(ctx, mod)
		summary.Results = append(summary.Results, result)

		if result.Err == nil {
			summary.Passed++
			logger.Info("module succeeded", slog.String("module", mod.ID))
			continue
		}

		if mod.Required {
			summary.Failed++
			logger.Error("required module failed, aborting run",
				slog.String("module", mod.ID),
				slog.String("step", result.FailedStep),
				slog.String("error", result.Err.Error()),
			)
			return summary, fmt.Errorf("required module %q failed at %s: %w", mod.ID, result.FailedStep, result.Err)
		}

		summary.Skipped++
		summary.Skips = append(summary.Skips, SkipRecord{
			ModuleID: mod.ID,
			Reason:   result.Err.Error(),
		})
		// Mark the stored result as a skip at run level.
		summary.Results[len(summary.Results)-1].State = StateSkipped
		logger.Warn("optional module failed, continuing",
			slog.String("module", mod.ID),
			slog.String("step", result.FailedStep),
			slog.String("error", result.Err.Error()),
		)
	}

	logger.Info("run finished",
		slog.Int("passed", summary.Passed),
		slog.Int("failed", summary.Failed),
		slog.Int("skipped", summary.Skipped),
	)
	return summary, nil
}
