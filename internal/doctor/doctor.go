// Package doctor re-runs every module's verify steps without installing
// anything, answering "is the system healthy right now?". It is the
// pipeline's idempotence oracle: immediately after a successful install
// run it must report zero failures, and two consecutive runs with no
// changes in between must produce identical output.
package doctor

import (
	"context"
	"log/slog"

	shexec "github.com/rigup-sh/rigup/internal/exec"
	"github.com/rigup-sh/rigup/internal/manifest"
)

// Status is the tri-state outcome for one module.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Check is one module's health verdict.
type Check struct {
	ModuleID string `json:"module_id"`
	Status   Status `json:"status"`
	Detail   string `json:"detail,omitempty"`
}

// Report tallies the run. Checks preserve manifest order so repeated
// reconciles are byte-for-byte stable.
type Report struct {
	Passed  int     `json:"passed"`
	Failed  int     `json:"failed"`
	Skipped int     `json:"skipped"`
	Checks  []Check `json:"checks"`
}

// Healthy reports whether no required verification failed.
func (r Report) Healthy() bool { return r.Failed == 0 }

// Reconciler runs verify steps through the identity router. It never
// touches install steps, the checksum registry, or the network.
type Reconciler struct {
	router *shexec.Router
	logger *slog.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(router *shexec.Router, logger *slog.Logger) *Reconciler {
	return &Reconciler{router: router, logger: logger}
}

// Reconcile verifies every module in order. A module fails if any
// required verify step fails; it is skipped if it has no verify steps or
// only optional ones failed; otherwise it passes.
func (r *Reconciler) Reconcile(ctx context.Context, mods []manifest.Module) Report {
	var report Report

	for i := range mods {
		mod := &mods[i]
		check := r.checkModule(ctx, mod)
		report.Checks = append(report.Checks, check)

		switch check.Status {
		case StatusPassed:
			report.Passed++
		case StatusFailed:
			report.Failed++
		case StatusSkipped:
			report.Skipped++
		}
	}

	r.logger.Info("reconcile finished",
		slog.Int("passed", report.Passed),
		slog.Int("failed", report.Failed),
		slog.Int("skipped", report.Skipped),
	)
	return report
}

func (r *Reconciler) checkModule(ctx context.Context, mod *manifest.Module) Check {
	if len(mod.Verify) == 0 {
		return Check{ModuleID: mod.ID, Status: StatusSkipped, Detail: "no verify steps"}
	}

	optionalFailed := 0
	for _, v := range mod.Verify {
		_, err := r.router.RunAs(ctx, mod.Identity, v.Command)
		if err == nil {
			continue
		}
		if v.Required {
			r.logger.Error("required verify failed",
				slog.String("module", mod.ID),
				slog.String("command", v.Command.String()),
			)
			return Check{ModuleID: mod.ID, Status: StatusFailed, Detail: v.Command.String()}
		}
		optionalFailed++
		r.logger.Warn("optional verify failed",
			slog.String("module", mod.ID),
			slog.String("command", v.Command.String()),
		)
	}

	if optionalFailed > 0 {
		return Check{ModuleID: mod.ID, Status: StatusSkipped, Detail: "optional verify failed"}
	}
	return Check{ModuleID: mod.ID, Status: StatusPassed}
}
