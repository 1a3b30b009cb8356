// Package engine executes an ordered module list against the host. Each
// module moves through a small state machine: contracts are checked
// first, install steps run through the checksum-verified fetch path or
// the identity router, verify steps prove the result, and the module's
// required flag decides whether a failure aborts the run or records a
// skip.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rigup-sh/rigup/internal/checksum"
	"github.com/rigup-sh/rigup/internal/config"
	"github.com/rigup-sh/rigup/internal/contract"
	shexec "github.com/rigup-sh/rigup/internal/exec"
	"github.com/rigup-sh/rigup/internal/fetch"
	"github.com/rigup-sh/rigup/internal/manifest"
	"github.com/rigup-sh/rigup/internal/session"
)

// Step failures surfaced by the installer. Checksum and registry errors
// from the fetch path wrap fetch.ErrChecksumMismatch and
// checksum.ErrNotFound respectively; contract failures wrap
// contract.ErrUnsatisfied.
var (
	ErrInstallStepFailed = errors.New("install step failed")
	ErrVerifyStepFailed  = errors.New("verify step failed")
)

// State tracks a module through the installer.
type State int

const (
	StatePending State = iota
	StateContractChecked
	StateDryRunReported
	StateInstalled
	StateVerified
	StateSuccess
	StateFailed
	StateSkipped
)

// String returns a short name for logging.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateContractChecked:
		return "contract-checked"
	case StateDryRunReported:
		return "dry-run-reported"
	case StateInstalled:
		return "installed"
	case StateVerified:
		return "verified"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	case StateSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ModuleResult captures the outcome of one module.
type ModuleResult struct {
	ModuleID   string
	State      State
	FailedStep string
	Err        error
}

// StepCallback is invoked after each install or verify step is processed,
// so the CLI or TUI can display progress.
type StepCallback func(mod *manifest.Module, stepName string, index, total int, err error)

// PreStepCallback is invoked before each step begins.
type PreStepCallback func(mod *manifest.Module, stepName string, index, total int)

// Installer wires the pipeline components together. All collaborators are
// constructed once at startup and passed in; the installer holds no
// ambient state.
type Installer struct {
	cfg       *config.Run
	registry  *checksum.Registry
	verifier  *fetch.Verifier
	router    *shexec.Router
	contracts *contract.Board
	sessions  *session.Manager
	logger    *slog.Logger

	preStep  PreStepCallback
	postStep StepCallback
}

// NewInstaller creates an Installer over the given collaborators.
func NewInstaller(
	cfg *config.Run,
	registry *checksum.Registry,
	verifier *fetch.Verifier,
	router *shexec.Router,
	contracts *contract.Board,
	sessions *session.Manager,
	logger *slog.Logger,
) *Installer {
	return &Installer{
		cfg:       cfg,
		registry:  registry,
		verifier:  verifier,
		router:    router,
		contracts: contracts,
		sessions:  sessions,
		logger:    logger,
	}
}

// SetCallback registers a post-step callback. Pass nil to clear.
func (in *Installer) SetCallback(cb StepCallback) { in.postStep = cb }

// SetPreStepCallback registers a pre-step callback. Pass nil to clear.
func (in *Installer) SetPreStepCallback(cb PreStepCallback) { in.preStep = cb }

// InstallModule runs one module through the state machine and returns its
// result. It never decides run-level policy; that is InstallAll's job.
func (in *Installer) InstallModule(ctx context.Context, mod *manifest.Module) ModuleResult {
	result := ModuleResult{ModuleID: mod.ID, State: StatePending}
	total := len(mod.Install) + len(mod.Verify)

	// Contract gate. An unmet contract is always fatal for this module.
	for _, key := range mod.Requires {
		if err := in.contracts.Require(key); err != nil {
			result.State = StateFailed
			result.FailedStep = "contracts"
			result.Err = fmt.Errorf("module %q blocked: %w", mod.ID, err)
			in.logger.Error("contract unsatisfied",
				slog.String("module", mod.ID),
				slog.String("contract", key),
			)
			return result
		}
	}
	result.State = StateContractChecked

	// Install steps, strictly in order; first failure aborts the module.
	for i, step := range mod.Install {
		name := installStepName(step)
		if in.preStep != nil {
			in.preStep(mod, name, i, total)
		}

		err := in.runInstallStep(ctx, mod, step, i)
		if in.postStep != nil {
			in.postStep(mod, name, i, total, err)
		}
		if err != nil {
			result.State = StateFailed
			result.FailedStep = name
			result.Err = err
			in.logger.Error("install step failed",
				slog.String("module", mod.ID),
				slog.String("step", name),
				slog.String("error", err.Error()),
			)
			return result
		}
	}
	if in.cfg.DryRun {
		result.State = StateDryRunReported
	} else {
		result.State = StateInstalled
	}

	// Verify steps run under the module's declared identity. An optional
	// verify failure only warns; a required one fails the module.
	for i, v := range mod.Verify {
		name := "verify: " + v.Command.String()
		idx := len(mod.Install) + i
		if in.preStep != nil {
			in.preStep(mod, name, idx, total)
		}

		_, err := in.router.RunAs(ctx, mod.Identity, v.Command)
		if err != nil && !v.Required {
			in.logger.Warn("optional verify failed",
				slog.String("module", mod.ID),
				slog.String("command", v.Command.String()),
				slog.String("error", err.Error()),
			)
			err = nil
		} else if err != nil {
			err = fmt.Errorf("%w: module %q: %s: %v", ErrVerifyStepFailed, mod.ID, v.Command.String(), err)
		}

		if in.postStep != nil {
			in.postStep(mod, name, idx, total, err)
		}
		if err != nil {
			result.State = StateFailed
			result.FailedStep = name
			result.Err = err
			in.logger.Error("verify step failed",
				slog.String("module", mod.ID),
				slog.String("command", v.Command.String()),
			)
			return result
		}
	}
	result.State = StateVerified

	// Record fulfilled contracts. Dry runs mark them too so later modules
	// can still be simulated.
	in.contracts.Satisfy(mod.ContractKey())
	for _, key := range mod.Provides {
		in.contracts.Satisfy(key)
	}

	result.State = StateSuccess
	return result
}

// runInstallStep executes one install step: either a local command routed
// by identity, or a verified fetch-and-execute through the registry.
func (in *Installer) runInstallStep(ctx context.Context, mod *manifest.Module, step manifest.InstallStep, index int) error {
	if !step.IsFetch() {
		if mod.Detached {
			return in.launchDetached(ctx, mod, *step.Run, index)
		}
		if _, err := in.router.RunAs(ctx, mod.Identity, *step.Run); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInstallStepFailed, step.Run.String(), err)
		}
		return nil
	}

	entry, err := in.registry.Lookup(step.FetchRun.Tool)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInstallStepFailed, err)
	}

	if in.cfg.DryRun {
		in.logger.Info("dry-run",
			slog.String("module", mod.ID),
			slog.String("would_fetch", entry.URL),
			slog.String("pinned_sha256", entry.SHA256),
		)
		return nil
	}

	body, err := in.verifier.FetchAndVerify(ctx, entry.URL, entry.SHA256)
	if err != nil {
		return fmt.Errorf("%w: tool %q: %w", ErrInstallStepFailed, step.FetchRun.Tool, err)
	}

	path, err := in.writeInstaller(mod, step.FetchRun.Tool, body)
	if err != nil {
		return fmt.Errorf("%w: staging installer for %q: %v", ErrInstallStepFailed, step.FetchRun.Tool, err)
	}
	defer os.RemoveAll(filepath.Dir(path))

	cmd := manifest.Command{Program: path, Args: step.FetchRun.Args}
	if mod.Detached {
		return in.launchDetached(ctx, mod, cmd, index)
	}
	if _, err := in.router.RunAs(ctx, mod.Identity, cmd); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInstallStepFailed, cmd.String(), err)
	}
	return nil
}

// launchDetached starts an install command in a named persistent session
// instead of blocking the pipeline. Verification has already happened by
// the time we get here, so the trust boundary matches the sync path.
func (in *Installer) launchDetached(ctx context.Context, mod *manifest.Module, cmd manifest.Command, index int) error {
	name := SessionName(mod.ID, index)
	wrapped := in.router.Wrap(mod.Identity, cmd)

	if in.cfg.DryRun {
		in.logger.Info("dry-run",
			slog.String("module", mod.ID),
			slog.String("would_launch_session", name),
			slog.String("command", wrapped.String()),
		)
		return nil
	}

	if err := in.sessions.Start(ctx, name, wrapped); err != nil {
		return fmt.Errorf("%w: %w", ErrInstallStepFailed, err)
	}
	return nil
}

// writeInstaller stages verified bytes as an executable in a fresh
// private temp directory. The staged file must be readable by the target
// user when the module runs unprivileged.
func (in *Installer) writeInstaller(mod *manifest.Module, tool string, body []byte) (string, error) {
	dir, err := os.MkdirTemp("", "rigup-"+tool+"-*")
	if err != nil {
		return "", err
	}

	var mode os.FileMode = 0700
	if mod.Identity == manifest.TargetUser {
		mode = 0755
		if err := os.Chmod(dir, 0755); err != nil {
			os.RemoveAll(dir)
			return "", err
		}
	}

	path := filepath.Join(dir, tool+".install")
	if err := os.WriteFile(path, body, mode); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return path, nil
}

// SessionName returns the detached session name for a module's install
// step. The first step uses the bare module name so operators can attach
// with the obvious name.
func SessionName(moduleID string, index int) string {
	if index == 0 {
		return "rigup-" + moduleID
	}
	return fmt.Sprintf("rigup-%s-%d", moduleID, index)
}

func installStepName(step manifest.InstallStep) string {
	if step.Name != "" {
		return step.Name
	}
	if step.IsFetch() {
		return fmt.Sprintf("fetch %s", step.FetchRun.Tool)
	}
	return step.Run.String()
}
