package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/rigup-sh/rigup/internal/config"
	"github.com/rigup-sh/rigup/internal/contract"
	"github.com/rigup-sh/rigup/internal/engine"
	"github.com/rigup-sh/rigup/internal/fetch"
	"github.com/rigup-sh/rigup/internal/manifest"
	"github.com/rigup-sh/rigup/internal/session"
	"github.com/rigup-sh/rigup/internal/state"
	"github.com/rigup-sh/rigup/internal/tui/progress"
)

func newInstallCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "install [manifest]",
		Short: "Run the full installation pipeline",
		Long: "Execute every module in the manifest in order. A required module's\n" +
			"failure aborts the run with a non-zero exit; an optional module's\n" +
			"failure is recorded as a skip and the run continues.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifestArg := ""
			if len(args) == 1 {
				manifestArg = args[0]
			}
			return runInstall(manifestArg, version)
		},
	}
}

func runInstall(manifestArg, version string) error {
	p, err := buildPipeline(manifestArg, flagDryRun)
	if err != nil {
		return err
	}

	installer := engine.NewInstaller(
		p.run,
		p.registry,
		fetch.New(nil, p.logger),
		p.router,
		contract.NewBoard(),
		session.NewManager(&session.Tmux{Exec: p.runner}, p.run.SessionSettle, p.logger),
		p.logger,
	)

	if flagDryRun {
		fmt.Println("=== DRY RUN ===")
		fmt.Println()
	}

	var summary engine.Summary
	var runErr error

	if useProgressView() {
		summary, runErr = runWithProgressView(installer, p.manifest.Modules)
	} else {
		summary, runErr = runPlain(installer, p.manifest.Modules)
	}

	fmt.Println()
	printInstallSummary(summary, runErr)

	saveRunState(p, summary, version)

	if runErr != nil {
		fmt.Println()
		fmt.Println("Install failed. Fix the issue and re-run — modules are idempotent.")
		return runErr
	}
	return nil
}

// useProgressView picks the live view only for interactive real runs.
func useProgressView() bool {
	if flagPlain || flagDryRun {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

func runWithProgressView(installer *engine.Installer, mods []manifest.Module) (engine.Summary, error) {
	bridge := progress.NewBridge(installer, mods)
	model := progress.New(styles(), bridge)

	if _, err := tea.NewProgram(model).Run(); err != nil {
		// The view failed, not the pipeline; fall back to its outcome.
		fmt.Fprintf(os.Stderr, "progress view error: %v\n", err)
	}
	return bridge.Summary()
}

func runPlain(installer *engine.Installer, mods []manifest.Module) (engine.Summary, error) {
	installer.SetCallback(func(mod *manifest.Module, stepName string, index, total int, err error) {
		prefix := fmt.Sprintf("  [%d/%d]", index+1, total)
		if err != nil {
			fmt.Printf("%s  %s FAILED: %v\n", prefix, stepName, err)
			return
		}
		fmt.Printf("%s  %s\n", prefix, stepName)
	})

	return installer.InstallAll(context.Background(), mods, func(mod *manifest.Module, index, total int) {
		fmt.Printf("\n%s (%d/%d) %s\n", mod.ID, index+1, total, mod.Description)
	})
}

func saveRunState(p *pipeline, summary engine.Summary, version string) {
	if p.run.DryRun {
		return
	}

	st, err := state.Load(config.StateFilePath())
	if err != nil {
		st = &state.State{}
	}
	st.LastRunID = summary.RunID
	st.LastRun = time.Now()
	st.LastMode = p.run.Mode
	st.RigupVersion = version
	for _, r := range summary.Results {
		switch r.State {
		case engine.StateSuccess:
			st.AddInstalled(r.ModuleID)
		case engine.StateSkipped:
			st.AddSkipped(r.ModuleID)
		}
	}
	if err := state.Save(config.StateFilePath(), st); err != nil {
		p.logger.Error("failed to save state", "error", err)
	}
}
