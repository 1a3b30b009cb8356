package cli

import (
	"fmt"

	"github.com/rigup-sh/rigup/internal/doctor"
	"github.com/rigup-sh/rigup/internal/engine"
	"github.com/rigup-sh/rigup/internal/tui/components"
)

func styles() components.Styles {
	return components.DefaultStyles()
}

// printInstallSummary reports the final tally, which is printed even when
// the run aborted partway through.
func printInstallSummary(summary engine.Summary, runErr error) {
	s := styles()

	for _, r := range summary.Results {
		switch r.State {
		case engine.StateSuccess:
			fmt.Printf("  %s %s\n", s.Success.Render(s.StatusDone), r.ModuleID)
		case engine.StateSkipped:
			fmt.Printf("  %s %s %s\n", s.Warning.Render(s.StatusSkipped), r.ModuleID,
				s.Muted.Render("(skipped)"))
		case engine.StateFailed:
			fmt.Printf("  %s %s %s\n", s.Error.Render(s.StatusFailed), r.ModuleID,
				s.Error.Render(fmt.Sprintf("failed at %q", r.FailedStep)))
		}
	}

	for _, skip := range summary.Skips {
		fmt.Printf("\n  %s %s: %s\n", s.Warning.Render("skip"), skip.ModuleID, skip.Reason)
	}

	tally := fmt.Sprintf("\nTotal: %d passed, %d failed, %d skipped",
		summary.Passed, summary.Failed, summary.Skipped)
	if runErr != nil {
		fmt.Println(s.Error.Render(tally))
	} else {
		fmt.Println(s.Body.Render(tally))
	}
}

func printDoctorReport(report doctor.Report) {
	s := styles()

	for _, check := range report.Checks {
		switch check.Status {
		case doctor.StatusPassed:
			fmt.Printf("  %s %s\n", s.Success.Render(s.StatusDone), check.ModuleID)
		case doctor.StatusSkipped:
			fmt.Printf("  %s %s %s\n", s.Warning.Render(s.StatusSkipped), check.ModuleID,
				s.Muted.Render("("+check.Detail+")"))
		case doctor.StatusFailed:
			fmt.Printf("  %s %s %s\n", s.Error.Render(s.StatusFailed), check.ModuleID,
				s.Error.Render(check.Detail))
		}
	}

	fmt.Printf("\nTotal: %d passed, %d failed, %d skipped\n",
		report.Passed, report.Failed, report.Skipped)
}
