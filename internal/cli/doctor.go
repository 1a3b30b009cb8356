package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rigup-sh/rigup/internal/doctor"
)

func newDoctorCmd() *cobra.Command {
	var flagJSON bool

	cmd := &cobra.Command{
		Use:   "doctor [manifest]",
		Short: "Check system health without installing anything",
		Long: "Re-run every module's verify steps and report a passed/failed/skipped\n" +
			"tally. Exits non-zero iff a required verification failed.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifestArg := ""
			if len(args) == 1 {
				manifestArg = args[0]
			}
			return runDoctor(manifestArg, flagJSON)
		},
	}

	cmd.Flags().BoolVar(&flagJSON, "json", false, "Emit the report as JSON")
	return cmd
}

func runDoctor(manifestArg string, asJSON bool) error {
	// Doctor never installs, so it never dry-runs either.
	p, err := buildPipeline(manifestArg, false)
	if err != nil {
		return err
	}

	reconciler := doctor.NewReconciler(p.router, p.logger)
	report := reconciler.Reconcile(context.Background(), p.manifest.Modules)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printDoctorReport(report)
	}

	if !report.Healthy() {
		return fmt.Errorf("%d required verification(s) failed", report.Failed)
	}
	return nil
}
