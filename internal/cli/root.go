package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagDryRun  bool
	flagVerbose bool
	flagPlain   bool
)

func newRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rigup",
		Short: "VPS module installation orchestrator",
		Long: "rigup executes a compiled module manifest against a freshly provisioned\n" +
			"machine: every third-party installer is checksum-verified before it runs,\n" +
			"modules are idempotent and re-runnable, and long-running services launch\n" +
			"in detached sessions instead of blocking the pipeline.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "Report what would happen without fetching or executing anything")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Mirror the run log to stderr")
	cmd.PersistentFlags().BoolVar(&flagPlain, "plain", false, "Plain line output instead of the live progress view")

	cmd.AddCommand(newVersionCmd(version))
	cmd.AddCommand(newInstallCmd(version))
	cmd.AddCommand(newDoctorCmd())

	return cmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print rigup version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("rigup", version)
		},
	}
}

func Execute(version string) error {
	return newRootCmd(version).Execute()
}
