package cli

import (
	"fmt"

	clierrors "github.com/changeloger/changeloger/internal/errors"
	"github.com/changeloger/changeloger/internal/health"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor [path]",
		Short: "Check git, the repository and the configuration",
		Long: `Check that everything a release run needs is available: the git CLI,
a git repository at path, a valid configuration and, when bumpPackage is on,
the package bump command.`,
		Example: `  changeloger doctor
  changeloger doctor ../my-project --config release.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			configPath, _ := cmd.Flags().GetString("config")

			report := health.RunHealthChecks(health.Options{Dir: dir, ConfigPath: configPath})
			fmt.Fprint(cmd.OutOrStdout(), health.FormatReport(report))
			if !report.Passed {
				return clierrors.NewRuntimeError("health checks failed",
					"Fix the failed checks listed above")
			}
			return nil
		},
	}
	cmd.Flags().String("config", "", "Config file (default: changeloger.config.{json,yaml,yml} in path)")
	return cmd
}
