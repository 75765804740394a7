// Package cli implements the changeloger command tree.
package cli

import (
	"context"
	"os"

	clierrors "github.com/changeloger/changeloger/internal/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changeloger [path]",
		Short: "Generate a changelog from git history",
		Long: `Generate and maintain a Markdown changelog from a git repository's history.

Each run reads the commits since the previous release (the tag named in the
changelog's latest version header), classifies them by conventional commit
type and writes a new release section above the previous content.

Configuration is loaded with the following priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (CHANGELOGER_*)
  3. Project config (changeloger.config.json, .yaml or .yml)
  4. Built-in defaults`,
		Example: `  # Add a patch release to CHANGELOG.md
  changeloger

  # Minor release, grouped by commit type
  changeloger --minor --group

  # Preview without writing
  changeloger --dry-run

  # Release, bump package.json, commit, tag and push
  changeloger --bump --commit --tag --push

  # Explicit commit range
  changeloger --from v1.2.0 --to HEAD~3`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runGenerate,
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierrors.WrapWithMessage(err, clierrors.Usage, "invalid arguments",
			"Run 'changeloger --help' for usage")
	})

	addGenerateFlags(cmd)
	cmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext is Execute with a caller-provided context.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		clierrors.FprintError(os.Stderr, err, !color.NoColor)
	}
	return err
}
