package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/changeloger/changeloger/internal/config"
	clierrors "github.com/changeloger/changeloger/internal/errors"
	"github.com/changeloger/changeloger/internal/output"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a commented configuration file",
		Long: `Write changeloger.config.yaml with every option at its default value.

An existing config file is left unchanged (use --force to overwrite).`,
		Example: `  # Create changeloger.config.yaml in the current directory
  changeloger init

  # Regenerate an existing file
  changeloger init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")

	if existing := config.FindProjectConfig(dir); existing != "" && !force {
		return clierrors.NewConfigError(
			fmt.Sprintf("config file already exists: %s", existing),
			"Edit the existing file",
			"Or run 'changeloger init --force' to overwrite it",
		)
	}

	path := filepath.Join(dir, config.DefaultInitFileName)
	if err := os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
		return clierrors.Wrap(fmt.Errorf("writing %s: %w", path, err), clierrors.Runtime)
	}
	output.PrintSuccess(cmd.OutOrStdout(), "Created "+path)
	return nil
}
