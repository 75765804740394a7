package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/changeloger/changeloger/internal/build"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Display version information (v)",
		Long:    "Display version, commit, build date, and Go version information for changeloger",
		Example: `  # Show version info
  changeloger version

  # Plain output (for scripts)
  changeloger version --plain`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			plain, _ := cmd.Flags().GetBool("plain")
			printVersion(cmd.OutOrStdout(), plain)
		},
	}
	cmd.Flags().Bool("plain", false, "Plain output without formatting")
	return cmd
}

// printVersion prints build information. The plain form is one
// "key: value" line per field after the name line.
func printVersion(out io.Writer, plain bool) {
	info := []struct {
		label string
		value string
	}{
		{"commit", build.Commit},
		{"built", build.BuildDate},
		{"go", runtime.Version()},
		{"platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)},
	}

	if plain {
		fmt.Fprintf(out, "changeloger %s\n", build.Version)
		for _, i := range info {
			fmt.Fprintf(out, "%s: %s\n", i.label, i.value)
		}
		return
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", cyan("changeloger"), build.Version)
	if build.IsDevBuild() {
		fmt.Fprintln(out, dim("development build"))
	}
	for _, i := range info {
		fmt.Fprintf(out, "  %-9s %s\n", dim(i.label), i.value)
	}
}
