package cli

import (
	"context"
	"io"
	"time"

	"github.com/changeloger/changeloger/internal/config"
	clierrors "github.com/changeloger/changeloger/internal/errors"
	"github.com/changeloger/changeloger/internal/git"
	"github.com/changeloger/changeloger/internal/lifecycle"
	"github.com/changeloger/changeloger/internal/logging"
	"github.com/changeloger/changeloger/internal/output"
	"github.com/changeloger/changeloger/internal/release"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// dateLayout is the --date format.
const dateLayout = "2006-01-02"

func addGenerateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Bool("major", false, "Bump the major version")
	f.Bool("minor", false, "Bump the minor version")
	f.Bool("patch", false, "Bump the patch version")
	cmd.MarkFlagsMutuallyExclusive("major", "minor", "patch")

	f.String("from", "", "Start commit, exclusive (default: the previous release tag)")
	f.String("to", "", "End commit, inclusive (default: HEAD); requires --from")
	f.Bool("pr-only", false, "Only list pull request merges")
	f.Bool("group", false, "Group entries by commit type")
	f.String("date", "", "Release date as YYYY-MM-DD (default: today)")

	f.Bool("bump", false, "Bump the package.json version")
	f.Bool("commit", false, "Commit the changelog")
	f.Bool("tag", false, "Tag the release")
	f.Bool("push", false, "Push the release commit to the remote")
	f.Bool("dry-run", false, "Print the new release section without writing")

	f.String("config", "", "Config file (default: changeloger.config.{json,yaml,yml} in path)")
	f.String("debug", "", "Dump the run state: print (stderr) or file")
	f.Lookup("debug").NoOptDefVal = string(release.DebugPrint)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	flags := cmd.Flags()
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	verbose, _ := flags.GetBool("verbose")
	logger := logging.New(stderr, logging.Options{Verbose: verbose, NoColor: color.NoColor})
	hook := logging.DebugHook(logger)
	git.SetDebugLogger(hook)
	release.SetDebugLogger(hook)

	configPath, _ := flags.GetString("config")
	cfg, path, err := config.LoadWithOptions(config.LoadOptions{Dir: dir, ConfigPath: configPath})
	if err != nil {
		return clierrors.ConfigInvalid(err)
	}
	if path != "" {
		logger.Debugf("loaded config from %s", path)
	}
	applyFlagOverrides(flags, cfg)

	opts, err := releaseOptions(flags, dir)
	if err != nil {
		return err
	}

	return lifecycle.RunWithContext(cmd.Context(), doneHandler(stdout), "generate", func(ctx context.Context) error {
		runner, err := release.Open(cfg, opts, stdout, stderr)
		if err != nil {
			return err
		}
		res, err := runner.Run(ctx)
		if res != nil && res.DebugFile != "" {
			output.PrintSuccess(stdout, "Debug state written to "+res.DebugFile)
		}
		return err
	})
}

// applyFlagOverrides lets explicitly set flags win over the configuration.
func applyFlagOverrides(flags *pflag.FlagSet, cfg *config.Configuration) {
	overrides := map[string]*bool{
		"pr-only": &cfg.PullRequestOnly,
		"group":   &cfg.GroupByType,
		"bump":    &cfg.BumpPackage,
		"commit":  &cfg.Commit,
		"tag":     &cfg.Tag,
		"push":    &cfg.Push,
	}
	for name, field := range overrides {
		if flags.Changed(name) {
			*field, _ = flags.GetBool(name)
		}
	}
}

// releaseOptions builds the per-run options from flags.
func releaseOptions(flags *pflag.FlagSet, dir string) (release.Options, error) {
	major, _ := flags.GetBool("major")
	minor, _ := flags.GetBool("minor")
	patch, _ := flags.GetBool("patch")
	from, _ := flags.GetString("from")
	to, _ := flags.GetString("to")
	dryRun, _ := flags.GetBool("dry-run")

	opts := release.Options{
		Dir:    dir,
		From:   from,
		To:     to,
		Bump:   release.BumpFromFlags(major, minor, patch),
		DryRun: dryRun,
	}

	if s, _ := flags.GetString("date"); s != "" {
		date, err := time.ParseInLocation(dateLayout, s, time.Local)
		if err != nil {
			return opts, clierrors.InvalidFlag("date", err)
		}
		opts.Date = date
	}

	debug, _ := flags.GetString("debug")
	mode, err := release.ParseDebugMode(debug)
	if err != nil {
		return opts, clierrors.InvalidFlag("debug", err)
	}
	opts.Debug = mode
	return opts, nil
}

// doneHandler prints the run time of successful commands.
func doneHandler(out io.Writer) lifecycle.HandlerFunc {
	return func(_ string, success bool, duration time.Duration) {
		if success {
			output.PrintDone(out, duration)
		}
	}
}
