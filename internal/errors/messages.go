package errors

import "fmt"

// Common error messages for the changeloger CLI.

// NotGitRepository creates an error for a path outside any git repository.
func NotGitRepository(path string, err error) *CLIError {
	e := WrapWithMessage(err, Runtime, fmt.Sprintf("%s is not inside a git repository", path),
		"Run changeloger from within a git repository",
		"Or pass the repository path: changeloger <path>",
	)
	return e
}

// InvalidRange creates an error for a --to commit given without --from.
func InvalidRange(err error) *CLIError {
	e := Wrap(err, Range,
		"Pass a start commit with --from when using --to",
		"Or omit --to to read up to HEAD",
	)
	e.Usage = "changeloger --from <commit> --to <commit>"
	return e
}

// ConfigInvalid creates an error for a config file that cannot be used.
func ConfigInvalid(err error) *CLIError {
	return WrapWithMessage(err, Configuration, "invalid configuration",
		"Check the config file for syntax errors",
		"Run 'changeloger init --force' to regenerate a commented template",
	)
}

// PreviousTagMissing creates an error when the tag of the last release is absent.
func PreviousTagMissing(tag string, err error) *CLIError {
	return WrapWithMessage(err, ExternalCommand, fmt.Sprintf("tag %s of the previous release was not found", tag),
		"Fetch tags with: git fetch --tags",
		fmt.Sprintf("Or start from an explicit commit: changeloger --from <commit> (tag %s would be its place)", tag),
	)
}

// GitCommandFailed creates an error for a failed git invocation.
func GitCommandFailed(err error) *CLIError {
	return WrapWithMessage(err, ExternalCommand, "git command failed",
		"Run the command shown above manually to see the full output",
	)
}

// PackageBumpFailed creates an error for a failed npm version bump.
func PackageBumpFailed(err error) *CLIError {
	return WrapWithMessage(err, ExternalCommand, "bumping package.json version failed",
		"Make sure npm is installed and on PATH",
		"Or run without --bump (bumpPackage: false)",
	)
}

// WorkingTreeDirty creates an error for uncommitted changes before a release commit.
func WorkingTreeDirty() *CLIError {
	return NewDirtyWorkingTreeError(
		"working tree has uncommitted changes",
		"Commit or stash your changes first",
		"Or run without --commit",
		"Or set requireCleanWorkingTree: false",
	)
}

// CommitRecordInvalid creates an error for a malformed git log record.
func CommitRecordInvalid(err error) *CLIError {
	return Wrap(err, Parse,
		"Report the commit shown above; its log record could not be read",
	)
}

// InvalidFlag creates an error for a flag value that cannot be used.
func InvalidFlag(flag string, err error) *CLIError {
	e := WrapWithMessage(err, Usage, fmt.Sprintf("invalid --%s", flag),
		"Run 'changeloger --help' for the accepted values",
	)
	return e
}
