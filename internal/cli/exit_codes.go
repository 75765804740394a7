package cli

import clierrors "github.com/changeloger/changeloger/internal/errors"

// Exit codes for the changeloger CLI.
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitFailure covers git, npm and other runtime failures
	ExitFailure = 1

	// ExitConfigError indicates an invalid configuration
	ExitConfigError = 2

	// ExitInvalidArguments indicates invalid flags or commit range
	ExitInvalidArguments = 3

	// ExitDirtyWorkingTree indicates uncommitted changes blocked a release commit
	ExitDirtyWorkingTree = 4
)

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch clierrors.CategoryOf(err) {
	case clierrors.Configuration:
		return ExitConfigError
	case clierrors.Range, clierrors.Usage:
		return ExitInvalidArguments
	case clierrors.DirtyWorkingTree:
		return ExitDirtyWorkingTree
	default:
		return ExitFailure
	}
}
