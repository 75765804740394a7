// Package git reads commit history and repository metadata for changeloger and
// performs the release mutations (add, commit, tag, push). It uses the go-git
// library for repository metadata (branch, remotes, tags, status) and the git
// CLI for history queries and mutations, which go-git does not cover with the
// same revision-range semantics.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Runner executes a git subcommand and returns its standard output.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// CommandError reports a failed git invocation.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	cmd := "git " + strings.Join(e.Args, " ")
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.ExitCode != 0 {
		return fmt.Sprintf("%s: exit status %d: %s", cmd, e.ExitCode, msg)
	}
	return fmt.Sprintf("%s: %s", cmd, msg)
}

func (e *CommandError) Unwrap() error { return e.Err }

// stderrTolerant lists subcommands that report progress or warnings on
// stderr while succeeding.
var stderrTolerant = map[string]bool{
	"add":    true,
	"commit": true,
	"tag":    true,
	"push":   true,
}

// ExecRunner runs git as `git -C <Dir> ...`.
type ExecRunner struct {
	Dir string

	// newCommand builds the process; tests replace it with a helper process.
	newCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewExecRunner returns a runner rooted at dir.
func NewExecRunner(dir string) *ExecRunner {
	return &ExecRunner{Dir: dir, newCommand: exec.CommandContext}
}

// Run executes git. Read commands fail on any stderr output; mutations only
// fail on a non-zero exit status.
func (r *ExecRunner) Run(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-C", r.Dir}, args...)
	newCommand := r.newCommand
	if newCommand == nil {
		newCommand = exec.CommandContext
	}
	cmd := newCommand(ctx, "git", full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logDebug("[git] running: git %s", strings.Join(full, " "))
	err := cmd.Run()
	if err != nil {
		cerr := &CommandError{Args: args, Stderr: stderr.String(), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cerr.ExitCode = exitErr.ExitCode()
		}
		return "", cerr
	}

	if stderr.Len() > 0 && (len(args) == 0 || !stderrTolerant[args[0]]) {
		return "", &CommandError{Args: args, Stderr: stderr.String()}
	}
	return stdout.String(), nil
}
