package pkgjson

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/shlex"
)

const (
	pathPlaceholder    = "{path}"
	versionPlaceholder = "{version}"
)

// DefaultBumpCommand sets the package version without creating a git tag.
const DefaultBumpCommand = "npm --prefix {path} --no-git-tag-version version {version}"

// BumpError reports a failed bump command.
type BumpError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *BumpError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s: exit status %d: %s", strings.Join(e.Args, " "), e.ExitCode, msg)
}

func (e *BumpError) Unwrap() error { return e.Err }

// Bumper runs a command template with {path} and {version} placeholders.
type Bumper struct {
	template string

	// newCommand builds the process; tests replace it with a helper process.
	newCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewBumper creates a Bumper from a command template. The template must
// contain the {version} placeholder.
func NewBumper(template string) (*Bumper, error) {
	if strings.TrimSpace(template) == "" {
		template = DefaultBumpCommand
	}
	if !strings.Contains(template, versionPlaceholder) {
		return nil, fmt.Errorf("bump command must contain %s placeholder", versionPlaceholder)
	}
	return &Bumper{template: template, newCommand: exec.CommandContext}, nil
}

// Validate checks that the template parses and its command is on PATH.
func (b *Bumper) Validate() error {
	args, err := b.Command(".", "0.0.0")
	if err != nil {
		return err
	}
	if _, err := exec.LookPath(args[0]); err != nil {
		return fmt.Errorf("bump command %q not found in PATH", args[0])
	}
	return nil
}

// Command expands the template for dir and ver.
func (b *Bumper) Command(dir, ver string) ([]string, error) {
	expanded := strings.ReplaceAll(b.template, pathPlaceholder, quoteForShlex(dir))
	expanded = strings.ReplaceAll(expanded, versionPlaceholder, quoteForShlex(ver))
	args, err := shlex.Split(expanded)
	if err != nil {
		return nil, fmt.Errorf("invalid bump command: %w", err)
	}
	if len(args) == 0 {
		return nil, errors.New("bump command produces no command")
	}
	return args, nil
}

// Bump runs the command in dir and returns its standard output. Only a
// non-zero exit fails: npm reports warnings on stderr.
func (b *Bumper) Bump(ctx context.Context, dir, ver string) (string, error) {
	args, err := b.Command(dir, ver)
	if err != nil {
		return "", err
	}

	cmd := b.newCommand(ctx, args[0], args[1:]...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		berr := &BumpError{Args: args, Stderr: stderr.String(), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			berr.ExitCode = exitErr.ExitCode()
		}
		return "", berr
	}
	return stdout.String(), nil
}

// quoteForShlex wraps s in single quotes so it stays one argument.
func quoteForShlex(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
