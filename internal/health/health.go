// Package health checks the environment changeloger depends on: the git CLI,
// the repository, the configuration and the package bump command. The
// report backs the 'changeloger doctor' command.
package health

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/changeloger/changeloger/internal/config"
	"github.com/changeloger/changeloger/internal/git"
	"github.com/changeloger/changeloger/internal/pkgjson"
)

// CheckResult represents the result of a single health check
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
	// Skipped checks pass without running, e.g. the bump command while
	// bumpPackage is off.
	Skipped bool
}

// HealthReport contains all health check results
type HealthReport struct {
	Checks []CheckResult
	Passed bool
}

// Options locates the project to check.
type Options struct {
	Dir        string
	ConfigPath string
}

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// RunHealthChecks runs all health checks for the project in opts.Dir.
func RunHealthChecks(opts Options) *HealthReport {
	report := &HealthReport{Passed: true}
	add := func(c CheckResult) {
		report.Checks = append(report.Checks, c)
		if !c.Passed {
			report.Passed = false
		}
	}

	add(CheckGitCLI())
	add(CheckRepository(opts.Dir))

	cfg, check := CheckConfig(opts)
	add(check)
	if cfg != nil {
		add(CheckBumpCommand(cfg))
	}
	return report
}

// CheckGitCLI checks that git is on PATH. History queries and release
// commits run through it.
func CheckGitCLI() CheckResult {
	path, err := lookPath("git")
	if err != nil {
		return CheckResult{Name: "Git CLI", Message: "git not found in PATH"}
	}
	return CheckResult{Name: "Git CLI", Passed: true, Message: "found at " + path}
}

// CheckRepository checks that dir is inside a git repository.
func CheckRepository(dir string) CheckResult {
	repo, err := git.Open(dir)
	if err != nil {
		return CheckResult{Name: "Repository", Message: fmt.Sprintf("%s is not inside a git repository", dir)}
	}
	branch, err := repo.CurrentBranch()
	if err != nil {
		return CheckResult{Name: "Repository", Message: err.Error()}
	}
	if branch == "" {
		branch = "detached HEAD"
	}
	return CheckResult{Name: "Repository", Passed: true, Message: fmt.Sprintf("%s (%s)", repo.Root(), branch)}
}

// CheckConfig loads and validates the configuration. The configuration is
// nil when the check fails.
func CheckConfig(opts Options) (*config.Configuration, CheckResult) {
	cfg, path, err := config.LoadWithOptions(config.LoadOptions{Dir: opts.Dir, ConfigPath: opts.ConfigPath})
	if err != nil {
		return nil, CheckResult{Name: "Configuration", Message: err.Error()}
	}
	if path == "" {
		path = "built-in defaults"
	}
	return cfg, CheckResult{Name: "Configuration", Passed: true, Message: "loaded " + path}
}

// CheckBumpCommand checks the package bump command when bumpPackage is on.
func CheckBumpCommand(cfg *config.Configuration) CheckResult {
	if !cfg.BumpPackage {
		return CheckResult{Name: "Bump command", Passed: true, Skipped: true, Message: "bumpPackage is off"}
	}
	bumper, err := pkgjson.NewBumper(cfg.BumpCommand)
	if err != nil {
		return CheckResult{Name: "Bump command", Message: err.Error()}
	}
	args, err := bumper.Command(".", "0.0.0")
	if err != nil {
		return CheckResult{Name: "Bump command", Message: err.Error()}
	}
	if _, err := lookPath(args[0]); err != nil {
		return CheckResult{Name: "Bump command", Message: fmt.Sprintf("%s not found in PATH", args[0])}
	}
	return CheckResult{Name: "Bump command", Passed: true, Message: args[0] + " found"}
}

// FormatReport formats the health report for console output
func FormatReport(report *HealthReport) string {
	var sb strings.Builder
	for _, check := range report.Checks {
		switch {
		case check.Skipped:
			fmt.Fprintf(&sb, "- %s: skipped, %s\n", check.Name, check.Message)
		case check.Passed:
			fmt.Fprintf(&sb, "✓ %s: %s\n", check.Name, check.Message)
		default:
			fmt.Fprintf(&sb, "✗ %s: %s\n", check.Name, check.Message)
		}
	}
	return sb.String()
}
