// Package testutil provides fakes and subprocess helpers for changeloger tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"testing"
)

// Response is what a scripted subprocess writes and how it exits.
type Response struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// Script maps subcommands (the first argument after an optional
// `-C <dir>`, e.g. "log" or "rev-list") to responses. Anything else gets
// Default.
type Script struct {
	Default     Response            `json:"default"`
	Subcommands map[string]Response `json:"subcommands,omitempty"`
}

// Respond returns the response for a command line.
func (s Script) Respond(args []string) Response {
	if r, ok := s.Subcommands[Subcommand(args)]; ok {
		return r
	}
	return s.Default
}

// Subcommand returns the git subcommand in args, skipping a leading
// `-C <dir>`.
func Subcommand(args []string) string {
	if len(args) >= 2 && args[0] == "-C" {
		args = args[2:]
	}
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

const (
	// EnvWantHelperProcess signals that the test binary should run as a helper process.
	EnvWantHelperProcess = "GO_WANT_HELPER_PROCESS"
	envScript            = "GO_HELPER_PROCESS_SCRIPT"
	envArgs              = "GO_HELPER_PROCESS_ARGS"
)

// TestHelperProcess turns the test binary into the scripted subprocess when
// GO_WANT_HELPER_PROCESS=1 and exits; otherwise it returns at once. Call it
// from a test function named TestHelperProcess:
//
//	func TestHelperProcess(t *testing.T) {
//	    testutil.TestHelperProcess(t)
//	}
func TestHelperProcess(t *testing.T) {
	if os.Getenv(EnvWantHelperProcess) != "1" {
		return
	}

	var script Script
	var args []string
	_ = json.Unmarshal([]byte(os.Getenv(envScript)), &script)
	_ = json.Unmarshal([]byte(os.Getenv(envArgs)), &args)

	r := script.Respond(args)
	fmt.Fprint(os.Stdout, r.Stdout)
	fmt.Fprint(os.Stderr, r.Stderr)
	os.Exit(r.ExitCode)
}

// HelperCommand returns a command that re-runs the test binary as the
// scripted subprocess for args. testName is the test function that calls
// TestHelperProcess.
func HelperCommand(t *testing.T, testName string, script Script, args ...string) *exec.Cmd {
	t.Helper()

	bin, err := os.Executable()
	if err != nil {
		t.Fatalf("failed to get test binary path: %v", err)
	}
	scriptJSON, err := json.Marshal(script)
	if err != nil {
		t.Fatalf("encoding helper script: %v", err)
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("encoding helper args: %v", err)
	}

	cmd := exec.Command(bin, "-test.run=^"+testName+"$")
	cmd.Env = append(os.Environ(),
		EnvWantHelperProcess+"=1",
		envScript+"="+string(scriptJSON),
		envArgs+"="+string(argsJSON),
	)
	return cmd
}

// Reply is a Script that gives every command the same response.
func Reply(r Response) Script {
	return Script{Default: r}
}
