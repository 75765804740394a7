package git

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/changeloger/changeloger/internal/provider"
	"github.com/changeloger/changeloger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess is the subprocess entry point for ExecRunner tests.
func TestHelperProcess(t *testing.T) {
	testutil.TestHelperProcess(t)
}

func helperRunner(t *testing.T, script testutil.Script) *ExecRunner {
	t.Helper()
	r := NewExecRunner("/repo")
	r.newCommand = func(_ context.Context, _ string, args ...string) *exec.Cmd {
		return testutil.HelperCommand(t, "TestHelperProcess", script, args...)
	}
	return r
}

func TestExecRunner(t *testing.T) {
	tests := map[string]struct {
		cfg        testutil.Response
		args       []string
		wantOut    string
		wantErr    bool
		wantCode   int
		wantStderr string
	}{
		"success": {
			cfg:     testutil.Response{Stdout: "main\n"},
			args:    []string{"branch", "--show-current"},
			wantOut: "main\n",
		},
		"non-zero exit": {
			cfg:        testutil.Response{ExitCode: 128, Stderr: "fatal: bad revision"},
			args:       []string{"log", "nope..HEAD"},
			wantErr:    true,
			wantCode:   128,
			wantStderr: "fatal: bad revision",
		},
		"stderr fails read command": {
			cfg:        testutil.Response{Stdout: "abc\n", Stderr: "warning: refname is ambiguous"},
			args:       []string{"rev-list", "a..b"},
			wantErr:    true,
			wantStderr: "warning: refname is ambiguous",
		},
		"stderr tolerated for push": {
			cfg:     testutil.Response{Stderr: "To github.com:acme/widget.git\n"},
			args:    []string{"push", "origin", "HEAD"},
			wantOut: "",
		},
		"stderr tolerated for commit": {
			cfg:     testutil.Response{Stdout: "[main abc1234] chore(release): v1.0.0\n", Stderr: "warning: CRLF"},
			args:    []string{"commit", "-m", "chore(release): v1.0.0"},
			wantOut: "[main abc1234] chore(release): v1.0.0\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := helperRunner(t, testutil.Reply(tt.cfg)).Run(context.Background(), tt.args...)
			if tt.wantErr {
				var cerr *CommandError
				require.ErrorAs(t, err, &cerr)
				assert.Equal(t, tt.wantCode, cerr.ExitCode)
				assert.Equal(t, tt.args, cerr.Args)
				assert.Contains(t, cerr.Stderr, tt.wantStderr)
				assert.Contains(t, cerr.Error(), "git "+tt.args[0])
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOut, out)
		})
	}
}

func TestExecRunnerPassesDirectory(t *testing.T) {
	var got []string
	r := NewExecRunner("/srv/widget")
	r.newCommand = func(_ context.Context, _ string, args ...string) *exec.Cmd {
		got = args
		return testutil.HelperCommand(t, "TestHelperProcess", testutil.Reply(testutil.Response{}), args...)
	}

	_, err := r.Run(context.Background(), "status")
	require.NoError(t, err)
	assert.Equal(t, []string{"-C", "/srv/widget", "status"}, got)
}

func TestMergesOverExecRunner(t *testing.T) {
	script := testutil.Script{
		Subcommands: map[string]testutil.Response{
			"log": {Stdout: logOutput(
				logLine("m000001", "Merge pull request #7 from acme/feature", "feat: add widget", "", "p000001 p000002"),
				logLine("m000002", "Merge branch 'hotfix'", "", "", "p000003 p000004"),
			)},
			"rev-list": {Stdout: "xyz9999" + strings.Repeat("0", 33) + "\n"},
		},
	}
	c := NewClient(helperRunner(t, script), provider.GitHub)

	merges, err := c.Merges(context.Background(), Range{From: "abc1234"})
	require.NoError(t, err)
	require.Len(t, merges, 2)
	assert.True(t, merges[0].IsPullRequest)
	assert.Equal(t, []string{"xyz9999"}, merges[0].Commits)
	assert.False(t, merges[1].IsPullRequest)
	assert.Nil(t, merges[1].Commits)
}

func TestMergesOverExecRunnerRevListFailure(t *testing.T) {
	script := testutil.Script{
		Subcommands: map[string]testutil.Response{
			"log": {Stdout: logOutput(
				logLine("m000001", "Merge pull request #7 from acme/feature", "feat: add widget", "", "p000001 p000002"),
			)},
			"rev-list": {ExitCode: 128, Stderr: "fatal: bad revision 'p000001..p000002'"},
		},
	}
	c := NewClient(helperRunner(t, script), provider.GitHub)

	_, err := c.Merges(context.Background(), Range{})
	var cerr *CommandError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 128, cerr.ExitCode)
	assert.Contains(t, err.Error(), "resolving commits of merge m000001")
}

func TestSetDebugLogger(t *testing.T) {
	var lines []string
	SetDebugLogger(func(format string, args ...any) {
		lines = append(lines, format)
	})
	defer SetDebugLogger(nil)

	logDebug("[git] hello %s", "world")
	assert.Equal(t, []string{"[git] hello %s"}, lines)
}

func TestCommandErrorUnwrap(t *testing.T) {
	inner := errors.New("signal: killed")
	err := &CommandError{Args: []string{"log"}, Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "git log: signal: killed", err.Error())
}
