package release

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/changeloger/changeloger/internal/config"
	clierrors "github.com/changeloger/changeloger/internal/errors"
	"github.com/changeloger/changeloger/internal/git"
	"github.com/changeloger/changeloger/internal/testutil"
	"github.com/changeloger/changeloger/internal/version"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// logFormat mirrors the pretty format the git client requests.
const logFormat = "--pretty=format:%h%x1f%H%x1f%an%x1f%ae%x1f%aI%x1f%s%x1f%b%x1f%D%x1f%p%x1e"

var (
	mergesArgs  = []string{"log", "--merges", logFormat}
	commitsArgs = []string{"log", "--invert-grep", "--grep=^chore(release):", logFormat}
	releaseDate = time.Date(2024, time.January, 5, 12, 0, 0, 0, time.Local)
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func logLine(short, subject, body, parents string) string {
	return strings.Join([]string{
		short,
		short + strings.Repeat("0", 40-len(short)),
		"Ada Lovelace",
		"ada@example.com",
		"2024-01-04T10:00:00+01:00",
		subject,
		body,
		"",
		parents,
	}, "\x1f") + "\x1e"
}

func withRange(args []string, rev string) []string {
	if rev == "" {
		return args
	}
	return append(append([]string{}, args...), rev)
}

type stubRepo struct {
	branch   string
	remote   string
	tags     map[string]string
	dirty    bool
	cleanErr error
}

func (s *stubRepo) CurrentBranch() (string, error)   { return s.branch, nil }
func (s *stubRepo) RemoteURL(string) (string, error) { return s.remote, nil }
func (s *stubRepo) IsClean() (bool, error)           { return !s.dirty, s.cleanErr }

func (s *stubRepo) ResolveTag(name string) (string, error) {
	hash, ok := s.tags[name]
	if !ok {
		return "", git.ErrTagNotFound
	}
	return hash, nil
}

type fakeBumper struct {
	validateErr error
	bumpErr     error
	bumped      []string
}

func (f *fakeBumper) Validate() error { return f.validateErr }

func (f *fakeBumper) Bump(_ context.Context, dir, ver string) (string, error) {
	f.bumped = append(f.bumped, ver)
	if f.bumpErr != nil {
		return "", f.bumpErr
	}
	return "v" + ver + "\n", nil
}

type fixture struct {
	dir    string
	cfg    *config.Configuration
	opts   Options
	repo   *stubRepo
	git    *testutil.FakeRunner
	bumper *fakeBumper
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	cfg, _, err := config.LoadWithOptions(config.LoadOptions{Dir: dir, SkipEnv: true})
	require.NoError(t, err)
	return &fixture{
		dir:    dir,
		cfg:    cfg,
		opts:   Options{Dir: dir, Date: releaseDate},
		repo:   &stubRepo{branch: "main", tags: map[string]string{}},
		git:    testutil.NewFakeRunner(),
		bumper: &fakeBumper{},
	}
}

func (f *fixture) run(t *testing.T) (*Result, error) {
	t.Helper()
	r := New(f.cfg, f.opts, Deps{
		Repo:   f.repo,
		Git:    f.git,
		Bumper: f.bumper,
		Stdout: &f.stdout,
		Stderr: &f.stderr,
		Now:    func() time.Time { return releaseDate },
	})
	return r.Run(context.Background())
}

func (f *fixture) history(rev, merges, commits string) {
	f.git.On(merges, withRange(mergesArgs, rev)...)
	f.git.On(commits, withRange(commitsArgs, rev)...)
}

func (f *fixture) writeChangelog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, "CHANGELOG.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunFreshChangelog(t *testing.T) {
	f := newFixture(t)
	f.history("", "", logLine("abc1234", "fix: repair bug", "", "")+logLine("def5678", "feat: add widget", "", "abc1234"))

	res, err := f.run(t)
	require.NoError(t, err)

	assert.True(t, res.Written)
	assert.Equal(t, "v0.0.1", res.Tag)
	assert.Equal(t, 2, res.Commits)
	assert.Equal(t, "# Changelog\n\n## v0.0.1 - 2024-1-5\n\n- add widget (`def5678`)\n- repair bug (`abc1234`)\n", readFile(t, res.Path))
	assert.Contains(t, f.stdout.String(), "v0.0.1 (2 commits)")
	assert.Contains(t, f.stdout.String(), "✓ Wrote CHANGELOG.md")
	assert.False(t, f.git.Called("commit"))
}

func TestRunGroupedByType(t *testing.T) {
	f := newFixture(t)
	f.cfg.GroupByType = true
	f.history("", "", logLine("abc1234", "fix: repair bug", "", "")+logLine("def5678", "feat: add widget", "", ""))

	res, err := f.run(t)
	require.NoError(t, err)

	want := "# Changelog\n\n## v0.0.1 - 2024-1-5\n\n" +
		"### 🚀 Features\n\n- add widget (`def5678`)\n\n" +
		"### 🩹 Bug Fixes\n\n- repair bug (`abc1234`)\n"
	assert.Equal(t, want, readFile(t, res.Path))
}

func TestRunAfterPreviousRelease(t *testing.T) {
	f := newFixture(t)
	f.opts.Bump = version.Minor
	path := f.writeChangelog(t, "# Changelog\n\n## v1.2.3 - 2024-1-1\n\n- old change (`1111111`)\n")
	f.repo.tags["v1.2.3"] = "abc0000"
	f.history("abc0000..HEAD", "", logLine("abc1234", "fix: repair bug", "", "abc0000"))

	res, err := f.run(t)
	require.NoError(t, err)

	assert.Equal(t, "v1.3.0", res.Tag)
	want := "# Changelog\n\n## v1.3.0 - 2024-1-5\n\n- repair bug (`abc1234`)\n\n## v1.2.3 - 2024-1-1\n\n- old change (`1111111`)\n"
	assert.Equal(t, want, readFile(t, path))
}

func TestRunExplicitRange(t *testing.T) {
	f := newFixture(t)
	f.opts.From = "aaa1111"
	f.opts.To = "bbb2222"
	f.history("aaa1111..bbb2222", "", logLine("bbb2222", "docs: explain setup", "", "aaa1111"))

	res, err := f.run(t)
	require.NoError(t, err)
	assert.Contains(t, readFile(t, res.Path), "- explain setup (`bbb2222`)")
}

func TestRunPullRequests(t *testing.T) {
	merge := logLine("m000001", "Merge pull request #7 from acme/widget", "feat: add widget", "p000001 xyz9999")
	squashed := logLine("xyz9999", "feat: widget internals", "", "p000001")
	fix := logLine("abc1234", "fix: repair bug", "", "")
	plainMerge := logLine("m000002", "Merge branch 'main' into dev", "", "abc1234 p000001")

	tests := map[string]struct {
		prOnly      bool
		wantEntries []string
		wantAbsent  []string
	}{
		"squashed commits are folded into the merge": {
			wantEntries: []string{
				"- add widget ([`xyz9999`](https://github.com/acme/widget/commit/xyz9999))",
				"- repair bug ([`abc1234`](https://github.com/acme/widget/commit/abc1234))",
			},
			wantAbsent: []string{"widget internals", "Merge branch"},
		},
		"pull request only": {
			prOnly:      true,
			wantEntries: []string{"- add widget ([`xyz9999`](https://github.com/acme/widget/commit/xyz9999))"},
			wantAbsent:  []string{"repair bug", "widget internals"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.repo.remote = "https://github.com/acme/widget.git"
			f.cfg.PullRequestOnly = tt.prOnly
			f.history("", merge+plainMerge, merge+squashed+plainMerge+fix)
			f.git.On("xyz9999aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa\n", "rev-list", "--no-merges", "p000001..xyz9999")

			res, err := f.run(t)
			require.NoError(t, err)

			content := readFile(t, res.Path)
			for _, want := range tt.wantEntries {
				assert.Contains(t, content, want)
			}
			for _, absent := range tt.wantAbsent {
				assert.NotContains(t, content, absent)
			}
		})
	}
}

func TestRunWithoutChanges(t *testing.T) {
	tests := map[string]struct {
		existing string
		wantFile bool
	}{
		"created placeholder is removed": {},
		"existing changelog is kept": {
			existing: "# Changelog\n",
			wantFile: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			if tt.existing != "" {
				f.writeChangelog(t, tt.existing)
			}
			f.history("", "", "")

			res, err := f.run(t)
			require.NoError(t, err)

			assert.False(t, res.Written)
			assert.Equal(t, "No changes found!\n", f.stdout.String())
			_, statErr := os.Stat(res.Path)
			assert.Equal(t, tt.wantFile, statErr == nil)
			if tt.wantFile {
				assert.Equal(t, tt.existing, readFile(t, res.Path))
			}
		})
	}
}

func TestRunDryRun(t *testing.T) {
	f := newFixture(t)
	f.opts.DryRun = true
	f.cfg.Commit = true
	f.repo.dirty = true
	f.history("", "", logLine("abc1234", "fix: repair bug", "", ""))

	res, err := f.run(t)
	require.NoError(t, err)

	assert.False(t, res.Written)
	assert.Equal(t, "v0.0.1", res.Tag)
	assert.Contains(t, f.stdout.String(), "dry run: CHANGELOG.md")
	assert.Contains(t, f.stdout.String(), "## v0.0.1 - 2024-1-5\n\n- repair bug (`abc1234`)\n")
	assert.NoFileExists(t, res.Path)
	assert.False(t, f.git.Called("commit"))
}

func TestRunDryRunKeepsExistingChangelog(t *testing.T) {
	f := newFixture(t)
	f.opts.DryRun = true
	existing := "# Changelog\n\n## v0.1.0 - 2024-1-1\n\n- first (`1111111`)\n"
	path := f.writeChangelog(t, existing)
	f.repo.tags["v0.1.0"] = "1111111"
	f.history("1111111..HEAD", "", logLine("abc1234", "fix: repair bug", "", "1111111"))

	_, err := f.run(t)
	require.NoError(t, err)

	out := f.stdout.String()
	assert.Contains(t, out, "## v0.1.1 - 2024-1-5\n\n- repair bug (`abc1234`)\n")
	assert.NotContains(t, out, "- first")
	assert.Contains(t, out, "1 previous releases, latest v0.1.0")
	assert.Equal(t, existing, readFile(t, path))
}

func TestRunErrors(t *testing.T) {
	tests := map[string]struct {
		setup        func(t *testing.T, f *fixture)
		wantCategory clierrors.ErrorCategory
		wantFile     string
		wantCalls    bool
	}{
		"end commit without start": {
			setup: func(t *testing.T, f *fixture) {
				f.opts.To = "def5678"
			},
			wantCategory: clierrors.Range,
		},
		"missing previous tag": {
			setup: func(t *testing.T, f *fixture) {
				f.writeChangelog(t, "# Changelog\n\n## v1.2.3 - 2024-1-1\n\n- old change (`1111111`)\n")
			},
			wantCategory: clierrors.ExternalCommand,
			wantFile:     "# Changelog\n\n## v1.2.3 - 2024-1-1\n\n- old change (`1111111`)\n",
		},
		"git log fails": {
			setup: func(t *testing.T, f *fixture) {
				f.git.OnError(&git.CommandError{Args: mergesArgs, ExitCode: 128, Stderr: "fatal: bad revision"}, mergesArgs...)
			},
			wantCategory: clierrors.ExternalCommand,
			wantCalls:    true,
		},
		"malformed log record": {
			setup: func(t *testing.T, f *fixture) {
				f.history("", "", "abc1234\x1ffix: broken\x1e")
			},
			wantCategory: clierrors.Parse,
			wantCalls:    true,
		},
		"invalid commit date": {
			setup: func(t *testing.T, f *fixture) {
				f.history("", "", strings.Replace(logLine("abc1234", "fix: repair bug", "", ""), "2024-01-04T10:00:00+01:00", "yesterday", 1))
			},
			wantCategory: clierrors.Parse,
			wantCalls:    true,
		},
		"commit without message": {
			setup: func(t *testing.T, f *fixture) {
				f.history("", "", logLine("abc1234", "", "", ""))
			},
			wantCategory: clierrors.Parse,
			wantCalls:    true,
		},
		"dirty working tree": {
			setup: func(t *testing.T, f *fixture) {
				f.cfg.Commit = true
				f.repo.dirty = true
			},
			wantCategory: clierrors.DirtyWorkingTree,
		},
		"bump command missing": {
			setup: func(t *testing.T, f *fixture) {
				f.cfg.BumpPackage = true
				f.bumper.validateErr = errors.New(`bump command "npm" not found in PATH`)
			},
			wantCategory: clierrors.ExternalCommand,
		},
		"unbalanced push options": {
			setup: func(t *testing.T, f *fixture) {
				f.cfg.Push = true
				f.cfg.PushOptions = `--push-option="ci.skip`
			},
			wantCategory: clierrors.Configuration,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(t, f)

			res, err := f.run(t)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, tt.wantCategory, clierrors.CategoryOf(err))
			assert.Equal(t, tt.wantCalls, len(f.git.Calls()) > 0)

			path := filepath.Join(f.dir, "CHANGELOG.md")
			if tt.wantFile == "" {
				assert.NoFileExists(t, path)
				return
			}
			assert.Equal(t, tt.wantFile, readFile(t, path))
		})
	}
}

func TestRunPublishes(t *testing.T) {
	f := newFixture(t)
	f.cfg.BumpPackage = true
	f.cfg.Commit = true
	f.cfg.Tag = true
	f.cfg.Push = true
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "package.json"), []byte(`{"name":"widget","version":"0.0.0"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, LockFileName), []byte(`{}`), 0o644))

	f.history("", "", logLine("abc1234", "fix: repair bug", "", ""))
	f.git.
		On("", "add", "--", "CHANGELOG.md", "package.json", LockFileName).
		On("", "commit", "-m", "chore(release): v0.0.1").
		On("", "tag", "-a", "v0.0.1", "-m", "v0.0.1").
		On("", "push", "origin", "HEAD", "--follow-tags")

	res, err := f.run(t)
	require.NoError(t, err)

	assert.True(t, res.Written)
	assert.Equal(t, []string{"0.0.1"}, f.bumper.bumped)

	var order []string
	for _, c := range f.git.Calls() {
		order = append(order, c.Args[0])
	}
	assert.Equal(t, []string{"log", "log", "add", "commit", "tag", "push"}, order)
	assert.Contains(t, f.stdout.String(), "✓ Bumped package.json to 0.0.1")
	assert.Contains(t, f.stdout.String(), "→ git tag v0.0.1")
}

func TestRunPublishSkipsMissingPackage(t *testing.T) {
	f := newFixture(t)
	f.cfg.BumpPackage = true
	f.cfg.Commit = true
	f.history("", "", logLine("abc1234", "fix: repair bug", "", ""))
	f.git.
		On("", "add", "--", "CHANGELOG.md").
		On("", "commit", "-m", "chore(release): v0.0.1")

	_, err := f.run(t)
	require.NoError(t, err)
	assert.Empty(t, f.bumper.bumped)
	assert.False(t, f.git.Called("tag"))
}

func TestRunPublishFailureKeepsChangelog(t *testing.T) {
	f := newFixture(t)
	f.cfg.Push = true
	f.history("", "", logLine("abc1234", "fix: repair bug", "", ""))
	f.git.OnError(&git.CommandError{Args: []string{"push"}, ExitCode: 1, Stderr: "rejected"}, "push", "origin", "HEAD", "--follow-tags")

	res, err := f.run(t)
	require.Error(t, err)
	assert.Equal(t, clierrors.ExternalCommand, clierrors.CategoryOf(err))
	require.NotNil(t, res)
	assert.True(t, res.Written)
	assert.Contains(t, readFile(t, res.Path), "- repair bug (`abc1234`)")
}

func TestRunBumpFailure(t *testing.T) {
	f := newFixture(t)
	f.cfg.BumpPackage = true
	f.bumper.bumpErr = errors.New("npm ERR! invalid version")
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "package.json"), []byte(`{"version":"1.0.0"}`), 0o644))
	f.history("", "", logLine("abc1234", "fix: repair bug", "", ""))

	_, err := f.run(t)
	require.Error(t, err)
	assert.Equal(t, clierrors.ExternalCommand, clierrors.CategoryOf(err))
	assert.Contains(t, err.Error(), "bumping package.json version failed")
}

func TestRunDebugFile(t *testing.T) {
	f := newFixture(t)
	f.opts.Debug = DebugFile
	f.history("", "", logLine("abc1234", "fix: repair bug", "", ""))

	res, err := f.run(t)
	require.NoError(t, err)
	require.NotEmpty(t, res.DebugFile)

	assert.Equal(t, f.dir, filepath.Dir(res.DebugFile))
	dump := readFile(t, res.DebugFile)
	assert.Contains(t, dump, "run_id: ")
	assert.Contains(t, dump, "next_tag: v0.0.1")
	assert.Contains(t, dump, "fix: repair bug")
}

func TestRunDebugPrintOnError(t *testing.T) {
	f := newFixture(t)
	f.opts.Debug = DebugPrint
	f.opts.To = "def5678"

	_, err := f.run(t)
	require.Error(t, err)

	dump := f.stderr.String()
	assert.True(t, strings.HasPrefix(dump, "---\n"))
	assert.Contains(t, dump, "error: ")
	assert.Contains(t, dump, "to: def5678")
}

func TestBumpFromFlags(t *testing.T) {
	tests := map[string]struct {
		major, minor, patch bool
		want                version.BumpKind
	}{
		"none":            {},
		"major":           {major: true, want: version.Major},
		"minor":           {minor: true, want: version.Minor},
		"patch":           {patch: true, want: version.Patch},
		"later flag wins": {major: true, patch: true, want: version.Patch},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, BumpFromFlags(tt.major, tt.minor, tt.patch))
		})
	}
}
