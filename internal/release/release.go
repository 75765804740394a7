// Package release runs one changelog release: it reads the history since the
// previous release, renders the new section and optionally bumps the package
// version, commits, tags and pushes.
package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/changeloger/changeloger/internal/changelog"
	"github.com/changeloger/changeloger/internal/commit"
	"github.com/changeloger/changeloger/internal/config"
	clierrors "github.com/changeloger/changeloger/internal/errors"
	"github.com/changeloger/changeloger/internal/git"
	"github.com/changeloger/changeloger/internal/output"
	"github.com/changeloger/changeloger/internal/pkgjson"
	"github.com/changeloger/changeloger/internal/progress"
	"github.com/changeloger/changeloger/internal/provider"
	"github.com/changeloger/changeloger/internal/version"
	"github.com/google/shlex"
	"github.com/hashicorp/go-multierror"
)

// debugLogger receives debug messages when set via SetDebugLogger.
var debugLogger func(format string, args ...any)

// SetDebugLogger sets a function that receives run debug messages.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// LockFileName is staged with package.json when present.
const LockFileName = "package-lock.json"

// Repository is the repository state a run reads.
type Repository interface {
	git.MetadataSource
	changelog.TagResolver
	IsClean() (bool, error)
}

// PackageBumper rewrites the package version.
type PackageBumper interface {
	Validate() error
	Bump(ctx context.Context, dir, ver string) (string, error)
}

// Options are the per-run settings taken from the command line.
type Options struct {
	// Dir is the project directory holding the changelog and package.json.
	Dir  string
	From string
	To   string
	// Bump overrides the configured versionBumpType when set.
	Bump version.BumpKind
	// Date stamps the release header. Zero means now.
	Date   time.Time
	DryRun bool
	Debug  DebugMode
}

// BumpFromFlags maps the --major/--minor/--patch flags to a bump kind. They
// are checked in that order and a later flag overrides an earlier one. None
// set returns "".
func BumpFromFlags(major, minor, patch bool) version.BumpKind {
	var kind version.BumpKind
	if major {
		kind = version.Major
	}
	if minor {
		kind = version.Minor
	}
	if patch {
		kind = version.Patch
	}
	return kind
}

// Deps are the collaborators of a Runner.
type Deps struct {
	Repo     Repository
	Git      git.Runner
	Bumper   PackageBumper
	Progress *progress.Indicator
	Stdout   io.Writer
	Stderr   io.Writer
	Now      func() time.Time
}

// Result describes a finished run.
type Result struct {
	Version version.Version
	Tag     string
	// Path is the changelog location.
	Path string
	// Written is false for dry runs and ranges without changes.
	Written bool
	Commits int
	// Content is the rendered changelog, set when commits were found.
	Content string
	// DebugFile is the dump path when Debug is DebugFile.
	DebugFile string
}

// Runner performs a release run.
type Runner struct {
	cfg  *config.Configuration
	opts Options
	deps Deps
}

// New creates a Runner. Missing writers discard output and a missing clock
// uses time.Now.
func New(cfg *config.Configuration, opts Options, deps Deps) *Runner {
	if deps.Stdout == nil {
		deps.Stdout = io.Discard
	}
	if deps.Stderr == nil {
		deps.Stderr = io.Discard
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Runner{cfg: cfg, opts: opts, deps: deps}
}

// Open creates a Runner for the repository containing opts.Dir, using the
// git CLI, go-git and the configured bump command.
func Open(cfg *config.Configuration, opts Options, stdout, stderr io.Writer) (*Runner, error) {
	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, clierrors.Wrap(err, clierrors.Runtime)
	}
	opts.Dir = dir

	repo, err := git.Open(dir)
	if err != nil {
		return nil, clierrors.NotGitRepository(dir, err)
	}

	bumper, err := pkgjson.NewBumper(cfg.BumpCommand)
	if err != nil {
		return nil, clierrors.ConfigInvalid(err)
	}

	return New(cfg, opts, Deps{
		Repo:     repo,
		Git:      git.NewExecRunner(dir),
		Bumper:   bumper,
		Progress: progress.NewIndicator(stderr, progress.DetectTerminalCapabilities()),
		Stdout:   stdout,
		Stderr:   stderr,
	}), nil
}

// Run executes the release. Every failure after the changelog was loaded
// rolls back a changelog that still holds no release.
func (r *Runner) Run(ctx context.Context) (_ *Result, err error) {
	snap := &Snapshot{
		RunID:  newRunID(r.deps.Now()),
		Dir:    r.opts.Dir,
		Config: r.cfg,
	}
	result := &Result{}

	if r.opts.Debug != DebugOff {
		defer func() {
			if err != nil {
				snap.Error = err.Error()
			}
			path, derr := writeSnapshot(snap, r.opts.Debug, r.opts.Dir, r.deps.Stderr)
			if derr != nil {
				err = appendError(err, derr)
				return
			}
			result.DebugFile = path
		}()
	}

	pkg, err := pkgjson.Load(r.opts.Dir)
	if err != nil {
		return nil, clierrors.Wrap(err, clierrors.Runtime)
	}

	override, err := provider.Parse(r.cfg.Provider)
	if err != nil {
		return nil, clierrors.ConfigInvalid(err)
	}
	meta, err := git.ResolveMetadata(r.deps.Repo, r.cfg.Remote, pkg.Repository, override)
	if err != nil {
		return nil, clierrors.Wrap(err, clierrors.Runtime)
	}
	snap.Metadata = meta
	logDebug("[release] %s on branch %q", meta, meta.Branch)

	if err := r.checkPreconditions(); err != nil {
		return nil, err
	}

	start, err := version.FromString(r.cfg.StartVersion)
	if err != nil {
		return nil, clierrors.ConfigInvalid(err)
	}

	doc, err := changelog.Load(changelog.LoadOptions{
		Dir:           r.opts.Dir,
		FileName:      r.cfg.FileName,
		Branch:        meta.Branch,
		VersionPrefix: r.cfg.VersionPrefix,
		StartVersion:  start,
	}, r.deps.Repo)
	if doc == nil {
		return nil, clierrors.Wrap(err, clierrors.Runtime)
	}
	result.Path = doc.Path
	snap.Document = documentState(doc)

	defer func() {
		if err == nil && (result.Written || !doc.Created) {
			return
		}
		removed, rerr := changelog.Rollback(doc)
		if rerr != nil {
			err = appendError(err, rerr)
			return
		}
		if removed {
			logDebug("[release] rolled back %s", doc.Path)
		}
	}()

	if err != nil {
		return nil, clierrors.PreviousTagMissing(doc.PreviousTag(), err)
	}
	snap.Releases = changelog.ParseReleases(doc.FullContent, r.cfg.VersionPrefix)

	rng := git.Range{From: r.opts.From, To: r.opts.To}
	if rng.From == "" {
		rng.From = doc.LatestCommit
	}
	snap.Range = rng
	if err := rng.Validate(); err != nil {
		return nil, clierrors.InvalidRange(err)
	}

	records, err := r.readHistory(ctx, meta.Provider, rng)
	if err != nil {
		return nil, err
	}
	snap.Records = records

	commits, err := commit.NewAll(records, meta.Provider)
	if err != nil {
		return nil, clierrors.CommitRecordInvalid(err)
	}
	result.Commits = len(commits)

	if len(commits) == 0 {
		output.PrintNoChanges(r.deps.Stdout)
		return result, nil
	}

	date := r.opts.Date
	if date.IsZero() {
		date = r.deps.Now()
	}
	bump := r.bumpKind()
	result.Version = changelog.NextVersion(doc, bump)
	result.Tag = result.Version.Tag(r.cfg.VersionPrefix)
	snap.Next = result.Tag

	result.Content, _ = changelog.Render(doc, commits, changelog.RenderOptions{
		Header:      r.cfg.Header,
		Bump:        bump,
		Date:        date,
		Provider:    meta.Provider,
		RepoURL:     meta.RepoURL,
		Order:       r.cfg.Order,
		GroupByType: r.cfg.GroupByType,
		TypeTitle:   r.cfg.TypeTitle,
	})

	output.PrintReleaseHeader(r.deps.Stdout, result.Tag, len(commits))

	if r.opts.DryRun {
		r.preview(doc, result, snap.Releases)
		return result, nil
	}

	if err := changelog.Write(doc, result.Content); err != nil {
		return nil, clierrors.Wrap(err, clierrors.Runtime)
	}
	result.Written = true
	output.PrintSuccess(r.deps.Stdout, "Wrote "+r.relative(doc.Path))

	if err := r.publish(ctx, pkg, doc, result, meta.Provider); err != nil {
		return result, err
	}
	return result, nil
}

// checkPreconditions fails before any file is touched.
func (r *Runner) checkPreconditions() error {
	if r.opts.DryRun {
		return nil
	}
	if r.cfg.Commit && r.cfg.RequireCleanWorkingTree {
		clean, err := r.deps.Repo.IsClean()
		if err != nil {
			return clierrors.Wrap(err, clierrors.Runtime)
		}
		if !clean {
			return clierrors.WorkingTreeDirty()
		}
	}
	if r.cfg.BumpPackage && r.deps.Bumper != nil {
		if err := r.deps.Bumper.Validate(); err != nil {
			return clierrors.PackageBumpFailed(err)
		}
	}
	if r.cfg.Push {
		if _, err := shlex.Split(r.cfg.PushOptions); err != nil {
			return clierrors.ConfigInvalid(fmt.Errorf("pushOptions: %w", err))
		}
	}
	return nil
}

// readHistory queries merges and commits in rng and selects the records
// that become entries.
func (r *Runner) readHistory(ctx context.Context, p provider.Provider, rng git.Range) ([]commit.Record, error) {
	client := git.NewClient(r.deps.Git, p, git.WithRemote(r.cfg.Remote))

	var merges, logs []commit.Record
	err := r.deps.Progress.Step("Reading git history", func() error {
		var err error
		if merges, err = client.Merges(ctx, rng); err != nil {
			return err
		}
		logs, err = client.Commits(ctx, rng)
		return err
	})
	if err != nil {
		return nil, gitError(err)
	}

	records := SelectRecords(merges, logs, r.cfg.PullRequestOnly)
	logDebug("[release] %d merges, %d commits, %d selected", len(merges), len(logs), len(records))
	return records, nil
}

// publish bumps the package, then commits, tags and pushes as configured.
func (r *Runner) publish(ctx context.Context, pkg *pkgjson.Package, doc *changelog.Document, res *Result, p provider.Provider) error {
	client := git.NewClient(r.deps.Git, p, git.WithRemote(r.cfg.Remote))
	files := []string{r.relative(doc.Path)}

	if r.cfg.BumpPackage {
		if !pkg.Exists {
			logDebug("[release] no %s in %s, skipping version bump", pkgjson.FileName, r.opts.Dir)
		} else if r.deps.Bumper == nil {
			return clierrors.PackageBumpFailed(errors.New("no bump command configured"))
		} else {
			if _, err := r.deps.Bumper.Bump(ctx, r.opts.Dir, res.Version.String()); err != nil {
				return clierrors.PackageBumpFailed(err)
			}
			output.PrintSuccess(r.deps.Stdout, fmt.Sprintf("Bumped %s to %s", pkgjson.FileName, res.Version))
			files = append(files, r.relative(pkg.Path))
			if lock := filepath.Join(r.opts.Dir, LockFileName); fileExists(lock) {
				files = append(files, r.relative(lock))
			}
		}
	}

	if r.cfg.Commit {
		message := r.cfg.ReleaseCommitMessage(res.Tag)
		output.PrintExecutingCommand(r.deps.Stdout, fmt.Sprintf("git commit -m %q", message))
		if err := client.Add(ctx, files...); err != nil {
			return gitError(err)
		}
		if err := client.Commit(ctx, message); err != nil {
			return gitError(err)
		}
	}

	if r.cfg.Tag {
		output.PrintExecutingCommand(r.deps.Stdout, "git tag "+res.Tag)
		if err := client.Tag(ctx, res.Tag); err != nil {
			return gitError(err)
		}
	}

	if r.cfg.Push {
		extra, _ := shlex.Split(r.cfg.PushOptions)
		output.PrintExecutingCommand(r.deps.Stdout, strings.TrimSpace("git push "+r.cfg.Remote+" HEAD "+strings.Join(extra, " ")))
		if err := client.Push(ctx, "HEAD", extra...); err != nil {
			return gitError(err)
		}
	}
	return nil
}

// preview prints the new release section instead of writing it.
func (r *Runner) preview(doc *changelog.Document, res *Result, previous []changelog.Release) {
	section := res.Content
	if prev := strings.TrimLeft(doc.Content, "\n"); prev != "" {
		section = strings.TrimSuffix(section, "\n\n"+prev) + "\n"
	}

	output.PrintPreviewStart(r.deps.Stdout, "dry run: "+r.relative(doc.Path))
	fmt.Fprint(r.deps.Stdout, section)

	if len(previous) > 0 {
		fmt.Fprintf(r.deps.Stdout, "\n%d previous releases, latest %s\n", len(previous), previous[0].Version.Tag(r.cfg.VersionPrefix))
	}
}

func (r *Runner) bumpKind() version.BumpKind {
	if r.opts.Bump != "" {
		return r.opts.Bump
	}
	return version.BumpKind(r.cfg.VersionBumpType)
}

// relative returns path relative to the project directory when possible.
func (r *Runner) relative(path string) string {
	if rel, err := filepath.Rel(r.opts.Dir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// gitError maps errors from the git package to categorized CLI errors.
func gitError(err error) error {
	var (
		rangeErr  *git.RangeError
		formatErr *git.FormatError
		cmdErr    *git.CommandError
	)
	switch {
	case errors.As(err, &rangeErr):
		return clierrors.InvalidRange(err)
	case errors.As(err, &formatErr):
		return clierrors.CommitRecordInvalid(err)
	case errors.As(err, &cmdErr):
		return clierrors.GitCommandFailed(err)
	default:
		return clierrors.Wrap(err, clierrors.Runtime)
	}
}

// appendError combines err with a cleanup failure. A nil err returns extra.
func appendError(err, extra error) error {
	if err == nil {
		return extra
	}
	return multierror.Append(err, extra)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
