package git

import (
	"errors"
	"fmt"
	"os"

	"github.com/changeloger/changeloger/internal/commit"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrTagNotFound is returned by ResolveTag for unknown tags.
var ErrTagNotFound = errors.New("tag not found")

// Repository exposes read-only repository metadata through go-git.
type Repository struct {
	repo *git.Repository
	root string
}

// openRepo opens a git repository at the specified path or current working directory.
// It uses go-git's PlainOpenWithOptions with DetectDotGit enabled to traverse
// up the directory tree to find the repository root.
func openRepo(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return repo, nil
}

// Open opens the repository containing path.
func Open(path string) (*Repository, error) {
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	root := path
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}
	return &Repository{repo: repo, root: root}, nil
}

// Root returns the worktree root.
func (r *Repository) Root() string { return r.root }

// CurrentBranch returns the checked out branch, or "" on a detached HEAD.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			// Unborn branch: HEAD points at a branch without commits.
			ref, rerr := r.repo.Storer.Reference(plumbing.HEAD)
			if rerr == nil && ref.Type() == plumbing.SymbolicReference {
				return ref.Target().Short(), nil
			}
		}
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}

	if !head.Name().IsBranch() {
		logDebug("[git] CurrentBranch: detached HEAD state")
		return "", nil
	}

	branch := head.Name().Short()
	logDebug("[git] CurrentBranch: %s", branch)
	return branch, nil
}

// RemoteURL returns the first URL of the named remote, or "" if the remote
// is not configured.
func (r *Repository) RemoteURL(name string) (string, error) {
	remote, err := r.repo.Remote(name)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			logDebug("[git] RemoteURL: remote %q not configured", name)
			return "", nil
		}
		return "", fmt.Errorf("reading remote %s: %w", name, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", nil
	}
	return urls[0], nil
}

// ResolveTag returns the short hash of the commit a tag points at.
// Annotated tags are peeled to their commit.
func (r *Repository) ResolveTag(name string) (string, error) {
	ref, err := r.repo.Tag(name)
	if err != nil {
		if errors.Is(err, git.ErrTagNotFound) {
			return "", fmt.Errorf("%w: %s", ErrTagNotFound, name)
		}
		return "", fmt.Errorf("resolving tag %s: %w", name, err)
	}

	hash := ref.Hash()
	if tag, err := r.repo.TagObject(hash); err == nil {
		c, err := tag.Commit()
		if err != nil {
			return "", fmt.Errorf("peeling tag %s: %w", name, err)
		}
		hash = c.Hash
	}

	short := commit.Short(hash.String())
	logDebug("[git] ResolveTag: %s -> %s", name, short)
	return short, nil
}

// IsClean reports whether the worktree has no staged or unstaged changes to
// tracked files. Untracked files are ignored.
func (r *Repository) IsClean() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("getting worktree status: %w", err)
	}

	for path, s := range status {
		if s.Worktree == git.Untracked && s.Staging == git.Untracked {
			continue
		}
		if s.Staging != git.Unmodified || s.Worktree != git.Unmodified {
			logDebug("[git] IsClean: %s has pending changes", path)
			return false, nil
		}
	}
	return true, nil
}
