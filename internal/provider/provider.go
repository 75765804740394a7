// Package provider describes the git hosting services changeloger links to.
// Each provider knows its pull request merge message and its URL layout for
// commits, pull requests and version comparisons.
package provider

import (
	"fmt"
	"regexp"
	"strings"
)

// Provider identifies a hosting service.
type Provider string

const (
	Git       Provider = "git"
	GitHub    Provider = "github"
	Bitbucket Provider = "bitbucket"
	GitLab    Provider = "gitlab"
)

// All lists every known provider in guessing order.
var All = []Provider{GitHub, GitLab, Bitbucket}

var pullRequestPatterns = map[Provider]*regexp.Regexp{
	GitHub:    regexp.MustCompile(`Merge pull request #\d+ from .+\n`),
	Bitbucket: regexp.MustCompile(`Merged in .+ \(pull request #\d+\)`),
	GitLab:    regexp.MustCompile(`Merge branch '.+' into '.+'\n`),
	// Plain git has no merge convention. This pattern matches any message
	// quoting a full commit line and is kept for compatibility.
	Git: regexp.MustCompile(`commit [0-9a-f]{40}\n`),
}

// Parse converts a configured name into a Provider. The empty string yields
// the empty Provider, meaning "guess from the repository URL".
func Parse(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	switch p {
	case "", Git, GitHub, Bitbucket, GitLab:
		return p, nil
	default:
		return "", fmt.Errorf("unknown provider %q (want git, github, bitbucket or gitlab)", name)
	}
}

// Guess infers the provider from a repository URL by host substring, checking
// github, gitlab, then bitbucket. Anything else is plain git.
func Guess(repoURL string) Provider {
	for _, p := range All {
		if strings.Contains(repoURL, string(p)) {
			return p
		}
	}
	return Git
}

// PullRequestPattern returns the merge message pattern for p. Unknown and
// empty providers use the plain git pattern.
func (p Provider) PullRequestPattern() *regexp.Regexp {
	if re, ok := pullRequestPatterns[p]; ok {
		return re
	}
	return pullRequestPatterns[Git]
}

// IsPullRequest reports whether a commit message text describes a pull
// request merge for p.
func (p Provider) IsPullRequest(text string) bool {
	return p.PullRequestPattern().MatchString(text)
}

// CommitURL links to a single commit. Returns "" when no link can be built.
func (p Provider) CommitURL(repoURL, hash string) string {
	if repoURL == "" {
		return ""
	}
	switch p {
	case GitHub:
		return repoURL + "/commit/" + hash
	case Bitbucket:
		return repoURL + "/commits/" + hash
	case GitLab:
		return repoURL + "/-/commit/" + hash
	default:
		return ""
	}
}

// PullRequestURL links to a pull (or merge) request.
func (p Provider) PullRequestURL(repoURL string, number int) string {
	if repoURL == "" {
		return ""
	}
	switch p {
	case GitHub:
		return fmt.Sprintf("%s/pull/%d", repoURL, number)
	case Bitbucket:
		return fmt.Sprintf("%s/pull-requests/%d", repoURL, number)
	case GitLab:
		return fmt.Sprintf("%s/merge_requests/%d", repoURL, number)
	default:
		return ""
	}
}

// CompareURL links to the diff between two refs. Returns "" without a
// repository URL or a previous ref.
func (p Provider) CompareURL(repoURL, prev, next string) string {
	if repoURL == "" || prev == "" {
		return ""
	}
	switch p {
	case GitHub, GitLab:
		return repoURL + "/compare/" + prev + "..." + next
	case Bitbucket:
		return repoURL + "/branches/compare/" + prev + ".." + next
	default:
		return ""
	}
}

var (
	httpURL = regexp.MustCompile(`^https?://`)
	sshURL  = regexp.MustCompile(`^[\w.-]+@([\w.-]+):(.+?)(?:\.git)?$`)
)

// ToRepoURL converts a remote URL into a browsable https repository URL.
// HTTP(S) remotes lose a trailing ".git"; SSH remotes of the form
// git@host:owner/repo.git become https://{provider}.com/owner/repo when the
// provider is known. Returns "" for anything else.
func ToRepoURL(remote string, p Provider) string {
	remote = strings.TrimSpace(remote)
	if remote == "" {
		return ""
	}
	if httpURL.MatchString(remote) {
		return strings.TrimSuffix(remote, ".git")
	}
	m := sshURL.FindStringSubmatch(remote)
	if m == nil {
		return ""
	}
	if p == "" {
		p = Guess(m[1])
	}
	if p == Git {
		return ""
	}
	return fmt.Sprintf("https://%s.com/%s", p, m[2])
}
