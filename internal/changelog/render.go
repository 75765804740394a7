package changelog

import (
	"strings"
	"time"

	"github.com/changeloger/changeloger/internal/commit"
	"github.com/changeloger/changeloger/internal/provider"
	"github.com/changeloger/changeloger/internal/version"
)

// RenderOptions controls the layout of a new release section.
type RenderOptions struct {
	Header string
	Bump   version.BumpKind
	// Date stamps the version header. Zero means now.
	Date     time.Time
	Provider provider.Provider
	RepoURL  string

	Order       []string
	GroupByType bool
	// TypeTitle names the "### " sections when grouping. Types without a
	// title use the type itself.
	TypeTitle map[string]string
}

// Render returns the changelog with a release section for commits placed
// above the previous content. With no commits it returns the current content
// and false.
//
// The layout is:
//
//	{header}
//
//	## {prefix}{version} - {date}
//
//	[compare changes]({url})
//
//	- {entry}
//
//	{previous content}
func Render(doc *Document, commits []*commit.Commit, opts RenderOptions) (string, bool) {
	if len(commits) == 0 {
		return doc.FullContent, false
	}

	date := opts.Date
	if date.IsZero() {
		date = time.Now()
	}
	next := NextVersion(doc, opts.Bump)

	parts := []string{
		opts.Header,
		next.Format(version.HeaderMarker+doc.VersionPrefix, &date),
	}
	if url := opts.Provider.CompareURL(opts.RepoURL, doc.PreviousTag(), next.Tag(doc.VersionPrefix)); url != "" {
		parts = append(parts, "[compare changes]("+url+")")
	}
	parts = append(parts, renderEntries(commits, opts))

	out := strings.Join(parts, "\n\n")
	if prev := strings.TrimLeft(doc.Content, "\n"); prev != "" {
		return out + "\n\n" + prev, true
	}
	return out + "\n", true
}

func renderEntries(commits []*commit.Commit, opts RenderOptions) string {
	groups := commit.Classify(commits, opts.Order)
	if !opts.GroupByType {
		return joinEntries(commit.Flatten(groups), opts.RepoURL)
	}

	sections := make([]string, 0, len(groups))
	for _, g := range groups {
		sections = append(sections, "### "+title(opts.TypeTitle, g.Type)+"\n\n"+joinEntries(g.Commits, opts.RepoURL))
	}
	return strings.Join(sections, "\n\n")
}

func joinEntries(commits []*commit.Commit, repoURL string) string {
	lines := make([]string, 0, len(commits))
	for _, c := range commits {
		lines = append(lines, c.Entry(repoURL))
	}
	return strings.Join(lines, "\n")
}

func title(titles map[string]string, commitType string) string {
	if t := titles[commitType]; t != "" {
		return t
	}
	return commitType
}
