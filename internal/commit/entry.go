package commit

import (
	"fmt"
	"strings"
)

// Entry renders the commit as a Markdown list item. Links are omitted when
// the provider cannot build a URL for repoURL.
func (c *Commit) Entry(repoURL string) string {
	var sb strings.Builder
	sb.WriteString("- ")
	sb.WriteString(c.text())

	if !c.rec.IsPullRequest {
		fmt.Fprintf(&sb, " (%s)", c.hashLink(repoURL, c.rec.Hash))
		return sb.String()
	}

	if n, ok := c.PullRequestNumber(); ok {
		if url := c.provider.PullRequestURL(repoURL, n); url != "" {
			fmt.Fprintf(&sb, " ([#%d](%s))", n, url)
		}
	}

	if len(c.rec.Commits) > 0 {
		links := make([]string, 0, len(c.rec.Commits))
		for _, h := range c.rec.Commits {
			links = append(links, c.hashLink(repoURL, Short(h)))
		}
		fmt.Fprintf(&sb, " (%s)", strings.Join(links, ", "))
	}
	return sb.String()
}

func (c *Commit) text() string {
	if c.conv.Type == "" {
		return c.sourceText()
	}
	if c.conv.Scope != "" {
		return fmt.Sprintf("**%s**: %s", c.conv.Scope, c.conv.Subject)
	}
	return c.conv.Subject
}

func (c *Commit) hashLink(repoURL, hash string) string {
	url := c.provider.CommitURL(repoURL, hash)
	if url == "" {
		return "`" + hash + "`"
	}
	return fmt.Sprintf("[`%s`](%s)", hash, url)
}
