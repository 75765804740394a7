// Package commit turns git log records into typed commits and renders them
// as changelog entries.
package commit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/changeloger/changeloger/internal/provider"
)

// ShortHashLen is the length hashes are truncated to in changelog links.
const ShortHashLen = 7

// Record is one parsed git log entry before validation.
type Record struct {
	Hash          string   `yaml:"hash"`
	FullHash      string   `yaml:"full_hash,omitempty"`
	AuthorName    string   `yaml:"author_name"`
	AuthorEmail   string   `yaml:"author_email"`
	Date          string   `yaml:"date"`
	Message       string   `yaml:"message"`
	Body          string   `yaml:"body,omitempty"`
	Refs          []string `yaml:"refs,omitempty"`
	ParentHashes  []string `yaml:"parent_hashes,omitempty"`
	Branch        *string  `yaml:"branch,omitempty"`
	IsPullRequest bool     `yaml:"is_pull_request"`
	Commits       []string `yaml:"commits,omitempty"`
}

// Commit is a validated, immutable commit record.
type Commit struct {
	rec      Record
	date     time.Time
	provider provider.Provider
	conv     Conventional
}

// Conventional holds the parts of a conventional commit subject. Type is
// empty when the text did not match.
type Conventional struct {
	Type    string
	Scope   string
	Subject string
}

var (
	conventionalPattern = regexp.MustCompile(`^([a-z]+)(\(([^)]+)\))?:\s*(.+)`)
	bitbucketPRNumber   = regexp.MustCompile(`Merged in (.+) \(pull request #(\d+)\)`)
)

// New validates rec and builds a Commit tagged with p.
func New(rec Record, p provider.Provider) (*Commit, error) {
	if strings.TrimSpace(rec.Hash) == "" {
		return nil, fmt.Errorf("commit record: hash is required")
	}
	if strings.TrimSpace(rec.Message) == "" {
		return nil, fmt.Errorf("commit record %s: message is required", rec.Hash)
	}
	date, err := time.Parse(time.RFC3339, rec.Date)
	if err != nil {
		return nil, fmt.Errorf("commit record %s: invalid date %q: %w", rec.Hash, rec.Date, err)
	}
	if !rec.IsPullRequest && rec.Commits != nil {
		return nil, fmt.Errorf("commit record %s: squashed commits set on a non pull request commit", rec.Hash)
	}

	rec.Refs = append([]string(nil), rec.Refs...)
	rec.ParentHashes = append([]string(nil), rec.ParentHashes...)
	if rec.Commits != nil {
		rec.Commits = append([]string{}, rec.Commits...)
	}

	c := &Commit{rec: rec, date: date, provider: p}
	c.conv = parseConventional(c.sourceText())
	return c, nil
}

// NewAll builds a Commit for every record, stopping at the first invalid one.
func NewAll(recs []Record, p provider.Provider) ([]*Commit, error) {
	commits := make([]*Commit, 0, len(recs))
	for _, rec := range recs {
		c, err := New(rec, p)
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}
	return commits, nil
}

func (c *Commit) Hash() string                { return c.rec.Hash }
func (c *Commit) Message() string             { return c.rec.Message }
func (c *Commit) Body() string                { return c.rec.Body }
func (c *Commit) Date() time.Time             { return c.date }
func (c *Commit) AuthorName() string          { return c.rec.AuthorName }
func (c *Commit) AuthorEmail() string         { return c.rec.AuthorEmail }
func (c *Commit) IsPullRequest() bool         { return c.rec.IsPullRequest }
func (c *Commit) Provider() provider.Provider { return c.provider }
func (c *Commit) Conventional() Conventional  { return c.conv }

// Branch returns the origin branch the commit was seen on, if any.
func (c *Commit) Branch() (string, bool) {
	if c.rec.Branch == nil {
		return "", false
	}
	return *c.rec.Branch, true
}

func (c *Commit) Refs() []string         { return append([]string(nil), c.rec.Refs...) }
func (c *Commit) ParentHashes() []string { return append([]string(nil), c.rec.ParentHashes...) }

// Commits returns the squashed commit hashes of a pull request merge.
func (c *Commit) Commits() []string {
	if c.rec.Commits == nil {
		return nil
	}
	return append([]string{}, c.rec.Commits...)
}

// Record returns a copy of the underlying record.
func (c *Commit) Record() Record {
	rec := c.rec
	rec.Refs = c.Refs()
	rec.ParentHashes = c.ParentHashes()
	rec.Commits = c.Commits()
	return rec
}

// PullRequestNumber extracts the pull request number from a Bitbucket merge
// message. Other providers do not encode it in a parseable way.
func (c *Commit) PullRequestNumber() (int, bool) {
	if !c.rec.IsPullRequest || c.provider != provider.Bitbucket {
		return 0, false
	}
	m := bitbucketPRNumber.FindStringSubmatch(c.rec.Message)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return n, true
}

// sourceText is the text entries and classification are derived from: the
// first body line of a pull request merge, the subject otherwise.
func (c *Commit) sourceText() string {
	if c.rec.IsPullRequest {
		if line := firstLine(c.rec.Body); line != "" {
			return line
		}
	}
	return c.rec.Message
}

func parseConventional(text string) Conventional {
	m := conventionalPattern.FindStringSubmatch(text)
	if m == nil {
		return Conventional{}
	}
	return Conventional{Type: m[1], Scope: m[3], Subject: strings.TrimSpace(m[4])}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// Short truncates a hash to ShortHashLen characters.
func Short(hash string) string {
	if len(hash) > ShortHashLen {
		return hash[:ShortHashLen]
	}
	return hash
}
