package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/changeloger/changeloger/internal/commit"
	"github.com/changeloger/changeloger/internal/provider"
	"golang.org/x/sync/errgroup"
)

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"

	// logFormat emits one record per commit: short hash, full hash, author
	// name, author email, ISO-8601 author date, subject, body, refs, parents.
	logFormat = "--pretty=format:%h%x1f%H%x1f%an%x1f%ae%x1f%aI%x1f%s%x1f%b%x1f%D%x1f%p%x1e"

	// ReleaseCommitPattern matches commits created by previous releases.
	ReleaseCommitPattern = "^chore(release):"

	logFields = 9
)

// RangeError reports an unusable commit range.
type RangeError struct {
	From string
	To   string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid commit range: a start commit is required when the end commit is set (to=%s)", e.To)
}

// FormatError reports a git log record that does not have the expected
// fields.
type FormatError struct {
	Record string
	Fields int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("parsing git log: expected %d fields, got %d in %q", logFields, e.Fields, e.Record)
}

// Range selects the commits between From (exclusive) and To (inclusive).
// An empty From means the entire history up to To; an empty To means HEAD.
type Range struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Validate rejects an explicit end commit without a start commit.
func (r Range) Validate() error {
	if r.To != "" && !strings.EqualFold(r.To, "HEAD") && r.From == "" {
		return &RangeError{From: r.From, To: r.To}
	}
	return nil
}

func (r Range) revision() string {
	if r.From == "" {
		return ""
	}
	to := r.To
	if to == "" {
		to = "HEAD"
	}
	return r.From + ".." + to
}

// LogOptions narrows a log query.
type LogOptions struct {
	// Merges restricts the log to merge commits.
	Merges bool
	// ExcludeReleases drops commits whose subject starts with "chore(release):".
	ExcludeReleases bool
}

// Client runs history queries and release mutations through a Runner.
type Client struct {
	runner      Runner
	provider    provider.Provider
	remote      string
	concurrency int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRemote sets the remote whose tracking refs name a commit's branch.
func WithRemote(name string) ClientOption {
	return func(c *Client) {
		if name != "" {
			c.remote = name
		}
	}
}

// WithConcurrency bounds the number of concurrent merge resolutions.
func WithConcurrency(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// NewClient returns a Client detecting pull requests with p's pattern.
func NewClient(r Runner, p provider.Provider, opts ...ClientOption) *Client {
	c := &Client{runner: r, provider: p, remote: "origin", concurrency: 8}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Log returns the commits in rng, most recent first. Pull request detection
// and squashed commit resolution are left to Merges and Commits.
func (c *Client) Log(ctx context.Context, rng Range, opts LogOptions) ([]commit.Record, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	args := []string{"log"}
	if opts.Merges {
		args = append(args, "--merges")
	}
	if opts.ExcludeReleases {
		args = append(args, "--invert-grep", "--grep="+ReleaseCommitPattern)
	}
	args = append(args, logFormat)
	if rev := rng.revision(); rev != "" {
		args = append(args, rev)
	}

	out, err := c.runner.Run(ctx, args...)
	if err != nil {
		return nil, err
	}

	records, err := c.parseLog(out)
	if err != nil {
		return nil, err
	}
	logDebug("[git] log %q merges=%v: %d records", rng.revision(), opts.Merges, len(records))
	return records, nil
}

// Merges returns the merge commits in rng. Pull request merges carry the
// short hashes of the commits they introduced.
func (c *Client) Merges(ctx context.Context, rng Range) ([]commit.Record, error) {
	records, err := c.Log(ctx, rng, LogOptions{Merges: true})
	if err != nil {
		return nil, err
	}
	c.markPullRequests(records)
	if err := c.resolveSquashed(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Commits returns every commit in rng except previous release commits, with
// pull request merges resolved like Merges does.
func (c *Client) Commits(ctx context.Context, rng Range) ([]commit.Record, error) {
	records, err := c.Log(ctx, rng, LogOptions{ExcludeReleases: true})
	if err != nil {
		return nil, err
	}
	c.markPullRequests(records)
	if err := c.resolveSquashed(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// RevList returns the non-merge commits reachable from head but not since,
// truncated to short hashes.
func (c *Client) RevList(ctx context.Context, since, head string) ([]string, error) {
	if head == "" {
		head = "HEAD"
	}
	out, err := c.runner.Run(ctx, "rev-list", "--no-merges", since+".."+head)
	if err != nil {
		return nil, err
	}
	hashes := []string{}
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			hashes = append(hashes, commit.Short(line))
		}
	}
	return hashes, nil
}

func (c *Client) markPullRequests(records []commit.Record) {
	for i := range records {
		text := records[i].Message + "\n" + records[i].Body
		records[i].IsPullRequest = c.provider.IsPullRequest(text)
	}
}

// resolveSquashed fills Commits for every pull request record. Queries run
// concurrently; each result is stored at its record's index so log order is
// kept.
func (c *Client) resolveSquashed(ctx context.Context, records []commit.Record) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i := range records {
		if !records[i].IsPullRequest {
			continue
		}
		if len(records[i].ParentHashes) < 2 {
			records[i].Commits = []string{}
			continue
		}
		g.Go(func() error {
			parents := records[i].ParentHashes
			hashes, err := c.RevList(ctx, parents[0], parents[1])
			if err != nil {
				return fmt.Errorf("resolving commits of merge %s: %w", records[i].Hash, err)
			}
			records[i].Commits = hashes
			return nil
		})
	}
	return g.Wait()
}

func (c *Client) parseLog(out string) ([]commit.Record, error) {
	var records []commit.Record
	for _, chunk := range strings.Split(out, recordSep) {
		chunk = strings.TrimLeft(chunk, "\r\n")
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		fields := strings.Split(chunk, fieldSep)
		if len(fields) != logFields {
			return nil, &FormatError{Record: chunk, Fields: len(fields)}
		}

		rec := commit.Record{
			Hash:         fields[0],
			FullHash:     fields[1],
			AuthorName:   fields[2],
			AuthorEmail:  fields[3],
			Date:         fields[4],
			Message:      fields[5],
			Body:         strings.TrimSpace(fields[6]),
			Refs:         splitTrim(fields[7], ","),
			ParentHashes: strings.Fields(fields[8]),
		}
		rec.Branch = c.branchFromRefs(rec.Refs)
		records = append(records, rec)
	}
	return records, nil
}

func (c *Client) branchFromRefs(refs []string) *string {
	prefix := c.remote + "/"
	for _, ref := range refs {
		if strings.HasPrefix(ref, prefix) {
			b := strings.TrimPrefix(ref, prefix)
			return &b
		}
	}
	return nil
}

func splitTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
