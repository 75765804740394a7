package commit

// OtherType is the bucket for commits without a recognized type.
const OtherType = "other"

// DefaultOrder is the classification priority used when none is configured.
var DefaultOrder = []string{"feat", "perf", "fix", "refactor", "docs", "chore", "test", "style", "revert"}

// Group is a run of commits sharing a conventional type.
type Group struct {
	Type    string
	Commits []*Commit
}

// Classify buckets commits by conventional type following order. Empty
// buckets are dropped; unmatched types and types missing from order land in
// a trailing OtherType group. Input order is kept inside each bucket.
func Classify(commits []*Commit, order []string) []Group {
	if len(order) == 0 {
		order = DefaultOrder
	}

	known := make(map[string]bool, len(order))
	buckets := make(map[string][]*Commit, len(order))
	for _, t := range order {
		known[t] = true
	}

	var other []*Commit
	for _, c := range commits {
		t := c.Conventional().Type
		if t == "" || !known[t] {
			other = append(other, c)
			continue
		}
		buckets[t] = append(buckets[t], c)
	}

	groups := make([]Group, 0, len(order)+1)
	seen := make(map[string]bool, len(order))
	for _, t := range order {
		if seen[t] || len(buckets[t]) == 0 {
			continue
		}
		seen[t] = true
		groups = append(groups, Group{Type: t, Commits: buckets[t]})
	}
	if len(other) > 0 {
		groups = append(groups, Group{Type: OtherType, Commits: other})
	}
	return groups
}

// Flatten returns the commits of groups in group order.
func Flatten(groups []Group) []*Commit {
	var out []*Commit
	for _, g := range groups {
		out = append(out, g.Commits...)
	}
	return out
}
