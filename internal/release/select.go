package release

import "github.com/changeloger/changeloger/internal/commit"

// SelectRecords picks the log records that become changelog entries.
//
// Merges that are not pull requests are dropped, and so are commits already
// introduced by a pull request merge in the range. With prOnly set, only the
// pull request merges remain.
func SelectRecords(merges, logs []commit.Record, prOnly bool) []commit.Record {
	plain := make(map[string]bool)
	squashed := make(map[string]bool)
	for _, m := range merges {
		if !m.IsPullRequest {
			plain[m.Hash] = true
			continue
		}
		for _, h := range m.Commits {
			squashed[commit.Short(h)] = true
		}
	}

	out := make([]commit.Record, 0, len(logs))
	for _, rec := range logs {
		if plain[rec.Hash] {
			continue
		}
		if prOnly {
			if rec.IsPullRequest {
				out = append(out, rec)
			}
			continue
		}
		if squashed[commit.Short(longestHash(rec))] {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func longestHash(rec commit.Record) string {
	if rec.FullHash != "" {
		return rec.FullHash
	}
	return rec.Hash
}
