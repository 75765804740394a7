package release

import (
	"testing"

	"github.com/changeloger/changeloger/internal/commit"
	"github.com/stretchr/testify/assert"
)

func TestSelectRecords(t *testing.T) {
	prMerge := commit.Record{Hash: "m000001", IsPullRequest: true, Commits: []string{"aaa1111", "bbb2222"}}
	plainMerge := commit.Record{Hash: "m000002"}
	squashedA := commit.Record{Hash: "aaa1111", FullHash: "aaa1111ffffffffffffffffffffffffffffffff"}
	squashedB := commit.Record{Hash: "bbb2222c"}
	direct := commit.Record{Hash: "ccc3333"}

	merges := []commit.Record{prMerge, plainMerge}
	logs := []commit.Record{prMerge, squashedA, plainMerge, squashedB, direct}

	tests := map[string]struct {
		merges []commit.Record
		logs   []commit.Record
		prOnly bool
		want   []string
	}{
		"drops plain merges and squashed commits": {
			merges: merges,
			logs:   logs,
			want:   []string{"m000001", "ccc3333"},
		},
		"pull requests only": {
			merges: merges,
			logs:   logs,
			prOnly: true,
			want:   []string{"m000001"},
		},
		"no merges keeps everything": {
			logs: []commit.Record{squashedA, direct},
			want: []string{"aaa1111", "ccc3333"},
		},
		"empty": {
			want: []string{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := []string{}
			for _, rec := range SelectRecords(tt.merges, tt.logs, tt.prOnly) {
				got = append(got, rec.Hash)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
