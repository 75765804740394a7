package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	tests := map[string]struct {
		args []string
		want []string
	}{
		"plain": {
			args: []string{"version", "--plain"},
			want: []string{"changeloger dev\n", "commit: unknown\n", "go: " + runtime.Version() + "\n"},
		},
		"pretty": {
			args: []string{"version"},
			want: []string{"changeloger dev\n", "development build\n", runtime.GOOS + "/" + runtime.GOARCH},
		},
		"alias": {
			args: []string{"v", "--plain"},
			want: []string{"changeloger dev\n"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			stdout, _, err := execute(t, tt.args...)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, stdout, want)
			}
		})
	}
}
