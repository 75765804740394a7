package testutil

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeRunner(t *testing.T) {
	ctx := context.Background()
	f := NewFakeRunner().
		On("main\n", "branch", "--show-current").
		OnError(errors.New("boom"), "push", "origin", "HEAD")

	out, err := f.Run(ctx, "branch", "--show-current")
	require.NoError(t, err)
	assert.Equal(t, "main\n", out)

	_, err = f.Run(ctx, "push", "origin", "HEAD")
	assert.EqualError(t, err, "boom")

	_, err = f.Run(ctx, "status")
	assert.ErrorContains(t, err, "unexpected git invocation: status")

	calls := f.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, []string{"branch", "--show-current"}, calls[0].Args)
	assert.Equal(t, 1, calls[1].ExitCode)
	assert.True(t, f.Called("push"))
	assert.False(t, f.Called("tag"))
}

func TestFakeRunnerConcurrent(t *testing.T) {
	f := NewFakeRunner().On("ok", "rev-list")

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.Run(context.Background(), "rev-list")
		}()
	}
	wg.Wait()
	assert.Len(t, f.Calls(), 20)
}

func TestCallLogRoundTrip(t *testing.T) {
	f := NewFakeRunner().On("abc1234\n", "rev-list", "a..b")
	_, _ = f.Run(context.Background(), "rev-list", "a..b")
	_, _ = f.Run(context.Background(), "tag", "-a", "v1.0.0")

	path := filepath.Join(t.TempDir(), "calls.yaml")
	require.NoError(t, WriteCallLog(path, f.Calls()))

	log, err := ReadCallLog(path)
	require.NoError(t, err)
	require.Len(t, log.Entries, 2)
	assert.Equal(t, "Run", log.Entries[0].Method)
	assert.Equal(t, "abc1234\n", log.Entries[0].Response)
	assert.False(t, log.Entries[0].HasError())
	assert.True(t, log.Entries[1].HasError())
	assert.Equal(t, 1, log.Entries[1].ExitCode)
}

func TestReadCallLogMissing(t *testing.T) {
	_, err := ReadCallLog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
