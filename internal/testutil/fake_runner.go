package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// FakeResponse is the canned result for one command line.
type FakeResponse struct {
	Stdout string
	Err    error
}

// FakeRunner answers git invocations from a table keyed by the space-joined
// arguments and records every call. It is safe for concurrent use.
type FakeRunner struct {
	mu        sync.Mutex
	responses map[string]FakeResponse
	calls     []CallRecord
}

// NewFakeRunner returns an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{responses: make(map[string]FakeResponse)}
}

// On registers stdout for the command line args.
func (f *FakeRunner) On(stdout string, args ...string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[strings.Join(args, " ")] = FakeResponse{Stdout: stdout}
	return f
}

// OnError registers a failure for the command line args.
func (f *FakeRunner) OnError(err error, args ...string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[strings.Join(args, " ")] = FakeResponse{Err: err}
	return f
}

// Run implements the git runner interface. Unregistered command lines fail.
func (f *FakeRunner) Run(_ context.Context, args ...string) (string, error) {
	key := strings.Join(args, " ")

	f.mu.Lock()
	defer f.mu.Unlock()

	resp, ok := f.responses[key]
	rec := CallRecord{Method: "Run", Args: append([]string(nil), args...), Timestamp: time.Now()}
	if !ok {
		resp.Err = fmt.Errorf("unexpected git invocation: %s", key)
	}
	rec.Response = resp.Stdout
	rec.Error = resp.Err
	if resp.Err != nil {
		rec.ExitCode = 1
	}
	f.calls = append(f.calls, rec)
	return resp.Stdout, resp.Err
}

// Calls returns the recorded invocations in call order.
func (f *FakeRunner) Calls() []CallRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CallRecord(nil), f.calls...)
}

// Called reports whether a command line starting with prefix was run.
func (f *FakeRunner) Called(prefix ...string) bool {
	want := strings.Join(prefix, " ")
	for _, c := range f.Calls() {
		if strings.HasPrefix(strings.Join(c.Args, " "), want) {
			return true
		}
	}
	return false
}
