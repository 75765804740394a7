// Package lifecycle provides wrapper functions for CLI command execution.
// It handles timing and completion reporting so commands don't repeat the
// boilerplate.
//
// The lifecycle package is intentionally minimal: no event bus, no goroutines,
// no external dependencies. Each wrapper captures the start time, executes the
// provided function, calculates the duration, and calls the handler.
package lifecycle

import (
	"context"
	"time"
)

// CompletionHandler receives the outcome of a command.
//
// Implementations must be safe for nil receivers - the wrapper functions
// check for nil before calling any method.
type CompletionHandler interface {
	// OnCommandComplete is called when a CLI command finishes execution.
	// Parameters:
	//   - name: the command name (e.g., "generate", "init")
	//   - success: true if command completed without error
	//   - duration: how long the command took to execute
	OnCommandComplete(name string, success bool, duration time.Duration)
}

// Run executes fn and reports its outcome to handler.
func Run(handler CompletionHandler, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	if handler != nil {
		handler.OnCommandComplete(name, err == nil, time.Since(start))
	}
	return err
}

// RunWithContext is Run for functions taking a context.
func RunWithContext(ctx context.Context, handler CompletionHandler, name string, fn func(context.Context) error) error {
	return Run(handler, name, func() error { return fn(ctx) })
}

// HandlerFunc adapts a function to CompletionHandler.
type HandlerFunc func(name string, success bool, duration time.Duration)

// OnCommandComplete calls f.
func (f HandlerFunc) OnCommandComplete(name string, success bool, duration time.Duration) {
	if f != nil {
		f(name, success, duration)
	}
}
