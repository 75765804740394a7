// Package logging builds the logrus logger used across changeloger and wires
// it into the packages that expose debug hooks.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Options configures the logger.
type Options struct {
	Verbose bool
	// NoColor disables colored level names.
	NoColor bool
}

// New returns a text logger writing to out. Verbose enables debug level.
func New(out io.Writer, opts Options) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    opts.NoColor,
	})
	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

// DebugHook adapts logger to the func(format, args...) hooks taken by
// SetDebugLogger. Returns nil unless debug logging is enabled so the hooks
// stay disabled.
func DebugHook(logger *logrus.Logger) func(format string, args ...any) {
	if logger == nil || !logger.IsLevelEnabled(logrus.DebugLevel) {
		return nil
	}
	return logger.Debugf
}
