// Package errors provides structured error handling for the changeloger CLI.
// It includes categorized errors with actionable remediation guidance.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the type of error that occurred.
type ErrorCategory int

const (
	// Configuration errors are caused by malformed or invalid configuration.
	Configuration ErrorCategory = iota
	// Range errors are caused by an unusable commit range.
	Range
	// Parse errors occur when a version or commit record cannot be parsed.
	Parse
	// ExternalCommand errors occur when git or npm fails.
	ExternalCommand
	// DirtyWorkingTree errors occur when a release would commit unrelated changes.
	DirtyWorkingTree
	// Runtime errors cover everything else during a run.
	Runtime
	// Usage errors are caused by invalid command-line arguments.
	Usage
)

// String returns a human-readable name for the error category.
func (c ErrorCategory) String() string {
	switch c {
	case Configuration:
		return "Configuration Error"
	case Range:
		return "Range Error"
	case Parse:
		return "Parse Error"
	case ExternalCommand:
		return "Command Error"
	case DirtyWorkingTree:
		return "Working Tree Error"
	case Runtime:
		return "Runtime Error"
	case Usage:
		return "Usage Error"
	default:
		return "Error"
	}
}

// CLIError is a structured error with category and remediation guidance.
type CLIError struct {
	// Category is the type of error (Configuration, Range, etc.)
	Category ErrorCategory
	// Message is a human-readable description of what went wrong.
	Message string
	// Remediation is a list of actionable steps to resolve the error.
	Remediation []string
	// Usage shows the correct command syntax (optional).
	Usage string
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	return e.Message
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

func newError(category ErrorCategory, message string, remediation []string) *CLIError {
	return &CLIError{
		Category:    category,
		Message:     message,
		Remediation: remediation,
	}
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, remediation ...string) *CLIError {
	return newError(Configuration, message, remediation)
}

// NewRangeError creates a new commit range error.
func NewRangeError(message string, remediation ...string) *CLIError {
	return newError(Range, message, remediation)
}

// NewParseError creates a new parse error.
func NewParseError(message string, remediation ...string) *CLIError {
	return newError(Parse, message, remediation)
}

// NewExternalCommandError creates a new external command error.
func NewExternalCommandError(message string, remediation ...string) *CLIError {
	return newError(ExternalCommand, message, remediation)
}

// NewDirtyWorkingTreeError creates a new working tree error.
func NewDirtyWorkingTreeError(message string, remediation ...string) *CLIError {
	return newError(DirtyWorkingTree, message, remediation)
}

// NewRuntimeError creates a new runtime error.
func NewRuntimeError(message string, remediation ...string) *CLIError {
	return newError(Runtime, message, remediation)
}

// NewUsageError creates a new command-line usage error.
func NewUsageError(message string, remediation ...string) *CLIError {
	return newError(Usage, message, remediation)
}

// Wrap wraps an existing error with a CLIError, preserving the original message.
func Wrap(err error, category ErrorCategory, remediation ...string) *CLIError {
	if err == nil {
		return nil
	}
	return &CLIError{
		Category:    category,
		Message:     err.Error(),
		Remediation: remediation,
		Cause:       err,
	}
}

// WrapWithMessage wraps an error with a custom message and category.
func WrapWithMessage(err error, category ErrorCategory, message string, remediation ...string) *CLIError {
	if err == nil {
		return nil
	}
	return &CLIError{
		Category:    category,
		Message:     fmt.Sprintf("%s: %v", message, err),
		Remediation: remediation,
		Cause:       err,
	}
}

// IsCLIError checks if an error is, or wraps, a CLIError.
func IsCLIError(err error) bool {
	return AsCLIError(err) != nil
}

// AsCLIError returns the first CLIError in err's chain, or nil.
func AsCLIError(err error) *CLIError {
	var cliErr *CLIError
	if stderrors.As(err, &cliErr) {
		return cliErr
	}
	return nil
}

// CategoryOf returns the category of the first CLIError in err's chain,
// defaulting to Runtime.
func CategoryOf(err error) ErrorCategory {
	if cliErr := AsCLIError(err); cliErr != nil {
		return cliErr.Category
	}
	return Runtime
}
