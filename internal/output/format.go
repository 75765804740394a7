// Package output provides terminal output formatting utilities for the changeloger CLI.
// This package is designed to have minimal dependencies to avoid import cycles.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// GetTerminalWidth returns the terminal width, defaulting to 80 if unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// PrintPreviewStart prints a separator before a dry-run preview.
// Uses dim magenta styling to set the preview apart from status lines.
func PrintPreviewStart(out io.Writer, label string) {
	magenta := color.New(color.FgMagenta, color.Faint).SprintFunc()

	label = " " + label + " "
	lineLen := (GetTerminalWidth() - len(label)) / 2
	if lineLen < 3 {
		lineLen = 3
	}

	line := strings.Repeat("─", lineLen)
	fmt.Fprintf(out, "%s%s%s\n", magenta(line), magenta(label), magenta(line))
}

// PrintReleaseHeader prints the version being released.
// Uses cyan for the version and white for the commit count.
func PrintReleaseHeader(out io.Writer, tag string, commits int) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	white := color.New(color.FgWhite, color.Bold).SprintFunc()
	noun := "commits"
	if commits == 1 {
		noun = "commit"
	}
	fmt.Fprintf(out, "%s %s\n", cyan(tag), white(fmt.Sprintf("(%d %s)", commits, noun)))
}

// PrintSuccess prints a green checkmark followed by a cyan message.
func PrintSuccess(out io.Writer, message string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("✓"), cyan(message))
}

// PrintNoChanges prints the message for a range without releasable commits.
func PrintNoChanges(out io.Writer) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintln(out, yellow("No changes found!"))
}

// PrintExecutingCommand prints the command being executed with colored styling.
// Uses magenta arrow and dim text for the command details.
func PrintExecutingCommand(out io.Writer, command string) {
	magenta := color.New(color.FgMagenta).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", magenta("→"), dim(command))
}

// FormatDuration renders d as seconds with two decimals, e.g. "1.25s".
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// PrintDone prints the total run time.
func PrintDone(out io.Writer, d time.Duration) {
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintln(out, dim("Done in "+FormatDuration(d)))
}
