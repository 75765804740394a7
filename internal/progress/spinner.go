package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Indicator reports the steps of a run. The spinner only animates on a
// terminal; elsewhere Start is silent and Stop prints a plain status line.
type Indicator struct {
	out     io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols
	spin    *spinner.Spinner
}

// NewIndicator creates an indicator writing to out.
func NewIndicator(out io.Writer, caps TerminalCapabilities) *Indicator {
	ind := &Indicator{out: out, caps: caps, symbols: SelectSymbols(caps)}
	if caps.IsTTY {
		ind.spin = spinner.New(spinner.CharSets[ind.symbols.SpinnerSet], 100*time.Millisecond,
			spinner.WithWriter(out),
			spinner.WithHiddenCursor(true),
		)
	}
	return ind
}

// Start begins a step.
func (i *Indicator) Start(msg string) {
	if i == nil || i.spin == nil {
		return
	}
	i.spin.Suffix = " " + msg
	i.spin.Start()
}

// Stop ends the current step with a success or failure line.
func (i *Indicator) Stop(msg string, ok bool) {
	if i == nil {
		return
	}
	if i.spin != nil {
		i.spin.Stop()
	}
	symbol := i.symbols.Checkmark
	if !ok {
		symbol = i.symbols.Failure
	}
	fmt.Fprintf(i.out, "%s %s\n", symbol, msg)
}

// Step runs fn between Start and Stop.
func (i *Indicator) Step(msg string, fn func() error) error {
	i.Start(msg)
	err := fn()
	i.Stop(msg, err == nil)
	return err
}
