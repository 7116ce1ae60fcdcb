package cli

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// newSpinner shows msg next to a spinner on out while a generation runs.
// Nothing is drawn when out is not a terminal.
func newSpinner(out io.Writer, msg string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(out))
	s.Suffix = "  " + msg
	_ = s.Color("cyan")
	return s
}
