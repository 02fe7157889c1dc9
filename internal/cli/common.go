package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
)

// FormatError formats an error message for CLI output
func FormatError(err error) string {
	return fmt.Sprintf("Error: %v", err)
}

// FormatSuccess formats a success message for CLI output
func FormatSuccess(msg string) string {
	return fmt.Sprintf("✓ %s", msg)
}

// FormatWarning formats a warning message for CLI output
func FormatWarning(msg string) string {
	return fmt.Sprintf("⚠ %s", msg)
}

// Progress shows a spinner on w while a slow step runs. A quiet Progress
// prints nothing.
type Progress struct {
	s *spinner.Spinner
}

// StartProgress starts a spinner with the given message.
func StartProgress(w io.Writer, quiet bool, msg string) *Progress {
	if quiet {
		return &Progress{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + msg
	s.Start()
	return &Progress{s: s}
}

// Stop clears the spinner.
func (p *Progress) Stop() {
	if p.s != nil {
		p.s.Stop()
	}
}

// Fail stops the spinner and leaves msg in red.
func (p *Progress) Fail(msg string) {
	if p.s == nil {
		return
	}
	p.s.FinalMSG = text.FgRed.Sprint(msg) + "\n"
	p.s.Stop()
}
