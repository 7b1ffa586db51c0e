package main

import (
	"os"
	"time"

	"metricls/internal/ls"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// newProgress returns a spinner on w, or nil when w is not a terminal.
func newProgress(w *os.File) ls.Progress {
	if !isatty.IsTerminal(w.Fd()) {
		return nil
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " waiting for the set directory"
	return s
}
