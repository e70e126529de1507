package cmd

import (
	"fmt"
	"io"
	"time"

	"jaspiharness/pkg/logging"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// newTable creates a rounded table writing to out.
func newTable(out io.Writer, headers ...string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)

	row := make(table.Row, 0, len(headers))
	for _, h := range headers {
		row = append(row, text.FgHiCyan.Sprint(h))
	}
	t.AppendHeader(row)
	return t
}

func printEmpty(out io.Writer, message string) {
	fmt.Fprintf(out, "%s\n", text.FgYellow.Sprint(message))
}

// progress shows a spinner on out while a step runs. It stays silent when quiet
// is set or debug logging is on, as log lines would tear the spinner line.
type progress struct {
	s *spinner.Spinner
}

func startProgress(out io.Writer, quiet bool, message string) *progress {
	if quiet || logging.Enabled(logging.LevelDebug) {
		return &progress{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.Suffix = " " + message
	s.Start()
	return &progress{s: s}
}

func (p *progress) done(err error, success string) {
	if p.s == nil {
		return
	}
	if err != nil {
		p.s.FinalMSG = text.FgRed.Sprint("✗ "+p.s.Suffix[1:]) + "\n"
	} else {
		p.s.FinalMSG = text.FgGreen.Sprint("✓ "+success) + "\n"
	}
	p.s.Stop()
}
