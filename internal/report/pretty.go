// Package report renders a compilation outcome for the terminal: either
// every diagnostic grouped by origin sub-file per pass, or an aggregate
// count per pass. It consumes the pass history as-is and re-parses nothing.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"texflow/internal/diag"
	"texflow/internal/schedule"
)

type palette struct {
	header *color.Color
	warn   *color.Color
	err    *color.Color
	ok     *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		header: color.New(color.Bold),
		warn:   color.New(color.FgYellow),
		err:    color.New(color.FgRed, color.Bold),
		ok:     color.New(color.FgGreen),
	}
	if !enabled {
		for _, c := range []*color.Color{p.header, p.warn, p.err, p.ok} {
			c.DisableColor()
		}
	}
	return p
}

// Pretty writes the full report for an outcome.
func Pretty(w io.Writer, out schedule.Outcome, opts Options) {
	pal := newPalette(opts.Color)
	for _, rec := range out.History {
		switch rec.Tool {
		case schedule.ToolProcessor:
			renderProcessorPass(w, rec, opts, pal)
		default:
			renderAuxPass(w, rec, pal)
		}
	}
	renderTerminal(w, out, pal)
}

func renderProcessorPass(w io.Writer, rec schedule.PassRecord, opts Options, pal palette) {
	_, _ = pal.header.Fprintf(w, " %s %s\n", rec.Command, rec.Unit)

	bag := rec.Diagnostics
	if bag == nil {
		bag = diag.NewBag(1)
	}

	if !opts.Quiet {
		for _, origin := range rec.InputFiles {
			warnings := warningsOf(bag.ByOrigin(origin))
			if len(warnings) == 0 {
				continue
			}
			if origin == "" {
				_, _ = fmt.Fprintln(w, " Preamble:")
			} else {
				_, _ = fmt.Fprintf(w, " %s\n", origin)
			}
			for _, d := range warnings {
				_, _ = pal.warn.Fprintf(w, "\t%s\n", formatWarning(d))
			}
		}
	}

	// The aggregate count is printed in both modes: it is the one number a
	// reader always wants per pass.
	if n := bag.Count(diag.SevWarning); n > 0 {
		_, _ = pal.warn.Fprintf(w, " %d warning(s)\n", n)
	}

	// Errors are shown even in quiet mode.
	errs := errorsOf(bag.Items())
	switch {
	case len(errs) > 0:
		_, _ = pal.err.Fprintln(w, " Errors found!")
		for _, d := range errs {
			_, _ = pal.err.Fprintf(w, " %s\n", formatError(d))
		}
	case rec.ExitCode != 0:
		// The processor refused but left nothing to point at.
		_, _ = pal.err.Fprintln(w, " No errors were found, but the return code is non-null. Inspect the .log file!")
	default:
		if !opts.Quiet {
			_, _ = pal.ok.Fprintln(w, " No errors found")
		}
	}
	if !opts.Quiet {
		_, _ = fmt.Fprintln(w)
	}
}

// renderAuxPass echoes a bib/index pass verbatim: their output is small and
// always informative.
func renderAuxPass(w io.Writer, rec schedule.PassRecord, pal palette) {
	_, _ = pal.header.Fprintf(w, " %s %s\n", rec.Command, rec.Unit)
	for _, line := range strings.Split(strings.TrimRight(rec.Output, "\n"), "\n") {
		if line == "" && rec.Output == "" {
			continue
		}
		_, _ = fmt.Fprintf(w, "\t%s\n", line)
	}
	if rec.ExitCode != 0 {
		_, _ = pal.err.Fprintln(w, " Errors found!")
	} else {
		_, _ = pal.ok.Fprintln(w, " No errors found")
	}
	_, _ = fmt.Fprintln(w)
}

func renderTerminal(w io.Writer, out schedule.Outcome, pal palette) {
	switch out.State {
	case schedule.StateLimitExceeded:
		_, _ = pal.warn.Fprintf(w, " The maximum number of cycles has been reached and the processor still recommends re-running the files\n")
		_, _ = pal.ok.Fprintf(w, " %s generated\n", out.Artifact)
	case schedule.StateDone:
		_, _ = pal.ok.Fprintf(w, " %s generated\n", out.Artifact)
	case schedule.StateFailed:
		_, _ = pal.err.Fprintln(w, " No pdf output has been generated")
	}
}

func formatWarning(d diag.Diagnostic) string {
	switch {
	case d.Category == diag.CatGenericWarning:
		return fmt.Sprintf("[Warning] %s", d.Message)
	case d.Name == "":
		return fmt.Sprintf("[%s Warning] %s", d.Category, d.Message)
	default:
		return fmt.Sprintf("[%s %s Warning] %s", d.Category, d.Name, d.Message)
	}
}

func formatError(d diag.Diagnostic) string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d %s", d.Origin, d.Line, d.Message)
	}
	return fmt.Sprintf("%s %s", d.Origin, d.Message)
}

func warningsOf(items []diag.Diagnostic) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range items {
		if d.Severity == diag.SevWarning {
			out = append(out, d)
		}
	}
	return out
}

func errorsOf(items []diag.Diagnostic) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range items {
		if d.Severity == diag.SevError {
			out = append(out, d)
		}
	}
	return out
}
