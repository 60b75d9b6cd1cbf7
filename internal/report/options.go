package report

// Options configures rendering of a compilation outcome.
type Options struct {
	// Quiet collapses per-diagnostic output to an aggregate warning count
	// per pass. Errors and bib/index tool output stay visible.
	Quiet bool
	// Color enables ANSI colors.
	Color bool
}
