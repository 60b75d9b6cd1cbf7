package texlog

import "regexp"

// The processor interleaves file-entry markers with message lines, and wraps
// everything at ~79 columns. Classification therefore runs over unwrapped
// text (see unwrap.go) with a combined pattern, tracking the current file
// top to bottom, exactly as a user reading the log would.

var (
	// reFileMarker matches "(./chapter1.tex", "(../shared/macros.sty" and
	// the like: an opening paren followed by a relative path with a suffix.
	reFileMarker = regexp.MustCompile(`\((\.[^\s()]*\.[A-Za-z0-9]+)`)

	// reModeWarning matches the three categorised warning forms:
	//   LaTeX Warning: ...
	//   Package <name> Warning: ...
	//   Class <name> Warning: ...
	// The name group stays empty for the plain LaTeX form.
	reModeWarning = regexp.MustCompile(`(LaTeX|Package|Class)(?:[ \t]+([A-Za-z0-9@_.-]+))?[ \t]+Warning:[ \t]*([^\n]+)`)

	// reCombined drives the scan: file markers and categorised warnings in
	// document order, so each warning attributes to the file being read.
	reCombined = regexp.MustCompile(reFileMarker.String() + `|` + reModeWarning.String())

	// reGenericWarning catches warning-looking lines that match no
	// categorised form. Nothing is dropped silently.
	reGenericWarning = regexp.MustCompile(`Warning:[ \t]*([^\n]+)`)

	// reError matches -file-line-error output: a path, a line number and a
	// message body running until a blank line.
	reError = regexp.MustCompile(`(?ms)^((?:/|~/|\./|\.\./)?(?:[^\s/\r\n]+/)*[^\s/\r\n]+\.[^\s./\r\n]+):(\d+)(.*?)(\r?\n[ \t]*\r?\n|\z)`)

	// Control-signal phrases. Each is a set marker: recurrence does not
	// accumulate.
	reRerun        = regexp.MustCompile(`(?:LaTeX|Package(?:[ \t]+[A-Za-z0-9@_.-]+)?)[ \t]+Warning:[^\n]*\bRerun\b`)
	rePointTotals  = regexp.MustCompile(`(?i)rerun[^\n]*point totals|point totals[^\n]*changed`)
	reUndefRefs    = regexp.MustCompile(`There were undefined references`)
	reUndefCites   = regexp.MustCompile(`There were undefined citations`)
	reBibPending   = regexp.MustCompile(`Please \(re\)run Biber|[Rr]un BibTeX|No file [^\s]+\.bbl`)
	reIndexWritten = regexp.MustCompile(`Writing index file ([^\s]+)\.idx|No file ([^\s]+)\.ind`)
)
