// Package texlog classifies raw typesetter output into structured
// diagnostics and control signals. It treats the output as an opaque but
// pattern-matchable text stream: no TeX semantics, just the fixed message
// forms the tools emit.
package texlog

import (
	"sort"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"texflow/internal/diag"
)

// Result carries everything one classification extracts from a pass.
type Result struct {
	Bag     *diag.Bag
	Signals SignalSet
	// InputFiles lists every sub-file the processor entered, in first-seen
	// order. The empty string comes first and stands for output produced
	// before any file marker (the preamble).
	InputFiles []string
}

// originMark records where attribution switched to a new sub-file.
type originMark struct {
	pos    int
	origin string
}

// Classify parses a block of raw tool output. knownSubFiles seeds the
// attribution order (useful when a previous pass already identified the
// document's sub-files); maxDiags caps the bag.
//
// Classify is a pure function of its input: no file system access, no
// mutation of its arguments, identical text yields an identical result.
func Classify(raw string, knownSubFiles []string, maxDiags int) Result {
	bag := diag.NewBag(maxDiags)
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: bag})

	res := Result{
		Bag:        bag,
		InputFiles: []string{""},
	}
	seen := map[string]bool{"": true}
	addFile := func(name string) {
		if !seen[name] {
			seen[name] = true
			res.InputFiles = append(res.InputFiles, name)
		}
	}
	for _, f := range knownSubFiles {
		addFile(f)
	}

	text := unwrap(raw)

	// One scan for file markers and categorised warnings, in document
	// order, so each warning lands on the file being read at that point.
	origin := ""
	marks := []originMark{{pos: 0, origin: ""}}
	var warnSpans [][2]int
	for _, m := range reCombined.FindAllStringSubmatchIndex(text, -1) {
		if m[2] >= 0 { // file marker
			origin = text[m[2]:m[3]]
			addFile(origin)
			marks = append(marks, originMark{pos: m[0], origin: origin})
			continue
		}
		mode := text[m[4]:m[5]]
		name := ""
		if m[6] >= 0 {
			name = text[m[6]:m[7]]
		}
		msg := cleanMessage(text[m[8]:m[9]])
		warnSpans = append(warnSpans, [2]int{m[0], m[1]})
		rep.Report(diag.Diagnostic{
			Severity: diag.SevWarning,
			Category: warningCategory(mode),
			Origin:   origin,
			Name:     name,
			Message:  msg,
			RawLine:  text[m[0]:m[1]],
		})
	}

	// A line that looks like a warning but matches no categorised form is
	// still a warning: it must not vanish from the count.
	for _, m := range reGenericWarning.FindAllStringSubmatchIndex(text, -1) {
		if insideAny(warnSpans, m[0]) {
			continue
		}
		rep.Report(diag.Diagnostic{
			Severity: diag.SevWarning,
			Category: diag.CatGenericWarning,
			Origin:   originAt(marks, m[0]),
			Message:  cleanMessage(text[m[2]:m[3]]),
			RawLine:  lineAround(text, m[0]),
		})
	}

	// Errors keep their multi-line body, so they match against the raw
	// text: the body runs until the next blank line.
	for _, m := range reError.FindAllStringSubmatch(raw, -1) {
		line64, _ := strconv.ParseUint(m[2], 10, 32)
		line, convErr := safecast.Conv[uint32](line64)
		if convErr != nil {
			line = 0
		}
		rep.Report(diag.Diagnostic{
			Severity: diag.SevError,
			Category: diag.CatError,
			Origin:   m[1],
			Message:  cleanMessage(strings.TrimLeft(m[3], ": \t")),
			RawLine:  strings.TrimRight(m[0], " \t\r\n"),
			Line:     line,
		})
	}

	res.Signals = detectSignals(text)
	return res
}

// detectSignals scans the full output for control-signal phrases. Signals
// are set-valued: a phrase present many times still marks once.
func detectSignals(text string) SignalSet {
	var sig SignalSet
	for _, m := range reRerun.FindAllString(text, -1) {
		if strings.Contains(strings.ToLower(m), "point totals") {
			sig.Mark(SigRerunForPointTotals)
		} else {
			sig.Mark(SigRerunForReferences)
		}
	}
	if rePointTotals.MatchString(text) {
		sig.Mark(SigRerunForPointTotals)
	}
	if reUndefRefs.MatchString(text) {
		sig.Mark(SigUndefinedReferences)
	}
	if reUndefCites.MatchString(text) {
		sig.Mark(SigUndefinedCitations)
	}
	if reBibPending.MatchString(text) {
		sig.Mark(SigBibPending)
	}
	for _, m := range reIndexWritten.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		sig.MarkIndex(name)
	}
	return sig
}

func warningCategory(mode string) diag.Category {
	switch mode {
	case "LaTeX":
		return diag.CatLaTeXWarning
	case "Package":
		return diag.CatPackageWarning
	case "Class":
		return diag.CatClassWarning
	}
	return diag.CatGenericWarning
}

func cleanMessage(msg string) string {
	msg = strings.TrimSpace(msg)
	var b strings.Builder
	b.Grow(len(msg))
	space := false
	for _, r := range msg {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

func insideAny(spans [][2]int, pos int) bool {
	for _, s := range spans {
		if pos >= s[0] && pos < s[1] {
			return true
		}
	}
	return false
}

func originAt(marks []originMark, pos int) string {
	i := sort.Search(len(marks), func(i int) bool { return marks[i].pos > pos })
	if i == 0 {
		return ""
	}
	return marks[i-1].origin
}

func lineAround(text string, pos int) string {
	start := strings.LastIndexByte(text[:pos], '\n') + 1
	end := strings.IndexByte(text[pos:], '\n')
	if end < 0 {
		end = len(text)
	} else {
		end += pos
	}
	return text[start:end]
}
