package schedule

import (
	"texflow/internal/auxscan"
	"texflow/internal/texlog"
)

// Tools names the auxiliary tools available to this session. Empty means
// absent: the corresponding pending signal cannot be served.
type Tools struct {
	Bib   string
	Index string
}

// Pending carries the fingerprint evidence backing a decision: the current
// digests of the bib/index directives on disk, and what was recorded when
// the corresponding tool last ran (zero value plus Ran=false when it never
// did).
type Pending struct {
	BibCurrent   auxscan.Digest
	BibRan       bool
	BibLast      auxscan.Digest
	IndexCurrent map[string]auxscan.Digest
	IndexLast    map[string]auxscan.Digest
}

// Decision is the convergence verdict after a pass: which auxiliary tools
// must run, and whether the processor must run again.
type Decision struct {
	RerunProcessor bool
	RunBib         bool
	RunIndex       []string
}

// Converged reports that nothing further is required.
func (d Decision) Converged() bool {
	return !d.RerunProcessor && !d.RunBib && len(d.RunIndex) == 0
}

// Decide inspects the pass history and answers three questions: must the
// processor run again, must the bibliography tool run, and which index
// targets must run. Ordering policy when several are due: bibliography
// first, then index targets in the order their signals were first observed,
// then always exactly one processor pass before re-evaluating.
func Decide(history []PassRecord, avail Tools, pending Pending) Decision {
	if len(history) == 0 {
		// The document has to be processed at least once.
		return Decision{RerunProcessor: true}
	}
	last := history[len(history)-1]
	if last.Tool != ToolProcessor {
		// Output of a bib/index pass is only incorporated by one more
		// processor pass.
		return Decision{RerunProcessor: true}
	}

	var d Decision
	if avail.Bib != "" && last.Signals.Has(texlog.SigBibPending) {
		if !pending.BibRan || pending.BibLast != pending.BibCurrent {
			d.RunBib = true
		}
	}
	if avail.Index != "" {
		for _, name := range last.Signals.Indexes() {
			lastRun, ran := pending.IndexLast[name]
			if !ran || lastRun != pending.IndexCurrent[name] {
				d.RunIndex = append(d.RunIndex, name)
			}
		}
	}
	if d.RunBib || len(d.RunIndex) > 0 {
		d.RerunProcessor = true
		return d
	}

	d.RerunProcessor = last.Signals.RequiresRerun()
	return d
}
