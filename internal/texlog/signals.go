package texlog

// Signal is a control marker detected in typesetter output: some downstream
// state (references, citations, point totals, an index) is stale and needs
// another pass.
type Signal uint8

const (
	// SigRerunForReferences is set when the log says "Rerun to get cross-references right".
	SigRerunForReferences Signal = iota
	// SigRerunForPointTotals is set when the log says "Rerun to get point totals right" (exam class).
	SigRerunForPointTotals
	// SigUndefinedReferences is set when the log says "There were undefined references".
	SigUndefinedReferences
	// SigUndefinedCitations is set when the log says "There were undefined citations".
	SigUndefinedCitations
	// SigBibPending is set when the log says the bibliography tool has work to do.
	SigBibPending
	// SigIndexPending is set when the log says an index file was written and awaits processing.
	// Carries the index name; see SignalSet.Indexes.
	SigIndexPending

	numSignals
)

func (s Signal) String() string {
	switch s {
	case SigRerunForReferences:
		return "rerun-for-references"
	case SigRerunForPointTotals:
		return "rerun-for-point-totals"
	case SigUndefinedReferences:
		return "undefined-references"
	case SigUndefinedCitations:
		return "undefined-citations"
	case SigBibPending:
		return "bib-pending"
	case SigIndexPending:
		return "index-pending"
	}
	return "unknown"
}

// SignalSet holds the control signals of one pass. Signals are a set, not a
// count: a phrase recurring in the output marks its signal once. Index names
// keep first-observed order so index tool runs are deterministic.
type SignalSet struct {
	flags   [numSignals]bool
	indexes []string
}

// Mark records a signal.
func (s *SignalSet) Mark(sig Signal) {
	if sig < numSignals {
		s.flags[sig] = true
	}
}

// MarkIndex records an IndexPending signal for the named index target.
func (s *SignalSet) MarkIndex(name string) {
	s.flags[SigIndexPending] = true
	for _, have := range s.indexes {
		if have == name {
			return
		}
	}
	s.indexes = append(s.indexes, name)
}

// Has reports whether the signal was observed.
func (s SignalSet) Has(sig Signal) bool {
	return sig < numSignals && s.flags[sig]
}

// Indexes returns the pending index names in first-observed order.
// Callers must not modify the returned slice.
func (s SignalSet) Indexes() []string {
	return s.indexes
}

// RequiresRerun reports whether any signal demands another processor pass.
func (s SignalSet) RequiresRerun() bool {
	return s.flags[SigRerunForReferences] ||
		s.flags[SigRerunForPointTotals] ||
		s.flags[SigUndefinedReferences] ||
		s.flags[SigUndefinedCitations]
}

// Empty reports whether no signal at all was observed.
func (s SignalSet) Empty() bool {
	for _, f := range s.flags {
		if f {
			return false
		}
	}
	return true
}

// List returns the observed signals in declaration order.
func (s SignalSet) List() []Signal {
	var out []Signal
	for sig := Signal(0); sig < numSignals; sig++ {
		if s.flags[sig] {
			out = append(out, sig)
		}
	}
	return out
}
