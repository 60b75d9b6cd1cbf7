package diag

type dedupKey struct {
	cat  Category
	name string
	msg  string
}

// DedupReporter wraps another Reporter and suppresses duplicate diagnostics
// with the same category, issuer name and message. The processor re-reads
// generated files such as .aux, so the same warning can surface under
// several sub-files within one pass; a user counts it once.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

// NewDedupReporter returns a Reporter that filters out duplicates while
// forwarding unique diagnostics to the provided reporter.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil {
		return
	}
	if d.Severity >= SevError {
		// Errors are never folded together; each one is reported.
		if r.next != nil {
			r.next.Report(d)
		}
		return
	}
	key := dedupKey{cat: d.Category, name: d.Name, msg: d.Message}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(d)
	}
}
