package diag

// Reporter is the minimal contract through which the classifier hands out
// diagnostics. Implementations: BagReporter (collects into a Bag),
// DedupReporter (suppresses repeats).
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter is an adapter that writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}
