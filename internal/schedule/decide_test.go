package schedule

import (
	"reflect"
	"testing"

	"texflow/internal/auxscan"
	"texflow/internal/texlog"
)

func procRecord(signals ...texlog.Signal) PassRecord {
	var set texlog.SignalSet
	for _, s := range signals {
		set.Mark(s)
	}
	return PassRecord{Tool: ToolProcessor, Signals: set}
}

func TestDecideEmptyHistory(t *testing.T) {
	d := Decide(nil, Tools{}, Pending{})
	if !d.RerunProcessor || d.RunBib || len(d.RunIndex) != 0 {
		t.Fatalf("empty history decision = %+v, want a first processor pass", d)
	}
}

func TestDecideNoSignalsConverges(t *testing.T) {
	d := Decide([]PassRecord{procRecord()}, Tools{Bib: "bibtex"}, Pending{})
	if !d.Converged() {
		t.Fatalf("decision = %+v, want converged", d)
	}
}

func TestDecideRerunSignals(t *testing.T) {
	cases := []texlog.Signal{
		texlog.SigRerunForReferences,
		texlog.SigRerunForPointTotals,
		texlog.SigUndefinedReferences,
		texlog.SigUndefinedCitations,
	}
	for _, sig := range cases {
		d := Decide([]PassRecord{procRecord(sig)}, Tools{}, Pending{})
		if !d.RerunProcessor {
			t.Fatalf("signal %s did not request a processor rerun", sig)
		}
		if d.RunBib || len(d.RunIndex) != 0 {
			t.Fatalf("signal %s requested aux tools: %+v", sig, d)
		}
	}
}

func TestDecideBibFirstRun(t *testing.T) {
	fp := auxscan.Combine(auxscan.Digest{1})
	d := Decide(
		[]PassRecord{procRecord(texlog.SigBibPending)},
		Tools{Bib: "bibtex"},
		Pending{BibCurrent: fp},
	)
	if !d.RunBib || !d.RerunProcessor {
		t.Fatalf("decision = %+v, want bib run followed by a processor pass", d)
	}
}

func TestDecideBibSkippedWhenUnchanged(t *testing.T) {
	fp := auxscan.Combine(auxscan.Digest{1})
	d := Decide(
		[]PassRecord{procRecord(texlog.SigBibPending)},
		Tools{Bib: "bibtex"},
		Pending{BibCurrent: fp, BibRan: true, BibLast: fp},
	)
	if d.RunBib {
		t.Fatalf("bib rerun requested although directives did not change")
	}
	if d.RerunProcessor {
		t.Fatalf("processor rerun requested on a converged pass: %+v", d)
	}
}

func TestDecideBibRerunsWhenCitationsChanged(t *testing.T) {
	old := auxscan.Combine(auxscan.Digest{1})
	cur := auxscan.Combine(auxscan.Digest{2})
	d := Decide(
		[]PassRecord{procRecord(texlog.SigBibPending)},
		Tools{Bib: "bibtex"},
		Pending{BibCurrent: cur, BibRan: true, BibLast: old},
	)
	if !d.RunBib {
		t.Fatalf("bib rerun not requested after the citations changed")
	}
}

func TestDecideBibNeedsTool(t *testing.T) {
	d := Decide([]PassRecord{procRecord(texlog.SigBibPending)}, Tools{}, Pending{})
	if d.RunBib {
		t.Fatalf("bib run requested with no bib tool available")
	}
}

func TestDecideIndexOrderFollowsObservation(t *testing.T) {
	rec := PassRecord{Tool: ToolProcessor}
	rec.Signals.MarkIndex("keywords")
	rec.Signals.MarkIndex("authors")
	d := Decide(
		[]PassRecord{rec},
		Tools{Index: "makeindex"},
		Pending{
			IndexCurrent: map[string]auxscan.Digest{
				"keywords": auxscan.Combine(auxscan.Digest{1}),
				"authors":  auxscan.Combine(auxscan.Digest{2}),
			},
			IndexLast: map[string]auxscan.Digest{},
		},
	)
	if want := []string{"keywords", "authors"}; !reflect.DeepEqual(d.RunIndex, want) {
		t.Fatalf("RunIndex = %v, want %v (first-observed order)", d.RunIndex, want)
	}
	if !d.RerunProcessor {
		t.Fatalf("index runs must be followed by a processor pass")
	}
}

func TestDecideAfterAuxPass(t *testing.T) {
	history := []PassRecord{
		procRecord(texlog.SigBibPending),
		{Tool: ToolBib, Unit: "main"},
	}
	d := Decide(history, Tools{Bib: "bibtex"}, Pending{})
	if !d.RerunProcessor || d.RunBib || len(d.RunIndex) != 0 {
		t.Fatalf("decision after bib pass = %+v, want exactly one processor rerun", d)
	}
}
