package texlog

import (
	"reflect"
	"strings"
	"testing"

	"texflow/internal/diag"
)

const sampleLog = `This is pdfTeX, Version 3.141592653
(./main.tex
LaTeX2e <2023-11-01>
Package hyperref Warning: Token not allowed in a PDF string.

(./chapter1.tex
LaTeX Warning: Reference ` + "`fig:one'" + ` on page 1 undefined on input line 12.

Class exam Warning: Point totals have changed. Rerun to get point totals right.

(./chapter2.tex
pdfTeX Warning: destination with the same identifier already used.
))
LaTeX Warning: There were undefined references.

LaTeX Warning: Label(s) may have changed. Rerun to get cross-references right.

Output written on main.pdf (3 pages).
`

func TestClassifyCategoriesAndOrigins(t *testing.T) {
	res := Classify(sampleLog, nil, 100)

	items := res.Bag.Items()
	if res.Bag.Count(diag.SevError) != 0 {
		t.Fatalf("unexpected errors: %+v", items)
	}

	byCat := map[diag.Category]int{}
	for _, d := range items {
		byCat[d.Category]++
	}
	if byCat[diag.CatPackageWarning] != 1 {
		t.Fatalf("package warnings = %d, want 1", byCat[diag.CatPackageWarning])
	}
	if byCat[diag.CatClassWarning] != 1 {
		t.Fatalf("class warnings = %d, want 1", byCat[diag.CatClassWarning])
	}
	if byCat[diag.CatLaTeXWarning] != 3 {
		t.Fatalf("latex warnings = %d, want 3", byCat[diag.CatLaTeXWarning])
	}
	if byCat[diag.CatGenericWarning] != 1 {
		t.Fatalf("generic warnings = %d, want 1", byCat[diag.CatGenericWarning])
	}

	pkg := res.Bag.ByOrigin("./main.tex")
	if len(pkg) != 1 || pkg[0].Name != "hyperref" {
		t.Fatalf("main.tex diagnostics = %+v, want one hyperref warning", pkg)
	}
	ch2 := res.Bag.ByOrigin("./chapter2.tex")
	if len(ch2) != 1 || ch2[0].Category != diag.CatGenericWarning {
		t.Fatalf("chapter2.tex diagnostics = %+v, want the pdfTeX warning", ch2)
	}

	wantFiles := []string{"", "./main.tex", "./chapter1.tex", "./chapter2.tex"}
	if !reflect.DeepEqual(res.InputFiles, wantFiles) {
		t.Fatalf("InputFiles = %v, want %v", res.InputFiles, wantFiles)
	}
}

func TestClassifyCountMatchesMatchingLines(t *testing.T) {
	// Exactly k warning-looking lines must yield exactly k diagnostics,
	// whatever the category mix.
	lines := []string{
		"LaTeX Warning: first.",
		"Package natbib Warning: second.",
		"Class article Warning: third.",
		"weird tool Warning: fourth.",
		"LaTeX Font Warning: fifth.",
	}
	res := Classify(strings.Join(lines, "\n"), nil, 100)
	if res.Bag.Len() != len(lines) {
		t.Fatalf("Len = %d, want %d", res.Bag.Len(), len(lines))
	}
}

func TestClassifyIdempotent(t *testing.T) {
	a := Classify(sampleLog, nil, 100)
	b := Classify(sampleLog, nil, 100)
	if !reflect.DeepEqual(a.Bag.Items(), b.Bag.Items()) {
		t.Fatalf("diagnostics differ between identical runs")
	}
	if !reflect.DeepEqual(a.Signals, b.Signals) {
		t.Fatalf("signals differ between identical runs")
	}
}

func TestClassifySignals(t *testing.T) {
	res := Classify(sampleLog, nil, 100)
	sig := res.Signals
	for _, want := range []Signal{SigRerunForReferences, SigRerunForPointTotals, SigUndefinedReferences} {
		if !sig.Has(want) {
			t.Fatalf("signal %s not detected", want)
		}
	}
	if sig.Has(SigUndefinedCitations) || sig.Has(SigBibPending) || sig.Has(SigIndexPending) {
		t.Fatalf("unexpected signals: %v", sig.List())
	}
}

func TestClassifySignalsAreSetValued(t *testing.T) {
	raw := strings.Repeat("LaTeX Warning: Rerun to get cross-references right.\n\n", 4)
	res := Classify(raw, nil, 100)
	if got := res.Signals.List(); len(got) != 1 || got[0] != SigRerunForReferences {
		t.Fatalf("signals = %v, want exactly [rerun-for-references]", got)
	}
}

func TestClassifyBibAndIndexSignals(t *testing.T) {
	raw := `(./main.tex
Package biblatex Warning: Please (re)run Biber on the file: main.

Writing index file main.idx
Writing index file keywords.idx
Writing index file main.idx
No file authors.ind.
)`
	res := Classify(raw, nil, 100)
	if !res.Signals.Has(SigBibPending) {
		t.Fatalf("bib-pending not detected")
	}
	want := []string{"main", "keywords", "authors"}
	if !reflect.DeepEqual(res.Signals.Indexes(), want) {
		t.Fatalf("Indexes = %v, want %v (first-observed order, no repeats)", res.Signals.Indexes(), want)
	}
}

func TestClassifyErrors(t *testing.T) {
	raw := "(./main.tex\n" +
		"./main.tex:10: Undefined control sequence.\n" +
		"l.10 \\badcmd\n" +
		"\n" +
		"./chapter1.tex:42: Missing $ inserted.\n" +
		"\n" +
		"rest of the log\n"
	res := Classify(raw, nil, 100)
	errs := 0
	for _, d := range res.Bag.Items() {
		if d.Severity != diag.SevError {
			continue
		}
		errs++
		switch d.Origin {
		case "./main.tex":
			if d.Line != 10 || !strings.Contains(d.Message, "Undefined control sequence") {
				t.Fatalf("main.tex error = %+v", d)
			}
			if !strings.Contains(d.Message, "l.10") {
				t.Fatalf("error body truncated: %+v", d)
			}
		case "./chapter1.tex":
			if d.Line != 42 {
				t.Fatalf("chapter1.tex error line = %d, want 42", d.Line)
			}
		default:
			t.Fatalf("unexpected error origin %q", d.Origin)
		}
	}
	if errs != 2 {
		t.Fatalf("errors = %d, want 2", errs)
	}
}

func TestClassifyDuplicateWarningReportedOnce(t *testing.T) {
	raw := "(./main.aux\n" +
		"Package hyperref Warning: Token not allowed in a PDF string.\n" +
		"\n" +
		"(./chapter1.aux\n" +
		"Package hyperref Warning: Token not allowed in a PDF string.\n"
	res := Classify(raw, nil, 100)
	if res.Bag.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (same warning under two files)", res.Bag.Len())
	}
}

func TestUnwrapJoinsWrappedLines(t *testing.T) {
	head := "LaTeX Warning: Reference `a-very-long-label-name' on page 3 undefined on i"
	if len(head) != wrapWidth {
		head += strings.Repeat("x", wrapWidth-len(head))
	}
	raw := head + "\nnput line 7.\n"
	got := unwrap(raw)
	if strings.Contains(strings.Split(got, "\n")[0], "nput line 7.") == false {
		t.Fatalf("wrapped line not joined: %q", got)
	}
	res := Classify(raw, nil, 10)
	if res.Bag.Len() != 1 {
		t.Fatalf("Len = %d, want 1", res.Bag.Len())
	}
}
