package diag

import "testing"

func TestBagLimit(t *testing.T) {
	b := NewBag(2)
	if !b.Add(Diagnostic{Message: "a"}) {
		t.Fatalf("first Add rejected")
	}
	if !b.Add(Diagnostic{Message: "b"}) {
		t.Fatalf("second Add rejected")
	}
	if b.Add(Diagnostic{Message: "c"}) {
		t.Fatalf("Add beyond limit accepted")
	}
	if b.Len() != 2 {
		t.Fatalf("Len = %d, want 2", b.Len())
	}
}

func TestBagCounts(t *testing.T) {
	b := NewBag(16)
	b.Add(Diagnostic{Severity: SevWarning, Category: CatPackageWarning})
	b.Add(Diagnostic{Severity: SevWarning, Category: CatLaTeXWarning})
	b.Add(Diagnostic{Severity: SevError, Category: CatError})
	if got := b.Count(SevWarning); got != 2 {
		t.Fatalf("Count(SevWarning) = %d, want 2", got)
	}
	if got := b.Count(SevError); got != 1 {
		t.Fatalf("Count(SevError) = %d, want 1", got)
	}
	if !b.HasErrors() || !b.HasWarnings() {
		t.Fatalf("HasErrors/HasWarnings = %v/%v, want true/true", b.HasErrors(), b.HasWarnings())
	}
}

func TestBagByOrigin(t *testing.T) {
	b := NewBag(16)
	b.Add(Diagnostic{Origin: "", Message: "pre"})
	b.Add(Diagnostic{Origin: "./ch1.tex", Message: "one"})
	b.Add(Diagnostic{Origin: "./ch1.tex", Message: "two"})
	b.Add(Diagnostic{Origin: "./ch2.tex", Message: "three"})

	got := b.ByOrigin("./ch1.tex")
	if len(got) != 2 || got[0].Message != "one" || got[1].Message != "two" {
		t.Fatalf("ByOrigin(ch1) = %+v, want [one two] in order", got)
	}
	if pre := b.ByOrigin(""); len(pre) != 1 || pre[0].Message != "pre" {
		t.Fatalf("ByOrigin(\"\") = %+v, want [pre]", pre)
	}
}

func TestBagMergeGrowsLimit(t *testing.T) {
	a := NewBag(1)
	a.Add(Diagnostic{Message: "a"})
	b := NewBag(2)
	b.Add(Diagnostic{Message: "b"})
	b.Add(Diagnostic{Message: "c"})
	a.Merge(b)
	if a.Len() != 3 {
		t.Fatalf("merged Len = %d, want 3", a.Len())
	}
	if a.Cap() < 3 {
		t.Fatalf("merged Cap = %d, want >= 3", a.Cap())
	}
}

func TestBagSortDeterministic(t *testing.T) {
	b := NewBag(8)
	b.Add(Diagnostic{Origin: "b.tex", Severity: SevWarning, Message: "w"})
	b.Add(Diagnostic{Origin: "a.tex", Severity: SevWarning, Message: "w2"})
	b.Add(Diagnostic{Origin: "a.tex", Severity: SevError, Message: "e"})
	b.Sort()
	items := b.Items()
	if items[0].Origin != "a.tex" || items[0].Severity != SevError {
		t.Fatalf("first after Sort = %+v, want a.tex error", items[0])
	}
	if items[2].Origin != "b.tex" {
		t.Fatalf("last after Sort = %+v, want b.tex", items[2])
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(16)
	r := NewDedupReporter(BagReporter{Bag: bag})
	d := Diagnostic{Category: CatPackageWarning, Name: "hyperref", Message: "Token not allowed"}
	r.Report(d)
	d.Origin = "./ch1.tex"
	r.Report(d) // same warning surfacing under another file
	r.Report(Diagnostic{Category: CatPackageWarning, Name: "hyperref", Message: "other"})
	if bag.Len() != 2 {
		t.Fatalf("deduped Len = %d, want 2", bag.Len())
	}
}
