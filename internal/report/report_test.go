package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"texflow/internal/diag"
	"texflow/internal/schedule"
)

func sampleOutcome() schedule.Outcome {
	bag := diag.NewBag(10)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevWarning,
		Category: diag.CatPackageWarning,
		Name:     "hyperref",
		Origin:   "",
		Message:  "Token not allowed in a PDF string",
	})
	bag.Add(diag.Diagnostic{
		Severity: diag.SevWarning,
		Category: diag.CatLaTeXWarning,
		Origin:   "./chapter1.tex",
		Message:  "Reference `fig:one' on page 3 undefined",
	})
	bag.Add(diag.Diagnostic{
		Severity: diag.SevWarning,
		Category: diag.CatGenericWarning,
		Origin:   "./chapter1.tex",
		Message:  "Unusual font shape",
	})
	return schedule.Outcome{
		State:    schedule.StateDone,
		Artifact: "main.pdf",
		History: []schedule.PassRecord{{
			Index:       0,
			Tool:        schedule.ToolProcessor,
			Unit:        "main.tex",
			Command:     "pdflatex",
			Diagnostics: bag,
			InputFiles:  []string{"", "./main.tex", "./chapter1.tex"},
		}},
	}
}

func TestPrettyGroupsByOrigin(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleOutcome(), Options{})
	out := buf.String()

	preamble := strings.Index(out, "Preamble:")
	chapter := strings.Index(out, "./chapter1.tex")
	if preamble < 0 || chapter < 0 {
		t.Fatalf("missing origin headers in output:\n%s", out)
	}
	if preamble > chapter {
		t.Fatalf("preamble group should come before ./chapter1.tex:\n%s", out)
	}
	if !strings.Contains(out, "[Package hyperref Warning] Token not allowed in a PDF string") {
		t.Fatalf("package warning not rendered:\n%s", out)
	}
	if !strings.Contains(out, "[LaTeX Warning] Reference `fig:one' on page 3 undefined") {
		t.Fatalf("latex warning not rendered:\n%s", out)
	}
	if !strings.Contains(out, "[Warning] Unusual font shape") {
		t.Fatalf("generic warning not rendered:\n%s", out)
	}
	if !strings.Contains(out, "3 warning(s)") {
		t.Fatalf("aggregate warning count missing in verbose mode:\n%s", out)
	}
	if !strings.Contains(out, "main.pdf generated") {
		t.Fatalf("artifact line missing:\n%s", out)
	}
}

func TestPrettyQuietAggregates(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleOutcome(), Options{Quiet: true})
	out := buf.String()

	if strings.Contains(out, "hyperref") {
		t.Fatalf("quiet mode must not list individual warnings:\n%s", out)
	}
	if !strings.Contains(out, "3 warning(s)") {
		t.Fatalf("quiet mode must report the aggregate count:\n%s", out)
	}
}

func TestPrettyShowsErrorsInQuietMode(t *testing.T) {
	out := sampleOutcome()
	out.State = schedule.StateFailed
	out.History[0].ExitCode = 1
	out.History[0].Diagnostics.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Category: diag.CatError,
		Origin:   "./main.tex",
		Line:     10,
		Message:  "Undefined control sequence",
	})

	var buf bytes.Buffer
	Pretty(&buf, out, Options{Quiet: true})
	got := buf.String()

	if !strings.Contains(got, "Errors found!") {
		t.Fatalf("error banner missing in quiet mode:\n%s", got)
	}
	if !strings.Contains(got, "./main.tex:10 Undefined control sequence") {
		t.Fatalf("error location missing:\n%s", got)
	}
	if !strings.Contains(got, "No pdf output has been generated") {
		t.Fatalf("failure terminal line missing:\n%s", got)
	}
	if strings.Contains(got, "generated\n") && strings.Contains(got, "main.pdf generated") {
		t.Fatalf("failed outcome must not claim an artifact:\n%s", got)
	}
}

func TestPrettyNonzeroExitWithoutDiagnostics(t *testing.T) {
	out := sampleOutcome()
	out.State = schedule.StateFailed
	out.History[0].ExitCode = 1

	var buf bytes.Buffer
	Pretty(&buf, out, Options{})
	got := buf.String()

	if !strings.Contains(got, "Inspect the .log file!") {
		t.Fatalf("expected log hint when exit is nonzero with no matched errors:\n%s", got)
	}
}

func TestPrettyEchoesAuxOutput(t *testing.T) {
	out := sampleOutcome()
	out.History = append(out.History, schedule.PassRecord{
		Index:   1,
		Tool:    schedule.ToolBib,
		Unit:    "main",
		Command: "bibtex",
		Output:  "This is BibTeX\nDatabase file #1: refs.bib\n",
	})

	var buf bytes.Buffer
	Pretty(&buf, out, Options{Quiet: true})
	got := buf.String()

	if !strings.Contains(got, "\tThis is BibTeX\n") {
		t.Fatalf("bib output must be echoed even in quiet mode:\n%s", got)
	}
	if !strings.Contains(got, "\tDatabase file #1: refs.bib\n") {
		t.Fatalf("bib output truncated:\n%s", got)
	}
}

func TestPrettyLimitExceeded(t *testing.T) {
	out := sampleOutcome()
	out.State = schedule.StateLimitExceeded

	var buf bytes.Buffer
	Pretty(&buf, out, Options{})
	got := buf.String()

	if !strings.Contains(got, "maximum number of cycles") {
		t.Fatalf("limit warning missing:\n%s", got)
	}
	if !strings.Contains(got, "main.pdf generated") {
		t.Fatalf("limit-exceeded outcome still has an artifact:\n%s", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleOutcome(), Options{}); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var decoded OutcomeJSON
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON produced: %v", err)
	}
	if decoded.State != "done" {
		t.Fatalf("state = %q, want done", decoded.State)
	}
	if decoded.Artifact != "main.pdf" {
		t.Fatalf("artifact = %q, want main.pdf", decoded.Artifact)
	}
	if len(decoded.Passes) != 1 {
		t.Fatalf("passes = %d, want 1", len(decoded.Passes))
	}
	p := decoded.Passes[0]
	if p.Tool != "processor" || p.Warnings != 3 || p.Errors != 0 {
		t.Fatalf("pass = %+v", p)
	}
	if len(p.Diagnostics) != 3 {
		t.Fatalf("diagnostics = %d, want 3", len(p.Diagnostics))
	}
}

func TestJSONQuietOmitsDiagnostics(t *testing.T) {
	built := BuildOutcomeJSON(sampleOutcome(), Options{Quiet: true})
	if len(built.Passes) != 1 {
		t.Fatalf("passes = %d, want 1", len(built.Passes))
	}
	if built.Passes[0].Warnings != 3 {
		t.Fatalf("warnings = %d, want 3", built.Passes[0].Warnings)
	}
	if built.Passes[0].Diagnostics != nil {
		t.Fatalf("quiet JSON must keep counts only, got %d diagnostics", len(built.Passes[0].Diagnostics))
	}
}

func TestJSONFailedHasNoArtifact(t *testing.T) {
	out := sampleOutcome()
	out.State = schedule.StateFailed
	built := BuildOutcomeJSON(out, Options{})
	if built.Artifact != "" {
		t.Fatalf("failed outcome carries artifact %q", built.Artifact)
	}
}
