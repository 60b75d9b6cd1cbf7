package report

import (
	"encoding/json"
	"io"

	"texflow/internal/diag"
	"texflow/internal/observ"
	"texflow/internal/schedule"
)

// DiagnosticJSON represents one diagnostic in JSON format.
type DiagnosticJSON struct {
	Severity string `json:"severity"`
	Category string `json:"category"`
	Name     string `json:"name,omitempty"`
	Origin   string `json:"origin,omitempty"`
	Line     uint32 `json:"line,omitempty"`
	Message  string `json:"message"`
}

// PassJSON represents one tool pass in JSON format.
type PassJSON struct {
	Index       int              `json:"index"`
	Tool        string           `json:"tool"`
	Unit        string           `json:"unit"`
	Command     string           `json:"command"`
	ExitCode    int              `json:"exit_code"`
	Warnings    int              `json:"warnings"`
	Errors      int              `json:"errors"`
	Signals     []string         `json:"signals,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics,omitempty"`
	DurationMS  float64          `json:"duration_ms"`
}

// OutcomeJSON is the root structure of JSON output.
type OutcomeJSON struct {
	State    string         `json:"state"`
	Artifact string         `json:"artifact,omitempty"`
	Passes   []PassJSON     `json:"passes"`
	Timings  *observ.Report `json:"timings,omitempty"`
}

// BuildOutcomeJSON builds the JSON output structure without serialising it.
func BuildOutcomeJSON(out schedule.Outcome, opts Options) OutcomeJSON {
	result := OutcomeJSON{
		State:  out.State.String(),
		Passes: make([]PassJSON, 0, len(out.History)),
	}
	if out.State != schedule.StateFailed {
		result.Artifact = out.Artifact
	}
	for _, rec := range out.History {
		result.Passes = append(result.Passes, makePass(rec, opts))
	}
	if out.Timings != nil {
		r := out.Timings.Report()
		result.Timings = &r
	}
	return result
}

func makePass(rec schedule.PassRecord, opts Options) PassJSON {
	p := PassJSON{
		Index:      rec.Index,
		Tool:       rec.Tool.String(),
		Unit:       rec.Unit,
		Command:    rec.Command,
		ExitCode:   rec.ExitCode,
		DurationMS: float64(rec.Duration.Microseconds()) / 1000,
	}
	for _, sig := range rec.Signals.List() {
		p.Signals = append(p.Signals, sig.String())
	}
	if rec.Diagnostics != nil {
		p.Warnings = rec.Diagnostics.Count(diag.SevWarning)
		p.Errors = rec.Diagnostics.Count(diag.SevError)
		if !opts.Quiet {
			for _, d := range rec.Diagnostics.Items() {
				p.Diagnostics = append(p.Diagnostics, DiagnosticJSON{
					Severity: d.Severity.String(),
					Category: d.Category.String(),
					Name:     d.Name,
					Origin:   d.Origin,
					Line:     d.Line,
					Message:  d.Message,
				})
			}
		}
	}
	return p
}

// JSON serialises the outcome to w as indented JSON.
func JSON(w io.Writer, out schedule.Outcome, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildOutcomeJSON(out, opts))
}
