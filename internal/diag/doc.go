// Package diag defines the diagnostic model shared by the classifier,
// scheduler and reporters.
//
// # Purpose
//
//   - Provide deterministic data structures for the findings extracted from
//     typesetter output (warnings per sub-file, file:line errors).
//   - Offer light-weight utilities (Reporter, Bag) that let the classifier
//     emit diagnostics without coupling to storage or formatting layers.
//
// # Scope
//
// Package diag performs no parsing, formatting, IO or CLI integration.
// Pattern matching over raw tool output lives in internal/texlog; rendering
// lives in internal/report.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – Warning or Error (severity.go).
//   - Category – which log pattern matched (category.go); unmatched
//     warning-looking lines fall back to the generic category so the count
//     a user sees matches the count in the raw log.
//   - Origin – the sub-file the processor was reading when the line
//     appeared; empty before any file was entered (the preamble).
//   - Name – issuing package or class, when the pattern distinguishes one.
//   - Message / RawLine – the extracted text and the original line.
//
// Diagnostics are produced fresh on every pass, never mutated, and owned by
// the PassRecord that collected them.
//
// # Emitting diagnostics
//
// The classifier emits through a diag.Reporter. BagReporter aggregates into
// a Bag, which supports counting, grouping by origin and deterministic
// sorting. DedupReporter suppresses the same warning re-surfacing under
// several sub-files within one pass.
package diag
