package schedule

import (
	"time"

	"texflow/internal/auxscan"
	"texflow/internal/diag"
	"texflow/internal/texlog"
)

// Tool identifies which external tool a pass invoked.
type Tool uint8

const (
	// ToolProcessor is the typesetting processor (pdflatex, xelatex, ...).
	ToolProcessor Tool = iota
	// ToolBib is the bibliography tool (bibtex, biber).
	ToolBib
	// ToolIndex is the index tool (makeindex, splitindex).
	ToolIndex
)

func (t Tool) String() string {
	switch t {
	case ToolProcessor:
		return "processor"
	case ToolBib:
		return "bib"
	case ToolIndex:
		return "index"
	}
	return "unknown"
}

// State is the scheduler's position in its state machine.
type State uint8

const (
	// StateIdle means nothing has run yet.
	StateIdle State = iota
	// StateRunningProcessor means a processor pass is in flight.
	StateRunningProcessor
	// StateEvaluating means a pass finished and its signals are being weighed.
	StateEvaluating
	// StateRunningBib means the bibliography tool is in flight.
	StateRunningBib
	// StateRunningIndex means the index tool is in flight.
	StateRunningIndex
	// StateDone means the schedule converged and the artifact is ready.
	StateDone
	// StateLimitExceeded means the pass ceiling was reached with a rerun
	// still pending. Degraded success: the last artifact is still usable.
	StateLimitExceeded
	// StateFailed means a processor pass failed outright; no artifact.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunningProcessor:
		return "running-processor"
	case StateEvaluating:
		return "evaluating"
	case StateRunningBib:
		return "running-bib"
	case StateRunningIndex:
		return "running-index"
	case StateDone:
		return "done"
	case StateLimitExceeded:
		return "limit-exceeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether the state ends the schedule.
func (s State) Terminal() bool {
	return s == StateDone || s == StateLimitExceeded || s == StateFailed
}

// PassRecord is the immutable account of one tool invocation. Records are
// appended to an ordered history which is the scheduler's only memory of
// the past.
type PassRecord struct {
	Index       int
	Tool        Tool
	Unit        string // bib/index unit stem; the document for processor passes
	Command     string
	ExitCode    int
	Output      string // decoded combined output, kept for the reporter
	Diagnostics *diag.Bag
	Signals     texlog.SignalSet
	InputFiles  []string
	Fingerprint auxscan.Digest // directive digest at bib/index passes
	Duration    time.Duration
}

// ScheduleState is the mutable state the scheduler threads through a
// session. Invariant: PassesRun <= MaxPasses except in the limit-exceeded
// terminal state, which is a recorded warning, not an abort.
type ScheduleState struct {
	PassesRun      int
	MaxPasses      int
	BibRan         bool
	BibFingerprint auxscan.Digest
	IndexRan       map[string]auxscan.Digest
	OutputReady    bool
}

// Status captures progress within a pass.
type Status string

const (
	// StatusWorking indicates the tool is running.
	StatusWorking Status = "working"
	// StatusDone indicates the pass completed.
	StatusDone Status = "done"
	// StatusError indicates the pass failed.
	StatusError Status = "error"
)

// Event reports progress for one pass.
type Event struct {
	Pass    int
	Tool    Tool
	Unit    string
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
