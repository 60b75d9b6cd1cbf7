// Package schedule decides, after each tool invocation, whether to re-run
// the processor, invoke a bibliography or index tool, or stop. It owns the
// pass history and the session state; everything it knows about a pass
// comes from the classifier and the auxiliary-file probes.
package schedule

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"texflow/internal/auxscan"
	"texflow/internal/diag"
	"texflow/internal/observ"
	"texflow/internal/texlog"
	"texflow/internal/toolrun"
)

// DefaultMaxPasses is the hard ceiling on processor invocations. Some
// pathological documents recommend re-running forever; five full cycles is
// where the schedule stops believing them.
const DefaultMaxPasses = 5

// DefaultMaxDiagnostics caps the diagnostics collected per pass.
const DefaultMaxDiagnostics = 100

// Probes is the file-probe primitive: evidence from the auxiliary files the
// processor leaves behind. *auxscan.Prober implements it; scheduler tests
// substitute fixtures.
type Probes interface {
	GuessBibTool() string
	BibUnits(tool string) []string
	FingerprintBib(tool string) auxscan.Digest
	GuessIndexTool() string
	IndexUnits(tool string) []string
	FingerprintIndex(name string) auxscan.Digest
}

// FingerprintCache persists directive fingerprints between invocations so a
// fresh session does not repeat a bib/index run whose input did not change.
type FingerprintCache interface {
	Load(document string) (bib auxscan.Digest, index map[string]auxscan.Digest, ok bool)
	Store(document string, bib auxscan.Digest, index map[string]auxscan.Digest) error
}

// Request configures one compilation session.
type Request struct {
	Document       string // path to the main .tex file
	Processor      string // defaults to pdflatex
	BibTool        string // overrides probing when set
	IndexTool      string // overrides probing when set
	OutputName     string // rename the produced artifact; "" keeps the document name
	MaxPasses      int
	MaxDiagnostics int

	Runner   toolrun.Runner
	Probes   Probes
	Progress ProgressSink
	Cache    FingerprintCache

	// Filesystem seams, injectable in tests. Defaults use the os package.
	ReadLog    func(path string) (string, error)
	FileExists func(path string) bool
	Rename     func(oldPath, newPath string) error
}

// Outcome is the terminal result of a session: the state machine's final
// state, the produced artifact (empty on failure), the full pass history
// and the per-pass timings.
type Outcome struct {
	State    State
	Artifact string
	History  []PassRecord
	Timings  *observ.Timer
}

// DiagnosticCount returns the aggregate diagnostic count per pass, in pass
// order. The reporter renders it without re-parsing anything.
func (o Outcome) DiagnosticCount(sev diag.Severity) int {
	n := 0
	for _, rec := range o.History {
		if rec.Diagnostics != nil {
			n += rec.Diagnostics.Count(sev)
		}
	}
	return n
}

// Scheduler drives a session to a terminal state. Strictly sequential:
// every pass's classification depends on the previous pass's auxiliary
// files, so nothing overlaps.
type Scheduler struct {
	req   Request
	state State
	sched ScheduleState
}

// New validates and normalises a request.
func New(req Request) (*Scheduler, error) {
	if req.Document == "" {
		return nil, fmt.Errorf("missing document")
	}
	if req.Runner == nil {
		return nil, fmt.Errorf("missing runner")
	}
	if req.Processor == "" {
		req.Processor = "pdflatex"
	}
	if req.MaxPasses <= 0 {
		req.MaxPasses = DefaultMaxPasses
	}
	if req.MaxDiagnostics <= 0 {
		req.MaxDiagnostics = DefaultMaxDiagnostics
	}
	if req.Probes == nil {
		req.Probes = auxscan.NewProber(req.Document)
	}
	if req.ReadLog == nil {
		req.ReadLog = func(path string) (string, error) {
			data, err := os.ReadFile(path)
			return string(data), err
		}
	}
	if req.FileExists == nil {
		req.FileExists = func(path string) bool {
			info, err := os.Stat(path)
			return err == nil && !info.IsDir()
		}
	}
	if req.Rename == nil {
		req.Rename = os.Rename
	}
	return &Scheduler{
		req:   req,
		state: StateIdle,
		sched: ScheduleState{
			MaxPasses: req.MaxPasses,
			IndexRan:  make(map[string]auxscan.Digest),
		},
	}, nil
}

// State returns the scheduler's current machine state.
func (s *Scheduler) State() State { return s.state }

// Run drives the session to a terminal state. The returned error is only
// non-nil for infrastructure failures (a tool that cannot be spawned,
// context cancellation); a compilation that fails on its own terms yields
// StateFailed with a nil error.
func (s *Scheduler) Run(ctx context.Context) (Outcome, error) {
	outcome := Outcome{Timings: observ.NewTimer()}

	if s.req.Cache != nil {
		if bib, index, ok := s.req.Cache.Load(s.req.Document); ok {
			if !bib.Zero() {
				s.sched.BibRan = true
				s.sched.BibFingerprint = bib
			}
			for name, d := range index {
				s.sched.IndexRan[name] = d
			}
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			s.state = StateFailed
			outcome.State = s.state
			return outcome, err
		}
		if s.sched.PassesRun >= s.sched.MaxPasses {
			return s.finishLimit(&outcome)
		}

		rec, err := s.runProcessorPass(ctx, &outcome)
		if err != nil {
			s.state = StateFailed
			outcome.State = s.state
			return outcome, err
		}
		if rec.ExitCode != 0 {
			// A failed compilation is no basis for deciding further
			// passes: stop immediately, whatever signals came along.
			s.state = StateFailed
			outcome.State = s.state
			return outcome, nil
		}

		s.state = StateEvaluating
		decision := Decide(outcome.History, s.availableTools(), s.pending(rec.Signals))

		if decision.RunBib {
			if err := s.runBibPasses(ctx, &outcome); err != nil {
				s.state = StateFailed
				outcome.State = s.state
				return outcome, err
			}
		}
		for _, name := range decision.RunIndex {
			if err := s.runIndexPass(ctx, &outcome, name); err != nil {
				s.state = StateFailed
				outcome.State = s.state
				return outcome, err
			}
		}
		if decision.RunBib || len(decision.RunIndex) > 0 {
			// Their output is only incorporated by one more processor pass.
			continue
		}
		if decision.RerunProcessor {
			if s.sched.PassesRun >= s.sched.MaxPasses {
				return s.finishLimit(&outcome)
			}
			continue
		}
		return s.finishDone(&outcome)
	}
}

func (s *Scheduler) availableTools() Tools {
	bib := s.req.BibTool
	if bib == "" {
		bib = s.req.Probes.GuessBibTool()
	}
	index := s.req.IndexTool
	if index == "" {
		index = s.req.Probes.GuessIndexTool()
	}
	return Tools{Bib: bib, Index: index}
}

func (s *Scheduler) pending(signals texlog.SignalSet) Pending {
	avail := s.availableTools()
	p := Pending{
		BibRan:       s.sched.BibRan,
		BibLast:      s.sched.BibFingerprint,
		IndexCurrent: make(map[string]auxscan.Digest),
		IndexLast:    make(map[string]auxscan.Digest),
	}
	if avail.Bib != "" {
		p.BibCurrent = s.req.Probes.FingerprintBib(avail.Bib)
	}
	for _, name := range signals.Indexes() {
		p.IndexCurrent[name] = s.req.Probes.FingerprintIndex(name)
		if last, ok := s.sched.IndexRan[name]; ok {
			p.IndexLast[name] = last
		}
	}
	return p
}

func (s *Scheduler) runProcessorPass(ctx context.Context, outcome *Outcome) (PassRecord, error) {
	s.state = StateRunningProcessor
	s.sched.PassesRun++
	passIdx := len(outcome.History) + 1

	args := []string{
		"-interaction=nonstopmode",
		"-halt-on-error",
		"-file-line-error",
		"-recorder",
		filepath.Base(s.req.Document),
	}
	phase := outcome.Timings.Begin(fmt.Sprintf("pass %d (%s)", s.sched.PassesRun, s.req.Processor))
	emit(s.req.Progress, Event{Pass: passIdx, Tool: ToolProcessor, Unit: s.req.Document, Status: StatusWorking})
	start := time.Now()

	res, err := s.req.Runner.Run(ctx, s.req.Processor, args, filepath.Dir(s.req.Document))
	elapsed := time.Since(start)
	if err != nil {
		outcome.Timings.End(phase, "spawn failed")
		emit(s.req.Progress, Event{Pass: passIdx, Tool: ToolProcessor, Unit: s.req.Document, Status: StatusError, Err: err, Elapsed: elapsed})
		return PassRecord{}, err
	}

	// Diagnostics live in the .log file the processor writes; stdout is a
	// fallback when the log is unreadable.
	text, logErr := s.req.ReadLog(s.logPath())
	if logErr != nil {
		text = res.Stdout
	}
	classified := texlog.Classify(text, s.knownSubFiles(outcome.History), s.req.MaxDiagnostics)
	s.corroborate(&classified.Signals)

	rec := PassRecord{
		Index:       passIdx,
		Tool:        ToolProcessor,
		Unit:        s.req.Document,
		Command:     s.req.Processor,
		ExitCode:    res.ExitCode,
		Output:      res.Stdout,
		Diagnostics: classified.Bag,
		Signals:     classified.Signals,
		InputFiles:  classified.InputFiles,
		Duration:    elapsed,
	}
	outcome.History = append(outcome.History, rec)
	outcome.Timings.End(phase, fmt.Sprintf("%d diagnostics", classified.Bag.Len()))

	status := StatusDone
	if res.ExitCode != 0 {
		status = StatusError
	}
	emit(s.req.Progress, Event{Pass: passIdx, Tool: ToolProcessor, Unit: s.req.Document, Status: status, Elapsed: elapsed})
	return rec, nil
}

// corroborate folds file-probe evidence into the classified signals: the
// tools under-report on stdout (bibtex leaves no log phrase at all), but
// the directives they consume are on disk.
func (s *Scheduler) corroborate(signals *texlog.SignalSet) {
	avail := s.availableTools()
	if avail.Bib != "" && len(s.req.Probes.BibUnits(avail.Bib)) > 0 {
		signals.Mark(texlog.SigBibPending)
	}
	if avail.Index != "" {
		for _, unit := range s.req.Probes.IndexUnits(avail.Index) {
			signals.MarkIndex(unit)
		}
	}
}

func (s *Scheduler) runBibPasses(ctx context.Context, outcome *Outcome) error {
	s.state = StateRunningBib
	avail := s.availableTools()
	units := s.req.Probes.BibUnits(avail.Bib)
	if len(units) == 0 {
		units = []string{s.baseName()}
	}
	for _, unit := range units {
		if err := s.runAuxPass(ctx, outcome, ToolBib, avail.Bib, unit); err != nil {
			return err
		}
	}
	s.sched.BibRan = true
	s.sched.BibFingerprint = s.req.Probes.FingerprintBib(avail.Bib)
	return nil
}

func (s *Scheduler) runIndexPass(ctx context.Context, outcome *Outcome, name string) error {
	s.state = StateRunningIndex
	avail := s.availableTools()
	if err := s.runAuxPass(ctx, outcome, ToolIndex, avail.Index, name); err != nil {
		return err
	}
	s.sched.IndexRan[name] = s.req.Probes.FingerprintIndex(name)
	return nil
}

// runAuxPass invokes a bibliography or index tool over one unit. A nonzero
// exit here is reported but does not abort the schedule: the next processor
// pass decides what the missing data means.
func (s *Scheduler) runAuxPass(ctx context.Context, outcome *Outcome, tool Tool, command, unit string) error {
	passIdx := len(outcome.History) + 1
	phase := outcome.Timings.Begin(fmt.Sprintf("%s (%s %s)", tool, command, unit))
	emit(s.req.Progress, Event{Pass: passIdx, Tool: tool, Unit: unit, Status: StatusWorking})
	start := time.Now()

	res, err := s.req.Runner.Run(ctx, command, []string{unit}, filepath.Dir(s.req.Document))
	elapsed := time.Since(start)
	if err != nil {
		outcome.Timings.End(phase, "spawn failed")
		emit(s.req.Progress, Event{Pass: passIdx, Tool: tool, Unit: unit, Status: StatusError, Err: err, Elapsed: elapsed})
		return err
	}

	bag := diag.NewBag(s.req.MaxDiagnostics)
	if res.ExitCode != 0 {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevError,
			Category: diag.CatError,
			Origin:   unit,
			Message:  fmt.Sprintf("%s exited with code %d", command, res.ExitCode),
			RawLine:  strings.TrimSpace(res.Stderr),
		})
	}
	var fingerprint auxscan.Digest
	if tool == ToolBib {
		fingerprint = s.req.Probes.FingerprintBib(command)
	} else {
		fingerprint = s.req.Probes.FingerprintIndex(unit)
	}
	rec := PassRecord{
		Index:       passIdx,
		Tool:        tool,
		Unit:        unit,
		Command:     command,
		ExitCode:    res.ExitCode,
		Output:      res.Stdout + res.Stderr,
		Diagnostics: bag,
		Fingerprint: fingerprint,
		Duration:    elapsed,
	}
	outcome.History = append(outcome.History, rec)
	outcome.Timings.End(phase, "")

	status := StatusDone
	if res.ExitCode != 0 {
		status = StatusError
	}
	emit(s.req.Progress, Event{Pass: passIdx, Tool: tool, Unit: unit, Status: status, Elapsed: elapsed})
	return nil
}

func (s *Scheduler) finishDone(outcome *Outcome) (Outcome, error) {
	s.state = StateDone
	return s.finish(outcome)
}

func (s *Scheduler) finishLimit(outcome *Outcome) (Outcome, error) {
	s.state = StateLimitExceeded
	return s.finish(outcome)
}

func (s *Scheduler) finish(outcome *Outcome) (Outcome, error) {
	artifact, ok := s.resolveArtifact()
	if !ok {
		// The processor was content but produced nothing usable.
		s.state = StateFailed
		outcome.State = s.state
		return *outcome, nil
	}
	s.sched.OutputReady = true
	outcome.Artifact = artifact
	outcome.State = s.state
	s.storeCache()
	return *outcome, nil
}

func (s *Scheduler) resolveArtifact() (string, bool) {
	src := s.stem() + ".pdf"
	if !s.req.FileExists(src) {
		return "", false
	}
	if s.req.OutputName == "" {
		return src, true
	}
	dst := s.req.OutputName
	if !strings.HasSuffix(dst, ".pdf") {
		dst += ".pdf"
	}
	if !filepath.IsAbs(dst) {
		dst = filepath.Join(filepath.Dir(s.req.Document), dst)
	}
	if err := s.req.Rename(src, dst); err != nil {
		// The original artifact still exists; report it instead.
		return src, true
	}
	return dst, true
}

func (s *Scheduler) storeCache() {
	if s.req.Cache == nil {
		return
	}
	index := make(map[string]auxscan.Digest, len(s.sched.IndexRan))
	for name, d := range s.sched.IndexRan {
		index[name] = d
	}
	_ = s.req.Cache.Store(s.req.Document, s.sched.BibFingerprint, index)
}

// knownSubFiles seeds classification with the sub-files identified on the
// most recent processor pass.
func (s *Scheduler) knownSubFiles(history []PassRecord) []string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Tool == ToolProcessor {
			return history[i].InputFiles
		}
	}
	return nil
}

func (s *Scheduler) stem() string {
	return strings.TrimSuffix(s.req.Document, filepath.Ext(s.req.Document))
}

func (s *Scheduler) baseName() string {
	return filepath.Base(s.stem())
}

func (s *Scheduler) logPath() string {
	return s.stem() + ".log"
}
