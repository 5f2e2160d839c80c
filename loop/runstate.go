package loop

import (
	"maps"
	"time"
)

// Phase is a stage within one UL-mode cycle.
type Phase string

const (
	PhaseResearch   Phase = "research"
	PhasePlan       Phase = "plan"
	PhaseImplement  Phase = "implement"
	PhaseCompleted  Phase = "completed"
)

// StopReason records why a run terminated.
type StopReason string

const (
	StopNone       StopReason = ""
	StopUserReq    StopReason = "user_request"
	StopCompleted  StopReason = "completed"
	StopError      StopReason = "error"
	StopStagnation StopReason = "stagnation"
)

// PhaseContext carries immutable key/value data between phases and
// cycles, mirroring the teacher's immutable-state-flows-through-execution
// convention: every mutation returns a new PhaseContext, the receiver is
// left untouched.
type PhaseContext struct {
	Data map[string]any
}

// NewPhaseContext returns an empty PhaseContext.
func NewPhaseContext() PhaseContext {
	return PhaseContext{Data: make(map[string]any)}
}

// Get retrieves a value by key.
func (c PhaseContext) Get(key string) (any, bool) {
	v, ok := c.Data[key]
	return v, ok
}

// Set returns a new PhaseContext with key set to value.
func (c PhaseContext) Set(key string, value any) PhaseContext {
	newData := maps.Clone(c.Data)
	if newData == nil {
		newData = make(map[string]any)
	}
	newData[key] = value
	return PhaseContext{Data: newData}
}

// Merge returns a new PhaseContext with other's keys copied in, overwriting
// any existing keys of the same name.
func (c PhaseContext) Merge(other PhaseContext) PhaseContext {
	newData := maps.Clone(c.Data)
	if newData == nil {
		newData = make(map[string]any)
	}
	maps.Copy(newData, other.Data)
	return PhaseContext{Data: newData}
}

// CycleSummary is the bounded-ring-buffer entry recorded after each cycle.
type CycleSummary struct {
	Cycle     int
	MeanScore float64
	Summary   string
	StoppedAt time.Time
}

// SuccessfulPattern is recorded for high-scoring cycles (mean >= 75) per
// §4.4's post-cycle handling, for injection into future prompts.
type SuccessfulPattern struct {
	Cycle               int
	AvgScore            float64
	ActionSummary       string // cycle mode: joined improvement lines; UL mode: implement-phase text; trimmed to ~100 chars (NEXT_FOCUS is not read)
	AppliedPerspectives []PerspectiveID
}

// RunState is the full per-run state described in spec.md §3, threaded
// through every cycle/phase transition. Ring-buffer fields are bounded
// by the Config that constructed the run.
type RunState struct {
	RunID       string
	Task        string
	StartedAt   time.Time
	MaxCycles   int
	AutoCommit  bool
	ULMode      bool
	AutoApprove bool

	Cycle           int
	InFlightCycle   bool
	CurrentPhase    Phase
	PhaseRetryCount int
	PhaseContext    PhaseContext

	CycleSummaries          []CycleSummary
	PerspectiveScoreHistory [][7]float64
	SuccessfulPatterns      []SuccessfulPattern
	Trajectory              *TrajectoryTracker

	PerspectiveStates map[PerspectiveID]*PerspectiveState

	StopRequested bool
	StopReason    StopReason
	LastCommitHash string

	// LastDetectionFindings carries the most recent actionable integrated
	// detection pass's findings (claim/result mismatch, overconfidence,
	// shallow-fix patterns, verification trigger, ...) forward into the
	// next cycle's/phase's prompt, alongside the metacognitive check's own
	// quality guidance.
	LastDetectionFindings []string

	FilesChangedBeforeCycle map[string]bool
	GitignorePatternsToAdd  []string
}

// NewRunState initializes a fresh RunState for a new run.
func NewRunState(runID, task string, cfg Config, ulMode, autoCommit, autoApprove bool, maxCycles int) *RunState {
	phase := PhaseResearch
	if !ulMode {
		phase = ""
	}
	return &RunState{
		RunID:             runID,
		Task:              task,
		StartedAt:         time.Now(),
		MaxCycles:         maxCycles,
		AutoCommit:        autoCommit,
		ULMode:            ulMode,
		AutoApprove:       autoApprove,
		CurrentPhase:      phase,
		PhaseContext:      NewPhaseContext(),
		PerspectiveStates: NewPerspectiveStates(),
		Trajectory:        NewTrajectoryTracker(cfg.TrajectoryWindow),
	}
}

// appendCycleSummary pushes a summary into the bounded ring, evicting the
// oldest entry once the cap is reached.
func (r *RunState) appendCycleSummary(s CycleSummary, cap int) {
	r.CycleSummaries = append(r.CycleSummaries, s)
	if len(r.CycleSummaries) > cap {
		r.CycleSummaries = r.CycleSummaries[len(r.CycleSummaries)-cap:]
	}
}

// appendSuccessfulPattern pushes a pattern into the bounded ring.
func (r *RunState) appendSuccessfulPattern(p SuccessfulPattern, cap int) {
	r.SuccessfulPatterns = append(r.SuccessfulPatterns, p)
	if len(r.SuccessfulPatterns) > cap {
		r.SuccessfulPatterns = r.SuccessfulPatterns[len(r.SuccessfulPatterns)-cap:]
	}
}

// recentSuccessfulPatterns returns up to n patterns with AvgScore >= 75,
// most recent first, per §4.4 step 2's prompt-construction rule.
func (r *RunState) recentSuccessfulPatterns(n int) []SuccessfulPattern {
	var out []SuccessfulPattern
	for i := len(r.SuccessfulPatterns) - 1; i >= 0 && len(out) < n; i-- {
		if r.SuccessfulPatterns[i].AvgScore >= 75 {
			out = append(out, r.SuccessfulPatterns[i])
		}
	}
	return out
}
