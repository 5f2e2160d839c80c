package loop

import "time"

// PerspectiveID identifies one of the seven fixed analytical viewpoints
// a cycle sweeps over.
type PerspectiveID string

const (
	PerspectiveArchitect    PerspectiveID = "architect"
	PerspectiveSecurity     PerspectiveID = "security"
	PerspectivePerformance  PerspectiveID = "performance"
	PerspectiveMaintainer   PerspectiveID = "maintainer"
	PerspectiveTester       PerspectiveID = "tester"
	PerspectiveSkeptic      PerspectiveID = "skeptic"
	PerspectiveUserAdvocate PerspectiveID = "user_advocate"
)

// PerspectiveDescriptor is the static metadata for one perspective.
type PerspectiveDescriptor struct {
	ID          PerspectiveID
	DisplayName string
	Description string
}

// Perspectives lists all seven fixed perspectives in sweep order.
var Perspectives = []PerspectiveDescriptor{
	{PerspectiveArchitect, "Architect", "structural soundness and design coherence of the change"},
	{PerspectiveSecurity, "Security", "vulnerabilities, unsafe input handling, privilege and data exposure"},
	{PerspectivePerformance, "Performance", "efficiency, resource use, and scalability of the change"},
	{PerspectiveMaintainer, "Maintainer", "readability, naming, and long-term maintainability"},
	{PerspectiveTester, "Tester", "test coverage, missing edge cases, and verification gaps"},
	{PerspectiveSkeptic, "Skeptic", "challenges assumptions and looks for unverified claims"},
	{PerspectiveUserAdvocate, "User Advocate", "end-user impact and usability of the change"},
}

// PerspectiveState tracks one perspective's accumulated history within a run.
type PerspectiveState struct {
	ID              PerspectiveID
	LastAppliedAt   time.Time
	Findings        []string
	Questions       []string
	Improvements    []string
	Score           float64 // in [0,1]
}

// NewPerspectiveStates builds the initial per-run state for all seven perspectives.
func NewPerspectiveStates() map[PerspectiveID]*PerspectiveState {
	states := make(map[PerspectiveID]*PerspectiveState, len(Perspectives))
	for _, d := range Perspectives {
		states[d.ID] = &PerspectiveState{ID: d.ID}
	}
	return states
}

// Apply folds a parsed PerspectiveResult into the perspective's accumulated state.
func (s *PerspectiveState) Apply(result PerspectiveResult, appliedAt time.Time) {
	s.LastAppliedAt = appliedAt
	s.Findings = append(s.Findings, result.Findings...)
	s.Questions = append(s.Questions, result.Questions...)
	s.Improvements = append(s.Improvements, result.Improvements...)
	s.Score = result.Score
}
