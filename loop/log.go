package loop

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RunLog writes the markdown timeline file described in spec.md §6:
// header, per-cycle entries, footer. It appends incrementally so a
// crash mid-run still leaves a readable partial log.
type RunLog struct {
	path string
}

// NewRunLog builds a RunLog rooted at <project>/.pi/self-improvement-loop/run-<run_id>.md.
func NewRunLog(projectDir, runID string) (*RunLog, error) {
	dir := filepath.Join(projectDir, ".pi", "self-improvement-loop")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("loop: create log dir: %w", err)
	}
	return &RunLog{path: filepath.Join(dir, fmt.Sprintf("run-%s.md", runID))}, nil
}

// Path returns the log file's path.
func (l *RunLog) Path() string { return l.path }

func (l *RunLog) append(text string) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("loop: open log: %w", err)
	}
	defer f.Close()
	_, err = f.WriteString(text)
	return err
}

// WriteHeader writes the run-start banner.
func (l *RunLog) WriteHeader(rs *RunState) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Run %s\n\n", rs.RunID)
	fmt.Fprintf(&b, "- Task: %s\n", rs.Task)
	fmt.Fprintf(&b, "- Started: %s\n", rs.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Mode: %s\n", modeLabel(rs.ULMode))
	fmt.Fprintf(&b, "- Max cycles: %d\n\n", rs.MaxCycles)
	return l.append(b.String())
}

func modeLabel(ulMode bool) string {
	if ulMode {
		return "UL"
	}
	return "cycle"
}

// WriteCycleEntry writes one cycle's timeline entry.
func (l *RunLog) WriteCycleEntry(cycle int, meanScore float64, summary string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "## Cycle %d\n\n", cycle)
	fmt.Fprintf(&b, "- Mean score: %.2f\n", meanScore)
	if summary != "" {
		fmt.Fprintf(&b, "- Summary: %s\n", summary)
	}
	b.WriteString("\n")
	return l.append(b.String())
}

// WriteCommitEntry notes a commit made during a cycle.
func (l *RunLog) WriteCommitEntry(shortHash, message string) error {
	return l.append(fmt.Sprintf("- Commit `%s`: %s\n\n", shortHash, message))
}

// WriteFooter writes the run-stop banner. Called unconditionally on
// termination, regardless of StopReason, per §7's propagation policy.
func (l *RunLog) WriteFooter(rs *RunState) error {
	var b strings.Builder
	fmt.Fprintf(&b, "## Stopped\n\n")
	fmt.Fprintf(&b, "- Reason: %s\n", string(rs.StopReason))
	fmt.Fprintf(&b, "- Final cycle: %d\n", rs.Cycle)
	fmt.Fprintf(&b, "- Stopped at: %s\n", time.Now().Format(time.RFC3339))
	return l.append(b.String())
}
