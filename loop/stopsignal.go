package loop

import (
	"os"
	"path/filepath"
)

// stopSignalPath returns <project>/.pi/self-improvement-loop/stop-signal.
func stopSignalPath(projectDir string) string {
	return filepath.Join(projectDir, ".pi", "self-improvement-loop", "stop-signal")
}

// checkStopSignal reads the stop-signal file and reports whether its
// content is exactly "STOP" or "stop" (case-sensitive pair, not a
// case-insensitive compare, per SPEC_FULL's resolved Open Question).
// A missing file is not a stop request.
func checkStopSignal(projectDir string) bool {
	data, err := os.ReadFile(stopSignalPath(projectDir))
	if err != nil {
		return false
	}
	content := string(data)
	return content == "STOP" || content == "stop"
}

// clearStopSignal removes the stop-signal file; Run calls it on every
// exit, however the run ended, just before the footer is written.
func clearStopSignal(projectDir string) {
	_ = os.Remove(stopSignalPath(projectDir))
}
