package loop

import "testing"

func TestTrajectoryTrackerIsStuck(t *testing.T) {
	tr := NewTrajectoryTracker(50)
	if tr.IsStuck() {
		t.Fatalf("empty tracker reported stuck")
	}

	tr.Record("add tests|fix bug")
	tr.Record("add tests|fix bug")
	tr.Record("add tests|fix bug")
	if !tr.IsStuck() {
		t.Errorf("tracker with 3 identical signatures should report stuck")
	}
}

func TestTrajectoryTrackerNotStuckOnVariety(t *testing.T) {
	tr := NewTrajectoryTracker(50)
	tr.Record("a")
	tr.Record("b")
	tr.Record("c")
	tr.Record("d")
	if tr.IsStuck() {
		t.Errorf("tracker with distinct signatures should not report stuck")
	}
}

func TestTrajectoryTrackerRingCap(t *testing.T) {
	tr := NewTrajectoryTracker(3)
	for i := 0; i < 10; i++ {
		tr.Record(StepSignature([]string{"x"}))
	}
	if len(tr.signatures) != 3 {
		t.Fatalf("len(signatures) = %d, want 3", len(tr.signatures))
	}
}

func TestTrajectoryTrackerRecommendedAction(t *testing.T) {
	tr := NewTrajectoryTracker(50)
	if got := tr.RecommendedAction(); got != ActionContinue {
		t.Errorf("empty tracker RecommendedAction() = %q, want %q", got, ActionContinue)
	}

	tr.Record("same")
	tr.Record("same")
	if got := tr.RecommendedAction(); got != ActionPivot {
		t.Errorf("two repeated signatures RecommendedAction() = %q, want %q", got, ActionPivot)
	}

	tr.Record("same")
	if got := tr.RecommendedAction(); got != ActionEarlyStop {
		t.Errorf("three repeated signatures RecommendedAction() = %q, want %q", got, ActionEarlyStop)
	}
}

func TestStagnationDetectorLowVariance(t *testing.T) {
	d := newStagnationDetector(0.85, 2)
	means := []float64{0.80, 0.801, 0.799}

	if d.Observe(means) {
		t.Fatalf("stagnation should not fire on the first low-variance window")
	}
	means = append(means, 0.800)
	if !d.Observe(means) {
		t.Errorf("stagnation should fire on the second consecutive low-variance window")
	}
}

func TestStagnationDetectorResetsOnVariance(t *testing.T) {
	d := newStagnationDetector(0.85, 2)
	d.Observe([]float64{0.80, 0.801, 0.799})
	d.Observe([]float64{0.80, 0.801, 0.799, 0.10})
	if d.consecutiveLow != 0 {
		t.Errorf("consecutiveLow = %d, want reset to 0 after a high-variance window", d.consecutiveLow)
	}
}

func TestStagnationDetectorNeedsMinimumWindow(t *testing.T) {
	d := newStagnationDetector(0.85, 1)
	if d.Observe([]float64{0.8, 0.8}) {
		t.Fatalf("stagnation should not fire with fewer than 3 samples")
	}
}
