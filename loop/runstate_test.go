package loop

import "testing"

func TestPhaseContextImmutability(t *testing.T) {
	base := NewPhaseContext()
	withA := base.Set("a", 1)

	if _, ok := base.Get("a"); ok {
		t.Fatalf("base mutated by Set")
	}
	v, ok := withA.Get("a")
	if !ok || v != 1 {
		t.Fatalf("withA.Get(a) = %v, %v; want 1, true", v, ok)
	}

	withB := withA.Set("b", 2)
	if _, ok := withA.Get("b"); ok {
		t.Fatalf("withA mutated by deriving withB")
	}
	if v, _ := withB.Get("a"); v != 1 {
		t.Fatalf("withB lost key a from its parent")
	}
}

func TestPhaseContextMerge(t *testing.T) {
	a := NewPhaseContext().Set("x", 1).Set("y", 2)
	b := NewPhaseContext().Set("y", 99).Set("z", 3)

	merged := a.Merge(b)
	if v, _ := merged.Get("x"); v != 1 {
		t.Errorf("merged.x = %v, want 1", v)
	}
	if v, _ := merged.Get("y"); v != 99 {
		t.Errorf("merged.y = %v, want 99 (other wins on overlap)", v)
	}
	if v, _ := merged.Get("z"); v != 3 {
		t.Errorf("merged.z = %v, want 3", v)
	}
	if _, ok := a.Get("z"); ok {
		t.Fatalf("a mutated by Merge")
	}
}

func TestAppendCycleSummaryCap(t *testing.T) {
	rs := NewRunState("r1", "task", DefaultConfig(), false, false, false, 10)
	for i := 0; i < 5; i++ {
		rs.appendCycleSummary(CycleSummary{Cycle: i}, 3)
	}
	if len(rs.CycleSummaries) != 3 {
		t.Fatalf("len(CycleSummaries) = %d, want 3", len(rs.CycleSummaries))
	}
	if rs.CycleSummaries[0].Cycle != 2 {
		t.Errorf("oldest retained summary = %d, want 2 (cycles 0,1 evicted)", rs.CycleSummaries[0].Cycle)
	}
}

func TestRecentSuccessfulPatternsFiltersByThreshold(t *testing.T) {
	rs := NewRunState("r1", "task", DefaultConfig(), false, false, false, 10)
	rs.appendSuccessfulPattern(SuccessfulPattern{Cycle: 1, AvgScore: 60}, 10)
	rs.appendSuccessfulPattern(SuccessfulPattern{Cycle: 2, AvgScore: 80}, 10)
	rs.appendSuccessfulPattern(SuccessfulPattern{Cycle: 3, AvgScore: 90}, 10)

	got := rs.recentSuccessfulPatterns(5)
	if len(got) != 2 {
		t.Fatalf("len(recentSuccessfulPatterns) = %d, want 2", len(got))
	}
	if got[0].Cycle != 3 || got[1].Cycle != 2 {
		t.Errorf("order = %+v, want most-recent-first [3,2]", got)
	}
}

func TestNewRunStateDefaultsULPhase(t *testing.T) {
	ul := NewRunState("r1", "t", DefaultConfig(), true, false, false, 5)
	if ul.CurrentPhase != PhaseResearch {
		t.Errorf("UL-mode initial phase = %q, want %q", ul.CurrentPhase, PhaseResearch)
	}

	cycle := NewRunState("r2", "t", DefaultConfig(), false, false, false, 5)
	if cycle.CurrentPhase != "" {
		t.Errorf("cycle-mode initial phase = %q, want empty", cycle.CurrentPhase)
	}
}
