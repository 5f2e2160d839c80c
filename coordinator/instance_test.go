package coordinator

import (
	"testing"
	"time"
)

func TestRegisterUnregister(t *testing.T) {
	c := newTestCoordinator(t)
	if err := c.Register("session-1", "/tmp/proj"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	defer c.Unregister()

	if _, err := readJSONInstance(c, c.InstanceID()); err != nil {
		t.Fatalf("expected instance record on disk: %v", err)
	}

	n, err := c.GetActiveInstanceCount()
	if err != nil || n != 1 {
		t.Fatalf("GetActiveInstanceCount = %d, %v; want 1, nil", n, err)
	}

	instanceID := c.InstanceID()
	if err := c.Unregister(); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	if _, err := readJSONInstance(c, instanceID); err == nil {
		t.Fatal("expected instance record removed after Unregister")
	}
}

func TestGetActiveInstanceCount_NeverBelowOne(t *testing.T) {
	c := newTestCoordinator(t)
	n, err := c.GetActiveInstanceCount()
	if err != nil {
		t.Fatalf("GetActiveInstanceCount: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 active instance before Register, got %d", n)
	}

	limit, err := c.GetParallelLimit()
	if err != nil || limit < 1 {
		t.Fatalf("GetParallelLimit = %d, %v; want >= 1", limit, err)
	}
}

func TestTwoInstanceParallelShare(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.TotalMaxLLM = 6
	cfg.HeartbeatInterval = time.Hour
	cfg.HeartbeatTimeout = 50 * time.Millisecond

	a := New(root, cfg, nil)
	if err := a.Register("a", "/tmp/a"); err != nil {
		t.Fatalf("a.Register: %v", err)
	}
	defer a.Unregister()

	limit, _ := a.GetParallelLimit()
	if limit != 6 {
		t.Fatalf("solo instance GetParallelLimit = %d, want 6", limit)
	}

	b := New(root, cfg, nil)
	if err := b.Register("b", "/tmp/b"); err != nil {
		t.Fatalf("b.Register: %v", err)
	}

	if err := a.Heartbeat(); err != nil {
		t.Fatalf("a.Heartbeat: %v", err)
	}
	if err := b.Heartbeat(); err != nil {
		t.Fatalf("b.Heartbeat: %v", err)
	}

	countA, _ := a.GetActiveInstanceCount()
	if countA != 2 {
		t.Fatalf("a sees %d active instances, want 2", countA)
	}
	limitA, _ := a.GetParallelLimit()
	if limitA != 3 {
		t.Fatalf("a GetParallelLimit = %d, want 3", limitA)
	}

	// b "dies" without Unregister: stop its heartbeat goroutine directly so
	// its record simply goes stale, the way a killed process would.
	close(b.stopHeartbeat)
	<-b.heartbeatDone

	time.Sleep(cfg.HeartbeatTimeout + 20*time.Millisecond)

	countAfter, _ := a.GetActiveInstanceCount()
	if countAfter != 1 {
		t.Fatalf("after b's timeout, a sees %d active instances, want 1", countAfter)
	}
	limitAfter, _ := a.GetParallelLimit()
	if limitAfter != 6 {
		t.Fatalf("after b's timeout, a GetParallelLimit = %d, want 6", limitAfter)
	}
}

func TestHeartbeat_Idempotence(t *testing.T) {
	c := newTestCoordinator(t)
	if err := c.Register("s", "/tmp"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	defer c.Unregister()

	rec1, err := readJSONInstance(c, c.InstanceID())
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	for i := 0; i < 3; i++ {
		time.Sleep(time.Millisecond)
		if err := c.Heartbeat(); err != nil {
			t.Fatalf("Heartbeat: %v", err)
		}
	}

	rec2, err := readJSONInstance(c, c.InstanceID())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !rec1.StartedAt.Equal(rec2.StartedAt) {
		t.Fatalf("started_at changed across heartbeats: %v -> %v", rec1.StartedAt, rec2.StartedAt)
	}
	if !rec2.LastHeartbeatAt.After(rec1.LastHeartbeatAt) {
		t.Fatalf("last_heartbeat_at did not advance: %v -> %v", rec1.LastHeartbeatAt, rec2.LastHeartbeatAt)
	}
}

func TestHeartbeat_RecreatesMissingRecord(t *testing.T) {
	c := newTestCoordinator(t)
	if err := c.Register("s", "/tmp"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	defer c.Unregister()

	startedAt := c.startedAt
	instanceID := c.InstanceID()
	removeIfExists(c.instancePath(instanceID))

	if err := c.Heartbeat(); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}

	rec, err := readJSONInstance(c, instanceID)
	if err != nil {
		t.Fatalf("expected record recreated: %v", err)
	}
	if rec.InstanceID != instanceID {
		t.Fatalf("instance_id not preserved: got %s, want %s", rec.InstanceID, instanceID)
	}
	if !rec.StartedAt.Equal(startedAt) {
		t.Fatalf("started_at not preserved: got %v, want %v", rec.StartedAt, startedAt)
	}
}

func TestModelParallelLimit(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.HeartbeatInterval = time.Hour

	a := New(root, cfg, nil)
	if err := a.Register("a", "/tmp/a"); err != nil {
		t.Fatalf("a.Register: %v", err)
	}
	defer a.Unregister()
	if err := a.SetActiveModel("anthropic", "claude-opus"); err != nil {
		t.Fatalf("SetActiveModel: %v", err)
	}

	b := New(root, cfg, nil)
	if err := b.Register("b", "/tmp/b"); err != nil {
		t.Fatalf("b.Register: %v", err)
	}
	defer b.Unregister()
	if err := b.SetActiveModel("anthropic", "claude-haiku"); err != nil {
		t.Fatalf("SetActiveModel: %v", err)
	}

	n, err := a.GetActiveInstancesForModel("anthropic", "claude-opus")
	if err != nil {
		t.Fatalf("GetActiveInstancesForModel: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 instance active on claude-opus, got %d", n)
	}

	limit, err := a.GetModelParallelLimit("anthropic", "claude-opus", 6)
	if err != nil || limit != 6 {
		t.Fatalf("GetModelParallelLimit = %d, %v; want 6, nil", limit, err)
	}

	nPrefix, err := a.GetActiveInstancesForModel("anthropic", "claude-*")
	if err != nil {
		t.Fatalf("GetActiveInstancesForModel (glob): %v", err)
	}
	if nPrefix != 2 {
		t.Fatalf("expected 2 instances matching claude-*, got %d", nPrefix)
	}
}

func readJSONInstance(c *Coordinator, instanceID string) (InstanceRecord, error) {
	var rec InstanceRecord
	err := readJSON(c.instancePath(instanceID), &rec)
	return rec, err
}
