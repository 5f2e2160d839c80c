package coordinator

import (
	"context"
	"sort"
	"time"

	"github.com/tailored-agentic-units/llmctl/observability"
)

// BroadcastQueueState atomically rewrites this instance's queue-state file
// with the given workload snapshot.
func (c *Coordinator) BroadcastQueueState(pending, activeOrchestrations int, entries []StealableEntry, avgLatencyMs float64) error {
	instanceID := c.InstanceID()
	state := QueueState{
		InstanceID:           instanceID,
		Timestamp:            time.Now(),
		PendingTaskCount:     pending,
		ActiveOrchestrations: activeOrchestrations,
		AvgLatencyMs:         avgLatencyMs,
		StealableEntries:     entries,
	}

	c.mu.Lock()
	c.pendingTaskCount = pending
	c.avgLatencyMs = avgLatencyMs
	c.mu.Unlock()

	return writeJSONAtomic(c.queueStatePath(instanceID), state)
}

// GetRemoteQueueStates reads peer queue-state files, dropping this
// instance's own broadcast and any broadcast older than
// 2*HeartbeatInterval.
func (c *Coordinator) GetRemoteQueueStates() ([]QueueState, error) {
	selfID := c.InstanceID()
	names, err := listJSONFiles(c.queueStatesDir())
	if err != nil {
		return nil, err
	}

	maxAge := 2 * c.cfg.HeartbeatInterval
	now := time.Now()
	var states []QueueState
	for _, name := range names {
		if name == selfID {
			continue
		}
		var state QueueState
		if err := readJSON(c.queueStatePath(name), &state); err != nil {
			continue
		}
		if now.Sub(state.Timestamp) > maxAge {
			continue
		}
		states = append(states, state)
	}
	return states, nil
}

// cleanupQueueStates removes queue-state files older than 2*HeartbeatInterval
// (other than this instance's), mirroring CleanupDeadInstances for the
// enhanced heartbeat composite.
func (c *Coordinator) cleanupQueueStates() error {
	selfID := c.InstanceID()
	names, err := listJSONFiles(c.queueStatesDir())
	if err != nil {
		return err
	}

	maxAge := 2 * c.cfg.HeartbeatInterval
	now := time.Now()
	removed := 0
	for _, name := range names {
		if name == selfID {
			continue
		}
		path := c.queueStatePath(name)
		var state QueueState
		if err := readJSON(path, &state); err != nil {
			removeIfExists(path)
			removed++
			continue
		}
		if now.Sub(state.Timestamp) > maxAge {
			removeIfExists(path)
			removed++
		}
	}

	c.observer.OnEvent(context.Background(), observability.Event{
		Type: EventCleanupQueue, Level: observability.LevelVerbose, Timestamp: now,
		Source: "coordinator.cleanupQueueStates", Data: map[string]any{"removed": removed},
	})
	return nil
}

// ShouldAttemptStealing reports whether this instance is idle (no pending
// tasks of its own) while some peer reports more than 2 pending tasks.
func (c *Coordinator) ShouldAttemptStealing() (bool, error) {
	if c.cfg.DisableWorkStealing {
		return false, nil
	}

	c.mu.Lock()
	myPending := c.pendingTaskCount
	c.mu.Unlock()
	if myPending != 0 {
		return false, nil
	}

	states, err := c.GetRemoteQueueStates()
	if err != nil {
		return false, err
	}
	for _, s := range states {
		if s.PendingTaskCount > 2 {
			return true, nil
		}
	}
	return false, nil
}

// StealWork selects, without acquiring any lock, the highest-priority
// stealable entry among peers reporting pending > 2 and a non-empty
// stealable-entries list. It returns ErrNoCandidates if none qualify.
//
// This is advisory only, per the Open Question decision recorded for work
// stealing: the caller receives a candidate but StealWork does not mutate
// the donor's queue-state file or otherwise execute a handoff.
func (c *Coordinator) StealWork() (*StealableEntry, error) {
	states, err := c.GetRemoteQueueStates()
	if err != nil {
		return nil, err
	}

	var candidates []StealableEntry
	for _, s := range states {
		if s.PendingTaskCount <= 2 || len(s.StealableEntries) == 0 {
			continue
		}
		candidates = append(candidates, s.StealableEntries...)
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return priorityRank(candidates[i].Priority) < priorityRank(candidates[j].Priority)
	})
	best := candidates[0]
	return &best, nil
}

// SafeStealWork wraps StealWork with a distributed lock keyed on
// "steal:<candidate_instance_id>" so two instances cannot both claim the
// same donor's candidate concurrently. Stealing statistics are updated
// regardless of outcome.
func (c *Coordinator) SafeStealWork() (*StealableEntry, error) {
	start := time.Now()
	c.stealing.recordAttempt()

	candidate, err := c.StealWork()
	if err != nil {
		c.stealing.recordFailure()
		return nil, err
	}

	resource := "steal:" + candidate.InstanceID
	ttl := c.cfg.StealLockTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	lock, err := c.TryAcquire(resource, ttl)
	if err != nil {
		c.stealing.recordFailure()
		return nil, err
	}
	defer c.Release(lock)

	c.stealing.recordSuccess(time.Since(start))
	c.observer.OnEvent(context.Background(), observability.Event{
		Type: EventStealSuccess, Level: observability.LevelInfo, Timestamp: time.Now(),
		Source: "coordinator.SafeStealWork",
		Data:   map[string]any{"entry_id": candidate.ID, "donor": candidate.InstanceID},
	})
	return candidate, nil
}
