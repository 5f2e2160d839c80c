package coordinator

import (
	"context"
	"math"
	"time"

	"github.com/tailored-agentic-units/llmctl/observability"
)

// CleanupDeadInstances removes registry records (other than this instance's)
// whose heartbeat has not been refreshed within HeartbeatTimeout, and removes
// any record file that fails to parse.
func (c *Coordinator) CleanupDeadInstances() error {
	selfID := c.InstanceID()
	names, err := listJSONFiles(c.instancesDir())
	if err != nil {
		return err
	}

	now := time.Now()
	removed := 0
	for _, name := range names {
		if name == selfID {
			continue
		}
		path := c.instancePath(name)
		var rec InstanceRecord
		if err := readJSON(path, &rec); err != nil {
			removeIfExists(path)
			removed++
			continue
		}
		if !rec.alive(now, c.cfg.HeartbeatTimeout) {
			removeIfExists(path)
			removed++
		}
	}

	c.observer.OnEvent(context.Background(), observability.Event{
		Type: EventCleanupInstances, Level: observability.LevelVerbose, Timestamp: now,
		Source: "coordinator.CleanupDeadInstances", Data: map[string]any{"removed": removed},
	})
	return nil
}

// GetActiveInstances returns the live instance records read from disk (this
// instance and every peer whose heartbeat is within timeout); a record not
// yet flushed to disk is not included.
func (c *Coordinator) GetActiveInstances() ([]InstanceRecord, error) {
	names, err := listJSONFiles(c.instancesDir())
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var records []InstanceRecord
	for _, name := range names {
		var rec InstanceRecord
		if err := readJSON(c.instancePath(name), &rec); err != nil {
			continue
		}
		if rec.alive(now, c.cfg.HeartbeatTimeout) {
			records = append(records, rec)
		}
	}
	return records, nil
}

// GetActiveInstanceCount always returns at least 1, since this instance
// counts as active even before its first on-disk heartbeat lands.
func (c *Coordinator) GetActiveInstanceCount() (int, error) {
	records, err := c.GetActiveInstances()
	if err != nil {
		return 1, err
	}
	n := len(records)
	if n < 1 {
		n = 1
	}
	return n, nil
}

// GetParallelLimit returns max(1, floor(total_max_llm / active_instance_count)).
func (c *Coordinator) GetParallelLimit() (int, error) {
	n, err := c.GetActiveInstanceCount()
	if err != nil {
		return 1, err
	}
	limit := c.cfg.TotalMaxLLM / n
	if limit < 1 {
		limit = 1
	}
	return limit, nil
}

// GetDynamicParallelLimit allocates this instance's share of total_max_llm
// weighted by inverse workload: each instance's share is proportional to
// 1/(pending+1), normalized across all active instances so shares sum to
// total_max_llm, with a floor of 1.
func (c *Coordinator) GetDynamicParallelLimit(myPending int) (int, error) {
	records, err := c.GetActiveInstances()
	if err != nil {
		return 1, err
	}

	selfID := c.InstanceID()
	weights := make(map[string]float64, len(records)+1)
	total := 0.0

	selfWeight := 1.0 / float64(myPending+1)
	weights[selfID] = selfWeight
	total += selfWeight

	for _, rec := range records {
		if rec.InstanceID == selfID {
			continue
		}
		w := 1.0 / float64(rec.PendingTaskCount+1)
		weights[rec.InstanceID] = w
		total += w
	}

	if total <= 0 {
		return 1, nil
	}

	share := weights[selfID] / total * float64(c.cfg.TotalMaxLLM)
	limit := int(math.Floor(share))
	if limit < 1 {
		limit = 1
	}
	return limit, nil
}

// SetActiveModel records that this instance currently has (provider, model)
// in use, persisting the updated instance record.
func (c *Coordinator) SetActiveModel(provider, model string) error {
	c.mu.Lock()
	for _, am := range c.activeModels {
		if am.Provider == provider && am.Model == model {
			c.mu.Unlock()
			return nil
		}
	}
	c.activeModels = append(c.activeModels, ActiveModel{Provider: provider, Model: model, Since: time.Now()})
	rec := c.recordLocked(time.Now())
	path := c.instancePath(c.instanceID)
	c.mu.Unlock()

	return writeJSONAtomic(path, rec)
}

// ClearActiveModel removes (provider, model) from this instance's active set.
func (c *Coordinator) ClearActiveModel(provider, model string) error {
	c.mu.Lock()
	kept := c.activeModels[:0]
	for _, am := range c.activeModels {
		if am.Provider == provider && am.Model == model {
			continue
		}
		kept = append(kept, am)
	}
	c.activeModels = kept
	rec := c.recordLocked(time.Now())
	path := c.instancePath(c.instanceID)
	c.mu.Unlock()

	return writeJSONAtomic(path, rec)
}

// GetActiveInstancesForModel counts live instances with (provider, model)
// marked active, using the matching semantics described in
// modelMatches (exact, prefix, or escaped-glob).
func (c *Coordinator) GetActiveInstancesForModel(provider, model string) (int, error) {
	records, err := c.GetActiveInstances()
	if err != nil {
		return 1, err
	}
	count := 0
	for _, rec := range records {
		for _, am := range rec.ActiveModels {
			if am.Provider == provider && modelMatches(am.Model, model) {
				count++
				break
			}
		}
	}
	if count < 1 {
		count = 1
	}
	return count, nil
}

// GetModelParallelLimit shares baseLimit across only the peers that have
// (provider, model) marked active.
func (c *Coordinator) GetModelParallelLimit(provider, model string, baseLimit int) (int, error) {
	n, err := c.GetActiveInstancesForModel(provider, model)
	if err != nil {
		return 1, err
	}
	limit := baseLimit / n
	if limit < 1 {
		limit = 1
	}
	return limit, nil
}
