package coordinator

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/llmctl/observability"
)

// Coordinator maintains this process's membership in a registry of peer
// instances sharing a single machine, and derives this instance's fair share
// of a process-wide LLM concurrency budget. It is the module-owned state
// value the spec's Design Notes call for in place of scattered process-wide
// globals: callers construct one with New, call Register, and eventually
// Unregister; no package-level mutable state exists.
type Coordinator struct {
	root     string
	cfg      Config
	observer observability.Observer

	mu         sync.Mutex
	instanceID string
	processID  int
	sessionID  string
	startedAt  time.Time
	workingDir string
	registered bool

	activeModels     []ActiveModel
	pendingTaskCount int
	avgLatencyMs     float64

	stopHeartbeat chan struct{}
	heartbeatDone chan struct{}

	stealing *StealingStats
}

// New constructs a Coordinator rooted at root (typically
// DefaultRuntimeRoot(homeDir)). cfg is used as given; LoadConfig is what
// layers defaults, file and environment.
func New(root string, cfg Config, observer observability.Observer) *Coordinator {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	return &Coordinator{
		root:     root,
		cfg:      cfg,
		observer: observer,
		stealing: newStealingStats(),
	}
}

// Register creates this instance's registry record and starts its
// background heartbeat. It is idempotent-unsafe to call twice without an
// intervening Unregister.
func (c *Coordinator) Register(sessionID, cwd string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.instanceID = uuid.Must(uuid.NewV7()).String()
	c.processID = os.Getpid()
	c.sessionID = sessionID
	c.workingDir = cwd
	c.startedAt = time.Now()
	c.registered = true

	rec := c.recordLocked(c.startedAt)
	if err := writeJSONAtomic(c.instancePath(c.instanceID), rec); err != nil {
		c.registered = false
		return err
	}

	c.stopHeartbeat = make(chan struct{})
	c.heartbeatDone = make(chan struct{})
	go c.heartbeatLoop(c.stopHeartbeat, c.heartbeatDone)

	c.observer.OnEvent(context.Background(), observability.Event{
		Type: EventRegister, Level: observability.LevelInfo, Timestamp: time.Now(),
		Source: "coordinator.Register",
		Data:   map[string]any{"instance_id": c.instanceID, "session_id": sessionID},
	})
	return nil
}

// Unregister stops the heartbeat timer and removes this instance's record.
// It is idempotent: calling it without a prior Register, or twice in a row,
// is a no-op.
func (c *Coordinator) Unregister() error {
	c.mu.Lock()
	if !c.registered {
		c.mu.Unlock()
		return nil
	}
	instanceID := c.instanceID
	stop := c.stopHeartbeat
	done := c.heartbeatDone
	c.registered = false
	c.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	c.observer.OnEvent(context.Background(), observability.Event{
		Type: EventUnregister, Level: observability.LevelInfo, Timestamp: time.Now(),
		Source: "coordinator.Unregister", Data: map[string]any{"instance_id": instanceID},
	})
	return removeIfExists(c.instancePath(instanceID))
}

// InstanceID returns this instance's identifier. Empty before Register.
func (c *Coordinator) InstanceID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instanceID
}

// recordLocked builds the current InstanceRecord. Caller holds c.mu.
func (c *Coordinator) recordLocked(lastHeartbeatAt time.Time) InstanceRecord {
	return InstanceRecord{
		InstanceID:       c.instanceID,
		ProcessID:        c.processID,
		SessionID:        c.sessionID,
		StartedAt:        c.startedAt,
		LastHeartbeatAt:  lastHeartbeatAt,
		WorkingDir:       c.workingDir,
		ActiveModels:     append([]ActiveModel(nil), c.activeModels...),
		PendingTaskCount: c.pendingTaskCount,
		AvgLatencyMs:     c.avgLatencyMs,
	}
}

// heartbeatLoop runs the enhanced heartbeat composite on cfg.HeartbeatInterval
// until stop is closed, then signals done. It is started unref'd in spirit:
// nothing but Unregister's explicit stop keeps it running past process exit
// expectations, since Go has no timer-unref primitive, the owning goroutine
// is simply abandoned if the process exits without calling Unregister.
func (c *Coordinator) heartbeatLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.Heartbeat()
			c.CleanupDeadInstances()
			c.cleanupQueueStates()
			c.CleanupExpiredLocks()
		}
	}
}

// Heartbeat atomically rewrites this instance's last_heartbeat_at. If the
// record file is missing (a peer may have reaped it past timeout, or the
// directory was cleared), it is recreated preserving instance_id and
// started_at from in-memory state.
func (c *Coordinator) Heartbeat() error {
	c.mu.Lock()
	if !c.registered {
		c.mu.Unlock()
		return ErrNotRegistered
	}
	rec := c.recordLocked(time.Now())
	path := c.instancePath(c.instanceID)
	c.mu.Unlock()

	if err := writeJSONAtomic(path, rec); err != nil {
		return err
	}
	c.observer.OnEvent(context.Background(), observability.Event{
		Type: EventHeartbeat, Level: observability.LevelVerbose, Timestamp: time.Now(),
		Source: "coordinator.Heartbeat", Data: map[string]any{"instance_id": rec.InstanceID},
	})
	return nil
}
