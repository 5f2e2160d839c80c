package coordinator

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/llmctl/observability"
)

// TryAcquire attempts to obtain the distributed lock named resource.
// It reads any existing lock file; if present and not yet expired, it
// returns ErrLockConflict. Otherwise it atomically writes a new lock record
// and returns it.
//
// This is not fully race-free against a concurrent peer's TryAcquire on the
// same resource (check-then-write, not a filesystem-level exclusive create);
// the spec's invariant is upheld up to that race window, consistent with the
// rest of the coordinator's tolerate-partial-writes filesystem model.
func (c *Coordinator) TryAcquire(resource string, ttl time.Duration) (*Lock, error) {
	path := c.lockPath(resource)
	now := time.Now()

	var existing Lock
	if err := readJSON(path, &existing); err == nil {
		if !existing.expired(now) {
			c.observer.OnEvent(context.Background(), observability.Event{
				Type: EventLockConflict, Level: observability.LevelVerbose, Timestamp: now,
				Source: "coordinator.TryAcquire", Data: map[string]any{"resource": resource},
			})
			return nil, ErrLockConflict
		}
	}

	lock := &Lock{
		LockID:     uuid.Must(uuid.NewV7()).String(),
		AcquiredAt: now,
		ExpiresAt:  now.Add(ttl),
		Resource:   resource,
	}
	if err := writeJSONAtomic(path, lock); err != nil {
		return nil, err
	}

	c.observer.OnEvent(context.Background(), observability.Event{
		Type: EventLockAcquire, Level: observability.LevelVerbose, Timestamp: now,
		Source: "coordinator.TryAcquire",
		Data:   map[string]any{"resource": resource, "lock_id": lock.LockID},
	})
	return lock, nil
}

// Release removes the lock file for lock.Resource only if the on-disk
// lock_id still matches lock.LockID (owner-only release). Releasing a lock
// that is not owned by the caller, or that no longer exists, is a no-op
// returning ErrNotOwner so callers can distinguish it from success.
func (c *Coordinator) Release(lock *Lock) error {
	path := c.lockPath(lock.Resource)

	var existing Lock
	if err := readJSON(path, &existing); err != nil {
		return ErrNotOwner
	}
	if existing.LockID != lock.LockID {
		return ErrNotOwner
	}

	if err := removeIfExists(path); err != nil {
		return err
	}
	c.observer.OnEvent(context.Background(), observability.Event{
		Type: EventLockRelease, Level: observability.LevelVerbose, Timestamp: time.Now(),
		Source: "coordinator.Release",
		Data:   map[string]any{"resource": lock.Resource, "lock_id": lock.LockID},
	})
	return nil
}

// CleanupExpiredLocks removes lock files that are expired or fail to parse.
func (c *Coordinator) CleanupExpiredLocks() error {
	names, err := listJSONFiles(c.locksDir())
	if err != nil {
		return err
	}

	now := time.Now()
	removed := 0
	for _, name := range names {
		path := filepath.Join(c.locksDir(), name+".lock")
		var lock Lock
		if err := readJSON(path, &lock); err != nil {
			removeIfExists(path)
			removed++
			continue
		}
		if lock.expired(now) {
			removeIfExists(path)
			removed++
		}
	}

	c.observer.OnEvent(context.Background(), observability.Event{
		Type: EventCleanupLocks, Level: observability.LevelVerbose, Timestamp: now,
		Source: "coordinator.CleanupExpiredLocks", Data: map[string]any{"removed": removed},
	})
	return nil
}
