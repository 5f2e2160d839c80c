package coordinator

import (
	"errors"
	"testing"
	"time"
)

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.HeartbeatInterval = time.Hour // disable the background ticker for tests
	c := New(root, cfg, nil)
	return c
}

func TestTryAcquire_MutualExclusion(t *testing.T) {
	a := newTestCoordinator(t)
	b := New(a.root, a.cfg, nil)

	lockA, err := a.TryAcquire("steal:X", 50*time.Millisecond)
	if err != nil {
		t.Fatalf("A TryAcquire: %v", err)
	}

	_, err = b.TryAcquire("steal:X", 50*time.Millisecond)
	if !errors.Is(err, ErrLockConflict) {
		t.Fatalf("expected ErrLockConflict for B, got %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	lockB, err := b.TryAcquire("steal:X", 50*time.Millisecond)
	if err != nil {
		t.Fatalf("B TryAcquire after expiry: %v", err)
	}
	if lockB.LockID == lockA.LockID {
		t.Fatal("B's lock must be a distinct lock_id")
	}
}

func TestLock_RoundTrip(t *testing.T) {
	c := newTestCoordinator(t)
	lock, err := c.TryAcquire("some-resource", time.Minute)
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}

	var reread Lock
	if err := readJSON(c.lockPath("some-resource"), &reread); err != nil {
		t.Fatalf("readJSON: %v", err)
	}
	if reread.LockID != lock.LockID || reread.Resource != lock.Resource {
		t.Fatalf("round-trip mismatch: wrote %+v, read %+v", lock, reread)
	}
	if !reread.AcquiredAt.Equal(lock.AcquiredAt) || !reread.ExpiresAt.Equal(lock.ExpiresAt) {
		t.Fatalf("timestamp round-trip mismatch: wrote %+v, read %+v", lock, reread)
	}
}

func TestRelease_OwnerOnly(t *testing.T) {
	c := newTestCoordinator(t)
	lock, err := c.TryAcquire("r", time.Minute)
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}

	forged := &Lock{LockID: "not-the-owner", Resource: "r"}
	if err := c.Release(forged); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for forged lock_id, got %v", err)
	}

	if err := c.Release(lock); err != nil {
		t.Fatalf("owner Release: %v", err)
	}

	_, err = c.TryAcquire("r", time.Minute)
	if err != nil {
		t.Fatalf("TryAcquire after release should succeed, got %v", err)
	}
}

func TestCleanupExpiredLocks(t *testing.T) {
	c := newTestCoordinator(t)
	if _, err := c.TryAcquire("expires-fast", time.Nanosecond); err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}
	liveLock, err := c.TryAcquire("stays-alive", time.Hour)
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}

	time.Sleep(time.Millisecond)
	if err := c.CleanupExpiredLocks(); err != nil {
		t.Fatalf("CleanupExpiredLocks: %v", err)
	}

	names, err := listJSONFiles(c.locksDir())
	if err != nil {
		t.Fatalf("listJSONFiles: %v", err)
	}
	if len(names) != 1 || names[0] != escapeResource("stays-alive") {
		t.Fatalf("expected only the live lock to remain, got %v", names)
	}
	_ = liveLock
}
