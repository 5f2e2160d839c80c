package coordinator

import "errors"

var (
	// ErrLockConflict is returned (never wrapped) by TryAcquire when the
	// resource is already held by a live lock. Callers treat this as
	// try-again-later, not a failure.
	ErrLockConflict = errors.New("coordinator: lock conflict")

	// ErrNotOwner is returned by Release when the caller's lock_id does not
	// match the on-disk holder.
	ErrNotOwner = errors.New("coordinator: release: not lock owner")

	// ErrNoCandidates is returned by StealWork when no peer currently
	// publishes a stealable entry.
	ErrNoCandidates = errors.New("coordinator: no stealable work available")

	// ErrNotRegistered is returned by operations that require Register to
	// have been called first.
	ErrNotRegistered = errors.New("coordinator: instance not registered")
)
