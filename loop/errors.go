package loop

import "errors"

// Error taxonomy, per spec.md §7. Each is a distinct policy branch, not
// merely a distinct message: callers use errors.Is to route behavior.
var (
	// ErrCancelled propagates out of an awaiting operation unmodified;
	// never triggers a retry or state mutation.
	ErrCancelled = errors.New("loop: cancelled")

	// ErrRateLimited is surfaced only once the retry cap is reached;
	// before that, rejections are absorbed by the rate controller.
	ErrRateLimited = errors.New("loop: rate limited")

	// ErrFatalInternal marks an unexpected invariant violation; the run
	// terminates with StopError and still writes its footer.
	ErrFatalInternal = errors.New("loop: fatal internal error")

	// ErrPhaseRetriesExhausted is raised when a UL-mode phase fails to
	// produce a recognizable marker or completion-length output after
	// max_phase_retries attempts.
	ErrPhaseRetriesExhausted = errors.New("loop: phase retries exhausted")
)
