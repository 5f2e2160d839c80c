package loop

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/tailored-agentic-units/llmctl/hostcap"
	"github.com/tailored-agentic-units/llmctl/ratelimit"
)

// isRetryableStatus reports whether a provider status code warrants a
// retry: rate-limited (429), any 5xx, or the sentinel 0 used by callers
// to signal a timeout with no HTTP-equivalent code.
func isRetryableStatus(status int) bool {
	return status == 429 || status == 0 || status >= 500
}

// callWithRetry wraps a single hostcap.CallModel invocation with the
// retry policy described in spec.md §4.4 step 3 and §7's error taxonomy:
// exponential backoff with jitter, a capped attempt count, and a capped
// total wait; each rejection is recorded with the rate controller.
func callWithRetry(ctx context.Context, call hostcap.CallModel, req hostcap.CallRequest, cfg Config, ctrl *ratelimit.Controller) (hostcap.CallResponse, error) {
	delay := cfg.InitialDelayMs
	var totalWaited int
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return hostcap.CallResponse{}, errors.Join(ErrCancelled, err)
		}

		resp, err := call(ctx, req)
		if err == nil && !isRetryableStatus(resp.StatusCode) {
			if ctrl != nil {
				ctrl.RecordSuccess(req.Provider, req.ModelID)
			}
			return resp, nil
		}

		if ctx.Err() != nil {
			return hostcap.CallResponse{}, errors.Join(ErrCancelled, ctx.Err())
		}

		lastErr = err
		if err == nil {
			lastErr = errRetryableStatus(resp.StatusCode)
		}

		if resp.StatusCode == 429 && ctrl != nil {
			ctrl.RecordRejection(req.Provider, req.ModelID, "429")
		}

		if attempt == cfg.MaxRetries {
			break
		}

		wait := applyJitter(delay, cfg.Jitter)
		if totalWaited+wait > cfg.MaxRateLimitWaitMs {
			wait = cfg.MaxRateLimitWaitMs - totalWaited
		}
		if wait < 0 {
			break
		}
		if err := sleepWithCancel(ctx, time.Duration(wait)*time.Millisecond); err != nil {
			return hostcap.CallResponse{}, errors.Join(ErrCancelled, err)
		}
		totalWaited += wait

		delay = int(float64(delay) * cfg.BackoffMultiplier)
		if delay > cfg.MaxDelayMs {
			delay = cfg.MaxDelayMs
		}
	}

	if lastErr != nil {
		return hostcap.CallResponse{}, errors.Join(ErrRateLimited, lastErr)
	}
	return hostcap.CallResponse{}, ErrRateLimited
}

func errRetryableStatus(status int) error {
	return &retryableStatusError{status: status}
}

type retryableStatusError struct{ status int }

func (e *retryableStatusError) Error() string {
	return "loop: retryable status " + strconv.Itoa(e.status)
}

// applyJitter perturbs a millisecond delay per the configured strategy.
func applyJitter(delayMs int, j Jitter) int {
	switch j {
	case JitterFull:
		return rand.Intn(delayMs + 1)
	case JitterPartial:
		half := delayMs / 2
		return half + rand.Intn(delayMs-half+1)
	default:
		return delayMs
	}
}

// sleepWithCancel is the cancel-aware sleep every suspending operation in
// §5 must use.
func sleepWithCancel(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
