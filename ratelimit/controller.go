// Package ratelimit implements the adaptive per-(provider, model) rate
// controller: it tracks recent rejections and consecutive successes to
// produce a concurrency cap that reacts quickly to throttling and recovers
// gradually afterward.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/tailored-agentic-units/llmctl/observability"
)

// Controller is the module-owned rate-control state for every (provider,
// model) pair this process has called. Construct one with New and share it
// across every call site that needs to record rejections/successes or read
// a summary.
type Controller struct {
	cfg      Config
	observer observability.Observer

	mu     sync.Mutex
	states map[modelKey]*modelState

	// hardCeiling is a secondary, independent concurrency safety net: even
	// while the adaptive soft limit would allow a call, a burst beyond the
	// configured per-second/per-minute rate is refused outright.
	hardCeiling *catrate.Limiter
}

// New constructs a Controller. observer may be nil (treated as a no-op).
func New(cfg Config, observer observability.Observer) *Controller {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}

	rates := map[time.Duration]int{}
	if cfg.HardCeilingPerSecond > 0 {
		rates[time.Second] = cfg.HardCeilingPerSecond
	}
	if cfg.HardCeilingPerMinute > 0 {
		rates[time.Minute] = cfg.HardCeilingPerMinute
	}

	var hardCeiling *catrate.Limiter
	if len(rates) > 0 {
		hardCeiling = catrate.NewLimiter(rates)
	}

	return &Controller{
		cfg:         cfg,
		observer:    observer,
		states:      make(map[modelKey]*modelState),
		hardCeiling: hardCeiling,
	}
}

func (c *Controller) stateFor(provider, model string) *modelState {
	key := modelKey{Provider: provider, Model: model}

	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.states[key]
	if !ok {
		s = newModelState(c.cfg.OriginalLimit)
		c.states[key] = s
	}
	return s
}

// AllowHardCeiling consults the secondary catrate-backed hard ceiling,
// independent of the adaptive soft limit. When no hard-ceiling rates are
// configured it always allows.
func (c *Controller) AllowHardCeiling(provider, model string) bool {
	if c.hardCeiling == nil {
		return true
	}
	_, ok := c.hardCeiling.Allow(provider + "/" + model)
	return ok
}

// RecordRejection records a rate-limit rejection for (provider, model):
// appends to the rolling rejection window, halves adaptive_limit (floor 1),
// and recomputes should_throttle/predicted_rejection_probability from
// window density.
func (c *Controller) RecordRejection(provider, model, reason string) Summary {
	s := c.stateFor(provider, model)
	now := time.Now()

	s.mu.Lock()
	s.recordRejectionLocked(c.cfg.RejectionWindow, c.cfg.ThrottleDensity, now)
	summary := s.summaryLocked(c.cfg.RejectionWindow, now)
	s.mu.Unlock()

	c.observer.OnEvent(context.Background(), observability.Event{
		Type: EventRejection, Level: observability.LevelWarning, Timestamp: now,
		Source: "ratelimit.RecordRejection",
		Data: map[string]any{
			"provider": provider, "model": model, "reason": reason,
			"adaptive_limit": summary.AdaptiveLimit,
		},
	})
	return summary
}

// RecordSuccess records a successful call for (provider, model), advancing
// the consecutive-success counter and recovering adaptive_limit once the
// recovery threshold is crossed.
func (c *Controller) RecordSuccess(provider, model string) Summary {
	s := c.stateFor(provider, model)
	now := time.Now()

	s.mu.Lock()
	s.recordSuccessLocked(c.cfg.RecoveryThreshold)
	summary := s.summaryLocked(c.cfg.RejectionWindow, now)
	s.mu.Unlock()

	return summary
}

// GetSummary returns the current rate-control summary for (provider, model)
// without mutating it.
func (c *Controller) GetSummary(provider, model string) Summary {
	s := c.stateFor(provider, model)
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked(c.cfg.RejectionWindow, now)
}

// GetPredictiveAnalysis is an alias of GetSummary retained under the name
// the interface contract uses for the forward-looking half of the summary
// (predictive_limit, predicted_rejection_probability).
func (c *Controller) GetPredictiveAnalysis(provider, model string) Summary {
	return c.GetSummary(provider, model)
}

// IsRateLimitError reports whether err indicates a provider rate-limit
// rejection. It is a thin re-export so callers only need to import this
// package's Controller and this one helper.
func (c *Controller) IsRateLimitError(err error) bool {
	return IsRateLimitError(err)
}
