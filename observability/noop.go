package observability

import "context"

// NoOpObserver discards all events with zero overhead. It is the fallback
// every Deps.observer()-style helper returns when a run is constructed
// without an explicit backend (pool workers, the rate controller, and the
// coordinator all accept a nil Observer and substitute this one), so a
// library caller never has to nil-check before emitting.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(ctx context.Context, event Event) {}

// Name reports the registry key this observer is normally reached under,
// for backends that want to log which sink is silently discarding events.
func (NoOpObserver) Name() string { return "noop" }
