package observability

import (
	"context"
	"fmt"
	"os"
)

// Namer is implemented by observers that can report their own registry
// name, used here to make the stderr fallback below identify which
// backend panicked instead of just "an observer".
type Namer interface {
	Name() string
}

// MultiObserver fans out events to multiple observers.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver creates a MultiObserver that forwards events to all
// non-nil observers.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	filtered := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		if obs != nil {
			filtered = append(filtered, obs)
		}
	}
	return &MultiObserver{observers: filtered}
}

// OnEvent forwards event to every fanned-out observer. Each delivery is
// isolated with recover so a misbehaving sink (e.g. a zerolog destination
// whose underlying writer has gone away mid-run) can't take down an
// unattended coordinator run; the fan-out continues with the remaining
// observers and the panic is swallowed rather than re-emitted, since an
// observer that panics on one event is liable to panic on the synthetic
// one too.
func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		deliver(ctx, obs, event)
	}
}

func deliver(ctx context.Context, obs Observer, event Event) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "observability: %s observer panicked on %s: %v\n", observerName(obs), event.Type, r)
		}
	}()
	obs.OnEvent(ctx, event)
}

func observerName(obs Observer) string {
	if n, ok := obs.(Namer); ok {
		return n.Name()
	}
	return "unnamed"
}

// Name identifies this observer in the registry.
func (m *MultiObserver) Name() string { return "multi" }
