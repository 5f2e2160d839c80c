// Package pool implements a bounded, cancellation-aware, priority-capable
// fan-out executor: RunWithLimit runs a worker over a sequence of items with
// at most limit tasks in flight at any time.
//
// The core loop is grounded on the teacher's ProcessParallel
// (orchestrate/workflows/parallel.go in the reference pack): a shared atomic
// cursor over a precomputed dispatch order, one goroutine per worker slot,
// and an indexed-result collection step that restores input order regardless
// of completion order. This package generalizes that shape with priority
// ordering and a child-cancellation handle that is linked to, but distinct
// from, the caller's context.
package pool

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tailored-agentic-units/llmctl/observability"
)

// Worker processes a single item and returns a result or an error.
type Worker[T, R any] func(ctx context.Context, item T) (R, error)

// SettleMode selects how RunWithLimit reports partial failure.
type SettleMode int

const (
	// SettleThrow returns results aligned with input order and raises the
	// first-in-input-order worker error, if any. This is the default.
	SettleThrow SettleMode = iota
	// SettleAllSettled returns one Outcome per input, never raising a worker
	// error itself.
	SettleAllSettled
)

// Outcome is one input's result in SettleAllSettled mode.
type Outcome[R any] struct {
	Index     int
	Fulfilled bool
	Value     R
	Reason    error
}

// Options configures a single RunWithLimit call.
type Options[T any] struct {
	// AbortOnError cancels the pool's internal context on the first worker
	// error, preventing new items from being pulled. Already-running workers
	// are allowed to finish. Defaults to true.
	AbortOnError *bool

	// Settle selects the failure-reporting mode. Defaults to SettleThrow.
	Settle SettleMode

	// UsePriority, when true together with ItemWeights and GetItemID,
	// dispatches items in descending weight order instead of insertion
	// order. Items missing from ItemWeights are treated as weight 0.
	UsePriority bool
	ItemWeights map[string]float64
	GetItemID   func(item T) string

	// Observer receives lifecycle events. Defaults to observability.NoOpObserver{}.
	Observer observability.Observer
}

func (o Options[T]) abortOnError() bool {
	if o.AbortOnError == nil {
		return true
	}
	return *o.AbortOnError
}

func (o Options[T]) observer() observability.Observer {
	if o.Observer == nil {
		return observability.NoOpObserver{}
	}
	return o.Observer
}

func (o Options[T]) usePriority() bool {
	return o.UsePriority && o.ItemWeights != nil && o.GetItemID != nil
}

// PoolResult holds the output of RunWithLimit. Exactly one of Values and
// Outcomes is populated, per the SettleMode requested.
type PoolResult[R any] struct {
	Values   []R
	Outcomes []Outcome[R]
}

// RunWithLimit executes worker over items with at most limit tasks running
// concurrently.
//
// limit is normalized to clamp(1, len(items), limit): zero or negative
// becomes 1, and a limit greater than len(items) is reduced to len(items).
// Results are always returned aligned to the original input order,
// regardless of completion order or dispatch order.
func RunWithLimit[T, R any](ctx context.Context, items []T, limit int, worker Worker[T, R], opts Options[T]) (PoolResult[R], error) {
	n := len(items)
	obs := opts.observer()

	obs.OnEvent(ctx, observability.Event{
		Type: EventPoolStart, Level: observability.LevelInfo, Timestamp: time.Now(),
		Source: "pool.RunWithLimit",
		Data:   map[string]any{"item_count": n, "limit": limit, "settle_mode": int(opts.Settle)},
	})

	if n == 0 {
		obs.OnEvent(ctx, observability.Event{
			Type: EventPoolComplete, Level: observability.LevelInfo, Timestamp: time.Now(),
			Source: "pool.RunWithLimit", Data: map[string]any{"item_count": 0},
		})
		if opts.Settle == SettleAllSettled {
			return PoolResult[R]{Outcomes: []Outcome[R]{}}, nil
		}
		return PoolResult[R]{Values: []R{}}, nil
	}

	limit = clampLimit(limit, n)
	order := dispatchOrder(items, opts)

	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	values := make([]R, n)
	outcomes := make([]Outcome[R], n)
	errs := make([]error, n)

	var cursor atomic.Int64
	var wg sync.WaitGroup
	abortOnError := opts.abortOnError()

	for w := 0; w < limit; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case <-poolCtx.Done():
					return
				default:
				}

				pos := cursor.Add(1) - 1
				if int(pos) >= len(order) {
					return
				}
				idx := order[pos]

				obs.OnEvent(poolCtx, observability.Event{
					Type: EventTaskStart, Level: observability.LevelVerbose, Timestamp: time.Now(),
					Source: "pool.RunWithLimit",
					Data:   map[string]any{"worker_id": workerID, "item_index": idx},
				})

				val, err := worker(poolCtx, items[idx])

				obs.OnEvent(poolCtx, observability.Event{
					Type: EventTaskComplete, Level: observability.LevelVerbose, Timestamp: time.Now(),
					Source: "pool.RunWithLimit",
					Data:   map[string]any{"worker_id": workerID, "item_index": idx, "error": err != nil},
				})

				if err != nil {
					errs[idx] = err
					outcomes[idx] = Outcome[R]{Index: idx, Fulfilled: false, Reason: err}
					if abortOnError {
						cancel()
					}
				} else {
					values[idx] = val
					outcomes[idx] = Outcome[R]{Index: idx, Fulfilled: true, Value: val}
				}

				select {
				case <-poolCtx.Done():
					return
				default:
				}
			}
		}(w)
	}

	wg.Wait()

	var firstErr error
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			firstErr = errs[i]
			break
		}
	}

	obs.OnEvent(ctx, observability.Event{
		Type: EventPoolComplete, Level: observability.LevelInfo, Timestamp: time.Now(),
		Source: "pool.RunWithLimit",
		Data:   map[string]any{"item_count": n, "error": firstErr != nil},
	})

	if opts.Settle == SettleAllSettled {
		return PoolResult[R]{Outcomes: outcomes}, nil
	}

	if firstErr != nil {
		return PoolResult[R]{Values: values}, fmt.Errorf("%w: %w", ErrWorker, firstErr)
	}

	// No worker error was recorded. If the pool's context is nonetheless
	// done, the only possible cause (since our own cancel() call always
	// follows a recorded error) is the caller's context — propagate it
	// unmodified, per the cancellation-is-not-an-error-kind contract.
	if err := poolCtx.Err(); err != nil {
		return PoolResult[R]{Values: values}, err
	}

	return PoolResult[R]{Values: values}, nil
}

func clampLimit(limit, n int) int {
	if limit < 1 {
		return 1
	}
	if limit > n {
		return n
	}
	return limit
}

func dispatchOrder[T any](items []T, opts Options[T]) []int {
	order := make([]int, len(items))
	for i := range items {
		order[i] = i
	}

	if !opts.usePriority() {
		return order
	}

	weight := func(idx int) float64 {
		id := opts.GetItemID(items[idx])
		return opts.ItemWeights[id]
	}

	sort.SliceStable(order, func(i, j int) bool {
		return weight(order[i]) > weight(order[j])
	})

	return order
}
