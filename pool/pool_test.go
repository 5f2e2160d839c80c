package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunWithLimit_EmptyInput(t *testing.T) {
	called := false
	result, err := RunWithLimit(context.Background(), []int{}, 4, func(ctx context.Context, item int) (int, error) {
		called = true
		return item, nil
	}, Options[int]{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatal("worker should never be invoked for empty input")
	}
	if len(result.Values) != 0 {
		t.Fatalf("expected empty values, got %v", result.Values)
	}
}

func TestClampLimit(t *testing.T) {
	cases := []struct {
		limit, n, want int
	}{
		{0, 5, 1},
		{-3, 5, 1},
		{1, 5, 1},
		{5, 5, 5},
		{100, 5, 5},
	}
	for _, c := range cases {
		if got := clampLimit(c.limit, c.n); got != c.want {
			t.Errorf("clampLimit(%d, %d) = %d, want %d", c.limit, c.n, got, c.want)
		}
	}
}

func TestRunWithLimit_PreservesInputOrder(t *testing.T) {
	items := []int{10, 20, 30, 40, 50}
	result, err := RunWithLimit(context.Background(), items, 3, func(ctx context.Context, item int) (int, error) {
		time.Sleep(time.Duration(item) * time.Microsecond)
		return item * 2, nil
	}, Options[int]{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{20, 40, 60, 80, 100}
	if fmt.Sprint(result.Values) != fmt.Sprint(want) {
		t.Fatalf("got %v, want %v", result.Values, want)
	}
}

func TestRunWithLimit_PriorityOrdering(t *testing.T) {
	type item struct {
		id     string
		weight float64
	}
	items := []item{{"a", 0.5}, {"b", 1.2}, {"c", 1.0}}
	weights := map[string]float64{"a": 0.5, "b": 1.2, "c": 1.0}

	var mu sync.Mutex
	var dispatchOrder []string

	_, err := RunWithLimit(context.Background(), items, 1, func(ctx context.Context, it item) (struct{}, error) {
		mu.Lock()
		dispatchOrder = append(dispatchOrder, it.id)
		mu.Unlock()
		return struct{}{}, nil
	}, Options[item]{
		UsePriority: true,
		ItemWeights: weights,
		GetItemID:   func(it item) string { return it.id },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"b", "c", "a"}
	if fmt.Sprint(dispatchOrder) != fmt.Sprint(want) {
		t.Fatalf("dispatch order = %v, want %v", dispatchOrder, want)
	}
}

func TestRunWithLimit_ThrowMode_FirstInOrderError(t *testing.T) {
	errB := errors.New("b failed")
	errD := errors.New("d failed")
	items := []string{"a", "b", "c", "d"}

	var wg sync.WaitGroup
	wg.Add(len(items))

	_, err := RunWithLimit(context.Background(), items, len(items), func(ctx context.Context, item string) (string, error) {
		wg.Done()
		wg.Wait() // force all tasks to be in flight before any returns, so completion order can't be input order
		switch item {
		case "b":
			return "", errB
		case "d":
			return "", errD
		default:
			return item, nil
		}
	}, Options[string]{})

	if !errors.Is(err, errB) {
		t.Fatalf("expected first-in-order error (b), got %v", err)
	}
	if errors.Is(err, errD) {
		t.Fatal("later error (d) must not be the reported error")
	}
}

func TestRunWithLimit_AllSettled(t *testing.T) {
	errBoom := errors.New("boom")
	items := []int{1, 2, 3}

	result, err := RunWithLimit(context.Background(), items, 3, func(ctx context.Context, item int) (int, error) {
		if item == 2 {
			return 0, errBoom
		}
		return item * 10, nil
	}, Options[int]{Settle: SettleAllSettled})

	if err != nil {
		t.Fatalf("SettleAllSettled must never itself raise a worker error, got %v", err)
	}
	if len(result.Outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(result.Outcomes))
	}
	if !result.Outcomes[0].Fulfilled || result.Outcomes[0].Value != 10 {
		t.Fatalf("outcome 0 = %+v", result.Outcomes[0])
	}
	if result.Outcomes[1].Fulfilled || !errors.Is(result.Outcomes[1].Reason, errBoom) {
		t.Fatalf("outcome 1 = %+v", result.Outcomes[1])
	}
	if !result.Outcomes[2].Fulfilled || result.Outcomes[2].Value != 30 {
		t.Fatalf("outcome 2 = %+v", result.Outcomes[2])
	}
}

func TestRunWithLimit_AbortOnErrorStopsNewDispatch(t *testing.T) {
	var started atomic.Int64
	items := make([]int, 20)
	for i := range items {
		items[i] = i
	}

	_, err := RunWithLimit(context.Background(), items, 1, func(ctx context.Context, item int) (int, error) {
		started.Add(1)
		if item == 0 {
			return 0, errors.New("stop here")
		}
		return item, nil
	}, Options[int]{})

	if err == nil {
		t.Fatal("expected an error")
	}
	// With limit=1 dispatch is strictly sequential, so only the first item
	// should ever run before the pool aborts.
	if got := started.Load(); got != 1 {
		t.Fatalf("expected exactly 1 task started, got %d", got)
	}
}

func TestRunWithLimit_CallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	items := []int{1, 2, 3, 4, 5}

	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := RunWithLimit(ctx, items, 2, func(ctx context.Context, item int) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}, Options[int]{})

	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled to propagate unmodified, got %v", err)
	}
}

func TestRunWithLimit_CancellationMidPool(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	var completed atomic.Int64

	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	result, err := RunWithLimit(ctx, items, 4, func(ctx context.Context, item int) (int, error) {
		select {
		case <-time.After(2 * time.Millisecond):
			completed.Add(1)
			return item, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}, Options[int]{})

	if err == nil {
		t.Fatal("expected cancellation to surface")
	}
	if int(completed.Load()) > len(items) {
		t.Fatalf("completed more tasks than exist: %d", completed.Load())
	}
	if len(result.Values) != len(items) {
		t.Fatalf("expected values slice sized to input even on cancellation, got %d", len(result.Values))
	}
}
