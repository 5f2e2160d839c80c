// Package pool is the bounded-concurrency fan-out primitive shared by the
// coordinator and loop subsystems: any time a component needs to run N
// independent units of work with at most K in flight, it calls
// pool.RunWithLimit rather than hand-rolling a goroutine pool.
//
// Typical use:
//
//	result, err := pool.RunWithLimit(ctx, perspectives, 4, runPerspective, pool.Options[Perspective]{})
//	if err != nil {
//		// first-in-order perspective failure, or caller cancellation
//	}
//
// To collect every outcome instead of failing fast, set Settle to
// SettleAllSettled:
//
//	result, _ := pool.RunWithLimit(ctx, items, 4, worker, pool.Options[Item]{
//		Settle: pool.SettleAllSettled,
//	})
//	for _, o := range result.Outcomes {
//		if !o.Fulfilled {
//			log.Printf("item %d failed: %v", o.Index, o.Reason)
//		}
//	}
package pool
