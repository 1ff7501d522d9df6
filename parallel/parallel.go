// Package parallel provides a bounded fan-out helper for independent
// upstream calls where partial success is acceptable.
package parallel

import (
	"context"
	"sync"
)

// MapPartial runs fn over at most limit items concurrently and returns the
// successful outputs in input order. Per-item failures do not abort the
// batch; the returned error slice is aligned with the (capped) input so
// callers can log what failed. It waits for every call to settle before
// returning, regardless of completion order.
//
// A limit <= 0 means no cap.
func MapPartial[In, Out any](ctx context.Context, items []In, limit int, fn func(context.Context, In) (Out, error)) ([]Out, []error) {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	outs := make([]Out, len(items))
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(idx int, in In) {
			defer wg.Done()
			outs[idx], errs[idx] = fn(ctx, in)
		}(i, item)
	}
	wg.Wait()

	// Re-assemble by index so output order matches input order.
	results := make([]Out, 0, len(items))
	for i := range items {
		if errs[i] == nil {
			results = append(results, outs[i])
		}
	}
	return results, errs
}
