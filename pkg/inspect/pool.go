package inspect

import (
	"context"
	"fmt"
	"sync"
)

// mapBounded runs fn over items with a fixed number of worker goroutines
// and collects results in input order regardless of completion order.
//
// Workers pull task indices from a shared queue; each result is written to
// its input slot, so reassembly is deterministic. The first failure wins:
// it cancels the context passed to outstanding fn invocations and fails the
// whole call, so no partial result slice is ever returned. Cancellation
// errors from siblings of the failed call never mask the original failure.
func mapBounded[T, R any](
	ctx context.Context,
	workers int,
	items []T,
	fn func(ctx context.Context, index int, item T) (R, error),
) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if workers < 1 || workers > len(items) {
		workers = len(items)
	}

	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		failOnce sync.Once
		firstErr error
	)
	fail := func(err error) {
		failOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	tasks := make(chan int)
	results := make([]R, len(items))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				if poolCtx.Err() != nil {
					continue
				}
				r, err := runTask(poolCtx, i, items[i], fn)
				if err != nil {
					fail(err)
					continue
				}
				results[i] = r
			}
		}()
	}

feed:
	for i := range items {
		select {
		case tasks <- i:
		case <-poolCtx.Done():
			break feed
		}
	}
	close(tasks)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// runTask invokes fn for one item, converting a panic into an error so a
// panicking call cannot take the whole process down from a worker goroutine.
func runTask[T, R any](
	ctx context.Context,
	index int,
	item T,
	fn func(ctx context.Context, index int, item T) (R, error),
) (r R, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(ctx, index, item)
}
