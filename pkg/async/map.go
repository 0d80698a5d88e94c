package async

import (
	"context"
	"sync"
	"time"

	"github.com/platinummonkey/switchyard/pkg/observability"
)

// Result is the outcome of one Map call
type Result[R any] struct {
	Value R
	Err   error
}

// Map calls fn for every item with at most workers calls in flight and
// returns the results in input order. A timeout of zero leaves each call
// bounded only by ctx. Items not started before ctx is done get ctx.Err().
func Map[T, R any](ctx context.Context, items []T, workers int, timeout time.Duration,
	fn func(context.Context, T) (R, error)) []Result[R] {

	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results
	}
	if workers <= 0 || workers > len(items) {
		workers = len(items)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				results[idx] = call(ctx, timeout, items[idx], fn)
			}
		}()
	}

feed:
	for i := range items {
		select {
		case indexes <- i:
		case <-ctx.Done():
			for j := i; j < len(items); j++ {
				results[j].Err = ctx.Err()
			}
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	return results
}

func call[T, R any](ctx context.Context, timeout time.Duration, item T,
	fn func(context.Context, T) (R, error)) (result Result[R]) {

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if perr := observability.MustRecover(recover()); perr != nil {
			result = Result[R]{Err: perr}
		}
	}()

	value, err := fn(ctx, item)
	return Result[R]{Value: value, Err: err}
}
