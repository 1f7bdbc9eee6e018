// Package concurrency provides helpers for fanning work out over goroutines while bounding how
// many of them are in flight at once.
package concurrency

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConcurrency is returned by Map when the concurrency bound is lower than 1.
var ErrInvalidConcurrency = errors.New("concurrency must be at least 1")

// MapFunc transforms a single item. index is the position of item in the slice passed to Map,
// not its position within the batch it runs in.
type MapFunc[A, B any] func(ctx context.Context, item A, index int) (B, error)

// Map applies fn to every item, running at most concurrency invocations at a time, and returns
// the results in the same order as items.
//
// Items are processed in consecutive batches of up to concurrency elements. Every item of a batch
// runs in its own goroutine and the next batch only starts once the whole batch has succeeded.
//
// If any invocation fails, Map returns that error as is and starts no further batches. It does not
// wait for the remaining invocations of the failed batch: their context is cancelled and whatever
// they return is discarded. No partial results are returned.
//
// A ctx that is done before a batch starts stops Map with ctx.Err(). Beyond that, Map relies on fn
// to honour the context.
func Map[A, B any](ctx context.Context, concurrency int, items []A, fn MapFunc[A, B]) ([]B, error) {
	if concurrency < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidConcurrency, concurrency)
	}

	results := make([]B, len(items))

	for start := 0; start < len(items); start += concurrency {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+concurrency, len(items))
		if err := mapBatch(ctx, items[start:end], start, results[start:end], fn); err != nil {
			return nil, err
		}
	}

	return results, nil
}

// outcome is what a single invocation reports back to the batch driver.
type outcome[B any] struct {
	pos   int
	value B
	err   error
}

// mapBatch runs fn over batch concurrently and writes the results into out, which has the same
// length as batch. offset is the index of the first batch element in the full input.
func mapBatch[A, B any](
	ctx context.Context, batch []A, offset int, out []B, fn MapFunc[A, B],
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so that invocations left running after a failure never block on send.
	outcomes := make(chan outcome[B], len(batch))

	for i, item := range batch {
		go func() {
			v, err := fn(ctx, item, offset+i)
			outcomes <- outcome[B]{pos: i, value: v, err: err}
		}()
	}

	for range batch {
		o := <-outcomes
		if o.err != nil {
			return o.err
		}

		out[o.pos] = o.value
	}

	return nil
}

// Sleep pauses for d or until ctx is done, whichever comes first. It returns ctx.Err() when the
// context ends the wait.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
