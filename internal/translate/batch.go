package translate

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
)

const (
	DefaultBatchSize   = 50
	DefaultConcurrency = 3
)

// translates one request's worth of items
type batchFunc func(ctx context.Context, items []TranslationItem) ([]TranslationResult, error)

// batcher gives a provider Translate and TranslateWithConcurrency once it
// supplies the per-request send function.
type batcher struct {
	options Options
	send    batchFunc
}

func (b *batcher) Translate(ctx context.Context, items []TranslationItem) ([]TranslationResult, error) {
	return runBatches(ctx, items, b.options.BatchSize, 1, b.send)
}

func (b *batcher) TranslateWithConcurrency(
	ctx context.Context,
	items []TranslationItem,
	concurrency int,
) ([]TranslationResult, error) {
	return runBatches(ctx, items, b.options.BatchSize, concurrency, b.send)
}

// splits items into consecutive batches of at most size items
func splitBatches(items []TranslationItem, size int) [][]TranslationItem {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var batches [][]TranslationItem
	for chunk := range slices.Chunk(items, size) {
		batches = append(batches, chunk)
	}
	return batches
}

// runBatches sends each batch through fn with up to concurrency workers
// pulling from a shared queue. The first failed batch cancels the rest.
// Results come back sorted by item index.
func runBatches(
	ctx context.Context,
	items []TranslationItem,
	batchSize int,
	concurrency int,
	fn batchFunc,
) ([]TranslationResult, error) {
	if len(items) == 0 {
		return []TranslationResult{}, nil
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	batches := splitBatches(items, batchSize)
	done := make([][]TranslationResult, len(batches))

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	queue := make(chan int)
	var wg sync.WaitGroup
	for range min(concurrency, len(batches)) {
		wg.Go(func() {
			for n := range queue {
				results, err := fn(ctx, batches[n])
				if err == nil {
					err = matchResults(batches[n], results)
				}
				if err != nil {
					cancel(fmt.Errorf("batch %d failed: %w", n, err))
					return
				}
				done[n] = results
			}
		})
	}

enqueue:
	for n := range batches {
		select {
		case <-ctx.Done():
			break enqueue
		case queue <- n:
		}
	}
	close(queue)
	wg.Wait()

	if err := context.Cause(ctx); err != nil {
		return nil, err
	}

	merged := slices.Concat(done...)
	slices.SortFunc(merged, func(a, b TranslationResult) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return merged, nil
}

func matchResults(items []TranslationItem, results []TranslationResult) error {
	if len(results) != len(items) {
		return fmt.Errorf("expected %d results, got %d", len(items), len(results))
	}

	want := make(map[int]bool, len(items))
	for _, item := range items {
		want[item.Index] = true
	}
	for _, r := range results {
		if !want[r.Index] {
			return fmt.Errorf("unexpected or duplicate result index %d", r.Index)
		}
		delete(want, r.Index)
	}
	return nil
}
