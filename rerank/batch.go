//
// Listwise is pleased to support the open source community by making listwise-rerank available.
//
// Copyright (C) 2026 Listwise.  All rights reserved.
//
// listwise-rerank is licensed under the Apache License Version 2.0.
//
//

package rerank

import (
	"context"
	"math"
	"sync"
)

// sliceIntoFixedBatches splits items into consecutive chunks of length
// size; the last chunk may be shorter. size must be >= 1.
func sliceIntoFixedBatches[E any](items []E, size int) [][]E {
	if size < 1 {
		panic("rerank: batch size must be >= 1")
	}
	batches := make([][]E, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end])
	}
	return batches
}

// mergeTinyFinalBatch folds an undersized trailing batch into its
// predecessor. At most one merge happens; earlier batches are never
// inspected.
func mergeTinyFinalBatch[E any](batches [][]E, tinyThreshold int) [][]E {
	if len(batches) < 2 {
		return batches
	}
	last := batches[len(batches)-1]
	if len(last) == 0 || len(last) > tinyThreshold {
		return batches
	}
	merged := append(append([]E(nil), batches[len(batches)-2]...), last...)
	out := append([][]E(nil), batches[:len(batches)-2]...)
	return append(out, merged)
}

// createBatches partitions items into batches of at most size elements,
// merging a trailing batch of at most ceil(tinyFraction*size) elements
// into its predecessor.
func createBatches[E any](items []E, size int, tinyFraction float64) [][]E {
	tinyThreshold := int(math.Ceil(tinyFraction * float64(size)))
	return mergeTinyFinalBatch(sliceIntoFixedBatches(items, size), tinyThreshold)
}

// scoreBatches scores every batch concurrently and concatenates the
// outcomes in batch order. A failing batch contributes its own items in
// original order; sibling batches are unaffected.
func (r *Reranker[T]) scoreBatches(
	ctx context.Context,
	callID string,
	query string,
	userID string,
	batches [][]prepared[T],
) []T {
	results := make([][]T, len(batches))
	var wg sync.WaitGroup

	for i, batch := range batches {
		i, batch := i, batch
		wg.Add(1)
		task := func() {
			defer wg.Done()
			// Recover so a panic inside one batch cannot take down the
			// process or its sibling batches.
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Warnf("rerank %s: batch %d panicked, keeping original order: %v", callID, i, rec)
					results[i] = batchItems(batch)
				}
			}()
			ranked, err := r.scoreBatch(ctx, callID, query, userID, i, batch)
			if err != nil {
				r.logger.Warnf("rerank %s: batch %d scoring failed, keeping original order: %v", callID, i, err)
				results[i] = batchItems(batch)
				return
			}
			results[i] = ranked
		}
		if err := r.pool.Submit(task); err != nil {
			// Pool unavailable (e.g. released); run inline.
			task()
		}
	}
	wg.Wait()

	var total int
	for _, res := range results {
		total += len(res)
	}
	out := make([]T, 0, total)
	for _, res := range results {
		out = append(out, res...)
	}
	return out
}

// batchItems unwraps a batch back into the caller-owned items in their
// original order.
func batchItems[T any](batch []prepared[T]) []T {
	items := make([]T, len(batch))
	for i, c := range batch {
		items[i] = c.item
	}
	return items
}
