//
// Listwise is pleased to support the open source community by making listwise-rerank available.
//
// Copyright (C) 2026 Listwise.  All rights reserved.
//
// listwise-rerank is licensed under the Apache License Version 2.0.
//
//

package rerank

import "fmt"

// prepared pairs a caller-owned candidate with its scoring identity.
// index is the candidate's position in the original input and is the
// sole tie-break for ordering.
type prepared[T any] struct {
	item    T
	index   int
	key     string
	summary string
}

// ensureUniqueKeys returns a copy of batch whose keys are unique within
// the batch, so they can serve as schema property names. The first
// occurrence of a base key keeps it; later occurrences are suffixed with
// the candidate's original index, which keeps the rename stable no
// matter how the input was batched. Disambiguation is batch-local: the
// same base key may repeat across batches.
func ensureUniqueKeys[T any](batch []prepared[T]) []prepared[T] {
	out := make([]prepared[T], len(batch))
	seen := make(map[string]int, len(batch))
	for i, c := range batch {
		seen[c.key]++
		if seen[c.key] > 1 {
			c.key = fmt.Sprintf("%s (%d)", c.key, c.index)
		}
		out[i] = c
	}
	return out
}
