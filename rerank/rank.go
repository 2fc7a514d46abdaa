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
	"encoding/json"
	"math"
	"sort"
)

// Score bounds for candidate relevance.
const (
	minScore = 0.0
	maxScore = 10.0
)

// clampScore normalizes a raw score from the decoded payload. Missing,
// non-numeric, and NaN values score 0 ("not relevant"); numeric values
// are clamped into [0, 10], so +Inf becomes 10 and -Inf becomes 0.
func clampScore(raw any) float64 {
	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case int:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return minScore
		}
		v = f
	default:
		return minScore
	}
	if math.IsNaN(v) {
		return minScore
	}
	if v < minScore {
		return minScore
	}
	if v > maxScore {
		return maxScore
	}
	return v
}

// rankAndFilter keeps candidates whose clamped score strictly exceeds
// threshold, orders them by descending score with ascending original
// index as the tie-break, and returns the underlying items.
func rankAndFilter[T any](batch []prepared[T], scores map[string]any, threshold float64) []T {
	type scored struct {
		item  T
		index int
		score float64
	}
	kept := make([]scored, 0, len(batch))
	for _, c := range batch {
		s := clampScore(scores[c.key])
		if s > threshold {
			kept = append(kept, scored{item: c.item, index: c.index, score: s})
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		return kept[i].index < kept[j].index
	})
	out := make([]T, len(kept))
	for i, s := range kept {
		out[i] = s.item
	}
	return out
}
