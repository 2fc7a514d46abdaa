//
// Listwise is pleased to support the open source community by making listwise-rerank available.
//
// Copyright (C) 2026 Listwise.  All rights reserved.
//
// listwise-rerank is licensed under the Apache License Version 2.0.
//
//

// Package rerank implements a listwise relevance reranker: given a
// free-text query and an ordered candidate list, it asks a language
// model to score every candidate 0-10 in one structured-output pass per
// batch, then filters and orders candidates by score. It is a
// post-processing stage for any first-stage retriever and performs no
// retrieval, indexing, or embedding itself.
//
// Rerank never fails: a scoring failure degrades the affected batch to
// its original order, and any unexpected error degrades the whole call
// to the original input. Candidates are never dropped or duplicated by
// degradation.
package rerank

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	openaimodel "github.com/listwise/rerank/model/openai"
)

// ErrNoScoringClient is returned by New when neither a client, a model,
// nor an OPENAI_API_KEY environment variable is available.
var ErrNoScoringClient = errors.New("rerank: no scoring client resolvable, provide WithClient or WithModel or set OPENAI_API_KEY")

// Reranker scores candidates of type T against a query and reorders
// them by relevance. A Reranker is safe for concurrent use; every
// Rerank call keeps its own state.
type Reranker[T any] struct {
	client             Client
	key                func(T) string
	summary            func(T) string
	modelName          string
	temperature        *float64
	timeout            time.Duration
	relevancyThreshold float64
	batchSize          int
	tinyBatchFraction  float64
	userID             string
	logger             Logger
	pool               *ants.Pool
}

// New creates a Reranker. key derives the short, human-readable
// identifier the model scores each candidate under; it must not be nil.
// Configuration errors and an unresolvable scoring client fail here, so
// a constructed Reranker can always run.
func New[T any](key func(T) string, opts ...Option[T]) (*Reranker[T], error) {
	if key == nil {
		return nil, errors.New("rerank: key extractor must not be nil")
	}

	o := newOptions[T]()
	for _, opt := range opts {
		opt(&o)
	}

	if o.relevancyThreshold < minScore || o.relevancyThreshold > maxScore {
		return nil, fmt.Errorf("rerank: relevancy threshold %v outside [0, 10]", o.relevancyThreshold)
	}
	if o.batchSize < 1 {
		return nil, fmt.Errorf("rerank: batch size %d must be >= 1", o.batchSize)
	}
	if o.tinyBatchFraction < 0 || o.tinyBatchFraction > 1 {
		return nil, fmt.Errorf("rerank: tiny batch fraction %v outside [0, 1]", o.tinyBatchFraction)
	}
	if o.maxConcurrency < 1 {
		return nil, fmt.Errorf("rerank: max concurrency %d must be >= 1", o.maxConcurrency)
	}

	client := o.client
	if client == nil {
		m := o.model
		if m == nil {
			if _, ok := os.LookupEnv("OPENAI_API_KEY"); !ok {
				return nil, ErrNoScoringClient
			}
			m = openaimodel.New(o.modelName)
		}
		client = &modelClient{m: m}
	}

	pool, err := ants.NewPool(o.maxConcurrency)
	if err != nil {
		return nil, fmt.Errorf("rerank: create worker pool: %w", err)
	}

	return &Reranker[T]{
		client:             client,
		key:                key,
		summary:            o.summary,
		modelName:          o.modelName,
		temperature:        o.temperature,
		timeout:            o.timeout,
		relevancyThreshold: o.relevancyThreshold,
		batchSize:          o.batchSize,
		tinyBatchFraction:  o.tinyBatchFraction,
		userID:             o.userID,
		logger:             o.logger,
		pool:               pool,
	}, nil
}

// Close releases the worker pool. The Reranker remains usable after
// Close but scores batches inline without bounded concurrency.
func (r *Reranker[T]) Close() {
	r.pool.Release()
}

// Rerank scores candidates against query and returns them ordered by
// descending relevance, dropping candidates at or below the configured
// threshold. It always returns a sequence drawn from candidates and
// never fails: scoring errors degrade the affected batches (or, for
// unexpected errors, the whole call) to original order, reported
// through the logger as warnings.
func (r *Reranker[T]) Rerank(ctx context.Context, query string, candidates []T, opts ...CallOption) (ranked []T) {
	// Fast paths: nothing to rank, no scoring call.
	if len(candidates) == 0 {
		return []T{}
	}
	if len(candidates) == 1 {
		return []T{candidates[0]}
	}

	callID := uuid.NewString()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warnf("rerank %s: recovered from %v, returning original order", callID, rec)
			ranked = append([]T(nil), candidates...)
		}
	}()

	co := callOptions{userID: r.userID}
	for _, opt := range opts {
		opt(&co)
	}

	prep := make([]prepared[T], len(candidates))
	for i, item := range candidates {
		p := prepared[T]{item: item, index: i, key: r.key(item)}
		if r.summary != nil {
			p.summary = r.summary(item)
		}
		prep[i] = p
	}

	batches := createBatches(prep, r.batchSize, r.tinyBatchFraction)
	return r.scoreBatches(ctx, callID, query, co.userID, batches)
}

// scoreBatch scores a single batch: disambiguate keys, build the
// request, call the client, validate and rank. A non-object payload is
// not an error; the batch keeps its original order.
func (r *Reranker[T]) scoreBatch(
	ctx context.Context,
	callID string,
	query string,
	userID string,
	batchIndex int,
	batch []prepared[T],
) ([]T, error) {
	disambiguated := ensureUniqueKeys(batch)
	schema := buildScoringSchema(disambiguated)
	messages, err := buildScoringMessages(query, disambiguated)
	if err != nil {
		return nil, err
	}

	data, err := r.client.Call(ctx, messages, schema, CallConfig{
		Model:       r.modelName,
		Temperature: r.temperature,
		Timeout:     r.timeout,
		UserID:      userID,
	})
	if err != nil {
		return nil, err
	}

	scores, ok := data.(map[string]any)
	if !ok {
		r.logger.Warnf("rerank %s: batch %d returned non-object payload, keeping original order", callID, batchIndex)
		return batchItems(batch), nil
	}
	return rankAndFilter(disambiguated, scores, r.relevancyThreshold), nil
}
