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
	"errors"
	"math"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listwise/rerank/model"
)

// clientFunc adapts a function into a Client.
type clientFunc func(ctx context.Context, messages []model.Message, schema *model.JSONSchemaConfig, cfg CallConfig) (any, error)

func (f clientFunc) Call(ctx context.Context, messages []model.Message, schema *model.JSONSchemaConfig, cfg CallConfig) (any, error) {
	return f(ctx, messages, schema, cfg)
}

// requestedKeys reads the candidate keys out of the built schema.
func requestedKeys(schema *model.JSONSchemaConfig) []string {
	keys, _ := schema.Schema["required"].([]string)
	return keys
}

// scoreByKey builds a deterministic client that scores every requested
// key with the given function and counts its calls.
func scoreByKey(calls *atomic.Int32, score func(key string) any) Client {
	return clientFunc(func(_ context.Context, _ []model.Message, schema *model.JSONSchemaConfig, _ CallConfig) (any, error) {
		if calls != nil {
			calls.Add(1)
		}
		payload := map[string]any{}
		for _, key := range requestedKeys(schema) {
			payload[key] = score(key)
		}
		return payload, nil
	})
}

func identity(s string) string { return s }

func newTestReranker(t *testing.T, client Client, opts ...Option[string]) *Reranker[string] {
	t.Helper()
	opts = append([]Option[string]{WithClient[string](client), WithLogger[string](testLogger{t})}, opts...)
	r, err := New(identity, opts...)
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

// testLogger routes engine warnings into the test log.
type testLogger struct{ t *testing.T }

func (l testLogger) Warnf(format string, args ...any) {
	l.t.Logf("WARN: "+format, args...)
}

func TestNewValidation(t *testing.T) {
	client := scoreByKey(nil, func(string) any { return 5.0 })

	_, err := New[string](nil, WithClient[string](client))
	assert.Error(t, err)

	_, err = New(identity, WithClient[string](client), WithRelevancyThreshold[string](10.5))
	assert.Error(t, err)

	_, err = New(identity, WithClient[string](client), WithRelevancyThreshold[string](-1))
	assert.Error(t, err)

	_, err = New(identity, WithClient[string](client), WithBatchSize[string](0))
	assert.Error(t, err)

	_, err = New(identity, WithClient[string](client), WithTinyBatchFraction[string](1.5))
	assert.Error(t, err)

	_, err = New(identity, WithClient[string](client), WithMaxConcurrency[string](0))
	assert.Error(t, err)
}

func TestNewRequiresResolvableClient(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	os.Unsetenv("OPENAI_API_KEY")

	_, err := New(identity)
	assert.ErrorIs(t, err, ErrNoScoringClient)
}

func TestNewResolvesClientFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	r, err := New(identity)
	require.NoError(t, err)
	r.Close()
}

func TestRerankEmptyInput(t *testing.T) {
	var calls atomic.Int32
	r := newTestReranker(t, scoreByKey(&calls, func(string) any { return 5.0 }))

	got := r.Rerank(context.Background(), "q", []string{})
	assert.Empty(t, got)
	assert.Equal(t, int32(0), calls.Load())
}

func TestRerankSingleCandidate(t *testing.T) {
	var calls atomic.Int32
	r := newTestReranker(t, scoreByKey(&calls, func(string) any { return 5.0 }))

	got := r.Rerank(context.Background(), "q", []string{"only"})
	assert.Equal(t, []string{"only"}, got)
	assert.Equal(t, int32(0), calls.Load())
}

func TestRerankScoresAndFilters(t *testing.T) {
	scores := map[string]any{"A": 10.0, "B": 6.0, "C": 0.0}
	r := newTestReranker(t, scoreByKey(nil, func(key string) any { return scores[key] }))

	got := r.Rerank(context.Background(), "q", []string{"C", "B", "A"})
	assert.Equal(t, []string{"A", "B"}, got)
}

func TestRerankDuplicateKeysKeepInputOrder(t *testing.T) {
	type doc struct {
		id    int
		title string
	}
	client := scoreByKey(nil, func(string) any { return 5.0 })
	r, err := New(
		func(d doc) string { return d.title },
		WithClient[doc](client),
	)
	require.NoError(t, err)
	defer r.Close()

	docs := []doc{{id: 0, title: "Same"}, {id: 1, title: "Same"}}
	got := r.Rerank(context.Background(), "q", docs)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].id)
	assert.Equal(t, 1, got[1].id)
}

func TestRerankClampsScores(t *testing.T) {
	scores := map[string]any{"A": -3.0, "B": 11.0, "C": 9.6, "D": math.Inf(1)}
	r := newTestReranker(t, scoreByKey(nil, func(key string) any { return scores[key] }))

	got := r.Rerank(context.Background(), "q", []string{"A", "B", "C", "D"})
	assert.Equal(t, []string{"B", "D", "C"}, got)
}

func TestRerankBatchFailureIsIsolated(t *testing.T) {
	// Three batches of two; the middle one fails.
	failing := clientFunc(func(_ context.Context, _ []model.Message, schema *model.JSONSchemaConfig, _ CallConfig) (any, error) {
		keys := requestedKeys(schema)
		for _, key := range keys {
			if strings.HasPrefix(key, "mid") {
				return nil, errors.New("model unavailable")
			}
		}
		payload := map[string]any{}
		for i, key := range keys {
			payload[key] = float64(i + 1) // ascending, so ranking reverses the batch
		}
		return payload, nil
	})
	r := newTestReranker(t, failing,
		WithBatchSize[string](2),
		WithTinyBatchFraction[string](0),
	)

	in := []string{"a1", "a2", "mid1", "mid2", "c1", "c2"}
	got := r.Rerank(context.Background(), "q", in)

	require.Len(t, got, 6)
	// Scored batches are reversed by their ascending scores; the failed
	// batch keeps its original slice order.
	assert.Equal(t, []string{"a2", "a1"}, got[0:2])
	assert.Equal(t, []string{"mid1", "mid2"}, got[2:4])
	assert.Equal(t, []string{"c2", "c1"}, got[4:6])
}

func TestRerankNonObjectPayloadFallsBack(t *testing.T) {
	r := newTestReranker(t, clientFunc(func(context.Context, []model.Message, *model.JSONSchemaConfig, CallConfig) (any, error) {
		return []any{"not", "an", "object"}, nil
	}))

	in := []string{"x", "y", "z"}
	got := r.Rerank(context.Background(), "q", in)
	assert.Equal(t, in, got)
}

func TestRerankIdempotent(t *testing.T) {
	scores := map[string]any{"a": 3.0, "b": 9.0, "c": 6.0, "d": 9.0}
	r := newTestReranker(t, scoreByKey(nil, func(key string) any { return scores[key] }),
		WithBatchSize[string](2),
		WithTinyBatchFraction[string](0),
	)

	in := []string{"a", "b", "c", "d"}
	first := r.Rerank(context.Background(), "q", in)
	second := r.Rerank(context.Background(), "q", in)
	assert.Equal(t, first, second)
}

func TestRerankMergeOrderIsDeterministic(t *testing.T) {
	// Later batches answer faster than earlier ones; the merged output
	// must still follow batch order, which ties back to input order.
	r := newTestReranker(t, clientFunc(func(_ context.Context, _ []model.Message, schema *model.JSONSchemaConfig, _ CallConfig) (any, error) {
		keys := requestedKeys(schema)
		if len(keys) > 0 && keys[0] == "a" {
			time.Sleep(30 * time.Millisecond)
		}
		payload := map[string]any{}
		for _, key := range keys {
			payload[key] = 5.0
		}
		return payload, nil
	}),
		WithBatchSize[string](2),
		WithTinyBatchFraction[string](0),
	)

	in := []string{"a", "b", "c", "d", "e", "f"}
	got := r.Rerank(context.Background(), "q", in)
	// All scores equal: index tie-break preserves input order per batch,
	// and batch order preserves it globally.
	assert.Equal(t, in, got)
}

func TestRerankRecoversFromPanic(t *testing.T) {
	client := scoreByKey(nil, func(string) any { return 5.0 })
	r, err := New(
		func(s string) string {
			if s == "boom" {
				panic("bad extractor")
			}
			return s
		},
		WithClient[string](client),
		WithLogger[string](testLogger{t}),
	)
	require.NoError(t, err)
	defer r.Close()

	in := []string{"ok", "boom", "fine"}
	got := r.Rerank(context.Background(), "q", in)
	assert.Equal(t, in, got)
}

func TestRerankPanicInClientDegradesBatchOnly(t *testing.T) {
	r := newTestReranker(t, clientFunc(func(_ context.Context, _ []model.Message, schema *model.JSONSchemaConfig, _ CallConfig) (any, error) {
		keys := requestedKeys(schema)
		if len(keys) > 0 && keys[0] == "c" {
			panic("client bug")
		}
		payload := map[string]any{}
		for _, key := range keys {
			payload[key] = 5.0
		}
		return payload, nil
	}),
		WithBatchSize[string](2),
		WithTinyBatchFraction[string](0),
	)

	in := []string{"a", "b", "c", "d"}
	got := r.Rerank(context.Background(), "q", in)
	assert.Equal(t, in, got)
}

func TestRerankForwardsUserID(t *testing.T) {
	var seen atomic.Value
	client := clientFunc(func(_ context.Context, _ []model.Message, schema *model.JSONSchemaConfig, cfg CallConfig) (any, error) {
		seen.Store(cfg.UserID)
		payload := map[string]any{}
		for _, key := range requestedKeys(schema) {
			payload[key] = 5.0
		}
		return payload, nil
	})

	r := newTestReranker(t, client, WithUserID[string]("default-user"))
	r.Rerank(context.Background(), "q", []string{"a", "b"})
	assert.Equal(t, "default-user", seen.Load())

	r.Rerank(context.Background(), "q", []string{"a", "b"}, WithCallUserID("override"))
	assert.Equal(t, "override", seen.Load())
}

func TestRerankAfterCloseStillWorks(t *testing.T) {
	r := newTestReranker(t, scoreByKey(nil, func(string) any { return 5.0 }))
	r.Close()

	got := r.Rerank(context.Background(), "q", []string{"a", "b"})
	assert.ElementsMatch(t, []string{"a", "b"}, got)
}
