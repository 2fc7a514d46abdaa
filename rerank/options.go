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
	"time"

	"github.com/listwise/rerank/log"
	"github.com/listwise/rerank/model"
)

// Defaults applied by New when the corresponding option is not given.
const (
	defaultModelName          = "gpt-4o-mini"
	defaultBatchSize          = 25
	defaultTinyBatchFraction  = 0.2
	defaultRelevancyThreshold = 0.0
	defaultTimeout            = 30 * time.Second
	defaultMaxConcurrency     = 8
)

// Logger receives warnings when scoring degrades to original order.
// It is satisfied by log.Default.
type Logger interface {
	Warnf(format string, args ...any)
}

// options contains configuration options for a Reranker.
type options[T any] struct {
	client             Client
	model              model.Model
	modelName          string
	summary            func(T) string
	logger             Logger
	userID             string
	timeout            time.Duration
	temperature        *float64
	relevancyThreshold float64
	batchSize          int
	tinyBatchFraction  float64
	maxConcurrency     int
}

func newOptions[T any]() options[T] {
	return options[T]{
		modelName:          defaultModelName,
		logger:             log.Default,
		timeout:            defaultTimeout,
		relevancyThreshold: defaultRelevancyThreshold,
		batchSize:          defaultBatchSize,
		tinyBatchFraction:  defaultTinyBatchFraction,
		maxConcurrency:     defaultMaxConcurrency,
	}
}

// Option is a function that configures a Reranker.
type Option[T any] func(*options[T])

// WithClient sets the scoring client directly, bypassing the built-in
// model adapter.
func WithClient[T any](c Client) Option[T] {
	return func(o *options[T]) {
		o.client = c
	}
}

// WithModel sets the language model used for scoring.
func WithModel[T any](m model.Model) Option[T] {
	return func(o *options[T]) {
		o.model = m
	}
}

// WithModelName sets the model name used when the built-in OpenAI
// adapter is constructed, and is forwarded to custom clients.
func WithModelName[T any](name string) Option[T] {
	return func(o *options[T]) {
		if name != "" {
			o.modelName = name
		}
	}
}

// WithSummary sets the optional summary extractor. Summaries give the
// model more signal than the key alone.
func WithSummary[T any](summary func(T) string) Option[T] {
	return func(o *options[T]) {
		o.summary = summary
	}
}

// WithLogger redirects degradation warnings to a custom sink.
func WithLogger[T any](logger Logger) Option[T] {
	return func(o *options[T]) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithUserID sets the default end-user identifier forwarded with every
// scoring call. It can be overridden per call with WithCallUserID.
func WithUserID[T any](id string) Option[T] {
	return func(o *options[T]) {
		o.userID = id
	}
}

// WithTimeout bounds each scoring call. Zero disables the per-call
// deadline.
func WithTimeout[T any](timeout time.Duration) Option[T] {
	return func(o *options[T]) {
		o.timeout = timeout
	}
}

// WithTemperature sets the sampling temperature for scoring calls.
func WithTemperature[T any](temperature float64) Option[T] {
	return func(o *options[T]) {
		o.temperature = &temperature
	}
}

// WithRelevancyThreshold sets the score a candidate must strictly
// exceed to survive filtering. Must be within [0, 10].
func WithRelevancyThreshold[T any](threshold float64) Option[T] {
	return func(o *options[T]) {
		o.relevancyThreshold = threshold
	}
}

// WithBatchSize sets the maximum number of candidates scored in one
// model call. Must be >= 1.
func WithBatchSize[T any](size int) Option[T] {
	return func(o *options[T]) {
		o.batchSize = size
	}
}

// WithTinyBatchFraction sets the fraction of the batch size below which
// a trailing batch is merged into its predecessor. Must be within
// [0, 1]; a value small enough to round to zero disables merging.
func WithTinyBatchFraction[T any](fraction float64) Option[T] {
	return func(o *options[T]) {
		o.tinyBatchFraction = fraction
	}
}

// WithMaxConcurrency caps how many batches are scored at the same time.
func WithMaxConcurrency[T any](n int) Option[T] {
	return func(o *options[T]) {
		o.maxConcurrency = n
	}
}

// callOptions contains per-call overrides.
type callOptions struct {
	userID string
}

// CallOption is a function that configures a single Rerank call.
type CallOption func(*callOptions)

// WithCallUserID overrides the end-user identifier for one call.
func WithCallUserID(id string) CallOption {
	return func(o *callOptions) {
		o.userID = id
	}
}
