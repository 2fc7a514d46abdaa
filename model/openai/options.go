//
// Listwise is pleased to support the open source community by making listwise-rerank available.
//
// Copyright (C) 2026 Listwise.  All rights reserved.
//
// listwise-rerank is licensed under the Apache License Version 2.0.
//
//

package openai

import (
	"net/http"

	openaiopt "github.com/openai/openai-go/option"
)

const defaultChannelBufferSize = 1

// options contains configuration options for the OpenAI model.
type options struct {
	// APIKey is the OpenAI API key. Defaults to the OPENAI_API_KEY
	// environment variable.
	APIKey string
	// BaseURL overrides the API endpoint, e.g. for OpenAI-compatible
	// providers. Defaults to the OPENAI_BASE_URL environment variable.
	BaseURL string
	// ChannelBufferSize is the buffer size of the response channel.
	ChannelBufferSize int
	// HTTPClient is an optional custom HTTP client.
	HTTPClient *http.Client
	// OpenAIOptions are extra request options passed to the underlying SDK.
	OpenAIOptions []openaiopt.RequestOption
}

var defaultOptions = options{
	ChannelBufferSize: defaultChannelBufferSize,
}

// Option is a function that configures an OpenAI model.
type Option func(*options)

// WithAPIKey sets the API key for the OpenAI client.
func WithAPIKey(key string) Option {
	return func(opts *options) {
		opts.APIKey = key
	}
}

// WithBaseURL sets the base URL for the OpenAI client.
func WithBaseURL(url string) Option {
	return func(opts *options) {
		opts.BaseURL = url
	}
}

// WithChannelBufferSize sets the channel buffer size for the OpenAI client.
func WithChannelBufferSize(size int) Option {
	return func(opts *options) {
		if size <= 0 {
			size = defaultChannelBufferSize
		}
		opts.ChannelBufferSize = size
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *options) {
		opts.HTTPClient = client
	}
}

// WithOpenAIOptions sets extra request options for the underlying SDK client.
func WithOpenAIOptions(openaiOpts ...openaiopt.RequestOption) Option {
	return func(opts *options) {
		opts.OpenAIOptions = append(opts.OpenAIOptions, openaiOpts...)
	}
}
