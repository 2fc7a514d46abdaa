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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/listwise/rerank/model"
)

// CallConfig carries per-call parameters forwarded to the scoring
// backend.
type CallConfig struct {
	// Model is the model name the backend should use, if it honors one.
	Model string
	// Temperature is the sampling temperature, if set.
	Temperature *float64
	// Timeout bounds a single scoring call. Zero means no deadline
	// beyond the caller's context.
	Timeout time.Duration
	// UserID identifies the end user on whose behalf the call is made.
	UserID string
}

// Client is the pluggable scoring backend. Call sends the prompt and
// schema to a language model and returns the decoded response payload.
// Implementations may fail for any reason (network, timeout, malformed
// output); callers must validate the payload shape and never trust it.
type Client interface {
	Call(ctx context.Context, messages []model.Message, schema *model.JSONSchemaConfig, cfg CallConfig) (any, error)
}

// modelClient adapts a model.Model into a Client using JSON-schema
// structured output.
type modelClient struct {
	m model.Model
}

func (c *modelClient) Call(
	ctx context.Context,
	messages []model.Message,
	schema *model.JSONSchemaConfig,
	cfg CallConfig,
) (any, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	request := &model.Request{
		Messages: messages,
		GenerationConfig: model.GenerationConfig{
			Temperature: cfg.Temperature,
		},
		StructuredOutput: &model.StructuredOutput{
			Type:       model.StructuredOutputJSONSchema,
			JSONSchema: schema,
		},
	}

	responseChan, err := c.m.GenerateContent(ctx, request)
	if err != nil {
		return nil, err
	}
	var last *model.Response
	for rsp := range responseChan {
		last = rsp
	}
	if last == nil {
		return nil, errors.New("model returned no response")
	}
	if last.Error != nil {
		return nil, fmt.Errorf("model error: %s", last.Error.Message)
	}
	if len(last.Choices) == 0 {
		return nil, errors.New("model returned no choices")
	}

	var data any
	if err := json.Unmarshal([]byte(last.Choices[0].Message.Content), &data); err != nil {
		return nil, fmt.Errorf("decode scoring payload: %w", err)
	}
	return data, nil
}
