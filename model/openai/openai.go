//
// Listwise is pleased to support the open source community by making listwise-rerank available.
//
// Copyright (C) 2026 Listwise.  All rights reserved.
//
// listwise-rerank is licensed under the Apache License Version 2.0.
//
//

// Package openai provides OpenAI-compatible model implementations.
package openai

import (
	"context"
	"errors"
	"os"
	"time"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/listwise/rerank/model"
)

// Environment variables consulted when no explicit credentials are given.
const (
	envAPIKey  = "OPENAI_API_KEY"
	envBaseURL = "OPENAI_BASE_URL"
)

// Model implements the model.Model interface for the OpenAI API and
// OpenAI-compatible endpoints.
type Model struct {
	client            openai.Client
	name              string
	channelBufferSize int
}

// New creates a new OpenAI-like model.
func New(name string, opts ...Option) *Model {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}

	// Set default API key and base URL from the environment if not specified.
	if val, ok := os.LookupEnv(envAPIKey); ok && o.APIKey == "" {
		o.APIKey = val
	}
	if val, ok := os.LookupEnv(envBaseURL); ok && o.BaseURL == "" {
		o.BaseURL = val
	}

	var clientOpts []openaiopt.RequestOption
	if o.APIKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(o.APIKey))
	}
	if o.BaseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(o.BaseURL))
	}
	if o.HTTPClient != nil {
		clientOpts = append(clientOpts, openaiopt.WithHTTPClient(o.HTTPClient))
	}
	clientOpts = append(clientOpts, o.OpenAIOptions...)

	return &Model{
		client:            openai.NewClient(clientOpts...),
		name:              name,
		channelBufferSize: o.ChannelBufferSize,
	}
}

// Info implements the model.Model interface.
func (m *Model) Info() model.Info {
	return model.Info{
		Name: m.name,
	}
}

// GenerateContent implements the model.Model interface.
func (m *Model) GenerateContent(
	ctx context.Context,
	request *model.Request,
) (<-chan *model.Response, error) {
	if request == nil {
		return nil, errors.New("request cannot be nil")
	}

	responseChan := make(chan *model.Response, m.channelBufferSize)
	chatRequest := m.buildChatRequest(request)

	go func() {
		defer close(responseChan)
		m.handleResponse(ctx, chatRequest, responseChan)
	}()

	return responseChan, nil
}

// buildChatRequest converts our Request to OpenAI request params.
func (m *Model) buildChatRequest(request *model.Request) openai.ChatCompletionNewParams {
	chatRequest := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(m.name),
		Messages: convertMessages(request.Messages),
	}

	// Set response_format for native structured outputs when requested.
	if request.StructuredOutput != nil &&
		request.StructuredOutput.Type == model.StructuredOutputJSONSchema &&
		request.StructuredOutput.JSONSchema != nil {
		js := request.StructuredOutput.JSONSchema
		chatRequest.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        js.Name,
					Schema:      js.Schema,
					Strict:      openai.Bool(js.Strict),
					Description: openai.String(js.Description),
				},
			},
		}
	}

	// MaxTokens is deprecated and not compatible with o-series models.
	// Use MaxCompletionTokens instead.
	if request.MaxTokens != nil {
		chatRequest.MaxCompletionTokens = openai.Int(int64(*request.MaxTokens))
	}
	if request.Temperature != nil {
		chatRequest.Temperature = openai.Float(*request.Temperature)
	}
	if request.TopP != nil {
		chatRequest.TopP = openai.Float(*request.TopP)
	}

	return chatRequest
}

// handleResponse performs a non-streaming chat completion call.
func (m *Model) handleResponse(
	ctx context.Context,
	chatRequest openai.ChatCompletionNewParams,
	responseChan chan<- *model.Response,
) {
	chatCompletion, err := m.client.Chat.Completions.New(ctx, chatRequest)
	if err != nil {
		errorResponse := &model.Response{
			Error: &model.ResponseError{
				Message: err.Error(),
				Type:    model.ErrorTypeAPIError,
			},
			Timestamp: time.Now(),
			Done:      true,
		}
		select {
		case responseChan <- errorResponse:
		case <-ctx.Done():
		}
		return
	}

	response := &model.Response{
		ID:        chatCompletion.ID,
		Object:    string(chatCompletion.Object),
		Created:   chatCompletion.Created,
		Model:     chatCompletion.Model,
		Timestamp: time.Now(),
		Done:      true,
	}

	if len(chatCompletion.Choices) > 0 {
		response.Choices = make([]model.Choice, len(chatCompletion.Choices))
		for i, choice := range chatCompletion.Choices {
			finishReason := string(choice.FinishReason)
			response.Choices[i] = model.Choice{
				Index: int(choice.Index),
				Message: model.Message{
					Role:    model.RoleAssistant,
					Content: choice.Message.Content,
				},
				FinishReason: &finishReason,
			}
		}
	}

	if chatCompletion.Usage.TotalTokens > 0 {
		response.Usage = &model.Usage{
			PromptTokens:     int(chatCompletion.Usage.PromptTokens),
			CompletionTokens: int(chatCompletion.Usage.CompletionTokens),
			TotalTokens:      int(chatCompletion.Usage.TotalTokens),
		}
	}

	select {
	case responseChan <- response:
	case <-ctx.Done():
	}
}

// convertMessages converts our messages to OpenAI message params.
func convertMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			result[i] = openai.SystemMessage(msg.Content)
		case model.RoleAssistant:
			result[i] = openai.AssistantMessage(msg.Content)
		default:
			result[i] = openai.UserMessage(msg.Content)
		}
	}
	return result
}
