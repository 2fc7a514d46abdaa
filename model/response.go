//
// Listwise is pleased to support the open source community by making listwise-rerank available.
//
// Copyright (C) 2026 Listwise.  All rights reserved.
//
// listwise-rerank is licensed under the Apache License Version 2.0.
//
//

package model

import "time"

// Error type constants for ResponseError.Type field.
const (
	ErrorTypeAPIError = "api_error"
)

// Object type constants for Response.Object field.
const (
	// ObjectTypeChatCompletion is the object type for chat completion events.
	ObjectTypeChatCompletion = "chat.completion"
)

// Choice represents a single completion choice.
type Choice struct {
	// Index is the index of the choice.
	Index int `json:"index"`

	// Message is the message content.
	Message Message `json:"message,omitempty"`

	// FinishReason is the reason the choice was finished.
	// "stop", "length", "content_filter", etc.
	FinishReason *string `json:"finish_reason,omitempty"`
}

// Usage represents token usage information.
type Usage struct {
	// PromptTokens is the number of tokens in the prompt.
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of tokens in the completion.
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is the total number of tokens in the response.
	TotalTokens int `json:"total_tokens"`
}

// ResponseError represents an API-level error in a response.
type ResponseError struct {
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Type is the error type, e.g. "api_error".
	Type string `json:"type"`
}

// Response is the response from the model.
//
// The Error field represents API-level errors that occur after successful
// communication with the model service. This is different from
// function-level errors returned by GenerateContent(), which indicate
// system-level failures that prevent communication entirely.
type Response struct {
	// ID is the unique identifier for this response.
	ID string `json:"id"`

	// Object describes the type of object returned (e.g., "chat.completion").
	Object string `json:"object"`

	// Created is the Unix timestamp when the response was created.
	Created int64 `json:"created"`

	// Model is the model used to generate the response.
	Model string `json:"model"`

	// Choices contains the completion choices.
	Choices []Choice `json:"choices"`

	// Usage contains token usage information.
	Usage *Usage `json:"usage,omitempty"`

	// Error contains API-level error information if the request failed.
	// This is nil for successful responses.
	Error *ResponseError `json:"error,omitempty"`

	// Timestamp when this response was received.
	Timestamp time.Time `json:"timestamp"`

	// Done indicates the response is final.
	Done bool `json:"done"`
}
