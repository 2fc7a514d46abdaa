//
// Listwise is pleased to support the open source community by making listwise-rerank available.
//
// Copyright (C) 2026 Listwise.  All rights reserved.
//
// listwise-rerank is licensed under the Apache License Version 2.0.
//
//

package model

// Role represents the role of a message author.
type Role string

// Role constants for message authors.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is one of the defined constants.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Message represents a single message in a conversation.
type Message struct {
	// Role is the role of the message author.
	Role Role `json:"role"`
	// Content is the message content.
	Content string `json:"content,omitempty"`
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{
		Role:    RoleSystem,
		Content: content,
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{
		Role:    RoleUser,
		Content: content,
	}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return Message{
		Role:    RoleAssistant,
		Content: content,
	}
}

// GenerationConfig contains configuration for text generation.
type GenerationConfig struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0 to 2.0).
	Temperature *float64 `json:"temperature,omitempty"`

	// TopP controls nucleus sampling (0.0 to 1.0).
	TopP *float64 `json:"top_p,omitempty"`
}

// StructuredOutputType identifies the structured output mechanism requested.
type StructuredOutputType string

// StructuredOutputJSONSchema requests native JSON-schema constrained output.
const StructuredOutputJSONSchema StructuredOutputType = "json_schema"

// StructuredOutput requests schema-constrained output from the model.
type StructuredOutput struct {
	// Type selects the structured output mechanism.
	Type StructuredOutputType `json:"type"`
	// JSONSchema configures json_schema structured output.
	JSONSchema *JSONSchemaConfig `json:"json_schema,omitempty"`
}

// JSONSchemaConfig describes a JSON schema handed to the provider as
// a response format.
type JSONSchemaConfig struct {
	// Name is the schema name reported to the provider.
	Name string `json:"name"`
	// Description tells the model what the schema is for.
	Description string `json:"description,omitempty"`
	// Strict enforces exact schema adherence when supported.
	Strict bool `json:"strict"`
	// Schema is the JSON schema document itself.
	Schema map[string]any `json:"schema"`
}

// Request is the request to the model.
type Request struct {
	// Messages is the conversation history.
	Messages []Message `json:"messages"`

	// GenerationConfig contains the generation parameters.
	GenerationConfig `json:",inline"`

	// StructuredOutput, when set, constrains the response to a schema.
	StructuredOutput *StructuredOutput `json:"structured_output,omitempty"`
}
