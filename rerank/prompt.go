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
	"fmt"

	"github.com/listwise/rerank/model"
)

const scoringSchemaName = "relevance_scores"

const scoringSystemPrompt = `You are a relevance grader. Given a search query and a list of candidate search results, assign every candidate an integer relevance score from 0 (irrelevant) to 10 (perfectly relevant).

Respond with a single JSON object mapping every candidate key to its score. Include every key exactly once and nothing else.`

// promptCandidate is one entry of the serialized user payload.
type promptCandidate struct {
	Key     string `json:"key"`
	Summary string `json:"summary"`
}

// promptPayload is the user message body sent to the model.
type promptPayload struct {
	Query                  string            `json:"query"`
	CandidateSearchResults []promptCandidate `json:"candidate_search_results"`
}

// buildScoringSchema builds a strict JSON schema requiring exactly one
// integer score per candidate key and forbidding any other property.
// Keys must already be unique within the batch.
func buildScoringSchema[T any](batch []prepared[T]) *model.JSONSchemaConfig {
	properties := make(map[string]any, len(batch))
	required := make([]string, 0, len(batch))
	for _, c := range batch {
		properties[c.key] = map[string]any{
			"type":        "integer",
			"minimum":     0,
			"maximum":     10,
			"description": fmt.Sprintf("Relevance of %q to the query.", c.key),
		}
		required = append(required, c.key)
	}
	return &model.JSONSchemaConfig{
		Name:        scoringSchemaName,
		Description: "Integer relevance score (0-10) for every candidate key.",
		Strict:      true,
		Schema: map[string]any{
			"type":                 "object",
			"properties":           properties,
			"required":             required,
			"additionalProperties": false,
		},
	}
}

// buildScoringMessages builds the two-message scoring prompt: a system
// instruction and a user message carrying the query and the candidate
// list.
func buildScoringMessages[T any](query string, batch []prepared[T]) ([]model.Message, error) {
	payload := promptPayload{
		Query:                  query,
		CandidateSearchResults: make([]promptCandidate, len(batch)),
	}
	for i, c := range batch {
		payload.CandidateSearchResults[i] = promptCandidate{
			Key:     c.key,
			Summary: c.summary,
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal scoring payload: %w", err)
	}
	return []model.Message{
		model.NewSystemMessage(scoringSystemPrompt),
		model.NewUserMessage(string(body)),
	}, nil
}
