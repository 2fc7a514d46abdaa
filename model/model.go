//
// Listwise is pleased to support the open source community by making listwise-rerank available.
//
// Copyright (C) 2026 Listwise.  All rights reserved.
//
// listwise-rerank is licensed under the Apache License Version 2.0.
//
//

// Package model provides interfaces for working with LLMs.
package model

import "context"

// Model is the interface for all language models.
type Model interface {
	// Info returns basic information about the model.
	Info() Info

	// GenerateContent generates content from the model.
	GenerateContent(ctx context.Context, request *Request) (<-chan *Response, error)
}

// Info contains basic information about a model.
type Info struct {
	// Name is the name of the model.
	Name string
}
