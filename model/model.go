//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package model provides interfaces for working with LLMs.
package model

import "context"

// Model is the interface for all language models.
//
// GenerateContent returns a channel that yields zero or more partial
// responses followed by exactly one response with Done set. The channel is
// closed after the final response.
type Model interface {
	GenerateContent(ctx context.Context, request *Request) (<-chan *Response, error)
	Info() Info
}

// Info describes a model.
type Info struct {
	// Name is the model name sent to the provider.
	Name string `json:"name"`
	// Provider is the registry name of the backing provider.
	Provider string `json:"provider,omitempty"`
}

// Lister is implemented by providers that can enumerate their models.
type Lister interface {
	ListModels(ctx context.Context) ([]string, error)
}
