//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package chunking splits long documents into pieces that fit a model context.
package chunking

import (
	"errors"

	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/document"
)

var (
	// ErrNilDocument is returned when a nil document is chunked.
	ErrNilDocument = errors.New("chunking: document is nil")
	// ErrEmptyDocument is returned when the document holds no text.
	ErrEmptyDocument = errors.New("chunking: document is empty")
)

// Strategy turns one document into an ordered list of chunk documents.
type Strategy interface {
	Chunk(doc *document.Document) ([]*document.Document, error)
}
