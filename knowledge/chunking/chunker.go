//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package chunking

import (
	"strings"
	"unicode/utf8"

	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/document"
)

// Chunker is the paragraph-then-sentence Strategy built on SplitText.
type Chunker struct {
	maxLength int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithMaxLength sets the chunk budget in characters.
func WithMaxLength(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxLength = n
		}
	}
}

// New creates a Chunker. The default budget is DefaultMaxLength.
func New(opts ...Option) *Chunker {
	c := &Chunker{maxLength: DefaultMaxLength}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxLength returns the configured budget.
func (c *Chunker) MaxLength() int { return c.maxLength }

// Chunk splits doc.Content and returns one document per chunk, in order.
// Each chunk inherits the parent metadata plus its index and the chunk count.
func (c *Chunker) Chunk(doc *document.Document) ([]*document.Document, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, ErrEmptyDocument
	}
	parts := SplitText(doc.Content, c.maxLength)
	out := make([]*document.Document, 0, len(parts))
	for i, part := range parts {
		chunk := doc.Clone()
		chunk.ID = doc.ChunkID(i)
		chunk.Content = part
		chunk.Metadata[document.MetaChunkIndex] = i
		chunk.Metadata[document.MetaChunkCount] = len(parts)
		chunk.Metadata[document.MetaCharCount] = utf8.RuneCountInString(part)
		if _, ok := chunk.Metadata[document.MetaSourceName]; !ok {
			chunk.Metadata[document.MetaSourceName] = doc.Name
		}
		out = append(out, chunk)
	}
	return out, nil
}
