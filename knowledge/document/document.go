//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package document defines the text document flowing from extraction to analysis.
package document

import (
	"strconv"
	"time"
)

// Metadata keys set by readers and chunkers.
const (
	MetaSourceName = "source_name"
	MetaExtension  = "extension"
	MetaStrategy   = "strategy"
	MetaCharCount  = "char_count"
	MetaChunkIndex = "chunk_index"
	MetaChunkCount = "chunk_count"
)

// Document is an extracted text together with its provenance.
type Document struct {
	// ID uniquely identifies the document.
	ID string `json:"id"`
	// Name is the human readable source name, usually the file name.
	Name string `json:"name"`
	// Content is the plain text.
	Content string `json:"content"`
	// Metadata carries reader and chunker annotations.
	Metadata map[string]any `json:"metadata,omitempty"`
	// CreatedAt is when the document was produced.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the document was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy with its own metadata map.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Metadata = make(map[string]any, len(d.Metadata))
	for k, v := range d.Metadata {
		c.Metadata[k] = v
	}
	return &c
}

// ChunkID derives the ID of the i-th chunk cut from d.
func (d *Document) ChunkID(i int) string {
	return d.ID + "_" + strconv.Itoa(i)
}
