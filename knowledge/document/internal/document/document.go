//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package document provides helpers shared by readers and chunkers.
package document

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/document"
)

// CreateDocument creates a new document with the given content and name.
func CreateDocument(content string, name string) *document.Document {
	now := time.Now().UTC()
	return &document.Document{
		ID:      GenerateDocumentID(name, content),
		Name:    name,
		Content: content,
		Metadata: map[string]any{
			document.MetaSourceName: name,
			document.MetaCharCount:  utf8.RuneCountInString(content),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GenerateDocumentID builds "<name>_<content hash>_<random>".
// The hash identifies the content and the uuid suffix keeps repeated uploads apart.
func GenerateDocumentID(name string, content string) string {
	hash := sha256.Sum256([]byte(content))
	contentHash := hex.EncodeToString(hash[:8])
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	return strings.ReplaceAll(name, " ", "_") + "_" + contentHash + "_" + random
}
