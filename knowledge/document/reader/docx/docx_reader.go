//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package docx provides the Word document reader.
package docx

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/gonfva/docxlib"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/document/reader"
)

var (
	// supportedExtensions defines the file extensions supported by this reader.
	supportedExtensions = []string{".docx"}
)

// init registers the DOCX reader with the global registry.
func init() {
	reader.RegisterReader(supportedExtensions, New)
}

// New creates a DOCX reader. The default chain parses the document with
// docxlib and falls back to walking word/document.xml directly.
func New(opts ...reader.Option) reader.Reader {
	return reader.NewChainReader("DOCXReader", supportedExtensions, DefaultChain(), opts...)
}

// DefaultChain returns the default DOCX extraction strategies.
func DefaultChain() reader.Chain {
	return reader.Chain{
		reader.NewStrategy("docxlib", extractParagraphs),
		reader.NewStrategy("document-xml", extractDocumentXML),
	}
}

// extractParagraphs returns the text of every paragraph, one per line.
func extractParagraphs(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docx parser panic: %v", r)
		}
	}()

	doc, err := docxlib.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	paragraphs := doc.Paragraphs()
	lines := make([]string, 0, len(paragraphs))
	for _, para := range paragraphs {
		var sb strings.Builder
		for _, child := range para.Children() {
			switch {
			case child.Run != nil && child.Run.Text != nil:
				sb.WriteString(child.Run.Text.Text)
			case child.Link != nil && child.Link.Run.Text != nil:
				sb.WriteString(child.Link.Run.Text.Text)
			}
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n"), nil
}
