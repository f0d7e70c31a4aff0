//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package pdf provides the PDF document reader.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/document/reader"
)

var (
	// supportedExtensions defines the file extensions supported by this reader.
	supportedExtensions = []string{".pdf"}
)

// init registers the PDF reader with the global registry.
func init() {
	reader.RegisterReader(supportedExtensions, New)
}

// New creates a PDF reader. The default chain reads the text layer with
// ledongthuc/pdf and falls back to scanning content streams with pdfcpu.
func New(opts ...reader.Option) reader.Reader {
	return reader.NewChainReader("PDFReader", supportedExtensions, DefaultChain(), opts...)
}

// DefaultChain returns the default PDF extraction strategies.
func DefaultChain() reader.Chain {
	return reader.Chain{
		reader.NewStrategy("pdf-text-layer", extractTextLayer),
		reader.NewStrategy("pdfcpu-content-stream", extractContentStreams),
	}
}

// pageMarker precedes the text of every page.
func pageMarker(page int) string {
	return fmt.Sprintf("--- Page %d ---", page)
}

// pageWriter joins page texts with their markers, skipping blank pages.
type pageWriter struct {
	b     strings.Builder
	pages int
}

func (w *pageWriter) add(page int, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if w.b.Len() > 0 {
		w.b.WriteString("\n\n")
	}
	w.b.WriteString(pageMarker(page))
	w.b.WriteString("\n")
	w.b.WriteString(text)
	w.pages++
}

func (w *pageWriter) String() string { return w.b.String() }

// extractTextLayer reads the plain text of every page.
func extractTextLayer(ctx context.Context, data []byte) (text string, err error) {
	// ledongthuc/pdf panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var w pageWriter
	total := pdfReader.NumPage()
	for pageIndex := 1; pageIndex <= total; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := pdfReader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		w.add(pageIndex, pageText)
	}
	if w.pages == 0 {
		return "", reader.ErrNoText
	}
	return w.String(), nil
}
