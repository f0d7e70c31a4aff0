//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package report renders analysis results as Word documents.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gomutex/godocx"
	"github.com/gosimple/slug"

	"trpc.group/trpc-go/trpc-docstudio-go/analyzer"
)

const (
	// FilePrefix starts every report file name.
	FilePrefix = "analysis_report_"
	// Extension is the report file extension.
	Extension = ".docx"

	timeLayout     = "2006-01-02 15:04:05"
	separatorWidth = 50
	fallbackSlug   = "document"
)

// now is replaced in tests.
var now = time.Now

// FileName returns the report file name for a source document.
func FileName(source string, at time.Time) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	s := slug.Make(base)
	if s == "" {
		s = fallbackSlug
	}
	return fmt.Sprintf("%s%s_%d%s", FilePrefix, s, at.Unix(), Extension)
}

// Write renders r into dir and returns the path of the new file.
func Write(dir string, r *analyzer.Result) (string, error) {
	if r == nil {
		return "", fmt.Errorf("report: nil result")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create %s: %w", dir, err)
	}

	at := now()
	doc, err := godocx.NewDocument()
	if err != nil {
		return "", fmt.Errorf("report: new document: %w", err)
	}
	if _, err := doc.AddHeading("Document analysis report: "+r.FileName, 0); err != nil {
		return "", fmt.Errorf("report: title: %w", err)
	}
	doc.AddParagraph("Generated at: " + at.Format(timeLayout))
	doc.AddParagraph("")

	separator := strings.Repeat("─", separatorWidth)
	for _, section := range r.Sections {
		if _, err := doc.AddHeading(section.Key, 1); err != nil {
			return "", fmt.Errorf("report: section %q: %w", section.Key, err)
		}
		for i, part := range section.Parts {
			if len(section.Parts) > 1 {
				if _, err := doc.AddHeading(fmt.Sprintf("Part %d", i+1), 2); err != nil {
					return "", fmt.Errorf("report: part heading: %w", err)
				}
			}
			for _, b := range markdownBlocks(part) {
				if b.level > 0 {
					if _, err := doc.AddHeading(b.text, uint(b.level)); err != nil {
						return "", fmt.Errorf("report: heading %q: %w", b.text, err)
					}
					continue
				}
				doc.AddParagraph(b.text)
			}
		}
		doc.AddParagraph(separator)
		doc.AddParagraph("")
	}

	path := filepath.Join(dir, FileName(r.FileName, at))
	if err := doc.SaveTo(path); err != nil {
		return "", fmt.Errorf("report: save %s: %w", path, err)
	}
	return path, nil
}
