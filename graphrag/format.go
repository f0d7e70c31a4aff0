//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package graphrag

import (
	"regexp"
	"strings"
)

// listPrefixes open a line that gets a blank line in front of it.
var listPrefixes = []string{"1.", "2.", "3.", "•", "-", "※", "*"}

// sectionWords are turned into "===== X =====" banners.
var sectionWords = []string{
	"Summary",
	"Conclusion",
	"The Threat",
	"Humanity's Response",
	"Internal Conflict",
	"The Ending",
}

var blankRun = regexp.MustCompile(`\n{3,}`)

// FormatResponse spaces out list items, marks section words with banners and
// collapses runs of blank lines.
func FormatResponse(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		for _, p := range listPrefixes {
			if strings.HasPrefix(trimmed, p) {
				lines[i] = "\n" + line
				break
			}
		}
	}
	out := strings.Join(lines, "\n")
	for _, w := range sectionWords {
		out = strings.ReplaceAll(out, w, "\n\n===== "+w+" =====\n")
	}
	out = blankRun.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
