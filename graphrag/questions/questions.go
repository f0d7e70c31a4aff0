//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package questions derives deep questions for a GraphRAG index and writes
// them as a Markdown question set.
package questions

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-docstudio-go/graphrag"
	"trpc.group/trpc-go/trpc-docstudio-go/graphrag/artifact"
)

// Question is a ready-to-run GraphRAG question.
type Question struct {
	Question string          `json:"question"`
	Method   graphrag.Method `json:"method"`
	Category string          `json:"category"`
	Focus    string          `json:"focus"`
	Command  string          `json:"command"`
}

// Option configures Generate.
type Option func(*options)

type options struct {
	command string
	root    string
}

// WithCommand sets the base query command used in Question.Command.
func WithCommand(command string) Option {
	return func(o *options) {
		o.command = command
	}
}

// WithRoot sets the --root used in Question.Command.
func WithRoot(root string) Option {
	return func(o *options) {
		o.root = root
	}
}

// Generate returns the preset questions followed by questions drawn from the
// most central nodes, the largest community, the dominant entity type and
// the top keywords of stats. A nil stats yields the presets only.
func Generate(stats *artifact.Stats, opts ...Option) []Question {
	o := options{command: graphrag.DefaultCommand, root: graphrag.DefaultRoot}
	for _, opt := range opts {
		opt(&o)
	}

	var qs []Question
	add := func(q string, m graphrag.Method, category, focus string) {
		qs = append(qs, Question{
			Question: q,
			Method:   m,
			Category: category,
			Focus:    focus,
			Command:  fmt.Sprintf("%s --root %s --method %s --query %q", o.command, o.root, m, q),
		})
	}
	for _, p := range graphrag.Presets() {
		add(p.Question, p.Method, p.Category, p.Focus)
	}
	if stats == nil {
		return qs
	}

	if len(stats.TopCentral) > 0 && stats.TopCentral[0].Value > 0 {
		node := stats.TopCentral[0].Node
		add(fmt.Sprintf("What role does %s play in connecting the main ideas of the book, and which concepts depend on it?", node),
			graphrag.MethodLocal, "Central Concept", "The most connected bridge concept in the graph")
	}
	if len(stats.Communities) > 1 && stats.Communities[0].Size > 1 {
		members := strings.Join(stats.Communities[0].Sample, ", ")
		add(fmt.Sprintf("What common theme unites %s, and how does it relate to the rest of the book?", members),
			graphrag.MethodGlobal, "Community", "The largest cluster of related concepts")
	}
	if len(stats.EntityTypes) > 0 {
		t := stats.EntityTypes[0].Label
		add(fmt.Sprintf("How are %s entities used throughout the book, and what patterns do they share?", t),
			graphrag.MethodDrift, "Entity Type", "The dominant kind of entity in the book")
	}
	if len(stats.Keywords) > 1 {
		add(fmt.Sprintf("What does the book teach about %s and %s, and how are they related?",
			stats.Keywords[0].Label, stats.Keywords[1].Label),
			graphrag.MethodLocal, "Keyword", "The most frequent terms among entity names")
	}
	return qs
}

// now is replaced in tests.
var now = time.Now

// methodNotes explains when each search method fits.
var methodNotes = []struct {
	method graphrag.Method
	note   string
}{
	{graphrag.MethodLocal, "questions that need specific details, concrete examples or local information"},
	{graphrag.MethodGlobal, "questions that need an overview, a comparison or a big picture view"},
	{graphrag.MethodDrift, "questions that explore connections and uncover new patterns or trends"},
}

// WriteMarkdown writes qs to prompt_writing_deep_questions_<ts>.md in dir
// and returns the file path.
func WriteMarkdown(dir string, qs []Question) (string, error) {
	t := now()
	var b strings.Builder
	b.WriteString("# Prompt writing deep questions\n\n")
	fmt.Fprintf(&b, "Generated at: %s\n\n", t.Format("2006-01-02 15:04:05"))
	b.WriteString("## Questions\n\n")
	for i, q := range qs {
		fmt.Fprintf(&b, "### Question %d\n\n", i+1)
		fmt.Fprintf(&b, "**Question**: %s\n\n", q.Question)
		fmt.Fprintf(&b, "**Method**: `%s`\n\n", q.Method)
		fmt.Fprintf(&b, "**Category**: %s\n\n", q.Category)
		fmt.Fprintf(&b, "**Focus**: %s\n\n", q.Focus)
		fmt.Fprintf(&b, "**Command**:\n```bash\n%s\n```\n\n---\n\n", q.Command)
	}
	b.WriteString("## Query methods\n\n")
	for _, n := range methodNotes {
		fmt.Fprintf(&b, "- **%s**: suited to %s\n", n.method, n.note)
	}
	b.WriteString("\n")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("prompt_writing_deep_questions_%s.md", t.Format("20060102_150405")))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
