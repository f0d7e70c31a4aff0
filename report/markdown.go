//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package report

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// headingOffset shifts markdown headings below the section and part headings.
const headingOffset = 2

// maxHeadingLevel is the deepest heading a docx document supports.
const maxHeadingLevel = 9

const bullet = "• "

// block is one paragraph of the report body. A level above zero makes it a heading.
type block struct {
	level int
	text  string
}

var md = goldmark.New()

// markdownBlocks flattens model output into headings and plain paragraphs.
func markdownBlocks(src string) []block {
	source := []byte(src)
	doc := md.Parser().Parse(text.NewReader(source))
	var out []block
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		out = appendBlock(out, n, source, 0)
	}
	return out
}

func appendBlock(out []block, n ast.Node, source []byte, depth int) []block {
	switch v := n.(type) {
	case *ast.Heading:
		level := min(v.Level+headingOffset, maxHeadingLevel)
		if t := inlineText(v, source); t != "" {
			out = append(out, block{level: level, text: t})
		}
	case *ast.Paragraph, *ast.TextBlock:
		if t := inlineText(v, source); t != "" {
			out = append(out, block{text: t})
		}
	case *ast.List:
		for item := v.FirstChild(); item != nil; item = item.NextSibling() {
			out = appendListItem(out, item, source, depth)
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		if t := strings.TrimRight(rawLines(v, source), "\n"); t != "" {
			out = append(out, block{text: t})
		}
	case *ast.Blockquote:
		for c := v.FirstChild(); c != nil; c = c.NextSibling() {
			out = appendBlock(out, c, source, depth)
		}
	case *ast.ThematicBreak:
		out = append(out, block{text: strings.Repeat("─", 20)})
	default:
		if t := inlineText(v, source); t != "" {
			out = append(out, block{text: t})
		}
	}
	return out
}

// appendListItem renders the item's own text as a bullet and nested lists
// one level deeper.
func appendListItem(out []block, item ast.Node, source []byte, depth int) []block {
	indent := strings.Repeat("  ", depth)
	var lead []string
	var nested []ast.Node
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*ast.List); ok {
			nested = append(nested, c)
			continue
		}
		if t := inlineText(c, source); t != "" {
			lead = append(lead, t)
		}
	}
	out = append(out, block{text: indent + bullet + strings.Join(lead, " ")})
	for _, l := range nested {
		out = appendBlock(out, l, source, depth+1)
	}
	return out
}

// inlineText collects the text of n with emphasis, links and code spans flattened.
func inlineText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			buf.Write(v.Segment.Value(source))
			if v.HardLineBreak() {
				buf.WriteByte('\n')
			} else if v.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(v.Value)
		case *ast.AutoLink:
			buf.Write(v.Label(source))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

func rawLines(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}
