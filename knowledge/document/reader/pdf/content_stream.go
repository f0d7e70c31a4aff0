//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	pdfcpuAPI "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/document/reader"
)

// extractContentStreams decodes each page content stream with pdfcpu and
// collects the strings shown by the text operators. It recovers text from
// files whose text layer the primary parser cannot read.
func extractContentStreams(ctx context.Context, data []byte) (string, error) {
	conf := model.NewDefaultConfiguration()
	pdfCtx, err := pdfcpuAPI.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}

	var w pageWriter
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
		if err != nil || r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			continue
		}
		w.add(pageNr, textFromContentStream(content))
	}
	if w.pages == 0 {
		return "", reader.ErrNoText
	}
	return w.String(), nil
}

var (
	// literalString matches PDF string literals: (text).
	literalString = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)
	// textOperator matches TJ arrays, string show operators and the line
	// operators that separate words and lines.
	textOperator = regexp.MustCompile(
		`\[((?:\\.|[^\\\]])*)\]\s*TJ|\(((?:\\.|[^\\)])*)\)\s*(Tj|'|")|(T\*|\bT[dD]\b|\bET\b)`)
)

// textFromContentStream interprets the text showing operators of a decoded
// content stream and turns positioning operators into whitespace.
func textFromContentStream(data []byte) string {
	var sb strings.Builder
	for _, m := range textOperator.FindAllSubmatch(data, -1) {
		switch {
		case m[1] != nil:
			for _, lit := range literalString.FindAllSubmatch(m[1], -1) {
				sb.WriteString(decodeLiteral(lit[1]))
			}
		case m[3] != nil:
			if string(m[3]) != "Tj" {
				sb.WriteByte('\n')
			}
			sb.WriteString(decodeLiteral(m[2]))
		case string(m[4]) == "T*", string(m[4]) == "ET":
			sb.WriteByte('\n')
		default:
			sb.WriteByte(' ')
		}
	}
	return collapseSpaces(sb.String())
}

// decodeLiteral resolves the escape sequences of a PDF string literal.
func decodeLiteral(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch c := raw[i]; c {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b', 'f':
		case '\\', '(', ')':
			sb.WriteByte(c)
		default:
			if c < '0' || c > '7' {
				sb.WriteByte(c)
				continue
			}
			val := int(c - '0')
			for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return sb.String()
}

// collapseSpaces squeezes horizontal whitespace runs but keeps line breaks.
func collapseSpaces(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
