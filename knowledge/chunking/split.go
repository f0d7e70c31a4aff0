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
)

// DefaultMaxLength is the chunk budget, in characters, used when none is given.
const DefaultMaxLength = 3000

const (
	paragraphSeparator = "\n\n"
	sentenceSeparator  = " "
)

// SplitText splits text into ordered chunks of at most maxLength characters.
//
// Paragraphs (separated by a blank line) are packed greedily: a chunk is
// closed as soon as the next paragraph would overflow it. A single paragraph
// that is still too long is split again on sentence terminators (., ! and ?)
// and the sentences are packed the same way. A fragment with no further split
// point is returned whole even if it exceeds maxLength.
//
// Lengths are counted in runes. Chunks are whitespace-trimmed, paragraphs are
// rejoined with "\n\n" and sentences with a single space; every other
// character of the input appears exactly once, in order. Terminators are kept
// as written: a "!" or "?" is never rewritten to ".". Empty or blank text
// yields nil. A non-positive maxLength means DefaultMaxLength.
func SplitText(text string, maxLength int) []string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if utf8.RuneCountInString(text) <= maxLength {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	paragraphs := splitParagraphs(text)
	var chunks []string
	for _, chunk := range pack(paragraphs, paragraphSeparator, maxLength) {
		if utf8.RuneCountInString(chunk) <= maxLength {
			chunks = append(chunks, chunk)
			continue
		}
		chunks = append(chunks, pack(splitSentences(chunk), sentenceSeparator, maxLength)...)
	}
	return chunks
}

// pack groups pieces greedily without lookahead. The running length includes
// the trailing separator of every piece already in the buffer.
func pack(pieces []string, sep string, maxLength int) []string {
	var (
		chunks []string
		buf    strings.Builder
		bufLen int
	)
	sepLen := utf8.RuneCountInString(sep)
	for _, piece := range pieces {
		pieceLen := utf8.RuneCountInString(piece)
		if bufLen > 0 && bufLen+pieceLen > maxLength {
			chunks = append(chunks, strings.TrimSpace(buf.String()))
			buf.Reset()
			bufLen = 0
		}
		buf.WriteString(piece)
		buf.WriteString(sep)
		bufLen += pieceLen + sepLen
	}
	if bufLen > 0 {
		chunks = append(chunks, strings.TrimSpace(buf.String()))
	}
	return chunks
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, paragraphSeparator) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitSentences cuts after every run of terminators. The terminators stay
// with the sentence they close.
func splitSentences(text string) []string {
	var (
		out    []string
		start  int
		inTerm bool
	)
	for i, r := range text {
		term := isTerminator(r)
		if inTerm && !term {
			out = appendTrimmed(out, text[start:i])
			start = i
		}
		inTerm = term
	}
	return appendTrimmed(out, text[start:])
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func appendTrimmed(out []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		out = append(out, s)
	}
	return out
}
