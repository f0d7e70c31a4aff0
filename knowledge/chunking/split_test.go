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
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nonSpace(s string) string {
	var b strings.Builder
	for _, r := range s {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestSplitText_ShortTextIsSingleChunk(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"plain", "hello world", []string{"hello world"}},
		{"trimmed", "  hello\n\n", []string{"hello"}},
		{"exactly at limit", strings.Repeat("x", 10), []string{strings.Repeat("x", 10)}},
		{"paragraphs kept", "a\n\nb", []string{"a\n\nb"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitText(tt.text, 10))
		})
	}
}

func TestSplitText_EmptyInput(t *testing.T) {
	assert.Nil(t, SplitText("", 3000))
	assert.Nil(t, SplitText("   \n\t ", 3000))
	assert.Nil(t, SplitText(strings.Repeat(" \n\n ", 100), 10))
}

func TestSplitText_NonPositiveMaxLengthUsesDefault(t *testing.T) {
	text := strings.Repeat("a", DefaultMaxLength)
	assert.Equal(t, []string{text}, SplitText(text, 0))
	assert.Equal(t, []string{text}, SplitText(text, -5))
}

func TestSplitText_IndivisibleFragmentIsEmittedWhole(t *testing.T) {
	text := strings.Repeat("A", 100)
	chunks := SplitText(text, 50)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitText_ParagraphPacking(t *testing.T) {
	p1 := strings.Repeat("a", 2000)
	p2 := strings.Repeat("b", 2500)
	chunks := SplitText(p1+"\n\n"+p2, 3000)
	require.Len(t, chunks, 2)
	assert.Equal(t, p1, chunks[0])
	assert.Equal(t, p2, chunks[1])
}

func TestSplitText_ParagraphsShareChunkWhenTheyFit(t *testing.T) {
	p := strings.Repeat("c", 900)
	text := strings.Join([]string{p, p, p, p}, "\n\n")
	chunks := SplitText(text, 2000)
	require.Len(t, chunks, 2)
	assert.Equal(t, p+"\n\n"+p, chunks[0])
	assert.Equal(t, p+"\n\n"+p, chunks[1])
}

func TestSplitText_SentenceFallback(t *testing.T) {
	sentence := strings.Repeat("s", 499) + "."
	sentences := make([]string, 10)
	for i := range sentences {
		sentences[i] = sentence
	}
	paragraph := strings.Join(sentences, " ")
	require.Greater(t, utf8.RuneCountInString(paragraph), 5000-1)

	chunks := SplitText(paragraph, 3000)
	require.Len(t, chunks, 2)
	for _, c := range chunks {
		n := utf8.RuneCountInString(c)
		assert.InDelta(t, 2500, n, 10)
		assert.True(t, strings.HasSuffix(c, "."))
	}
}

func TestSplitText_TerminatorRunsStayAttached(t *testing.T) {
	text := "Really?! Yes... no. " + strings.Repeat("w", 30)
	chunks := SplitText(text, 12)
	assert.Equal(t, []string{"Really?!", "Yes... no.", strings.Repeat("w", 30)}, chunks)
}

func TestSplitText_KeepsOriginalTerminators(t *testing.T) {
	chunks := SplitText("Stop! Why? Go.", 6)
	assert.Equal(t, []string{"Stop!", "Why?", "Go."}, chunks)
}

func TestSplitText_CRLFIsNormalized(t *testing.T) {
	text := strings.Repeat("a", 8) + "\r\n\r\n" + strings.Repeat("b", 8)
	chunks := SplitText(text, 10)
	assert.Equal(t, []string{strings.Repeat("a", 8), strings.Repeat("b", 8)}, chunks)
}

func TestSplitText_CountsRunesNotBytes(t *testing.T) {
	p := strings.Repeat("文", 6)
	chunks := SplitText(p+"\n\n"+p, 14)
	assert.Equal(t, []string{p + "\n\n" + p}, chunks)
}

func TestSplitText_Properties(t *testing.T) {
	texts := []string{
		"First paragraph. It has two sentences!\n\nSecond one? Yes.\n\n\n\nThird after extra blank lines.",
		strings.Repeat("Lorem ipsum dolor sit amet. ", 200),
		strings.Repeat("para one line\nline two\n\n", 50) + strings.Repeat("z", 120),
		"数字 3.14 不应该特殊处理. 第二句! 第三句? " + strings.Repeat("长", 80),
	}
	for _, maxLength := range []int{20, 64, 300, 3000} {
		for _, text := range texts {
			chunks := SplitText(text, maxLength)
			require.NotEmpty(t, chunks)
			assert.Equal(t, nonSpace(text), nonSpace(strings.Join(chunks, "")))
			for _, c := range chunks {
				assert.NotEmpty(t, c)
				assert.Equal(t, strings.TrimSpace(c), c)
				if utf8.RuneCountInString(c) > maxLength {
					// Only fragments without any split point may overflow.
					assert.Len(t, splitSentences(c), 1, "oversized chunk %q", c)
					assert.NotContains(t, c, "\n\n")
				}
			}
		}
	}
}

func TestSplitText_RechunkingCompliantChunkIsStable(t *testing.T) {
	text := strings.Repeat("Sentence number one. ", 300)
	for _, c := range SplitText(text, 500) {
		assert.Equal(t, []string{c}, SplitText(c, 500))
	}
}

func TestSplitText_Deterministic(t *testing.T) {
	text := strings.Repeat("alpha beta. gamma!\n\n", 120)
	assert.Equal(t, SplitText(text, 200), SplitText(text, 200))
}
