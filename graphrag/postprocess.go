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
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-docstudio-go/model"
)

// ErrEmptyText is returned when there is nothing to post-process.
var ErrEmptyText = errors.New("text is empty")

// Postprocessing defaults.
const (
	DefaultPostprocessTimeout = 120 * time.Second
	DefaultTargetLanguage     = "Chinese"

	postprocessMaxTokens = 8000
)

const translatePrompt = `You are a professional translator. Please translate the following English text to %[1]s. Requirements:
1. Maintain the original structure and formatting
2. Ensure the translation is natural and fluent in %[1]s
3. Keep any special formatting, numbers, and section headers
4. Use appropriate %[1]s punctuation and provide a high-quality translation.
5. Preserve any technical terms with both English and %[1]s translations when necessary

Original text:
%[2]s

Please translate:`

const refinePrompt = `Please organize and refine the following text:
1. Remove duplicate content and system error messages
2. Improve readability and structure
3. Maintain the original meaning and key information
4. Create a coherent, well-organized narrative
5. Highlight main themes and important points

Text to process:
%s

Please provide the refined version:`

// PostprocessOption configures a Postprocessor.
type PostprocessOption func(*Postprocessor)

// WithPostprocessTimeout bounds one Translate or Refine call.
func WithPostprocessTimeout(d time.Duration) PostprocessOption {
	return func(p *Postprocessor) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithTargetLanguage sets the language Translate produces.
func WithTargetLanguage(lang string) PostprocessOption {
	return func(p *Postprocessor) {
		if lang != "" {
			p.language = lang
		}
	}
}

// Postprocessor rewrites GraphRAG answers with a chat model.
type Postprocessor struct {
	model    model.Model
	timeout  time.Duration
	language string
}

// NewPostprocessor creates a Postprocessor generating with m.
func NewPostprocessor(m model.Model, opts ...PostprocessOption) *Postprocessor {
	p := &Postprocessor{
		model:    m,
		timeout:  DefaultPostprocessTimeout,
		language: DefaultTargetLanguage,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Translate translates text into the target language and formats the result.
func (p *Postprocessor) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	return p.generate(ctx, fmt.Sprintf(translatePrompt, p.language, text), nil)
}

// Refine deduplicates and restructures text and formats the result.
func (p *Postprocessor) Refine(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	return p.generate(ctx, fmt.Sprintf(refinePrompt, text), model.Float64Ptr(0.5))
}

func (p *Postprocessor) generate(ctx context.Context, prompt string, frequencyPenalty *float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	req := model.NewPromptRequest(prompt, model.GenerationConfig{
		MaxTokens:        model.IntPtr(postprocessMaxTokens),
		Temperature:      model.Float64Ptr(0.7),
		TopP:             model.Float64Ptr(0.95),
		FrequencyPenalty: frequencyPenalty,
	})
	out, err := model.Generate(ctx, p.model, req, nil)
	if err != nil {
		return "", err
	}
	return FormatResponse(out), nil
}
