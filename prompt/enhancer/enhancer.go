//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package enhancer rewrites free-text prompts with prompt engineering
// templates and a language model.
package enhancer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"trpc.group/trpc-go/trpc-docstudio-go/model"
)

var (
	// ErrEmptyPrompt is returned when there is nothing to enhance.
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrUnknownMethod is returned for an enhancement method that is not defined.
	ErrUnknownMethod = errors.New("unknown enhancement method")
)

// DefaultAudience describes the reader the rewritten prompts address.
const DefaultAudience = "a second-year business English student who is interested in culture, travel and AI"

// Method is one prompt rewriting technique.
type Method struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`

	style string
	tmpl  *template.Template
}

var methods = []*Method{
	newMethod("cot", "Chain of Thought (CoT)", "chain-of-thought",
		"Guide the model through explicit reasoning steps.", cotTemplate),
	newMethod("tot", "Tree of Thought (ToT)", "tree-of-thought",
		"Have the model compare several solution paths.", totTemplate),
	newMethod("got", "Graph of Thought (GoT)", "graph-of-thought",
		"Emphasize the links between concepts.", gotTemplate),
	newMethod("eot", "Everything of Thought (EoT)", "everything-of-thought",
		"Cover every dimension and perspective of the task.", eotTemplate),
	newMethod("costar", "CO-STAR", "CO-STAR framework",
		"Context, objective, style, tone, audience and response.", costarTemplate),
}

func newMethod(key, name, style, desc, text string) *Method {
	return &Method{
		Key:         key,
		Name:        name,
		Description: desc,
		style:       style,
		tmpl:        template.Must(template.New(key).Funcs(sprig.TxtFuncMap()).Parse(text)),
	}
}

// Methods returns the enhancement methods in display order.
func Methods() []Method {
	out := make([]Method, 0, len(methods))
	for _, m := range methods {
		out = append(out, *m)
	}
	return out
}

func lookup(key string) (*Method, error) {
	key = strings.TrimSpace(key)
	for _, m := range methods {
		if strings.EqualFold(m.Key, key) || strings.EqualFold(m.Name, key) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, key)
}

// templateData is the data every method template is rendered with.
type templateData struct {
	Original string
	Audience string
	Language string
	Style    string
}

// Option configures an Enhancer.
type Option func(*Enhancer)

// WithAudience sets the reader the rewritten prompt is written for.
func WithAudience(audience string) Option {
	return func(e *Enhancer) {
		e.audience = audience
	}
}

// WithLanguage fixes the output language of the rewritten prompt.
func WithLanguage(language string) Option {
	return func(e *Enhancer) {
		e.language = language
	}
}

// WithGenerationConfig overrides the sampling parameters.
func WithGenerationConfig(cfg model.GenerationConfig) Option {
	return func(e *Enhancer) {
		e.genConfig = cfg
	}
}

// Enhancer rewrites prompts with a model.
type Enhancer struct {
	model     model.Model
	audience  string
	language  string
	genConfig model.GenerationConfig
}

// New creates an Enhancer backed by m.
func New(m model.Model, opts ...Option) *Enhancer {
	e := &Enhancer{
		model:     m,
		audience:  DefaultAudience,
		genConfig: model.GenerationConfig{Stream: true},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render fills the template of method with prompt without calling the model.
func (e *Enhancer) Render(prompt, method string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	m, err := lookup(method)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	err = m.tmpl.Execute(&sb, templateData{
		Original: prompt,
		Audience: e.audience,
		Language: e.language,
		Style:    m.style,
	})
	if err != nil {
		return "", fmt.Errorf("render %s template: %w", m.Key, err)
	}
	return sb.String(), nil
}

// Enhance renders the template and returns the model's rewrite. onDelta
// observes the streamed output.
func (e *Enhancer) Enhance(ctx context.Context, prompt, method string, onDelta model.DeltaFunc) (string, error) {
	filled, err := e.Render(prompt, method)
	if err != nil {
		return "", err
	}
	if e.model == nil {
		return "", errors.New("enhancer has no model")
	}
	return model.Generate(ctx, e.model, model.NewPromptRequest(filled, e.genConfig), onDelta)
}
