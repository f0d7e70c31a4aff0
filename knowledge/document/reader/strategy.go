//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package reader

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoText is reported by a strategy that parsed the source but found no text.
var ErrNoText = errors.New("no text content found")

// Strategy is one way of extracting text from raw file bytes.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, data []byte) (string, error)
}

type strategyFunc struct {
	name string
	fn   func(ctx context.Context, data []byte) (string, error)
}

func (s strategyFunc) Name() string { return s.name }

func (s strategyFunc) Extract(ctx context.Context, data []byte) (string, error) {
	return s.fn(ctx, data)
}

// NewStrategy adapts a function to the Strategy interface.
func NewStrategy(name string, fn func(ctx context.Context, data []byte) (string, error)) Strategy {
	return strategyFunc{name: name, fn: fn}
}

// Attempt records one failed strategy.
type Attempt struct {
	Strategy string
	Err      error
}

// ExtractionError is returned when every strategy of a chain failed.
type ExtractionError struct {
	Source   string
	Attempts []Attempt
}

func (e *ExtractionError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Strategy, a.Err))
	}
	return fmt.Sprintf("extract %s: all strategies failed (%s)", e.Source, strings.Join(parts, "; "))
}

// Unwrap exposes the individual strategy errors to errors.Is and errors.As.
func (e *ExtractionError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

// Outcome is the result of a successful chain run.
type Outcome struct {
	Text     string
	Strategy string
	// Attempts lists the strategies that failed before the winning one.
	Attempts []Attempt
}

// Chain is an ordered list of strategies.
type Chain []Strategy

// Run tries each strategy in order and returns the first non-blank text.
// onFail, when set, sees every failed attempt as it happens.
func (c Chain) Run(ctx context.Context, source string, data []byte, onFail func(Attempt)) (*Outcome, error) {
	var attempts []Attempt
	for _, s := range c {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := s.Extract(ctx, data)
		if err == nil && strings.TrimSpace(text) == "" {
			err = ErrNoText
		}
		if err != nil {
			a := Attempt{Strategy: s.Name(), Err: err}
			attempts = append(attempts, a)
			if onFail != nil {
				onFail(a)
			}
			continue
		}
		return &Outcome{Text: text, Strategy: s.Name(), Attempts: attempts}, nil
	}
	if len(attempts) == 0 {
		return nil, fmt.Errorf("extract %s: no strategies configured", source)
	}
	return nil, &ExtractionError{Source: source, Attempts: attempts}
}
