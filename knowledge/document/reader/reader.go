//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package reader turns uploaded files into plain-text documents.
//
// Each format registers a Reader for its extensions. A Reader owns an ordered
// chain of extraction strategies and returns the text of the first strategy
// that succeeds.
package reader

import (
	"context"
	"io"

	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/document"
)

// DefaultMaxSize bounds how many bytes a reader consumes from one source.
const DefaultMaxSize int64 = 64 << 20

// FallbackFunc observes a failed strategy before the next one is tried.
type FallbackFunc func(readerName string, attempt Attempt)

// Config holds configuration for readers.
type Config struct {
	// Strategies replaces the reader's default chain when non-empty.
	Strategies []Strategy
	// MaxSize caps the bytes read from a source.
	MaxSize int64
	// OnFallback is called for every failed strategy.
	OnFallback FallbackFunc
}

// Option is a functional option for configuring readers.
type Option func(*Config)

// WithStrategies overrides the default extraction chain.
func WithStrategies(strategies ...Strategy) Option {
	return func(c *Config) {
		c.Strategies = strategies
	}
}

// WithMaxSize caps the number of bytes read from a source.
func WithMaxSize(n int64) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxSize = n
		}
	}
}

// WithFallbackHook registers an observer for failed strategies.
func WithFallbackHook(fn FallbackFunc) Option {
	return func(c *Config) {
		c.OnFallback = fn
	}
}

// Reader interface for different document readers.
type Reader interface {
	// ReadFromReader extracts the text of r. The name identifies the source.
	ReadFromReader(ctx context.Context, name string, r io.Reader) (*document.Document, error)

	// ReadFromFile extracts the text of the file at filePath.
	ReadFromFile(ctx context.Context, filePath string) (*document.Document, error)

	// Name returns the name of this reader.
	Name() string

	// SupportedExtensions returns the file extensions this reader supports.
	// Extensions include the dot prefix (e.g., ".pdf", ".txt").
	SupportedExtensions() []string
}
