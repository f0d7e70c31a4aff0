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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/document"
	idocument "trpc.group/trpc-go/trpc-docstudio-go/knowledge/document/internal/document"
	"trpc.group/trpc-go/trpc-docstudio-go/log"
	"trpc.group/trpc-go/trpc-docstudio-go/telemetry/metric"
)

// ChainReader is a Reader backed by a strategy chain. Format packages build
// one with their default chain.
type ChainReader struct {
	name       string
	extensions []string
	chain      Chain
	maxSize    int64
	onFallback FallbackFunc
}

// NewChainReader creates a ChainReader. Options may replace defaultChain.
func NewChainReader(name string, extensions []string, defaultChain Chain, opts ...Option) *ChainReader {
	cfg := &Config{MaxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(cfg)
	}
	chain := defaultChain
	if len(cfg.Strategies) > 0 {
		chain = cfg.Strategies
	}
	return &ChainReader{
		name:       name,
		extensions: extensions,
		chain:      chain,
		maxSize:    cfg.MaxSize,
		onFallback: cfg.OnFallback,
	}
}

// Name returns the name of this reader.
func (r *ChainReader) Name() string { return r.name }

// SupportedExtensions returns the file extensions this reader supports.
func (r *ChainReader) SupportedExtensions() []string { return r.extensions }

// Strategies returns the names of the chain, in order.
func (r *ChainReader) Strategies() []string {
	names := make([]string, 0, len(r.chain))
	for _, s := range r.chain {
		names = append(names, s.Name())
	}
	return names
}

// ReadFromFile reads the file and extracts its text.
func (r *ChainReader) ReadFromFile(ctx context.Context, filePath string) (*document.Document, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return r.ReadFromReader(ctx, filepath.Base(filePath), f)
}

// ReadFromReader extracts the text of src.
func (r *ChainReader) ReadFromReader(ctx context.Context, name string, src io.Reader) (*document.Document, error) {
	data, err := io.ReadAll(io.LimitReader(src, r.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	if int64(len(data)) > r.maxSize {
		return nil, fmt.Errorf("%s exceeds the %d byte limit", name, r.maxSize)
	}
	outcome, err := r.chain.Run(ctx, name, data, func(a Attempt) {
		log.Warnf("%s: strategy %s failed for %s: %v", r.name, a.Strategy, name, a.Err)
		metric.RecordExtractionFallback(ctx, r.name, a.Strategy)
		if r.onFallback != nil {
			r.onFallback(r.name, a)
		}
	})
	if err != nil {
		return nil, err
	}
	doc := idocument.CreateDocument(outcome.Text, name)
	doc.Metadata[document.MetaExtension] = strings.ToLower(filepath.Ext(name))
	doc.Metadata[document.MetaStrategy] = outcome.Strategy
	return doc, nil
}
