//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package analyzer

import (
	"trpc.group/trpc-go/trpc-docstudio-go/history"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/chunking"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/document/reader"
	"trpc.group/trpc-go/trpc-docstudio-go/model"
)

// tailRunes is how much of a streaming answer a progress event carries.
const tailRunes = 50

// ReportWriter turns a finished result into a report file and returns its path.
type ReportWriter func(r *Result) (string, error)

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithChunkSize sets the chunk length in runes.
func WithChunkSize(n int) Option {
	return func(a *Analyzer) {
		a.chunkSize = n
	}
}

// WithParallelism processes up to n chunks of a task at once.
// Values below 2 keep processing sequential.
func WithParallelism(n int) Option {
	return func(a *Analyzer) {
		a.parallelism = n
	}
}

// WithDefaultMode sets the thinking mode used when a request names none.
func WithDefaultMode(mode string) Option {
	return func(a *Analyzer) {
		a.defaultMode = mode
	}
}

// WithGenerationConfig overrides the generation settings of every part.
func WithGenerationConfig(cfg model.GenerationConfig) Option {
	return func(a *Analyzer) {
		a.genConfig = cfg
	}
}

// WithReaderOptions passes options to the document readers.
func WithReaderOptions(opts ...reader.Option) Option {
	return func(a *Analyzer) {
		a.readerOpts = append(a.readerOpts, opts...)
	}
}

// WithReportWriter writes a report after every successful analysis.
func WithReportWriter(w ReportWriter) Option {
	return func(a *Analyzer) {
		a.reportWriter = w
	}
}

// WithHistory records every successful analysis in store.
func WithHistory(store history.Store) Option {
	return func(a *Analyzer) {
		a.history = store
	}
}

// WithContinueOnError stores a failed part as "Error: <reason>" and keeps
// going instead of aborting the analysis. Cancellation still aborts.
func WithContinueOnError() Option {
	return func(a *Analyzer) {
		a.continueOnError = true
	}
}

func defaultAnalyzer(m model.Model) *Analyzer {
	return &Analyzer{
		model:     m,
		chunkSize: chunking.DefaultMaxLength,
		genConfig: model.GenerationConfig{Stream: true},
	}
}
