//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package studio

import (
	"trpc.group/trpc-go/trpc-docstudio-go/analyzer"
	"trpc.group/trpc-go/trpc-docstudio-go/chat"
	"trpc.group/trpc-go/trpc-docstudio-go/graphrag"
	"trpc.group/trpc-go/trpc-docstudio-go/history"
	"trpc.group/trpc-go/trpc-docstudio-go/model"
	"trpc.group/trpc-go/trpc-docstudio-go/prompt/enhancer"
)

const (
	defaultUploadDir     = "./uploads"
	defaultReportDir     = "./reports"
	defaultMaxUploadSize = 100 << 20
)

// Option configures the Server instance.
type Option func(*Server)

// WithModelFactory sets how models are resolved by name.
func WithModelFactory(f chat.ModelFactory) Option {
	return func(s *Server) { s.factory = f }
}

// WithDefaultModel sets the model used when a request names none.
func WithDefaultModel(name string) Option {
	return func(s *Server) { s.defaultModel = name }
}

// WithModels sets the configured model names listed in the catalog.
func WithModels(names ...string) Option {
	return func(s *Server) { s.models = append(s.models, names...) }
}

// WithModelLister adds the models a provider reports to the catalog.
func WithModelLister(l model.Lister) Option {
	return func(s *Server) { s.lister = l }
}

// WithChatService overrides the chat service built from the model factory.
func WithChatService(svc *chat.Service) Option {
	return func(s *Server) { s.chat = svc }
}

// WithAnalyzerOptions appends options applied to every analyzer.
func WithAnalyzerOptions(opts ...analyzer.Option) Option {
	return func(s *Server) { s.analyzerOpts = append(s.analyzerOpts, opts...) }
}

// WithEnhancerOptions appends options applied to every enhancer.
func WithEnhancerOptions(opts ...enhancer.Option) Option {
	return func(s *Server) { s.enhancerOpts = append(s.enhancerOpts, opts...) }
}

// WithGraphRunner enables the GraphRAG endpoints.
func WithGraphRunner(r *graphrag.Runner) Option {
	return func(s *Server) { s.runner = r }
}

// WithPostprocessOptions appends options applied to every postprocessor.
func WithPostprocessOptions(opts ...graphrag.PostprocessOption) Option {
	return func(s *Server) { s.postOpts = append(s.postOpts, opts...) }
}

// WithArtifactsDir enables the graph statistics endpoints.
func WithArtifactsDir(dir string) Option {
	return func(s *Server) { s.artifactsDir = dir }
}

// WithHistory sets the store analyses and queries are listed from.
func WithHistory(store history.Store) Option {
	return func(s *Server) { s.history = store }
}

// WithUploadDir sets where uploaded documents are kept while analyzed.
func WithUploadDir(dir string) Option {
	return func(s *Server) {
		if dir != "" {
			s.uploadDir = dir
		}
	}
}

// WithReportDir sets where analysis reports are written and served from.
func WithReportDir(dir string) Option {
	return func(s *Server) {
		if dir != "" {
			s.reportDir = dir
		}
	}
}

// WithMaxUploadSize bounds the body of an analyze request.
func WithMaxUploadSize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadSize = n
		}
	}
}
