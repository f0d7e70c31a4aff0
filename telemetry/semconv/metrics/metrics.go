//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package metrics defines metric and attribute names reported by docstudio.
package metrics

const (
	// KeyModelName is the model a request was sent to.
	KeyModelName = "docstudio.model.name"
	// KeyModelProvider is the provider serving the model.
	KeyModelProvider = "docstudio.model.provider"
	// KeyStatus is "ok" or "error".
	KeyStatus = "docstudio.status"
	// KeyReader is the reader that ran the extraction chain.
	KeyReader = "docstudio.reader"
	// KeyStrategy is the extraction strategy that failed.
	KeyStrategy = "docstudio.strategy"
	// KeyGraphMethod is the GraphRAG search method.
	KeyGraphMethod = "docstudio.graphrag.method"

	// StatusOK marks a successful operation.
	StatusOK = "ok"
	// StatusError marks a failed operation.
	StatusError = "error"

	/////////////// model ////////////////////////

	// MetricModelRequests counts generation requests.
	MetricModelRequests = "docstudio.model.requests"
	// MetricModelDuration is the wall time of one generation.
	MetricModelDuration = "docstudio.model.duration"

	/////////////// documents ////////////////////////

	// MetricDocumentChunks records how many chunks one document was cut into.
	MetricDocumentChunks = "docstudio.document.chunks"
	// MetricExtractionFallbacks counts failed extraction strategies.
	MetricExtractionFallbacks = "docstudio.extraction.fallbacks"

	/////////////// graphrag ////////////////////////

	// MetricGraphRAGQueries counts GraphRAG queries.
	MetricGraphRAGQueries = "docstudio.graphrag.queries"

	////////////////////////// meters ////////////////////////

	// MeterNameModel is the meter for model calls.
	MeterNameModel = "docstudio.model"
	// MeterNameDocument is the meter for extraction and chunking.
	MeterNameDocument = "docstudio.document"
	// MeterNameGraphRAG is the meter for GraphRAG queries.
	MeterNameGraphRAG = "docstudio.graphrag"
)
