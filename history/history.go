//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package history records GraphRAG queries and document analyses.
package history

import (
	"context"
	"time"
)

// DefaultListLimit applies when List* is called with a non-positive limit.
const DefaultListLimit = 50

// QueryRecord is one GraphRAG query and its answer.
type QueryRecord struct {
	ID         int64     `json:"id"`
	Query      string    `json:"query"`
	Method     string    `json:"method"`
	Result     string    `json:"result"`
	Failed     bool      `json:"failed"`
	ResultPath string    `json:"result_path,omitempty"`
	Duration   float64   `json:"duration_seconds"`
	CreatedAt  time.Time `json:"created_at"`
}

// AnalysisRecord is one finished document analysis.
type AnalysisRecord struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"file_name"`
	Mode       string    `json:"mode"`
	Tasks      []string  `json:"tasks"`
	Chunks     int       `json:"chunks"`
	ReportPath string    `json:"report_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists history records. List methods return the newest first.
type Store interface {
	// SaveQuery stores r and returns its assigned ID.
	SaveQuery(ctx context.Context, r QueryRecord) (int64, error)
	// ListQueries returns at most limit query records.
	ListQueries(ctx context.Context, limit int) ([]QueryRecord, error)
	// SaveAnalysis stores r and returns its assigned ID.
	SaveAnalysis(ctx context.Context, r AnalysisRecord) (int64, error)
	// ListAnalyses returns at most limit analysis records.
	ListAnalyses(ctx context.Context, limit int) ([]AnalysisRecord, error)
	// Close releases the store.
	Close() error
}

// Limit normalizes a caller supplied list limit.
func Limit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
