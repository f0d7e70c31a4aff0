//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides the in-memory history store.
package inmemory

import (
	"context"
	"slices"
	"sync"
	"time"

	"trpc.group/trpc-go/trpc-docstudio-go/history"
)

var _ history.Store = (*Store)(nil)

// defaultCapacity bounds each record list.
const defaultCapacity = 1000

// Option configures the store.
type Option func(*Store)

// WithCapacity bounds how many records of each kind are kept.
// The oldest records are dropped first.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// Store keeps records in process memory.
type Store struct {
	mu       sync.RWMutex
	capacity int
	nextID   int64
	queries  []history.QueryRecord
	analyses []history.AnalysisRecord
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveQuery implements history.Store.
func (s *Store) SaveQuery(_ context.Context, r history.QueryRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r.ID = s.nextID
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	s.queries = appendBounded(s.queries, r, s.capacity)
	return r.ID, nil
}

// ListQueries implements history.Store.
func (s *Store) ListQueries(_ context.Context, limit int) ([]history.QueryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newestFirst(s.queries, history.Limit(limit)), nil
}

// SaveAnalysis implements history.Store.
func (s *Store) SaveAnalysis(_ context.Context, r history.AnalysisRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r.ID = s.nextID
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.Tasks = slices.Clone(r.Tasks)
	s.analyses = appendBounded(s.analyses, r, s.capacity)
	return r.ID, nil
}

// ListAnalyses implements history.Store.
func (s *Store) ListAnalyses(_ context.Context, limit int) ([]history.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newestFirst(s.analyses, history.Limit(limit)), nil
}

// Close implements history.Store.
func (s *Store) Close() error { return nil }

func appendBounded[T any](list []T, v T, capacity int) []T {
	list = append(list, v)
	if len(list) > capacity {
		list = slices.Clone(list[len(list)-capacity:])
	}
	return list
}

func newestFirst[T any](list []T, limit int) []T {
	n := min(limit, len(list))
	out := make([]T, 0, n)
	for i := len(list) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, list[i])
	}
	return out
}
