//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package sqlite provides a history store on SQLite (modernc.org/sqlite, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	// Register the modernc SQLite driver with database/sql.
	_ "modernc.org/sqlite"

	"trpc.group/trpc-go/trpc-docstudio-go/history"
)

var _ history.Store = (*Store)(nil)

const (
	driverName         = "sqlite"
	memoryPath         = ":memory:"
	defaultBusyTimeout = 5 * time.Second
)

const schema = `
CREATE TABLE IF NOT EXISTS graphrag_queries (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	query       TEXT    NOT NULL,
	method      TEXT    NOT NULL,
	result      TEXT    NOT NULL,
	failed      INTEGER NOT NULL DEFAULT 0,
	result_path TEXT    NOT NULL DEFAULT '',
	duration    REAL    NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS analyses (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	file_name   TEXT    NOT NULL,
	mode        TEXT    NOT NULL,
	tasks       TEXT    NOT NULL,
	chunks      INTEGER NOT NULL,
	report_path TEXT    NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_graphrag_queries_created ON graphrag_queries(created_at);
CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at);
`

// Option configures the store.
type Option func(*options)

type options struct {
	busyTimeout time.Duration
}

// WithBusyTimeout sets PRAGMA busy_timeout.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}

// Store is a history.Store backed by one SQLite database file.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at path and applies the schema.
func New(ctx context.Context, path string, opts ...Option) (*Store, error) {
	o := options{busyTimeout: defaultBusyTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: empty database path")
	}
	db, err := sql.Open(driverName, buildDSN(path, o.busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	if path == memoryPath {
		// Every connection to :memory: is a distinct database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func buildDSN(path string, busyTimeout time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	if path == memoryPath {
		return "file::memory:?" + q.Encode()
	}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	return "file:" + path + "?" + q.Encode()
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// SaveQuery implements history.Store.
func (s *Store) SaveQuery(ctx context.Context, r history.QueryRecord) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO graphrag_queries (query, method, result, failed, result_path, duration, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Query, r.Method, r.Result, r.Failed, r.ResultPath, r.Duration, r.CreatedAt.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("sqlite: save query: %w", err)
	}
	return res.LastInsertId()
}

// ListQueries implements history.Store.
func (s *Store) ListQueries(ctx context.Context, limit int) ([]history.QueryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, method, result, failed, result_path, duration, created_at
		 FROM graphrag_queries ORDER BY created_at DESC, id DESC LIMIT ?`, history.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("sqlite: list queries: %w", err)
	}
	defer rows.Close()

	var out []history.QueryRecord
	for rows.Next() {
		var (
			r       history.QueryRecord
			created int64
		)
		if err := rows.Scan(&r.ID, &r.Query, &r.Method, &r.Result, &r.Failed,
			&r.ResultPath, &r.Duration, &created); err != nil {
			return nil, fmt.Errorf("sqlite: scan query: %w", err)
		}
		r.CreatedAt = time.Unix(0, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveAnalysis implements history.Store.
func (s *Store) SaveAnalysis(ctx context.Context, r history.AnalysisRecord) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	tasks, err := json.Marshal(r.Tasks)
	if err != nil {
		return 0, fmt.Errorf("sqlite: encode tasks: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (file_name, mode, tasks, chunks, report_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.FileName, r.Mode, string(tasks), r.Chunks, r.ReportPath, r.CreatedAt.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("sqlite: save analysis: %w", err)
	}
	return res.LastInsertId()
}

// ListAnalyses implements history.Store.
func (s *Store) ListAnalyses(ctx context.Context, limit int) ([]history.AnalysisRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_name, mode, tasks, chunks, report_path, created_at
		 FROM analyses ORDER BY created_at DESC, id DESC LIMIT ?`, history.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("sqlite: list analyses: %w", err)
	}
	defer rows.Close()

	var out []history.AnalysisRecord
	for rows.Next() {
		var (
			r       history.AnalysisRecord
			tasks   string
			created int64
		)
		if err := rows.Scan(&r.ID, &r.FileName, &r.Mode, &tasks, &r.Chunks,
			&r.ReportPath, &created); err != nil {
			return nil, fmt.Errorf("sqlite: scan analysis: %w", err)
		}
		if err := json.Unmarshal([]byte(tasks), &r.Tasks); err != nil {
			return nil, fmt.Errorf("sqlite: decode tasks: %w", err)
		}
		r.CreatedAt = time.Unix(0, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close implements history.Store.
func (s *Store) Close() error {
	return s.db.Close()
}
