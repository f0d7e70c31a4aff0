//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package studio provides the docstudio HTTP API: chunking, chat, prompt
// enhancement, document analysis with downloadable reports and GraphRAG
// queries.
package studio

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"trpc.group/trpc-go/trpc-docstudio-go/analyzer"
	"trpc.group/trpc-go/trpc-docstudio-go/chat"
	"trpc.group/trpc-go/trpc-docstudio-go/graphrag"
	"trpc.group/trpc-go/trpc-docstudio-go/history"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/document/reader"
	"trpc.group/trpc-go/trpc-docstudio-go/log"
	"trpc.group/trpc-go/trpc-docstudio-go/model"
	"trpc.group/trpc-go/trpc-docstudio-go/prompt"
	"trpc.group/trpc-go/trpc-docstudio-go/prompt/enhancer"
)

var (
	errInvalidRequest = errors.New("invalid request")
	errNotFound       = errors.New("not found")
	errUnavailable    = errors.New("feature is not configured")
	errNoModelFactory = errors.New("no model factory configured")
)

// Server exposes the docstudio operations over HTTP.
type Server struct {
	router *mux.Router

	factory      chat.ModelFactory
	defaultModel string
	models       []string
	lister       model.Lister

	chat         *chat.Service
	analyzerOpts []analyzer.Option
	enhancerOpts []enhancer.Option

	runner       *graphrag.Runner
	postOpts     []graphrag.PostprocessOption
	artifactsDir string
	history      history.Store

	uploadDir     string
	reportDir     string
	maxUploadSize int64
}

// New creates a Server. The behaviour can be tweaked via functional options.
func New(opts ...Option) *Server {
	s := &Server{
		router:        mux.NewRouter(),
		uploadDir:     defaultUploadDir,
		reportDir:     defaultReportDir,
		maxUploadSize: defaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.factory == nil {
		s.factory = func(string) (model.Model, error) { return nil, errNoModelFactory }
	}
	if s.chat == nil {
		s.chat = chat.NewService(s.factory, chat.WithDefaultModel(s.defaultModel))
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Length", "Content-Type", "Content-Disposition"},
	})
	s.router.Use(c.Handler, loggingMiddleware)
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/catalog", s.handleCatalog).Methods(http.MethodGet)
	api.HandleFunc("/chunk", s.handleChunk).Methods(http.MethodPost)

	// Chat APIs.
	api.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	api.HandleFunc("/chat", s.handleListChats).Methods(http.MethodGet)
	api.HandleFunc("/chat/{id}", s.handleGetChat).Methods(http.MethodGet)
	api.HandleFunc("/chat/{id}", s.handleDeleteChat).Methods(http.MethodDelete)
	api.HandleFunc("/chat/{id}/clear", s.handleClearChat).Methods(http.MethodPost)

	api.HandleFunc("/enhance", s.handleEnhance).Methods(http.MethodPost)

	// Analysis APIs.
	api.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)
	api.HandleFunc("/analyses", s.handleListAnalyses).Methods(http.MethodGet)
	api.HandleFunc("/reports/{name}", s.handleReport).Methods(http.MethodGet)

	// GraphRAG APIs.
	api.HandleFunc("/graphrag/query", s.handleGraphQuery).Methods(http.MethodPost)
	api.HandleFunc("/graphrag/presets", s.handleListPresets).Methods(http.MethodGet)
	api.HandleFunc("/graphrag/presets/{index}", s.handleRunPreset).Methods(http.MethodPost)
	api.HandleFunc("/graphrag/translate", s.handleTranslate).Methods(http.MethodPost)
	api.HandleFunc("/graphrag/refine", s.handleRefine).Methods(http.MethodPost)
	api.HandleFunc("/graphrag/history", s.handleGraphHistory).Methods(http.MethodGet)
	api.HandleFunc("/graph/stats", s.handleGraphStats).Methods(http.MethodGet)
	api.HandleFunc("/graph/questions", s.handleGraphQuestions).Methods(http.MethodGet)

	// OPTIONS handlers to allow CORS pre-flight.
	preflight := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
	api.PathPrefix("/").HandlerFunc(preflight).Methods(http.MethodOptions)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debugf("studio: %s %s (%v)", r.Method, r.URL.Path, time.Since(start))
	})
}

// badRequestErrors are caller mistakes, answered with 400.
var badRequestErrors = []error{
	errInvalidRequest,
	chat.ErrEmptyMessage,
	chat.ErrNoModel,
	prompt.ErrUnknownMode,
	prompt.ErrUnknownTask,
	enhancer.ErrEmptyPrompt,
	enhancer.ErrUnknownMethod,
	reader.ErrUnsupportedFormat,
	reader.ErrFormatMismatch,
	analyzer.ErrEmptyDocument,
	graphrag.ErrEmptyQuery,
	graphrag.ErrInvalidMethod,
	graphrag.ErrEmptyText,
}

var notFoundErrors = []error{
	errNotFound,
	chat.ErrSessionNotFound,
	graphrag.ErrPresetNotFound,
}

func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return http.StatusNotFound
		}
	}
	if errors.Is(err, errUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Errorf("studio: encode response: %v", err)
	}
}

// respondError writes {"error": "..."} with the status mapped from err.
func respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Errorf("studio: %v", err)
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return nil
}

// sseWriter writes named server-sent events. It is safe for concurrent use.
type sseWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	return &sseWriter{w: w, flusher: flusher}, true
}

func (s *sseWriter) send(event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Errorf("studio: marshal %s event: %v", event, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data)
	s.flusher.Flush()
}

func (s *sseWriter) sendError(err error) {
	s.send("error", map[string]string{"error": err.Error()})
}

// streamOrFail opens an SSE stream, answering 500 when the writer cannot flush.
func streamOrFail(w http.ResponseWriter) (*sseWriter, bool) {
	sse, ok := newSSEWriter(w)
	if !ok {
		respondError(w, errors.New("streaming unsupported"))
	}
	return sse, ok
}
