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
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"trpc.group/trpc-go/trpc-docstudio-go/chat"
	"trpc.group/trpc-go/trpc-docstudio-go/graphrag"
	"trpc.group/trpc-go/trpc-docstudio-go/history"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/chunking"
	"trpc.group/trpc-go/trpc-docstudio-go/log"
	"trpc.group/trpc-go/trpc-docstudio-go/prompt"
	"trpc.group/trpc-go/trpc-docstudio-go/prompt/enhancer"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type catalogResponse struct {
	Tasks        []prompt.Task     `json:"tasks"`
	Modes        []prompt.Mode     `json:"modes"`
	Methods      []enhancer.Method `json:"methods"`
	Models       []string          `json:"models"`
	DefaultModel string            `json:"default_model,omitempty"`
	GraphMethods []graphrag.Method `json:"graph_methods"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, catalogResponse{
		Tasks:        prompt.Tasks(),
		Modes:        prompt.Modes(),
		Methods:      enhancer.Methods(),
		Models:       s.listModels(r.Context()),
		DefaultModel: s.defaultModel,
		GraphMethods: graphrag.Methods(),
	})
}

// listModels merges the configured models with the ones the provider
// reports, keeping the first occurrence of each name.
func (s *Server) listModels(ctx context.Context) []string {
	names := append([]string(nil), s.models...)
	if s.lister != nil {
		found, err := s.lister.ListModels(ctx)
		if err != nil {
			log.Warnf("studio: list models: %v", err)
		}
		names = append(names, found...)
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok || n == "" {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

type chunkRequest struct {
	Text      string `json:"text"`
	MaxLength int    `json:"max_length"`
}

type chunkResponse struct {
	Chunks []string `json:"chunks"`
	Count  int      `json:"count"`
}

func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	var req chunkRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	chunks := chunking.SplitText(req.Text, req.MaxLength)
	if chunks == nil {
		chunks = []string{}
	}
	respondJSON(w, http.StatusOK, chunkResponse{Chunks: chunks, Count: len(chunks)})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Model     string `json:"model"`
	Message   string `json:"message"`
	Stream    bool   `json:"stream"`
}

type chatResponse struct {
	SessionID string        `json:"session_id"`
	Reply     string        `json:"reply"`
	Session   *chat.Session `json:"session"`
	Error     string        `json:"error,omitempty"`
}

type deltaEvent struct {
	Text  string `json:"text"`
	Delta string `json:"delta"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if !req.Stream {
		sess, reply, err := s.chat.Send(r.Context(), req.SessionID, req.Model, req.Message, nil)
		if err != nil && sess == nil {
			respondError(w, err)
			return
		}
		rsp := chatResponse{SessionID: sess.ID, Reply: reply, Session: sess}
		status := http.StatusOK
		if err != nil {
			rsp.Error = err.Error()
			status = statusFor(err)
		}
		respondJSON(w, status, rsp)
		return
	}

	sse, ok := streamOrFail(w)
	if !ok {
		return
	}
	sess, reply, err := s.chat.Send(r.Context(), req.SessionID, req.Model, req.Message,
		func(text, delta string) {
			sse.send("delta", deltaEvent{Text: text, Delta: delta})
		})
	if err != nil && sess == nil {
		sse.sendError(err)
		return
	}
	rsp := chatResponse{SessionID: sess.ID, Reply: reply, Session: sess}
	if err != nil {
		rsp.Error = err.Error()
		sse.send("error", rsp)
		return
	}
	sse.send("done", rsp)
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.chat.List())
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	sess, err := s.chat.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	if err := s.chat.Delete(mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearChat(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.chat.Clear(id); err != nil {
		respondError(w, err)
		return
	}
	sess, err := s.chat.Get(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

type enhanceRequest struct {
	Prompt string `json:"prompt"`
	Method string `json:"method"`
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
	DryRun bool   `json:"dry_run"`
}

type enhanceResponse struct {
	Method string `json:"method"`
	Result string `json:"result"`
}

func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	var req enhanceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	// Rendering validates the input before any model is resolved.
	rendered, err := enhancer.New(nil, s.enhancerOpts...).Render(req.Prompt, req.Method)
	if err != nil {
		respondError(w, err)
		return
	}
	if req.DryRun {
		respondJSON(w, http.StatusOK, enhanceResponse{Method: req.Method, Result: rendered})
		return
	}
	m, err := s.resolveModel(req.Model)
	if err != nil {
		respondError(w, err)
		return
	}
	e := enhancer.New(m, s.enhancerOpts...)

	if !req.Stream {
		out, err := e.Enhance(r.Context(), req.Prompt, req.Method, nil)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, enhanceResponse{Method: req.Method, Result: out})
		return
	}
	sse, ok := streamOrFail(w)
	if !ok {
		return
	}
	out, err := e.Enhance(r.Context(), req.Prompt, req.Method, func(text, delta string) {
		sse.send("delta", deltaEvent{Text: text, Delta: delta})
	})
	if err != nil {
		sse.sendError(err)
		return
	}
	sse.send("done", enhanceResponse{Method: req.Method, Result: out})
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		respondJSON(w, http.StatusOK, []history.AnalysisRecord{})
		return
	}
	records, err := s.history.ListAnalyses(r.Context(), queryLimit(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

type graphQueryRequest struct {
	Query  string `json:"query"`
	Method string `json:"method"`
}

func (s *Server) handleGraphQuery(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		respondError(w, fmt.Errorf("graphrag: %w", errUnavailable))
		return
	}
	var req graphQueryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	method := graphrag.Method(req.Method)
	if req.Method == "" {
		method = graphrag.MethodLocal
	}
	res, err := s.runner.Query(r.Context(), req.Query, method)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

type presetItem struct {
	Index int `json:"index"`
	graphrag.Preset
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets := graphrag.Presets()
	items := make([]presetItem, len(presets))
	for i, p := range presets {
		items[i] = presetItem{Index: i, Preset: p}
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleRunPreset(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		respondError(w, fmt.Errorf("graphrag: %w", errUnavailable))
		return
	}
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		respondError(w, fmt.Errorf("%w: preset index: %v", errInvalidRequest, err))
		return
	}
	res, err := s.runner.RunPreset(r.Context(), index)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

type postprocessRequest struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

type postprocessResponse struct {
	Text string `json:"text"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	s.postprocess(w, r, (*graphrag.Postprocessor).Translate)
}

func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	s.postprocess(w, r, (*graphrag.Postprocessor).Refine)
}

func (s *Server) postprocess(
	w http.ResponseWriter,
	r *http.Request,
	run func(*graphrag.Postprocessor, context.Context, string) (string, error),
) {
	var req postprocessRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	m, err := s.resolveModel(req.Model)
	if err != nil {
		respondError(w, err)
		return
	}
	out, err := run(graphrag.NewPostprocessor(m, s.postOpts...), r.Context(), req.Text)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, postprocessResponse{Text: out})
}

func (s *Server) handleGraphHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		respondJSON(w, http.StatusOK, []history.QueryRecord{})
		return
	}
	records, err := s.history.ListQueries(r.Context(), queryLimit(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// queryLimit reads ?limit=, zero meaning the store default.
func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return history.Limit(n)
}
