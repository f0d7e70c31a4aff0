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
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"trpc.group/trpc-go/trpc-docstudio-go/analyzer"
	"trpc.group/trpc-go/trpc-docstudio-go/graphrag/artifact"
	"trpc.group/trpc-go/trpc-docstudio-go/graphrag/questions"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/document/reader"
	"trpc.group/trpc-go/trpc-docstudio-go/log"
	"trpc.group/trpc-go/trpc-docstudio-go/model"
	"trpc.group/trpc-go/trpc-docstudio-go/report"
)

// multipartMemory is how much of a multipart form is held in memory.
const multipartMemory = 32 << 20

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

func (s *Server) resolveModel(name string) (model.Model, error) {
	if name == "" {
		name = s.defaultModel
	}
	if name == "" {
		return nil, fmt.Errorf("%w: no model selected", errInvalidRequest)
	}
	m, err := s.factory(name)
	if err != nil {
		return nil, fmt.Errorf("resolve model %s: %w", name, err)
	}
	return m, nil
}

type analyzeResponse struct {
	*analyzer.Result
	ReportURL string `json:"report_url,omitempty"`
}

func reportURL(path string) string {
	if path == "" {
		return ""
	}
	return "/api/reports/" + url.PathEscape(filepath.Base(path))
}

// handleAnalyze accepts a multipart upload with a "file" part, repeatable
// "tasks", and optional "mode" and "model" values. With ?stream=true the
// progress is sent as SSE "progress" events followed by "result" or "error".
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	path, cleanup, err := s.saveUpload(r)
	if err != nil {
		respondError(w, err)
		return
	}
	defer cleanup()

	m, err := s.resolveModel(r.FormValue("model"))
	if err != nil {
		respondError(w, err)
		return
	}
	opts := append([]analyzer.Option{}, s.analyzerOpts...)
	opts = append(opts, analyzer.WithReportWriter(func(res *analyzer.Result) (string, error) {
		return report.Write(s.reportDir, res)
	}))
	if s.history != nil {
		opts = append(opts, analyzer.WithHistory(s.history))
	}
	a := analyzer.New(m, opts...)
	req := analyzer.AnalyzeRequest{
		Path:  path,
		Tasks: r.MultipartForm.Value["tasks"],
		Mode:  r.FormValue("mode"),
	}

	if r.URL.Query().Get("stream") != "true" {
		res, err := a.Analyze(r.Context(), req, nil)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, analyzeResponse{Result: res, ReportURL: reportURL(res.ReportPath)})
		return
	}

	sse, ok := streamOrFail(w)
	if !ok {
		return
	}
	res, err := a.Analyze(r.Context(), req, func(ev analyzer.Event) {
		sse.send("progress", ev)
	})
	if err != nil {
		sse.sendError(err)
		return
	}
	sse.send("result", analyzeResponse{Result: res, ReportURL: reportURL(res.ReportPath)})
}

// saveUpload validates the uploaded document and stores it under a fresh
// directory of the upload dir, keeping its base name. cleanup removes it.
func (s *Server) saveUpload(r *http.Request) (path string, cleanup func(), err error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return "", nil, fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("%w: file: %w", errInvalidRequest, err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, err
	}
	name := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(header.Filename, `\`, "/")))
	if _, err := reader.DetectFormat(data, name); err != nil {
		return "", nil, err
	}

	dir := filepath.Join(s.uploadDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, err
	}
	cleanup = func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warnf("studio: remove upload %s: %v", dir, err)
		}
	}
	path = filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		respondError(w, fmt.Errorf("%w: report name %q", errInvalidRequest, name))
		return
	}
	f, err := os.Open(filepath.Join(s.reportDir, name))
	if errors.Is(err, fs.ErrNotExist) {
		respondError(w, fmt.Errorf("report %s: %w", name, errNotFound))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

type graphStatsResponse struct {
	Stats         *artifact.Stats `json:"stats"`
	IndexStats    map[string]any  `json:"index_stats,omitempty"`
	TopLevelNodes any             `json:"top_level_nodes,omitempty"`
}

func (s *Server) loadArtifacts() (*artifact.Artifacts, error) {
	if s.artifactsDir == "" {
		return nil, fmt.Errorf("graph artifacts: %w", errUnavailable)
	}
	a, err := artifact.Load(s.artifactsDir)
	if errors.Is(err, artifact.ErrGraphNotFound) {
		return nil, fmt.Errorf("%w: %w", errNotFound, err)
	}
	return a, err
}

func (s *Server) handleGraphStats(w http.ResponseWriter, r *http.Request) {
	a, err := s.loadArtifacts()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, graphStatsResponse{
		Stats:         artifact.Analyze(a.Graph, a.Entities),
		IndexStats:    a.Stats,
		TopLevelNodes: a.TopLevelNodes,
	})
}

func (s *Server) handleGraphQuestions(w http.ResponseWriter, r *http.Request) {
	a, err := s.loadArtifacts()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, questions.Generate(artifact.Analyze(a.Graph, a.Entities)))
}
