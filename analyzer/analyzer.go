//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package analyzer turns a document into report sections. Every report task
// is run over every chunk of the document under one thinking mode.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-docstudio-go/history"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/chunking"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/document"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/document/reader"
	"trpc.group/trpc-go/trpc-docstudio-go/log"
	"trpc.group/trpc-go/trpc-docstudio-go/model"
	"trpc.group/trpc-go/trpc-docstudio-go/prompt"
	"trpc.group/trpc-go/trpc-docstudio-go/telemetry/metric"
)

// ErrEmptyDocument is returned when a document has no extractable text.
var ErrEmptyDocument = errors.New("document has no text content")

// poolReleaseTimeout bounds how long Analyze waits for pool workers to exit.
const poolReleaseTimeout = 5 * time.Second

// AnalyzeRequest names the document and what to produce from it.
type AnalyzeRequest struct {
	// Path is the document on disk.
	Path string
	// Tasks are task keys or names. Empty means every task.
	Tasks []string
	// Mode is a thinking mode key or name. Empty means the default mode.
	Mode string
}

// Section is the output of one task, one part per chunk.
type Section struct {
	Key   string   `json:"key"`
	Task  string   `json:"task"`
	Parts []string `json:"parts"`
}

// Result is a finished analysis.
type Result struct {
	FileName   string    `json:"file_name"`
	Mode       string    `json:"mode"`
	Chunks     int       `json:"chunks"`
	Sections   []Section `json:"sections"`
	ReportPath string    `json:"report_path,omitempty"`
}

// Analyzer runs report tasks over documents with one model.
type Analyzer struct {
	model           model.Model
	chunkSize       int
	parallelism     int
	defaultMode     string
	genConfig       model.GenerationConfig
	readerOpts      []reader.Option
	reportWriter    ReportWriter
	history         history.Store
	// continueOnError keeps a failed part as an error line instead of aborting.
	continueOnError bool
}

// New creates an Analyzer that generates with m.
func New(m model.Model, opts ...Option) *Analyzer {
	a := defaultAnalyzer(m)
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze extracts, chunks and processes the document. progress, when set,
// is called synchronously and never concurrently.
func (a *Analyzer) Analyze(ctx context.Context, req AnalyzeRequest, progress Progress) (*Result, error) {
	tasks, err := resolveTasks(req.Tasks)
	if err != nil {
		return nil, err
	}
	modeKey := req.Mode
	if strings.TrimSpace(modeKey) == "" {
		modeKey = a.defaultMode
	}
	mode, err := prompt.LookupMode(modeKey)
	if err != nil {
		return nil, err
	}
	emit := newEmitter(progress)
	name := filepath.Base(req.Path)

	emit.send(Event{Stage: StageExtracting, Message: "Extracting text from " + name})
	doc, err := reader.Read(ctx, req.Path, a.readerOpts...)
	if err != nil {
		if errors.Is(err, reader.ErrNoText) {
			return nil, fmt.Errorf("%w: %s: %w", ErrEmptyDocument, name, err)
		}
		return nil, fmt.Errorf("extract %s: %w", name, err)
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDocument, name)
	}

	chunks, err := chunking.New(chunking.WithMaxLength(a.chunkSize)).Chunk(doc)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", name, err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDocument, name)
	}
	ext, _ := doc.Metadata[document.MetaExtension].(string)
	metric.RecordDocumentChunks(ctx, ext, len(chunks))
	log.DebugfContext(ctx, "analyzer: %s split into %d chunk(s)", name, len(chunks))
	emit.send(Event{
		Stage:   StageChunked,
		Chunks:  len(chunks),
		Message: fmt.Sprintf("Split %s into %d part(s)", name, len(chunks)),
	})

	var pool *ants.Pool
	if a.parallelism > 1 && len(chunks) > 1 {
		pool, err = ants.NewPool(a.parallelism)
		if err != nil {
			return nil, fmt.Errorf("failed to create chunk worker pool: %w", err)
		}
		defer func() {
			if err := pool.ReleaseTimeout(poolReleaseTimeout); err != nil {
				log.Warnf("analyzer: release worker pool: %v", err)
			}
		}()
	}

	result := &Result{FileName: doc.Name, Mode: mode.Key, Chunks: len(chunks)}
	for i, task := range tasks {
		instruction, err := prompt.Combine(mode.Key, task.Prompt)
		if err != nil {
			return nil, err
		}
		label := fmt.Sprintf("%s (%s)", task.Name, mode.Name)
		emit.send(Event{
			Stage:   StageTaskStarted,
			Task:    task.Key,
			Message: fmt.Sprintf("Processing %s (%d/%d)", label, i+1, len(tasks)),
		})
		parts, err := a.runTask(ctx, pool, job{
			task:        task,
			label:       label,
			instruction: instruction,
			chunks:      chunks,
			emit:        emit,
		})
		if err != nil {
			return nil, err
		}
		result.Sections = append(result.Sections, Section{Key: label, Task: task.Key, Parts: parts})
		emit.send(Event{Stage: StageTaskDone, Task: task.Key, Message: label + " done"})
	}

	if a.reportWriter != nil {
		if result.ReportPath, err = a.reportWriter(result); err != nil {
			return nil, fmt.Errorf("write report: %w", err)
		}
	}
	a.record(ctx, result)
	emit.send(Event{Stage: StageDone, Message: "Analysis complete", ReportPath: result.ReportPath})
	return result, nil
}

func (a *Analyzer) record(ctx context.Context, r *Result) {
	if a.history == nil {
		return
	}
	tasks := make([]string, 0, len(r.Sections))
	for _, s := range r.Sections {
		tasks = append(tasks, s.Task)
	}
	if _, err := a.history.SaveAnalysis(ctx, history.AnalysisRecord{
		FileName:   r.FileName,
		Mode:       r.Mode,
		Tasks:      tasks,
		Chunks:     r.Chunks,
		ReportPath: r.ReportPath,
	}); err != nil {
		log.WarnfContext(ctx, "analyzer: save history for %s: %v", r.FileName, err)
	}
}

// job is one task over all chunks.
type job struct {
	task        prompt.Task
	label       string
	instruction string
	chunks      []*document.Document
	emit        *emitter
}

// runTask returns one part per chunk, stored by chunk index.
func (a *Analyzer) runTask(ctx context.Context, pool *ants.Pool, j job) ([]string, error) {
	parts := make([]string, len(j.chunks))
	if pool == nil {
		for i := range j.chunks {
			text, err := a.generatePart(ctx, j, i)
			if err != nil {
				return nil, err
			}
			parts[i] = text
		}
		return parts, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup
	errCh := make(chan error, len(j.chunks))
	for i := range j.chunks {
		idx := i
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			text, err := a.generatePart(ctx, j, idx)
			if err != nil {
				errCh <- err
				cancel()
				return
			}
			parts[idx] = text
		})
		if err != nil {
			wg.Done()
			errCh <- fmt.Errorf("submit %s part %d: %w", j.label, idx+1, err)
			cancel()
			break
		}
	}
	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return nil, err
	}
	return parts, nil
}

func (a *Analyzer) generatePart(ctx context.Context, j job, idx int) (string, error) {
	n := len(j.chunks)
	j.emit.send(Event{
		Stage:   StageGenerating,
		Task:    j.task.Key,
		Part:    idx + 1,
		Parts:   n,
		Message: fmt.Sprintf("%s - part %d/%d", j.label, idx+1, n),
	})
	req := model.NewPromptRequest(model.PromptWithContext(j.instruction, j.chunks[idx].Content), a.genConfig)
	text, err := model.Generate(ctx, a.model, req, func(text, _ string) {
		j.emit.send(Event{
			Stage:   StageStreaming,
			Task:    j.task.Key,
			Part:    idx + 1,
			Parts:   n,
			Tail:    lastRunes(text, tailRunes),
			Message: fmt.Sprintf("%s - part %d", j.label, idx+1),
		})
	})
	if err != nil {
		err = fmt.Errorf("%s part %d/%d: %w", j.label, idx+1, n, err)
		if !a.continueOnError || ctx.Err() != nil {
			return "", err
		}
		log.WarnfContext(ctx, "analyzer: %v, keeping error as part text", err)
		return "Error: " + err.Error(), nil
	}
	return text, nil
}

func resolveTasks(keys []string) ([]prompt.Task, error) {
	if len(keys) == 0 {
		return prompt.Tasks(), nil
	}
	out := make([]prompt.Task, 0, len(keys))
	for _, k := range keys {
		t, err := prompt.LookupTask(k)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
