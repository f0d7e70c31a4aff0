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
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"trpc.group/trpc-go/trpc-docstudio-go/history/inmemory"
	"trpc.group/trpc-go/trpc-docstudio-go/internal/modeltest"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/document/reader"
	_ "trpc.group/trpc-go/trpc-docstudio-go/knowledge/document/reader/text"
	"trpc.group/trpc-go/trpc-docstudio-go/model"
	"trpc.group/trpc-go/trpc-docstudio-go/prompt"
)

const twoParagraphs = "Alpha paragraph one.\n\nBravo paragraph two."

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// partReply answers with the chunk it was given so ordering can be checked.
func partReply(req *model.Request) (string, error) {
	content := req.Messages[0].Content
	switch {
	case strings.Contains(content, "Alpha"):
		return "summary of alpha", nil
	case strings.Contains(content, "Bravo"):
		return "summary of bravo", nil
	default:
		return "summary", nil
	}
}

func TestAnalyze_Sequential(t *testing.T) {
	path := writeFile(t, "notes.txt", twoParagraphs)
	m := modeltest.New(partReply)
	a := New(m, WithChunkSize(25))

	var events []Event
	res, err := a.Analyze(context.Background(), AnalyzeRequest{
		Path:  path,
		Tasks: []string{prompt.TaskFAQ, "Timeline"},
		Mode:  prompt.ModeCoT,
	}, func(ev Event) { events = append(events, ev) })
	require.NoError(t, err)

	assert.Equal(t, "notes.txt", res.FileName)
	assert.Equal(t, prompt.ModeCoT, res.Mode)
	assert.Equal(t, 2, res.Chunks)
	require.Len(t, res.Sections, 2)
	assert.Equal(t, "FAQ (Chain of Thought (CoT))", res.Sections[0].Key)
	assert.Equal(t, prompt.TaskFAQ, res.Sections[0].Task)
	assert.Equal(t, []string{"summary of alpha", "summary of bravo"}, res.Sections[0].Parts)
	assert.Equal(t, "Timeline (Chain of Thought (CoT))", res.Sections[1].Key)
	assert.Empty(t, res.ReportPath)

	reqs := m.Requests()
	require.Len(t, reqs, 4)
	faq, err := prompt.LookupTask(prompt.TaskFAQ)
	require.NoError(t, err)
	instruction, err := prompt.Combine(prompt.ModeCoT, faq.Prompt)
	require.NoError(t, err)
	assert.Equal(t, model.PromptWithContext(instruction, "Alpha paragraph one."), reqs[0].Messages[0].Content)
	assert.True(t, reqs[0].Stream)

	require.NotEmpty(t, events)
	assert.Equal(t, StageExtracting, events[0].Stage)
	assert.Equal(t, StageChunked, events[1].Stage)
	assert.Equal(t, 2, events[1].Chunks)
	assert.Equal(t, StageDone, events[len(events)-1].Stage)

	var generating []string
	var taskDone int
	for _, ev := range events {
		switch ev.Stage {
		case StageGenerating:
			generating = append(generating, ev.Message)
		case StageStreaming:
			assert.LessOrEqual(t, len([]rune(ev.Tail)), tailRunes)
		case StageTaskDone:
			taskDone++
		}
	}
	assert.Equal(t, []string{
		"FAQ (Chain of Thought (CoT)) - part 1/2",
		"FAQ (Chain of Thought (CoT)) - part 2/2",
		"Timeline (Chain of Thought (CoT)) - part 1/2",
		"Timeline (Chain of Thought (CoT)) - part 2/2",
	}, generating)
	assert.Equal(t, 2, taskDone)
}

func TestAnalyze_AllTasksByDefault(t *testing.T) {
	path := writeFile(t, "short.md", "One short paragraph.")
	a := New(modeltest.New(partReply), WithDefaultMode(prompt.ModeToT))
	res, err := a.Analyze(context.Background(), AnalyzeRequest{Path: path}, nil)
	require.NoError(t, err)
	require.Len(t, res.Sections, len(prompt.Tasks()))
	for i, task := range prompt.Tasks() {
		assert.Equal(t, task.Key, res.Sections[i].Task)
		assert.Equal(t, []string{"summary"}, res.Sections[i].Parts)
	}
	assert.Equal(t, prompt.ModeToT, res.Mode)
}

func TestAnalyze_Parallel(t *testing.T) {
	defer goleak.VerifyNone(t)

	var paragraphs []string
	for _, word := range []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"} {
		paragraphs = append(paragraphs, word+" paragraph text.")
	}
	path := writeFile(t, "many.txt", strings.Join(paragraphs, "\n\n"))
	m := modeltest.New(func(req *model.Request) (string, error) {
		content := req.Messages[0].Content
		idx := strings.LastIndex(content, "\n")
		return "about " + strings.Fields(content[idx+1:])[0], nil
	})
	a := New(m, WithChunkSize(25), WithParallelism(3))

	inFlight := 0
	res, err := a.Analyze(context.Background(), AnalyzeRequest{
		Path:  path,
		Tasks: []string{prompt.TaskBriefing},
	}, func(Event) {
		inFlight++
		assert.Equal(t, 1, inFlight, "progress must not be called concurrently")
		inFlight--
	})
	require.NoError(t, err)
	require.Len(t, res.Sections, 1)
	assert.Equal(t, []string{
		"about Alpha", "about Bravo", "about Charlie", "about Delta", "about Echo",
	}, res.Sections[0].Parts)
}

func TestAnalyze_PartFailureAborts(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := writeFile(t, "notes.txt", twoParagraphs)
	m := modeltest.New(func(req *model.Request) (string, error) {
		if strings.Contains(req.Messages[0].Content, "Bravo") {
			return "", errors.New("model overloaded")
		}
		return "ok", nil
	})
	for _, parallelism := range []int{1, 2} {
		a := New(m, WithChunkSize(25), WithParallelism(parallelism))
		_, err := a.Analyze(context.Background(), AnalyzeRequest{Path: path, Tasks: []string{"faq"}}, nil)
		require.Error(t, err)
		var apiErr *model.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Contains(t, err.Error(), "part 2/2")
		assert.Contains(t, apiErr.Message, "model overloaded")
	}
}

func TestAnalyze_ContinueOnError(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := writeFile(t, "notes.txt", twoParagraphs)
	m := modeltest.New(func(req *model.Request) (string, error) {
		if strings.Contains(req.Messages[0].Content, "Bravo") {
			return "", errors.New("model overloaded")
		}
		return "ok", nil
	})
	for _, parallelism := range []int{1, 2} {
		a := New(m, WithChunkSize(25), WithParallelism(parallelism), WithContinueOnError())
		res, err := a.Analyze(context.Background(), AnalyzeRequest{Path: path, Tasks: []string{"faq"}}, nil)
		require.NoError(t, err)
		require.Len(t, res.Sections, 1)
		parts := res.Sections[0].Parts
		require.Len(t, parts, 2)
		assert.Equal(t, "ok", parts[0])
		assert.True(t, strings.HasPrefix(parts[1], "Error: "), parts[1])
		assert.Contains(t, parts[1], "model overloaded")
	}
}

func TestAnalyze_ContinueOnErrorStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	path := writeFile(t, "notes.txt", twoParagraphs)
	m := modeltest.New(func(*model.Request) (string, error) {
		cancel()
		return "", errors.New("interrupted")
	})
	a := New(m, WithChunkSize(25), WithContinueOnError())
	_, err := a.Analyze(ctx, AnalyzeRequest{Path: path, Tasks: []string{"faq"}}, nil)
	require.Error(t, err)
}

func TestAnalyze_Errors(t *testing.T) {
	a := New(modeltest.New(partReply))
	ctx := context.Background()

	_, err := a.Analyze(ctx, AnalyzeRequest{Path: writeFile(t, "blank.txt", " \n\t ")}, nil)
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = a.Analyze(ctx, AnalyzeRequest{Path: writeFile(t, "data.xyz", "text")}, nil)
	assert.ErrorIs(t, err, reader.ErrUnsupportedFormat)

	path := writeFile(t, "ok.txt", "Some text.")
	_, err = a.Analyze(ctx, AnalyzeRequest{Path: path, Tasks: []string{"poem"}}, nil)
	assert.ErrorIs(t, err, prompt.ErrUnknownTask)

	_, err = a.Analyze(ctx, AnalyzeRequest{Path: path, Mode: "vibes"}, nil)
	assert.ErrorIs(t, err, prompt.ErrUnknownMode)

	_, err = a.Analyze(ctx, AnalyzeRequest{Path: filepath.Join(t.TempDir(), "missing.txt")}, nil)
	assert.Error(t, err)
}

func TestAnalyze_ReportAndHistory(t *testing.T) {
	path := writeFile(t, "notes.txt", "Body text.")
	store := inmemory.New()
	var written *Result
	a := New(modeltest.New(partReply),
		WithHistory(store),
		WithReportWriter(func(r *Result) (string, error) {
			written = r
			return "/reports/notes.docx", nil
		}),
	)

	var last Event
	res, err := a.Analyze(context.Background(), AnalyzeRequest{
		Path:  path,
		Tasks: []string{"faq", "dialogue"},
	}, func(ev Event) { last = ev })
	require.NoError(t, err)
	assert.Same(t, res, written)
	assert.Equal(t, "/reports/notes.docx", res.ReportPath)
	assert.Equal(t, "/reports/notes.docx", last.ReportPath)

	records, err := store.ListAnalyses(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "notes.txt", records[0].FileName)
	assert.Equal(t, []string{"faq", "dialogue"}, records[0].Tasks)
	assert.Equal(t, prompt.ModeStandard, records[0].Mode)

	failing := New(modeltest.New(partReply), WithReportWriter(func(*Result) (string, error) {
		return "", errors.New("disk full")
	}))
	_, err = failing.Analyze(context.Background(), AnalyzeRequest{Path: path, Tasks: []string{"faq"}}, nil)
	assert.ErrorContains(t, err, "disk full")
}

func TestLastRunes(t *testing.T) {
	assert.Equal(t, "abc", lastRunes("abc", 5))
	assert.Equal(t, "界!", lastRunes("你好世界!", 2))
}
