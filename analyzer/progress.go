//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package analyzer

import "sync"

// Stage identifies a progress checkpoint.
type Stage string

// Progress stages in the order they first occur.
const (
	StageExtracting  Stage = "extracting"
	StageChunked     Stage = "chunked"
	StageTaskStarted Stage = "task_started"
	StageGenerating  Stage = "generating"
	StageStreaming   Stage = "streaming"
	StageTaskDone    Stage = "task_done"
	StageDone        Stage = "done"
)

// Event is one progress notification.
type Event struct {
	Stage      Stage  `json:"stage"`
	Message    string `json:"message"`
	Task       string `json:"task,omitempty"`
	Part       int    `json:"part,omitempty"`
	Parts      int    `json:"parts,omitempty"`
	Chunks     int    `json:"chunks,omitempty"`
	Tail       string `json:"tail,omitempty"`
	ReportPath string `json:"report_path,omitempty"`
}

// Progress receives progress events.
type Progress func(Event)

// emitter serializes calls to a Progress.
type emitter struct {
	mu sync.Mutex
	fn Progress
}

func newEmitter(fn Progress) *emitter {
	return &emitter{fn: fn}
}

func (e *emitter) send(ev Event) {
	if e.fn == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fn(ev)
}
