//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package modeltest provides an in-process model.Model for tests.
package modeltest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"trpc.group/trpc-go/trpc-docstudio-go/model"
)

// ReplyFunc computes the answer for one request. A non-nil error is
// delivered as Response.Error.
type ReplyFunc func(req *model.Request) (string, error)

// Echo answers with the last user message prefixed by "echo: ".
func Echo(req *model.Request) (string, error) {
	return "echo: " + req.Messages[len(req.Messages)-1].Content, nil
}

// Model streams the reply word by word, then sends a final response.
type Model struct {
	Name  string
	Reply ReplyFunc

	mu       sync.Mutex
	requests []*model.Request
}

// New creates a Model answering with reply.
func New(reply ReplyFunc) *Model {
	return &Model{Name: "stub-model", Reply: reply}
}

// GenerateContent implements model.Model.
func (m *Model) GenerateContent(ctx context.Context, request *model.Request) (<-chan *model.Response, error) {
	if request == nil {
		return nil, errors.New("stub model: request is nil")
	}
	m.mu.Lock()
	m.requests = append(m.requests, request)
	m.mu.Unlock()

	reply, replyErr := m.Reply(request)
	ch := make(chan *model.Response)
	go func() {
		defer close(ch)
		if replyErr != nil {
			send(ctx, ch, model.NewErrorResponse(m.Name, model.ErrorTypeAPIError, replyErr))
			return
		}
		if request.Stream {
			for _, word := range strings.SplitAfter(reply, " ") {
				partial := &model.Response{
					IsPartial: true,
					Choices:   []model.Choice{{Delta: model.Message{Role: model.RoleAssistant, Content: word}}},
				}
				if !send(ctx, ch, partial) {
					return
				}
			}
		}
		send(ctx, ch, &model.Response{
			Done:    true,
			Object:  model.ObjectTypeChatCompletion,
			Choices: []model.Choice{{Message: model.NewAssistantMessage(reply)}},
		})
	}()
	return ch, nil
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.Name, Provider: "stub"}
}

// Requests returns the requests received so far.
func (m *Model) Requests() []*model.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

func send(ctx context.Context, ch chan<- *model.Response, rsp *model.Response) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- rsp:
		return true
	}
}
