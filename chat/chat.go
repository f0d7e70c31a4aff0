//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package chat keeps multi-turn conversations with the local models.
package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-docstudio-go/log"
	"trpc.group/trpc-go/trpc-docstudio-go/model"
)

// DefaultMaxTurns is how many turns a session keeps by default.
const DefaultMaxTurns = 20

// errorReplyPrefix starts the reply recorded for a failed turn.
const errorReplyPrefix = "Error: "

var (
	// ErrEmptyMessage is returned for a blank user message.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrSessionNotFound is returned for an unknown session ID.
	ErrSessionNotFound = errors.New("chat session not found")
	// ErrNoModel is returned when neither the request nor the service names a model.
	ErrNoModel = errors.New("no model selected")
)

// Turn is one user message and the reply to it.
type Turn struct {
	User      string    `json:"user"`
	Assistant string    `json:"assistant"`
	Model     string    `json:"model"`
	Failed    bool      `json:"failed,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is a conversation.
type Session struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Session) clone() *Session {
	c := *s
	c.Turns = slices.Clone(s.Turns)
	return &c
}

// ModelFactory returns the model registered under name.
type ModelFactory func(name string) (model.Model, error)

// Option configures a Service.
type Option func(*Service)

// WithMaxTurns bounds the turns kept per session. The oldest are dropped first.
func WithMaxTurns(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTurns = n
		}
	}
}

// WithDefaultModel sets the model used when a request names none.
func WithDefaultModel(name string) Option {
	return func(s *Service) {
		s.defaultModel = name
	}
}

// WithSystemPrompt sends prompt as a system message in front of every request.
func WithSystemPrompt(prompt string) Option {
	return func(s *Service) {
		s.systemPrompt = prompt
	}
}

// WithGenerationConfig overrides the generation settings.
func WithGenerationConfig(cfg model.GenerationConfig) Option {
	return func(s *Service) {
		s.genConfig = cfg
	}
}

// Service holds the sessions of one process.
type Service struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	factory      ModelFactory
	maxTurns     int
	defaultModel string
	systemPrompt string
	genConfig    model.GenerationConfig
}

// NewService creates a Service resolving models through factory.
func NewService(factory ModelFactory, opts ...Option) *Service {
	s := &Service{
		sessions:  make(map[string]*Session),
		factory:   factory,
		maxTurns:  DefaultMaxTurns,
		genConfig: model.GenerationConfig{Stream: true},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send adds message to the session and returns the updated session with the
// reply. A blank or unknown sessionID starts a new session. A model failure is
// kept in the session as an "Error: ..." reply and also returned.
func (s *Service) Send(
	ctx context.Context,
	sessionID, modelName, message string,
	onDelta model.DeltaFunc,
) (*Session, string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, "", ErrEmptyMessage
	}
	if modelName == "" {
		modelName = s.defaultModel
	}
	if modelName == "" {
		return nil, "", ErrNoModel
	}
	m, err := s.factory(modelName)
	if err != nil {
		return nil, "", fmt.Errorf("resolve model %s: %w", modelName, err)
	}

	sess := s.getOrCreate(sessionID, modelName)
	req := &model.Request{Messages: s.buildMessages(sess, message), GenerationConfig: s.genConfig}

	reply, genErr := model.Generate(ctx, m, req, onDelta)
	turn := Turn{User: message, Assistant: reply, Model: modelName, CreatedAt: time.Now()}
	if genErr != nil {
		log.WarnfContext(ctx, "chat: session %s model %s: %v", sess.ID, modelName, genErr)
		turn.Assistant = errorReplyPrefix + genErr.Error()
		turn.Failed = true
	}
	updated := s.appendTurn(sess.ID, modelName, turn)
	if genErr != nil {
		return updated, turn.Assistant, genErr
	}
	return updated, reply, nil
}

// getOrCreate returns a snapshot of the session, creating it when needed.
func (s *Service) getOrCreate(id, modelName string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok && id != "" {
		return sess.clone()
	}
	now := time.Now()
	sess := &Session{ID: uuid.NewString(), Model: modelName, CreatedAt: now, UpdatedAt: now}
	s.sessions[sess.ID] = sess
	return sess.clone()
}

func (s *Service) buildMessages(sess *Session, message string) []model.Message {
	msgs := make([]model.Message, 0, 2*len(sess.Turns)+2)
	if s.systemPrompt != "" {
		msgs = append(msgs, model.NewSystemMessage(s.systemPrompt))
	}
	for _, t := range sess.Turns {
		if t.Failed {
			continue
		}
		msgs = append(msgs, model.NewUserMessage(t.User), model.NewAssistantMessage(t.Assistant))
	}
	return append(msgs, model.NewUserMessage(message))
}

func (s *Service) appendTurn(id, modelName string, turn Turn) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		// Deleted while generating; keep the answer in a fresh session under the same ID.
		sess = &Session{ID: id, CreatedAt: turn.CreatedAt}
		s.sessions[id] = sess
	}
	sess.Turns = append(sess.Turns, turn)
	if over := len(sess.Turns) - s.maxTurns; over > 0 {
		sess.Turns = slices.Clone(sess.Turns[over:])
	}
	sess.Model = modelName
	sess.UpdatedAt = turn.CreatedAt
	return sess.clone()
}

// Get returns a snapshot of the session.
func (s *Service) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess.clone(), nil
}

// List returns snapshots of every session, most recently updated first.
func (s *Service) List() []*Session {
	s.mu.RLock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.clone())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}

// Clear drops the turns of a session and keeps the session.
func (s *Service) Clear(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.Turns = nil
	sess.UpdatedAt = time.Now()
	return nil
}

// Delete removes a session.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}
