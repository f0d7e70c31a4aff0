//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package ollama provides a model.Model backed by an Ollama server.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
	"github.com/sethvargo/go-retry"
	"trpc.group/trpc-go/trpc-docstudio-go/log"
	"trpc.group/trpc-go/trpc-docstudio-go/model"
)

// ProviderName is the registry name of this provider.
const ProviderName = "ollama"

// Model talks to the Ollama chat API.
type Model struct {
	name                 string
	host                 string
	client               *api.Client
	channelBufferSize    int
	options              map[string]any
	keepAlive            *api.Duration
	retryAttempts        uint64
	retryBase            time.Duration
	chatRequestCallback  ChatRequestCallback
	chatResponseCallback ChatResponseCallback
}

// New creates an Ollama model. The host comes from WithHost, then from the
// OLLAMA_HOST environment variable, then defaults to localhost:11434.
func New(name string, opts ...Option) *Model {
	o := &options{
		channelBufferSize: defaultChannelBufferSize,
		timeout:           defaultTimeout,
		retryAttempts:     defaultRetryAttempts,
		retryBase:         defaultRetryBase,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.host == "" {
		o.host = defaultHost
		if os.Getenv(OllamaHost) != "" {
			o.host = envconfig.Host().String()
		}
	}
	if o.options == nil {
		o.options = DefaultOptions()
	}
	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	m := &Model{
		name:                 name,
		host:                 o.host,
		channelBufferSize:    o.channelBufferSize,
		options:              o.options,
		keepAlive:            o.keepAlive,
		retryAttempts:        o.retryAttempts,
		retryBase:            o.retryBase,
		chatRequestCallback:  o.chatRequestCallback,
		chatResponseCallback: o.chatResponseCallback,
	}
	base, err := url.Parse(o.host)
	if err != nil {
		log.Warnf("ollama: invalid host %q: %v", o.host, err)
		base = &url.URL{Scheme: "http", Host: strings.TrimPrefix(defaultHost, "http://")}
	}
	m.client = api.NewClient(base, httpClient)
	return m
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.name, Provider: ProviderName}
}

// ListModels returns the names of the locally available models.
func (m *Model) ListModels(ctx context.Context) ([]string, error) {
	resp, err := m.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ollama: list models: %w", err)
	}
	names := make([]string, 0, len(resp.Models))
	for _, mdl := range resp.Models {
		names = append(names, mdl.Name)
	}
	return names, nil
}

// GenerateContent implements model.Model.
func (m *Model) GenerateContent(ctx context.Context, request *model.Request) (<-chan *model.Response, error) {
	if request == nil {
		return nil, errors.New("request cannot be nil")
	}
	chatReq, err := m.buildChatRequest(request)
	if err != nil {
		return nil, err
	}

	ch := make(chan *model.Response, m.channelBufferSize)
	go func() {
		defer close(ch)
		m.run(ctx, chatReq, ch)
	}()
	return ch, nil
}

func (m *Model) buildChatRequest(request *model.Request) (*api.ChatRequest, error) {
	if len(request.Messages) == 0 {
		return nil, errors.New("request has no messages")
	}
	messages := make([]api.Message, 0, len(request.Messages))
	for _, msg := range request.Messages {
		messages = append(messages, api.Message{Role: msg.Role.String(), Content: msg.Content})
	}

	opts := maps.Clone(m.options)
	if opts == nil {
		opts = map[string]any{}
	}
	cfg := request.GenerationConfig
	if cfg.Temperature != nil {
		opts["temperature"] = *cfg.Temperature
	}
	if cfg.TopP != nil {
		opts["top_p"] = *cfg.TopP
	}
	if cfg.MaxTokens != nil {
		opts["num_predict"] = *cfg.MaxTokens
	}
	if cfg.PresencePenalty != nil {
		opts["presence_penalty"] = *cfg.PresencePenalty
	}
	if cfg.FrequencyPenalty != nil {
		opts["frequency_penalty"] = *cfg.FrequencyPenalty
	}
	if len(cfg.Stop) > 0 {
		opts["stop"] = cfg.Stop
	}

	stream := cfg.Stream
	return &api.ChatRequest{
		Model:     m.name,
		Messages:  messages,
		Stream:    &stream,
		Options:   opts,
		KeepAlive: m.keepAlive,
	}, nil
}

// run performs the request, retrying failures that happen before any
// output arrived, and always ends with one final response.
func (m *Model) run(ctx context.Context, chatReq *api.ChatRequest, ch chan<- *model.Response) {
	if m.chatRequestCallback != nil {
		m.chatRequestCallback(ctx, chatReq)
	}
	var (
		id       = "chatcmpl-" + uuid.NewString()
		content  strings.Builder
		streamed bool
		final    *model.Response
	)
	onResponse := func(resp api.ChatResponse) error {
		if m.chatResponseCallback != nil {
			m.chatResponseCallback(ctx, chatReq, &resp)
		}
		if resp.Message.Content != "" {
			streamed = true
			content.WriteString(resp.Message.Content)
		}
		if resp.Done {
			final = convertChatResponse(resp)
			final.Choices[0].Message.Content = content.String()
			return nil
		}
		if resp.Message.Content == "" {
			return nil
		}
		partial := &model.Response{
			ID:        id,
			Object:    model.ObjectTypeChatCompletionChunk,
			Created:   resp.CreatedAt.Unix(),
			Model:     resp.Model,
			Timestamp: time.Now(),
			IsPartial: true,
			Choices: []model.Choice{{
				Delta: model.Message{Role: model.RoleAssistant, Content: resp.Message.Content},
			}},
		}
		return send(ctx, ch, partial)
	}

	backoff := retry.WithMaxRetries(m.retryAttempts, retry.NewExponential(m.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := m.client.Chat(ctx, chatReq, onResponse)
		if err != nil && !streamed && isRetryable(err) {
			log.Warnf("ollama: chat with %s failed, retrying: %v", m.name, err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		_ = send(ctx, ch, model.NewErrorResponse(m.name, model.ErrorTypeAPIError, err))
		return
	}
	if final == nil {
		final = &model.Response{
			Object:  model.ObjectTypeChatCompletion,
			Model:   m.name,
			Done:    true,
			Choices: []model.Choice{{Message: model.NewAssistantMessage(content.String())}},
		}
	}
	final.ID = id
	_ = send(ctx, ch, final)
}

// isRetryable reports whether err is a transport failure or a server error.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= http.StatusInternalServerError
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func convertChatResponse(resp api.ChatResponse) *model.Response {
	finish := resp.DoneReason
	if finish == "" {
		finish = "stop"
	}
	return &model.Response{
		Object:    model.ObjectTypeChatCompletion,
		Created:   resp.CreatedAt.Unix(),
		Model:     resp.Model,
		Timestamp: time.Now(),
		Done:      true,
		Choices: []model.Choice{{
			Message:      model.NewAssistantMessage(resp.Message.Content),
			FinishReason: &finish,
		}},
		Usage: &model.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}
}

func send(ctx context.Context, ch chan<- *model.Response, rsp *model.Response) error {
	select {
	case ch <- rsp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
