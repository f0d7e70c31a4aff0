//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package ollama

import (
	"context"
	"net/http"
	"time"

	"github.com/ollama/ollama/api"
)

const (
	// OllamaHost is the environment variable consulted when no host is set.
	OllamaHost = "OLLAMA_HOST"

	defaultHost              = "http://localhost:11434"
	defaultChannelBufferSize = 256
	defaultTimeout           = 300 * time.Second
	defaultRetryAttempts     = 3
	defaultRetryBase         = 500 * time.Millisecond
)

// DefaultOptions are the model options sent when none are configured.
func DefaultOptions() map[string]any {
	return map[string]any{
		"num_ctx":     4096,
		"temperature": 0.7,
	}
}

// ChatRequestCallback is called before each chat request is sent.
type ChatRequestCallback func(ctx context.Context, req *api.ChatRequest)

// ChatResponseCallback is called for each chat response received.
type ChatResponseCallback func(ctx context.Context, req *api.ChatRequest, resp *api.ChatResponse)

type options struct {
	host                 string
	channelBufferSize    int
	options              map[string]any
	keepAlive            *api.Duration
	timeout              time.Duration
	retryAttempts        uint64
	retryBase            time.Duration
	httpClient           *http.Client
	chatRequestCallback  ChatRequestCallback
	chatResponseCallback ChatResponseCallback
}

// Option configures a Model.
type Option func(*options)

// WithHost sets the Ollama server address.
func WithHost(host string) Option {
	return func(o *options) {
		o.host = host
	}
}

// WithChannelBufferSize sets the buffer of the response channel.
// Non-positive values keep the default.
func WithChannelBufferSize(size int) Option {
	return func(o *options) {
		if size <= 0 {
			size = defaultChannelBufferSize
		}
		o.channelBufferSize = size
	}
}

// WithOptions replaces the model options, e.g. num_ctx or temperature.
func WithOptions(opts map[string]any) Option {
	return func(o *options) {
		o.options = opts
	}
}

// WithKeepAlive sets how long the server keeps the model loaded.
func WithKeepAlive(d time.Duration) Option {
	return func(o *options) {
		o.keepAlive = &api.Duration{Duration: d}
	}
}

// WithTimeout bounds a whole request, including a streamed body.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRetry sets how often a request that failed before producing any
// output is retried, and the base of the exponential backoff.
func WithRetry(attempts uint64, base time.Duration) Option {
	return func(o *options) {
		o.retryAttempts = attempts
		if base > 0 {
			o.retryBase = base
		}
	}
}

// WithHTTPClient overrides the HTTP client. WithTimeout is ignored then.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithChatRequestCallback registers a hook for outgoing requests.
func WithChatRequestCallback(fn ChatRequestCallback) Option {
	return func(o *options) {
		o.chatRequestCallback = fn
	}
}

// WithChatResponseCallback registers a hook for incoming responses.
func WithChatResponseCallback(fn ChatResponseCallback) Option {
	return func(o *options) {
		o.chatResponseCallback = fn
	}
}
