//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package provider

import (
	"net/http"
	"time"

	"trpc.group/trpc-go/trpc-docstudio-go/model/ollama"
	"trpc.group/trpc-go/trpc-docstudio-go/model/openai"
)

// Option configures how a model instance should be constructed.
type Option func(*Options)

// Options contains resolved settings used when constructing provider-backed models.
type Options struct {
	ProviderName      string            // ProviderName is the provider identifier passed to Model.
	ModelName         string            // ModelName is the concrete model identifier.
	APIKey            string            // APIKey holds the credential used by OpenAI-compatible endpoints.
	BaseURL           string            // BaseURL overrides the default endpoint when specified.
	HTTPClient        *http.Client      // HTTPClient replaces the provider's HTTP client.
	Timeout           time.Duration     // Timeout bounds a whole request.
	ChannelBufferSize *int              // ChannelBufferSize is the response channel buffer size.
	ModelOptions      map[string]any    // ModelOptions are runtime options such as num_ctx or temperature.
	KeepAlive         *time.Duration    // KeepAlive controls how long Ollama keeps the model loaded.
	RetryAttempts     *uint64           // RetryAttempts limits retries before the first token.
	RetryBase         time.Duration     // RetryBase is the first backoff interval.
	OpenAIOption      []openai.Option   // OpenAIOption stores additional OpenAI options.
	OllamaOption      []ollama.Option   // OllamaOption stores additional Ollama options.
	Headers           map[string]string // Headers are sent with every OpenAI-compatible request.
}

// WithAPIKey records the API key for the provider.
func WithAPIKey(key string) Option {
	return func(o *Options) {
		o.APIKey = key
	}
}

// WithBaseURL records the base URL for the provider.
func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

// WithHTTPClient sets the HTTP client for the provider.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = c
	}
}

// WithTimeout bounds a whole request.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithChannelBufferSize overrides the response channel buffer size.
func WithChannelBufferSize(size int) Option {
	return func(o *Options) {
		o.ChannelBufferSize = &size
	}
}

// WithModelOptions sets runtime model options, e.g. num_ctx.
func WithModelOptions(opts map[string]any) Option {
	return func(o *Options) {
		o.ModelOptions = opts
	}
}

// WithKeepAlive sets how long Ollama keeps the model in memory.
func WithKeepAlive(d time.Duration) Option {
	return func(o *Options) {
		o.KeepAlive = &d
	}
}

// WithRetry sets the retry policy for requests failing before any output.
func WithRetry(attempts uint64, base time.Duration) Option {
	return func(o *Options) {
		o.RetryAttempts = &attempts
		o.RetryBase = base
	}
}

// WithHeaders appends static HTTP headers for OpenAI-compatible providers.
func WithHeaders(headers map[string]string) Option {
	return func(o *Options) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		for k, v := range headers {
			o.Headers[k] = v
		}
	}
}

// WithOpenAIOption appends raw options for the OpenAI provider.
func WithOpenAIOption(opt ...openai.Option) Option {
	return func(o *Options) {
		o.OpenAIOption = append(o.OpenAIOption, opt...)
	}
}

// WithOllamaOption appends raw options for the Ollama provider.
func WithOllamaOption(opt ...ollama.Option) Option {
	return func(o *Options) {
		o.OllamaOption = append(o.OllamaOption, opt...)
	}
}
