//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package provider provides a unified interface for constructing model.Model instances from different providers.
package provider

import (
	"fmt"
	"net/http"
	"sort"
	"sync"

	openaiopt "github.com/openai/openai-go/option"
	"trpc.group/trpc-go/trpc-docstudio-go/model"
	"trpc.group/trpc-go/trpc-docstudio-go/model/ollama"
	"trpc.group/trpc-go/trpc-docstudio-go/model/openai"
)

func init() {
	Register(ollama.ProviderName, ollamaProvider)
	Register(openai.ProviderName, openaiProvider)
}

// Provider builds a model.Model instance.
type Provider func(opts *Options) (model.Model, error)

var (
	providersMu sync.RWMutex                // providersMu guards providers access.
	providers   = make(map[string]Provider) // providers stores provider name to provider mappings.
)

// Register registers a provider by name.
func Register(name string, provider Provider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = provider
}

// Get returns the provider by name or nil if not found.
func Get(name string) (Provider, bool) {
	providersMu.RLock()
	defer providersMu.RUnlock()
	provider, ok := providers[name]
	return provider, ok
}

// Names returns the registered provider names, sorted.
func Names() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Model constructs a model.Model with the given provider name, model name and options.
func Model(providerName, modelName string, opt ...Option) (model.Model, error) {
	opts := &Options{
		ProviderName: providerName,
		ModelName:    modelName,
	}
	for _, o := range opt {
		o(opts)
	}
	if modelName == "" {
		return nil, fmt.Errorf("provider %s: model name is required", providerName)
	}
	provider, ok := Get(providerName)
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerName)
	}
	return provider(opts)
}

// ollamaProvider builds an Ollama model instance using the resolved options.
func ollamaProvider(opts *Options) (model.Model, error) {
	var res []ollama.Option
	if opts.BaseURL != "" {
		res = append(res, ollama.WithHost(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		res = append(res, ollama.WithHTTPClient(opts.HTTPClient))
	}
	if opts.Timeout > 0 {
		res = append(res, ollama.WithTimeout(opts.Timeout))
	}
	if opts.ChannelBufferSize != nil {
		res = append(res, ollama.WithChannelBufferSize(*opts.ChannelBufferSize))
	}
	if len(opts.ModelOptions) > 0 {
		res = append(res, ollama.WithOptions(opts.ModelOptions))
	}
	if opts.KeepAlive != nil {
		res = append(res, ollama.WithKeepAlive(*opts.KeepAlive))
	}
	if opts.RetryAttempts != nil {
		res = append(res, ollama.WithRetry(*opts.RetryAttempts, opts.RetryBase))
	}
	res = append(res, opts.OllamaOption...)
	return ollama.New(opts.ModelName, res...), nil
}

// openaiProvider builds an OpenAI-compatible model instance using the resolved options.
func openaiProvider(opts *Options) (model.Model, error) {
	var res []openai.Option
	if opts.APIKey != "" {
		res = append(res, openai.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		res = append(res, openai.WithBaseURL(opts.BaseURL))
	}
	switch {
	case opts.HTTPClient != nil:
		res = append(res, openai.WithHTTPClient(opts.HTTPClient))
	case opts.Timeout > 0:
		res = append(res, openai.WithHTTPClient(&http.Client{Timeout: opts.Timeout}))
	}
	if opts.ChannelBufferSize != nil {
		res = append(res, openai.WithChannelBufferSize(*opts.ChannelBufferSize))
	}
	if len(opts.ModelOptions) > 0 {
		res = append(res, openai.WithExtraFields(map[string]any{"options": opts.ModelOptions}))
	}
	for k, v := range opts.Headers {
		res = append(res, openai.WithOpenAIOptions(openaiopt.WithHeader(k, v)))
	}
	if opts.RetryAttempts != nil {
		res = append(res, openai.WithOpenAIOptions(openaiopt.WithMaxRetries(int(*opts.RetryAttempts))))
	}
	res = append(res, opts.OpenAIOption...)
	return openai.New(opts.ModelName, res...), nil
}
