//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package config defines the docstudio configuration and loads it from
// defaults, a YAML file, DOCSTUDIO_ environment variables and overrides.
package config

import (
	"time"

	"trpc.group/trpc-go/trpc-docstudio-go/graphrag"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/chunking"
	"trpc.group/trpc-go/trpc-docstudio-go/model"
	"trpc.group/trpc-go/trpc-docstudio-go/model/ollama"
	"trpc.group/trpc-go/trpc-docstudio-go/model/provider"
	"trpc.group/trpc-go/trpc-docstudio-go/prompt"
	"trpc.group/trpc-go/trpc-docstudio-go/prompt/enhancer"
)

// History drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config is the whole docstudio configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Model     ModelConfig     `koanf:"model"`
	Analyzer  AnalyzerConfig  `koanf:"analyzer"`
	Enhancer  EnhancerConfig  `koanf:"enhancer"`
	GraphRAG  GraphRAGConfig  `koanf:"graphrag"`
	History   HistoryConfig   `koanf:"history"`
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host          string        `koanf:"host"`
	Port          int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout   time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout  time.Duration `koanf:"write_timeout" validate:"gt=0"`
	UploadDir     string        `koanf:"upload_dir" validate:"required"`
	ReportDir     string        `koanf:"report_dir" validate:"required"`
	MaxUploadSize int64         `koanf:"max_upload_size" validate:"gt=0"`
}

// ModelConfig selects and tunes the chat model.
type ModelConfig struct {
	Provider      string        `koanf:"provider" validate:"oneof=ollama openai"`
	Host          string        `koanf:"host"`
	Name          string        `koanf:"name" validate:"required"`
	Available     []string      `koanf:"available"`
	Temperature   float64       `koanf:"temperature" validate:"min=0,max=2"`
	ContextWindow int           `koanf:"context_window" validate:"min=0"`
	Timeout       time.Duration `koanf:"timeout" validate:"min=0"`
	KeepAlive     time.Duration `koanf:"keep_alive" validate:"min=0"`
	RetryAttempts int           `koanf:"retry_attempts" validate:"min=0,max=10"`
	APIKey        string        `koanf:"api_key"`
}

// AnalyzerConfig tunes document analysis.
type AnalyzerConfig struct {
	ChunkSize   int    `koanf:"chunk_size" validate:"gt=0"`
	Parallelism int    `koanf:"parallelism" validate:"min=1,max=64"`
	DefaultMode string `koanf:"default_mode" validate:"oneof=standard cot tot got eot"`
}

// EnhancerConfig tunes prompt enhancement.
type EnhancerConfig struct {
	Audience string `koanf:"audience"`
}

// GraphRAGConfig configures the GraphRAG wrapper.
type GraphRAGConfig struct {
	Command        string        `koanf:"command" validate:"required"`
	Root           string        `koanf:"root" validate:"required"`
	ResultDir      string        `koanf:"result_dir"`
	Timeout        time.Duration `koanf:"timeout" validate:"gt=0"`
	ArtifactsDir   string        `koanf:"artifacts_dir"`
	TargetLanguage string        `koanf:"target_language"`
}

// HistoryConfig selects the history store.
type HistoryConfig struct {
	Driver string `koanf:"driver" validate:"oneof=memory sqlite"`
	Path   string `koanf:"path" validate:"required_if=Driver sqlite"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error fatal"`
	Format string `koanf:"format" validate:"oneof=console json"`
}

// TelemetryConfig configures metric export.
type TelemetryConfig struct {
	Enabled        bool          `koanf:"enabled"`
	Endpoint       string        `koanf:"endpoint"`
	ExportInterval time.Duration `koanf:"export_interval" validate:"min=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:          "0.0.0.0",
			Port:          7860,
			ReadTimeout:   30 * time.Second,
			WriteTimeout:  time.Hour,
			UploadDir:     "./uploads",
			ReportDir:     "./reports",
			MaxUploadSize: 100 << 20,
		},
		Model: ModelConfig{
			Provider:      ollama.ProviderName,
			Name:          prompt.DefaultModels[0],
			Available:     append([]string(nil), prompt.DefaultModels...),
			Temperature:   0.7,
			ContextWindow: 4096,
			Timeout:       300 * time.Second,
			RetryAttempts: 3,
		},
		Analyzer: AnalyzerConfig{
			ChunkSize:   chunking.DefaultMaxLength,
			Parallelism: 1,
			DefaultMode: prompt.ModeStandard,
		},
		Enhancer: EnhancerConfig{
			Audience: enhancer.DefaultAudience,
		},
		GraphRAG: GraphRAGConfig{
			Command:        graphrag.DefaultCommand,
			Root:           graphrag.DefaultRoot,
			ResultDir:      graphrag.DefaultResultDir,
			Timeout:        graphrag.DefaultTimeout,
			TargetLanguage: graphrag.DefaultTargetLanguage,
		},
		History: HistoryConfig{
			Driver: DriverMemory,
			Path:   "./docstudio.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			ExportInterval: 30 * time.Second,
		},
	}
}

const retryBase = 500 * time.Millisecond

// ProviderOptions maps the model section onto provider options.
func (c ModelConfig) ProviderOptions() []provider.Option {
	opts := []provider.Option{
		provider.WithModelOptions(map[string]any{
			"num_ctx":     c.ContextWindow,
			"temperature": c.Temperature,
		}),
		provider.WithRetry(uint64(c.RetryAttempts), retryBase),
	}
	if c.Host != "" {
		opts = append(opts, provider.WithBaseURL(c.Host))
	}
	if c.APIKey != "" {
		opts = append(opts, provider.WithAPIKey(c.APIKey))
	}
	if c.Timeout > 0 {
		opts = append(opts, provider.WithTimeout(c.Timeout))
	}
	if c.KeepAlive > 0 {
		opts = append(opts, provider.WithKeepAlive(c.KeepAlive))
	}
	return opts
}

// NewModel builds the named model with the configured provider. An empty
// name selects the configured default.
func (c ModelConfig) NewModel(name string) (model.Model, error) {
	if name == "" {
		name = c.Name
	}
	return provider.Model(c.Provider, name, c.ProviderOptions()...)
}
