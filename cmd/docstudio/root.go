//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trpc.group/trpc-go/trpc-docstudio-go/analyzer"
	"trpc.group/trpc-go/trpc-docstudio-go/config"
	"trpc.group/trpc-go/trpc-docstudio-go/graphrag"
	"trpc.group/trpc-go/trpc-docstudio-go/history"
	"trpc.group/trpc-go/trpc-docstudio-go/history/inmemory"
	"trpc.group/trpc-go/trpc-docstudio-go/history/sqlite"
	"trpc.group/trpc-go/trpc-docstudio-go/log"
	"trpc.group/trpc-go/trpc-docstudio-go/model"
	"trpc.group/trpc-go/trpc-docstudio-go/prompt/enhancer"
)

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config

	// newModel resolves a model by name, the configured one when empty.
	newModel func(name string) (model.Model, error)
}

func newRootCmd() *cobra.Command {
	return (&app{}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docstudio",
		Short:         "Document analysis, prompt enhancement and GraphRAG studio",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to the YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		a.serveCmd(),
		a.chunkCmd(),
		a.extractCmd(),
		a.analyzeCmd(),
		a.enhanceCmd(),
		a.graphCmd(),
	)
	return root
}

// setup loads the configuration and configures logging. Logs go to stderr
// so command output on stdout stays clean.
func (a *app) setup() error {
	l := config.NewLoader()
	if a.logLevel != "" {
		l.Set("log.level", a.logLevel)
	}
	cfg, err := l.Load(a.configPath)
	if err != nil {
		return err
	}
	log.Configure(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	a.cfg = cfg
	if a.newModel == nil {
		a.newModel = cfg.Model.NewModel
	}
	return nil
}

func (a *app) openHistory(ctx context.Context) (history.Store, error) {
	switch a.cfg.History.Driver {
	case config.DriverSQLite:
		store, err := sqlite.New(ctx, a.cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		return store, nil
	default:
		return inmemory.New(), nil
	}
}

func (a *app) analyzerOptions() []analyzer.Option {
	return []analyzer.Option{
		analyzer.WithChunkSize(a.cfg.Analyzer.ChunkSize),
		analyzer.WithParallelism(a.cfg.Analyzer.Parallelism),
		analyzer.WithDefaultMode(a.cfg.Analyzer.DefaultMode),
	}
}

func (a *app) enhancerOptions() []enhancer.Option {
	return []enhancer.Option{enhancer.WithAudience(a.cfg.Enhancer.Audience)}
}

func (a *app) newRunner(store history.Store) (*graphrag.Runner, error) {
	g := a.cfg.GraphRAG
	opts := []graphrag.Option{
		graphrag.WithCommand(g.Command),
		graphrag.WithRoot(g.Root),
		graphrag.WithResultDir(g.ResultDir),
		graphrag.WithTimeout(g.Timeout),
	}
	if store != nil {
		opts = append(opts, graphrag.WithHistory(store))
	}
	return graphrag.NewRunner(opts...)
}

func closeStore(store history.Store) {
	if err := store.Close(); err != nil {
		log.Warnf("close history: %v", err)
	}
}
