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
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"trpc.group/trpc-go/trpc-docstudio-go/graphrag"
	"trpc.group/trpc-go/trpc-docstudio-go/log"
	"trpc.group/trpc-go/trpc-docstudio-go/model"
	"trpc.group/trpc-go/trpc-docstudio-go/server/studio"
	"trpc.group/trpc-go/trpc-docstudio-go/telemetry/metric"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the studio HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	stopMetrics, err := metric.Start(ctx,
		metric.WithEnabled(cfg.Telemetry.Enabled),
		metric.WithEndpoint(cfg.Telemetry.Endpoint),
		metric.WithExportInterval(cfg.Telemetry.ExportInterval),
	)
	if err != nil {
		return fmt.Errorf("start metrics: %w", err)
	}
	defer func() {
		if err := stopMetrics(context.Background()); err != nil {
			log.Warnf("stop metrics: %v", err)
		}
	}()

	store, err := a.openHistory(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store)

	runner, err := a.newRunner(store)
	if err != nil {
		return err
	}

	opts := []studio.Option{
		studio.WithModelFactory(a.newModel),
		studio.WithDefaultModel(cfg.Model.Name),
		studio.WithModels(cfg.Model.Available...),
		studio.WithAnalyzerOptions(a.analyzerOptions()...),
		studio.WithEnhancerOptions(a.enhancerOptions()...),
		studio.WithGraphRunner(runner),
		studio.WithPostprocessOptions(graphrag.WithTargetLanguage(cfg.GraphRAG.TargetLanguage)),
		studio.WithArtifactsDir(cfg.GraphRAG.ArtifactsDir),
		studio.WithHistory(store),
		studio.WithUploadDir(cfg.Server.UploadDir),
		studio.WithReportDir(cfg.Server.ReportDir),
		studio.WithMaxUploadSize(cfg.Server.MaxUploadSize),
	}
	if m, err := a.newModel(cfg.Model.Name); err != nil {
		log.Warnf("default model %s unavailable: %v", cfg.Model.Name, err)
	} else if lister, ok := m.(model.Lister); ok {
		opts = append(opts, studio.WithModelLister(lister))
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      studio.New(opts...).Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.InfofContext(ctx, "docstudio listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warnf("server forced to shutdown: %v", err)
	}
	log.Info("server stopped")
	return nil
}
