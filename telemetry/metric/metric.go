//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package metric provides metrics collection for docstudio.
// It integrates with OpenTelemetry and exports over OTLP HTTP.
package metric

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"trpc.group/trpc-go/trpc-docstudio-go/telemetry/semconv/metrics"
)

// Resource defaults.
const (
	ServiceName      = "docstudio"
	ServiceVersion   = "v0.1.0"
	ServiceNamespace = "trpc-go"

	defaultEndpoint       = "localhost:4318"
	defaultExportInterval = 30 * time.Second
)

// instrumentSet holds every instrument created from one meter provider.
type instrumentSet struct {
	provider           metric.MeterProvider
	modelRequests      metric.Int64Counter
	modelDuration      metric.Float64Histogram
	documentChunks     metric.Int64Histogram
	extractionFallback metric.Int64Counter
	graphQueries       metric.Int64Counter
}

var current atomic.Pointer[instrumentSet]

func init() {
	if err := InitMeterProvider(noop.NewMeterProvider()); err != nil {
		panic(err)
	}
}

// InitMeterProvider creates the docstudio instruments on mp and makes them
// the ones the Record helpers report to.
func InitMeterProvider(mp metric.MeterProvider) error {
	if mp == nil {
		return fmt.Errorf("meter provider is nil")
	}
	set := &instrumentSet{provider: mp}
	var err error

	modelMeter := mp.Meter(metrics.MeterNameModel)
	if set.modelRequests, err = modelMeter.Int64Counter(
		metrics.MetricModelRequests,
		metric.WithDescription("Total number of model requests"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create model metric %s: %w", metrics.MetricModelRequests, err)
	}
	if set.modelDuration, err = modelMeter.Float64Histogram(
		metrics.MetricModelDuration,
		metric.WithDescription("Duration of model requests"),
		metric.WithUnit("s"),
	); err != nil {
		return fmt.Errorf("failed to create model metric %s: %w", metrics.MetricModelDuration, err)
	}

	docMeter := mp.Meter(metrics.MeterNameDocument)
	if set.documentChunks, err = docMeter.Int64Histogram(
		metrics.MetricDocumentChunks,
		metric.WithDescription("Number of chunks per analyzed document"),
		metric.WithUnit("{chunk}"),
	); err != nil {
		return fmt.Errorf("failed to create document metric %s: %w", metrics.MetricDocumentChunks, err)
	}
	if set.extractionFallback, err = docMeter.Int64Counter(
		metrics.MetricExtractionFallbacks,
		metric.WithDescription("Failed extraction strategies"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create document metric %s: %w", metrics.MetricExtractionFallbacks, err)
	}

	graphMeter := mp.Meter(metrics.MeterNameGraphRAG)
	if set.graphQueries, err = graphMeter.Int64Counter(
		metrics.MetricGraphRAGQueries,
		metric.WithDescription("Total number of GraphRAG queries"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create graphrag metric %s: %w", metrics.MetricGraphRAGQueries, err)
	}

	current.Store(set)
	return nil
}

// GetMeterProvider returns the meter provider the instruments belong to.
func GetMeterProvider() metric.MeterProvider {
	return current.Load().provider
}

func status(failed bool) attribute.KeyValue {
	if failed {
		return attribute.String(metrics.KeyStatus, metrics.StatusError)
	}
	return attribute.String(metrics.KeyStatus, metrics.StatusOK)
}

// RecordModelRequest reports one finished generation.
func RecordModelRequest(ctx context.Context, provider, model string, elapsed time.Duration, err error) {
	set := current.Load()
	attrs := metric.WithAttributes(
		attribute.String(metrics.KeyModelProvider, provider),
		attribute.String(metrics.KeyModelName, model),
		status(err != nil),
	)
	set.modelRequests.Add(ctx, 1, attrs)
	set.modelDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordDocumentChunks reports how many chunks a document produced.
func RecordDocumentChunks(ctx context.Context, extension string, n int) {
	current.Load().documentChunks.Record(ctx, int64(n),
		metric.WithAttributes(attribute.String(metrics.KeyReader, extension)))
}

// RecordExtractionFallback reports a failed extraction strategy.
func RecordExtractionFallback(ctx context.Context, reader, strategy string) {
	current.Load().extractionFallback.Add(ctx, 1, metric.WithAttributes(
		attribute.String(metrics.KeyReader, reader),
		attribute.String(metrics.KeyStrategy, strategy),
	))
}

// RecordGraphRAGQuery reports one GraphRAG query.
func RecordGraphRAGQuery(ctx context.Context, method string, failed bool) {
	current.Load().graphQueries.Add(ctx, 1, metric.WithAttributes(
		attribute.String(metrics.KeyGraphMethod, method),
		status(failed),
	))
}

// Start installs the process meter provider. When export is disabled the
// noop provider is used. The returned function flushes and shuts down.
func Start(ctx context.Context, opts ...Option) (func(context.Context) error, error) {
	o := newOptions(opts...)
	if !o.enabled {
		if err := InitMeterProvider(noop.NewMeterProvider()); err != nil {
			return nil, err
		}
		return func(context.Context) error { return nil }, nil
	}
	mp, err := NewMeterProvider(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if err := InitMeterProvider(mp); err != nil {
		_ = mp.Shutdown(ctx)
		return nil, err
	}
	return mp.Shutdown, nil
}

// NewMeterProvider creates an OTLP HTTP meter provider.
// The environment variables OTEL_EXPORTER_OTLP_METRICS_ENDPOINT and
// OTEL_EXPORTER_OTLP_ENDPOINT are used when no endpoint option is given.
func NewMeterProvider(ctx context.Context, opts ...Option) (*sdkmetric.MeterProvider, error) {
	o := newOptions(opts...)
	if o.metricsEndpoint == "" {
		o.metricsEndpoint = metricsEndpoint()
	}

	res, err := buildResource(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	metricExporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(o.metricsEndpoint),
		otlpmetrichttp.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
			sdkmetric.WithInterval(o.exportInterval))),
		sdkmetric.WithResource(res),
	), nil
}

func metricsEndpoint() string {
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	// otlpmetrichttp appends /v1/metrics.
	return defaultEndpoint
}

// Option is a function that configures meter options.
type Option func(*options)

type options struct {
	enabled            bool
	metricsEndpoint    string
	exportInterval     time.Duration
	serviceName        string
	serviceVersion     string
	serviceNamespace   string
	resourceAttributes []attribute.KeyValue
}

func newOptions(opts ...Option) *options {
	o := &options{
		enabled:          true,
		exportInterval:   defaultExportInterval,
		serviceName:      ServiceName,
		serviceVersion:   ServiceVersion,
		serviceNamespace: ServiceNamespace,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithEnabled turns export on or off. Start uses the noop provider when off.
func WithEnabled(enabled bool) Option {
	return func(opts *options) {
		opts.enabled = enabled
	}
}

// WithEndpoint sets the metrics endpoint (host and port) the exporter connects to.
// The provided endpoint should resemble "example.com:4318" (no scheme or path).
func WithEndpoint(endpoint string) Option {
	return func(opts *options) {
		opts.metricsEndpoint = endpoint
	}
}

// WithExportInterval sets the period of the periodic reader.
func WithExportInterval(d time.Duration) Option {
	return func(opts *options) {
		if d > 0 {
			opts.exportInterval = d
		}
	}
}

// WithServiceName overrides the service.name resource attribute.
func WithServiceName(serviceName string) Option {
	return func(opts *options) {
		opts.serviceName = serviceName
	}
}

// WithServiceVersion overrides the service.version resource attribute.
func WithServiceVersion(serviceVersion string) Option {
	return func(opts *options) {
		opts.serviceVersion = serviceVersion
	}
}

// WithResourceAttributes appends custom resource attributes.
func WithResourceAttributes(attrs ...attribute.KeyValue) Option {
	return func(opts *options) {
		opts.resourceAttributes = append(opts.resourceAttributes, attrs...)
	}
}

func buildResource(ctx context.Context, o *options) (*resource.Resource, error) {
	resourceOpts := []resource.Option{
		resource.WithAttributes(
			semconv.ServiceNamespace(o.serviceNamespace),
			semconv.ServiceName(o.serviceName),
			semconv.ServiceVersion(o.serviceVersion),
		),
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
	}
	if len(o.resourceAttributes) > 0 {
		resourceOpts = append(resourceOpts, resource.WithAttributes(o.resourceAttributes...))
	}
	return resource.New(ctx, resourceOpts...)
}
