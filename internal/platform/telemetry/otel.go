// Package telemetry exports traces and metrics of the translator over OTLP
// and serves Prometheus metrics.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ShutdownTimeout bounds flushing buffered spans and metrics on exit.
const ShutdownTimeout = 5 * time.Second

// DefaultExportInterval is how often metrics are pushed when unset.
const DefaultExportInterval = 30 * time.Second

// Resource attribute keys describing the translator deployment.
const (
	AttrPrimaryProvider = attribute.Key("translator.primary_provider")
	AttrStorageDriver   = attribute.Key("translator.storage_driver")
)

// Config selects the collector and labels the exported resource.
type Config struct {
	Enabled      bool
	Endpoint     string
	ServiceName  string
	Version      string
	Environment  string
	SamplingRate float64

	// ExportInterval defaults to DefaultExportInterval.
	ExportInterval time.Duration

	PrimaryProvider string
	StorageDriver   string
}

// Pipeline is an installed export pipeline. The zero value exports nothing
// and shuts down cleanly.
type Pipeline struct {
	shutdowns []func(context.Context) error
}

// Start installs OTLP gRPC span and metric exporters as the global
// providers together with W3C trace context propagation. The collector is
// reached in plaintext. Disabled telemetry yields an empty Pipeline.
func Start(ctx context.Context, cfg *Config) (*Pipeline, error) {
	p := &Pipeline{}
	if !cfg.Enabled {
		return p, nil
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tp, err := newTracerProvider(ctx, cfg, res)
	if err != nil {
		return nil, err
	}
	p.shutdowns = append(p.shutdowns, tp.Shutdown)

	mp, err := newMeterProvider(ctx, cfg, res)
	if err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}
	p.shutdowns = append(p.shutdowns, mp.Shutdown)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return p, nil
}

func newResource(ctx context.Context, cfg *Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
		semconv.DeploymentEnvironment(cfg.Environment),
	}
	if cfg.PrimaryProvider != "" {
		attrs = append(attrs, AttrPrimaryProvider.String(cfg.PrimaryProvider))
	}
	if cfg.StorageDriver != "" {
		attrs = append(attrs, AttrStorageDriver.String(cfg.StorageDriver))
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(attrs...),
	)
	if err != nil {
		return nil, fmt.Errorf("describing telemetry resource: %w", err)
	}

	return res, nil
}

func newTracerProvider(ctx context.Context, cfg *Config, res *resource.Resource) (*trace.TracerProvider, error) {
	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("dialing span exporter %s: %w", cfg.Endpoint, err)
	}

	return trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(exp),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(cfg.SamplingRate))),
	), nil
}

func newMeterProvider(ctx context.Context, cfg *Config, res *resource.Resource) (*metric.MeterProvider, error) {
	exp, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("dialing metric exporter %s: %w", cfg.Endpoint, err)
	}

	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = DefaultExportInterval
	}

	return metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(exp, metric.WithInterval(interval))),
	), nil
}

// Shutdown flushes and stops the pipeline in reverse start order within
// ShutdownTimeout. Every stage is stopped even when an earlier one fails.
func (p *Pipeline) Shutdown(ctx context.Context) error {
	if len(p.shutdowns) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, ShutdownTimeout)
	defer cancel()

	var errs []error
	for _, stop := range slices.Backward(p.shutdowns) {
		if err := stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	p.shutdowns = nil

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("stopping telemetry: %w", err)
	}

	return nil
}
