package main

import (
	"context"
	"time"

	"github.com/tournevent/spring/internal/config"
	"github.com/tournevent/spring/internal/telemetry"
	"github.com/tournevent/spring/pkg/shipper"
	"github.com/tournevent/spring/pkg/shipper/spring"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultCarrier        = "spring"
	tracerShutdownTimeout = 5 * time.Second
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

// initTracer returns a nil tracer when tracing is disabled; clients then
// fall back to the global no-op provider.
func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return nil, func(context.Context) error { return nil }, nil
	}

	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.Attributes()...)
}

// shutdownTracer flushes pending spans on a fresh deadline. The command
// context is already cancelled by the time serve returns on a signal.
func shutdownTracer(shutdown func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
	defer cancel()
	return shutdown(ctx)
}

func initShipperRegistry(cfg *config.Config, logger *otelzap.Logger, tracer trace.Tracer) (*shipper.Registry, error) {
	clientConfig, err := cfg.SpringClientConfig()
	if err != nil {
		return nil, err
	}

	registry := shipper.NewRegistry()
	registry.Register(spring.New(spring.Config{
		ClientConfig: clientConfig,
		UseMock:      cfg.SpringUseMock,
	}, logger, tracer))

	return registry, nil
}
