package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

const (
	defaultExportInterval = 60 * time.Second
	shutdownGrace         = 10 * time.Second
)

// ServiceVersion is reported on every exported span and metric. Release builds override it
// with -ldflags "-X .../telemetry.ServiceVersion=...".
var ServiceVersion = "dev"

func serviceResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// shutdownWithin gives an SDK provider at most shutdownGrace to flush, even when ctx allows more
func shutdownWithin(ctx context.Context, logger *zap.Logger, name string, shutdown func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownGrace)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Error("Telemetry provider shutdown failed", zap.String("provider", name), zap.Error(err))
		return fmt.Errorf("failed to shutdown %s provider: %w", name, err)
	}
	logger.Info("Telemetry provider stopped", zap.String("provider", name))
	return nil
}
