package internal

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics installs a global meter provider feeding the OTLP exporter and/or the Prometheus
// registry served on /metrics. Without either, the no-op provider stays in place.
func InitMetrics(ctx context.Context, config *Config) error {
	if config == nil {
		return nil
	}

	var readers []sdkmetric.Reader
	if config.ExportMetrics {
		exporter, err := newMetricGrpcExporter(ctx, config)
		if err != nil {
			return fmt.Errorf("failed to initialize exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(config.exportInterval())))
	}
	if config.PrometheusPort != 0 {
		reader, err := NewPrometheusReader(prometheus.DefaultRegisterer)
		if err != nil {
			return fmt.Errorf("failed to initialize prometheus reader: %w", err)
		}
		readers = append(readers, reader)
	}
	if len(readers) == 0 {
		return nil
	}

	mp, err := NewMeterProvider(config, readers...)
	if err != nil {
		return fmt.Errorf("failed to initialize metric provider: %w", err)
	}

	otel.SetMeterProvider(mp)
	return nil
}

func ShutdownMetrics(ctx context.Context) {
	mp, ok := otel.GetMeterProvider().(*sdkmetric.MeterProvider)
	if !ok {
		// mb metrics were not initialized
		return
	}
	// nothing to do with the error
	_ = mp.Shutdown(context.WithoutCancel(ctx))
}

func newMetricGrpcExporter(ctx context.Context, config *Config) (sdkmetric.Exporter, error) {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
	if config.GrpcEndpoint != "" {
		opts = append(opts, otlpmetricgrpc.WithEndpoint(config.GrpcEndpoint))
	}
	return otlpmetricgrpc.New(ctx, opts...)
}

// NewPrometheusReader exposes otel instruments through reg.
func NewPrometheusReader(reg prometheus.Registerer) (sdkmetric.Reader, error) {
	return otelprom.New(otelprom.WithRegisterer(reg))
}

func NewMeterProvider(config *Config, readers ...sdkmetric.Reader) (*sdkmetric.MeterProvider, error) {
	res, err := NewResource(config)
	if err != nil {
		return nil, err
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, r := range readers {
		opts = append(opts, sdkmetric.WithReader(r))
	}
	return sdkmetric.NewMeterProvider(opts...), nil
}
