package telemetry

import (
	"context"
	"testing"

	"github.com/NilFoundation/abigate/abigate/internal/telemetry/telattr"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMeasurer(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("test")

	m, err := NewMeasurer(meter, "abigate.test.op")
	require.NoError(t, err)

	ctx := context.Background()
	m.Start()(ctx, telattr.Function("balanceOf"))
	m.Start()(ctx, telattr.Function("balanceOf"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := make(map[string]metricdata.Metrics)
	for _, metric := range rm.ScopeMetrics[0].Metrics {
		names[metric.Name] = metric
	}
	require.Contains(t, names, "abigate.test.op")
	require.Contains(t, names, "abigate.test.op.duration")

	sum, ok := names["abigate.test.op"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	require.Equal(t, int64(2), sum.DataPoints[0].Value)
}
