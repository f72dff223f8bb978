package invoker

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	"github.com/NilFoundation/abigate/abigate/common/logging"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	logs := new(bytes.Buffer)

	d, err := NewDecoder(meter, logging.NewLoggerWithWriter("decoder", logs))
	require.NoError(t, err)

	raw := big.NewInt(1234)
	require.Same(t, raw, d.Decode(ctx, raw, "uint256"))
	require.Empty(t, logs.String())

	for _, tc := range []struct {
		raw      any
		wireType string
	}{
		{true, "bool"},
		{"hello", "string"},
		{raw, "uint128"},
		{[]byte{1}, "bytes"},
	} {
		require.Equal(t, tc.raw, d.Decode(ctx, tc.raw, tc.wireType))
	}

	records, err := logging.DecodeRecords(logs.Bytes())
	require.NoError(t, err)
	require.Len(t, records, 4)
	require.Equal(t, "warn", records[0]["level"])
	require.Equal(t, "bool", records[0][logging.FieldWireType])
	require.Equal(t, "uint128", records[2][logging.FieldWireType])

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)
	metric := rm.ScopeMetrics[0].Metrics[0]
	require.Equal(t, "abigate.decoder.unhandled_type", metric.Name)
	sum, ok := metric.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	require.Equal(t, int64(4), total)
}
