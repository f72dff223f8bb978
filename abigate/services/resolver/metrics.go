package resolver

import (
	"context"

	"github.com/NilFoundation/abigate/abigate/internal/telemetry"
)

const meterName = "github.com/NilFoundation/abigate/abigate/services/resolver"

type metrics struct {
	hits           telemetry.Counter
	misses         telemetry.Counter
	writeBackFails telemetry.Counter
	fetch          *telemetry.Measurer
}

func newMetrics() (*metrics, error) {
	meter := telemetry.NewMeter(meterName)

	hits, err := meter.Int64Counter("abigate.resolver.cache_hit")
	if err != nil {
		return nil, err
	}
	misses, err := meter.Int64Counter("abigate.resolver.cache_miss")
	if err != nil {
		return nil, err
	}
	writeBackFails, err := meter.Int64Counter("abigate.resolver.write_back_failed")
	if err != nil {
		return nil, err
	}
	fetch, err := telemetry.NewMeasurer(meter, "abigate.resolver.fetch")
	if err != nil {
		return nil, err
	}
	return &metrics{
		hits:           hits,
		misses:         misses,
		writeBackFails: writeBackFails,
		fetch:          fetch,
	}, nil
}

func (m *metrics) cacheHit(ctx context.Context) {
	m.hits.Add(ctx, 1)
}

func (m *metrics) cacheMiss(ctx context.Context) {
	m.misses.Add(ctx, 1)
}

func (m *metrics) writeBackFailed(ctx context.Context) {
	m.writeBackFails.Add(ctx, 1)
}
