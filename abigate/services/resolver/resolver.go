package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/NilFoundation/abigate/abigate/common/logging"
	"github.com/NilFoundation/abigate/abigate/internal/abi"
	"github.com/NilFoundation/abigate/abigate/internal/telemetry/telattr"
	"github.com/NilFoundation/abigate/abigate/internal/types"
	"github.com/NilFoundation/abigate/abigate/services/abicache"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Fetcher retrieves the published ABI of a contract from the indexing service.
type Fetcher interface {
	FetchAbi(ctx context.Context, address types.Address) ([]byte, error)
}

// Resolver returns contract ABIs, going to the indexing service only on a cache miss.
// It never retries; concurrent resolutions of the same address may both fetch.
type Resolver struct {
	store   abicache.Store
	fetcher Fetcher
	clock   clockwork.Clock
	metrics *metrics
	logger  logging.Logger
}

func New(store abicache.Store, fetcher Fetcher, clock clockwork.Clock, logger logging.Logger) (*Resolver, error) {
	m, err := newMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver metrics: %w", err)
	}
	return &Resolver{
		store:   store,
		fetcher: fetcher,
		clock:   clock,
		metrics: m,
		logger:  logger,
	}, nil
}

// Resolve errors from the indexing service are returned as is. A failure to write the fetched
// ABI back to the cache is logged and does not fail the resolution.
func (r *Resolver) Resolve(ctx context.Context, address types.Address) (*abi.Description, error) {
	desc, err := r.store.Get(ctx, address)
	switch {
	case err == nil:
		r.logger.Debug().Stringer(logging.FieldContractAddress, address).Msg("Cache hit")
		r.metrics.cacheHit(ctx)
		return desc, nil
	case !errors.Is(err, abicache.ErrCacheMiss):
		return nil, err
	}

	r.logger.Debug().Stringer(logging.FieldContractAddress, address).Msg("Cache miss")
	r.metrics.cacheMiss(ctx)

	raw, err := r.fetch(ctx, address)
	if err != nil {
		return nil, err
	}

	desc, err = abi.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("indexing service returned invalid ABI for %s: %w", address, err)
	}

	if err := r.store.Put(ctx, address, desc); err != nil {
		r.logger.Error().Err(err).
			Stringer(logging.FieldContractAddress, address).
			Msg("Failed to write ABI to cache")
		r.metrics.writeBackFailed(ctx)
	}
	return desc, nil
}

func (r *Resolver) fetch(ctx context.Context, address types.Address) ([]byte, error) {
	r.logger.Info().Stringer(logging.FieldContractAddress, address).Msg("Fetching from indexing service...")

	start := r.clock.Now()
	done := r.metrics.fetch.Start()
	raw, err := r.fetcher.FetchAbi(ctx, address)
	done(ctx, telattr.Success(err == nil))

	level := zerolog.InfoLevel
	if err != nil {
		level = zerolog.WarnLevel
	}
	r.logger.WithLevel(level).Err(err).
		Stringer(logging.FieldContractAddress, address).
		Dur(logging.FieldDuration, r.clock.Since(start)).
		Msg("Indexing service request finished")
	return raw, err
}
