package abigate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/NilFoundation/abigate/abigate/client"
	"github.com/NilFoundation/abigate/abigate/common/logging"
	"github.com/NilFoundation/abigate/abigate/internal/abi"
	"github.com/NilFoundation/abigate/abigate/internal/types"
	"github.com/NilFoundation/abigate/abigate/services/abicache"
	"github.com/NilFoundation/abigate/abigate/services/etherscan"
	"github.com/NilFoundation/abigate/abigate/services/invoker"
	"github.com/NilFoundation/abigate/abigate/services/resolver"
	"github.com/jonboulle/clockwork"
)

var logger = logging.NewLogger("abigate")

type Service struct {
	cfg      *Config
	store    abicache.Store
	resolver *resolver.Resolver
	invoker  *invoker.Invoker
	logger   logging.Logger
}

// NewService builds the storage selected by cfg and the Etherscan client. The transport is
// used for contract calls only.
func NewService(ctx context.Context, cfg *Config, transport client.Transport) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fetcher, err := etherscan.NewClient(cfg.EtherscanEndpoint, cfg.EtherscanApiKey)
	if err != nil {
		return nil, err
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}
	logger.Info().Str(logging.FieldStorage, cfg.Storage).Msg("ABI storage opened")

	s, err := newService(cfg, store, fetcher, transport, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	return s, nil
}

func newService(
	cfg *Config,
	store abicache.Store,
	fetcher resolver.Fetcher,
	transport client.Transport,
	logger logging.Logger,
) (*Service, error) {
	if cfg.MemoryCacheSize > 0 {
		var err error
		if store, err = abicache.WithLRU(store, cfg.MemoryCacheSize); err != nil {
			return nil, err
		}
	}
	if cfg.FetchConcurrency > 0 {
		fetcher = resolver.NewFetchQueue(fetcher, cfg.FetchConcurrency)
	}

	r, err := resolver.New(store, fetcher, clockwork.NewRealClock(), logger)
	if err != nil {
		return nil, err
	}
	inv, err := invoker.New(transport, logger)
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:      cfg,
		store:    store,
		resolver: r,
		invoker:  inv,
		logger:   logger,
	}, nil
}

func newStore(ctx context.Context, cfg *Config) (abicache.Store, error) {
	switch cfg.Storage {
	case StorageBadger:
		return abicache.NewBadger(cfg.DbPath)
	case StorageClickHouse:
		return abicache.NewClickHouse(ctx, abicache.ClickHouseConfig{
			Endpoint: cfg.DbEndpoint,
			Database: cfg.DbName,
			User:     cfg.DbUser,
			Password: cfg.DbPassword,
		})
	case StorageRedis:
		return abicache.NewRedis(ctx, abicache.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDb,
			KeyPrefix: cfg.RedisKeyPrefix,
		})
	case StorageFile:
		return abicache.NewFile(cfg.ArtifactsDir)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStorage, cfg.Storage)
}

func (s *Service) ResolveAbi(ctx context.Context, address types.Address) (*abi.Description, error) {
	return s.resolver.Resolve(ctx, address)
}

// CallFunction looks the function up by name and the number of args and calls it.
func (s *Service) CallFunction(
	ctx context.Context,
	address types.Address,
	name string,
	args []any,
	decode bool,
) (*abi.Member, *invoker.CallResult, error) {
	desc, err := s.resolver.Resolve(ctx, address)
	if err != nil {
		return nil, nil, err
	}
	member, err := abi.Find(desc, name, len(args))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s with %d arguments", err, name, len(args))
	}
	res, err := s.invoker.Call(ctx, address, member, args, decode)
	if err != nil {
		return nil, nil, err
	}
	return member, res, nil
}

func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.OwnEndpoint,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str(logging.FieldEndpoint, s.cfg.OwnEndpoint).
			Strs("corsOrigins", s.cfg.CorsOrigins).
			Msg("Server is running")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Service) Close() error {
	return s.store.Close()
}
