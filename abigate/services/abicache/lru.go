package abicache

import (
	"context"
	"fmt"

	"github.com/NilFoundation/abigate/abigate/internal/abi"
	"github.com/NilFoundation/abigate/abigate/internal/types"
	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU keeps recently used descriptions in memory in front of another store.
type LRU struct {
	backend Store
	cache   *lru.Cache[types.Address, *abi.Description]
}

var _ Store = new(LRU)

func WithLRU(backend Store, size int) (*LRU, error) {
	cache, err := lru.New[types.Address, *abi.Description](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create abi cache: %w", err)
	}
	return &LRU{backend: backend, cache: cache}, nil
}

func (s *LRU) Get(ctx context.Context, address types.Address) (*abi.Description, error) {
	if desc, ok := s.cache.Get(address); ok {
		return desc, nil
	}
	desc, err := s.backend.Get(ctx, address)
	if err != nil {
		return nil, err
	}
	s.cache.Add(address, desc)
	return desc, nil
}

func (s *LRU) Put(ctx context.Context, address types.Address, desc *abi.Description) error {
	if err := s.backend.Put(ctx, address, desc); err != nil {
		return err
	}
	s.cache.Add(address, desc)
	return nil
}

func (s *LRU) Close() error {
	s.cache.Purge()
	return s.backend.Close()
}
