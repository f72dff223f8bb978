package abicache

import (
	"context"
	"errors"
	"fmt"

	"github.com/NilFoundation/abigate/abigate/internal/abi"
	"github.com/NilFoundation/abigate/abigate/internal/types"
)

var (
	// ErrCacheMiss means there is no record for the address. It is an expected outcome.
	ErrCacheMiss = errors.New("abi is not cached")
	// ErrStorage wraps failures of the storage medium itself, including corrupted records.
	ErrStorage = errors.New("abi storage failure")
)

// Store persists contract ABIs keyed by address. Records never expire; Put replaces any
// previous record for the same address atomically.
type Store interface {
	Get(ctx context.Context, address types.Address) (*abi.Description, error)
	Put(ctx context.Context, address types.Address, desc *abi.Description) error
	Close() error
}

func storageError(op string, address types.Address, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrStorage, op, address, err)
}

func decodeRecord(address types.Address, data []byte) (*abi.Description, error) {
	desc, err := abi.Parse(data)
	if err != nil {
		return nil, storageError("decode record of", address, err)
	}
	return desc, nil
}
