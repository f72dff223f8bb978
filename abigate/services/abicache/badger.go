package abicache

import (
	"context"
	"errors"
	"fmt"

	"github.com/NilFoundation/abigate/abigate/internal/abi"
	"github.com/NilFoundation/abigate/abigate/internal/types"
	"github.com/dgraph-io/badger/v4"
)

const TablePrefixAbi = "abi:"

type Badger struct {
	db *badger.DB
}

var _ Store = new(Badger)

func NewBadger(path string) (*Badger, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", path, err)
	}
	return &Badger{db: db}, nil
}

// NewBadgerInMemory is meant for tests and one-shot CLI runs.
func NewBadgerInMemory() (*Badger, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &Badger{db: db}, nil
}

func (s *Badger) Get(ctx context.Context, address types.Address) (*abi.Description, error) {
	tx := s.db.NewTransaction(false)
	defer tx.Discard()

	item, err := tx.Get(makeKey(address))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, storageError("get", address, err)
	}
	data, err := item.ValueCopy(nil)
	if err != nil {
		return nil, storageError("copy value of", address, err)
	}
	return decodeRecord(address, data)
}

func (s *Badger) Put(ctx context.Context, address types.Address, desc *abi.Description) error {
	tx := s.db.NewTransaction(true)
	defer tx.Discard()

	if err := tx.Set(makeKey(address), desc.Raw()); err != nil {
		return storageError("put", address, err)
	}
	if err := tx.Commit(); err != nil {
		return storageError("commit", address, err)
	}
	return nil
}

func (s *Badger) Close() error {
	return s.db.Close()
}

func makeKey(address types.Address) []byte {
	return append([]byte(TablePrefixAbi), address.Bytes()...)
}
