package abicache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/NilFoundation/abigate/abigate/internal/abi"
	"github.com/NilFoundation/abigate/abigate/internal/types"
)

// File keeps one JSON document per contract in a directory: <dir>/abi-<address>.json.
type File struct {
	dir string
}

var _ Store = new(File)

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifacts dir: %w", err)
	}
	return &File{dir: dir}, nil
}

func (s *File) Path(address types.Address) string {
	return filepath.Join(s.dir, "abi-"+address.Hex()+".json")
}

func (s *File) Get(ctx context.Context, address types.Address) (*abi.Description, error) {
	data, err := os.ReadFile(s.Path(address))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, storageError("read", address, err)
	}
	return decodeRecord(address, data)
}

// Put writes to a temporary file first so readers never observe a partial record.
func (s *File) Put(ctx context.Context, address types.Address, desc *abi.Description) error {
	tmp, err := os.CreateTemp(s.dir, ".abi-*.tmp")
	if err != nil {
		return storageError("create temp file for", address, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(desc.Raw()); err != nil {
		tmp.Close()
		return storageError("write", address, err)
	}
	if err := tmp.Close(); err != nil {
		return storageError("close temp file for", address, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(address)); err != nil {
		return storageError("rename", address, err)
	}
	return nil
}

func (s *File) Close() error {
	return nil
}
