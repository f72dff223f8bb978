package abicache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/NilFoundation/abigate/abigate/internal/abi"
	"github.com/NilFoundation/abigate/abigate/internal/types"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	balanceOfAbi   = `[{"type":"function","name":"balanceOf","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"}]`
	totalSupplyAbi = `[{"type":"function","name":"totalSupply","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"}]`
)

type SuiteStore struct {
	suite.Suite

	newStore func(t *testing.T) Store
	store    Store
	ctx      context.Context
}

func (s *SuiteStore) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore(s.T())
}

func (s *SuiteStore) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *SuiteStore) parse(raw string) *abi.Description {
	s.T().Helper()
	desc, err := abi.Parse([]byte(raw))
	s.Require().NoError(err)
	return desc
}

func (s *SuiteStore) TestMiss() {
	_, err := s.store.Get(s.ctx, types.HexToAddress("0x01"))
	s.Require().ErrorIs(err, ErrCacheMiss)
	s.Require().NotErrorIs(err, ErrStorage)
}

func (s *SuiteStore) TestRoundTrip() {
	address := types.HexToAddress("0xABCDEF0123456789000000000000000000000001")
	s.Require().NoError(s.store.Put(s.ctx, address, s.parse(balanceOfAbi)))

	desc, err := s.store.Get(s.ctx, address)
	s.Require().NoError(err)
	s.Require().Equal([]byte(balanceOfAbi), desc.Raw())
	s.Require().Len(desc.Functions(), 1)

	_, err = s.store.Get(s.ctx, types.HexToAddress("0x02"))
	s.Require().ErrorIs(err, ErrCacheMiss)
}

func (s *SuiteStore) TestOverwrite() {
	address := types.HexToAddress("0x03")
	s.Require().NoError(s.store.Put(s.ctx, address, s.parse(balanceOfAbi)))
	s.Require().NoError(s.store.Put(s.ctx, address, s.parse(totalSupplyAbi)))

	desc, err := s.store.Get(s.ctx, address)
	s.Require().NoError(err)
	s.Require().Equal([]byte(totalSupplyAbi), desc.Raw())
}

func (s *SuiteStore) TestConcurrentWriters() {
	address := types.HexToAddress("0x04")
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			raw := balanceOfAbi
			if i%2 == 0 {
				raw = totalSupplyAbi
			}
			desc, err := abi.Parse([]byte(raw))
			if err == nil {
				err = s.store.Put(s.ctx, address, desc)
			}
			s.NoError(err)
		}()
	}
	wg.Wait()

	desc, err := s.store.Get(s.ctx, address)
	s.Require().NoError(err)
	s.Require().Contains([]string{balanceOfAbi, totalSupplyAbi}, string(desc.Raw()))
}

func TestBadger(t *testing.T) {
	t.Parallel()

	suite.Run(t, &SuiteStore{newStore: func(t *testing.T) Store {
		t.Helper()
		store, err := NewBadger(t.TempDir() + "/abigate.db")
		if err != nil {
			t.Fatal(err)
		}
		return store
	}})
}

func TestFile(t *testing.T) {
	t.Parallel()

	suite.Run(t, &SuiteStore{newStore: func(t *testing.T) Store {
		t.Helper()
		store, err := NewFile(t.TempDir() + "/artifacts")
		if err != nil {
			t.Fatal(err)
		}
		return store
	}})
}

func TestRedis(t *testing.T) {
	t.Parallel()

	suite.Run(t, &SuiteStore{newStore: func(t *testing.T) Store {
		t.Helper()
		return newRedisWithClient(newFakeRedis(), "")
	}})
}

func TestLRU(t *testing.T) {
	t.Parallel()

	suite.Run(t, &SuiteStore{newStore: func(t *testing.T) Store {
		t.Helper()
		backend, err := NewBadgerInMemory()
		if err != nil {
			t.Fatal(err)
		}
		store, err := WithLRU(backend, 2)
		if err != nil {
			t.Fatal(err)
		}
		return store
	}})
}

type fakeRedis struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte)}
}

func (f *fakeRedis) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.data[key]
	if !ok {
		return nil, errRedisKeyNotFound
	}
	return append([]byte{}, v...), nil
}

func (f *fakeRedis) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.data[key] = append([]byte{}, value...)
	return nil
}

func (f *fakeRedis) Close() error {
	return nil
}

func TestRedisKeysAndFaults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newFakeRedis()
	store := newRedisWithClient(client, "test:")
	address := types.HexToAddress("0xabcdef0123456789000000000000000000000001")

	desc, err := abi.Parse([]byte(balanceOfAbi))
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, address, desc))
	require.Contains(t, client.data, "test:0xaBcdEf0123456789000000000000000000000001")

	client.data["test:"+address.Hex()] = []byte("{not json")
	_, err = store.Get(ctx, address)
	require.ErrorIs(t, err, ErrStorage)
	require.ErrorIs(t, err, abi.ErrMalformedAbi)

	client.err = errors.New("connection refused")
	_, err = store.Get(ctx, address)
	require.ErrorIs(t, err, ErrStorage)
	require.NotErrorIs(t, err, ErrCacheMiss)
	require.ErrorIs(t, store.Put(ctx, address, desc), ErrStorage)
}

func TestFileLayoutAndFaults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFile(dir)
	require.NoError(t, err)
	address := types.HexToAddress("0xabcdef0123456789000000000000000000000001")

	desc, err := abi.Parse([]byte(balanceOfAbi))
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, address, desc))

	path := filepath.Join(dir, "abi-0xaBcdEf0123456789000000000000000000000001.json")
	require.Equal(t, path, store.Path(address))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, balanceOfAbi, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")

	require.NoError(t, os.WriteFile(path, []byte("[1]"), 0o600))
	_, err = store.Get(ctx, address)
	require.ErrorIs(t, err, ErrStorage)

	// A directory in place of the record is a read fault, not a miss.
	other := types.HexToAddress("0x05")
	require.NoError(t, os.Mkdir(store.Path(other), 0o755))
	_, err = store.Get(ctx, other)
	require.ErrorIs(t, err, ErrStorage)
}

type countingStore struct {
	Store

	gets int
	puts int
	err  error
}

func (c *countingStore) Get(ctx context.Context, address types.Address) (*abi.Description, error) {
	c.gets++
	return c.Store.Get(ctx, address)
}

func (c *countingStore) Put(ctx context.Context, address types.Address, desc *abi.Description) error {
	c.puts++
	if c.err != nil {
		return c.err
	}
	return c.Store.Put(ctx, address, desc)
}

func TestLRUFront(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := &countingStore{Store: newRedisWithClient(newFakeRedis(), "")}
	store, err := WithLRU(backend, 1)
	require.NoError(t, err)

	first := types.HexToAddress("0x01")
	second := types.HexToAddress("0x02")
	desc, err := abi.Parse([]byte(balanceOfAbi))
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, first, desc))
	got, err := store.Get(ctx, first)
	require.NoError(t, err)
	require.Same(t, desc, got)
	require.Equal(t, 0, backend.gets)

	// Evicts the first address from memory; it is still served from the backend.
	require.NoError(t, store.Put(ctx, second, desc))
	_, err = store.Get(ctx, first)
	require.NoError(t, err)
	require.Equal(t, 1, backend.gets)

	_, err = store.Get(ctx, types.HexToAddress("0x03"))
	require.ErrorIs(t, err, ErrCacheMiss)

	// A failed backend write must not populate memory.
	backend.err = errors.New("disk full")
	third := types.HexToAddress("0x04")
	require.Error(t, store.Put(ctx, third, desc))
	_, err = store.Get(ctx, third)
	require.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, store.Close())
}
