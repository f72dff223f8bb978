package abicache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NilFoundation/abigate/abigate/internal/abi"
	"github.com/NilFoundation/abigate/abigate/internal/types"
	"github.com/redis/go-redis/v9"
)

const DefaultRedisKeyPrefix = "abigate:abi:"

var errRedisKeyNotFound = errors.New("redis key not found")

type redisClient interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type Redis struct {
	client redisClient
	prefix string
}

var _ Store = new(Redis)

func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client, err := newGoRedisClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newRedisWithClient(client, cfg.KeyPrefix), nil
}

func newRedisWithClient(client redisClient, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (s *Redis) key(address types.Address) string {
	return s.prefix + address.Hex()
}

func (s *Redis) Get(ctx context.Context, address types.Address) (*abi.Description, error) {
	data, err := s.client.Get(ctx, s.key(address))
	if errors.Is(err, errRedisKeyNotFound) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, storageError("get", address, err)
	}
	return decodeRecord(address, data)
}

func (s *Redis) Put(ctx context.Context, address types.Address, desc *abi.Description) error {
	if err := s.client.Set(ctx, s.key(address), desc.Raw()); err != nil {
		return storageError("set", address, err)
	}
	return nil
}

func (s *Redis) Close() error {
	return s.client.Close()
}

type goRedisClient struct {
	client *redis.Client
}

var _ redisClient = (*goRedisClient)(nil)

func newGoRedisClient(ctx context.Context, cfg RedisConfig) (*goRedisClient, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &goRedisClient{client: client}, nil
}

func (c *goRedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errRedisKeyNotFound
	}
	return data, err
}

// Set stores the value without expiration.
func (c *goRedisClient) Set(ctx context.Context, key string, value []byte) error {
	return c.client.Set(ctx, key, value, 0).Err()
}

func (c *goRedisClient) Close() error {
	return c.client.Close()
}
