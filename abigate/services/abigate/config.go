package abigate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/NilFoundation/abigate/abigate/internal/telemetry"
	"github.com/NilFoundation/abigate/abigate/services/abicache"
	"github.com/NilFoundation/abigate/abigate/services/etherscan"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	StorageBadger     = "badger"
	StorageClickHouse = "clickhouse"
	StorageRedis      = "redis"
	StorageFile       = "file"

	envPrefix = "ABIGATE"
)

var ErrUnknownStorage = errors.New("unknown storage")

type Config struct {
	OwnEndpoint string   `yaml:"own-endpoint,omitempty"` //nolint:tagliatelle
	CorsOrigins []string `yaml:"cors-origins,omitempty"` //nolint:tagliatelle

	EtherscanEndpoint string `yaml:"etherscan-endpoint,omitempty"` //nolint:tagliatelle
	EtherscanApiKey   string `yaml:"etherscan-api-key,omitempty"`  //nolint:tagliatelle
	FetchConcurrency  int    `yaml:"fetch-concurrency,omitempty"`  //nolint:tagliatelle

	NodeEndpoint string `yaml:"node-endpoint,omitempty"` //nolint:tagliatelle
	PrivateKey   string `yaml:"private-key,omitempty"`   //nolint:tagliatelle

	Storage         string `yaml:"storage,omitempty"`
	MemoryCacheSize int    `yaml:"memory-cache-size,omitempty"` //nolint:tagliatelle
	DbPath          string `yaml:"db-path,omitempty"`           //nolint:tagliatelle
	DbEndpoint      string `yaml:"db-endpoint,omitempty"`       //nolint:tagliatelle
	DbName          string `yaml:"db-name,omitempty"`           //nolint:tagliatelle
	DbUser          string `yaml:"db-user,omitempty"`           //nolint:tagliatelle
	DbPassword      string `yaml:"db-password,omitempty"`       //nolint:tagliatelle
	RedisAddr       string `yaml:"redis-addr,omitempty"`        //nolint:tagliatelle
	RedisPassword   string `yaml:"redis-password,omitempty"`    //nolint:tagliatelle
	RedisDb         int    `yaml:"redis-db,omitempty"`          //nolint:tagliatelle
	RedisKeyPrefix  string `yaml:"redis-key-prefix,omitempty"`  //nolint:tagliatelle
	ArtifactsDir    string `yaml:"artifacts-dir,omitempty"`     //nolint:tagliatelle

	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

const (
	OwnEndpointDefault     = "127.0.0.1:8530"
	NodeEndpointDefault    = "http://127.0.0.1:8545"
	StorageDefault         = StorageBadger
	MemoryCacheSizeDefault = 100
	DbPathDefault          = "abigate.db"
	DbEndpointDefault      = "127.0.0.1:9000"
	DbNameDefault          = "abigate"
	DbUserDefault          = "default"
	RedisAddrDefault       = "127.0.0.1:6379"
	ArtifactsDirDefault    = "artifacts"
)

func NewDefaultConfig() *Config {
	c := &Config{}
	c.ResetToDefault()
	return c
}

func (c *Config) ResetToDefault() {
	*c = Config{
		OwnEndpoint:       OwnEndpointDefault,
		EtherscanEndpoint: etherscan.DefaultEndpoint,
		NodeEndpoint:      NodeEndpointDefault,
		Storage:           StorageDefault,
		MemoryCacheSize:   MemoryCacheSizeDefault,
		DbPath:            DbPathDefault,
		DbEndpoint:        DbEndpointDefault,
		DbName:            DbNameDefault,
		DbUser:            DbUserDefault,
		RedisAddr:         RedisAddrDefault,
		RedisKeyPrefix:    abicache.DefaultRedisKeyPrefix,
		ArtifactsDir:      ArtifactsDirDefault,
	}
}

// Load overlays the config file (if any) and the environment on top of the current values.
// Variables are named ABIGATE_<KEY>, e.g. ABIGATE_ETHERSCAN_API_KEY. ETHERSCAN_API_KEY,
// CORS_ORIGINS and PORT are honored as well.
func (c *Config) Load(cfgFile string) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for key, value := range c.asMap() {
		v.SetDefault(key, value)
	}
	if err := v.BindEnv("etherscan-api-key", envPrefix+"_ETHERSCAN_API_KEY", "ETHERSCAN_API_KEY"); err != nil {
		return err
	}
	if err := v.BindEnv("cors-origins", envPrefix+"_CORS_ORIGINS", "CORS_ORIGINS"); err != nil {
		return err
	}
	if err := v.BindEnv("port", "PORT"); err != nil {
		return err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
	}

	err := v.Unmarshal(c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.StringToTimeDurationHookFunc(),
	)), func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	})
	if err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}

	if port := v.GetString("port"); port != "" && c.OwnEndpoint == OwnEndpointDefault {
		c.OwnEndpoint = "0.0.0.0:" + port
	}
	for i, origin := range c.CorsOrigins {
		c.CorsOrigins[i] = strings.TrimSpace(origin)
	}
	return nil
}

func (c *Config) asMap() map[string]any {
	return map[string]any{
		"own-endpoint":       c.OwnEndpoint,
		"cors-origins":       c.CorsOrigins,
		"etherscan-endpoint": c.EtherscanEndpoint,
		"etherscan-api-key":  c.EtherscanApiKey,
		"fetch-concurrency":  c.FetchConcurrency,
		"node-endpoint":      c.NodeEndpoint,
		"private-key":        c.PrivateKey,
		"storage":            c.Storage,
		"memory-cache-size":  c.MemoryCacheSize,
		"db-path":            c.DbPath,
		"db-endpoint":        c.DbEndpoint,
		"db-name":            c.DbName,
		"db-user":            c.DbUser,
		"db-password":        c.DbPassword,
		"redis-addr":         c.RedisAddr,
		"redis-password":     c.RedisPassword,
		"redis-db":           c.RedisDb,
		"redis-key-prefix":   c.RedisKeyPrefix,
		"artifacts-dir":      c.ArtifactsDir,
	}
}

func (c *Config) Validate() error {
	if c.EtherscanApiKey == "" {
		return etherscan.ErrNoApiKey
	}
	switch c.Storage {
	case StorageBadger, StorageClickHouse, StorageRedis, StorageFile:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, c.Storage)
	}
	return nil
}
