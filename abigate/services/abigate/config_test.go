package abigate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/NilFoundation/abigate/abigate/services/etherscan"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	require.Equal(t, OwnEndpointDefault, cfg.OwnEndpoint)
	require.Equal(t, etherscan.DefaultEndpoint, cfg.EtherscanEndpoint)
	require.Equal(t, StorageBadger, cfg.Storage)
	require.Zero(t, cfg.FetchConcurrency)
	require.ErrorIs(t, cfg.Validate(), etherscan.ErrNoApiKey)

	cfg.EtherscanApiKey = "key"
	require.NoError(t, cfg.Validate())
}

func TestConfigFileRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	cfg.EtherscanApiKey = "from-file"
	cfg.Storage = StorageRedis
	cfg.RedisDb = 3
	cfg.FetchConcurrency = 4
	cfg.CorsOrigins = []string{"http://a", "http://b"}

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "abigate.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded := NewDefaultConfig()
	require.NoError(t, loaded.Load(path))
	require.Equal(t, cfg, loaded)

	require.Error(t, NewDefaultConfig().Load(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestConfigEnvironment(t *testing.T) {
	t.Setenv("ETHERSCAN_API_KEY", "legacy-key")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://example.com")
	t.Setenv("PORT", "8080")
	t.Setenv("ABIGATE_STORAGE", "file")
	t.Setenv("ABIGATE_FETCH_CONCURRENCY", "2")

	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Load(""))
	require.Equal(t, "legacy-key", cfg.EtherscanApiKey)
	require.Equal(t, []string{"http://localhost:3000", "https://example.com"}, cfg.CorsOrigins)
	require.Equal(t, "0.0.0.0:8080", cfg.OwnEndpoint)
	require.Equal(t, StorageFile, cfg.Storage)
	require.Equal(t, 2, cfg.FetchConcurrency)

	t.Setenv("ABIGATE_ETHERSCAN_API_KEY", "prefixed-key")
	cfg = NewDefaultConfig()
	require.NoError(t, cfg.Load(""))
	require.Equal(t, "prefixed-key", cfg.EtherscanApiKey)
}
