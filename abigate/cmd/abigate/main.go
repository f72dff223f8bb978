package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/NilFoundation/abigate/abigate/client"
	"github.com/NilFoundation/abigate/abigate/common/check"
	"github.com/NilFoundation/abigate/abigate/common/logging"
	"github.com/NilFoundation/abigate/abigate/common/version"
	"github.com/NilFoundation/abigate/abigate/internal/telemetry"
	"github.com/NilFoundation/abigate/abigate/internal/types"
	"github.com/NilFoundation/abigate/abigate/services/abigate"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Command uint

const (
	CommandRun Command = iota + 1
	CommandCreateConfig
	CommandResolve
	CommandCall
)

type config struct {
	command    Command
	cfgFile    string
	abigateCfg abigate.Config

	address  types.Address
	function string
	args     []string
	raw      bool
}

func main() {
	cfg := parseArgs()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	var err error
	switch cfg.command {
	case CommandCreateConfig:
		err = processCreateConfig(cfg)
	case CommandRun:
		err = processRun(ctx, cfg)
	case CommandResolve:
		err = processResolve(ctx, cfg)
	case CommandCall:
		err = processCall(ctx, cfg)
	}

	if err != nil {
		cancel()
		fmt.Printf("Abigate failed: %s\n", err.Error())
		os.Exit(1)
	}
}

func newService(ctx context.Context, cfg *config) (*abigate.Service, error) {
	transport, err := client.DialEthTransport(
		ctx, cfg.abigateCfg.NodeEndpoint, cfg.abigateCfg.PrivateKey, logging.NewLogger("transport"))
	if err != nil {
		return nil, err
	}
	return abigate.NewService(ctx, &cfg.abigateCfg, transport)
}

func processRun(ctx context.Context, cfg *config) error {
	if err := telemetry.Init(ctx, cfg.abigateCfg.Telemetry); err != nil {
		return err
	}
	defer telemetry.Shutdown(ctx)

	service, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer service.Close()

	return service.Run(ctx)
}

func processCreateConfig(cfg *config) error {
	if cfg.cfgFile == "" {
		cfg.cfgFile = "./abigate.yaml"
	}

	data, err := yaml.Marshal(cfg.abigateCfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cfg.cfgFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	fmt.Printf("Config file %s has been created\n", cfg.cfgFile)
	return nil
}

func parseArgs() *config {
	cfg := &config{}
	var name string
	// We need to load config before parsing arguments, because loaded config contains default values for parameters.
	for i, f := range os.Args[:len(os.Args)-1] {
		if f == "--config" || f == "-c" {
			check.PanicIfNotf(i+1 < len(os.Args), "config file name is not specified")
			name = os.Args[i+1]
			break
		}
	}
	cfg.abigateCfg.ResetToDefault()
	if err := cfg.abigateCfg.Load(name); err != nil {
		fmt.Printf("Failed to load config: %s\n", err.Error())
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:           "abigate [global flags] [command]",
		Short:         "abigate resolves contract ABIs and calls contracts through them",
		Version:       version.BuildVersionString("abigate"),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfg.cfgFile, "config", "c", "", "config file")
	addConfigFlags(flags, &cfg.abigateCfg)
	logLevel := flags.StringP("log-level", "l", "info", "log level: trace|debug|info|warn|error|fatal|panic")

	rootCmd.PersistentPreRun = func(*cobra.Command, []string) {
		logging.SetupGlobalLogger(*logLevel)
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run abigate server",
		Run: func(cmd *cobra.Command, args []string) {
			cfg.command = CommandRun
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "create-config",
		Short: "Create config file",
		Long:  "Create config file which can be specified by `--config` flag. By default it creates `./abigate.yaml`",
		Run: func(cmd *cobra.Command, args []string) {
			cfg.command = CommandCreateConfig
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "resolve [address]",
		Short: "Print functions of the contract ABI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.command = CommandResolve
			return cfg.address.Set(args[0])
		},
	})

	callCmd := &cobra.Command{
		Use:   "call [address] [function] [args...]",
		Short: "Call a contract function",
		Long: "Call a contract function found by name and number of arguments. " +
			"Array arguments are passed as comma-separated lists.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.command = CommandCall
			cfg.function = args[1]
			cfg.args = args[2:]
			return cfg.address.Set(args[0])
		},
	}
	callCmd.Flags().BoolVar(&cfg.raw, "raw", false, "print the raw transport value instead of the decoded one")
	rootCmd.AddCommand(callCmd)

	check.PanicIfErr(rootCmd.Execute())

	return cfg
}

// addConfigFlags registers a flag per config field. Flag defaults are the values already loaded
// from the config file and the environment, so an explicit flag takes precedence over both.
func addConfigFlags(flags *pflag.FlagSet, c *abigate.Config) {
	flags.StringVar(&c.OwnEndpoint, "own-endpoint", c.OwnEndpoint, "http server endpoint")
	flags.StringSliceVar(&c.CorsOrigins, "cors-origins", c.CorsOrigins, "allowed CORS origins")
	flags.StringVar(&c.EtherscanEndpoint, "etherscan-endpoint", c.EtherscanEndpoint, "etherscan API endpoint")
	flags.StringVar(&c.EtherscanApiKey, "etherscan-api-key", c.EtherscanApiKey, "etherscan API key")
	flags.IntVar(&c.FetchConcurrency, "fetch-concurrency", c.FetchConcurrency,
		"max concurrent etherscan requests, identical requests are merged (0 disables the queue)")
	flags.StringVar(&c.NodeEndpoint, "node-endpoint", c.NodeEndpoint, "ethereum node endpoint")
	flags.StringVar(&c.PrivateKey, "private-key", c.PrivateKey, "hex private key for state-changing calls")
	flags.StringVar(&c.Storage, "storage", c.Storage, "abi cache storage: badger|clickhouse|redis|file")
	flags.IntVar(&c.MemoryCacheSize, "memory-cache-size", c.MemoryCacheSize, "in-memory abi cache size (0 disables it)")
	flags.StringVar(&c.DbPath, "db-path", c.DbPath, "path where to store badger database")
	flags.StringVar(&c.DbEndpoint, "db-endpoint", c.DbEndpoint, "clickhouse endpoint")
	flags.StringVar(&c.DbName, "db-name", c.DbName, "clickhouse database name")
	flags.StringVar(&c.DbUser, "db-user", c.DbUser, "clickhouse user")
	flags.StringVar(&c.DbPassword, "db-password", c.DbPassword, "clickhouse password")
	flags.StringVar(&c.RedisAddr, "redis-addr", c.RedisAddr, "redis address")
	flags.StringVar(&c.RedisPassword, "redis-password", c.RedisPassword, "redis password")
	flags.IntVar(&c.RedisDb, "redis-db", c.RedisDb, "redis database")
	flags.StringVar(&c.RedisKeyPrefix, "redis-key-prefix", c.RedisKeyPrefix, "redis key prefix")
	flags.StringVar(&c.ArtifactsDir, "artifacts-dir", c.ArtifactsDir, "directory for the file storage")
}
