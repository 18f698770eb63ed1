package config

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common"
	"github.com/gaze-network/consensus-verifier/internal/postgres"
	"github.com/gaze-network/consensus-verifier/pkg/logger"
	"github.com/gaze-network/consensus-verifier/pkg/logger/slogx"
	"github.com/gaze-network/consensus-verifier/pkg/middleware/requestcontext"
	"github.com/gaze-network/consensus-verifier/pkg/middleware/requestlogger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	isInit bool
	mu     sync.Mutex
	config = defaultConfig()
)

func defaultConfig() *Config {
	return &Config{
		Logger: logger.Config{
			Output: "TEXT",
		},
		Network: common.NetworkMainnet,
		BitcoinNode: BitcoinNodeClient{
			User: "user",
			Pass: "pass",
		},
		HTTPServer: HTTPServerConfig{
			Port: 8080,
			Logger: requestlogger.Config{
				SkipPaths: []string{"/"},
			},
		},
		Verifier: VerifierConfig{
			SigCacheSize:     10_000,
			PrevOutCacheSize: 4_096,
		},
	}
}

type Config struct {
	Logger      logger.Config     `mapstructure:"logger"`
	Network     common.Network    `mapstructure:"network"`
	BitcoinNode BitcoinNodeClient `mapstructure:"bitcoin_node"`
	HTTPServer  HTTPServerConfig  `mapstructure:"http_server"`
	Verifier    VerifierConfig    `mapstructure:"verifier"`
}

type BitcoinNodeClient struct {
	Host       string `mapstructure:"host"`
	User       string `mapstructure:"user"`
	Pass       string `mapstructure:"pass"`
	DisableTLS bool   `mapstructure:"disable_tls"`
}

// Enabled reports whether a Bitcoin node is configured.
func (c BitcoinNodeClient) Enabled() bool {
	return c.Host != ""
}

type HTTPServerConfig struct {
	Port      int                           `mapstructure:"port"`
	Logger    requestlogger.Config          `mapstructure:"logger"`
	RequestIP requestcontext.ClientIPConfig `mapstructure:"request_ip"`
}

type VerifierConfig struct {
	// Engine selects the verification engine: "native", "txscript" or empty for the build default.
	Engine string `mapstructure:"engine"`

	// SigCacheSize is the signature cache capacity of the txscript engine.
	SigCacheSize uint `mapstructure:"sig_cache_size"`

	// Concurrency is the maximum number of inputs verified in parallel per transaction, zero uses GOMAXPROCS.
	Concurrency int `mapstructure:"concurrency"`

	// PrevOutCacheSize is the number of previous transactions kept by the node client.
	PrevOutCacheSize int `mapstructure:"prevout_cache_size"`

	// Postgres enables the verification audit log when a host or URL is set.
	Postgres postgres.Config `mapstructure:"postgres"`
}

// Parse parse the configuration from environment variables
func Parse(configFile ...string) Config {
	mu.Lock()
	defer mu.Unlock()
	return parse(configFile...)
}

// Load returns the loaded configuration
func Load() Config {
	mu.Lock()
	defer mu.Unlock()
	if isInit {
		return *config
	}
	return parse()
}

// BindPFlag binds a specific key to a pflag (as used by cobra).
// Example (where serverCmd is a Cobra instance):
//
//	serverCmd.Flags().Int("port", 1138, "Port to run Application server on")
//	Viper.BindPFlag("port", serverCmd.Flags().Lookup("port"))
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Panic("Something went wrong, failed to bind flag for config", slog.String("package", "config"), slogx.Error(err))
	}
}

// SetDefault sets the default value for this key.
// SetDefault is case-insensitive for a key.
// Default only used when no value is provided by the user via flag, config or ENV.
func SetDefault(key string, value any) { viper.SetDefault(key, value) }

func parse(configFile ...string) Config {
	ctx := logger.WithContext(context.Background(), slog.String("package", "config"))

	if len(configFile) > 0 && configFile[0] != "" {
		viper.SetConfigFile(configFile[0])
	} else {
		viper.AddConfigPath("./")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var errNotfound viper.ConfigFileNotFoundError
		if errors.As(err, &errNotfound) {
			logger.DebugContext(ctx, "Config file not found, use default configuration")
		} else {
			logger.PanicContext(ctx, "Invalid config file", slogx.Error(err))
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		logger.PanicContext(ctx, "Something went wrong, failed to unmarshal config", slogx.Error(err))
	}

	isInit = true
	return *config
}
