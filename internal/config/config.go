package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	SourceRPC string
	Mock      bool
	MockSeed  int64
	EventRate float64

	Contract      string
	Confirmations uint64
	StartHeight   uint64
	PollInterval  time.Duration

	MaxBlocksPerBatch uint64
	RelayRetryLimit   int
	BackoffBase       time.Duration
	BackoffCap        time.Duration
	RetentionWindow   uint64

	Checkpoint string
	PgDSN      string
	Partition  string

	RelayFailureRate float64
	RelayLatency     time.Duration

	AuditLog    string
	MetricsAddr string
	LogLevel    string
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("RELAYER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Defaults follow the reference bridge deployment.
	v.SetDefault("confirmations", uint64(6))
	v.SetDefault("poll-interval", 10*time.Second)
	v.SetDefault("max-blocks-per-batch", uint64(100))
	v.SetDefault("start-height", uint64(0))
	v.SetDefault("relay-retry-limit", 3)
	v.SetDefault("backoff-base", 500*time.Millisecond)
	v.SetDefault("backoff-cap", 30*time.Second)
	v.SetDefault("retention-window", uint64(10000))
	v.SetDefault("checkpoint", "./data/checkpoint.json")
	v.SetDefault("partition", "source-1")
	v.SetDefault("mock-seed", int64(1))
	v.SetDefault("event-rate", 0.2)
	v.SetDefault("relay-failure-rate", 0.05)
	v.SetDefault("relay-latency", 0*time.Second)
	v.SetDefault("audit-log", "./data/relays.jsonl")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		SourceRPC:         v.GetString("rpc"),
		Mock:              v.GetBool("mock"),
		MockSeed:          v.GetInt64("mock-seed"),
		EventRate:         v.GetFloat64("event-rate"),
		Contract:          v.GetString("contract"),
		Confirmations:     v.GetUint64("confirmations"),
		StartHeight:       v.GetUint64("start-height"),
		PollInterval:      v.GetDuration("poll-interval"),
		MaxBlocksPerBatch: v.GetUint64("max-blocks-per-batch"),
		RelayRetryLimit:   v.GetInt("relay-retry-limit"),
		BackoffBase:       v.GetDuration("backoff-base"),
		BackoffCap:        v.GetDuration("backoff-cap"),
		RetentionWindow:   v.GetUint64("retention-window"),
		Checkpoint:        v.GetString("checkpoint"),
		PgDSN:             v.GetString("pg-dsn"),
		Partition:         v.GetString("partition"),
		RelayFailureRate:  v.GetFloat64("relay-failure-rate"),
		RelayLatency:      v.GetDuration("relay-latency"),
		AuditLog:          v.GetString("audit-log"),
		MetricsAddr:       v.GetString("metrics-addr"),
		LogLevel:          v.GetString("log-level"),
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll-interval must be greater than zero")
	}
	if c.MaxBlocksPerBatch == 0 {
		return fmt.Errorf("max-blocks-per-batch must be greater than zero")
	}
	if c.RelayRetryLimit < 0 {
		return fmt.Errorf("relay-retry-limit must not be negative")
	}
	if c.BackoffBase <= 0 || c.BackoffCap <= 0 {
		return fmt.Errorf("backoff-base and backoff-cap must be greater than zero")
	}
	if !c.Mock && c.SourceRPC == "" {
		return fmt.Errorf("rpc url is required unless mock mode is enabled")
	}
	return nil
}

// LoadStatus loads the subset of options the status subcommand needs.
func LoadStatus(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Checkpoint:  v.GetString("checkpoint"),
		PgDSN:       v.GetString("pg-dsn"),
		Partition:   v.GetString("partition"),
		StartHeight: v.GetUint64("start-height"),
		LogLevel:    v.GetString("log-level"),
	}, nil
}
