package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"bridgeRelay/internal/bridge"
	"bridgeRelay/internal/chain"
	"bridgeRelay/internal/checkpoint"
	"bridgeRelay/internal/config"
	"bridgeRelay/internal/listener"
	"bridgeRelay/internal/metrics"
	"bridgeRelay/internal/relay"
	"bridgeRelay/internal/storage"
)

func main() {
	root := &cobra.Command{
		Use:          "relayer",
		Short:        "Cross-chain bridge event relayer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the listener",
		RunE:  runListener,
	}

	runCmd.Flags().String("rpc", "", "source chain RPC URL")
	runCmd.Flags().Bool("mock", false, "use the in-process simulated chain instead of RPC")
	runCmd.Flags().Int64("mock-seed", 1, "seed for the simulated chain and destination")
	runCmd.Flags().Float64("event-rate", 0.2, "per-block event probability in mock mode")
	runCmd.Flags().String("contract", "", "bridge contract address")
	runCmd.Flags().Uint64("confirmations", 6, "blocks required before an event is final")
	runCmd.Flags().Uint64("start-height", 0, "first block to scan when no checkpoint exists")
	runCmd.Flags().Duration("poll-interval", 10*time.Second, "delay between scan cycles")
	runCmd.Flags().Uint64("max-blocks-per-batch", 100, "blocks per scan window")
	runCmd.Flags().Int("relay-retry-limit", 3, "transient relay retries per event")
	runCmd.Flags().Duration("backoff-base", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().Duration("backoff-cap", 30*time.Second, "maximum retry backoff")
	runCmd.Flags().Uint64("retention-window", 10000, "blocks of relayed-event history to retain")
	runCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN (replaces the file checkpoint when set)")
	runCmd.Flags().String("partition", "source-1", "checkpoint partition name")
	runCmd.Flags().Float64("relay-failure-rate", 0.05, "simulated destination transient failure rate")
	runCmd.Flags().Duration("relay-latency", 0, "simulated destination submission latency")
	runCmd.Flags().String("audit-log", "./data/relays.jsonl", "relay audit JSONL path")
	runCmd.Flags().String("metrics-addr", "", "metrics listen address (e.g. :9090), disabled when empty")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)
	root.AddCommand(newStatusCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runListener(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	contract, err := listener.ParseContract(cfg.Contract)
	if err != nil {
		return err
	}

	decoder, err := bridge.NewLockDecoder()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reader chain.Reader
	if cfg.Mock {
		reader = chain.NewSimulated(chain.SimulatedConfig{
			Seed:        cfg.MockSeed,
			StartHeight: cfg.StartHeight,
			Contract:    contract,
			Topic0:      decoder.Topic0(),
			EventRate:   cfg.EventRate,
		})
	} else {
		client, err := chain.NewClient(ctx, cfg.SourceRPC, []common.Address{contract}, []common.Hash{decoder.Topic0()})
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer client.Close()
		reader = client
	}

	var store checkpoint.Store
	if cfg.PgDSN != "" {
		pgStore, err := checkpoint.NewPostgresStore(ctx, cfg.PgDSN, cfg.Partition, cfg.StartHeight)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgStore.Close()
		store = pgStore
	} else {
		store = checkpoint.NewFileStore(cfg.Checkpoint, cfg.StartHeight)
	}

	executor := relay.NewSimulated(relay.SimulatedConfig{
		Seed:        cfg.MockSeed,
		FailureRate: cfg.RelayFailureRate,
		Latency:     cfg.RelayLatency,
	}, logger)

	var audit storage.AuditSink = storage.NopSink{}
	if cfg.AuditLog != "" {
		audit = storage.NewJsonlSink(cfg.AuditLog)
	}

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	runner := listener.NewRunner(listener.RunConfig{
		Confirmations:     cfg.Confirmations,
		PollInterval:      cfg.PollInterval,
		MaxBlocksPerBatch: cfg.MaxBlocksPerBatch,
		RelayRetryLimit:   cfg.RelayRetryLimit,
		BackoffBase:       cfg.BackoffBase,
		BackoffCap:        cfg.BackoffCap,
		RetentionWindow:   cfg.RetentionWindow,
	}, reader, decoder, executor, store, audit, logger, m)

	logger.Info("relayer start",
		zap.Bool("mock", cfg.Mock),
		zap.String("contract", contract.Hex()),
		zap.Uint64("confirmations", cfg.Confirmations),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Uint64("max_blocks_per_batch", cfg.MaxBlocksPerBatch),
		zap.String("checkpoint", cfg.Checkpoint),
		zap.Bool("postgres", cfg.PgDSN != ""),
		zap.String("metrics_addr", cfg.MetricsAddr),
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return runner.Run(groupCtx)
	})
	if cfg.MetricsAddr != "" {
		server := metrics.NewServer(cfg.MetricsAddr, registry)
		group.Go(func() error {
			return server.Run(groupCtx)
		})
	}

	return group.Wait()
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
