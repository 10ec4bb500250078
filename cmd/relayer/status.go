package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bridgeRelay/internal/checkpoint"
	"bridgeRelay/internal/config"
)

// newStatusCmd builds the status subcommand, which prints the persisted
// checkpoint without touching the chain.
func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the persisted checkpoint",
		RunE:  runStatus,
	}

	cmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN (replaces the file checkpoint when set)")
	cmd.Flags().String("partition", "source-1", "checkpoint partition name")
	cmd.Flags().Uint64("start-height", 0, "first block to scan when no checkpoint exists")

	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadStatus(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

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

	state, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}

	fmt.Printf("last processed height: %d\n", state.LastProcessedHeight())
	fmt.Printf("relayed events retained: %d\n", state.ProcessedCount())

	events := state.ProcessedEvents()
	if n := len(events); n > 0 {
		last := events[n-1]
		fmt.Printf("newest relayed event: %s:%d (block %d)\n", last.TxHash, last.LogIndex, last.BlockNumber)
	}
	fmt.Printf("checked at: %s\n", time.Now().UTC().Format(time.RFC3339))

	return nil
}
