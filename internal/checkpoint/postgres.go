package checkpoint

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bridgeRelay/internal/model"
)

// PostgresStore persists checkpoint state in Postgres. Each listener
// instance owns a disjoint partition keyed by name, so instances sharing a
// database never contend.
type PostgresStore struct {
	pool        *pgxpool.Pool
	name        string
	startHeight uint64
}

// NewPostgresStore connects to the DSN and scopes the store to the given
// partition name.
func NewPostgresStore(ctx context.Context, dsn, name string, startHeight uint64) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	if name == "" {
		return nil, fmt.Errorf("partition name is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool, name: name, startHeight: startHeight}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Load reads the checkpoint row and the relayed-event set for the
// partition. No row yields a zero-value state at the start height.
func (s *PostgresStore) Load(ctx context.Context) (*State, error) {
	var lastProcessed uint64
	row := s.pool.QueryRow(ctx,
		`SELECT last_processed_block FROM relayer_checkpoint WHERE name=$1`, s.name)
	if err := row.Scan(&lastProcessed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return NewState(s.startHeight), nil
		}
		return nil, &model.CorruptStateError{Source: "relayer_checkpoint:" + s.name, Err: err}
	}

	rows, err := s.pool.Query(ctx, `
		SELECT tx_hash, log_index, block_number
		FROM relayed_events
		WHERE name=$1
		ORDER BY block_number, tx_hash, log_index
	`, s.name)
	if err != nil {
		return nil, &model.CorruptStateError{Source: "relayed_events:" + s.name, Err: err}
	}
	defer rows.Close()

	events := make([]ProcessedEvent, 0)
	for rows.Next() {
		var entry ProcessedEvent
		if err := rows.Scan(&entry.TxHash, &entry.LogIndex, &entry.BlockNumber); err != nil {
			return nil, &model.CorruptStateError{Source: "relayed_events:" + s.name, Err: err}
		}
		events = append(events, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.CorruptStateError{Source: "relayed_events:" + s.name, Err: err}
	}

	return restoreState(lastProcessed, events), nil
}

// Persist upserts the checkpoint row, inserts the relayed-event set, and
// deletes entries below the prune floor, all in one transaction so a crash
// mid-persist never leaves a torn checkpoint.
func (s *PostgresStore) Persist(ctx context.Context, state *State) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return &model.PersistenceError{Err: err}
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO relayer_checkpoint (name, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = GREATEST(relayer_checkpoint.last_processed_block, EXCLUDED.last_processed_block),
		    updated_at = now()
	`, s.name, int64(state.LastProcessedHeight()))

	for _, entry := range state.ProcessedEvents() {
		batch.Queue(`
			INSERT INTO relayed_events (name, tx_hash, log_index, block_number)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name, tx_hash, log_index) DO NOTHING
		`, s.name, entry.TxHash, int64(entry.LogIndex), int64(entry.BlockNumber))
	}

	if floor := state.PruneFloor(); floor > 0 {
		batch.Queue(`
			DELETE FROM relayed_events WHERE name=$1 AND block_number < $2
		`, s.name, int64(floor))
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return &model.PersistenceError{Err: err}
		}
	}
	if err := br.Close(); err != nil {
		return &model.PersistenceError{Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return &model.PersistenceError{Err: err}
	}
	return nil
}
