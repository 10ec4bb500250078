package listener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bridgeRelay/internal/chain"
	"bridgeRelay/internal/checkpoint"
	"bridgeRelay/internal/metrics"
	"bridgeRelay/internal/model"
	"bridgeRelay/internal/relay"
	"bridgeRelay/internal/storage"
)

// Decoder turns raw log records into lock events.
type Decoder interface {
	Decode(log model.LogRecord) (model.LockEvent, error)
}

// RunConfig holds runtime settings for the listener.
type RunConfig struct {
	Confirmations     uint64
	PollInterval      time.Duration
	MaxBlocksPerBatch uint64
	RelayRetryLimit   int
	BackoffBase       time.Duration
	BackoffCap        time.Duration
	RetentionWindow   uint64
}

// Runner drives the scan-and-relay loop: compute the confirmed window,
// fetch, decode, dedup, relay, checkpoint, sleep. Single control
// goroutine; the checkpoint state has exactly one writer.
type Runner struct {
	cfg      RunConfig
	reader   chain.Reader
	decoder  Decoder
	executor relay.Executor
	store    checkpoint.Store
	audit    storage.AuditSink
	logger   *zap.Logger
	metrics  *metrics.Metrics

	state *checkpoint.State
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(
	cfg RunConfig,
	reader chain.Reader,
	decoder Decoder,
	executor relay.Executor,
	store checkpoint.Store,
	audit storage.AuditSink,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if audit == nil {
		audit = storage.NopSink{}
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Runner{
		cfg:      cfg,
		reader:   reader,
		decoder:  decoder,
		executor: executor,
		store:    store,
		audit:    audit,
		logger:   logger,
		metrics:  m,
	}
}

// errHaltBatch aborts the remainder of a batch after a transient relay
// failure exhausts its retries; the checkpoint stops just before the
// failing event.
var errHaltBatch = errors.New("batch halted")

// Run executes the polling loop until the context is cancelled. Only a
// RangeError or CorruptStateError ends the loop with an error; transient
// infrastructure failures retry the cycle with backoff.
func (r *Runner) Run(ctx context.Context) error {
	if r.reader == nil {
		return fmt.Errorf("chain reader is nil")
	}
	if r.decoder == nil {
		return fmt.Errorf("decoder is nil")
	}
	if r.executor == nil {
		return fmt.Errorf("relay executor is nil")
	}
	if r.store == nil {
		return fmt.Errorf("checkpoint store is nil")
	}
	if r.cfg.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be greater than zero")
	}
	if r.cfg.MaxBlocksPerBatch == 0 {
		return fmt.Errorf("max blocks per batch must be greater than zero")
	}

	state, err := r.store.Load(ctx)
	if err != nil {
		return err
	}
	r.state = state

	r.logger.Info("listener started",
		zap.Uint64("last_processed", state.LastProcessedHeight()),
		zap.Int("dedup_set", state.ProcessedCount()),
		zap.Uint64("confirmations", r.cfg.Confirmations),
	)

	failures := 0
	for ctx.Err() == nil {
		err := r.cycle(ctx)
		if err == nil {
			failures = 0
			r.metrics.CyclesTotal.Inc()
			if sleep(ctx, r.cfg.PollInterval) != nil {
				break
			}
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}

		var rangeErr *model.RangeError
		if errors.As(err, &rangeErr) {
			r.shutdown()
			return err
		}

		// Transient infrastructure failure: retry the cycle with backoff,
		// never give up while the context is alive.
		failures++
		r.logger.Warn("cycle failed, backing off",
			zap.Error(err),
			zap.Int("consecutive_failures", failures),
		)
		if sleepBackoff(ctx, failures-1, r.cfg.BackoffBase, r.cfg.BackoffCap) != nil {
			break
		}
	}

	r.shutdown()
	return nil
}

func (r *Runner) shutdown() {
	r.logger.Info("shutdown initiated, persisting checkpoint")
	if err := r.persistFinal(); err != nil {
		r.logger.Error("final checkpoint persist failed", zap.Error(err))
	}
	r.logger.Info("shutdown complete",
		zap.Uint64("last_processed", r.state.LastProcessedHeight()),
	)
}

// persistFinal writes the checkpoint outside the cancelled run context.
func (r *Runner) persistFinal() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return r.store.Persist(ctx, r.state)
}

// cycle runs one poll iteration: height query, window computation, fetch,
// process, checkpoint.
func (r *Runner) cycle(ctx context.Context) error {
	latest, err := r.reader.LatestHeight(ctx)
	if err != nil {
		return fmt.Errorf("latest height: %w", err)
	}
	r.metrics.ChainHead.Set(float64(latest))

	window, ok := NextWindow(r.state.LastProcessedHeight(), latest, r.cfg.Confirmations, r.cfg.MaxBlocksPerBatch)
	if !ok {
		r.logger.Debug("no confirmed range yet",
			zap.Uint64("head", latest),
			zap.Uint64("last_processed", r.state.LastProcessedHeight()),
		)
		return nil
	}

	r.logger.Info("cycle start",
		zap.Uint64("from", window.From),
		zap.Uint64("to", window.To),
		zap.Uint64("head", latest),
	)

	logs, err := r.reader.FilterLogs(ctx, window.From, window.To)
	if err != nil {
		return fmt.Errorf("filter logs %d-%d: %w", window.From, window.To, err)
	}
	// Re-sort defensively: dedup and relay depend on canonical order even
	// if a reader fetched sub-ranges concurrently.
	chain.SortRecords(logs)

	relayed, deadLettered, haltBlock, procErr := r.processBatch(ctx, logs)

	advanceTo := window.To
	if procErr != nil {
		if !errors.Is(procErr, errHaltBatch) {
			return procErr
		}
		// Do not advance past the event whose relay retries were
		// exhausted; the next cycle rescans it.
		advanceTo = r.state.LastProcessedHeight()
		if haltBlock > 0 {
			advanceTo = haltBlock - 1
		}
	}

	r.state.AdvanceHeight(advanceTo)
	r.state.Prune(r.cfg.RetentionWindow)

	if err := r.persist(ctx); err != nil {
		return err
	}

	r.logger.Info("cycle end",
		zap.Uint64("from", window.From),
		zap.Uint64("to", window.To),
		zap.Int("logs", len(logs)),
		zap.Int("relayed", relayed),
		zap.Int("dead_lettered", deadLettered),
		zap.Uint64("checkpoint", r.state.LastProcessedHeight()),
		zap.Bool("halted", procErr != nil),
	)

	return nil
}

// processBatch relays decoded events in (block, log index) order. It
// returns errHaltBatch with the failing block when transient relay retries
// are exhausted, so the cycle can truncate the checkpoint there.
func (r *Runner) processBatch(ctx context.Context, logs []model.LogRecord) (relayed, deadLettered int, haltBlock uint64, err error) {
	for _, record := range logs {
		if record.Removed {
			r.logger.Warn("skipping removed log", zap.String("event_id", record.ID().String()))
			continue
		}

		event, decodeErr := r.decoder.Decode(record)
		if decodeErr != nil {
			// Skip-and-report policy: one malformed log must not wedge
			// the stream. The audit row keeps it reconcilable.
			r.metrics.DecodeFailures.Inc()
			r.logger.Error("decode failed, skipping log",
				zap.String("event_id", record.ID().String()),
				zap.Uint64("block", record.BlockNumber),
				zap.Error(decodeErr),
			)
			r.putAudit(model.RelayRecord{
				EventID:     record.ID(),
				BlockNumber: record.BlockNumber,
				Outcome:     model.OutcomeDecodeFailed,
				Reason:      decodeErr.Error(),
			})
			continue
		}

		r.metrics.EventsDiscovered.Inc()
		id := event.ID()
		if r.state.Has(id) {
			r.logger.Debug("skipping already processed event", zap.String("event_id", id.String()))
			continue
		}

		outcome, relayErr := r.relayWithRetry(ctx, event)
		switch {
		case relayErr == nil && outcome == model.OutcomeRelayed:
			relayed++
		case relayErr == nil:
			deadLettered++
		default:
			return relayed, deadLettered, event.BlockNumber, relayErr
		}
	}
	return relayed, deadLettered, 0, nil
}

// relayWithRetry submits one event, retrying transient failures up to the
// configured limit. The relay call itself is never cancelled mid-flight;
// only the backoff sleeps between attempts observe shutdown.
func (r *Runner) relayWithRetry(ctx context.Context, event model.LockEvent) (string, error) {
	action := buildAction(event)
	relayCtx := context.WithoutCancel(ctx)

	for attempt := 1; ; attempt++ {
		receipt, err := r.executor.Relay(relayCtx, action)
		if err == nil {
			r.state.MarkProcessed(event.ID(), event.BlockNumber)
			// Flush the dedup entry before the batch advances the height,
			// so a crash here never forgets the relay.
			if persistErr := r.persist(ctx); persistErr != nil {
				return "", persistErr
			}
			r.metrics.EventsRelayed.Inc()
			r.logger.Info("event relayed",
				zap.String("event_id", event.ID().String()),
				zap.Uint64("block", event.BlockNumber),
				zap.String("dest_tx_hash", receipt.DestTxHash),
				zap.Int("attempts", attempt),
			)
			r.putAudit(model.RelayRecord{
				EventID:     event.ID(),
				BlockNumber: event.BlockNumber,
				Outcome:     model.OutcomeRelayed,
				DestTxHash:  receipt.DestTxHash,
				Attempts:    attempt,
			})
			return model.OutcomeRelayed, nil
		}

		if model.IsPermanentRelay(err) {
			// Dead-letter: marked processed so it is never retried, but
			// surfaced distinctly for manual reconciliation.
			r.state.MarkProcessed(event.ID(), event.BlockNumber)
			if persistErr := r.persist(ctx); persistErr != nil {
				return "", persistErr
			}
			r.metrics.EventsDeadLettered.Inc()
			r.logger.Error("event dead-lettered",
				zap.String("event_id", event.ID().String()),
				zap.Uint64("block", event.BlockNumber),
				zap.Error(err),
			)
			r.putAudit(model.RelayRecord{
				EventID:     event.ID(),
				BlockNumber: event.BlockNumber,
				Outcome:     model.OutcomeDeadLettered,
				Reason:      err.Error(),
				Attempts:    attempt,
			})
			return model.OutcomeDeadLettered, nil
		}

		if attempt > r.cfg.RelayRetryLimit {
			r.logger.Error("relay retries exhausted, halting batch",
				zap.String("event_id", event.ID().String()),
				zap.Uint64("block", event.BlockNumber),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			return "", fmt.Errorf("relay %s: %w", event.ID(), errHaltBatch)
		}

		r.metrics.RelayRetries.Inc()
		r.logger.Warn("relay attempt failed, retrying",
			zap.String("event_id", event.ID().String()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if sleepErr := sleepBackoff(ctx, attempt-1, r.cfg.BackoffBase, r.cfg.BackoffCap); sleepErr != nil {
			return "", sleepErr
		}
	}
}

// persist flushes the checkpoint, retrying persistence failures with
// backoff until the context is cancelled.
func (r *Runner) persist(ctx context.Context) error {
	for attempt := 0; ; attempt++ {
		err := r.store.Persist(ctx, r.state)
		if err == nil {
			r.metrics.CheckpointPersists.Inc()
			r.metrics.LastProcessedHeight.Set(float64(r.state.LastProcessedHeight()))
			r.metrics.DedupSetSize.Set(float64(r.state.ProcessedCount()))
			r.logger.Info("checkpoint persisted",
				zap.Uint64("last_processed", r.state.LastProcessedHeight()),
				zap.Int("dedup_set", r.state.ProcessedCount()),
			)
			return nil
		}
		if !model.IsPersistence(err) {
			return err
		}
		r.logger.Warn("checkpoint persist failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		if sleepErr := sleepBackoff(ctx, attempt, r.cfg.BackoffBase, r.cfg.BackoffCap); sleepErr != nil {
			return sleepErr
		}
	}
}

func (r *Runner) putAudit(record model.RelayRecord) {
	record.RecordedAt = time.Now().UTC().Format(time.RFC3339Nano)
	if err := r.audit.PutRecord(record); err != nil {
		r.logger.Warn("audit write failed", zap.Error(err))
	}
}

func buildAction(event model.LockEvent) model.RelayAction {
	return model.RelayAction{
		EventID:            event.ID(),
		Recipient:          event.User,
		Token:              event.Token,
		Amount:             event.Amount,
		DestinationChainID: event.DestinationChainID,
		SourceBlockNumber:  event.BlockNumber,
	}
}
