package relay

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"bridgeRelay/internal/model"
)

// SimulatedConfig configures the simulated destination submitter.
type SimulatedConfig struct {
	Seed int64
	// FailureRate is the per-submission probability of a transient failure,
	// in [0,1].
	FailureRate float64
	// Latency is the simulated submission time per attempt.
	Latency time.Duration
}

// Simulated is an Executor that fabricates destination submissions with
// seeded latency and failure injection. Malformed actions are rejected
// permanently; everything else either succeeds with a fabricated
// destination tx hash or fails transiently at the configured rate.
type Simulated struct {
	cfg    SimulatedConfig
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulated builds a simulated executor.
func NewSimulated(cfg SimulatedConfig, logger *zap.Logger) *Simulated {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulated{
		cfg:    cfg,
		logger: logger,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Relay validates the action, sleeps for the configured latency, then rolls
// for a transient failure. The latency sleep is cancellable.
func (s *Simulated) Relay(ctx context.Context, action model.RelayAction) (model.RelayReceipt, error) {
	if err := validateAction(action); err != nil {
		return model.RelayReceipt{}, &model.PermanentRelayError{Err: err}
	}

	if s.cfg.Latency > 0 {
		timer := time.NewTimer(s.cfg.Latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return model.RelayReceipt{}, &model.TransientRelayError{Err: ctx.Err()}
		case <-timer.C:
		}
	}

	s.mu.Lock()
	roll := s.rng.Float64()
	destTxHash := randomHash(s.rng)
	s.mu.Unlock()

	if roll < s.cfg.FailureRate {
		return model.RelayReceipt{}, &model.TransientRelayError{
			Err: fmt.Errorf("destination rejected submission for %s", action.EventID),
		}
	}

	s.logger.Info("relay submitted",
		zap.String("event_id", action.EventID.String()),
		zap.String("recipient", action.Recipient),
		zap.String("amount", action.Amount),
		zap.String("dest_tx_hash", destTxHash.Hex()),
	)

	return model.RelayReceipt{DestTxHash: destTxHash.Hex()}, nil
}

func validateAction(action model.RelayAction) error {
	if !common.IsHexAddress(action.Recipient) {
		return fmt.Errorf("invalid recipient: %s", action.Recipient)
	}
	if !common.IsHexAddress(action.Token) {
		return fmt.Errorf("invalid token: %s", action.Token)
	}
	if action.Amount == "" || action.Amount == "0" {
		return fmt.Errorf("invalid amount: %q", action.Amount)
	}
	if action.EventID.TxHash == "" {
		return fmt.Errorf("missing source event id")
	}
	return nil
}

func randomHash(rng *rand.Rand) common.Hash {
	var h common.Hash
	rng.Read(h[:])
	return h
}
