package chain

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"bridgeRelay/internal/model"
)

func simulatedFixture() *Simulated {
	return NewSimulated(SimulatedConfig{
		Seed:        42,
		StartHeight: 15000,
		Contract:    common.HexToAddress("0x1234567890123456789012345678901234567890"),
		Topic0:      common.HexToHash("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		EventRate:   0.5,
	})
}

func TestSimulatedHeadAdvances(t *testing.T) {
	sim := simulatedFixture()
	ctx := context.Background()

	prev := uint64(0)
	for i := 0; i < 10; i++ {
		height, err := sim.LatestHeight(ctx)
		if err != nil {
			t.Fatalf("latest height: %v", err)
		}
		if height <= prev {
			t.Fatalf("head did not advance: %d <= %d", height, prev)
		}
		if height-prev > 3 && prev != 0 {
			t.Fatalf("head jumped too far: %d -> %d", prev, height)
		}
		prev = height
	}
}

func TestSimulatedRescanIsStable(t *testing.T) {
	sim := simulatedFixture()
	ctx := context.Background()

	first, err := sim.FilterLogs(ctx, 15001, 15100)
	if err != nil {
		t.Fatalf("filter logs: %v", err)
	}
	second, err := sim.FilterLogs(ctx, 15001, 15100)
	if err != nil {
		t.Fatalf("filter logs: %v", err)
	}

	if len(first) == 0 {
		t.Fatalf("expected events at 50%% rate over 100 blocks")
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("rescan produced different logs")
	}
}

func TestSimulatedLogsOrderedAndShaped(t *testing.T) {
	sim := simulatedFixture()

	logs, err := sim.FilterLogs(context.Background(), 15001, 15100)
	if err != nil {
		t.Fatalf("filter logs: %v", err)
	}

	for i, log := range logs {
		if i > 0 && log.BlockNumber <= logs[i-1].BlockNumber {
			t.Fatalf("logs out of order at %d", i)
		}
		if len(log.Topics) != 3 {
			t.Fatalf("expected 3 topics, got %d", len(log.Topics))
		}
		if log.Address != sim.cfg.Contract.Hex() {
			t.Fatalf("address mismatch: %s", log.Address)
		}
		// 2 non-indexed uint256 words
		if len(log.Data) != 2+128 {
			t.Fatalf("data width mismatch: %d", len(log.Data))
		}
	}
}

func TestSimulatedRangeError(t *testing.T) {
	sim := simulatedFixture()

	_, err := sim.FilterLogs(context.Background(), 20, 10)
	var rangeErr *model.RangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected RangeError, got %v", err)
	}
}
