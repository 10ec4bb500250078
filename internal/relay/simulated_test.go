package relay

import (
	"context"
	"testing"
	"time"

	"bridgeRelay/internal/model"
)

func validAction() model.RelayAction {
	return model.RelayAction{
		EventID:            model.EventID{TxHash: "0xaa", LogIndex: 0},
		Recipient:          "0x2222222222222222222222222222222222222222",
		Token:              "0x3333333333333333333333333333333333333333",
		Amount:             "500000000000000000000",
		DestinationChainID: 2,
		SourceBlockNumber:  15005,
	}
}

func TestSimulatedRelaySuccess(t *testing.T) {
	executor := NewSimulated(SimulatedConfig{Seed: 1, FailureRate: 0}, nil)

	receipt, err := executor.Relay(context.Background(), validAction())
	if err != nil {
		t.Fatalf("relay: %v", err)
	}
	if receipt.DestTxHash == "" {
		t.Fatalf("expected destination tx hash")
	}
}

func TestSimulatedRelayTransientFailure(t *testing.T) {
	executor := NewSimulated(SimulatedConfig{Seed: 1, FailureRate: 1}, nil)

	_, err := executor.Relay(context.Background(), validAction())
	if !model.IsTransientRelay(err) {
		t.Fatalf("expected TransientRelayError, got %v", err)
	}
}

func TestSimulatedRelayPermanentRejection(t *testing.T) {
	executor := NewSimulated(SimulatedConfig{Seed: 1, FailureRate: 0}, nil)

	cases := []func(*model.RelayAction){
		func(a *model.RelayAction) { a.Recipient = "not-an-address" },
		func(a *model.RelayAction) { a.Token = "" },
		func(a *model.RelayAction) { a.Amount = "0" },
		func(a *model.RelayAction) { a.EventID = model.EventID{} },
	}
	for i, mutate := range cases {
		action := validAction()
		mutate(&action)
		if _, err := executor.Relay(context.Background(), action); !model.IsPermanentRelay(err) {
			t.Fatalf("case %d: expected PermanentRelayError, got %v", i, err)
		}
	}
}

func TestSimulatedRelayCancelledDuringLatency(t *testing.T) {
	executor := NewSimulated(SimulatedConfig{Seed: 1, Latency: time.Second}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := executor.Relay(ctx, validAction())
	if !model.IsTransientRelay(err) {
		t.Fatalf("expected TransientRelayError on cancellation, got %v", err)
	}
}
