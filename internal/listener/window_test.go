package listener

import (
	"testing"
)

func TestNextWindowWaitsForConfirmations(t *testing.T) {
	if _, ok := NextWindow(15000, 15010, 12, 100); ok {
		t.Fatalf("expected no window while confirmations pending")
	}
}

func TestNextWindowEmptyChain(t *testing.T) {
	if _, ok := NextWindow(15000, 15000, 12, 100); ok {
		t.Fatalf("expected no window when head equals last processed")
	}
	if _, ok := NextWindow(0, 5, 12, 100); ok {
		t.Fatalf("expected no window when head is below the confirmation depth")
	}
}

func TestNextWindowConfirmedRange(t *testing.T) {
	window, ok := NextWindow(15000, 15112, 12, 100)
	if !ok {
		t.Fatalf("expected a window")
	}
	if window.From != 15001 || window.To != 15100 {
		t.Fatalf("window mismatch: %+v", window)
	}
}

func TestNextWindowBatchCap(t *testing.T) {
	window, ok := NextWindow(1000, 5000, 6, 100)
	if !ok {
		t.Fatalf("expected a window")
	}
	if window.From != 1001 || window.To != 1100 {
		t.Fatalf("window not capped: %+v", window)
	}
}

func TestNextWindowUncappedWhenSmall(t *testing.T) {
	window, ok := NextWindow(1000, 1010, 6, 100)
	if !ok {
		t.Fatalf("expected a window")
	}
	if window.From != 1001 || window.To != 1004 {
		t.Fatalf("window mismatch: %+v", window)
	}
}
