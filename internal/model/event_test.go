package model

import (
	"testing"
)

func TestEventIDStringParseRoundTrip(t *testing.T) {
	original := EventID{TxHash: "0xdef4567890", LogIndex: 3}

	parsed, err := ParseEventID(original.String())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed != original {
		t.Fatalf("round-trip mismatch: %+v != %+v", parsed, original)
	}
}

func TestEventIDStringLowercasesHash(t *testing.T) {
	id := EventID{TxHash: "0xDEF456", LogIndex: 0}
	if id.String() != "0xdef456:0" {
		t.Fatalf("unexpected string form: %s", id.String())
	}
}

func TestParseEventIDInvalid(t *testing.T) {
	for _, input := range []string{"", "0xabc", "0xabc:", ":5", "0xabc:notanumber"} {
		if _, err := ParseEventID(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestLockEventID(t *testing.T) {
	event := LockEvent{TxHash: "0xaa", LogIndex: 4, BlockNumber: 100}
	want := EventID{TxHash: "0xaa", LogIndex: 4}
	if event.ID() != want {
		t.Fatalf("id mismatch: %+v", event.ID())
	}
}
