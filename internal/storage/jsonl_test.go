package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"bridgeRelay/internal/model"
)

func TestJsonlSinkAppendsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	sink := NewJsonlSink(path)

	records := []model.RelayRecord{
		{
			EventID:     model.EventID{TxHash: "0xaa", LogIndex: 0},
			BlockNumber: 15005,
			Outcome:     model.OutcomeRelayed,
			DestTxHash:  "0xdd",
			Attempts:    1,
			RecordedAt:  "2026-01-01T00:00:00Z",
		},
		{
			EventID:     model.EventID{TxHash: "0xbb", LogIndex: 2},
			BlockNumber: 15010,
			Outcome:     model.OutcomeDeadLettered,
			Reason:      "destination explicitly rejected",
			RecordedAt:  "2026-01-01T00:00:01Z",
		},
	}

	for _, record := range records {
		if err := sink.PutRecord(record); err != nil {
			t.Fatalf("put record: %v", err)
		}
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var got []model.RelayRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record model.RelayRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		got = append(got, record)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(got) != len(records) {
		t.Fatalf("record count mismatch: %d != %d", len(got), len(records))
	}
	for i := range records {
		if got[i] != records[i] {
			t.Fatalf("record %d mismatch: %+v != %+v", i, got[i], records[i])
		}
	}
}
