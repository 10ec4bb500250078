package storage

import "bridgeRelay/internal/model"

// AuditSink records terminal relay outcomes for operator reconciliation.
type AuditSink interface {
	PutRecord(record model.RelayRecord) error
}

// NopSink discards records.
type NopSink struct{}

func (NopSink) PutRecord(model.RelayRecord) error { return nil }
