package chain

import (
	"context"

	"bridgeRelay/internal/model"
)

// Reader is the capability the listener needs from a source chain: the
// current head and the filtered logs for a confirmed block range.
//
// FilterLogs returns records ordered by (block number, log index) ascending;
// an empty slice is a valid result. A partial fetch fails the whole call,
// implementations never silently drop records.
type Reader interface {
	LatestHeight(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64) ([]model.LogRecord, error)
}
