package checkpoint

import (
	"context"
	"sort"

	"bridgeRelay/internal/model"
)

// Store loads and persists checkpoint state. Load returns a zero-value
// state at the configured start height when nothing is persisted yet, and a
// CorruptStateError when persisted state exists but cannot be parsed.
// Persist atomically replaces the durable copy; failures are
// PersistenceErrors and retryable.
type Store interface {
	Load(ctx context.Context) (*State, error)
	Persist(ctx context.Context, state *State) error
}

// ProcessedEvent is one relayed EventID with its origin block, the durable
// form of a dedup set entry.
type ProcessedEvent struct {
	TxHash      string `json:"tx_hash"`
	LogIndex    uint64 `json:"log_index"`
	BlockNumber uint64 `json:"block_number"`
}

// State is the running checkpoint: the last confirmed-processed height and
// the set of already-relayed EventIDs. Mutated only by the listener's
// control goroutine.
type State struct {
	lastProcessedHeight uint64
	processed           map[string]ProcessedEvent
	pruneFloor          uint64
}

// NewState builds an empty state positioned at startHeight.
func NewState(startHeight uint64) *State {
	return &State{
		lastProcessedHeight: startHeight,
		processed:           make(map[string]ProcessedEvent),
	}
}

// LastProcessedHeight returns the checkpointed height.
func (s *State) LastProcessedHeight() uint64 {
	return s.lastProcessedHeight
}

// Has reports whether the EventID has already been relayed or
// dead-lettered.
func (s *State) Has(id model.EventID) bool {
	_, ok := s.processed[id.String()]
	return ok
}

// MarkProcessed records the EventID with its origin block.
func (s *State) MarkProcessed(id model.EventID, blockNumber uint64) {
	s.processed[id.String()] = ProcessedEvent{
		TxHash:      id.TxHash,
		LogIndex:    id.LogIndex,
		BlockNumber: blockNumber,
	}
}

// AdvanceHeight moves the checkpoint forward. The height never decreases.
func (s *State) AdvanceHeight(height uint64) {
	if height > s.lastProcessedHeight {
		s.lastProcessedHeight = height
	}
}

// Prune drops processed entries whose origin block is older than
// lastProcessedHeight - retentionWindow. Heights below the confirmation
// floor can never be rescanned, so the entries are no longer load-bearing.
func (s *State) Prune(retentionWindow uint64) {
	if s.lastProcessedHeight <= retentionWindow {
		return
	}
	floor := s.lastProcessedHeight - retentionWindow
	for key, entry := range s.processed {
		if entry.BlockNumber < floor {
			delete(s.processed, key)
		}
	}
	if floor > s.pruneFloor {
		s.pruneFloor = floor
	}
}

// ProcessedCount returns the size of the dedup set.
func (s *State) ProcessedCount() int {
	return len(s.processed)
}

// ProcessedEvents returns the dedup set sorted by (block, tx hash, log
// index), the canonical persisted order.
func (s *State) ProcessedEvents() []ProcessedEvent {
	events := make([]ProcessedEvent, 0, len(s.processed))
	for _, entry := range s.processed {
		events = append(events, entry)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].BlockNumber != events[j].BlockNumber {
			return events[i].BlockNumber < events[j].BlockNumber
		}
		if events[i].TxHash != events[j].TxHash {
			return events[i].TxHash < events[j].TxHash
		}
		return events[i].LogIndex < events[j].LogIndex
	})
	return events
}

// PruneFloor returns the lowest block number the dedup set still covers.
func (s *State) PruneFloor() uint64 {
	return s.pruneFloor
}

func restoreState(lastProcessed uint64, events []ProcessedEvent) *State {
	state := NewState(lastProcessed)
	for _, entry := range events {
		id := model.EventID{TxHash: entry.TxHash, LogIndex: entry.LogIndex}
		state.processed[id.String()] = entry
	}
	return state
}
