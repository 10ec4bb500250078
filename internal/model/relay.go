package model

// RelayAction is the mint instruction derived from one lock event. It
// carries the source EventID so the destination can dedup replays.
type RelayAction struct {
	EventID            EventID `json:"event_id"`
	Recipient          string  `json:"recipient"`
	Token              string  `json:"token"`
	Amount             string  `json:"amount"`
	DestinationChainID uint64  `json:"destination_chain_id"`
	SourceBlockNumber  uint64  `json:"source_block_number"`
}

// RelayReceipt is returned by a successful relay submission.
type RelayReceipt struct {
	DestTxHash string `json:"dest_tx_hash"`
	Attempts   int    `json:"attempts"`
}

// Relay outcomes recorded in the audit sink.
const (
	OutcomeRelayed      = "relayed"
	OutcomeDeadLettered = "dead_lettered"
	OutcomeDecodeFailed = "decode_failed"
)

// RelayRecord is one audit row written after an event reaches a terminal
// outcome.
type RelayRecord struct {
	EventID     EventID `json:"event_id"`
	BlockNumber uint64  `json:"block_number"`
	Outcome     string  `json:"outcome"`
	Reason      string  `json:"reason,omitempty"`
	DestTxHash  string  `json:"dest_tx_hash,omitempty"`
	Attempts    int     `json:"attempts,omitempty"`
	RecordedAt  string  `json:"recorded_at"`
}
