package model

import (
	"fmt"
	"strconv"
	"strings"
)

// EventID uniquely identifies one source event by its origin transaction
// hash and log index.
type EventID struct {
	TxHash   string `json:"tx_hash"`
	LogIndex uint64 `json:"log_index"`
}

// String renders the EventID in txhash:logindex form.
func (id EventID) String() string {
	return fmt.Sprintf("%s:%d", strings.ToLower(id.TxHash), id.LogIndex)
}

// ParseEventID parses the txhash:logindex form back into an EventID.
func ParseEventID(s string) (EventID, error) {
	sep := strings.LastIndex(s, ":")
	if sep <= 0 || sep == len(s)-1 {
		return EventID{}, fmt.Errorf("invalid event id: %s", s)
	}
	index, err := strconv.ParseUint(s[sep+1:], 10, 64)
	if err != nil {
		return EventID{}, fmt.Errorf("invalid event id log index: %s", s)
	}
	return EventID{TxHash: s[:sep], LogIndex: index}, nil
}

// LockEvent is the decoded TokensLocked bridge event.
type LockEvent struct {
	Address            string `json:"address"`
	EventName          string `json:"event_name"`
	User               string `json:"user"`
	Token              string `json:"token"`
	Amount             string `json:"amount"`
	DestinationChainID uint64 `json:"destination_chain_id"`
	BlockNumber        uint64 `json:"block_number"`
	TxHash             string `json:"tx_hash"`
	LogIndex           uint64 `json:"log_index"`
}

// ID returns the EventID for the event.
func (e LockEvent) ID() EventID {
	return EventID{TxHash: e.TxHash, LogIndex: e.LogIndex}
}
