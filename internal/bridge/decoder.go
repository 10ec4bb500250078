package bridge

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"bridgeRelay/internal/model"
)

// LockDecoder decodes TokensLocked bridge events. Decoding is pure and
// stateless: identical input yields an identical LockEvent.
type LockDecoder struct {
	event  abi.Event
	topic0 string
}

// NewLockDecoder builds a decoder for the TokensLocked event.
func NewLockDecoder() (*LockDecoder, error) {
	bridgeABI, err := BridgeABI()
	if err != nil {
		return nil, err
	}

	event, ok := bridgeABI.Events["TokensLocked"]
	if !ok {
		return nil, fmt.Errorf("bridge abi missing TokensLocked event")
	}

	return &LockDecoder{
		event:  event,
		topic0: strings.ToLower(event.ID.Hex()),
	}, nil
}

// Topic0 returns the event signature hash.
func (d *LockDecoder) Topic0() common.Hash {
	return d.event.ID
}

// CanDecode checks if the topic0 is the TokensLocked signature.
func (d *LockDecoder) CanDecode(topic0 string) bool {
	if topic0 == "" {
		return false
	}
	return strings.ToLower(topic0) == d.topic0
}

// Decode converts a LogRecord into a LockEvent. A shape mismatch (wrong
// topic count, wrong data width) fails with a DecodeError.
func (d *LockDecoder) Decode(log model.LogRecord) (model.LockEvent, error) {
	if len(log.Topics) == 0 {
		return model.LockEvent{}, d.decodeErr(log, fmt.Errorf("missing topics"))
	}
	if !d.CanDecode(log.Topics[0]) {
		return model.LockEvent{}, d.decodeErr(log, fmt.Errorf("unsupported topic0: %s", log.Topics[0]))
	}

	indexedTopics, err := parseIndexedTopics(d.event, log.Topics)
	if err != nil {
		return model.LockEvent{}, d.decodeErr(log, err)
	}

	var indexed struct {
		User  common.Address
		Token common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(d.event.Inputs), indexedTopics); err != nil {
		return model.LockEvent{}, d.decodeErr(log, fmt.Errorf("parse topics: %w", err))
	}

	values, err := unpackNonIndexed(d.event, log.Data)
	if err != nil {
		return model.LockEvent{}, d.decodeErr(log, err)
	}
	if len(values) != 2 {
		return model.LockEvent{}, d.decodeErr(log, fmt.Errorf("unexpected lock values: %d", len(values)))
	}

	amount, err := asBigInt(values[0])
	if err != nil {
		return model.LockEvent{}, d.decodeErr(log, err)
	}
	destChainID, err := asBigInt(values[1])
	if err != nil {
		return model.LockEvent{}, d.decodeErr(log, err)
	}
	if !destChainID.IsUint64() {
		return model.LockEvent{}, d.decodeErr(log, fmt.Errorf("destination chain id out of range: %s", destChainID))
	}

	return model.LockEvent{
		Address:            log.Address,
		EventName:          d.event.Name,
		User:               indexed.User.Hex(),
		Token:              indexed.Token.Hex(),
		Amount:             amount.String(),
		DestinationChainID: destChainID.Uint64(),
		BlockNumber:        log.BlockNumber,
		TxHash:             log.TxHash,
		LogIndex:           log.LogIndex,
	}, nil
}

func (d *LockDecoder) decodeErr(log model.LogRecord, err error) error {
	return &model.DecodeError{ID: log.ID(), Err: err}
}

func parseIndexedTopics(event abi.Event, topics []string) ([]common.Hash, error) {
	indexedCount := len(indexedArguments(event.Inputs))
	if len(topics) != indexedCount+1 {
		return nil, fmt.Errorf("expected %d topics, got %d", indexedCount+1, len(topics))
	}
	return parseTopicHashes(topics[1:])
}

func parseTopicHashes(topics []string) ([]common.Hash, error) {
	out := make([]common.Hash, 0, len(topics))
	for _, topic := range topics {
		data, err := hexutil.Decode(topic)
		if err != nil {
			return nil, fmt.Errorf("invalid topic: %w", err)
		}
		if len(data) > 32 {
			return nil, fmt.Errorf("topic length %d", len(data))
		}
		out = append(out, common.BytesToHash(data))
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

func unpackNonIndexed(event abi.Event, dataHex string) ([]interface{}, error) {
	data, err := hexutil.Decode(dataHex)
	if err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	values, err := event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	return values, nil
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported numeric type %T", value)
	}
}
