package bridge

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"bridgeRelay/internal/model"
)

func buildLockRecord(t *testing.T, user, token common.Address, amount *big.Int, destChainID *big.Int) model.LogRecord {
	t.Helper()

	bridgeABI, err := BridgeABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	data, err := bridgeABI.Events["TokensLocked"].Inputs.NonIndexed().Pack(amount, destChainID)
	if err != nil {
		t.Fatalf("pack lock: %v", err)
	}

	return model.LogRecord{
		BlockNumber: 15005,
		BlockHash:   "0x" + common.Bytes2Hex(common.LeftPadBytes([]byte{0xbb}, 32)),
		TxHash:      "0x" + common.Bytes2Hex(common.LeftPadBytes([]byte{0xaa}, 32)),
		TxIndex:     1,
		LogIndex:    3,
		Address:     "0x1234567890123456789012345678901234567890",
		Topics: []string{
			bridgeABI.Events["TokensLocked"].ID.Hex(),
			topicFromAddress(user).Hex(),
			topicFromAddress(token).Hex(),
		},
		Data: hexutil.Encode(data),
	}
}

func topicFromAddress(addr common.Address) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(addr.Bytes(), 32))
}

func TestLockDecoderDecode(t *testing.T) {
	decoder, err := NewLockDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	user := common.HexToAddress("0x2222222222222222222222222222222222222222")
	token := common.HexToAddress("0x3333333333333333333333333333333333333333")
	amount := new(big.Int).Mul(big.NewInt(500), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

	record := buildLockRecord(t, user, token, amount, big.NewInt(2))

	event, err := decoder.Decode(record)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if event.User != user.Hex() || event.Token != token.Hex() {
		t.Fatalf("address mismatch: %+v", event)
	}
	if event.Amount != amount.String() {
		t.Fatalf("amount mismatch: %s", event.Amount)
	}
	if event.DestinationChainID != 2 {
		t.Fatalf("destination chain mismatch: %d", event.DestinationChainID)
	}
	if event.EventName != "TokensLocked" {
		t.Fatalf("event name mismatch: %s", event.EventName)
	}
	if event.BlockNumber != 15005 || event.LogIndex != 3 {
		t.Fatalf("origin mismatch: %+v", event)
	}
	if event.ID() != record.ID() {
		t.Fatalf("event id mismatch: %s != %s", event.ID(), record.ID())
	}
}

func TestLockDecoderDeterministic(t *testing.T) {
	decoder, err := NewLockDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	user := common.HexToAddress("0x2222222222222222222222222222222222222222")
	token := common.HexToAddress("0x3333333333333333333333333333333333333333")
	record := buildLockRecord(t, user, token, big.NewInt(1000), big.NewInt(2))

	first, err := decoder.Decode(record)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	second, err := decoder.Decode(record)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first != second {
		t.Fatalf("decode not deterministic: %+v != %+v", first, second)
	}
}

func TestLockDecoderWrongTopicCount(t *testing.T) {
	decoder, err := NewLockDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	user := common.HexToAddress("0x2222222222222222222222222222222222222222")
	token := common.HexToAddress("0x3333333333333333333333333333333333333333")
	record := buildLockRecord(t, user, token, big.NewInt(1000), big.NewInt(2))
	record.Topics = record.Topics[:2]

	_, err = decoder.Decode(record)
	var decodeErr *model.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decodeErr.ID != record.ID() {
		t.Fatalf("decode error id mismatch: %s", decodeErr.ID)
	}
}

func TestLockDecoderShortData(t *testing.T) {
	decoder, err := NewLockDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	user := common.HexToAddress("0x2222222222222222222222222222222222222222")
	token := common.HexToAddress("0x3333333333333333333333333333333333333333")
	record := buildLockRecord(t, user, token, big.NewInt(1000), big.NewInt(2))
	record.Data = "0xdeadbeef"

	if _, err := decoder.Decode(record); !model.IsDecode(err) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestLockDecoderCanDecode(t *testing.T) {
	decoder, err := NewLockDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	if !decoder.CanDecode(decoder.Topic0().Hex()) {
		t.Fatalf("expected topic0 to be decodable")
	}
	if decoder.CanDecode("") || decoder.CanDecode("0xabc") {
		t.Fatalf("unexpected decodable topic")
	}
}
