package chain

import (
	"context"
	"math/big"
	"math/rand"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"bridgeRelay/internal/model"
)

// SimulatedConfig configures the in-process chain generator.
type SimulatedConfig struct {
	Seed        int64
	StartHeight uint64
	Contract    common.Address
	Topic0      common.Hash
	// EventRate is the per-block probability of a lock event, in [0,1].
	EventRate float64
}

// Simulated is an in-process Reader that advances its head on every height
// query and fabricates ABI-consistent TokensLocked logs. Log content is
// derived from the seed and the block number alone, so rescanning a range
// reproduces identical records.
type Simulated struct {
	cfg SimulatedConfig

	mu   sync.Mutex
	rng  *rand.Rand
	head uint64
}

// NewSimulated builds a simulated chain starting at cfg.StartHeight.
func NewSimulated(cfg SimulatedConfig) *Simulated {
	if cfg.EventRate <= 0 {
		cfg.EventRate = 0.2
	}
	return &Simulated{
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
		head: cfg.StartHeight,
	}
}

// LatestHeight advances the simulated head by 1-3 blocks and returns it.
func (s *Simulated) LatestHeight(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.head += uint64(s.rng.Intn(3)) + 1
	return s.head, nil
}

// FilterLogs fabricates logs for the range. Stable per block.
func (s *Simulated) FilterLogs(_ context.Context, fromBlock, toBlock uint64) ([]model.LogRecord, error) {
	if fromBlock > toBlock {
		return nil, &model.RangeError{From: fromBlock, To: toBlock}
	}

	records := make([]model.LogRecord, 0)
	for block := fromBlock; block <= toBlock; block++ {
		blockRng := rand.New(rand.NewSource(s.cfg.Seed ^ int64(block)))
		if blockRng.Float64() >= s.cfg.EventRate {
			continue
		}
		records = append(records, s.buildLog(blockRng, block))
	}
	return records, nil
}

func (s *Simulated) buildLog(rng *rand.Rand, block uint64) model.LogRecord {
	user := randomAddress(rng)
	token := randomAddress(rng)
	amount := new(big.Int).Mul(
		big.NewInt(int64(rng.Intn(99901)+100)),
		new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),
	)
	destChainID := big.NewInt(2)

	data := make([]byte, 0, 64)
	data = append(data, common.LeftPadBytes(amount.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(destChainID.Bytes(), 32)...)

	txHash := randomHash(rng)
	blockHash := randomHash(rng)

	return model.LogRecord{
		BlockNumber: block,
		BlockHash:   blockHash.Hex(),
		TxHash:      txHash.Hex(),
		TxIndex:     uint64(rng.Intn(10)),
		LogIndex:    uint64(rng.Intn(5)),
		Address:     s.cfg.Contract.Hex(),
		Topics: []string{
			s.cfg.Topic0.Hex(),
			topicFromAddress(user).Hex(),
			topicFromAddress(token).Hex(),
		},
		Data:    hexutil.Encode(data),
		Removed: false,
	}
}

func randomAddress(rng *rand.Rand) common.Address {
	var addr common.Address
	rng.Read(addr[:])
	return addr
}

func randomHash(rng *rand.Rand) common.Hash {
	var h common.Hash
	rng.Read(h[:])
	return h
}

func topicFromAddress(addr common.Address) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(addr.Bytes(), 32))
}
