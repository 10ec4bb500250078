package chain

import (
	"context"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"bridgeRelay/internal/model"
)

// Client is the RPC-backed Reader for a real source chain.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client

	addresses []common.Address
	topic0    []common.Hash
}

// NewClient dials the RPC URL and scopes the client to the given contract
// addresses and topic0 filters.
func NewClient(ctx context.Context, rpcURL string, addresses []common.Address, topic0 []common.Hash) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, &model.ConnectivityError{Err: err}
	}

	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		addresses: addresses,
		topic0:    topic0,
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// ChainID returns the source chain ID.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.ethClient.ChainID(ctx)
	if err != nil {
		return nil, &model.ConnectivityError{Err: err}
	}
	return id, nil
}

// LatestHeight returns the current head block number.
func (c *Client) LatestHeight(ctx context.Context) (uint64, error) {
	height, err := c.ethClient.BlockNumber(ctx)
	if err != nil {
		return 0, &model.ConnectivityError{Err: err}
	}
	return height, nil
}

// FilterLogs returns logs in the given inclusive range for the configured
// address and topic0 filters, ordered by (block number, log index).
func (c *Client) FilterLogs(ctx context.Context, fromBlock, toBlock uint64) ([]model.LogRecord, error) {
	if fromBlock > toBlock {
		return nil, &model.RangeError{From: fromBlock, To: toBlock}
	}

	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: c.addresses,
	}
	if len(c.topic0) > 0 {
		query.Topics = [][]common.Hash{c.topic0}
	}

	logs, err := c.ethClient.FilterLogs(ctx, query)
	if err != nil {
		return nil, &model.ConnectivityError{Err: err}
	}

	records := make([]model.LogRecord, 0, len(logs))
	for _, log := range logs {
		records = append(records, buildLogRecord(log))
	}
	SortRecords(records)
	return records, nil
}

func buildLogRecord(log types.Log) model.LogRecord {
	topics := make([]string, 0, len(log.Topics))
	for _, topic := range log.Topics {
		topics = append(topics, topic.Hex())
	}

	return model.LogRecord{
		BlockNumber: log.BlockNumber,
		BlockHash:   log.BlockHash.Hex(),
		TxHash:      log.TxHash.Hex(),
		TxIndex:     uint64(log.TxIndex),
		LogIndex:    uint64(log.Index),
		Address:     log.Address.Hex(),
		Topics:      topics,
		Data:        hexutil.Encode(log.Data),
		Removed:     log.Removed,
	}
}

// SortRecords sorts records into the canonical (block number, log index)
// order.
func SortRecords(records []model.LogRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].BlockNumber != records[j].BlockNumber {
			return records[i].BlockNumber < records[j].BlockNumber
		}
		return records[i].LogIndex < records[j].LogIndex
	})
}
