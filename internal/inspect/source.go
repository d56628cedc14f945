package inspect

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/blockinsight7000-ledger/pkg/safe"
)

// BlockSource reads blocks and transactions from a node.
type BlockSource struct {
	rpc RPCClient
}

// NewBlockSource creates a BlockSource over rpc.
func NewBlockSource(rpc RPCClient) *BlockSource {
	return &BlockSource{rpc: rpc}
}

// LatestHeight returns the latest block height available from the node.
func (s *BlockSource) LatestHeight(_ context.Context) (uint64, error) {
	count, err := s.rpc.GetBlockCount()
	if err != nil {
		return 0, err
	}
	height, err := safe.Uint64(count)
	if err != nil {
		return 0, fmt.Errorf("block count overflow: %w", err)
	}
	return height, nil
}

// FetchBlock retrieves the block at height with every transaction in its
// legacy serialization.
func (s *BlockSource) FetchBlock(ctx context.Context, height uint64) (*Block, error) {
	if height > math.MaxInt64 {
		return nil, fmt.Errorf("block height %d exceeds rpc limit", height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash, err := s.rpc.GetBlockHash(int64(height))
	if err != nil {
		return nil, fmt.Errorf("get block hash at height %d: %w", height, err)
	}
	msg, err := s.rpc.GetBlock(hash)
	if err != nil {
		return nil, fmt.Errorf("get block %s: %w", hash, err)
	}

	blockTime, err := safe.Uint32(msg.Header.Timestamp.Unix())
	if err != nil {
		return nil, fmt.Errorf("block %s timestamp: %w", hash, err)
	}

	block := &Block{
		Height:       height,
		Hash:         *hash,
		Time:         blockTime,
		Transactions: make([][]byte, 0, len(msg.Transactions)),
	}
	for i, tx := range msg.Transactions {
		raw, err := legacyBytes(tx)
		if err != nil {
			return nil, fmt.Errorf("block %s tx %d: %w", hash, i, err)
		}
		block.Transactions = append(block.Transactions, raw)
	}
	return block, nil
}

// FetchTransaction retrieves one transaction by its display-order id.
func (s *BlockSource) FetchTransaction(ctx context.Context, txid string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return nil, fmt.Errorf("parse txid %q: %w", txid, err)
	}
	tx, err := s.rpc.GetRawTransaction(hash)
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", hash, err)
	}
	return legacyBytes(tx.MsgTx())
}

// legacyBytes drops witness data, which the transaction codec does not carry.
func legacyBytes(tx *wire.MsgTx) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSizeStripped())
	if err := tx.SerializeNoWitness(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
