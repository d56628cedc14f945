package inspect

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	RPCClient interface {
		GetBlockCount() (int64, error)
		GetBlockHash(blockHeight int64) (*chainhash.Hash, error)
		GetBlock(blockHash *chainhash.Hash) (*wire.MsgBlock, error)
		GetRawTransaction(txHash *chainhash.Hash) (*btcutil.Tx, error)
	}
	Source interface {
		LatestHeight(ctx context.Context) (uint64, error)
		FetchBlock(ctx context.Context, height uint64) (*Block, error)
	}
	TransactionInspector interface {
		Inspect(raw []byte, height uint64, blockTime uint32) (Report, error)
	}
	ReportWriter interface {
		Start(ctx context.Context)
		Stop()
		Write(ctx context.Context, report Report) error
		Err() error
	}
	InspectorMetrics interface {
		ObserveTransaction(err error, flags []string, started time.Time)
	}
	FollowerMetrics interface {
		ObserveFetchTip(err error)
		ObserveBlock(err error, height uint64, txs int, started time.Time)
	}
)

// Block is a fetched block reduced to what inspection needs: its position and
// the legacy serialization of every transaction, in block order.
type Block struct {
	Height       uint64
	Hash         chainhash.Hash
	Time         uint32
	Transactions [][]byte
}
