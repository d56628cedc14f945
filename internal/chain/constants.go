package chain

import (
	"math"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

const (
	// MinCoinbaseSize is the smallest allowed coinbase input script, in bytes.
	MinCoinbaseSize = 2
	// MaxCoinbaseSize is the largest allowed coinbase input script, in bytes.
	MaxCoinbaseSize = 100

	// LocktimeThreshold separates block-height locktimes (below) from unix timestamps.
	LocktimeThreshold = txscript.LockTimeThreshold

	// MaxInputSequence marks an input as final.
	MaxInputSequence = wire.MaxTxInSequenceNum

	// NullIndex is the output index carried by a null (coinbase) previous output.
	NullIndex = math.MaxUint32
)

// protocolVersion is passed to the wire varint helpers; the transaction
// encoding does not vary with it.
const protocolVersion uint32 = 0

const (
	outPointSize = chainhash.HashSize + 4

	// smallest encodings: outpoint + empty script + sequence, value + empty script
	minInputSize  = outPointSize + 1 + 4
	minOutputSize = 8 + 1

	maxInputsPerTransaction  = wire.MaxMessagePayload/minInputSize + 1
	maxOutputsPerTransaction = wire.MaxMessagePayload/minOutputSize + 1
	maxScriptSize            = wire.MaxMessagePayload
)
