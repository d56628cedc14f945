package chain

import (
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// OutPoint references an output of a previous transaction.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NullOutPoint returns the previous output reference carried by coinbase inputs.
func NullOutPoint() OutPoint {
	return OutPoint{Index: NullIndex}
}

// IsNull reports whether the reference is the coinbase marker (zero hash, max index).
func (o OutPoint) IsNull() bool {
	return o.Index == NullIndex && o.Hash == (chainhash.Hash{})
}

// FromReader decodes the outpoint. On failure the outpoint is zeroed.
func (o *OutPoint) FromReader(r io.Reader) error {
	*o = OutPoint{}
	if _, err := io.ReadFull(r, o.Hash[:]); err != nil {
		return fmt.Errorf("read outpoint hash: %w", err)
	}
	index, err := readUint32(r)
	if err != nil {
		o.Hash = chainhash.Hash{}
		return fmt.Errorf("read outpoint index: %w", err)
	}
	o.Index = index
	return nil
}

// Serialize writes the 36-byte wire form.
func (o OutPoint) Serialize(w io.Writer) error {
	if _, err := w.Write(o.Hash[:]); err != nil {
		return err
	}
	return writeUint32(w, o.Index)
}

// SerializedSize is always 36.
func (o OutPoint) SerializedSize() uint64 {
	return outPointSize
}

func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.Hash, o.Index)
}
