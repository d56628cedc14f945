package chain

import (
	"fmt"
	"io"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// Output assigns a value in satoshis to a locking script.
type Output struct {
	Value  uint64
	Script Script
}

// FromReader decodes the output. On failure the output is zeroed.
func (out *Output) FromReader(r io.Reader) error {
	*out = Output{}
	value, err := readUint64(r)
	if err != nil {
		return fmt.Errorf("read output value: %w", err)
	}
	script, err := wire.ReadVarBytes(r, protocolVersion, maxScriptSize, "output script")
	if err != nil {
		return fmt.Errorf("read output script: %w", err)
	}
	out.Value = value
	out.Script = script
	return nil
}

// Serialize writes value and length-prefixed script.
func (out Output) Serialize(w io.Writer) error {
	if err := writeUint64(w, out.Value); err != nil {
		return err
	}
	return wire.WriteVarBytes(w, protocolVersion, out.Script)
}

// SerializedSize returns the exact encoded length.
func (out Output) SerializedSize() uint64 {
	return 8 + out.Script.SerializedSize(true)
}

func (out Output) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\tvalue = %d (%s)\n", out.Value, btcutil.Amount(out.Value))
	fmt.Fprintf(&b, "\tscript = %s\n", out.Script)
	return b.String()
}
