package chain

import (
	"fmt"
	"io"
	"strings"

	"github.com/btcsuite/btcd/wire"
)

// Input spends a previous output.
type Input struct {
	PreviousOutput OutPoint
	Script         Script
	Sequence       uint32
}

// NewCoinbaseInput builds an input with a null previous output and a final sequence.
func NewCoinbaseInput(script Script) Input {
	return Input{
		PreviousOutput: NullOutPoint(),
		Script:         script,
		Sequence:       MaxInputSequence,
	}
}

// IsFinal reports whether the sequence is at its maximum.
func (in Input) IsFinal() bool {
	return in.Sequence == MaxInputSequence
}

// FromReader decodes the input. On failure the input is zeroed.
func (in *Input) FromReader(r io.Reader) error {
	*in = Input{}
	if err := in.decode(r); err != nil {
		*in = Input{}
		return err
	}
	return nil
}

func (in *Input) decode(r io.Reader) error {
	if err := in.PreviousOutput.FromReader(r); err != nil {
		return err
	}
	script, err := wire.ReadVarBytes(r, protocolVersion, maxScriptSize, "input script")
	if err != nil {
		return fmt.Errorf("read input script: %w", err)
	}
	in.Script = script
	if in.Sequence, err = readUint32(r); err != nil {
		return fmt.Errorf("read input sequence: %w", err)
	}
	return nil
}

// Serialize writes outpoint, length-prefixed script and sequence.
func (in Input) Serialize(w io.Writer) error {
	if err := in.PreviousOutput.Serialize(w); err != nil {
		return err
	}
	if err := wire.WriteVarBytes(w, protocolVersion, in.Script); err != nil {
		return err
	}
	return writeUint32(w, in.Sequence)
}

// SerializedSize returns the exact encoded length.
func (in Input) SerializedSize() uint64 {
	return in.PreviousOutput.SerializedSize() + in.Script.SerializedSize(true) + 4
}

func (in Input) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\tprevious output = %s\n", in.PreviousOutput)
	fmt.Fprintf(&b, "\tscript = %s\n", in.Script)
	fmt.Fprintf(&b, "\tsequence = %d\n", in.Sequence)
	return b.String()
}
