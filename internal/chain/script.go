package chain

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// multisigSigOps is what legacy counting charges for a CHECKMULTISIG whose key
// count cannot be read from the preceding opcode.
const multisigSigOps = 20

// Script is a raw input or output script.
type Script []byte

// SerializedSize returns the script length, plus its compact-size length prefix when prefix is set.
func (s Script) SerializedSize(prefix bool) uint64 {
	size := uint64(len(s))
	if prefix {
		size += uint64(wire.VarIntSerializeSize(size))
	}
	return size
}

// SignatureOperations counts signature checking opcodes. With accurate unset
// every CHECKMULTISIG costs 20, matching legacy block limits; with accurate set
// a CHECKMULTISIG preceded by OP_1..OP_16 costs that many.
// A script that fails to parse is counted up to the point of failure.
func (s Script) SignatureOperations(accurate bool) uint64 {
	if !accurate {
		return uint64(txscript.GetSigOpCount(s))
	}

	var (
		count uint64
		prev  byte = txscript.OP_INVALIDOPCODE
	)
	tokenizer := txscript.MakeScriptTokenizer(0, s)
	for tokenizer.Next() {
		op := tokenizer.Opcode()
		switch op {
		case txscript.OP_CHECKSIG, txscript.OP_CHECKSIGVERIFY:
			count++
		case txscript.OP_CHECKMULTISIG, txscript.OP_CHECKMULTISIGVERIFY:
			if prev >= txscript.OP_1 && prev <= txscript.OP_16 {
				count += uint64(prev-txscript.OP_1) + 1
			} else {
				count += multisigSigOps
			}
		}
		prev = op
	}
	return count
}

// IsValid reports whether every opcode of the script parses.
func (s Script) IsValid() bool {
	tokenizer := txscript.MakeScriptTokenizer(0, s)
	for tokenizer.Next() {
	}
	return tokenizer.Err() == nil
}

// Class returns the standard script class.
func (s Script) Class() txscript.ScriptClass {
	return txscript.GetScriptClass(s)
}

// String disassembles the script; unparseable tails are marked by txscript.
func (s Script) String() string {
	disasm, err := txscript.DisasmString(s)
	if err != nil {
		return disasm + " [error]"
	}
	return disasm
}
