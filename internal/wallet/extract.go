package wallet

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/goodnatureofminers/blockinsight7000-ledger/internal/chain"
)

// scriptPattern is the closed set of script shapes an address can be read from.
type scriptPattern int

const (
	patternUnknown scriptPattern = iota
	patternPayKeyHash
	patternPayScriptHash
	patternSignKeyHash
	patternSignScriptHash
)

// ExtractAddress reads a mainnet address from an input or output script. The
// result is invalid when the script shape is not supported or the script
// does not parse.
func ExtractAddress(script chain.Script) PaymentAddress {
	return ExtractAddressWithVersions(script, MainnetVersions)
}

// ExtractAddressWithVersions is ExtractAddress for an arbitrary network.
func ExtractAddressWithVersions(script chain.Script, versions Versions) PaymentAddress {
	pattern, payload := classify(script)
	switch pattern {
	case patternPayKeyHash:
		var hash ShortHash
		copy(hash[:], payload)
		return FromHash(hash, versions.PubKeyHash)
	case patternPayScriptHash:
		var hash ShortHash
		copy(hash[:], payload)
		return FromHash(hash, versions.ScriptHash)
	case patternSignKeyHash:
		return FromHash(shortHash(payload), versions.PubKeyHash)
	case patternSignScriptHash:
		return FromHash(shortHash(payload), versions.ScriptHash)
	default:
		return PaymentAddress{}
	}
}

// classify returns the pattern and the bytes the address is built from: the
// embedded hash for pay patterns, the public key or redeem script for sign
// patterns.
func classify(script chain.Script) (scriptPattern, []byte) {
	switch script.Class() {
	case txscript.PubKeyHashTy:
		// OP_DUP OP_HASH160 <20> OP_EQUALVERIFY OP_CHECKSIG
		return patternPayKeyHash, script[3 : 3+ShortHashSize]
	case txscript.ScriptHashTy:
		// OP_HASH160 <20> OP_EQUAL
		return patternPayScriptHash, script[2 : 2+ShortHashSize]
	}

	pushes, ok := pushOnly(script)
	if !ok {
		return patternUnknown, nil
	}

	// <signature> <public key>
	if len(pushes) == 2 && len(pushes[0].data) > 0 {
		if _, err := btcec.ParsePubKey(pushes[1].data); err == nil {
			return patternSignKeyHash, pushes[1].data
		}
	}

	// OP_0 <signature>... <multisig redeem script>
	if len(pushes) >= 2 && pushes[0].opcode == txscript.OP_0 {
		redeem := pushes[len(pushes)-1].data
		if txscript.GetScriptClass(redeem) == txscript.MultiSigTy {
			return patternSignScriptHash, redeem
		}
	}

	return patternUnknown, nil
}

type push struct {
	opcode byte
	data   []byte
}

// pushOnly splits a non-empty script made only of push opcodes. It fails on
// any other opcode or on a parse error.
func pushOnly(script chain.Script) ([]push, bool) {
	if len(script) == 0 {
		return nil, false
	}

	var pushes []push
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		if tokenizer.Opcode() > txscript.OP_16 {
			return nil, false
		}
		pushes = append(pushes, push{opcode: tokenizer.Opcode(), data: tokenizer.Data()})
	}
	if tokenizer.Err() != nil {
		return nil, false
	}
	return pushes, true
}
