// Package wallet implements payment addresses: a version byte plus a 20 byte
// hash, protected by a 4 byte checksum and exchanged as base58 text.
//
// Version defaults apply to Bitcoin mainnet only; see VersionsForNetwork.
package wallet

import (
	"bytes"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/blockinsight7000-ledger/internal/chain"
)

const (
	// MainnetVersion prefixes pay-to-public-key-hash addresses on mainnet.
	MainnetVersion uint8 = 0x00
	// MainnetP2SHVersion prefixes pay-to-script-hash addresses on mainnet.
	MainnetP2SHVersion uint8 = 0x05

	ShortHashSize = 20
	ChecksumSize  = 4
	PaymentSize   = 1 + ShortHashSize + ChecksumSize
	SecretSize    = 32
)

// ErrInvalidAddress is returned when text does not decode to a valid address.
var ErrInvalidAddress = errors.New("invalid payment address")

type (
	// ShortHash is RIPEMD-160(SHA-256(data)).
	ShortHash [ShortHashSize]byte
	// Payment is version || hash || checksum, the form that is base58 encoded.
	Payment [PaymentSize]byte
	// Secret is a raw secp256k1 private key.
	Secret [SecretSize]byte
)

// PaymentAddress identifies a spending destination. The zero value is invalid.
type PaymentAddress struct {
	valid   bool
	version uint8
	hash    ShortHash
}

// AddressKey is the comparable (version, hash) projection of an address.
type AddressKey struct {
	Version uint8
	Hash    ShortHash
}

// FromPayment validates the checksum of a decoded payment.
func FromPayment(p Payment) PaymentAddress {
	body := p[:1+ShortHashSize]
	sum := checksum(body)
	if !bytes.Equal(sum[:], p[1+ShortHashSize:]) {
		return PaymentAddress{}
	}

	var hash ShortHash
	copy(hash[:], p[1:1+ShortHashSize])
	return PaymentAddress{valid: true, version: p[0], hash: hash}
}

// FromString decodes base58 text. Anything that does not decode to exactly
// 25 bytes with a matching checksum is invalid.
func FromString(encoded string) PaymentAddress {
	decoded := base58.Decode(encoded)
	if len(decoded) != PaymentSize {
		return PaymentAddress{}
	}

	var p Payment
	copy(p[:], decoded)
	return FromPayment(p)
}

// FromHash wraps a hash with the given version. Always valid.
func FromHash(hash ShortHash, version uint8) PaymentAddress {
	return PaymentAddress{valid: true, version: version, hash: hash}
}

// FromScript hashes the script bytes. Always valid.
func FromScript(script chain.Script, version uint8) PaymentAddress {
	return FromHash(shortHash(script), version)
}

// FromPublicKey hashes the compressed or uncompressed point encoding.
func FromPublicKey(key *btcec.PublicKey, version uint8, compressed bool) PaymentAddress {
	if key == nil {
		return PaymentAddress{}
	}

	var data []byte
	if compressed {
		data = key.SerializeCompressed()
	} else {
		data = key.SerializeUncompressed()
	}
	return FromHash(shortHash(data), version)
}

// FromSecretKey derives the public key of secret. A zero secret or one not
// below the curve order is invalid.
func FromSecretKey(secret Secret, version uint8, compressed bool) PaymentAddress {
	var scalar btcec.ModNScalar
	if overflow := scalar.SetBytes((*[SecretSize]byte)(&secret)); overflow != 0 || scalar.IsZero() {
		return PaymentAddress{}
	}

	_, pub := btcec.PrivKeyFromBytes(secret[:])
	return FromPublicKey(pub, version, compressed)
}

// IsValid reports whether construction succeeded.
func (a PaymentAddress) IsValid() bool { return a.valid }

// Version returns the version byte.
func (a PaymentAddress) Version() uint8 { return a.version }

// Hash returns the 20 byte payload.
func (a PaymentAddress) Hash() ShortHash { return a.hash }

// Key returns the (version, hash) projection used for equality and map keys.
func (a PaymentAddress) Key() AddressKey {
	return AddressKey{Version: a.version, Hash: a.hash}
}

// Equal compares version and hash only.
func (a PaymentAddress) Equal(other PaymentAddress) bool {
	return a.Key() == other.Key()
}

// Payment rebuilds the 25 byte form with a freshly computed checksum.
func (a PaymentAddress) Payment() Payment {
	var p Payment
	p[0] = a.version
	copy(p[1:], a.hash[:])
	sum := checksum(p[:1+ShortHashSize])
	copy(p[1+ShortHashSize:], sum[:])
	return p
}

// Encoded returns the base58 text of the payment.
func (a PaymentAddress) Encoded() string {
	p := a.Payment()
	return base58.Encode(p[:])
}

// String returns Encoded for valid addresses and an empty string otherwise.
func (a PaymentAddress) String() string {
	if !a.valid {
		return ""
	}
	return a.Encoded()
}

// MarshalText implements encoding.TextMarshaler.
func (a PaymentAddress) MarshalText() ([]byte, error) {
	if !a.valid {
		return nil, ErrInvalidAddress
	}
	return []byte(a.Encoded()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *PaymentAddress) UnmarshalText(text []byte) error {
	decoded := FromString(string(text))
	if !decoded.valid {
		return ErrInvalidAddress
	}
	*a = decoded
	return nil
}

func shortHash(data []byte) ShortHash {
	var h ShortHash
	copy(h[:], btcutil.Hash160(data))
	return h
}

func checksum(data []byte) [ChecksumSize]byte {
	var sum [ChecksumSize]byte
	copy(sum[:], chainhash.DoubleHashB(data))
	return sum
}
