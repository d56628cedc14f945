package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/goodnatureofminers/blockinsight7000-ledger/internal/chain"
	"github.com/goodnatureofminers/blockinsight7000-ledger/internal/wallet"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type config struct {
	Hash         string `long:"hash" description:"20 byte hash, hex"`
	PubKey       string `long:"pubkey" description:"secp256k1 public key, hex"`
	Secret       string `long:"secret" env:"ADDRTOOL_SECRET" description:"32 byte private key, hex"`
	Script       string `long:"script" description:"redeem script, hex"`
	Decode       string `long:"decode" description:"base58 address to decode"`
	Version      int    `long:"version" env:"ADDRTOOL_VERSION" description:"address version byte; negative uses the network default" default:"-1"`
	P2SH         bool   `long:"p2sh" description:"use the network's script hash version for --hash"`
	Uncompressed bool   `long:"uncompressed" description:"hash the uncompressed public key encoding"`
	Network      string `long:"network" env:"ADDRTOOL_NETWORK" description:"network name (main, testnet, regtest, signet)" default:"main"`
}

var (
	errNoInput     = errors.New("exactly one of --hash, --pubkey, --secret, --script, --decode is required")
	errInvalid     = errors.New("address is invalid")
	errBadVersion  = errors.New("version must fit in one byte")
	errHashSize    = fmt.Errorf("hash must be %d bytes", wallet.ShortHashSize)
	errSecretSize  = fmt.Errorf("secret must be %d bytes", wallet.SecretSize)
	errMixedInputs = errors.New("only one input may be given")
)

func main() {
	cfg := config{}

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.Parse(&cfg); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	addr, err := derive(cfg)
	if err != nil {
		logger.Fatal("address not derived", zap.Error(err))
	}
	describe(os.Stdout, addr)
}

// derive builds the address described by cfg.
func derive(cfg config) (wallet.PaymentAddress, error) {
	versions, err := wallet.VersionsForNetwork(cfg.Network)
	if err != nil {
		return wallet.PaymentAddress{}, err
	}

	given := 0
	for _, v := range []string{cfg.Hash, cfg.PubKey, cfg.Secret, cfg.Script, cfg.Decode} {
		if v != "" {
			given++
		}
	}
	switch {
	case given == 0:
		return wallet.PaymentAddress{}, errNoInput
	case given > 1:
		return wallet.PaymentAddress{}, errMixedInputs
	}

	var addr wallet.PaymentAddress
	switch {
	case cfg.Decode != "":
		addr = wallet.FromString(cfg.Decode)

	case cfg.Hash != "":
		version := versions.PubKeyHash
		if cfg.P2SH {
			version = versions.ScriptHash
		}
		if version, err = override(version, cfg.Version); err != nil {
			return wallet.PaymentAddress{}, err
		}
		raw, err := decodeFixed(cfg.Hash, wallet.ShortHashSize, errHashSize)
		if err != nil {
			return wallet.PaymentAddress{}, err
		}
		addr = wallet.FromHash(wallet.ShortHash(raw), version)

	case cfg.Script != "":
		version, err := override(versions.ScriptHash, cfg.Version)
		if err != nil {
			return wallet.PaymentAddress{}, err
		}
		raw, err := hex.DecodeString(cfg.Script)
		if err != nil {
			return wallet.PaymentAddress{}, fmt.Errorf("decode script: %w", err)
		}
		addr = wallet.FromScript(chain.Script(raw), version)

	case cfg.PubKey != "":
		version, err := override(versions.PubKeyHash, cfg.Version)
		if err != nil {
			return wallet.PaymentAddress{}, err
		}
		raw, err := hex.DecodeString(cfg.PubKey)
		if err != nil {
			return wallet.PaymentAddress{}, fmt.Errorf("decode public key: %w", err)
		}
		key, err := btcec.ParsePubKey(raw)
		if err != nil {
			return wallet.PaymentAddress{}, fmt.Errorf("parse public key: %w", err)
		}
		// keep the encoding that was given unless told otherwise
		compressed := len(raw) == btcec.PubKeyBytesLenCompressed && !cfg.Uncompressed
		addr = wallet.FromPublicKey(key, version, compressed)

	case cfg.Secret != "":
		version, err := override(versions.PubKeyHash, cfg.Version)
		if err != nil {
			return wallet.PaymentAddress{}, err
		}
		raw, err := decodeFixed(cfg.Secret, wallet.SecretSize, errSecretSize)
		if err != nil {
			return wallet.PaymentAddress{}, err
		}
		addr = wallet.FromSecretKey(wallet.Secret(raw), version, !cfg.Uncompressed)
	}

	if !addr.IsValid() {
		return wallet.PaymentAddress{}, errInvalid
	}
	return addr, nil
}

func override(version uint8, requested int) (uint8, error) {
	if requested < 0 {
		return version, nil
	}
	if requested > 0xff {
		return 0, fmt.Errorf("%w: %d", errBadVersion, requested)
	}
	return uint8(requested), nil
}

func decodeFixed(s string, size int, sizeErr error) ([]byte, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(raw) != size {
		return nil, fmt.Errorf("%w, got %d", sizeErr, len(raw))
	}
	return raw, nil
}

func describe(w io.Writer, addr wallet.PaymentAddress) {
	hash := addr.Hash()
	fmt.Fprintf(w, "address: %s\n", addr)
	fmt.Fprintf(w, "version: 0x%02x\n", addr.Version())
	fmt.Fprintf(w, "hash:    %x\n", hash[:])
}
