package wallet

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
)

// Versions holds the address version bytes of one network.
type Versions struct {
	PubKeyHash uint8
	ScriptHash uint8
}

// MainnetVersions are the Bitcoin mainnet address versions.
var MainnetVersions = Versions{PubKeyHash: MainnetVersion, ScriptHash: MainnetP2SHVersion}

// VersionsForNetwork returns the address versions of a named network.
func VersionsForNetwork(network string) (Versions, error) {
	params, err := chainParamsForNetwork(network)
	if err != nil {
		return Versions{}, err
	}
	return Versions{
		PubKeyHash: params.PubKeyHashAddrID,
		ScriptHash: params.ScriptHashAddrID,
	}, nil
}

func chainParamsForNetwork(network string) (*chaincfg.Params, error) {
	switch strings.ToLower(network) {
	case "main", "mainnet", "bitcoin":
		return &chaincfg.MainNetParams, nil
	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	default:
		return nil, fmt.Errorf("unsupported network %q", network)
	}
}
