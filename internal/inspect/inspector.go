// Package inspect decodes transactions, evaluates their consensus predicates
// and extracts addresses, either one at a time or by following a node.
package inspect

import (
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-ledger/internal/chain"
	"github.com/goodnatureofminers/blockinsight7000-ledger/internal/wallet"
)

// ErrTrailingData is returned when input continues past the transaction.
var ErrTrailingData = errors.New("trailing data after transaction")

// Inspector turns raw transactions into reports.
type Inspector struct {
	versions wallet.Versions
	metrics  InspectorMetrics
}

// NewInspector builds an Inspector that encodes addresses with versions.
func NewInspector(versions wallet.Versions, metrics InspectorMetrics) (*Inspector, error) {
	if metrics == nil {
		return nil, errors.New("inspector metrics is required")
	}
	return &Inspector{versions: versions, metrics: metrics}, nil
}

// Inspect decodes raw and reports on it as if included at height and
// blockTime. The whole of raw must be one transaction.
func (i *Inspector) Inspect(raw []byte, height uint64, blockTime uint32) (report Report, err error) {
	started := time.Now()
	defer func() {
		var flags []string
		if err == nil {
			flags = report.Flags()
		}
		i.metrics.ObserveTransaction(err, flags, started)
	}()

	tx, err := chain.ParseTransaction(raw)
	if err != nil {
		return Report{}, fmt.Errorf("parse transaction: %w", err)
	}
	if size := tx.SerializedSize(); size != uint64(len(raw)) {
		return Report{}, fmt.Errorf("%w: %d of %d bytes used", ErrTrailingData, size, len(raw))
	}
	return i.InspectTransaction(tx, height, blockTime), nil
}

// InspectTransaction reports on an already decoded transaction.
func (i *Inspector) InspectTransaction(tx *chain.Transaction, height uint64, blockTime uint32) Report {
	hash := tx.Hash()
	report := Report{
		TxID:                hash.String(),
		Height:              height,
		BlockTime:           blockTime,
		Version:             tx.Version(),
		Locktime:            tx.Locktime(),
		Size:                tx.SerializedSize(),
		Coinbase:            tx.IsCoinbase(),
		InvalidCoinbase:     tx.IsInvalidCoinbase(),
		InvalidNonCoinbase:  tx.IsInvalidNonCoinbase(),
		Final:               tx.IsFinal(height, blockTime),
		LocktimeConflict:    tx.IsLocktimeConflict(),
		TotalOutputValue:    tx.TotalOutputValue(),
		SignatureOperations: tx.SignatureOperations(),
		Inputs:              make([]InputReport, 0, len(tx.Inputs())),
		Outputs:             make([]OutputReport, 0, len(tx.Outputs())),
	}

	for _, in := range tx.Inputs() {
		ir := InputReport{
			PreviousOutput: in.PreviousOutput.String(),
			Sequence:       in.Sequence,
		}
		// coinbase scripts are arbitrary data
		if !report.Coinbase {
			ir.Address = wallet.ExtractAddressWithVersions(in.Script, i.versions).String()
		}
		report.Inputs = append(report.Inputs, ir)
	}

	for _, out := range tx.Outputs() {
		report.Outputs = append(report.Outputs, OutputReport{
			Value:   out.Value,
			Class:   out.Script.Class().String(),
			Address: wallet.ExtractAddressWithVersions(out.Script, i.versions).String(),
		})
	}

	return report
}
