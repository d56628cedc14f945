package inspect

// Flag names reported to metrics.
const (
	FlagCoinbase           = "coinbase"
	FlagInvalidCoinbase    = "invalid_coinbase"
	FlagInvalidNonCoinbase = "invalid_non_coinbase"
	FlagNonFinal           = "non_final"
	FlagLocktimeConflict   = "locktime_conflict"
)

// Report is the outcome of inspecting one transaction at a block position.
type Report struct {
	TxID                string         `json:"txid"`
	Height              uint64         `json:"height"`
	BlockTime           uint32         `json:"block_time"`
	Version             uint32         `json:"version"`
	Locktime            uint32         `json:"locktime"`
	Size                uint64         `json:"size"`
	Coinbase            bool           `json:"coinbase"`
	InvalidCoinbase     bool           `json:"invalid_coinbase"`
	InvalidNonCoinbase  bool           `json:"invalid_non_coinbase"`
	Final               bool           `json:"final"`
	LocktimeConflict    bool           `json:"locktime_conflict"`
	TotalOutputValue    uint64         `json:"total_output_value"`
	SignatureOperations uint64         `json:"sigops"`
	Inputs              []InputReport  `json:"inputs"`
	Outputs             []OutputReport `json:"outputs"`
}

// InputReport describes one input. Address is set when the input script
// reveals the spent address.
type InputReport struct {
	PreviousOutput string `json:"previous_output"`
	Sequence       uint32 `json:"sequence"`
	Address        string `json:"address,omitempty"`
}

// OutputReport describes one output.
type OutputReport struct {
	Value   uint64 `json:"value"`
	Class   string `json:"class"`
	Address string `json:"address,omitempty"`
}

// Flags lists the consensus flags raised on the transaction.
func (r Report) Flags() []string {
	var flags []string
	if r.Coinbase {
		flags = append(flags, FlagCoinbase)
	}
	if r.InvalidCoinbase {
		flags = append(flags, FlagInvalidCoinbase)
	}
	if r.InvalidNonCoinbase {
		flags = append(flags, FlagInvalidNonCoinbase)
	}
	if !r.Final {
		flags = append(flags, FlagNonFinal)
	}
	if r.LocktimeConflict {
		flags = append(flags, FlagLocktimeConflict)
	}
	return flags
}
