// Package chain implements the transaction entity: its canonical wire format,
// identity hashing and the consensus predicates evaluated over it.
package chain

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/blockinsight7000-ledger/pkg/safe"
)

var (
	// ErrTooManyInputs is returned when a decoded input count cannot fit in a message.
	ErrTooManyInputs = errors.New("input count exceeds message limit")
	// ErrTooManyOutputs is returned when a decoded output count cannot fit in a message.
	ErrTooManyOutputs = errors.New("output count exceeds message limit")
)

// Transaction is a ledger transaction.
//
// The identity hash is computed once and cached; every mutator drops the
// cache. Hash may be called concurrently, but not concurrently with a mutator
// on the same instance.
type Transaction struct {
	version  uint32
	locktime uint32
	inputs   []Input
	outputs  []Output

	hashMu sync.RWMutex
	hash   *chainhash.Hash

	// zero means not computed
	sigops atomic.Uint64
}

// NewTransaction builds a transaction from its fields.
func NewTransaction(version, locktime uint32, inputs []Input, outputs []Output) *Transaction {
	return &Transaction{
		version:  version,
		locktime: locktime,
		inputs:   inputs,
		outputs:  outputs,
	}
}

// ParseTransaction decodes a transaction from data. The returned transaction
// is never nil; on error it is in its reset (invalid) state.
func ParseTransaction(data []byte) (*Transaction, error) {
	tx := &Transaction{}
	err := tx.FromBytes(data)
	return tx, err
}

// ReadTransaction decodes a transaction from r. The returned transaction is
// never nil; on error it is in its reset (invalid) state.
func ReadTransaction(r io.Reader) (*Transaction, error) {
	tx := &Transaction{}
	err := tx.FromReader(r)
	return tx, err
}

// Version returns the protocol version field.
func (t *Transaction) Version() uint32 { return t.version }

// Locktime returns the locktime field.
func (t *Transaction) Locktime() uint32 { return t.locktime }

// Inputs returns the inputs in consensus order. The slice and its scripts are
// shared with the transaction and must not be modified: in-place edits bypass
// the cached hash. Use SetInputs, or Clone first.
func (t *Transaction) Inputs() []Input { return t.inputs }

// Outputs returns the outputs in consensus order. The slice and its scripts
// are shared with the transaction and must not be modified: in-place edits
// bypass the cached hash. Use SetOutputs, or Clone first.
func (t *Transaction) Outputs() []Output { return t.outputs }

// SetVersion replaces the version and drops cached state.
func (t *Transaction) SetVersion(version uint32) {
	t.version = version
	t.invalidate()
}

// SetLocktime replaces the locktime and drops cached state.
func (t *Transaction) SetLocktime(locktime uint32) {
	t.locktime = locktime
	t.invalidate()
}

// SetInputs replaces the inputs and drops cached state.
func (t *Transaction) SetInputs(inputs []Input) {
	t.inputs = inputs
	t.invalidate()
}

// SetOutputs replaces the outputs and drops cached state.
func (t *Transaction) SetOutputs(outputs []Output) {
	t.outputs = outputs
	t.invalidate()
}

// AddInput appends an input and drops cached state.
func (t *Transaction) AddInput(in Input) {
	t.inputs = append(t.inputs, in)
	t.invalidate()
}

// AddOutput appends an output and drops cached state.
func (t *Transaction) AddOutput(out Output) {
	t.outputs = append(t.outputs, out)
	t.invalidate()
}

// IsValid reports whether the transaction differs from the empty default.
func (t *Transaction) IsValid() bool {
	return t.version != 0 || t.locktime != 0 || len(t.inputs) != 0 || len(t.outputs) != 0
}

// Reset restores the empty default state and drops cached state.
func (t *Transaction) Reset() {
	t.version = 0
	t.locktime = 0
	t.inputs = nil
	t.outputs = nil
	t.invalidate()
}

func (t *Transaction) invalidate() {
	t.sigops.Store(0)

	t.hashMu.Lock()
	t.hash = nil
	t.hashMu.Unlock()
}

// Clone returns a deep copy of the transaction: scripts are copied too, so
// the two never share bytes. The copy is seeded with the source hash,
// computing it first if needed, on the assumption that one of the two will be
// hashed soon.
func (t *Transaction) Clone() *Transaction {
	hash := t.Hash()

	clone := &Transaction{
		version:  t.version,
		locktime: t.locktime,
		hash:     &hash,
	}
	if t.inputs != nil {
		clone.inputs = make([]Input, len(t.inputs))
		for i, in := range t.inputs {
			in.Script = bytes.Clone(in.Script)
			clone.inputs[i] = in
		}
	}
	if t.outputs != nil {
		clone.outputs = make([]Output, len(t.outputs))
		for i, out := range t.outputs {
			out.Script = bytes.Clone(out.Script)
			clone.outputs[i] = out
		}
	}
	clone.sigops.Store(t.sigops.Load())
	return clone
}

// FromBytes decodes the transaction from data. Trailing bytes are ignored.
func (t *Transaction) FromBytes(data []byte) error {
	return t.FromReader(bytes.NewReader(data))
}

// FromReader decodes the transaction from r, replacing the current contents.
// On failure the transaction is left reset, never partially populated.
func (t *Transaction) FromReader(r io.Reader) error {
	t.Reset()
	if err := t.decode(r); err != nil {
		t.Reset()
		return err
	}
	return nil
}

func (t *Transaction) decode(r io.Reader) error {
	version, err := readUint32(r)
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	t.version = version

	inputCount, err := wire.ReadVarInt(r, protocolVersion)
	if err != nil {
		return fmt.Errorf("read input count: %w", err)
	}
	if inputCount > maxInputsPerTransaction {
		return fmt.Errorf("%w: %d", ErrTooManyInputs, inputCount)
	}
	t.inputs = make([]Input, inputCount)
	for i := range t.inputs {
		if err := t.inputs[i].FromReader(r); err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
	}

	outputCount, err := wire.ReadVarInt(r, protocolVersion)
	if err != nil {
		return fmt.Errorf("read output count: %w", err)
	}
	if outputCount > maxOutputsPerTransaction {
		return fmt.Errorf("%w: %d", ErrTooManyOutputs, outputCount)
	}
	t.outputs = make([]Output, outputCount)
	for i := range t.outputs {
		if err := t.outputs[i].FromReader(r); err != nil {
			return fmt.Errorf("output %d: %w", i, err)
		}
	}

	if t.locktime, err = readUint32(r); err != nil {
		return fmt.Errorf("read locktime: %w", err)
	}
	return nil
}

// Bytes returns the canonical serialization. Its length equals SerializedSize.
func (t *Transaction) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(int(t.SerializedSize()))
	// bytes.Buffer writes do not fail
	_ = t.Serialize(&buf)
	return buf.Bytes()
}

// Serialize writes the canonical serialization to w.
func (t *Transaction) Serialize(w io.Writer) error {
	if err := writeUint32(w, t.version); err != nil {
		return err
	}
	if err := wire.WriteVarInt(w, protocolVersion, uint64(len(t.inputs))); err != nil {
		return err
	}
	for i := range t.inputs {
		if err := t.inputs[i].Serialize(w); err != nil {
			return err
		}
	}
	if err := wire.WriteVarInt(w, protocolVersion, uint64(len(t.outputs))); err != nil {
		return err
	}
	for i := range t.outputs {
		if err := t.outputs[i].Serialize(w); err != nil {
			return err
		}
	}
	return writeUint32(w, t.locktime)
}

// SerializedSize returns the exact length of the canonical serialization.
func (t *Transaction) SerializedSize() uint64 {
	// version + locktime
	size := uint64(8)
	size += uint64(wire.VarIntSerializeSize(uint64(len(t.inputs))))
	for i := range t.inputs {
		size += t.inputs[i].SerializedSize()
	}
	size += uint64(wire.VarIntSerializeSize(uint64(len(t.outputs))))
	for i := range t.outputs {
		size += t.outputs[i].SerializedSize()
	}
	return size
}

// Hash returns the identity hash, the double SHA-256 of the serialization.
// The first caller computes it; concurrent callers wait for that result and
// later callers only take the read lock.
func (t *Transaction) Hash() chainhash.Hash {
	t.hashMu.RLock()
	if t.hash != nil {
		hash := *t.hash
		t.hashMu.RUnlock()
		return hash
	}
	t.hashMu.RUnlock()

	t.hashMu.Lock()
	defer t.hashMu.Unlock()
	if t.hash == nil {
		hash := chainhash.DoubleHashH(t.Bytes())
		t.hash = &hash
	}
	return *t.hash
}

// SignatureHash double hashes the serialization followed by the little-endian
// sighash type. It is never cached.
func (t *Transaction) SignatureHash(sighashType uint32) chainhash.Hash {
	var buf bytes.Buffer
	buf.Grow(int(t.SerializedSize()) + 4)
	_ = t.Serialize(&buf)
	_ = writeUint32(&buf, sighashType)
	return chainhash.DoubleHashH(buf.Bytes())
}

// IsCoinbase reports whether the transaction has exactly one input and it
// spends the null previous output.
func (t *Transaction) IsCoinbase() bool {
	return len(t.inputs) == 1 && t.inputs[0].PreviousOutput.IsNull()
}

// IsInvalidCoinbase reports a coinbase whose input script size is out of bounds.
func (t *Transaction) IsInvalidCoinbase() bool {
	if !t.IsCoinbase() {
		return false
	}
	size := t.inputs[0].Script.SerializedSize(false)
	return size < MinCoinbaseSize || size > MaxCoinbaseSize
}

// IsInvalidNonCoinbase reports a non-coinbase that spends a null previous output.
func (t *Transaction) IsInvalidNonCoinbase() bool {
	if t.IsCoinbase() {
		return false
	}
	for i := range t.inputs {
		if t.inputs[i].PreviousOutput.IsNull() {
			return true
		}
	}
	return false
}

// IsFinal reports whether the transaction may be included in a block at the
// given height and time.
func (t *Transaction) IsFinal(blockHeight uint64, blockTime uint32) bool {
	if t.locktime == 0 {
		return true
	}

	maxLocktime := blockTime
	if t.locktime < LocktimeThreshold {
		// heights beyond uint32 truncate, as the wire field is 32 bits
		maxLocktime = uint32(blockHeight)
	}
	if t.locktime < maxLocktime {
		return true
	}

	for i := range t.inputs {
		if !t.inputs[i].IsFinal() {
			return false
		}
	}
	return true
}

// IsLocktimeConflict reports a nonzero locktime that can never take effect
// because every input is already final.
func (t *Transaction) IsLocktimeConflict() bool {
	if t.locktime == 0 {
		return false
	}
	for i := range t.inputs {
		if t.inputs[i].Sequence < MaxInputSequence {
			return false
		}
	}
	return true
}

// TotalOutputValue sums output values, saturating at math.MaxUint64.
func (t *Transaction) TotalOutputValue() uint64 {
	var total uint64
	for i := range t.outputs {
		total = safe.AddSaturating(total, t.outputs[i].Value)
	}
	return total
}

// SignatureOperations counts legacy signature operations over all input and
// output scripts, saturating at math.MaxUint64. A zero count is not cached.
func (t *Transaction) SignatureOperations() uint64 {
	if cached := t.sigops.Load(); cached != 0 {
		return cached
	}

	var total uint64
	for i := range t.inputs {
		total = safe.AddSaturating(total, t.inputs[i].Script.SignatureOperations(false))
	}
	for i := range t.outputs {
		total = safe.AddSaturating(total, t.outputs[i].Script.SignatureOperations(false))
	}
	t.sigops.Store(total)
	return total
}

func (t *Transaction) String() string {
	var b strings.Builder
	b.WriteString("Transaction:\n")
	fmt.Fprintf(&b, "\tversion = %d\n", t.version)
	fmt.Fprintf(&b, "\tlocktime = %d\n", t.locktime)
	b.WriteString("Inputs:\n")
	for i := range t.inputs {
		b.WriteString(t.inputs[i].String())
	}
	b.WriteString("Outputs:\n")
	for i := range t.outputs {
		b.WriteString(t.outputs[i].String())
	}
	b.WriteString("\n")
	return b.String()
}
