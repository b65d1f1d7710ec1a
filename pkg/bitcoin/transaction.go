package bitcoin

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
)

// MaxMoney is the maximum number of satoshis that can ever exist (21
// million BTC), used as a sanity bound on output values.
const MaxMoney = 21000000 * 100000000

// Transaction is a legacy (non-witness) Bitcoin transaction (spec.md §3/§4.6).
type Transaction struct {
	Version  uint32
	Inputs   []TxInput
	Outputs  []TxOutput
	LockTime uint32
	Testnet  bool
}

// TxInput is one input of a Transaction.
type TxInput struct {
	PrevTx    Hash256 // id of the transaction holding the referenced output
	PrevIndex uint32
	ScriptSig Script
	Sequence  uint32
}

// TxOutput is one output of a Transaction.
type TxOutput struct {
	Amount       uint64
	ScriptPubKey Script
}

// NewTransaction constructs a transaction from its fields.
func NewTransaction(version uint32, inputs []TxInput, outputs []TxOutput, lockTime uint32, testnet bool) *Transaction {
	return &Transaction{Version: version, Inputs: inputs, Outputs: outputs, LockTime: lockTime, Testnet: testnet}
}

// EncodeVarInt encodes an integer as a Bitcoin variable-length integer.
func EncodeVarInt(value uint64) []byte {
	switch {
	case value < 0xfd:
		return []byte{byte(value)}
	case value <= 0xffff:
		buf := make([]byte, 3)
		buf[0] = 0xfd
		binary.LittleEndian.PutUint16(buf[1:], uint16(value))
		return buf
	case value <= 0xffffffff:
		buf := make([]byte, 5)
		buf[0] = 0xfe
		binary.LittleEndian.PutUint32(buf[1:], uint32(value))
		return buf
	default:
		buf := make([]byte, 9)
		buf[0] = 0xff
		binary.LittleEndian.PutUint64(buf[1:], value)
		return buf
	}
}

// DecodeVarInt decodes a Bitcoin variable-length integer, returning the
// value and the number of bytes consumed.
func DecodeVarInt(data []byte) (value uint64, bytesRead int, err error) {
	if len(data) == 0 {
		return 0, 0, fmt.Errorf("%w: empty varint data", ErrFormat)
	}
	first := data[0]
	switch {
	case first < 0xfd:
		return uint64(first), 1, nil
	case first == 0xfd:
		if len(data) < 3 {
			return 0, 0, fmt.Errorf("%w: insufficient data for 0xfd varint", ErrFormat)
		}
		return uint64(binary.LittleEndian.Uint16(data[1:3])), 3, nil
	case first == 0xfe:
		if len(data) < 5 {
			return 0, 0, fmt.Errorf("%w: insufficient data for 0xfe varint", ErrFormat)
		}
		return uint64(binary.LittleEndian.Uint32(data[1:5])), 5, nil
	default: // first == 0xff
		if len(data) < 9 {
			return 0, 0, fmt.Errorf("%w: insufficient data for 0xff varint", ErrFormat)
		}
		return binary.LittleEndian.Uint64(data[1:9]), 9, nil
	}
}

// Serialize converts the transaction to Bitcoin legacy wire format.
func (tx *Transaction) Serialize() ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, tx.Version); err != nil {
		return nil, fmt.Errorf("failed to write version: %w", err)
	}

	buf.Write(EncodeVarInt(uint64(len(tx.Inputs))))
	for _, input := range tx.Inputs {
		// prev-tx id is stored internally in display (big-endian) order and
		// reversed on the wire, per spec.md §4.6.
		hashBytes := input.PrevTx.Bytes()
		for i := len(hashBytes) - 1; i >= 0; i-- {
			buf.WriteByte(hashBytes[i])
		}
		if err := binary.Write(&buf, binary.LittleEndian, input.PrevIndex); err != nil {
			return nil, fmt.Errorf("failed to write prev index: %w", err)
		}
		scriptBytes, err := input.ScriptSig.Serialize()
		if err != nil {
			return nil, fmt.Errorf("failed to serialize script_sig: %w", err)
		}
		buf.Write(scriptBytes)
		if err := binary.Write(&buf, binary.LittleEndian, input.Sequence); err != nil {
			return nil, fmt.Errorf("failed to write sequence: %w", err)
		}
	}

	buf.Write(EncodeVarInt(uint64(len(tx.Outputs))))
	for _, output := range tx.Outputs {
		if err := binary.Write(&buf, binary.LittleEndian, output.Amount); err != nil {
			return nil, fmt.Errorf("failed to write output amount: %w", err)
		}
		scriptBytes, err := output.ScriptPubKey.Serialize()
		if err != nil {
			return nil, fmt.Errorf("failed to serialize script_pubkey: %w", err)
		}
		buf.Write(scriptBytes)
	}

	if err := binary.Write(&buf, binary.LittleEndian, tx.LockTime); err != nil {
		return nil, fmt.Errorf("failed to write locktime: %w", err)
	}

	return buf.Bytes(), nil
}

// DeserializeTransaction parses a legacy transaction from wire format.
func DeserializeTransaction(data []byte) (*Transaction, error) {
	r := bytes.NewReader(data)
	tx, err := ReadTransaction(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after transaction", ErrFormat, r.Len())
	}
	return tx, nil
}

// ReadTransaction parses one legacy transaction from r, leaving the reader
// positioned just past the transaction (no trailing-byte check, unlike
// DeserializeTransaction — used when a transaction is embedded in a larger
// stream).
func ReadTransaction(r *bytes.Reader) (*Transaction, error) {
	tx := &Transaction{}

	var versionBytes [4]byte
	if _, err := readFull(r, versionBytes[:]); err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}
	tx.Version = binary.LittleEndian.Uint32(versionBytes[:])

	inputCount, err := readVarIntFrom(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input count: %w", err)
	}
	tx.Inputs = make([]TxInput, inputCount)
	for i := range tx.Inputs {
		input, err := readTxInput(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read input %d: %w", i, err)
		}
		tx.Inputs[i] = *input
	}

	outputCount, err := readVarIntFrom(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read output count: %w", err)
	}
	tx.Outputs = make([]TxOutput, outputCount)
	for i := range tx.Outputs {
		output, err := readTxOutput(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read output %d: %w", i, err)
		}
		tx.Outputs[i] = *output
	}

	var lockTimeBytes [4]byte
	if _, err := readFull(r, lockTimeBytes[:]); err != nil {
		return nil, fmt.Errorf("failed to read locktime: %w", err)
	}
	tx.LockTime = binary.LittleEndian.Uint32(lockTimeBytes[:])

	return tx, nil
}

func readTxInput(r *bytes.Reader) (*TxInput, error) {
	var hashBytes [32]byte
	if _, err := readFull(r, hashBytes[:]); err != nil {
		return nil, fmt.Errorf("failed to read prev tx hash: %w", err)
	}
	// wire order is little-endian; reverse to display (big-endian) order
	var reversed [32]byte
	for i := 0; i < 32; i++ {
		reversed[i] = hashBytes[31-i]
	}

	var indexBytes [4]byte
	if _, err := readFull(r, indexBytes[:]); err != nil {
		return nil, fmt.Errorf("failed to read prev index: %w", err)
	}

	script, err := DeserializeScript(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read script_sig: %w", err)
	}

	var seqBytes [4]byte
	if _, err := readFull(r, seqBytes[:]); err != nil {
		return nil, fmt.Errorf("failed to read sequence: %w", err)
	}

	return &TxInput{
		PrevTx:    Hash256(reversed),
		PrevIndex: binary.LittleEndian.Uint32(indexBytes[:]),
		ScriptSig: script,
		Sequence:  binary.LittleEndian.Uint32(seqBytes[:]),
	}, nil
}

func readTxOutput(r *bytes.Reader) (*TxOutput, error) {
	var amountBytes [8]byte
	if _, err := readFull(r, amountBytes[:]); err != nil {
		return nil, fmt.Errorf("failed to read amount: %w", err)
	}
	script, err := DeserializeScript(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read script_pubkey: %w", err)
	}
	return &TxOutput{
		Amount:       binary.LittleEndian.Uint64(amountBytes[:]),
		ScriptPubKey: script,
	}, nil
}

func readFull(r *bytes.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
		if m == 0 {
			return n, fmt.Errorf("%w: unexpected end of data", ErrFormat)
		}
	}
	return n, nil
}

func readVarIntFrom(r *bytes.Reader) (uint64, error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch first {
	case 0xfd:
		var b [2]byte
		if _, err := readFull(r, b[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16(b[:])), nil
	case 0xfe:
		var b [4]byte
		if _, err := readFull(r, b[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32(b[:])), nil
	case 0xff:
		var b [8]byte
		if _, err := readFull(r, b[:]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(b[:]), nil
	default:
		return uint64(first), nil
	}
}

// ID returns the transaction id: hex of hash256(serialize(tx)), reversed to
// display byte order.
func (tx *Transaction) ID() (string, error) {
	h, err := tx.Hash()
	if err != nil {
		return "", err
	}
	return h.String(), nil
}

// Hash returns hash256 of the transaction's legacy serialization, with
// bytes reversed to the conventional display order.
func (tx *Transaction) Hash() (Hash256, error) {
	raw, err := tx.Serialize()
	if err != nil {
		return ZeroHash, err
	}
	digest := Hash256Bytes(raw)
	var reversed [32]byte
	for i := 0; i < 32; i++ {
		reversed[i] = digest[31-i]
	}
	return Hash256(reversed), nil
}

// IsCoinbase reports whether tx is a coinbase transaction: exactly one
// input whose previous output is the null outpoint.
func (tx *Transaction) IsCoinbase() bool {
	return len(tx.Inputs) == 1 &&
		tx.Inputs[0].PrevTx.IsZero() &&
		tx.Inputs[0].PrevIndex == 0xffffffff
}

// TotalOutput returns the sum of all output amounts.
func (tx *Transaction) TotalOutput() uint64 {
	var total uint64
	for _, output := range tx.Outputs {
		total += output.Amount
	}
	return total
}

// Value resolves the referenced previous output's amount by fetching the
// previous transaction through fetcher (spec.md §4.6/§6).
func (in *TxInput) Value(ctx context.Context, fetcher TxFetcher) (uint64, error) {
	prevTx, err := fetcher.Fetch(ctx, in.PrevTx.String(), false)
	if err != nil {
		return 0, fmt.Errorf("%w: resolving input value: %v", ErrFetch, err)
	}
	if int(in.PrevIndex) >= len(prevTx.Outputs) {
		return 0, fmt.Errorf("%w: prev_index %d out of range for tx %s", ErrFormat, in.PrevIndex, in.PrevTx)
	}
	return prevTx.Outputs[in.PrevIndex].Amount, nil
}

// Fee computes Σ inputs.value − Σ outputs.amount, resolving each input's
// value through fetcher (spec.md §4.6).
func (tx *Transaction) Fee(ctx context.Context, fetcher TxFetcher) (int64, error) {
	var totalIn int64
	for i := range tx.Inputs {
		v, err := tx.Inputs[i].Value(ctx, fetcher)
		if err != nil {
			return 0, err
		}
		totalIn += int64(v)
	}
	return totalIn - int64(tx.TotalOutput()), nil
}

// Validate performs basic sanity checks on the transaction shape (not full
// script validation — see Script.Evaluate for that).
func (tx *Transaction) Validate() error {
	if len(tx.Inputs) == 0 {
		return fmt.Errorf("%w: transaction has no inputs", ErrFormat)
	}
	if len(tx.Outputs) == 0 {
		return fmt.Errorf("%w: transaction has no outputs", ErrFormat)
	}
	seen := make(map[Hash256]map[uint32]bool)
	for _, input := range tx.Inputs {
		if seen[input.PrevTx] == nil {
			seen[input.PrevTx] = make(map[uint32]bool)
		}
		if seen[input.PrevTx][input.PrevIndex] {
			return fmt.Errorf("%w: transaction has duplicate inputs", ErrFormat)
		}
		seen[input.PrevTx][input.PrevIndex] = true
	}
	for i, output := range tx.Outputs {
		if output.Amount > MaxMoney {
			return fmt.Errorf("%w: output %d value exceeds maximum", ErrFormat, i)
		}
	}
	if tx.TotalOutput() > MaxMoney {
		return fmt.Errorf("%w: total output value exceeds maximum", ErrFormat)
	}
	return nil
}
