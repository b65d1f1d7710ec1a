package bitcoin

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func p2pkhScript(h160 []byte) Script {
	return Script{OpCmd(OpDup), OpCmd(OpHash160), ElemCmd(h160), OpCmd(OpEqualVerify), OpCmd(OpCheckSig)}
}

func sampleTx(t *testing.T) *Transaction {
	t.Helper()
	prevTx, err := NewHash256FromString("0000000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, err)

	input := TxInput{PrevTx: prevTx, PrevIndex: 0, ScriptSig: Script{ElemCmd([]byte{0xde, 0xad})}, Sequence: 0xffffffff}
	output := TxOutput{Amount: 5000000000, ScriptPubKey: p2pkhScript(make([]byte, 20))}
	return NewTransaction(1, []TxInput{input}, []TxOutput{output}, 0, false)
}

func TestNewTransactionFields(t *testing.T) {
	tx := sampleTx(t)
	require.Equal(t, uint32(1), tx.Version)
	require.Len(t, tx.Inputs, 1)
	require.Len(t, tx.Outputs, 1)
	require.Equal(t, uint32(0), tx.LockTime)
}

func TestTransactionSerializeDeserializeRoundTrip(t *testing.T) {
	tx := sampleTx(t)

	raw, err := tx.Serialize()
	require.NoError(t, err)

	got, err := DeserializeTransaction(raw)
	require.NoError(t, err)

	require.Equal(t, tx.Version, got.Version)
	require.Equal(t, tx.LockTime, got.LockTime)
	require.Len(t, got.Inputs, 1)
	require.Equal(t, tx.Inputs[0].PrevTx, got.Inputs[0].PrevTx)
	require.Equal(t, tx.Inputs[0].PrevIndex, got.Inputs[0].PrevIndex)
	require.True(t, tx.Inputs[0].ScriptSig.Equal(got.Inputs[0].ScriptSig))
	require.Len(t, got.Outputs, 1)
	require.Equal(t, tx.Outputs[0].Amount, got.Outputs[0].Amount)
	require.True(t, tx.Outputs[0].ScriptPubKey.Equal(got.Outputs[0].ScriptPubKey))
}

func TestDeserializeTransactionRejectsTrailingBytes(t *testing.T) {
	tx := sampleTx(t)
	raw, err := tx.Serialize()
	require.NoError(t, err)

	_, err = DeserializeTransaction(append(raw, 0x00))
	require.ErrorIs(t, err, ErrFormat)
}

func TestTransactionIsCoinbase(t *testing.T) {
	coinbase := &Transaction{
		Inputs:  []TxInput{{PrevTx: ZeroHash, PrevIndex: 0xffffffff, ScriptSig: Script{ElemCmd([]byte("coinbase data"))}}},
		Outputs: []TxOutput{{Amount: 5000000000, ScriptPubKey: p2pkhScript(make([]byte, 20))}},
	}
	require.True(t, coinbase.IsCoinbase())

	require.False(t, sampleTx(t).IsCoinbase())
}

func TestTransactionTotalOutput(t *testing.T) {
	tx := &Transaction{Outputs: []TxOutput{{Amount: 100}, {Amount: 250}}}
	require.Equal(t, uint64(350), tx.TotalOutput())
}

func TestTransactionValidateRejectsEmptyAndDuplicates(t *testing.T) {
	empty := &Transaction{}
	require.ErrorIs(t, empty.Validate(), ErrFormat)

	prevTx, _ := NewHash256FromString("0000000000000000000000000000000000000000000000000000000000000001")
	dup := &Transaction{
		Inputs: []TxInput{
			{PrevTx: prevTx, PrevIndex: 0},
			{PrevTx: prevTx, PrevIndex: 0},
		},
		Outputs: []TxOutput{{Amount: 1000, ScriptPubKey: p2pkhScript(make([]byte, 20))}},
	}
	require.ErrorIs(t, dup.Validate(), ErrFormat)

	ok := sampleTx(t)
	require.NoError(t, ok.Validate())
}

func TestTransactionValidateRejectsExcessiveOutput(t *testing.T) {
	prevTx, _ := NewHash256FromString("0000000000000000000000000000000000000000000000000000000000000001")
	tx := &Transaction{
		Inputs:  []TxInput{{PrevTx: prevTx, PrevIndex: 0}},
		Outputs: []TxOutput{{Amount: MaxMoney + 1, ScriptPubKey: p2pkhScript(make([]byte, 20))}},
	}
	require.ErrorIs(t, tx.Validate(), ErrFormat)
}

// stubFetcher implements TxFetcher by returning a single fixed prior
// transaction regardless of the requested id, for exercising Value/Fee.
type stubFetcher struct {
	tx *Transaction
}

func (f *stubFetcher) Fetch(ctx context.Context, txID string, testnet bool) (*Transaction, error) {
	return f.tx, nil
}

func TestTxInputValueAndFee(t *testing.T) {
	prevTx := &Transaction{Outputs: []TxOutput{{Amount: 1000}, {Amount: 2000}}}
	fetcher := &stubFetcher{tx: prevTx}

	tx := sampleTx(t)
	tx.Inputs[0].PrevIndex = 1

	v, err := tx.Inputs[0].Value(context.Background(), fetcher)
	require.NoError(t, err)
	require.Equal(t, uint64(2000), v)

	tx.Outputs[0].Amount = 500
	fee, err := tx.Fee(context.Background(), fetcher)
	require.NoError(t, err)
	require.Equal(t, int64(1500), fee)
}

func TestTxInputValueOutOfRange(t *testing.T) {
	prevTx := &Transaction{Outputs: []TxOutput{{Amount: 1000}}}
	fetcher := &stubFetcher{tx: prevTx}

	tx := sampleTx(t)
	tx.Inputs[0].PrevIndex = 5

	_, err := tx.Inputs[0].Value(context.Background(), fetcher)
	require.ErrorIs(t, err, ErrFormat)
}

func TestTransactionIDIsReversedDisplayOrder(t *testing.T) {
	tx := sampleTx(t)
	id, err := tx.ID()
	require.NoError(t, err)
	require.Len(t, id, 64)
	_, err = hex.DecodeString(id)
	require.NoError(t, err)

	raw, err := tx.Serialize()
	require.NoError(t, err)
	digest := Hash256Bytes(raw)
	reversed := make([]byte, len(digest))
	for i := range digest {
		reversed[i] = digest[len(digest)-1-i]
	}
	require.Equal(t, hex.EncodeToString(reversed), id)
}

func TestEncodeDecodeVarIntBoundaries(t *testing.T) {
	cases := []uint64{0, 1, 252, 253, 0xffff, 0x10000, 0xffffffff, 0x100000000}
	for _, v := range cases {
		enc := EncodeVarInt(v)
		got, n, err := DecodeVarInt(enc)
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, len(enc), n)
	}
}
