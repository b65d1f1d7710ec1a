package fetch

import (
	"context"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitcoinecho/node/pkg/bitcoin"
)

func buildLegacyTxHex(t *testing.T) (string, string) {
	t.Helper()
	prevTx, err := bitcoin.NewHash256FromString("0000000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, err)
	tx := bitcoin.NewTransaction(1, []bitcoin.TxInput{{PrevTx: prevTx, PrevIndex: 0, Sequence: 0xffffffff}},
		[]bitcoin.TxOutput{{Amount: 1000, ScriptPubKey: bitcoin.Script{}}}, 0, false)
	raw, err := tx.Serialize()
	require.NoError(t, err)
	id, err := tx.ID()
	require.NoError(t, err)
	return hex.EncodeToString(raw), id
}

func TestHTTPFetcherFetch(t *testing.T) {
	rawHex, txID := buildLegacyTxHex(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tx/"+txID+"/hex", r.URL.Path)
		w.Write([]byte(rawHex))
	}))
	defer server.Close()

	f := NewHTTPFetcher()
	f.BaseURL = server.URL

	tx, err := f.Fetch(context.Background(), txID, false)
	require.NoError(t, err)
	require.Len(t, tx.Outputs, 1)
	require.Equal(t, uint64(1000), tx.Outputs[0].Amount)
}

func TestHTTPFetcherRejectsMismatchedID(t *testing.T) {
	rawHex, _ := buildLegacyTxHex(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rawHex))
	}))
	defer server.Close()

	f := NewHTTPFetcher()
	f.BaseURL = server.URL

	_, err := f.Fetch(context.Background(), "0000000000000000000000000000000000000000000000000000000000000099", false)
	require.ErrorIs(t, err, bitcoin.ErrFetch)
}
