package bitcoin

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScriptSerializeDeserializeRoundTrip(t *testing.T) {
	s := Script{OpCmd(OpDup), OpCmd(OpHash160), ElemCmd([]byte{1, 2, 3, 4, 5}), OpCmd(OpEqualVerify), OpCmd(OpCheckSig)}

	raw, err := s.Serialize()
	require.NoError(t, err)

	got, err := ParseScript(raw)
	require.NoError(t, err)
	require.True(t, s.Equal(got))
}

func TestParseScriptP2PKH(t *testing.T) {
	raw, err := hex.DecodeString("1976a914389ffce9cd9ae88dcc0631e88a821ffdbe9bfe2688ac")
	require.NoError(t, err)

	s, err := ParseScript(raw)
	require.NoError(t, err)
	require.Len(t, s, 5)
	require.Equal(t, byte(OpDup), s[0].Op)
	require.Equal(t, byte(OpHash160), s[1].Op)
	require.Len(t, s[2].Elem, 20)
	require.Equal(t, byte(OpEqualVerify), s[3].Op)
	require.Equal(t, byte(OpCheckSig), s[4].Op)
}

func TestScriptStringRendersMnemonics(t *testing.T) {
	s := Script{OpCmd(OpDup), OpCmd(OpHash160), ElemCmd([]byte{0xde, 0xad}), OpCmd(OpEqualVerify), OpCmd(OpCheckSig)}
	require.Equal(t, "OP_DUP OP_HASH160 dead OP_EQUALVERIFY OP_CHECKSIG", s.String())
}

func TestEncodeDecodeNumRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 127, -127, 128, -128, 255, -255, 1000000, -1000000}
	for _, n := range cases {
		got := decodeNum(encodeNum(n))
		require.Equal(t, n, got, "round trip for %d", n)
	}
}

func TestPushDataLengths(t *testing.T) {
	small := Script{ElemCmd(make([]byte, 75))}
	raw, err := small.Serialize()
	require.NoError(t, err)
	// 1 varint-len byte + 1 push-opcode byte + 75 data bytes
	require.Equal(t, 77, len(raw))

	medium := Script{ElemCmd(make([]byte, 200))}
	raw, err = medium.Serialize()
	require.NoError(t, err)
	back, err := ParseScript(raw)
	require.NoError(t, err)
	require.Len(t, back[0].Elem, 200)

	large := Script{ElemCmd(make([]byte, 400))}
	raw, err = large.Serialize()
	require.NoError(t, err)
	back, err = ParseScript(raw)
	require.NoError(t, err)
	require.Len(t, back[0].Elem, 400)
}
