package bitcoin

import (
	"fmt"
	"math/big"
)

// base58Alphabet is digits+uppercase+lowercase minus '0', 'O', 'I', 'l' —
// characters that are easy to confuse with one another in many fonts.
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// EncodeBase58 encodes bytes as a base58 string, prefixing one '1' per
// leading zero byte of b.
func EncodeBase58(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	leadingZeros := 0
	for _, c := range b {
		if c == 0x00 {
			leadingZeros++
		} else {
			break
		}
	}
	num := new(big.Int).SetBytes(b)
	zero := big.NewInt(0)
	base := big.NewInt(58)
	mod := new(big.Int)
	var out []byte
	for num.Cmp(zero) > 0 {
		num.DivMod(num, base, mod)
		out = append([]byte{base58Alphabet[mod.Int64()]}, out...)
	}
	prefix := make([]byte, leadingZeros)
	for i := range prefix {
		prefix[i] = '1'
	}
	return string(prefix) + string(out)
}

// EncodeBase58Checksum encodes payload ‖ hash256(payload)[:4] as base58.
func EncodeBase58Checksum(payload []byte) string {
	checksum := Hash256Bytes(payload)[:4]
	return EncodeBase58(append(append([]byte{}, payload...), checksum...))
}

// DecodeBase58 decodes a base58 string into bytes, inverting EncodeBase58.
func DecodeBase58(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	leadingOnes := 0
	for _, c := range s {
		if c == '1' {
			leadingOnes++
		} else {
			break
		}
	}
	num := big.NewInt(0)
	base := big.NewInt(58)
	for _, c := range s[leadingOnes:] {
		idx := indexByte(base58Alphabet, byte(c))
		if idx < 0 {
			return nil, fmt.Errorf("%w: invalid base58 character %q", ErrFormat, c)
		}
		num.Mul(num, base)
		num.Add(num, big.NewInt(int64(idx)))
	}
	body := num.Bytes()
	out := make([]byte, leadingOnes+len(body))
	copy(out[leadingOnes:], body)
	return out, nil
}

// DecodeBase58Checksum decodes s and verifies its trailing 4-byte checksum,
// returning the payload with the checksum stripped.
func DecodeBase58Checksum(s string) ([]byte, error) {
	combined, err := DecodeBase58(s)
	if err != nil {
		return nil, err
	}
	if len(combined) < 4 {
		return nil, fmt.Errorf("%w: base58 payload too short for a checksum", ErrFormat)
	}
	payload := combined[:len(combined)-4]
	checksum := combined[len(combined)-4:]
	want := Hash256Bytes(payload)[:4]
	if !bytesEqual(checksum, want) {
		return nil, fmt.Errorf("%w: checksum mismatch: got %x want %x", ErrChecksum, checksum, want)
	}
	return payload, nil
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
