package bitcoin

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/ripemd160"
)

// Hash256 represents a 256-bit hash (32 bytes)
type Hash256 [32]byte

// ZeroHash represents an all-zero hash
var ZeroHash = Hash256{}

// NewHash256FromBytes creates a Hash256 from a byte slice
func NewHash256FromBytes(b []byte) (Hash256, error) {
	if len(b) != 32 {
		return ZeroHash, fmt.Errorf("invalid hash length: expected 32 bytes, got %d", len(b))
	}
	var hash Hash256
	copy(hash[:], b)
	return hash, nil
}

// NewHash256FromString creates a Hash256 from a hex string
func NewHash256FromString(s string) (Hash256, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return ZeroHash, fmt.Errorf("invalid hex string: %v", err)
	}
	return NewHash256FromBytes(b)
}

// String returns the hash as a hex string
func (h Hash256) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns the hash as a byte slice
func (h Hash256) Bytes() []byte {
	return h[:]
}

// IsZero returns true if the hash is all zeros
func (h Hash256) IsZero() bool {
	return h == ZeroHash
}

// DoubleHashSHA256 performs double SHA256 hashing (SHA256(SHA256(data)))
func DoubleHashSHA256(data []byte) Hash256 {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return Hash256(second)
}

// Hash160 represents a 160-bit hash (20 bytes) used for addresses
type Hash160 [20]byte

// ZeroHash160 represents an all-zero hash160
var ZeroHash160 = Hash160{}

// NewHash160FromBytes creates a Hash160 from a byte slice
func NewHash160FromBytes(b []byte) (Hash160, error) {
	if len(b) != 20 {
		return ZeroHash160, fmt.Errorf("invalid hash160 length: expected 20 bytes, got %d", len(b))
	}
	var hash Hash160
	copy(hash[:], b)
	return hash, nil
}

// String returns the hash160 as a hex string
func (h Hash160) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns the hash160 as a byte slice
func (h Hash160) Bytes() []byte {
	return h[:]
}

// Sha256 returns the single SHA-256 digest of data.
func Sha256(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// Sha1 returns the SHA-1 digest of data. Used only by OP_SHA1; nothing else
// in the core touches SHA-1.
func Sha1(data []byte) []byte {
	sum := sha1.Sum(data)
	return sum[:]
}

// Ripemd160 returns the RIPEMD-160 digest of data.
func Ripemd160(data []byte) []byte {
	h := ripemd160.New()
	h.Write(data) //nolint:errcheck // ripemd160.digest.Write never errors
	return h.Sum(nil)
}

// Hash256Bytes is DoubleHashSHA256 with a []byte result, for callers (Script
// opcodes, Tx.ID) that don't want the fixed-size Hash256 wrapper.
func Hash256Bytes(data []byte) []byte {
	h := DoubleHashSHA256(data)
	return h.Bytes()
}

// Hash160Bytes hashes data with SHA-256 followed by RIPEMD-160, the scheme
// Bitcoin uses to derive addresses and P2PKH script hashes from public keys.
func Hash160Bytes(data []byte) []byte {
	return Ripemd160(Sha256(data))
}

// HmacSHA256 computes HMAC-SHA-256(key, data), used by the RFC 6979
// deterministic-nonce derivation in ecdsa.go.
func HmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data) //nolint:errcheck // hmac.Write never errors
	return mac.Sum(nil)
}
