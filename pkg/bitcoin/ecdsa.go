package bitcoin

import (
	"bytes"
	"fmt"
	"math/big"
)

// Signature is an ECDSA signature (r, s), both in (0, N). Signatures
// produced by Sign are always in low-s canonical form (S <= N/2).
type Signature struct {
	R *big.Int
	S *big.Int
}

// NewSignature builds a Signature, copying r and s so the caller's big.Ints
// can't be mutated out from under it.
func NewSignature(r, s *big.Int) *Signature {
	return &Signature{R: new(big.Int).Set(r), S: new(big.Int).Set(s)}
}

// Equal reports whether two signatures hold the same (r, s).
func (sig *Signature) Equal(other *Signature) bool {
	if sig == nil || other == nil {
		return sig == other
	}
	return sig.R.Cmp(other.R) == 0 && sig.S.Cmp(other.S) == 0
}

func (sig *Signature) String() string {
	return fmt.Sprintf("Signature(%x,%x)", sig.R, sig.S)
}

// PrivateKey is a secp256k1 private key e (1 <= e < N), with its public key
// P = eG cached at construction (K1).
type PrivateKey struct {
	Secret *big.Int
	Point  *S256Point
}

// NewPrivateKey constructs a private key from a secret scalar, deriving and
// caching its public point.
func NewPrivateKey(secret *big.Int) (*PrivateKey, error) {
	if secret.Sign() <= 0 || secret.Cmp(N256) >= 0 {
		return nil, fmt.Errorf("%w: private key secret must satisfy 0 < e < n", ErrDomain)
	}
	point, err := G.ScalarMul(secret)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{Secret: secret, Point: point}, nil
}

// Hex renders the secret as a 64-character zero-padded hex string.
func (e *PrivateKey) Hex() string {
	return fmt.Sprintf("%064x", e.Secret)
}

// Sign produces a low-s ECDSA signature over digest z using a deterministic
// nonce derived per RFC 6979 (spec.md §4.4).
func (e *PrivateKey) Sign(z *big.Int) (*Signature, error) {
	k := e.deterministicK(z)
	r, s, err := signWithNonce(e.Secret, z, k)
	if err != nil {
		return nil, err
	}
	return NewSignature(r, s), nil
}

// signWithNonce performs the core ECDSA math for a given nonce k, retrying
// with k+1 in the vanishingly unlikely case that R.x mod n == 0.
func signWithNonce(secret, z, k *big.Int) (*big.Int, *big.Int, error) {
	for {
		r, s, ok, err := trySign(secret, z, k)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			return r, s, nil
		}
		k = new(big.Int).Add(k, big.NewInt(1))
		k.Mod(k, N256)
	}
}

func trySign(secret, z, k *big.Int) (r, s *big.Int, ok bool, err error) {
	R, err := G.ScalarMul(k)
	if err != nil {
		return nil, nil, false, err
	}
	r = new(big.Int).Mod(R.X.Num, N256)
	if r.Sign() == 0 {
		return nil, nil, false, nil
	}
	kInv := new(big.Int).Exp(k, new(big.Int).Sub(N256, big.NewInt(2)), N256)
	re := new(big.Int).Mul(r, secret)
	rePlusZ := new(big.Int).Add(re, z)
	s = new(big.Int).Mul(rePlusZ, kInv)
	s.Mod(s, N256)

	// low-s malleability fix: canonical signatures keep s <= n/2
	halfN := new(big.Int).Rsh(N256, 1)
	if s.Cmp(halfN) > 0 {
		s.Sub(N256, s)
	}
	return r, s, true, nil
}

// deterministicK derives the per-signature nonce k via RFC 6979 with
// HMAC-SHA-256, exactly as spec.md §4.4 describes.
func (e *PrivateKey) deterministicK(z *big.Int) *big.Int {
	zBytes, secretBytes := rfc6979Inputs(e.Secret, z)

	k := bytes.Repeat([]byte{0x00}, 32)
	v := bytes.Repeat([]byte{0x01}, 32)

	k = HmacSHA256(k, concat(v, []byte{0x00}, secretBytes, zBytes))
	v = HmacSHA256(k, v)
	k = HmacSHA256(k, concat(v, []byte{0x01}, secretBytes, zBytes))
	v = HmacSHA256(k, v)

	for {
		v = HmacSHA256(k, v)
		candidate := new(big.Int).SetBytes(v)
		if candidate.Sign() > 0 && candidate.Cmp(N256) < 0 {
			return candidate
		}
		k = HmacSHA256(k, concat(v, []byte{0x00}))
		v = HmacSHA256(k, v)
	}
}

// rfc6979Inputs normalizes z (subtracting N once if it exceeds N, per
// RFC 6979) and renders e and z as 32-byte big-endian blocks.
func rfc6979Inputs(secret, z *big.Int) (zBytes, secretBytes []byte) {
	zz := new(big.Int).Set(z)
	if zz.Cmp(N256) > 0 {
		zz.Sub(zz, N256)
	}
	return zz.FillBytes(make([]byte, 32)), secret.FillBytes(make([]byte, 32))
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Verify checks an ECDSA signature against digest z (spec.md §4.4).
func (p *S256Point) Verify(z *big.Int, sig *Signature) bool {
	if sig.R.Sign() <= 0 || sig.R.Cmp(N256) >= 0 {
		return false
	}
	if sig.S.Sign() <= 0 || sig.S.Cmp(N256) >= 0 {
		return false
	}
	sInv := new(big.Int).Exp(sig.S, new(big.Int).Sub(N256, big.NewInt(2)), N256)
	u := new(big.Int).Mul(z, sInv)
	u.Mod(u, N256)
	v := new(big.Int).Mul(sig.R, sInv)
	v.Mod(v, N256)

	uG, err := G.ScalarMul(u)
	if err != nil {
		return false
	}
	vP, err := p.ScalarMul(v)
	if err != nil {
		return false
	}
	total, err := uG.Add(vP)
	if err != nil {
		return false
	}
	if total.IsInfinity() {
		return false
	}
	return total.X.Num.Cmp(sig.R) == 0
}
