package bitcoin

import (
	"fmt"
	"math/big"
)

// Sec serializes a public key in SEC format: uncompressed (0x04 ‖ x ‖ y) or
// compressed (0x02/0x03 ‖ x, prefix selected by the parity of y).
func (p *S256Point) Sec(compressed bool) []byte {
	xBytes := p.X.Num.FillBytes(make([]byte, 32))
	if compressed {
		prefix := byte(0x02)
		if p.Y.Num.Bit(0) == 1 {
			prefix = 0x03
		}
		return append([]byte{prefix}, xBytes...)
	}
	yBytes := p.Y.Num.FillBytes(make([]byte, 32))
	out := append([]byte{0x04}, xBytes...)
	return append(out, yBytes...)
}

// ParseSEC parses a SEC-encoded public key, recovering y from x for the
// compressed form via Sqrt and the required parity (spec.md §4.4).
func ParseSEC(sec []byte) (*S256Point, error) {
	if len(sec) == 0 {
		return nil, fmt.Errorf("%w: empty SEC data", ErrFormat)
	}
	switch sec[0] {
	case 0x04:
		if len(sec) != 65 {
			return nil, fmt.Errorf("%w: uncompressed SEC must be 65 bytes, got %d", ErrFormat, len(sec))
		}
		x, err := NewS256FieldElement(new(big.Int).SetBytes(sec[1:33]))
		if err != nil {
			return nil, err
		}
		y, err := NewS256FieldElement(new(big.Int).SetBytes(sec[33:65]))
		if err != nil {
			return nil, err
		}
		return NewS256Point(x, y)
	case 0x02, 0x03:
		if len(sec) != 33 {
			return nil, fmt.Errorf("%w: compressed SEC must be 33 bytes, got %d", ErrFormat, len(sec))
		}
		x, err := NewS256FieldElement(new(big.Int).SetBytes(sec[1:33]))
		if err != nil {
			return nil, err
		}
		xCubed := x.Pow(big.NewInt(3))
		ySquared, err := xCubed.Add(s256B)
		if err != nil {
			return nil, err
		}
		beta := Sqrt(ySquared)
		var evenBeta, oddBeta *FieldElement
		if beta.Num.Bit(0) == 0 {
			evenBeta = beta
			oddBeta = beta.Neg()
		} else {
			oddBeta = beta
			evenBeta = beta.Neg()
		}
		wantOdd := sec[0] == 0x03
		y := evenBeta
		if wantOdd {
			y = oddBeta
		}
		return NewS256Point(x, y)
	default:
		return nil, fmt.Errorf("%w: unknown SEC prefix 0x%02x", ErrFormat, sec[0])
	}
}

// Address derives the base58-checksum Bitcoin address for this public key:
// prefix ‖ hash160(sec(compressed)), prefix 0x00 mainnet / 0x6f testnet.
func (p *S256Point) Address(compressed, testnet bool) string {
	h160 := Hash160Bytes(p.Sec(compressed))
	prefix := byte(0x00)
	if testnet {
		prefix = 0x6f
	}
	return EncodeBase58Checksum(append([]byte{prefix}, h160...))
}

// Der encodes the signature per the DER rules in spec.md §4.4.
func (sig *Signature) Der() []byte {
	rBytes := derInt(sig.R)
	sBytes := derInt(sig.S)
	body := append([]byte{0x02, byte(len(rBytes))}, rBytes...)
	body = append(body, 0x02, byte(len(sBytes)))
	body = append(body, sBytes...)
	return append([]byte{0x30, byte(len(body))}, body...)
}

// derInt renders a positive big.Int as a minimal big-endian byte string,
// prepending 0x00 when the high bit of the first byte is set so the value
// is unambiguously positive under DER's two's-complement integer encoding.
func derInt(n *big.Int) []byte {
	b := n.Bytes()
	if len(b) == 0 {
		b = []byte{0x00}
	}
	if b[0]&0x80 != 0 {
		b = append([]byte{0x00}, b...)
	}
	return b
}

// ParseDER parses a DER-encoded signature, strictly checking the 0x30
// header and length fields per spec.md §4.4.
func ParseDER(der []byte) (*Signature, error) {
	if len(der) < 6 || der[0] != 0x30 {
		return nil, fmt.Errorf("%w: bad DER signature header", ErrFormat)
	}
	length := int(der[1])
	if length != len(der)-2 {
		return nil, fmt.Errorf("%w: DER length field %d does not match payload %d", ErrFormat, length, len(der)-2)
	}
	offset := 2
	r, n, err := parseDERInt(der, offset)
	if err != nil {
		return nil, err
	}
	offset += n
	s, n, err := parseDERInt(der, offset)
	if err != nil {
		return nil, err
	}
	offset += n
	if offset != len(der) {
		return nil, fmt.Errorf("%w: signature length mismatch", ErrFormat)
	}
	return NewSignature(r, s), nil
}

// parseDERInt parses one ASN.1 INTEGER starting at offset, returning its
// value and the number of bytes consumed.
func parseDERInt(der []byte, offset int) (*big.Int, int, error) {
	if offset+2 > len(der) || der[offset] != 0x02 {
		return nil, 0, fmt.Errorf("%w: expected DER integer marker", ErrFormat)
	}
	valLen := int(der[offset+1])
	start := offset + 2
	if start+valLen > len(der) {
		return nil, 0, fmt.Errorf("%w: DER integer length exceeds signature", ErrFormat)
	}
	return new(big.Int).SetBytes(der[start : start+valLen]), 2 + valLen, nil
}

// Wif serializes the private key in Wallet Import Format (spec.md §4.4).
func (e *PrivateKey) Wif(compressed, testnet bool) string {
	secretBytes := e.Secret.FillBytes(make([]byte, 32))
	if compressed {
		secretBytes = append(secretBytes, 0x01)
	}
	prefix := byte(0x80)
	if testnet {
		prefix = 0xef
	}
	payload := append([]byte{prefix}, secretBytes...)
	return EncodeBase58Checksum(payload)
}

// ParseWIF parses a WIF-encoded private key, returning the key and its
// derived compressed/testnet flags.
func ParseWIF(wif string) (key *PrivateKey, compressed, testnet bool, err error) {
	payload, err := DecodeBase58Checksum(wif)
	if err != nil {
		return nil, false, false, err
	}
	if len(payload) != 33 && len(payload) != 34 {
		return nil, false, false, fmt.Errorf("%w: WIF payload must be 33 or 34 bytes, got %d", ErrFormat, len(payload))
	}
	switch payload[0] {
	case 0x80:
		testnet = false
	case 0xef:
		testnet = true
	default:
		return nil, false, false, fmt.Errorf("%w: unknown WIF prefix 0x%02x", ErrFormat, payload[0])
	}
	compressed = len(payload) == 34
	if compressed && payload[33] != 0x01 {
		return nil, false, false, fmt.Errorf("%w: unexpected WIF compression suffix 0x%02x", ErrFormat, payload[33])
	}
	secret := new(big.Int).SetBytes(payload[1:33])
	key, err = NewPrivateKey(secret)
	if err != nil {
		return nil, false, false, err
	}
	return key, compressed, testnet, nil
}
