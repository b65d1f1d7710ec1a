package bitcoin

import (
	"fmt"
	"math/big"
)

// secp256k1 curve parameters: y^2 = x^3 + 7 over F_p, generator G of order N.
var (
	// P = 2^256 - 2^32 - 977
	P256, _ = new(big.Int).SetString("fffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f", 16)

	// N is the order of the group generated by G.
	N256, _ = new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)

	a256 = big.NewInt(0)
	b256 = big.NewInt(7)

	gx256, _ = new(big.Int).SetString("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798", 16)
	gy256, _ = new(big.Int).SetString("483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8", 16)
)

// NewS256FieldElement builds a field element in secp256k1's field F_p.
func NewS256FieldElement(num *big.Int) (*FieldElement, error) {
	return NewFieldElement(num, P256)
}

// mustS256Field builds a secp256k1 field element from constants known to be
// in range; it panics on programmer error, never on caller input.
func mustS256Field(num *big.Int) *FieldElement {
	fe, err := NewS256FieldElement(num)
	if err != nil {
		panic(fmt.Sprintf("secp256k1: invalid embedded constant: %v", err))
	}
	return fe
}

var (
	s256A = mustS256Field(a256)
	s256B = mustS256Field(b256)
)

// S256Point is a point on secp256k1, with scalar multiplication always
// reduced mod N per spec.md §4.3.
type S256Point struct {
	*Point
}

// NewS256Point constructs a secp256k1 point from field elements.
func NewS256Point(x, y *FieldElement) (*S256Point, error) {
	p, err := NewPoint(x, y, s256A, s256B)
	if err != nil {
		return nil, err
	}
	return &S256Point{p}, nil
}

// NewS256InfinityPoint returns the secp256k1 point at infinity.
func NewS256InfinityPoint() *S256Point {
	return &S256Point{NewInfinityPoint(s256A, s256B)}
}

// G is the secp256k1 generator point.
var G = func() *S256Point {
	p, err := NewS256Point(mustS256Field(gx256), mustS256Field(gy256))
	if err != nil {
		panic(fmt.Sprintf("secp256k1: generator point is not on the curve: %v", err))
	}
	return p
}()

// Add adds two secp256k1 points, preserving the S256Point wrapper.
func (p *S256Point) Add(q *S256Point) (*S256Point, error) {
	r, err := p.Point.Add(q.Point)
	if err != nil {
		return nil, err
	}
	return &S256Point{r}, nil
}

// ScalarMul computes coefficient*P, first reducing coefficient mod N (F3):
// scalar multiplication on secp256k1 is always performed mod the group order.
func (p *S256Point) ScalarMul(coefficient *big.Int) (*S256Point, error) {
	coef := new(big.Int).Mod(coefficient, N256)
	r, err := p.Point.ScalarMul(coef)
	if err != nil {
		return nil, err
	}
	return &S256Point{r}, nil
}

// Equal reports whether two secp256k1 points are the same point.
func (p *S256Point) Equal(q *S256Point) bool {
	return p.Point.Equal(q.Point)
}

// Sqrt returns one square root of a secp256k1 field element, valid because
// p ≡ 3 (mod 4): v^((p+1)/4) is a square root of v whenever v is a quadratic
// residue.
func Sqrt(v *FieldElement) *FieldElement {
	exp := new(big.Int).Add(P256, big.NewInt(1))
	exp.Rsh(exp, 2)
	return v.Pow(exp)
}
