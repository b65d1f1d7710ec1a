package bitcoin

import (
	"fmt"
	"math/big"
)

// FieldElement is an element of a prime field: an integer Num in [0, Prime)
// with arithmetic performed modulo Prime. Two elements only interoperate
// when their Prime matches: combining elements of different fields is a
// domain error, and comparing them with Equal reports false.
type FieldElement struct {
	Num   *big.Int
	Prime *big.Int
}

// NewFieldElement constructs a field element, rejecting num outside [0, prime).
func NewFieldElement(num, prime *big.Int) (*FieldElement, error) {
	if num.Sign() < 0 || num.Cmp(prime) >= 0 {
		return nil, fmt.Errorf("%w: num %s not in field range 0 to %s", ErrDomain, num, prime)
	}
	return &FieldElement{Num: new(big.Int).Set(num), Prime: new(big.Int).Set(prime)}, nil
}

// Equal reports whether two field elements hold the same (num, prime).
func (a *FieldElement) Equal(b *FieldElement) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Num.Cmp(b.Num) == 0 && a.Prime.Cmp(b.Prime) == 0
}

func (a *FieldElement) checkSameField(b *FieldElement) error {
	if a.Prime.Cmp(b.Prime) != 0 {
		return fmt.Errorf("%w: cannot operate on elements of different fields (%s != %s)", ErrDomain, a.Prime, b.Prime)
	}
	return nil
}

// Add returns a+b mod p.
func (a *FieldElement) Add(b *FieldElement) (*FieldElement, error) {
	if err := a.checkSameField(b); err != nil {
		return nil, err
	}
	num := new(big.Int).Add(a.Num, b.Num)
	num.Mod(num, a.Prime)
	return &FieldElement{Num: num, Prime: a.Prime}, nil
}

// Sub returns a-b mod p.
func (a *FieldElement) Sub(b *FieldElement) (*FieldElement, error) {
	if err := a.checkSameField(b); err != nil {
		return nil, err
	}
	num := new(big.Int).Sub(a.Num, b.Num)
	num.Mod(num, a.Prime)
	return &FieldElement{Num: num, Prime: a.Prime}, nil
}

// Mul returns a*b mod p.
func (a *FieldElement) Mul(b *FieldElement) (*FieldElement, error) {
	if err := a.checkSameField(b); err != nil {
		return nil, err
	}
	num := new(big.Int).Mul(a.Num, b.Num)
	num.Mod(num, a.Prime)
	return &FieldElement{Num: num, Prime: a.Prime}, nil
}

// ScalarMul returns (k*a.Num) mod p for an arbitrary-precision integer k.
func (a *FieldElement) ScalarMul(k *big.Int) *FieldElement {
	num := new(big.Int).Mul(a.Num, k)
	num.Mod(num, a.Prime)
	return &FieldElement{Num: num, Prime: a.Prime}
}

// Pow returns a^exponent mod p, handling negative exponents via Fermat's
// Little Theorem (a^(p-1) = 1 for a != 0, so a^k = a^(k mod (p-1))).
func (a *FieldElement) Pow(exponent *big.Int) *FieldElement {
	pMinus1 := new(big.Int).Sub(a.Prime, big.NewInt(1))
	n := new(big.Int).Mod(exponent, pMinus1)
	num := new(big.Int).Exp(a.Num, n, a.Prime)
	return &FieldElement{Num: num, Prime: a.Prime}
}

// Neg returns -a mod p.
func (a *FieldElement) Neg() *FieldElement {
	num := new(big.Int).Neg(a.Num)
	num.Mod(num, a.Prime)
	return &FieldElement{Num: num, Prime: a.Prime}
}

// Inv returns the multiplicative inverse of a mod p, i.e. a^(p-2) mod p.
// a must be nonzero.
func (a *FieldElement) Inv() (*FieldElement, error) {
	if a.Num.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero has no multiplicative inverse", ErrDomain)
	}
	exp := new(big.Int).Sub(a.Prime, big.NewInt(2))
	return a.Pow(exp), nil
}

// Div returns a/b mod p, computed as a * b^(p-2) mod p.
func (a *FieldElement) Div(b *FieldElement) (*FieldElement, error) {
	if err := a.checkSameField(b); err != nil {
		return nil, err
	}
	bInv, err := b.Inv()
	if err != nil {
		return nil, err
	}
	return a.Mul(bInv)
}

// IsZero reports whether the element is the additive identity of its field.
func (a *FieldElement) IsZero() bool {
	return a.Num.Sign() == 0
}

func (a *FieldElement) String() string {
	return fmt.Sprintf("FieldElement_%s(%s)", a.Prime, a.Num)
}
