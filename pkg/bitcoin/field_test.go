package bitcoin

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func fe(t *testing.T, num int64, prime int64) *FieldElement {
	t.Helper()
	f, err := NewFieldElement(big.NewInt(num), big.NewInt(prime))
	require.NoError(t, err)
	return f
}

func TestFieldElementAddSubClosure(t *testing.T) {
	const prime = 223
	a := fe(t, 170, prime)
	b := fe(t, 142, prime)

	sum, err := a.Add(b)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(89), sum.Num)

	diff, err := a.Sub(b)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(28), diff.Num)
}

func TestFieldElementMulAndPow(t *testing.T) {
	const prime = 223
	a := fe(t, 192, prime)
	b := fe(t, 147, prime)

	product, err := a.Mul(b)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(126), product.Num)

	squared := a.Pow(big.NewInt(2))
	expected, err := a.Mul(a)
	require.NoError(t, err)
	require.True(t, squared.Equal(expected))
}

func TestFieldElementFermatLittleTheorem(t *testing.T) {
	const prime = 223
	a := fe(t, 17, prime)
	// a^(p-1) == 1 for any nonzero a, by Fermat's little theorem.
	one := a.Pow(big.NewInt(prime - 1))
	require.Equal(t, big.NewInt(1), one.Num)
}

func TestFieldElementInvAndDiv(t *testing.T) {
	const prime = 19
	a := fe(t, 7, prime)
	inv, err := a.Inv()
	require.NoError(t, err)

	product, err := a.Mul(inv)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1), product.Num)

	b := fe(t, 5, prime)
	quotient, err := a.Div(b)
	require.NoError(t, err)
	back, err := quotient.Mul(b)
	require.NoError(t, err)
	require.True(t, back.Equal(a))
}

func TestFieldElementDifferentFieldsRejected(t *testing.T) {
	a := fe(t, 1, 223)
	b := fe(t, 1, 229)
	_, err := a.Add(b)
	require.ErrorIs(t, err, ErrDomain)
}

func TestFieldElementZeroAndNeg(t *testing.T) {
	const prime = 223
	zero := fe(t, 0, prime)
	require.True(t, zero.IsZero())

	a := fe(t, 17, prime)
	neg := a.Neg()
	sum, err := a.Add(neg)
	require.NoError(t, err)
	require.True(t, sum.IsZero())
}
