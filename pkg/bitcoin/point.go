package bitcoin

import (
	"fmt"
	"math/big"
)

// Point is a point on the curve y^2 = x^3 + a*x + b over a prime field, or
// the point at infinity (the group identity). Infinity is represented by
// X == nil && Y == nil, so a zero Point value also reports IsInfinity (with
// nil curve constants); use NewInfinityPoint to construct infinity on a
// specific curve.
type Point struct {
	X, Y *FieldElement
	A, B *FieldElement
}

// NewPoint constructs a point on the curve (a,b), verifying y^2 = x^3+ax+b.
func NewPoint(x, y, a, b *FieldElement) (*Point, error) {
	left, err := y.Mul(y)
	if err != nil {
		return nil, err
	}
	xCubed, err := x.Mul(x)
	if err != nil {
		return nil, err
	}
	xCubed, err = xCubed.Mul(x)
	if err != nil {
		return nil, err
	}
	ax, err := a.Mul(x)
	if err != nil {
		return nil, err
	}
	right, err := xCubed.Add(ax)
	if err != nil {
		return nil, err
	}
	right, err = right.Add(b)
	if err != nil {
		return nil, err
	}
	if !left.Equal(right) {
		return nil, fmt.Errorf("%w: (%s, %s) is not on the curve", ErrDomain, x.Num, y.Num)
	}
	return &Point{X: x, Y: y, A: a, B: b}, nil
}

// NewInfinityPoint constructs the point at infinity for curve (a,b).
func NewInfinityPoint(a, b *FieldElement) *Point {
	return &Point{X: nil, Y: nil, A: a, B: b}
}

// IsInfinity reports whether p is the point at infinity.
func (p *Point) IsInfinity() bool {
	return p.X == nil && p.Y == nil
}

// Equal reports whether two points are identical, including equal curves.
func (p *Point) Equal(q *Point) bool {
	if p == nil || q == nil {
		return p == q
	}
	if !p.A.Equal(q.A) || !p.B.Equal(q.B) {
		return false
	}
	if p.IsInfinity() || q.IsInfinity() {
		return p.IsInfinity() && q.IsInfinity()
	}
	return p.X.Equal(q.X) && p.Y.Equal(q.Y)
}

func (p *Point) sameCurve(q *Point) error {
	if !p.A.Equal(q.A) || !p.B.Equal(q.B) {
		return fmt.Errorf("%w: points (%s,%s) and (%s,%s) are not on the same curve", ErrDomain, p.A, p.B, q.A, q.B)
	}
	return nil
}

// Add implements elliptic-curve point addition per spec.md §4.2.
func (p *Point) Add(q *Point) (*Point, error) {
	if err := p.sameCurve(q); err != nil {
		return nil, err
	}
	if p.IsInfinity() {
		return q, nil
	}
	if q.IsInfinity() {
		return p, nil
	}

	if p.X.Equal(q.X) && !p.Y.Equal(q.Y) {
		// inverses: vertical line, result is infinity
		return NewInfinityPoint(p.A, p.B), nil
	}

	if p.Equal(q) {
		if p.Y.IsZero() {
			return NewInfinityPoint(p.A, p.B), nil
		}
		return p.double()
	}

	// p.X != q.X: slope = (y2-y1)/(x2-x1)
	num, err := q.Y.Sub(p.Y)
	if err != nil {
		return nil, err
	}
	den, err := q.X.Sub(p.X)
	if err != nil {
		return nil, err
	}
	slope, err := num.Div(den)
	if err != nil {
		return nil, err
	}
	x3, err := slopeSquaredMinus(slope, p.X, q.X)
	if err != nil {
		return nil, err
	}
	y3, err := slopeTimesDiffMinusY(slope, p.X, x3, p.Y)
	if err != nil {
		return nil, err
	}
	return &Point{X: x3, Y: y3, A: p.A, B: p.B}, nil
}

// double handles p+p (the tangent-line case of Add).
func (p *Point) double() (*Point, error) {
	two := big.NewInt(2)
	three := big.NewInt(3)

	xSq := p.X.Pow(two)
	numerator, err := xSq.ScalarMul(three).Add(p.A)
	if err != nil {
		return nil, err
	}
	denominator := p.Y.ScalarMul(two)
	slope, err := numerator.Div(denominator)
	if err != nil {
		return nil, err
	}
	x3, err := slopeSquaredMinus(slope, p.X, p.X)
	if err != nil {
		return nil, err
	}
	y3, err := slopeTimesDiffMinusY(slope, p.X, x3, p.Y)
	if err != nil {
		return nil, err
	}
	return &Point{X: x3, Y: y3, A: p.A, B: p.B}, nil
}

// slopeSquaredMinus computes slope^2 - x1 - x2.
func slopeSquaredMinus(slope, x1, x2 *FieldElement) (*FieldElement, error) {
	sq, err := slope.Mul(slope)
	if err != nil {
		return nil, err
	}
	sq, err = sq.Sub(x1)
	if err != nil {
		return nil, err
	}
	return sq.Sub(x2)
}

// slopeTimesDiffMinusY computes slope*(x1-x3) - y1.
func slopeTimesDiffMinusY(slope, x1, x3, y1 *FieldElement) (*FieldElement, error) {
	diff, err := x1.Sub(x3)
	if err != nil {
		return nil, err
	}
	prod, err := slope.Mul(diff)
	if err != nil {
		return nil, err
	}
	return prod.Sub(y1)
}

// ScalarMul computes coefficient*p via double-and-add over the binary
// expansion of coefficient.
func (p *Point) ScalarMul(coefficient *big.Int) (*Point, error) {
	coef := new(big.Int).Set(coefficient)
	current := p
	result := NewInfinityPoint(p.A, p.B)
	zero := big.NewInt(0)
	for coef.Cmp(zero) > 0 {
		if coef.Bit(0) == 1 {
			var err error
			result, err = result.Add(current)
			if err != nil {
				return nil, err
			}
		}
		var err error
		current, err = current.Add(current)
		if err != nil {
			return nil, err
		}
		coef.Rsh(coef, 1)
	}
	return result, nil
}

func (p *Point) String() string {
	if p.IsInfinity() {
		return "Point(infinity)"
	}
	return fmt.Sprintf("Point(%s,%s)", p.X.Num, p.Y.Num)
}
