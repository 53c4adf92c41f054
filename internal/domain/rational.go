package domain

import (
	"fmt"
	"math/big"
)

// RationalValue is an exact fraction. It wraps math/big.Rat the way the
// teacher's XRPLNumber wraps a mantissa/exponent pair: a thin value type
// with the handful of operations the solver actually needs, so call
// sites read as domain arithmetic ("Mul", "Sub", "Cmp") instead of raw
// big.Rat plumbing.
//
// Unlike XRPLNumber, RationalValue never rounds on its own: every
// operation is exact, per spec's "Rational arithmetic is exact - no
// floating point in any decision path." Rounding to integers only
// happens explicitly, in IntegerTraits and the arborescence rounder.
type RationalValue struct {
	r *big.Rat
}

// NewRationalFromInt64 builds an exact integer rational value.
func NewRationalFromInt64(v int64) *RationalValue {
	return &RationalValue{r: new(big.Rat).SetInt64(v)}
}

// NewRationalFromBigInt builds an exact integer rational value from a big.Int.
func NewRationalFromBigInt(v *big.Int) *RationalValue {
	return &RationalValue{r: new(big.Rat).SetInt(v)}
}

// NewRationalFromBigRat wraps an existing *big.Rat. The caller's value
// is cloned, so later mutating the argument does not affect the result
// (used when adapting a third-party decimal type's own *big.Rat, e.g.
// shopspring/decimal's Decimal.Rat(), into a RationalValue).
func NewRationalFromBigRat(v *big.Rat) *RationalValue {
	return &RationalValue{r: new(big.Rat).Set(v)}
}

// NewRationalFromFrac builds num/den exactly.
func NewRationalFromFrac(num, den int64) *RationalValue {
	return &RationalValue{r: big.NewRat(num, den)}
}

// NewRationalFromString parses a decimal or fractional string ("1.25",
// "3/4", "10000") into an exact rational.
func NewRationalFromString(s string) (*RationalValue, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("domain: invalid rational literal %q", s)
	}
	return &RationalValue{r: r}, nil
}

// Zero returns the exact rational 0.
func Zero() *RationalValue { return &RationalValue{r: new(big.Rat)} }

// Rat exposes the underlying big.Rat for callers in this module that need
// direct access (e.g. the arithmetic traits' hot paths). Mutating the
// returned value mutates v; callers must Clone first if they need to
// keep v unchanged.
func (v *RationalValue) Rat() *big.Rat { return v.r }

// Clone returns a deep copy.
func (v *RationalValue) Clone() *RationalValue {
	return &RationalValue{r: new(big.Rat).Set(v.r)}
}

func (v *RationalValue) Add(o *RationalValue) *RationalValue {
	return &RationalValue{r: new(big.Rat).Add(v.r, o.r)}
}

func (v *RationalValue) Sub(o *RationalValue) *RationalValue {
	return &RationalValue{r: new(big.Rat).Sub(v.r, o.r)}
}

func (v *RationalValue) Mul(o *RationalValue) *RationalValue {
	return &RationalValue{r: new(big.Rat).Mul(v.r, o.r)}
}

func (v *RationalValue) Quo(o *RationalValue) *RationalValue {
	return &RationalValue{r: new(big.Rat).Quo(v.r, o.r)}
}

func (v *RationalValue) Neg() *RationalValue {
	return &RationalValue{r: new(big.Rat).Neg(v.r)}
}

// Cmp returns -1, 0 or +1 as v is less than, equal to, or greater than o.
func (v *RationalValue) Cmp(o *RationalValue) int { return v.r.Cmp(o.r) }

func (v *RationalValue) Sign() int { return v.r.Sign() }

func (v *RationalValue) IsZero() bool { return v.r.Sign() == 0 }

// LessThan reports whether v < o.
func (v *RationalValue) LessThan(o *RationalValue) bool { return v.Cmp(o) < 0 }

// GreaterThan reports whether v > o.
func (v *RationalValue) GreaterThan(o *RationalValue) bool { return v.Cmp(o) > 0 }

// Max returns the greater of v and o (a new value, a or o is not mutated).
func Max(a, b *RationalValue) *RationalValue {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// Min returns the lesser of a and b.
func Min(a, b *RationalValue) *RationalValue {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// IsInteger reports whether v has denominator 1, i.e. it represents an
// exact integer. The integer arithmetic traits require this of prices.
func (v *RationalValue) IsInteger() bool {
	return v.r.IsInt()
}

// FloorInt64 returns floor(v) as an int64. Panics if v does not fit.
func (v *RationalValue) FloorInt64() int64 {
	q := new(big.Int)
	q.Div(v.r.Num(), v.r.Denom())
	if !q.IsInt64() {
		panic("domain: RationalValue.FloorInt64 overflow")
	}
	return q.Int64()
}

// FloorBigInt returns floor(v) as a *big.Int, using Euclidean (floored)
// integer division so that negative values floor towards -infinity the
// way Python's `//` operator does (required for fidelity with the
// floor-division formulas in the integer arithmetic traits).
func (v *RationalValue) FloorBigInt() *big.Int {
	num := v.r.Num()
	den := v.r.Denom()
	q := new(big.Int)
	m := new(big.Int)
	q.DivMod(num, den, m) // Go's DivMod is Euclidean: 0 <= m < |den|
	return q
}

// FloorDiv computes floor(a/b), matching Python's `//` operator used
// throughout the integer arithmetic traits formulas.
func FloorDiv(a, b *RationalValue) *RationalValue {
	q := new(big.Rat).Quo(a.r, b.r)
	m := new(big.Int)
	fl := new(big.Int)
	fl.DivMod(q.Num(), q.Denom(), m)
	return NewRationalFromBigInt(fl)
}

// CeilDiv computes ceil(a/b), the asymmetric counterpart to FloorDiv
// used by the fee-imbalance pricer when rounding a price up instead of
// down is what keeps the synthetic market order within its limit rate.
func CeilDiv(a, b *RationalValue) *RationalValue {
	q := FloorDiv(a, b)
	if q.Mul(b).Cmp(a) == 0 {
		return q
	}
	return q.Add(NewRationalFromInt64(1))
}

// Mod computes a - FloorDiv(a, b)*b, the floored-modulo matching Python's
// `%` operator (always same sign as b), used by the integer arithmetic
// traits' rounding-error terms.
func Mod(a, b *RationalValue) *RationalValue {
	q := FloorDiv(a, b)
	return a.Sub(q.Mul(b))
}

// Round rounds v to the nearest integer, breaking exact halves towards
// the even neighbour, matching Python's round() on a Fraction (used by
// solve_token_pair's "round(b_buy_token_price / xrate)" adjustment).
func Round(v *RationalValue) *RationalValue {
	floor := NewRationalFromBigInt(v.FloorBigInt())
	rem := v.Sub(floor)
	half := NewRationalFromFrac(1, 2)
	switch rem.Cmp(half) {
	case -1:
		return floor
	case 1:
		return floor.Add(NewRationalFromInt64(1))
	default:
		if new(big.Int).Mod(floor.AsBigInt(), big.NewInt(2)).Sign() == 0 {
			return floor
		}
		return floor.Add(NewRationalFromInt64(1))
	}
}

// AsBigInt returns v as a *big.Int, requiring v to be an exact integer.
func (v *RationalValue) AsBigInt() *big.Int {
	if !v.r.IsInt() {
		panic("domain: RationalValue.AsBigInt called on non-integer value")
	}
	return new(big.Int).Set(v.r.Num())
}

func (v *RationalValue) String() string { return v.r.RatString() }

// FloatString renders v as a decimal string with prec fractional digits,
// used for human/log output (§9's "log statements" and the
// --log-rationals CLI flag render exact fractions instead).
func (v *RationalValue) FloatString(prec int) string { return v.r.FloatString(prec) }
