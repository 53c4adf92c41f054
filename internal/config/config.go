package config

import "github.com/dexsolver/dexsolver/internal/domain"

// Solver is the immutable set of tunables the matching engine runs
// with. It is built once by Load and passed down by value/pointer to
// every package that needs it; nothing in this package holds a mutable
// package-level singleton the way a typical viper-backed config does,
// because the same process may solve many independent instances (one
// per best-token-pair candidate, say) concurrently with the same
// tunables and must never see another goroutine's in-flight edit.
type Solver struct {
	// MinTradableAmount is the smallest sell amount, in a token's own
	// units, a partially filled order may be left with; anything smaller
	// is either filled completely or not touched at all.
	MinTradableAmount *domain.RationalValue

	// FeeTokenPrice is the fixed price, in fee-token units, assigned to
	// the fee token itself -- every other token's price is computed
	// relative to this anchor.
	FeeTokenPrice *domain.RationalValue

	// MaxNrExecOrders caps how many orders (summed across the b, s and
	// fee sides) a single token-pair solve may touch.
	MaxNrExecOrders int

	// MinAverageOrderFee is the minimum fee, in fee-token units, a
	// solution must earn per touched order on average to be admissible.
	// Zero disables the check.
	MinAverageOrderFee *domain.RationalValue

	// MinAbsoluteOrderFee is the minimum fee a single touched order must
	// individually contribute. Zero disables the check.
	MinAbsoluteOrderFee *domain.RationalValue

	// MinTradableAmountRoundingTol is the fractional tolerance (e.g.
	// 0.001) the rounding buffer allows a rounded fill to drift from its
	// exact counterpart before treating it as infeasible.
	MinTradableAmountRoundingTol *domain.RationalValue

	// MaxRoundingVolume bounds how much total volume the rounding buffer
	// may absorb while nudging fills to integers.
	MaxRoundingVolume *domain.RationalValue

	// PriceEstimationError is the integer slack added on either side of
	// an estimated price before the rounding buffer accepts a candidate
	// integer price as close enough to the exact rational one.
	PriceEstimationError int64
}

// Defaults returns the tunables the original solver ships with:
// MIN_TRADABLE_AMOUNT=10000, FEE_TOKEN_PRICE=1e18,
// MAX_NR_EXEC_ORDERS=30, the two fee-floor checks disabled (0),
// MIN_TRADABLE_AMOUNT_ROUNDING_TOL=0.001, MAX_ROUNDING_VOLUME=1e11,
// PRICE_ESTIMATION_ERROR=10.
func Defaults() Solver {
	return Solver{
		MinTradableAmount:            domain.NewRationalFromInt64(10000),
		FeeTokenPrice:                domain.NewRationalFromInt64(1_000_000_000_000_000_000),
		MaxNrExecOrders:              30,
		MinAverageOrderFee:           domain.Zero(),
		MinAbsoluteOrderFee:          domain.Zero(),
		MinTradableAmountRoundingTol: domain.NewRationalFromFrac(1, 1000),
		MaxRoundingVolume:            domain.NewRationalFromInt64(100_000_000_000),
		PriceEstimationError:         10,
	}
}
