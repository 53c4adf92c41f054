// Package roundbuf temporarily shrinks orders' MaxSellAmount before a
// solution is rounded to integers, leaving headroom so that rounding
// buy amounts down can never push a sell amount past its original
// limit. The reduction is restored unconditionally once rounding is
// done, via Close (idiomatically: defer buf.Close()).
//
// Grounded on original_source's src/token_pair_solver/round.py
// rounding_buffer context manager; its companion
// src/core/round.py.setup_rounding_buffer (the function that actually
// sizes the buffer) was not present in the retrieved source, so the
// sizing formula below is a reconstruction from the constants it is
// known to depend on (see DESIGN.md): a fixed fraction of each order's
// max sell amount, set by PRICE_ESTIMATION_ERROR, capped at
// MAX_ROUNDING_VOLUME so the buffer never eats an outsized share of a
// very large order.
package roundbuf

import "github.com/dexsolver/dexsolver/internal/domain"

// Buffer holds the original MaxSellAmount of every order it was opened
// over, so Close can restore them exactly.
type Buffer struct {
	orders   []*domain.Order
	original []*domain.RationalValue
}

// Open reduces every order's MaxSellAmount by
// min(maxRoundingVolume, maxSellAmount/priceEstimationError) and
// returns a Buffer that restores the original amounts on Close.
func Open(orders []*domain.Order, priceEstimationError int64, maxRoundingVolume *domain.RationalValue) *Buffer {
	buf := &Buffer{
		orders:   orders,
		original: make([]*domain.RationalValue, len(orders)),
	}
	divisor := domain.NewRationalFromInt64(priceEstimationError)
	for i, o := range orders {
		buf.original[i] = o.MaxSellAmount
		reduction := domain.Min(maxRoundingVolume, domain.FloorDiv(o.MaxSellAmount, divisor))
		newMax := o.MaxSellAmount.Sub(reduction)
		if newMax.Sign() < 0 {
			newMax = domain.Zero()
		}
		o.SetMaxSellAmount(newMax)
	}
	return buf
}

// Close restores every order's MaxSellAmount to the value it had when
// Open was called.
func (b *Buffer) Close() {
	for i, o := range b.orders {
		o.ForceSetMaxSellAmount(b.original[i])
	}
}
