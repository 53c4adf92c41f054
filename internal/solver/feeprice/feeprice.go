// Package feeprice computes the price of the b-side token needed to
// cover the fee-token imbalance the pair-matching execution engine
// leaves behind, by constructing a synthetic "market order" that sells
// the imbalance for fee token and re-running the exchange-rate
// optimizer against the real fee-token sell orders.
//
// Grounded on original_source's src/token_pair_solver/price.py.
package feeprice

import (
	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/dexsolver/dexsolver/internal/solver/xrate"
)

// marketOrderSlack discounts the synthetic order's limit rate by 10%
// so that it remains matchable even after integer rounding, per
// create_market_order's "slack to make sure the order will be matched".
var marketOrderSlack = domain.NewRationalFromFrac(9, 10)

// imbalanceSlack inflates the target sell amount by 1% to cover the
// additional imbalance integer rounding introduces, per
// compute_token_price_to_cover_imbalance's sell_amount estimate.
var imbalanceSlack = domain.NewRationalFromFrac(101, 100)

// CreateMarketOrder builds an unaccounted order selling sellAmount of
// sellToken for buyToken at the most generous rate any of sOrders
// would accept, discounted by marketOrderSlack. Grounded on
// create_market_order.
func CreateMarketOrder(buyToken, sellToken domain.Token, sellAmount *domain.RationalValue, sOrders []*domain.Order) *domain.Order {
	minXrate := sOrders[0].MaxXrate
	for _, o := range sOrders[1:] {
		if o.MaxXrate.LessThan(minXrate) {
			minXrate = o.MaxXrate
		}
	}
	minXrate = minXrate.Mul(marketOrderSlack)
	maxXrate := domain.NewRationalFromInt64(1).Quo(minXrate)
	return domain.NewSyntheticOrder("", buyToken, sellToken, sellAmount, maxXrate)
}

// ComputeTokenPriceToCoverImbalance finds the integer price of
// buyToken (in fee-token units) such that a market order selling
// buyTokenImbalance for fee token can be matched against fOrders. The
// rounding direction (ceil vs floor) depends on whether the optimal
// rate landed on the synthetic order's own limit rate or on one of the
// f-orders' limit rates, exactly as price.py's asymmetric rounding
// does. Returns ok=false if no fee-order can cover the imbalance at
// all (a FeeUnreachable condition upstream).
func ComputeTokenPriceToCoverImbalance(
	buyToken domain.Token,
	fee domain.Fee,
	buyTokenImbalance *domain.RationalValue,
	fOrders []*domain.Order,
	feeTokenPrice *domain.RationalValue,
	maxNrExecOrders int,
	minTradable *domain.RationalValue,
) (buyTokenPrice *domain.RationalValue, ok bool) {
	if len(fOrders) == 0 {
		return nil, false
	}

	sellAmount := buyTokenImbalance.Mul(imbalanceSlack)
	marketOrder := CreateMarketOrder(fee.Token, buyToken, sellAmount, fOrders)

	xr, _, solved := xrate.Solve([]*domain.Order{marketOrder}, fOrders, fee, feeTokenPrice, maxNrExecOrders, minTradable)
	if !solved {
		return nil, false
	}

	f := domain.NewRationalFromInt64(1).Sub(fee.Value)
	limitXrate := marketOrder.MaxXrate.Mul(f)

	if xr.Cmp(limitXrate) == 0 {
		// Optimal xrate pinned at the synthetic order's own limit: round
		// the price up so that 1/xrate rounds down, staying within it.
		buyTokenPrice = domain.CeilDiv(feeTokenPrice, xr)
	} else {
		// Optimal xrate pinned at an f_order's limit: round the price
		// down so 1/xrate rounds down, staying within that limit.
		buyTokenPrice = domain.FloorDiv(feeTokenPrice, xr)
	}
	return buyTokenPrice, true
}
