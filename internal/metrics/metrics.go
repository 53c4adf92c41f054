// Package metrics computes the objective-function summary a solved
// instance is reported with: total volume, utility (realized and
// disregarded), total fee, and the count of touched orders.
//
// Grounded on original_source's src/core/orderbook.py's
// compute_solution_metrics.
package metrics

import (
	"github.com/dexsolver/dexsolver/internal/domain"
)

// Solution is the objective-function summary of a solved instance,
// serialized into the output JSON's "objVals" block.
type Solution struct {
	Volume               *domain.RationalValue
	Utility              *domain.RationalValue
	UtilityDisreg        *domain.RationalValue
	UtilityDisregTouched *domain.RationalValue
	Fees                 *domain.RationalValue
	OrdersTouched        int
}

// Compute derives a Solution's metrics from its final integer prices,
// its orders, the post-trade account balances (accountsUpdated, for the
// balance-aware disregarded-utility term) and the fee token. Orders with
// no price for either of their tokens (never touched in a multi-pair
// instance where this pair's tokens don't cover them) are skipped,
// mirroring compute_solution_metrics' own guard.
//
// As a side effect, each touched order's Utility/UtilityDisreg fields are
// populated, matching the original's order.utility/order.utility_disreg
// assignment (used by per-order reporting in the output dump).
func Compute(prices map[domain.Token]*domain.RationalValue, accountsUpdated domain.Accounts, orders []*domain.Order, fee domain.Fee) Solution {
	traits := domain.IntegerTraits{}

	out := Solution{
		Volume:               domain.Zero(),
		Utility:              domain.Zero(),
		UtilityDisreg:        domain.Zero(),
		UtilityDisregTouched: domain.Zero(),
		Fees:                 domain.Zero(),
	}

	for _, order := range orders {
		buyTokenPrice, hasBuy := prices[order.BuyToken]
		sellTokenPrice, hasSell := prices[order.SellToken]
		if !hasBuy || !hasSell || buyTokenPrice == nil || sellTokenPrice == nil {
			continue
		}

		out.Volume = out.Volume.Add(order.SellAmount.Mul(sellTokenPrice))

		xrate := buyTokenPrice.Quo(sellTokenPrice)

		u := traits.UtilityTerm(order, xrate, buyTokenPrice, fee)

		balanceUpdated := domain.Zero()
		if order.AccountID != "" {
			balanceUpdated = accountsUpdated.Balance(order.AccountID, order.SellToken)
		}
		umax := traits.MaxUtilityTerm(order, xrate, buyTokenPrice, fee, balanceUpdated)

		out.Utility = out.Utility.Add(u)
		disreg := umax.Sub(u)
		if disreg.Sign() < 0 {
			disreg = domain.Zero()
		}
		out.UtilityDisreg = out.UtilityDisreg.Add(disreg)

		if order.SellAmount.Sign() > 0 {
			out.OrdersTouched++
			out.UtilityDisregTouched = out.UtilityDisregTouched.Add(umax.Sub(u))

			order.Utility = u
			order.UtilityDisreg = umax.Sub(u)
		}

		switch fee.Token {
		case order.SellToken:
			out.Fees = out.Fees.Add(order.SellAmount)
		case order.BuyToken:
			out.Fees = out.Fees.Sub(order.BuyAmount)
		}
	}

	return out
}
