// Package objective computes the rational objective function the
// exchange-rate optimizer searches over, and the integer objective the
// coordinator uses to compare fee-order counts. Both are the same
// formula, parameterized by domain.ArithTraits.
//
// Grounded on original_source's src/token_pair_solver/orderbook.py
// (compute_objective, compute_objective_for_orders,
// compute_b_buy_token_imbalance).
package objective

import "github.com/dexsolver/dexsolver/internal/domain"

// BalanceUpdatedFunc reports an order's account's remaining sell-token
// balance after other orders have been provisionally filled, feeding
// IntegerTraits' disregarded-utility term. Pass nil when scoring with
// RationalTraits, which ignores the value.
type BalanceUpdatedFunc func(o *domain.Order) *domain.RationalValue

// ForOrders sums objective_term(order, xrate, buyTokenPrice, fee) over
// orders. Grounded on compute_objective_for_orders.
func ForOrders(orders []*domain.Order, xrate, buyTokenPrice *domain.RationalValue, fee domain.Fee, traits domain.ArithTraits, balanceUpdated BalanceUpdatedFunc) *domain.RationalValue {
	total := domain.Zero()
	for _, o := range orders {
		bu := domain.Zero()
		if balanceUpdated != nil {
			bu = balanceUpdated(o)
		}
		total = total.Add(traits.ObjectiveTerm(o, xrate, buyTokenPrice, fee, bu))
	}
	return total
}

// BuyTokenImbalance returns the net amount of the b-side buy token
// bought for the s-side buy token: the s-side's total sell (converted
// from its buy amounts) minus the b-side's total buy. By construction
// this imbalance is the fee volume extracted from the pair. Grounded
// on compute_b_buy_token_imbalance.
func BuyTokenImbalance(bOrders, sOrders []*domain.Order, xrate, buyTokenPrice *domain.RationalValue, fee domain.Fee, traits domain.ArithTraits) *domain.RationalValue {
	bTotal := domain.Zero()
	for _, o := range bOrders {
		bTotal = bTotal.Add(o.BuyAmount)
	}

	invXrate := domain.NewRationalFromInt64(1).Quo(xrate)
	sSellTokenPrice := buyTokenPrice.Quo(xrate)
	sTotalSell := domain.Zero()
	for _, o := range sOrders {
		sTotalSell = sTotalSell.Add(traits.SellFromBuy(o.BuyAmount, invXrate, sSellTokenPrice, fee))
	}

	return sTotalSell.Sub(bTotal)
}

// Compute returns the full objective of a (b, s, f) order triple at
// xrate and buyTokenPrice: the 2u-umax terms of all three sides plus
// half the fee volume they generate, priced in buyTokenPrice units and
// converted to fee-token units via feeTokenPrice. Grounded on
// compute_objective.
func Compute(bOrders, sOrders, fOrders []*domain.Order, xrate, buyTokenPrice, feeTokenPrice *domain.RationalValue, fee domain.Fee, traits domain.ArithTraits, balanceUpdated BalanceUpdatedFunc) *domain.RationalValue {
	invXrate := domain.NewRationalFromInt64(1).Quo(xrate)
	sBuyTokenPrice := buyTokenPrice.Quo(xrate)

	t1 := ForOrders(bOrders, xrate, buyTokenPrice, fee, traits, balanceUpdated)
	t2 := ForOrders(sOrders, invXrate, sBuyTokenPrice, fee, traits, balanceUpdated)

	fXrate := buyTokenPrice.Quo(feeTokenPrice)
	t3 := ForOrders(fOrders, fXrate, buyTokenPrice, fee, traits, balanceUpdated)

	imbalance := BuyTokenImbalance(bOrders, sOrders, xrate, buyTokenPrice, fee, traits)
	feesPayed := imbalance.Mul(buyTokenPrice).Quo(feeTokenPrice)
	half := feesPayed.Quo(domain.NewRationalFromInt64(2))

	return t1.Add(t2).Add(t3).Add(half)
}

// Rational runs Compute with the pair-only (b,s) terms and
// RationalTraits, buyTokenPrice=1, matching the exchange-rate
// optimizer's internal scoring (xrate.py's SymbolicSolver.compute_objective).
func Rational(bOrders, sOrders []*domain.Order, xrate, feeTokenPrice *domain.RationalValue, fee domain.Fee) *domain.RationalValue {
	one := domain.NewRationalFromInt64(1)
	return Compute(bOrders, sOrders, nil, xrate, one, feeTokenPrice, fee, domain.RationalTraits{}, nil)
}
