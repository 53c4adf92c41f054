// Package exec implements the single-pair execution engine: given a
// candidate exchange rate and two sorted order books, it fills orders
// against each other with a two-pointer sweep and rolls back whatever
// violates the minimum tradable amount or the touched-order cap.
//
// Grounded on original_source's src/token_pair_solver/amount.py
// (compute_buy_amounts and friends), restructured around
// domain.ArithTraits so the same code scores both rational and integer
// orders, and extended with the touched-order cap amount.py's revision
// lacked but the coordinator (src/match.py) passes in as a parameter.
package exec

import "github.com/dexsolver/dexsolver/internal/domain"

// bBuyAmountFromBSellAmount implements eq.1: b_buy = b_sell/xrate * (1-fee).
func bBuyAmountFromBSellAmount(bSellAmount, xrate *domain.RationalValue, fee domain.Fee) *domain.RationalValue {
	oneMinusFee := domain.NewRationalFromInt64(1).Sub(fee.Value)
	return bSellAmount.Quo(xrate).Mul(oneMinusFee)
}

// bSellAmountFromBBuyAmount implements the inverse of eq.1.
func bSellAmountFromBBuyAmount(bBuyAmount, xrate *domain.RationalValue, fee domain.Fee) *domain.RationalValue {
	oneMinusFee := domain.NewRationalFromInt64(1).Sub(fee.Value)
	return bBuyAmount.Mul(xrate).Quo(oneMinusFee)
}

func bBuyAmountFromBMaxSellAmount(o *domain.Order, xrate *domain.RationalValue, fee domain.Fee) *domain.RationalValue {
	return bBuyAmountFromBSellAmount(o.MaxSellAmount, xrate, fee)
}

// sBuyAmountFromSSellAmount implements eq.2: s_buy = s_sell*xrate*(1-fee).
func sBuyAmountFromSSellAmount(sSellAmount, xrate *domain.RationalValue, fee domain.Fee) *domain.RationalValue {
	oneMinusFee := domain.NewRationalFromInt64(1).Sub(fee.Value)
	return sSellAmount.Mul(xrate).Mul(oneMinusFee)
}

// sSellAmountFromSBuyAmount implements the inverse of eq.2.
func sSellAmountFromSBuyAmount(sBuyAmount, xrate *domain.RationalValue, fee domain.Fee) *domain.RationalValue {
	oneMinusFee := domain.NewRationalFromInt64(1).Sub(fee.Value)
	return sBuyAmount.Quo(xrate).Quo(oneMinusFee)
}

func sBuyAmountFromSMaxSellAmount(o *domain.Order, xrate *domain.RationalValue, fee domain.Fee) *domain.RationalValue {
	return sBuyAmountFromSSellAmount(o.MaxSellAmount, xrate, fee)
}

// bBuyAmountFromSBuyAmount converts across the s_buy = b_sell convention
// (eq.3): b_buy = s_buy/xrate * (1-fee).
func bBuyAmountFromSBuyAmount(sBuyAmount, xrate *domain.RationalValue, fee domain.Fee) *domain.RationalValue {
	oneMinusFee := domain.NewRationalFromInt64(1).Sub(fee.Value)
	return sBuyAmount.Quo(xrate).Mul(oneMinusFee)
}

// sBuyAmountFromBBuyAmount is the other direction of eq.3.
func sBuyAmountFromBBuyAmount(bBuyAmount, xrate *domain.RationalValue, fee domain.Fee) *domain.RationalValue {
	oneMinusFee := domain.NewRationalFromInt64(1).Sub(fee.Value)
	return bBuyAmount.Mul(xrate).Quo(oneMinusFee)
}

func filterViolatingMaxXrate(xrate *domain.RationalValue, bOrders, sOrders []*domain.Order, fee domain.Fee) ([]*domain.Order, []*domain.Order) {
	oneMinusFee := domain.NewRationalFromInt64(1).Sub(fee.Value)

	filteredB := make([]*domain.Order, 0, len(bOrders))
	for _, o := range bOrders {
		limit := o.MaxXrate.Mul(oneMinusFee)
		if xrate.Cmp(limit) <= 0 {
			filteredB = append(filteredB, o)
		}
	}

	filteredS := make([]*domain.Order, 0, len(sOrders))
	inv := domain.NewRationalFromInt64(1).Quo(xrate)
	for _, o := range sOrders {
		limit := o.MaxXrate.Mul(oneMinusFee)
		if inv.Cmp(limit) <= 0 {
			filteredS = append(filteredS, o)
		}
	}
	return filteredB, filteredS
}

func filterViolatingMinTradable(xrate *domain.RationalValue, bOrders, sOrders []*domain.Order, fee domain.Fee, minTradable *domain.RationalValue) ([]*domain.Order, []*domain.Order) {
	filteredB := make([]*domain.Order, 0, len(bOrders))
	for _, o := range bOrders {
		if o.MaxSellAmount.Cmp(minTradable) < 0 {
			continue
		}
		if bBuyAmountFromBMaxSellAmount(o, xrate, fee).Cmp(minTradable) < 0 {
			continue
		}
		filteredB = append(filteredB, o)
	}

	filteredS := make([]*domain.Order, 0, len(sOrders))
	for _, o := range sOrders {
		if o.MaxSellAmount.Cmp(minTradable) < 0 {
			continue
		}
		if sBuyAmountFromSMaxSellAmount(o, xrate, fee).Cmp(minTradable) < 0 {
			continue
		}
		filteredS = append(filteredS, o)
	}
	return filteredB, filteredS
}

// removeBuyAmount peels amountToRemove off orders' buy amounts starting
// at orderI and working backwards through already-executed orders,
// mirroring amount.py's remove_buy_amount. Returns the new pointer.
// Stops (rather than indexing out of range) once orderI runs past the
// start of orders -- reachable when the undo pass empties a side down
// to nothing and a caller still has amount left to peel off.
func removeBuyAmount(orderI int, orders []*domain.Order, amountToRemove *domain.RationalValue) int {
	remaining := amountToRemove.Clone()
	for remaining.Sign() > 0 && orderI >= 0 {
		removeDelta := domain.Min(orders[orderI].BuyAmount, remaining)
		orders[orderI].BuyAmount = orders[orderI].BuyAmount.Sub(removeDelta)
		remaining = remaining.Sub(removeDelta)
		if orders[orderI].BuyAmount.IsZero() {
			orderI--
		}
	}
	return orderI
}

// touchedCount reports how many orders at and before ptr in orders
// carry a nonzero buy amount: the fully-filled ones the pointer has
// already swept past, plus the one the pointer currently sits on if
// it has taken a partial fill. bI+sI alone undercounts by one
// whenever the order under the pointer is partially but not fully
// filled, which is the common case after a non-tie round.
func touchedCount(orders []*domain.Order, ptr int) int {
	n := ptr
	if ptr < len(orders) && orders[ptr].BuyAmount.Sign() > 0 {
		n++
	}
	return n
}

// fillOrderPair exchanges buy amounts between b_orders[bI] and
// s_orders[sI] at xrate, advancing whichever pointer(s) become fully
// filled. Grounded on compute_buy_amounts_for_order_pair.
func fillOrderPair(bI, sI int, xrate *domain.RationalValue, bOrders, sOrders []*domain.Order, fee domain.Fee) (int, int) {
	bOrder := bOrders[bI]
	sOrder := sOrders[sI]

	bBuyAmountUB := bBuyAmountFromBMaxSellAmount(bOrder, xrate, fee).Sub(bOrder.BuyAmount)
	sBuyAmountUB := sBuyAmountFromSMaxSellAmount(sOrder, xrate, fee).Sub(sOrder.BuyAmount)

	bBuyAmountFromS := bBuyAmountFromSBuyAmount(sBuyAmountUB, xrate, fee)
	sBuyAmountFromB := sBuyAmountFromBBuyAmount(bBuyAmountUB, xrate, fee)

	switch {
	case bBuyAmountUB.LessThan(bBuyAmountFromS):
		bOrder.BuyAmount = bOrder.BuyAmount.Add(bBuyAmountUB)
		sOrder.BuyAmount = sOrder.BuyAmount.Add(sBuyAmountFromB)
		bI++
	case bBuyAmountUB.GreaterThan(bBuyAmountFromS):
		bOrder.BuyAmount = bOrder.BuyAmount.Add(bBuyAmountFromS)
		sOrder.BuyAmount = sOrder.BuyAmount.Add(sBuyAmountUB)
		sI++
	default:
		bOrder.BuyAmount = bOrder.BuyAmount.Add(bBuyAmountUB)
		sOrder.BuyAmount = sOrder.BuyAmount.Add(sBuyAmountUB)
		bI++
		sI++
	}
	return bI, sI
}

// Compute runs the execution engine described above and returns the
// (filtered, sorted, now-filled) order lists. Orders not present in
// either returned slice should be treated as untouched (buy_amount=0).
func Compute(xrate *domain.RationalValue, bOrdersIn, sOrdersIn []*domain.Order, fee domain.Fee, maxNrExecOrders int, minTradable *domain.RationalValue) ([]*domain.Order, []*domain.Order) {
	for _, o := range bOrdersIn {
		o.ResetAmounts()
	}
	for _, o := range sOrdersIn {
		o.ResetAmounts()
	}

	bOrders, sOrders := filterViolatingMaxXrate(xrate, bOrdersIn, sOrdersIn, fee)
	bOrders, sOrders = filterViolatingMinTradable(xrate, bOrders, sOrders, fee, minTradable)

	if len(bOrders) == 0 || len(sOrders) == 0 {
		return nil, nil
	}

	bOrders = domain.SortByMaxXrateDesc(bOrders)
	sOrders = domain.SortByMaxXrateDesc(sOrders)

	bI, sI := 0, 0
	for sI < len(sOrders) && bI < len(bOrders) && touchedCount(bOrders, bI)+touchedCount(sOrders, sI) < maxNrExecOrders {
		preBI, preSI := bI, sI
		preBBuy := bOrders[bI].BuyAmount
		preSBuy := sOrders[sI].BuyAmount

		bI, sI = fillOrderPair(bI, sI, xrate, bOrders, sOrders, fee)

		// A round can touch two previously-untouched orders at once
		// (either pointer advancing past a now-fully-filled order, or
		// a tie advancing both); when the resulting touched count
		// overshoots the cap, undo this single pair's exchange and stop.
		if touchedCount(bOrders, bI)+touchedCount(sOrders, sI) > maxNrExecOrders {
			bOrders[preBI].BuyAmount = preBBuy
			sOrders[preSI].BuyAmount = preSBuy
			bI, sI = preBI, preSI
			break
		}
	}

	bI = min(bI, len(bOrders)-1)
	sI = min(sI, len(sOrders)-1)

	// Once either side's pointer is trimmed below 0 (every order on
	// that side undone), there is nothing left to check or peel amount
	// off on that side -- skip it rather than index past the start.
	undonePass := true
	for undonePass {
		undonePass = false

		if bI >= 0 {
			bBuyAmount := bOrders[bI].BuyAmount
			bSellAmount := bSellAmountFromBBuyAmount(bBuyAmount, xrate, fee)
			if bBuyAmount.Cmp(minTradable) < 0 || bSellAmount.Cmp(minTradable) < 0 {
				bOrders[bI].BuyAmount = domain.Zero()
				bI--
				sBuyAmount := sBuyAmountFromBBuyAmount(bBuyAmount, xrate, fee)
				if sI >= 0 {
					sI = removeBuyAmount(sI, sOrders, sBuyAmount)
				}
				undonePass = true
			}
		}

		if sI >= 0 {
			sBuyAmount := sOrders[sI].BuyAmount
			sSellAmount := sSellAmountFromSBuyAmount(sBuyAmount, xrate, fee)
			if sBuyAmount.Cmp(minTradable) < 0 || sSellAmount.Cmp(minTradable) < 0 {
				sOrders[sI].BuyAmount = domain.Zero()
				sI--
				bBuyAmountRemove := bBuyAmountFromSBuyAmount(sBuyAmount, xrate, fee)
				if bI >= 0 {
					bI = removeBuyAmount(bI, bOrders, bBuyAmountRemove)
				}
				undonePass = true
			}
		}
	}

	return bOrders, sOrders
}
