package domain

// ArithTraits computes an order's executed sell amount and utility
// scores under one of two arithmetic conventions: exact rational
// arithmetic (RationalTraits) or the rounding-faithful integer
// arithmetic a settlement contract actually performs (IntegerTraits).
// The optimizer and execution engine are written against this
// interface so the same code paths score both conventions identically;
// only the formulas differ. Grounded on original_source's
// order_util.py BaseTraits/RationalTraits/SmartContractTraits.
//
// balanceUpdated is the account's remaining sell-token balance after
// other orders of the same account have been provisionally filled; it
// only affects IntegerTraits (RationalTraits ignores it, matching
// RationalTraits.compute_max_utility_term's unused **kwargs).
type ArithTraits interface {
	SellFromBuy(buyAmount, xrate, buyTokenPrice *RationalValue, fee Fee) *RationalValue
	UtilityTerm(order *Order, xrate, buyTokenPrice *RationalValue, fee Fee) *RationalValue
	MaxUtilityTerm(order *Order, xrate, buyTokenPrice *RationalValue, fee Fee, balanceUpdated *RationalValue) *RationalValue
	ObjectiveTerm(order *Order, xrate, buyTokenPrice *RationalValue, fee Fee, balanceUpdated *RationalValue) *RationalValue
}

// objectiveFromTerms computes 2u - umax, common to both trait sets
// (BaseTraits.compute_objective_term).
func objectiveFromTerms(u, umax *RationalValue) *RationalValue {
	return u.Add(u).Sub(umax)
}

// RationalTraits scores orders using exact fraction arithmetic, the
// convention the exchange-rate optimizer uses internally to find the
// objective-maximizing rate before any integer rounding is applied.
type RationalTraits struct{}

// SellFromBuy implements buy_amount * xrate / (1 - fee.value).
// buyTokenPrice is accepted for interface uniformity but unused, as in
// RationalTraits.compute_sell_from_buy_amount.
func (RationalTraits) SellFromBuy(buyAmount, xrate, _ *RationalValue, fee Fee) *RationalValue {
	oneMinusFee := NewRationalFromInt64(1).Sub(fee.Value)
	return buyAmount.Mul(xrate).Quo(oneMinusFee)
}

// UtilityTerm implements buy_token_price * (buy_amount - sell_amount/max_xrate).
func (t RationalTraits) UtilityTerm(order *Order, xrate, buyTokenPrice *RationalValue, fee Fee) *RationalValue {
	sellAmount := t.SellFromBuy(order.BuyAmount, xrate, buyTokenPrice, fee)
	diff := order.BuyAmount.Sub(sellAmount.Quo(order.MaxXrate))
	return buyTokenPrice.Mul(diff)
}

// MaxUtilityTerm scores the order as if fully filled at its limit rate:
// min_buy_amount = (max_sell_amount/xrate) * (1 - fee.value), clamped
// to be non-negative.
func (t RationalTraits) MaxUtilityTerm(order *Order, xrate, buyTokenPrice *RationalValue, fee Fee, _ *RationalValue) *RationalValue {
	oneMinusFee := NewRationalFromInt64(1).Sub(fee.Value)
	minBuyAmount := order.MaxSellAmount.Quo(xrate).Mul(oneMinusFee)
	hypothetical := order.WithBuyAmount(minBuyAmount)
	u := t.UtilityTerm(hypothetical, xrate, buyTokenPrice, fee)
	if u.Sign() < 0 {
		return Zero()
	}
	return u
}

func (t RationalTraits) ObjectiveTerm(order *Order, xrate, buyTokenPrice *RationalValue, fee Fee, balanceUpdated *RationalValue) *RationalValue {
	u := t.UtilityTerm(order, xrate, buyTokenPrice, fee)
	umax := t.MaxUtilityTerm(order, xrate, buyTokenPrice, fee, balanceUpdated)
	return objectiveFromTerms(u, umax)
}

// IntegerTraits scores orders the way the settlement contract actually
// rounds: prices are required to be exact integers, and every division
// floors towards -infinity (Python `//` semantics, via FloorDiv/Mod).
// Grounded on original_source's SmartContractTraits, the revision
// order_util.py aliases as `IntegerTraits = SmartContractTraits`.
type IntegerTraits struct{}

// SellFromBuy implements (buy_amount * buy_token_price) // (1 -
// fee.value) // sell_token_price, requiring both buyTokenPrice and the
// derived sellTokenPrice to be exact integers.
func (IntegerTraits) SellFromBuy(buyAmount, xrate, buyTokenPrice *RationalValue, fee Fee) *RationalValue {
	if !buyTokenPrice.IsInteger() {
		panic("domain: IntegerTraits requires an integer buy token price")
	}
	sellTokenPrice := buyTokenPrice.Quo(xrate)
	if !sellTokenPrice.IsInteger() {
		panic("domain: IntegerTraits requires an integer sell token price")
	}
	oneMinusFee := NewRationalFromInt64(1).Sub(fee.Value)
	step := FloorDiv(buyAmount.Mul(buyTokenPrice), oneMinusFee)
	return FloorDiv(step, sellTokenPrice)
}

// UtilityTerm implements compute_utility_term against the order's
// OriginalMaxSellAmount (not the possibly balance-capped
// MaxSellAmount), splitting the rounding into a "rounded utility" term
// and a "utility error" term exactly as the contract accumulates them.
func (t IntegerTraits) UtilityTerm(order *Order, xrate, buyTokenPrice *RationalValue, fee Fee) *RationalValue {
	maxSellAmount := order.OriginalMaxSellAmount
	minBuyAmount := maxSellAmount.Quo(order.MaxXrate)
	if !minBuyAmount.IsInteger() {
		panic("domain: IntegerTraits requires max_sell_amount/max_xrate to be an integer")
	}

	sellAmount := t.SellFromBuy(order.BuyAmount, xrate, buyTokenPrice, fee)
	a := sellAmount.Mul(minBuyAmount)

	roundedUtility := order.BuyAmount.Sub(FloorDiv(a, maxSellAmount)).Mul(buyTokenPrice)
	utilityError := FloorDiv(Mod(a, maxSellAmount).Mul(buyTokenPrice), maxSellAmount)
	return roundedUtility.Sub(utilityError)
}

// disregardedUtilityTerm scores the portion of an order's utility left
// on the table because its remaining account balance (balanceUpdated)
// can't cover the rest of its limit-price fill. Grounded on
// SmartContractTraits.compute_disregarded_utility_term.
func (t IntegerTraits) disregardedUtilityTerm(order *Order, xrate, buyTokenPrice *RationalValue, fee Fee, balanceUpdated *RationalValue) *RationalValue {
	maxSellAmount := order.OriginalMaxSellAmount
	minBuyAmount := maxSellAmount.Quo(order.MaxXrate)
	feeDenom := NewRationalFromBigInt(fee.Value.Rat().Denom())
	sellTokenPrice := buyTokenPrice.Quo(xrate)

	sellAmount := t.SellFromBuy(order.BuyAmount, xrate, buyTokenPrice, fee)
	remainingAmount := maxSellAmount.Sub(sellAmount)
	leftoverSellAmount := Min(remainingAmount, balanceUpdated)

	limitTermLeft := sellTokenPrice.Mul(maxSellAmount)
	feeDenomMinus1 := feeDenom.Sub(NewRationalFromInt64(1))
	limitTermRight := FloorDiv(minBuyAmount.Mul(buyTokenPrice).Mul(feeDenom), feeDenomMinus1)

	limitTerm := Zero()
	if limitTermLeft.GreaterThan(limitTermRight) {
		limitTerm = limitTermLeft.Sub(limitTermRight)
	}
	return FloorDiv(leftoverSellAmount.Mul(limitTerm), maxSellAmount)
}

// MaxUtilityTerm is umax = disregarded_utility + utility, the
// balance-aware variant required wherever an order's account may hold
// insufficient balance to cover its full limit-price fill.
func (t IntegerTraits) MaxUtilityTerm(order *Order, xrate, buyTokenPrice *RationalValue, fee Fee, balanceUpdated *RationalValue) *RationalValue {
	du := t.disregardedUtilityTerm(order, xrate, buyTokenPrice, fee, balanceUpdated)
	u := t.UtilityTerm(order, xrate, buyTokenPrice, fee)
	return du.Add(u)
}

func (t IntegerTraits) ObjectiveTerm(order *Order, xrate, buyTokenPrice *RationalValue, fee Fee, balanceUpdated *RationalValue) *RationalValue {
	u := t.UtilityTerm(order, xrate, buyTokenPrice, fee)
	umax := t.MaxUtilityTerm(order, xrate, buyTokenPrice, fee, balanceUpdated)
	return objectiveFromTerms(u, umax)
}
