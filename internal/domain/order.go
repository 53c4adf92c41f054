package domain

import "github.com/google/uuid"

// AccountID identifies the account that placed an order. The zero value
// ("") means "no account" (used for the synthetic market orders created
// by the fee-imbalance pricer, see solver/feeprice).
type AccountID string

// Order is an offer to sell up to MaxSellAmount units of SellToken for
// BuyToken, at no worse than MaxXrate = SellToken/BuyToken.
//
// Invariants held between engine calls (spec §3):
//   - 0 <= BuyAmount
//   - 0 <= SellAmount <= MaxSellAmount
//   - BuyAmount == 0 || SellAmount/BuyAmount <= MaxXrate
//   - BuyAmount == 0 || (BuyAmount and SellAmount both >= the effective
//     minimum tradable amount)
type Order struct {
	Index      int
	AccountID  AccountID
	BuyToken   Token
	SellToken  Token

	// SyntheticID decorates account-less synthetic orders (Index == -1)
	// with a stable identifier for log correlation across the several
	// xrate.Solve probes the fee-imbalance pricer runs; tie-break
	// determinism stays keyed on Index/load order, never on this field.
	SyntheticID string

	// MaxSellAmount may be reduced by balance capping and the rounding
	// buffer; ForceSetMaxSellAmount permits restoring it.
	MaxSellAmount *RationalValue

	// OriginalMaxSellAmount is the sell limit as submitted, before any
	// balance-capping or rounding-buffer reduction. The integer
	// arithmetic traits score an order's disregarded utility against
	// this value, not the (possibly temporarily reduced) MaxSellAmount,
	// matching original_source's order.original_max_sell_amount.
	OriginalMaxSellAmount *RationalValue

	// MaxXrate is derived as SellAmount/BuyAmount at load time and is an
	// invariant once set: it never changes after NewOrder.
	MaxXrate *RationalValue

	// BuyAmount and SellAmount are rational during solving and are
	// expected to hold exact integer values once the rounding engine has
	// run (callers enforce this, RationalValue does not).
	BuyAmount  *RationalValue
	SellAmount *RationalValue

	// Utility and UtilityDisreg are populated by metrics.ComputeSolution
	// after a solve, for the output objVals block.
	Utility       *RationalValue
	UtilityDisreg *RationalValue
}

// NewOrder constructs an order with MaxXrate = maxSellAmount / buyAmountFloor,
// where buyAmountFloor is max(effectiveMinTradable, buyAmount) exactly as
// src/core/order.py's Order.load_from_dict computes it: the limit rate is
// derived from the requested buy amount, floored at the minimum tradable
// amount so a dust buy request cannot imply an unboundedly generous rate.
func NewOrder(index int, accountID AccountID, buyToken, sellToken Token, maxSellAmount, requestedBuyAmount, effectiveMinTradable *RationalValue) *Order {
	buyFloor := Max(effectiveMinTradable, requestedBuyAmount)
	return &Order{
		Index:                 index,
		AccountID:             accountID,
		BuyToken:              buyToken,
		SellToken:             sellToken,
		MaxSellAmount:         maxSellAmount.Clone(),
		OriginalMaxSellAmount: maxSellAmount.Clone(),
		MaxXrate:              maxSellAmount.Quo(buyFloor),
		BuyAmount:             Zero(),
		SellAmount:            Zero(),
		Utility:               Zero(),
		UtilityDisreg:         Zero(),
	}
}

// NewSyntheticOrder builds an order with an explicit MaxXrate, bypassing
// the buy-amount-derived construction above. Used by the fee-imbalance
// pricer (§4.4) to create its "market" order, and by tests.
func NewSyntheticOrder(accountID AccountID, buyToken, sellToken Token, maxSellAmount, maxXrate *RationalValue) *Order {
	return &Order{
		Index:                 -1,
		SyntheticID:           uuid.New().String(),
		AccountID:             accountID,
		BuyToken:              buyToken,
		SellToken:             sellToken,
		MaxSellAmount:         maxSellAmount.Clone(),
		OriginalMaxSellAmount: maxSellAmount.Clone(),
		MaxXrate:              maxXrate.Clone(),
		BuyAmount:             Zero(),
		SellAmount:            Zero(),
		Utility:               Zero(),
		UtilityDisreg:         Zero(),
	}
}

// SetMaxSellAmount lowers MaxSellAmount (balance-capping, rounding
// buffer). It panics if asked to raise it -- use ForceSetMaxSellAmount
// for that, matching order.py's setter/force_set split.
func (o *Order) SetMaxSellAmount(v *RationalValue) {
	if v.GreaterThan(o.MaxSellAmount) {
		panic("domain: SetMaxSellAmount cannot increase max_sell_amount; use ForceSetMaxSellAmount")
	}
	o.MaxSellAmount = v
}

// ForceSetMaxSellAmount restores (or otherwise sets) MaxSellAmount
// without the monotonic-decrease check, used by the rounding buffer to
// undo its own temporary reduction.
func (o *Order) ForceSetMaxSellAmount(v *RationalValue) {
	o.MaxSellAmount = v
}

// ResetAmounts zeroes BuyAmount/SellAmount, the first step of the
// execution engine (spec §4.2 step 1).
func (o *Order) ResetAmounts() {
	o.BuyAmount = Zero()
	o.SellAmount = Zero()
}

// WithBuyAmount returns a shallow copy of o with BuyAmount replaced,
// mirroring order.py's with_buy_amount (used by the arithmetic traits to
// probe a hypothetical fully-filled order without mutating o).
func (o *Order) WithBuyAmount(buyAmount *RationalValue) *Order {
	cp := *o
	cp.BuyAmount = buyAmount
	return &cp
}

// IsTouched reports whether the order has a non-zero executed amount.
func (o *Order) IsTouched() bool { return o.BuyAmount.Sign() > 0 }

// Tokens returns the pair of tokens this order references.
func (o *Order) Tokens() (buy, sell Token) { return o.BuyToken, o.SellToken }
