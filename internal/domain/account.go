package domain

// Accounts maps an account to its per-token balances. Sell amounts
// across orders of one account for one token must not exceed the
// account's balance for that token (spec §3).
type Accounts map[AccountID]map[Token]*RationalValue

// Balance returns the balance of token for account, or zero if absent.
func (a Accounts) Balance(account AccountID, token Token) *RationalValue {
	byToken, ok := a[account]
	if !ok {
		return Zero()
	}
	v, ok := byToken[token]
	if !ok {
		return Zero()
	}
	return v
}

// Clone deep-copies the account balance map, used by the coordinator to
// snapshot state before speculative scoring passes (spec §9's "rollback
// via deep copies", rendered here as explicit save/restore rather than
// whole-state deep copy).
func (a Accounts) Clone() Accounts {
	out := make(Accounts, len(a))
	for acct, byToken := range a {
		cp := make(map[Token]*RationalValue, len(byToken))
		for tok, v := range byToken {
			cp[tok] = v.Clone()
		}
		out[acct] = cp
	}
	return out
}

// ApplyOrder updates accounts in place to reflect order's executed
// amounts: the account gains BuyAmount of BuyToken and loses SellAmount
// of SellToken.
func (a Accounts) ApplyOrder(o *Order) {
	if o.AccountID == "" {
		return
	}
	byToken, ok := a[o.AccountID]
	if !ok {
		byToken = make(map[Token]*RationalValue)
		a[o.AccountID] = byToken
	}
	buyBal, ok := byToken[o.BuyToken]
	if !ok {
		buyBal = Zero()
	}
	byToken[o.BuyToken] = buyBal.Add(o.BuyAmount)

	sellBal, ok := byToken[o.SellToken]
	if !ok {
		sellBal = Zero()
	}
	byToken[o.SellToken] = sellBal.Sub(o.SellAmount)
}

// RestrictSellAmountsByBalance caps each order's MaxSellAmount to the
// remaining balance of its account for the sell token, processing orders
// in best-price-first order so the best orders get first claim on a
// constrained balance. Orders whose capped sell amount is zero are
// dropped. Grounded on original_source's
// restrict_order_sell_amounts_by_balances (src/core/orderbook.py).
func RestrictSellAmountsByBalance(orders []*Order, accounts Accounts) []*Order {
	type key struct {
		account AccountID
		sell    Token
		buy     Token
	}
	remaining := make(map[key]*RationalValue)

	sorted := make([]*Order, len(orders))
	copy(sorted, orders)
	sortOrdersByMaxXrateDesc(sorted)

	capped := make([]*Order, 0, len(orders))
	for _, o := range sorted {
		k := key{o.AccountID, o.SellToken, o.BuyToken}
		rem, ok := remaining[k]
		if !ok {
			rem = accounts.Balance(o.AccountID, o.SellToken)
			remaining[k] = rem
		}

		newSell := Min(o.MaxSellAmount, rem)
		if newSell.IsZero() {
			continue
		}
		remaining[k] = rem.Sub(newSell)
		o.MaxSellAmount = newSell
		capped = append(capped, o)
	}
	return capped
}
