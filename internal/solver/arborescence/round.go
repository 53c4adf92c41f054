package arborescence

import (
	"sort"

	"github.com/dexsolver/dexsolver/internal/domain"
)

// ComputeTokenBalances sums, per token, -buy_amount (from every order
// buying it) + sell_amount (from every order selling it): the residual
// that must be driven to zero for every non-fee token once amounts are
// integers. Grounded on compute_token_balances.
func ComputeTokenBalances(tokens []domain.Token, orders []*domain.Order) map[domain.Token]*domain.RationalValue {
	balances := make(map[domain.Token]*domain.RationalValue, len(tokens))
	for _, t := range tokens {
		balances[t] = domain.Zero()
	}
	for _, o := range orders {
		balances[o.BuyToken] = balances[o.BuyToken].Sub(o.BuyAmount)
		balances[o.SellToken] = balances[o.SellToken].Add(o.SellAmount)
	}
	return balances
}

// sellFromBuy computes an order's integer sell amount from its current
// buy amount at the uniform clearing prices, grounded on
// Order.get_sell_amount_from_buy_amount(arith_traits=IntegerTraits).
func sellFromBuy(o *domain.Order, prices map[domain.Token]*domain.RationalValue, fee domain.Fee) *domain.RationalValue {
	buyPrice := prices[o.BuyToken]
	sellPrice := prices[o.SellToken]
	xrate := buyPrice.Quo(sellPrice)
	return domain.IntegerTraits{}.SellFromBuy(o.BuyAmount, xrate, buyPrice, fee)
}

// RoundSolution floors every order's buy amount to an integer, derives
// its sell amount from the uniform clearing prices, then iteratively
// rewrites order amounts along a fee-token-rooted spanning arborescence
// of the touched orders so that every non-fee token balances exactly.
// Returns false if some token's balance cannot be driven to zero
// (RoundingFailure upstream). Grounded on round_solution.
func RoundSolution(tokens []domain.Token, orders []*domain.Order, fee domain.Fee, prices map[domain.Token]*domain.RationalValue, minTradable *domain.RationalValue) bool {
	for _, o := range orders {
		o.BuyAmount = domain.NewRationalFromBigInt(o.BuyAmount.FloorBigInt())
		o.SellAmount = sellFromBuy(o, prices, fee)
	}

	balances := ComputeTokenBalances(tokens, orders)

	var touched []*domain.Order
	for _, o := range orders {
		if o.SellAmount.Sign() > 0 {
			touched = append(touched, o)
		}
	}
	tree := Compute(touched, fee.Token)
	if tree == nil {
		return len(touched) == 0
	}

	for len(tree) > 0 {
		leafToken := findLeaf(tree)
		parentToken := tree[leafToken]

		ordered := make([]*domain.Order, len(orders))
		copy(ordered, orders)
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].BuyAmount.GreaterThan(ordered[j].BuyAmount) })

		for _, o := range ordered {
			if o.BuyToken != leafToken || o.SellToken != parentToken || o.BuyAmount.IsZero() {
				continue
			}

			delta := domain.Min(o.BuyAmount.Sub(minTradable), balances[leafToken].Neg())
			if o.BuyAmount.Sub(delta).Cmp(minTradable) < 0 {
				continue
			}

			candidate := o.WithBuyAmount(o.BuyAmount.Sub(delta))
			if sellFromBuy(candidate, prices, fee).Cmp(o.MaxSellAmount) > 0 {
				continue
			}

			balances[leafToken] = balances[leafToken].Add(delta)
			o.BuyAmount = o.BuyAmount.Sub(delta)
			o.SellAmount = sellFromBuy(o, prices, fee)

			if balances[leafToken].IsZero() {
				break
			}
		}

		balances = ComputeTokenBalances(tokens, orders)
		if !balances[leafToken].IsZero() {
			return false
		}
		delete(tree, leafToken)
	}

	return true
}

// findLeaf returns a token that is a key of tree but never a value,
// i.e. a node with no children left in the (shrinking) arborescence.
func findLeaf(tree map[domain.Token]domain.Token) domain.Token {
	isParent := make(map[domain.Token]bool, len(tree))
	for _, parent := range tree {
		isParent[parent] = true
	}
	keys := make([]domain.Token, 0, len(tree))
	for child := range tree {
		keys = append(keys, child)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, child := range keys {
		if !isParent[child] {
			return child
		}
	}
	return keys[0]
}
