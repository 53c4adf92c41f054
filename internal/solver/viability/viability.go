// Package viability wraps the coordinator with the outer economic-
// viability loop: a solution that pays too little fee per order (on
// average) is not admissible, so this package repeatedly drops the
// order earning the smallest fee and re-solves until either the
// average fee clears the configured minimum, the trivial (empty)
// solution is all that remains, or an early exit shows no surviving
// subset could ever clear it.
//
// Grounded on original_source's
// dex_open_solver/token_pair_solver/solver.py's
// solve_token_pair_and_fee_token_economic_viable, and
// src/core/orderbook.py's is_economic_viable /
// compute_approx_economic_viable_subset / compute_total_fee.
package viability

import (
	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/dexsolver/dexsolver/internal/solver/coordinator"
	"github.com/dexsolver/dexsolver/internal/solvererr"
)

// Params bundles the coordinator's own parameters with the economic
// threshold this package enforces on top of them.
type Params struct {
	Coordinator coordinator.Params
	// MinAverageOrderFee is the minimum fee-token amount a solution must
	// earn per touched order, on average, to be admissible. Nil or zero
	// disables the check (MIN_AVERAGE_ORDER_FEE's documented default).
	MinAverageOrderFee *domain.RationalValue
}

// trivialSolution returns the canonical empty solution -- no orders
// touched, no prices -- returned whenever no admissible match exists.
func trivialSolution() *coordinator.Solution {
	return &coordinator.Solution{}
}

// Solve finds the best execution of bOrders against sOrders (routed
// through fOrders for fee) that is both optimal and economically
// viable, degrading one order at a time until it is. A nil error with
// zero touched orders in the returned Solution is the trivial solution,
// not a failure.
func Solve(buyToken, sellToken domain.Token, bOrdersIn, sOrdersIn, fOrders []*domain.Order, fee domain.Fee, params Params) (*coordinator.Solution, error) {
	bOrders := append([]*domain.Order{}, bOrdersIn...)
	sOrders := append([]*domain.Order{}, sOrdersIn...)

	for len(bOrders) > 0 && len(sOrders) > 0 {
		sol, err := coordinator.SolveTokenPair(buyToken, sellToken, bOrders, sOrders, fOrders, fee, params.Coordinator)
		if err != nil {
			if solvererr.IsDegradable(err) {
				return trivialSolution(), nil
			}
			return nil, err
		}

		if isTrivial(sol) || isEconomicViable(sol, fee, params.MinAverageOrderFee) {
			return sol, nil
		}

		if !canBecomeViable(sol, fee, params.MinAverageOrderFee) {
			return trivialSolution(), nil
		}

		bOrders, sOrders = dropLeastPayingOrder(bOrders, sOrders, sol, buyToken, sellToken)
	}

	return trivialSolution(), nil
}

func isTrivial(sol *coordinator.Solution) bool {
	return countTouched(sol.Orders) == 0
}

func countTouched(orders []*domain.Order) int {
	n := 0
	for _, o := range orders {
		if o.IsTouched() {
			n++
		}
	}
	return n
}

// computeTotalFee sums fee-token sold (converted from buy amounts via
// the integer traits) across every order selling fee, minus fee-token
// bought directly. Grounded on compute_total_fee.
func computeTotalFee(orders []*domain.Order, prices map[domain.Token]*domain.RationalValue, fee domain.Fee) *domain.RationalValue {
	soldFee := domain.Zero()
	boughtFee := domain.Zero()
	traits := domain.IntegerTraits{}

	for _, o := range orders {
		if o.SellToken == fee.Token {
			buyPrice := prices[o.BuyToken]
			sellPrice := prices[o.SellToken]
			xr := buyPrice.Quo(sellPrice)
			soldFee = soldFee.Add(traits.SellFromBuy(o.BuyAmount, xr, buyPrice, fee))
		}
		if o.BuyToken == fee.Token {
			boughtFee = boughtFee.Add(o.BuyAmount)
		}
	}

	return soldFee.Sub(boughtFee)
}

func computeAverageOrderFee(orders []*domain.Order, prices map[domain.Token]*domain.RationalValue, fee domain.Fee) *domain.RationalValue {
	touched := countTouched(orders)
	if touched == 0 {
		return domain.Zero()
	}
	total := computeTotalFee(orders, prices, fee)
	return domain.FloorDiv(total, domain.NewRationalFromInt64(int64(touched)))
}

// isEconomicViable reports whether sol's average fee per touched order
// meets minAverageOrderFee. A nil or zero threshold is always satisfied.
// Grounded on is_economic_viable.
func isEconomicViable(sol *coordinator.Solution, fee domain.Fee, minAverageOrderFee *domain.RationalValue) bool {
	if minAverageOrderFee == nil || minAverageOrderFee.IsZero() {
		return true
	}
	return computeAverageOrderFee(sol.Orders, sol.Prices, fee).Cmp(minAverageOrderFee) >= 0
}

// canBecomeViable reports whether there exists a non-empty, single
// buy-token-pair subset of sol's touched orders (by decreasing buy-token
// volume) whose average fee would clear minAverageOrderFee -- an
// approximation, since prices would shift under a real re-solve.
// Grounded on compute_approx_economic_viable_subset.
func canBecomeViable(sol *coordinator.Solution, fee domain.Fee, minAverageOrderFee *domain.RationalValue) bool {
	if minAverageOrderFee == nil || minAverageOrderFee.IsZero() {
		return true
	}

	var byVolume []*domain.Order
	for _, o := range sol.Orders {
		if o.IsTouched() {
			byVolume = append(byVolume, o)
		}
	}
	if len(byVolume) == 0 {
		return false
	}

	sortByDecreasingVolume(byVolume, sol.Prices)

	// Grow the prefix while it clears the threshold, exactly mirroring
	// compute_approx_economic_viable_subset's while loop (including its
	// documented approximateness: the final prefix tried, even if it is
	// the one that just failed, is what gets returned).
	i := 1
	for i <= len(byVolume) && computeAverageOrderFee(byVolume[:i], sol.Prices, fee).Cmp(minAverageOrderFee) >= 0 {
		i++
	}
	subset := byVolume[:min(i, len(byVolume))]
	if len(subset) == 0 {
		return false
	}

	buyTokens := map[domain.Token]struct{}{}
	for _, o := range subset {
		buyTokens[o.BuyToken] = struct{}{}
	}
	// If every order in the subset buys the same token, there is no
	// opposing side left to match against: it collapses to trivial.
	return len(buyTokens) > 1
}

func sortByDecreasingVolume(orders []*domain.Order, prices map[domain.Token]*domain.RationalValue) {
	volume := func(o *domain.Order) *domain.RationalValue {
		return o.BuyAmount.Mul(prices[o.BuyToken])
	}
	for i := 1; i < len(orders); i++ {
		for j := i; j > 0 && volume(orders[j]).Cmp(volume(orders[j-1])) > 0; j-- {
			orders[j], orders[j-1] = orders[j-1], orders[j]
		}
	}
}

// dropLeastPayingOrder removes, from whichever side earns less of its
// buy-token volume, the order with the smallest buy amount -- the
// order.py-free analogue of "remove the order paying the least fee".
// Grounded on the `b_order_with_min_buy_amount` / `s_order_with_min_buy_amount`
// comparison in solve_token_pair_and_fee_token_economic_viable.
func dropLeastPayingOrder(bOrders, sOrders []*domain.Order, sol *coordinator.Solution, buyToken, sellToken domain.Token) ([]*domain.Order, []*domain.Order) {
	bMin := minByBuyAmount(bOrders)
	sMin := minByBuyAmount(sOrders)

	if bMin == nil {
		return bOrders, removeOrder(sOrders, sMin)
	}
	if sMin == nil {
		return removeOrder(bOrders, bMin), sOrders
	}

	bVolume := bMin.BuyAmount.Mul(sol.Prices[buyToken])
	sVolume := sMin.BuyAmount.Mul(sol.Prices[sellToken])

	if bVolume.Cmp(sVolume) < 0 {
		return removeOrder(bOrders, bMin), sOrders
	}
	return bOrders, removeOrder(sOrders, sMin)
}

func minByBuyAmount(orders []*domain.Order) *domain.Order {
	var min *domain.Order
	for _, o := range orders {
		if !o.IsTouched() {
			continue
		}
		if min == nil || o.BuyAmount.Cmp(min.BuyAmount) < 0 {
			min = o
		}
	}
	return min
}

func removeOrder(orders []*domain.Order, target *domain.Order) []*domain.Order {
	out := make([]*domain.Order, 0, len(orders)-1)
	for _, o := range orders {
		if o != target {
			out = append(out, o)
		}
	}
	return out
}
