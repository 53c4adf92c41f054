// Package coordinator matches one (b_buy_token, s_buy_token) pair
// against a fee token: it finds the pair's best exchange rate, prices
// b_buy_token in fee-token units by routing the pair's fee-token
// imbalance through orders selling fee for b_buy_token, sweeps the
// number of fee orders allowed to execute to maximize the combined
// objective, and finally rounds the whole three-sided solution to
// integers.
//
// Grounded on original_source's src/token_pair_solver/solver.py --
// solve_token_pair, solve_b_buy_token_and_fee_token,
// compute_nr_f_orders_to_execute and
// solve_token_pair_and_fee_token{,_given_exec_f_orders}.
package coordinator

import (
	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/dexsolver/dexsolver/internal/solver/arborescence"
	"github.com/dexsolver/dexsolver/internal/solver/exec"
	"github.com/dexsolver/dexsolver/internal/solver/feeprice"
	"github.com/dexsolver/dexsolver/internal/solver/objective"
	"github.com/dexsolver/dexsolver/internal/solver/roundbuf"
	"github.com/dexsolver/dexsolver/internal/solver/xrate"
	"github.com/dexsolver/dexsolver/internal/solvererr"
)

// Params bundles the constants the coordinator needs that are otherwise
// carried by a global Config singleton in the original: passing them
// explicitly keeps this package testable without a config dependency.
type Params struct {
	FeeTokenPrice        *domain.RationalValue
	MaxNrExecOrders      int
	MinTradableAmount    *domain.RationalValue
	PriceEstimationError int64
	MaxRoundingVolume    *domain.RationalValue
	// Accounts, if non-nil, is checked for non-negative per-account
	// per-token balances after rounding. Pass nil to skip that check
	// (e.g. in unit tests that don't model accounts).
	Accounts domain.Accounts
	// PresetXrate, if non-nil, pins the b/s exchange rate instead of
	// searching for the objective-maximizing one -- the CLI's --xrate
	// override (token_pair_solver/solver.py's main's `args.xrate`).
	PresetXrate *domain.RationalValue
}

// Solution is a fully matched and integer-rounded three-sided result:
// every touched order's BuyAmount/SellAmount is an exact integer, and
// Prices gives every referenced token's price in fee-token units.
type Solution struct {
	Orders []*domain.Order
	Prices map[domain.Token]*domain.RationalValue
}

// SolveTokenPair matches bOrders (selling for buyToken) against sOrders
// (selling buyToken for sellToken), routing the fee-token imbalance the
// match generates through fOrders (selling fee for buyToken), and
// returns a fully rounded solution. fOrders may be empty only when
// buyToken is itself the fee token.
//
// A non-nil error is always a *solvererr.Error; solvererr.IsDegradable
// tells the caller (the viability loop, bestpair) whether to fall back
// to the trivial solution or propagate the failure.
func SolveTokenPair(buyToken, sellToken domain.Token, bOrdersIn, sOrdersIn, fOrdersIn []*domain.Order, fee domain.Fee, params Params) (*Solution, error) {
	if len(bOrdersIn) == 0 || len(sOrdersIn) == 0 {
		return nil, solvererr.New(solvererr.KindNoMatch, "empty order side")
	}

	// This coordinator always treats sellToken as the non-fee leg; a
	// caller handing us sellToken == fee.Token should swap the pair and
	// its order sets first, mirroring solve_token_pair_and_fee_token's
	// `tuple(reversed(token_pair))`.
	bOrders := append([]*domain.Order{}, bOrdersIn...)
	sOrders := append([]*domain.Order{}, sOrdersIn...)
	presetXrate := params.PresetXrate
	if sellToken == fee.Token {
		buyToken, sellToken = sellToken, buyToken
		bOrders, sOrders = sOrders, bOrders
		if presetXrate != nil {
			presetXrate = domain.NewRationalFromInt64(1).Quo(presetXrate)
		}
	}

	xr, err := solveTokenPair(buyToken, bOrders, sOrders, fee, params.FeeTokenPrice, presetXrate, nil, params.MaxNrExecOrders, params.MinTradableAmount)
	if err != nil {
		return nil, err
	}

	var (
		buyTokenPrice *domain.RationalValue
		fOrders       []*domain.Order
	)

	if buyToken == fee.Token {
		// Only two sides: amounts are already fixed by the resolve above.
		buyTokenPrice = params.FeeTokenPrice
	} else {
		if len(fOrdersIn) == 0 {
			return nil, solvererr.New(solvererr.KindFeeUnreachable, "no orders sell fee for "+string(buyToken))
		}

		fOrders = domain.SortByMaxXrateDesc(fOrdersIn)
		buyTokenPrice, xr, fOrders, err = solveFeeSweep(buyToken, bOrders, sOrders, fOrders, fee, xr, params)
		if err != nil {
			return nil, err
		}
	}

	sellTokenPrice := buyTokenPrice.Quo(xr)
	prices := map[domain.Token]*domain.RationalValue{
		fee.Token: params.FeeTokenPrice,
		buyToken:  buyTokenPrice,
		sellToken: sellTokenPrice,
	}

	orders := make([]*domain.Order, 0, len(bOrders)+len(sOrders)+len(fOrders))
	orders = append(orders, bOrders...)
	orders = append(orders, sOrders...)
	orders = append(orders, fOrders...)

	tokens := domain.SortedTokens(map[domain.Token]struct{}{
		fee.Token: {}, buyToken: {}, sellToken: {},
	})
	if !arborescence.RoundSolution(tokens, orders, fee, prices, params.MinTradableAmount) {
		return nil, solvererr.New(solvererr.KindRoundingFailure, "could not round solution to integers")
	}

	if err := validateSolution(orders, prices, fee, params); err != nil {
		return nil, err
	}

	return &Solution{Orders: orders, Prices: prices}, nil
}

// solveTokenPair finds (or adjusts) the exchange rate between bOrders
// and sOrders and executes them at it. presetXrate, when non-nil, skips
// the search (used to pin the fee<->buyToken resolve to a rate already
// computed by the pricer). buyTokenPrice, when non-nil, is used to
// round the rate so that buyTokenPrice/xrate is an exact integer
// sellTokenPrice; a buyToken equal to the fee token always forces
// buyTokenPrice = feeTokenPrice regardless of what was passed in,
// matching solve_token_pair's own special case. Grounded on
// solve_token_pair.
func solveTokenPair(buyToken domain.Token, bOrders, sOrders []*domain.Order, fee domain.Fee, feeTokenPrice, presetXrate, buyTokenPrice *domain.RationalValue, maxNrExecOrders int, minTradable *domain.RationalValue) (*domain.RationalValue, error) {
	if buyToken == fee.Token {
		buyTokenPrice = feeTokenPrice
	}

	xr := presetXrate
	if xr == nil {
		solved, _, ok := xrate.Solve(bOrders, sOrders, fee, feeTokenPrice, maxNrExecOrders, minTradable)
		if !ok {
			return nil, solvererr.New(solvererr.KindNoMatch, "no matching orders in pair")
		}
		xr = solved
	}

	if buyTokenPrice != nil {
		sellTokenPrice := domain.Round(buyTokenPrice.Quo(xr))
		if sellTokenPrice.IsZero() {
			return nil, solvererr.New(solvererr.KindNoMatch, "adjusted sell token price rounds to zero")
		}
		xr = buyTokenPrice.Quo(sellTokenPrice)
	}

	exec.Compute(xr, bOrders, sOrders, fee, maxNrExecOrders, minTradable)
	return xr, nil
}

// computeNrFOrdersToExecute bounds how many of the (already
// rate-ranked) fOrders may execute while keeping total touched orders
// within maxNrExecOrders, given that bOrders/sOrders already have their
// final touched counts fixed by the pair-only resolve. Grounded on
// compute_nr_f_orders_to_execute.
func computeNrFOrdersToExecute(bOrders, sOrders, fOrders []*domain.Order, maxNrExecOrders int) (minK, maxK int) {
	touchedB := countTouched(bOrders)
	touchedS := countTouched(sOrders)

	minMaxK := maxNrExecOrders - touchedB - touchedS + 1
	maxK = len(fOrders)
	if ceiling := maxNrExecOrders - 2; ceiling < maxK {
		maxK = ceiling
	}
	minK = minMaxK
	if maxK < minK {
		minK = maxK
	}
	return minK, maxK
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

// amountSnapshot records an order's filled amounts so a sweep iteration
// can be rolled back without a full deep copy: RationalValue is
// immutable once assigned to a field, so recording the pointers the
// order held at a point in time is sufficient to restore it later.
type amountSnapshot struct {
	buy, sell *domain.RationalValue
}

func snapshotAmounts(orders []*domain.Order) []amountSnapshot {
	out := make([]amountSnapshot, len(orders))
	for i, o := range orders {
		out[i] = amountSnapshot{o.BuyAmount, o.SellAmount}
	}
	return out
}

func restoreAmounts(orders []*domain.Order, snap []amountSnapshot) {
	for i, o := range orders {
		o.BuyAmount, o.SellAmount = snap[i].buy, snap[i].sell
	}
}

// solveFeeSweep finds the number of fOrders (already sorted best-rate
// first) that, executed against buyToken's fee-token imbalance, yields
// the highest combined rational objective, and leaves bOrders/sOrders/
// fOrders holding that best solution's amounts. Grounded on
// solve_token_pair_and_fee_token's `for nr_exec_f_orders` sweep and
// solve_token_pair_and_fee_token_given_exec_f_orders.
func solveFeeSweep(buyToken domain.Token, bOrders, sOrders, fOrders []*domain.Order, fee domain.Fee, xr *domain.RationalValue, params Params) (bestBuyTokenPrice, bestXrate *domain.RationalValue, fOrdersOut []*domain.Order, err error) {
	imbalance := objective.BuyTokenImbalance(bOrders, sOrders, xr, domain.NewRationalFromInt64(1), fee, domain.RationalTraits{})
	minK, maxK := computeNrFOrdersToExecute(bOrders, sOrders, fOrders, params.MaxNrExecOrders)

	var (
		bestObjective *domain.RationalValue
		bestB, bestS  []amountSnapshot
		bestFExec     []amountSnapshot
		bestK         int
	)
	lastErr := solvererr.New(solvererr.KindFeeUnreachable, "no feasible fee-order count covers the imbalance")

	for k := minK; k <= maxK; k++ {
		execF := fOrders[:k]

		buyTokenPrice, ok := feeprice.ComputeTokenPriceToCoverImbalance(buyToken, fee, imbalance, execF, params.FeeTokenPrice, params.MaxNrExecOrders, params.MinTradableAmount)
		if !ok {
			continue
		}

		maxNrBSExecOrders := params.MaxNrExecOrders - k

		buf := roundbuf.Open(append(append([]*domain.Order{}, bOrders...), sOrders...), params.PriceEstimationError, params.MaxRoundingVolume)
		adjustedXrate, solveErr := solveTokenPair(buyToken, bOrders, sOrders, fee, params.FeeTokenPrice, xr, buyTokenPrice, maxNrBSExecOrders, params.MinTradableAmount)
		buf.Close()
		if solveErr != nil {
			lastErr = solveErr
			continue
		}

		obj := objective.Compute(bOrders, sOrders, execF, adjustedXrate, buyTokenPrice, params.FeeTokenPrice, fee, domain.RationalTraits{}, nil)

		if bestObjective == nil || obj.Cmp(bestObjective) >= 0 {
			bestObjective = obj
			bestB = snapshotAmounts(bOrders)
			bestS = snapshotAmounts(sOrders)
			bestFExec = snapshotAmounts(execF)
			bestK = k
			bestBuyTokenPrice = buyTokenPrice
			bestXrate = adjustedXrate
		}
	}

	if bestObjective == nil {
		return nil, nil, nil, lastErr
	}

	restoreAmounts(bOrders, bestB)
	restoreAmounts(sOrders, bestS)
	restoreAmounts(fOrders[:bestK], bestFExec)
	for _, o := range fOrders[bestK:] {
		o.ResetAmounts()
	}

	return bestBuyTokenPrice, bestXrate, fOrders, nil
}

// validateSolution re-checks the per-order constraints and per-token,
// per-account balance invariants a correct solve must satisfy, mirroring
// validate_order_constraints and validate's balance checks (the
// economic-viability average-fee check lives in the viability package,
// which runs this same sweep repeatedly as it drops orders).
func validateSolution(orders []*domain.Order, prices map[domain.Token]*domain.RationalValue, fee domain.Fee, params Params) error {
	for _, p := range prices {
		if !p.IsInteger() {
			return solvererr.New(solvererr.KindConstraintViolation, "non-integer price in solution")
		}
	}

	touched := countTouched(orders)
	if touched == 0 {
		return nil
	}
	if touched > params.MaxNrExecOrders {
		return solvererr.New(solvererr.KindConstraintViolation, "touched orders exceed maximum")
	}

	balances := make(map[domain.Token]*domain.RationalValue, len(prices))
	for t := range prices {
		balances[t] = domain.Zero()
	}

	accountBalances := domain.Accounts{}
	if params.Accounts != nil {
		accountBalances = params.Accounts.Clone()
	}

	for _, o := range orders {
		if o.BuyAmount.Sign() > 0 && o.SellAmount.Quo(o.BuyAmount).Cmp(o.MaxXrate) > 0 {
			return solvererr.New(solvererr.KindConstraintViolation, "order exceeds its limit exchange rate")
		}
		if o.SellAmount.Cmp(o.MaxSellAmount) > 0 {
			return solvererr.New(solvererr.KindConstraintViolation, "order exceeds its max sell amount")
		}
		balances[o.BuyToken] = balances[o.BuyToken].Sub(o.BuyAmount)
		balances[o.SellToken] = balances[o.SellToken].Add(o.SellAmount)
		if params.Accounts != nil {
			accountBalances.ApplyOrder(o)
		}
	}

	for token, balance := range balances {
		if token == fee.Token {
			if balance.Sign() < 0 {
				return solvererr.New(solvererr.KindConstraintViolation, "fee token balance is negative")
			}
			continue
		}
		if !balance.IsZero() {
			return solvererr.New(solvererr.KindConstraintViolation, "non-fee token balance does not net to zero")
		}
	}

	if params.Accounts != nil {
		for acct, byToken := range accountBalances {
			for token, bal := range byToken {
				if bal.Sign() < 0 {
					return solvererr.Wrap(solvererr.KindConstraintViolation, "account balance went negative", solvererr.New(solvererr.KindConstraintViolation, string(acct)+"/"+string(token)))
				}
			}
		}
	}

	return nil
}
