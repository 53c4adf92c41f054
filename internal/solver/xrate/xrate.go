// Package xrate finds the exchange rate between two tokens that
// maximizes the rational objective of matching their order books. The
// objective is piecewise-rational with breakpoints at orders' limit
// rates; within each breakpoint interval it enumerates up to three
// closed-form stationary points (plus the two limit-rate roots) and
// scores each by actually running the execution engine.
//
// Grounded on original_source's src/token_pair_solver/xrate.py
// (xrate_interval_iterator, SymbolicSolver). The interval sweep here
// enumerates every interval directly rather than sweeping via a
// deque-based single pass; for the order-book sizes this solver
// targets (bounded by MAX_NR_EXEC_ORDERS) this is equivalent in the
// result it finds and simpler to express without losing the O(n log n)
// character of the original (sorting dominates; each interval's work
// is O(1) amortized).
package xrate

import (
	"math"
	"math/big"
	"sort"

	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/dexsolver/dexsolver/internal/solver/exec"
	"github.com/dexsolver/dexsolver/internal/solver/objective"
	lru "github.com/hashicorp/golang-lru/v2"
)

// objectiveCacheSize bounds the per-Solve memoization cache of F(xrate)
// evaluations: candidate roots can legitimately coincide (two orders
// sharing a limit rate, or a stationary root landing exactly on a
// frontier root), and re-running the execution engine for a xrate
// already scored in this Solve call is wasted work.
const objectiveCacheSize = 256

// maxApproxDenominator bounds the denominator of the rational
// approximation used for Root 4's irrational square root, per the
// "convergent with denominator bounded by a fixed precision"
// requirement: large enough that the approximation error is
// economically irrelevant, small enough that big.Rat arithmetic
// downstream stays cheap.
const maxApproxDenominator = 1_000_000_000_000

type orderSide int

const (
	sideB orderSide = iota
	sideS
)

type taggedOrder struct {
	side  orderSide
	xrate *domain.RationalValue
	order *domain.Order
}

// interval is one maximal xrate range over which the set of
// potentially-executable orders on each side is fixed.
type interval struct {
	lb, ub      *domain.RationalValue
	bExecOrders []*domain.Order
	sExecOrders []*domain.Order
}

func yb(o *domain.Order) *domain.RationalValue { return o.MaxSellAmount }
func pi(o *domain.Order) *domain.RationalValue { return o.MaxXrate }

func sumYB(orders []*domain.Order) *domain.RationalValue {
	total := domain.Zero()
	for _, o := range orders {
		total = total.Add(yb(o))
	}
	return total
}

// intervals builds the descending-xrate breakpoint list and, for each
// non-trivially-empty gap between consecutive breakpoints, the set of
// orders executable within it. Grounded on xrate_interval_iterator.
func intervals(bOrders, sOrders []*domain.Order, fee domain.Fee) []interval {
	f := domain.NewRationalFromInt64(1).Sub(fee.Value)

	all := make([]taggedOrder, 0, len(bOrders)+len(sOrders))
	for _, o := range bOrders {
		all = append(all, taggedOrder{sideB, o.MaxXrate.Mul(f), o})
	}
	for _, o := range sOrders {
		inv := domain.NewRationalFromInt64(1).Quo(o.MaxXrate.Mul(f))
		all = append(all, taggedOrder{sideS, inv, o})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].xrate.Cmp(all[j].xrate) > 0 })

	var bExec []*domain.Order
	sExec := make([]*domain.Order, 0, len(sOrders))
	for _, to := range all {
		if to.side == sideS {
			sExec = append(sExec, to.order)
		}
	}

	bExecSellAmount := domain.Zero()
	sExecSellAmount := sumYB(sOrders)

	var out []interval
	for i := 0; i < len(all)-1; i++ {
		cur := all[i]
		nextXrate := all[i+1].xrate

		if cur.side == sideB {
			bExec = append([]*domain.Order{cur.order}, bExec...)
			bExecSellAmount = bExecSellAmount.Add(yb(cur.order))
		} else {
			sExec = sExec[1:]
			sExecSellAmount = sExecSellAmount.Sub(yb(cur.order))
		}

		if len(bExec) == 0 {
			continue
		}
		if len(sExec) == 0 {
			break
		}

		xrateLB := nextXrate
		xrateUB := cur.xrate

		bExecSellAmountUB := bExecSellAmount
		sExecSellAmountUB := sExecSellAmount
		bExecSellAmountLB := bExecSellAmount.Sub(yb(bExec[0]))
		sExecSellAmountLB := sExecSellAmount.Sub(yb(sExec[0]))

		if sExecSellAmountUB.Sign() > 0 {
			candidate := bExecSellAmountLB.Quo(sExecSellAmountUB.Mul(f))
			xrateLB = domain.Max(xrateLB, candidate)
		}
		if sExecSellAmountLB.Sign() > 0 {
			candidate := bExecSellAmountUB.Quo(sExecSellAmountLB.Mul(f))
			xrateUB = domain.Min(xrateUB, candidate)
		}

		if xrateLB.GreaterThan(xrateUB) {
			continue
		}

		bCopy := make([]*domain.Order, len(bExec))
		copy(bCopy, bExec)
		sCopy := make([]*domain.Order, len(sExec))
		copy(sCopy, sExec)
		out = append(out, interval{lb: xrateLB, ub: xrateUB, bExecOrders: bCopy, sExecOrders: sCopy})
	}
	return out
}

// root1 is xrate == b_pi*(1-fee) (the b-frontier's limit rate).
func root1(bOrder *domain.Order, fee domain.Fee) *domain.RationalValue {
	f := domain.NewRationalFromInt64(1).Sub(fee.Value)
	return pi(bOrder).Mul(f)
}

// root2 is xrate == 1/(s_pi*(1-fee)) (the s-frontier's limit rate).
func root2(sOrder *domain.Order, fee domain.Fee) *domain.RationalValue {
	f := domain.NewRationalFromInt64(1).Sub(fee.Value)
	return domain.NewRationalFromInt64(1).Quo(pi(sOrder).Mul(f))
}

// root3 is the closed-form stationary point where the b-frontier order
// fully fills and the s-frontier order partially fills.
func root3(bExec, sExec []*domain.Order, fee domain.Fee, feeTokenPrice *domain.RationalValue) *domain.RationalValue {
	sPi := pi(sExec[0])
	sYB := yb(sExec[0])
	bYBSum := sumYB(bExec)

	t := domain.Zero()
	for _, s := range sExec[1:] {
		term := yb(s).Mul(domain.NewRationalFromInt64(2).Sub(sPi.Quo(pi(s))))
		t = t.Add(term)
	}

	f := domain.NewRationalFromInt64(1).Sub(fee.Value)
	two := domain.NewRationalFromInt64(2)
	oneMinusFSq := domain.NewRationalFromInt64(1).Sub(f.Mul(f))
	twoFFp := two.Mul(f).Mul(feeTokenPrice)
	c := two.Add(f).Add(oneMinusFSq.Quo(twoFFp))

	denom := c.Mul(sPi).Mul(bYBSum).Add(sYB).Add(t)
	numer := domain.NewRationalFromInt64(4).Mul(bYBSum)
	return numer.Quo(f.Mul(denom))
}

// root4 is the irrational stationary point where the b-frontier order
// partially fills and the s-frontier order fully fills, approximated
// by a bounded-denominator rational via Newton-Raphson square root,
// grounded on the teacher's XRPLNumber.root2 iteration.
func root4(bExec, sExec []*domain.Order, fee domain.Fee) *domain.RationalValue {
	bPi := pi(bExec[0])
	bYBSum := sumYB(bExec)
	sYBSum := sumYB(sExec)

	f := domain.NewRationalFromInt64(1).Sub(fee.Value)

	a := domain.Zero()
	for _, s := range sExec {
		a = a.Add(yb(s).Quo(pi(s)))
	}

	t := bPi.Mul(f.Mul(bYBSum).Add(a)).Quo(domain.NewRationalFromInt64(2).Mul(f).Mul(sYBSum))
	if t.Sign() < 0 {
		return nil
	}
	return approxSqrt(t)
}

// root5 is the stationary point where every frontier order in the
// interval fully fills.
func root5(bExec, sExec []*domain.Order, fee domain.Fee) *domain.RationalValue {
	bYBSum := sumYB(bExec)
	sYBSum := sumYB(sExec)
	f := domain.NewRationalFromInt64(1).Sub(fee.Value)
	return bYBSum.Quo(sYBSum.Mul(f))
}

// approxSqrt returns a rational approximation to sqrt(t), found via a
// float64 seed refined by Newton-Raphson in exact rational arithmetic,
// rounding the denominator back to maxApproxDenominator after every
// step so the value doesn't grow without bound.
func approxSqrt(t *domain.RationalValue) *domain.RationalValue {
	if t.IsZero() {
		return domain.Zero()
	}
	seed, _ := t.Rat().Float64()
	x0 := math.Sqrt(seed)
	if math.IsNaN(x0) || math.IsInf(x0, 0) {
		return nil
	}

	r := new(big.Rat).SetFloat64(x0)
	if r == nil {
		r = big.NewRat(1, 1)
	}
	tr := t.Rat()
	two := big.NewRat(2, 1)
	for i := 0; i < 8; i++ {
		inv := new(big.Rat).Quo(tr, r)
		sum := new(big.Rat).Add(r, inv)
		next := new(big.Rat).Quo(sum, two)
		r = roundToMaxDenominator(next)
	}
	return domain.NewRationalFromBigInt(r.Num()).Quo(domain.NewRationalFromBigInt(r.Denom()))
}

// roundToMaxDenominator rounds x to the nearest multiple of
// 1/maxApproxDenominator.
func roundToMaxDenominator(x *big.Rat) *big.Rat {
	scale := big.NewInt(maxApproxDenominator)
	num := new(big.Int).Mul(x.Num(), scale)
	q, r := new(big.Int).QuoRem(num, x.Denom(), new(big.Int))
	twiceR := new(big.Int).Mul(r, big.NewInt(2))
	if twiceR.CmpAbs(x.Denom()) >= 0 {
		if x.Num().Sign() >= 0 {
			q.Add(q, big.NewInt(1))
		} else {
			q.Sub(q, big.NewInt(1))
		}
	}
	return new(big.Rat).SetFrac(q, scale)
}

// candidate is one scored xrate proposal.
type candidate struct {
	xrate *domain.RationalValue
	obj   *domain.RationalValue
}

// scoreCandidate runs the execution engine at xrate over the full
// (unfiltered) order book and scores the resulting fill with the
// rational objective, mutating bOrders/sOrders' buy/sell amounts as a
// side effect -- callers that need the winning fill re-run Compute at
// the returned optimal rate.
func scoreCandidate(xrate *domain.RationalValue, bOrders, sOrders []*domain.Order, fee domain.Fee, feeTokenPrice *domain.RationalValue, maxNrExecOrders int, minTradable *domain.RationalValue) candidate {
	bFilled, sFilled := exec.Compute(xrate, bOrders, sOrders, fee, maxNrExecOrders, minTradable)
	obj := objective.Rational(bFilled, sFilled, xrate, feeTokenPrice, fee)
	return candidate{xrate: xrate, obj: obj}
}

// scoreCandidateCached memoizes scoreCandidate's objective by the
// candidate xrate's canonical (reduced) string form. A cache hit skips
// re-running the execution engine entirely; it is safe to skip the
// engine's side effect of writing the candidate fill into
// bOrders/sOrders because Solve always re-runs exec.Compute once more,
// at the very end, for whichever xrate actually wins.
func scoreCandidateCached(cache *lru.Cache[string, *domain.RationalValue], xrate *domain.RationalValue, bOrders, sOrders []*domain.Order, fee domain.Fee, feeTokenPrice *domain.RationalValue, maxNrExecOrders int, minTradable *domain.RationalValue) candidate {
	key := xrate.String()
	if obj, ok := cache.Get(key); ok {
		return candidate{xrate: xrate, obj: obj}
	}
	c := scoreCandidate(xrate, bOrders, sOrders, fee, feeTokenPrice, maxNrExecOrders, minTradable)
	cache.Add(key, c.obj)
	return c
}

// Solve finds the objective-maximizing exchange rate for bOrders
// against sOrders. Returns ok=false if no candidate exists (e.g. one
// side is empty). On success the winning xrate's fill is left applied
// to bOrders/sOrders' buy/sell amounts.
func Solve(bOrders, sOrders []*domain.Order, fee domain.Fee, feeTokenPrice *domain.RationalValue, maxNrExecOrders int, minTradable *domain.RationalValue) (best *domain.RationalValue, bestObj *domain.RationalValue, ok bool) {
	if len(bOrders) == 0 || len(sOrders) == 0 {
		return nil, nil, false
	}

	cache, _ := lru.New[string, *domain.RationalValue](objectiveCacheSize)

	var candidates []candidate

	for _, iv := range intervals(bOrders, sOrders, fee) {
		roots := []*domain.RationalValue{
			root3(iv.bExecOrders, iv.sExecOrders, fee, feeTokenPrice),
			root4(iv.bExecOrders, iv.sExecOrders, fee),
			root5(iv.bExecOrders, iv.sExecOrders, fee),
		}
		for _, r := range roots {
			if r == nil {
				continue
			}
			if r.Cmp(iv.lb) <= 0 || r.Cmp(iv.ub) >= 0 {
				continue
			}
			candidates = append(candidates, scoreCandidateCached(cache, r, bOrders, sOrders, fee, feeTokenPrice, maxNrExecOrders, minTradable))
		}
	}

	for _, b := range bOrders {
		candidates = append(candidates, scoreCandidateCached(cache, root1(b, fee), bOrders, sOrders, fee, feeTokenPrice, maxNrExecOrders, minTradable))
	}
	for _, s := range sOrders {
		candidates = append(candidates, scoreCandidateCached(cache, root2(s, fee), bOrders, sOrders, fee, feeTokenPrice, maxNrExecOrders, minTradable))
	}

	if len(candidates) == 0 {
		return nil, nil, false
	}

	winner := candidates[0]
	for _, c := range candidates[1:] {
		if c.obj.GreaterThan(winner.obj) {
			winner = c
		}
	}

	exec.Compute(winner.xrate, bOrders, sOrders, fee, maxNrExecOrders, minTradable)
	return winner.xrate, winner.obj, true
}
