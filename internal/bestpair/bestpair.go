// Package bestpair implements the best-token-pair command: given a full
// order book and a fee token, it finds every token reachable from the
// fee token, tries every ordered pair of those tokens as a candidate
// (buyToken, sellToken), scores each candidate independently and keeps
// the one with the highest objective.
//
// Grounded on original_source's src/best_token_pair_solver/solver.py
// (match_token_pair, match_token_pair_and_evaluate, main's permutation
// loop) and src/core/orderbook.py's compute_connected_tokens.
package bestpair

import (
	"context"
	"sort"

	"github.com/dexsolver/dexsolver/internal/config"
	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/dexsolver/dexsolver/internal/ioformat"
	"github.com/dexsolver/dexsolver/internal/metrics"
	"github.com/dexsolver/dexsolver/internal/solver/coordinator"
	"github.com/dexsolver/dexsolver/internal/solver/viability"
	"golang.org/x/sync/errgroup"
)

// TokenPair is a candidate (buyToken, sellToken) to try as the b-side
// of a token-pair-and-fee solve.
type TokenPair struct {
	BuyToken  domain.Token
	SellToken domain.Token
}

// EligiblePairIterator yields the candidate pairs a best-token-pair
// search should try. It is the collaborator interface named in spec §6,
// kept separate from ConnectedTokens so the command can be tested
// against a scripted set of pairs instead of a real order book (see
// internal/bestpair/mocks).
type EligiblePairIterator interface {
	Pairs() []TokenPair
}

// ConnectedTokens finds every token reachable from feeToken by walking
// the order book's buy/sell adjacency, restricted to tokens that are
// both bought and sold somewhere in orders (a token only ever bought,
// or only ever sold, can never be the non-fee leg of a two-sided
// match). Grounded on compute_connected_tokens; unlike the Python
// original's set-difference BFS, newly discovered tokens are visited in
// sorted order at each step so the result (and therefore iteration
// order downstream) is deterministic independent of Go's randomized map
// iteration.
func ConnectedTokens(orders []*domain.Order, feeToken domain.Token) []domain.Token {
	sold := map[domain.Token]struct{}{}
	bought := map[domain.Token]struct{}{}
	for _, o := range orders {
		sold[o.SellToken] = struct{}{}
		bought[o.BuyToken] = struct{}{}
	}

	tradable := map[domain.Token]struct{}{feeToken: {}}
	for tok := range sold {
		if _, ok := bought[tok]; ok {
			tradable[tok] = struct{}{}
		}
	}

	adjacency := make(map[domain.Token]map[domain.Token]struct{}, len(tradable))
	for tok := range tradable {
		adjacency[tok] = map[domain.Token]struct{}{}
	}
	for _, o := range orders {
		_, buyOK := adjacency[o.BuyToken]
		_, sellOK := adjacency[o.SellToken]
		if buyOK && sellOK {
			adjacency[o.BuyToken][o.SellToken] = struct{}{}
			adjacency[o.SellToken][o.BuyToken] = struct{}{}
		}
	}

	visited := map[domain.Token]struct{}{feeToken: {}}
	connected := []domain.Token{feeToken}
	for i := 0; i < len(connected); i++ {
		cur := connected[i]
		var fresh []domain.Token
		for neighbor := range adjacency[cur] {
			if _, seen := visited[neighbor]; !seen {
				fresh = append(fresh, neighbor)
			}
		}
		sort.Slice(fresh, func(a, b int) bool { return fresh[a] < fresh[b] })
		for _, t := range fresh {
			visited[t] = struct{}{}
			connected = append(connected, t)
		}
	}
	return connected
}

// connectedTokensIterator is the concrete EligiblePairIterator grounded
// on ConnectedTokens: every ordered pair of distinct connected tokens,
// matching itertools.permutations(connected_tokens, 2).
type connectedTokensIterator struct {
	orders   []*domain.Order
	feeToken domain.Token
}

// NewConnectedTokensIterator builds the default EligiblePairIterator:
// every ordered pair among the tokens reachable from feeToken.
func NewConnectedTokensIterator(orders []*domain.Order, feeToken domain.Token) EligiblePairIterator {
	return &connectedTokensIterator{orders: orders, feeToken: feeToken}
}

func (it *connectedTokensIterator) Pairs() []TokenPair {
	tokens := ConnectedTokens(it.orders, it.feeToken)
	var pairs []TokenPair
	for _, a := range tokens {
		for _, b := range tokens {
			if a != b {
				pairs = append(pairs, TokenPair{BuyToken: a, SellToken: b})
			}
		}
	}
	return pairs
}

// cloneOrders returns independent *domain.Order copies: the underlying
// RationalValue fields are never mutated in place (every arithmetic
// operation allocates a new one and gets reassigned), so a shallow
// struct copy per order is sufficient isolation between concurrently
// scored candidates.
func cloneOrders(orders []*domain.Order) []*domain.Order {
	out := make([]*domain.Order, len(orders))
	for i, o := range orders {
		cp := *o
		out[i] = &cp
	}
	return out
}

// candidateResult is one pair's scored outcome, kept private to this
// package's fan-out/reduce.
type candidateResult struct {
	pair      TokenPair
	solution  *coordinator.Solution
	objective *domain.RationalValue
}

// Solve tries every pair iter yields, concurrently (bounded by
// errgroup's default of one goroutine per candidate, capped implicitly
// by GOMAXPROCS-driven scheduling), and returns the candidate with the
// highest IntegerTraits objective value -- the Go analogue of main's
// sequential permutation loop, parallelized since each candidate's
// solve is independent of the others (spec's Non-goals still exclude
// joint optimization across pairs; this only parallelizes independent
// per-pair work). A nil Solution with no error means no candidate pair
// produced any match.
func Solve(ctx context.Context, iter EligiblePairIterator, orders []*domain.Order, fee domain.Fee, cfg config.Solver) (*coordinator.Solution, error) {
	pairs := iter.Pairs()
	results := make([]*candidateResult, len(pairs))

	g, ctx := errgroup.WithContext(ctx)
	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			// Each candidate pair gets its own clone of every order: the
			// same order can appear as the b-side of one candidate and
			// the s-side of another, and coordinator.SolveTokenPair
			// mutates BuyAmount/SellAmount in place, so sharing the
			// original pointers across concurrently running candidates
			// would race.
			candidateOrders := cloneOrders(orders)

			bOrders, sOrders := ioformat.FilterTokenPair(candidateOrders, pair.BuyToken, pair.SellToken)
			if len(bOrders) == 0 || len(sOrders) == 0 {
				return nil
			}
			fOrders := ioformat.FilterFeeOrders(candidateOrders, fee, pair.BuyToken)

			sol, err := viability.Solve(pair.BuyToken, pair.SellToken, bOrders, sOrders, fOrders, fee, viability.Params{
				Coordinator: coordinator.Params{
					FeeTokenPrice:        cfg.FeeTokenPrice,
					MaxNrExecOrders:      cfg.MaxNrExecOrders,
					MinTradableAmount:    cfg.MinTradableAmount,
					PriceEstimationError: cfg.PriceEstimationError,
					MaxRoundingVolume:    cfg.MaxRoundingVolume,
				},
				MinAverageOrderFee: cfg.MinAverageOrderFee,
			})
			if err != nil || sol == nil || len(sol.Orders) == 0 {
				return nil
			}

			// Rank candidates by total realized utility at the solved
			// integer prices -- the scalar match_token_pair_and_evaluate
			// compares candidates on, computed here via the same
			// per-order traits the final solution metrics use rather
			// than re-deriving a single pair-wide xrate (the b/s/f
			// triple spans three tokens, each with its own price).
			accountsUpdated := domain.Accounts{}
			for _, o := range sol.Orders {
				accountsUpdated.ApplyOrder(o)
			}
			obj := metrics.Compute(sol.Prices, accountsUpdated, sol.Orders, fee).Utility
			results[i] = &candidateResult{pair: pair, solution: sol, objective: obj}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var best *candidateResult
	for _, r := range results {
		if r == nil {
			continue
		}
		if best == nil || r.objective.Cmp(best.objective) > 0 {
			best = r
		}
	}
	if best == nil {
		return nil, nil
	}
	return best.solution, nil
}
