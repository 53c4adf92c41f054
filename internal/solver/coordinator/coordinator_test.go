package coordinator

import (
	"testing"

	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/stretchr/testify/require"
)

func fee() domain.Fee {
	return domain.Fee{Token: "F", Value: domain.NewRationalFromFrac(1, 1000)}
}

func syn(index int, buyToken, sellToken domain.Token, maxSell int64, xrateNum, xrateDen int64) *domain.Order {
	o := domain.NewSyntheticOrder(domain.AccountID("acct"), buyToken, sellToken,
		domain.NewRationalFromInt64(maxSell), domain.NewRationalFromFrac(xrateNum, xrateDen))
	o.Index = index
	return o
}

func defaultParams() Params {
	return Params{
		FeeTokenPrice:        domain.NewRationalFromInt64(1_000_000_000_000_000_000),
		MaxNrExecOrders:      30,
		MinTradableAmount:    domain.NewRationalFromInt64(10000),
		PriceEstimationError: 10,
		MaxRoundingVolume:    domain.NewRationalFromInt64(100_000_000_000),
	}
}

func assertValidSolution(t *testing.T, sol *Solution, fee domain.Fee) {
	t.Helper()
	for _, p := range sol.Prices {
		require.True(t, p.IsInteger(), "price must be an exact integer")
	}

	balances := map[domain.Token]*domain.RationalValue{}
	for tok := range sol.Prices {
		balances[tok] = domain.Zero()
	}
	for _, o := range sol.Orders {
		require.True(t, o.BuyAmount.IsInteger(), "buy amount must be integer after rounding")
		require.True(t, o.SellAmount.IsInteger(), "sell amount must be integer after rounding")
		require.True(t, o.SellAmount.Cmp(o.MaxSellAmount) <= 0)
		if o.BuyAmount.Sign() > 0 {
			require.True(t, o.SellAmount.Quo(o.BuyAmount).Cmp(o.MaxXrate) <= 0)
		}
		balances[o.BuyToken] = balances[o.BuyToken].Sub(o.BuyAmount)
		balances[o.SellToken] = balances[o.SellToken].Add(o.SellAmount)
	}
	for tok, bal := range balances {
		if tok == fee.Token {
			require.True(t, bal.Sign() >= 0, "fee token balance must not go negative")
			continue
		}
		require.Zero(t, bal.Sign(), "token %s must net to zero", tok)
	}
}

func TestSolveTokenPairBuyTokenIsFeeToken(t *testing.T) {
	f := fee()
	b := []*domain.Order{syn(0, "F", "T1", 11109, 1, 1)}
	s := []*domain.Order{syn(0, "T1", "F", 11132, 17, 10)}

	sol, err := SolveTokenPair("F", "T1", b, s, nil, f, defaultParams())
	require.NoError(t, err)
	require.NotNil(t, sol)
	require.Contains(t, sol.Prices, domain.Token("F"))
	require.Contains(t, sol.Prices, domain.Token("T1"))
	require.Zero(t, sol.Prices["F"].Cmp(defaultParams().FeeTokenPrice))

	assertValidSolution(t, sol, f)
}

func TestSolveTokenPairThreeSided(t *testing.T) {
	f := fee()
	b := []*domain.Order{syn(0, "B", "S", 11109, 1, 1)}
	s := []*domain.Order{syn(0, "S", "B", 11132, 17, 10)}
	fOrders := []*domain.Order{
		syn(0, "B", "F", 1_000_000_000, 10, 1),
	}

	sol, err := SolveTokenPair("B", "S", b, s, fOrders, f, defaultParams())
	require.NoError(t, err)
	require.NotNil(t, sol)
	require.Contains(t, sol.Prices, domain.Token("B"))
	require.Contains(t, sol.Prices, domain.Token("S"))
	require.Contains(t, sol.Prices, domain.Token("F"))

	assertValidSolution(t, sol, f)

	touched := 0
	for _, o := range sol.Orders {
		if o.IsTouched() {
			touched++
		}
	}
	require.Greater(t, touched, 0, "a three-sided match should touch at least one order")
}

func TestSolveTokenPairEmptySideIsNoMatch(t *testing.T) {
	f := fee()
	b := []*domain.Order{syn(0, "B", "S", 11109, 1, 1)}

	_, err := SolveTokenPair("B", "S", b, nil, nil, f, defaultParams())
	require.Error(t, err)
}

func TestSolveTokenPairNoFeeOrdersIsFeeUnreachable(t *testing.T) {
	f := fee()
	b := []*domain.Order{syn(0, "B", "S", 11109, 1, 1)}
	s := []*domain.Order{syn(0, "S", "B", 11132, 17, 10)}

	_, err := SolveTokenPair("B", "S", b, s, nil, f, defaultParams())
	require.Error(t, err)
}
