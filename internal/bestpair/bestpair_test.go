package bestpair

import (
	"context"
	"testing"

	"github.com/dexsolver/dexsolver/internal/bestpair/mocks"
	"github.com/dexsolver/dexsolver/internal/config"
	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/golang/mock/gomock"
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

func TestConnectedTokensFindsReachableSetIncludingFee(t *testing.T) {
	orders := []*domain.Order{
		syn(0, "B", "F", 100, 1, 1),
		syn(1, "F", "B", 100, 1, 1),
		syn(2, "B", "S", 100, 1, 1),
		syn(3, "S", "B", 100, 1, 1),
		syn(4, "X", "Y", 100, 1, 1), // disconnected component
	}

	tokens := ConnectedTokens(orders, "F")
	require.Contains(t, tokens, domain.Token("F"))
	require.Contains(t, tokens, domain.Token("B"))
	require.Contains(t, tokens, domain.Token("S"))
	require.NotContains(t, tokens, domain.Token("X"))
	require.NotContains(t, tokens, domain.Token("Y"))
}

func TestConnectedTokensIteratorProducesOrderedPairs(t *testing.T) {
	orders := []*domain.Order{
		syn(0, "B", "F", 100, 1, 1),
		syn(1, "F", "B", 100, 1, 1),
	}
	it := NewConnectedTokensIterator(orders, "F")
	pairs := it.Pairs()
	require.Contains(t, pairs, TokenPair{BuyToken: "F", SellToken: "B"})
	require.Contains(t, pairs, TokenPair{BuyToken: "B", SellToken: "F"})
	for _, p := range pairs {
		require.NotEqual(t, p.BuyToken, p.SellToken)
	}
}

func defaultSolverConfig() config.Solver {
	return config.Solver{
		FeeTokenPrice:        domain.NewRationalFromInt64(1_000_000_000_000_000_000),
		MaxNrExecOrders:      30,
		MinTradableAmount:    domain.NewRationalFromInt64(10000),
		PriceEstimationError: 10,
		MaxRoundingVolume:    domain.NewRationalFromInt64(100_000_000_000),
		MinAverageOrderFee:   domain.Zero(),
	}
}

func TestSolvePicksBestAmongScriptedPairs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := fee()
	orders := []*domain.Order{
		syn(0, "B", "S", 11109, 1, 1),
		syn(1, "S", "B", 11132, 17, 10),
		syn(2, "B", "F", 1_000_000_000, 10, 1),
		syn(3, "S", "F", 1_000_000_000, 10, 1),
	}

	iter := mocks.NewMockEligiblePairIterator(ctrl)
	iter.EXPECT().Pairs().Return([]TokenPair{
		{BuyToken: "B", SellToken: "S"},
		{BuyToken: "S", SellToken: "B"},
	})

	sol, err := Solve(context.Background(), iter, orders, f, defaultSolverConfig())
	require.NoError(t, err)
	require.NotNil(t, sol)
	require.NotEmpty(t, sol.Orders)
}

func TestSolveReturnsNilWhenNoPairHasBothSides(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := fee()
	orders := []*domain.Order{
		syn(0, "B", "S", 11109, 1, 1),
	}

	iter := mocks.NewMockEligiblePairIterator(ctrl)
	iter.EXPECT().Pairs().Return([]TokenPair{{BuyToken: "B", SellToken: "S"}})

	sol, err := Solve(context.Background(), iter, orders, f, defaultSolverConfig())
	require.NoError(t, err)
	require.Nil(t, sol)
}
