package viability

import (
	"testing"

	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/dexsolver/dexsolver/internal/solver/coordinator"
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

func defaultCoordinatorParams() coordinator.Params {
	return coordinator.Params{
		FeeTokenPrice:        domain.NewRationalFromInt64(1_000_000_000_000_000_000),
		MaxNrExecOrders:      30,
		MinTradableAmount:    domain.NewRationalFromInt64(10000),
		PriceEstimationError: 10,
		MaxRoundingVolume:    domain.NewRationalFromInt64(100_000_000_000),
	}
}

func TestSolveWithNoThresholdMatchesUnconstrainedSolve(t *testing.T) {
	f := fee()
	b := []*domain.Order{syn(0, "F", "T1", 11109, 1, 1)}
	s := []*domain.Order{syn(0, "T1", "F", 11132, 17, 10)}

	sol, err := Solve("F", "T1", b, s, nil, f, Params{Coordinator: defaultCoordinatorParams()})
	require.NoError(t, err)
	require.NotNil(t, sol)
	require.Greater(t, countTouched(sol.Orders), 0)
}

func TestSolveDegradesToTrivialWhenThresholdUnreachable(t *testing.T) {
	f := fee()
	b := []*domain.Order{syn(0, "F", "T1", 11109, 1, 1)}
	s := []*domain.Order{syn(0, "T1", "F", 11132, 17, 10)}

	hugeThreshold, err := domain.NewRationalFromString("1000000000000000000000")
	require.NoError(t, err)
	params := Params{
		Coordinator:        defaultCoordinatorParams(),
		MinAverageOrderFee: hugeThreshold,
	}

	sol, err := Solve("F", "T1", b, s, nil, f, params)
	require.NoError(t, err)
	require.NotNil(t, sol)
	require.Equal(t, 0, countTouched(sol.Orders))
}

func TestSolveEmptySidesReturnsTrivial(t *testing.T) {
	f := fee()
	sol, err := Solve("F", "T1", nil, nil, nil, f, Params{Coordinator: defaultCoordinatorParams()})
	require.NoError(t, err)
	require.Equal(t, 0, countTouched(sol.Orders))
}
