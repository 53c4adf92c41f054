package xrate

import (
	"testing"

	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/stretchr/testify/require"
)

func feeOneTenth() domain.Fee {
	return domain.Fee{Token: "F", Value: domain.NewRationalFromFrac(1, 1000)}
}

func order(index int, buyToken, sellToken domain.Token, maxSell int64, maxXrateNum, maxXrateDen int64) *domain.Order {
	o := domain.NewSyntheticOrder(domain.AccountID("acct"), buyToken, sellToken,
		domain.NewRationalFromInt64(maxSell), domain.NewRationalFromFrac(maxXrateNum, maxXrateDen))
	o.Index = index
	return o
}

func TestSolveFindsNonTrivialMatch(t *testing.T) {
	fee := feeOneTenth()
	feeTokenPrice := domain.NewRationalFromInt64(1_000_000_000_000_000_000)

	b := []*domain.Order{order(0, "T0", "T1", 11109, 1, 1)}
	s := []*domain.Order{order(0, "T1", "T0", 11132, 17, 10)}

	xr, obj, ok := Solve(b, s, fee, feeTokenPrice, 3, domain.NewRationalFromInt64(10000))
	require.True(t, ok)
	require.NotNil(t, xr)
	require.NotNil(t, obj)
	require.True(t, xr.Sign() > 0)

	touched := 0
	for _, o := range append(b, s...) {
		if o.IsTouched() {
			touched++
		}
	}
	require.Greater(t, touched, 0, "optimizer should find a non-trivial fill")
}

func TestSolveEmptySideReturnsNotOK(t *testing.T) {
	fee := feeOneTenth()
	feeTokenPrice := domain.NewRationalFromInt64(1_000_000_000_000_000_000)

	b := []*domain.Order{order(0, "T0", "T1", 11109, 1, 1)}

	_, _, ok := Solve(b, nil, fee, feeTokenPrice, 30, domain.NewRationalFromInt64(10000))
	require.False(t, ok)
}
