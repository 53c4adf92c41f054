package exec

import (
	"testing"

	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/stretchr/testify/require"
)

func rat(n, d int64) *domain.RationalValue { return domain.NewRationalFromFrac(n, d) }

func minTradable() *domain.RationalValue { return domain.NewRationalFromInt64(10000) }

func noFee() domain.Fee {
	return domain.Fee{Token: "F", Value: domain.NewRationalFromFrac(1, 1000)}
}

func order(index int, buyToken, sellToken domain.Token, maxSell *domain.RationalValue, maxXrate *domain.RationalValue) *domain.Order {
	o := domain.NewSyntheticOrder(domain.AccountID("acct"), buyToken, sellToken, maxSell, maxXrate)
	o.Index = index
	return o
}

func TestComputeSinglePairFillsWithinTokenBalance(t *testing.T) {
	fee := noFee()
	xrate := rat(1, 1)

	b := []*domain.Order{
		order(0, "T0", "T1", domain.NewRationalFromInt64(11109), rat(1, 1)),
	}
	s := []*domain.Order{
		order(0, "T1", "T0", domain.NewRationalFromInt64(11132), rat(17, 10)),
	}

	bOut, sOut := Compute(xrate, b, s, fee, 3, minTradable())
	require.NotEmpty(t, bOut)
	require.NotEmpty(t, sOut)

	bBuyTotal := domain.Zero()
	for _, o := range bOut {
		bBuyTotal = bBuyTotal.Add(o.BuyAmount)
	}
	sBuyTotal := domain.Zero()
	for _, o := range sOut {
		sBuyTotal = sBuyTotal.Add(o.BuyAmount)
	}

	oneMinusFee := domain.NewRationalFromInt64(1).Sub(fee.Value)
	lhs := bBuyTotal.Mul(xrate)
	rhs := sBuyTotal.Mul(oneMinusFee)
	require.Zero(t, lhs.Cmp(rhs), "token balance invariant: b_buy*xrate == s_buy*(1-fee)")

	for _, o := range bOut {
		if o.IsTouched() {
			require.True(t, o.BuyAmount.Cmp(minTradable()) >= 0)
		}
	}
	for _, o := range sOut {
		if o.IsTouched() {
			require.True(t, o.BuyAmount.Cmp(minTradable()) >= 0)
		}
	}
}

func TestComputeCapForcesRollback(t *testing.T) {
	fee := noFee()
	xrate := rat(1, 5)

	b := []*domain.Order{
		order(0, "T0", "T1", domain.NewRationalFromInt64(20019), rat(3, 10)),
	}
	s := []*domain.Order{
		order(0, "T1", "T0", domain.NewRationalFromInt64(50096), rat(51, 10)),
		order(1, "T1", "T0", domain.NewRationalFromInt64(50096), rat(16567, 3310)),
	}

	bOut, sOut := Compute(xrate, b, s, fee, 2, minTradable())

	touched := 0
	for _, o := range bOut {
		if o.IsTouched() {
			touched++
		}
	}
	sTouched := 0
	for _, o := range sOut {
		if o.IsTouched() {
			sTouched++
		}
	}
	touched += sTouched

	require.LessOrEqual(t, touched, 2, "touched-order cap must be respected")
	require.Equal(t, 1, sTouched, "exactly one s-order should survive the cap")
}

func TestComputeEmptySideReturnsNoMatch(t *testing.T) {
	fee := noFee()
	xrate := rat(1, 1)

	b := []*domain.Order{
		order(0, "T0", "T1", domain.NewRationalFromInt64(11109), rat(1, 2)),
	}

	bOut, sOut := Compute(xrate, b, nil, fee, 30, minTradable())
	require.Nil(t, bOut)
	require.Nil(t, sOut)
}
