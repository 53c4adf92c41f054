package metrics

import (
	"testing"

	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/stretchr/testify/require"
)

func fee() domain.Fee {
	return domain.Fee{Token: "F", Value: domain.NewRationalFromFrac(1, 1000)}
}

func TestComputeSkipsOrdersWithoutBothPrices(t *testing.T) {
	o := domain.NewOrder(0, "acct", "B", "S", domain.NewRationalFromInt64(1000), domain.NewRationalFromInt64(100), domain.NewRationalFromInt64(1))
	prices := map[domain.Token]*domain.RationalValue{"B": domain.NewRationalFromInt64(1)}

	sol := Compute(prices, domain.Accounts{}, []*domain.Order{o}, fee())
	require.True(t, sol.Volume.IsZero())
	require.Equal(t, 0, sol.OrdersTouched)
}

func TestComputeCountsTouchedOrdersAndFees(t *testing.T) {
	f := fee()
	buy := domain.NewOrder(0, "buyer", "B", "F", domain.NewRationalFromInt64(1000), domain.NewRationalFromInt64(100), domain.NewRationalFromInt64(1))
	buy.BuyAmount = domain.NewRationalFromInt64(100)
	buy.SellAmount = domain.NewRationalFromInt64(200)

	sell := domain.NewOrder(1, "seller", "F", "B", domain.NewRationalFromInt64(1000), domain.NewRationalFromInt64(50), domain.NewRationalFromInt64(1))
	sell.BuyAmount = domain.NewRationalFromInt64(60)
	sell.SellAmount = domain.NewRationalFromInt64(30)

	prices := map[domain.Token]*domain.RationalValue{
		"B": domain.NewRationalFromInt64(2),
		"F": domain.NewRationalFromInt64(1),
	}

	accounts := domain.Accounts{}
	accounts.ApplyOrder(buy)
	accounts.ApplyOrder(sell)

	sol := Compute(prices, accounts, []*domain.Order{buy, sell}, f)
	require.Equal(t, 2, sol.OrdersTouched)

	// sell's sell_token is F: fees += sell_amount (30). buy's buy_token is
	// not F, sell's buy_token is B (not F) so no subtraction applies here.
	require.Zero(t, sol.Fees.Cmp(domain.NewRationalFromInt64(30)))

	wantVolume := buy.SellAmount.Mul(prices["F"]).Add(sell.SellAmount.Mul(prices["B"]))
	require.Zero(t, sol.Volume.Cmp(wantVolume))
}
