package ioformat

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/stretchr/testify/require"
)

const sampleInstance = `{
	"accounts": {
		"acct1": {"B": "1000000", "F": "0"},
		"acct2": {"S": "1000000", "F": "0"}
	},
	"orders": [
		{"accountID": "acct1", "buyToken": "S", "sellToken": "B", "buyAmount": "100", "sellAmount": "110"},
		{"accountID": "acct2", "buyToken": "B", "sellToken": "S", "buyAmount": "95", "sellAmount": "100"}
	],
	"fee": {"token": "F", "ratio": "0.001"}
}`

func TestLoadParsesOrdersAccountsAndFeeExactly(t *testing.T) {
	minTradable := domain.NewRationalFromInt64(10)

	inst, err := Load(strings.NewReader(sampleInstance), minTradable)
	require.NoError(t, err)

	require.Len(t, inst.Orders, 2)
	require.Equal(t, domain.Token("F"), inst.Fee.Token)
	require.Zero(t, inst.Fee.Value.Cmp(domain.NewRationalFromFrac(1, 1000)))

	o0 := inst.Orders[0]
	require.Equal(t, domain.AccountID("acct1"), o0.AccountID)
	require.Zero(t, o0.MaxSellAmount.Cmp(domain.NewRationalFromInt64(110)))

	require.Zero(t, inst.Accounts.Balance("acct1", "B").Cmp(domain.NewRationalFromInt64(1000000)))
}

func TestLoadCapsSellAmountsByBalance(t *testing.T) {
	minTradable := domain.NewRationalFromInt64(10)
	tiny := `{
		"accounts": {"acct1": {"B": "50"}},
		"orders": [
			{"accountID": "acct1", "buyToken": "S", "sellToken": "B", "buyAmount": "10", "sellAmount": "110"}
		],
		"fee": {"token": "F", "ratio": "0.001"}
	}`

	inst, err := Load(strings.NewReader(tiny), minTradable)
	require.NoError(t, err)
	require.Len(t, inst.Orders, 1)
	require.Zero(t, inst.Orders[0].MaxSellAmount.Cmp(domain.NewRationalFromInt64(50)))
}

func TestFilterTokenPairSplitsSides(t *testing.T) {
	minTradable := domain.NewRationalFromInt64(10)
	inst, err := Load(strings.NewReader(sampleInstance), minTradable)
	require.NoError(t, err)

	bOrders, sOrders := FilterTokenPair(inst.Orders, "B", "S")
	require.Len(t, bOrders, 1)
	require.Len(t, sOrders, 1)
	require.Equal(t, domain.Token("B"), bOrders[0].BuyToken)
	require.Equal(t, domain.Token("S"), sOrders[0].BuyToken)
}

func TestDumpWritesPricesAccountsAndTouchedOrders(t *testing.T) {
	f := domain.Fee{Token: "F", Value: domain.NewRationalFromFrac(1, 1000)}

	o := domain.NewOrder(0, "acct1", "B", "S", domain.NewRationalFromInt64(1000), domain.NewRationalFromInt64(100), domain.NewRationalFromInt64(10))
	o.BuyAmount = domain.NewRationalFromInt64(100)
	o.SellAmount = domain.NewRationalFromInt64(200)

	untouched := domain.NewOrder(1, "acct2", "S", "B", domain.NewRationalFromInt64(1000), domain.NewRationalFromInt64(100), domain.NewRationalFromInt64(10))

	sol := Solution{
		Prices: map[domain.Token]*domain.RationalValue{
			"B": domain.NewRationalFromInt64(2),
			"S": domain.NewRationalFromInt64(1),
			"F": domain.NewRationalFromInt64(1),
		},
		Orders:   []*domain.Order{o, untouched},
		Accounts: domain.Accounts{},
		Fee:      f,
	}

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, sol))

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	orders, ok := out["orders"].([]interface{})
	require.True(t, ok)
	require.Len(t, orders, 1, "only the touched order should be dumped")

	objVals, ok := out["objVals"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, float64(1), objVals["orders_touched"])
}
