// Package ioformat loads and dumps solver instances in the JSON wire
// format the original tooling reads and writes: accounts keyed by
// account ID, a flat order list, and a fee token/ratio pair. Every
// numeric field is parsed through shopspring/decimal rather than
// float64 so a literal like "0.1" never picks up binary-float error
// before it is promoted to an exact big.Rat.
//
// Grounded on original_source's src/core/api.py (load_problem,
// dump_solution) and src/api.py's token-pair-scoped variant.
package ioformat

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/dexsolver/dexsolver/internal/metrics"
	"github.com/shopspring/decimal"
)

type orderJSON struct {
	AccountID      string          `json:"accountID"`
	BuyToken       string          `json:"buyToken"`
	SellToken      string          `json:"sellToken"`
	BuyAmount      decimal.Decimal `json:"buyAmount"`
	SellAmount     decimal.Decimal `json:"sellAmount"`
	ExecBuyAmount  string          `json:"execBuyAmount,omitempty"`
	ExecSellAmount string          `json:"execSellAmount,omitempty"`
}

type feeJSON struct {
	Token string          `json:"token"`
	Ratio decimal.Decimal `json:"ratio"`
}

type instanceJSON struct {
	Accounts map[string]map[string]decimal.Decimal `json:"accounts"`
	Orders   []orderJSON                            `json:"orders"`
	Fee      feeJSON                                 `json:"fee"`
}

// Instance is a fully parsed problem: every amount and rate is an exact
// domain.RationalValue, ready for the solver.
type Instance struct {
	Accounts domain.Accounts
	Orders   []*domain.Order
	Fee      domain.Fee
}

func ratOf(d decimal.Decimal) *domain.RationalValue {
	return domain.NewRationalFromBigRat(d.Rat())
}

// Load parses a problem instance from r. effectiveMinTradable is the
// floor applied to each order's requested buy amount before its limit
// rate is derived (MIN_TRADABLE_AMOUNT), mirroring Order.load_from_dict.
// Orders are returned index-ordered by their position in the JSON array,
// and their sell amounts are pre-capped to the declared account
// balances (restrict_order_sell_amounts_by_balances), dropping any order
// that caps to zero.
func Load(r io.Reader, effectiveMinTradable *domain.RationalValue) (*Instance, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw instanceJSON
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("ioformat: decode instance: %w", err)
	}

	accounts := make(domain.Accounts, len(raw.Accounts))
	for acctID, balances := range raw.Accounts {
		byToken := make(map[domain.Token]*domain.RationalValue, len(balances))
		for tok, amt := range balances {
			byToken[domain.Token(tok)] = ratOf(amt)
		}
		accounts[domain.AccountID(acctID)] = byToken
	}

	orders := make([]*domain.Order, 0, len(raw.Orders))
	for i, oj := range raw.Orders {
		o := domain.NewOrder(
			i,
			domain.AccountID(oj.AccountID),
			domain.Token(oj.BuyToken),
			domain.Token(oj.SellToken),
			ratOf(oj.SellAmount),
			ratOf(oj.BuyAmount),
			effectiveMinTradable,
		)
		orders = append(orders, o)
	}

	orders = domain.RestrictSellAmountsByBalance(orders, accounts)

	fee := domain.Fee{
		Token: domain.Token(raw.Fee.Token),
		Value: ratOf(raw.Fee.Ratio),
	}

	return &Instance{Accounts: accounts, Orders: orders, Fee: fee}, nil
}

// FilterTokenPair splits orders into the two sides of (buyToken,
// sellToken): those buying buyToken for sellToken, and those buying
// sellToken for buyToken. Grounded on filter_orders_tokenpair plus the
// b_orders/s_orders split in src/api.py's load_problem.
func FilterTokenPair(orders []*domain.Order, buyToken, sellToken domain.Token) (bOrders, sOrders []*domain.Order) {
	for _, o := range orders {
		switch {
		case o.BuyToken == buyToken && o.SellToken == sellToken:
			bOrders = append(bOrders, o)
		case o.BuyToken == sellToken && o.SellToken == buyToken:
			sOrders = append(sOrders, o)
		}
	}
	return bOrders, sOrders
}

// FilterFeeOrders returns the orders selling fee.Token for buyToken,
// i.e. the candidates the fee-imbalance pricer may route through.
func FilterFeeOrders(orders []*domain.Order, fee domain.Fee, buyToken domain.Token) []*domain.Order {
	var out []*domain.Order
	for _, o := range orders {
		if o.SellToken == fee.Token && o.BuyToken == buyToken {
			out = append(out, o)
		}
	}
	return out
}

// Solution is everything Dump needs to render the output JSON: the
// solved prices, every order considered (touched or not), the post-
// trade account balances, and the fee the instance was solved against.
type Solution struct {
	Prices   map[domain.Token]*domain.RationalValue
	Orders   []*domain.Order
	Accounts domain.Accounts
	Fee      domain.Fee
}

type solutionOrderJSON struct {
	AccountID      string `json:"accountID"`
	BuyToken       string `json:"buyToken"`
	SellToken      string `json:"sellToken"`
	ExecBuyAmount  string `json:"execBuyAmount"`
	ExecSellAmount string `json:"execSellAmount"`
}

type objValsJSON struct {
	Volume               string `json:"volume"`
	Utility              string `json:"utility"`
	UtilityDisreg        string `json:"utility_disreg"`
	UtilityDisregTouched string `json:"utility_disreg_touched"`
	Fees                 string `json:"fees"`
	OrdersTouched        int    `json:"orders_touched"`
}

type solutionJSON struct {
	Prices   map[string]string            `json:"prices"`
	Accounts map[string]map[string]string `json:"accounts"`
	Orders   []solutionOrderJSON          `json:"orders"`
	ObjVals  objValsJSON                  `json:"objVals"`
}

// Dump writes sol to w as indented JSON: prices, updated account
// balances, touched orders (sorted by Index, matching update_order_dict
// / dump_solution's `sorted(orders, key=lambda order: order.index)`),
// and the objVals block from the metrics package.
func Dump(w io.Writer, sol Solution) error {
	updatedAccounts := sol.Accounts.Clone()
	for _, o := range sol.Orders {
		updatedAccounts.ApplyOrder(o)
	}

	objVals := metrics.Compute(sol.Prices, updatedAccounts, sol.Orders, sol.Fee)

	out := solutionJSON{
		Prices:   make(map[string]string, len(sol.Prices)),
		Accounts: make(map[string]map[string]string, len(updatedAccounts)),
		ObjVals: objValsJSON{
			Volume:               objVals.Volume.String(),
			Utility:              objVals.Utility.String(),
			UtilityDisreg:        objVals.UtilityDisreg.String(),
			UtilityDisregTouched: objVals.UtilityDisregTouched.String(),
			Fees:                 objVals.Fees.String(),
			OrdersTouched:        objVals.OrdersTouched,
		},
	}

	for tok, price := range sol.Prices {
		out.Prices[string(tok)] = price.String()
	}
	for acct, byToken := range updatedAccounts {
		m := make(map[string]string, len(byToken))
		for tok, bal := range byToken {
			m[string(tok)] = bal.String()
		}
		out.Accounts[string(acct)] = m
	}

	touched := make([]*domain.Order, 0, len(sol.Orders))
	for _, o := range sol.Orders {
		if o.IsTouched() {
			touched = append(touched, o)
		}
	}
	sort.Slice(touched, func(i, j int) bool { return touched[i].Index < touched[j].Index })

	for _, o := range touched {
		out.Orders = append(out.Orders, solutionOrderJSON{
			AccountID:      string(o.AccountID),
			BuyToken:       string(o.BuyToken),
			SellToken:      string(o.SellToken),
			ExecBuyAmount:  o.BuyAmount.String(),
			ExecSellAmount: o.SellAmount.String(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(out)
}
