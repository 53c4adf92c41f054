package domain

import "sort"

// sortOrdersByMaxXrateDesc sorts orders by MaxXrate descending, i.e. best
// limit price first, breaking ties by Index for determinism (spec §5:
// "all tie-breaks are by stable order index").
func sortOrdersByMaxXrateDesc(orders []*Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		c := orders[i].MaxXrate.Cmp(orders[j].MaxXrate)
		if c != 0 {
			return c > 0
		}
		return orders[i].Index < orders[j].Index
	})
}

// SortByMaxXrateDesc is the exported form, used by the execution engine
// and the optimizer to establish priority order.
func SortByMaxXrateDesc(orders []*Order) []*Order {
	out := make([]*Order, len(orders))
	copy(out, orders)
	sortOrdersByMaxXrateDesc(out)
	return out
}
