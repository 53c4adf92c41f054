package arborescence

import (
	"testing"

	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/stretchr/testify/require"
)

func synOrder(buyToken, sellToken domain.Token) *domain.Order {
	return domain.NewSyntheticOrder("acct", buyToken, sellToken,
		domain.NewRationalFromInt64(1), domain.NewRationalFromFrac(1, 1))
}

func TestComputeSimpleChain(t *testing.T) {
	orders := []*domain.Order{
		synOrder("T1", "F"),
		synOrder("T2", "T1"),
	}
	tree := Compute(orders, "F")
	require.NotNil(t, tree)
	require.Equal(t, domain.Token("F"), tree["T1"])
	require.Equal(t, domain.Token("T1"), tree["T2"])
}

func TestComputeBreaksCycleAwayFromFee(t *testing.T) {
	// T1 <-> T2 cycle, with T1 also reachable from the fee token.
	orders := []*domain.Order{
		synOrder("T1", "F"),
		synOrder("T2", "T1"),
		synOrder("T1", "T2"),
	}
	tree := Compute(orders, "F")
	require.NotNil(t, tree)
	// Every non-fee node must have a path back to F with no cycles.
	seen := map[domain.Token]bool{"F": true}
	for node := range tree {
		cur := node
		steps := 0
		for !seen[cur] {
			cur = tree[cur]
			steps++
			require.Less(t, steps, len(tree)+2, "cycle detected reaching root from %s", node)
		}
	}
}

func TestComputeUnreachableReturnsNil(t *testing.T) {
	orders := []*domain.Order{
		synOrder("T2", "T1"), // T1 itself has no incoming edge from F
	}
	tree := Compute(orders, "F")
	require.Nil(t, tree)
}
