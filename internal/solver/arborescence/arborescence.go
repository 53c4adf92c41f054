// Package arborescence computes a minimum spanning arborescence rooted
// at the fee token over the directed graph of touched orders (an edge
// sell_token -> buy_token per order), via the Chu-Liu/Edmonds
// algorithm, then iteratively rounds leaves of that tree to zero out
// every non-fee-token balance (see round.go).
//
// No example repository in the retrieved corpus imports a graph or
// minimum-spanning-tree library (the teacher's dependency surface is
// ledger/consensus/crypto, not graph theory), so the Chu-Liu/Edmonds
// routine below is implemented directly against the algorithm
// description rather than against any corpus code -- the one routine
// in this solver with no teacher grounding, recorded as such in
// DESIGN.md. Grounded instead on original_source's src/core/round.py
// (compute_spanning_order_arborescence, which wraps networkx's
// Edmonds() with unit edge weights, and round_solution's leaf-reduction
// loop).
package arborescence

import "github.com/dexsolver/dexsolver/internal/domain"

// edge is a directed arc sell_token -> buy_token with a weight. The
// teacher's own graph always uses a uniform weight of 1 (networkx's
// default), which is all this solver needs; Chu-Liu/Edmonds handles
// arbitrary weights so a future refinement could weight edges, e.g. by
// order priority.
type edge struct {
	from, to domain.Token
	weight   float64
}

// Compute returns the spanning arborescence rooted at feeToken as a
// child -> parent map, built from one sell_token -> buy_token edge per
// order in orders (duplicate edges collapse; edges into feeToken are
// excluded so it is forced to be the root). Returns nil if no spanning
// arborescence rooted at feeToken exists (some token is unreachable
// from it via sell->buy edges).
func Compute(orders []*domain.Order, feeToken domain.Token) map[domain.Token]domain.Token {
	nodes := map[domain.Token]struct{}{feeToken: {}}
	seen := map[[2]domain.Token]bool{}
	var edges []edge
	for _, o := range orders {
		nodes[o.SellToken] = struct{}{}
		nodes[o.BuyToken] = struct{}{}
		if o.BuyToken == feeToken {
			continue
		}
		key := [2]domain.Token{o.SellToken, o.BuyToken}
		if seen[key] {
			continue
		}
		seen[key] = true
		edges = append(edges, edge{from: o.SellToken, to: o.BuyToken, weight: 1})
	}

	return minimumArborescence(domain.SortedTokens(nodes), edges, feeToken)
}

// minimumArborescence implements Chu-Liu/Edmonds: pick each non-root
// node's cheapest incoming edge; if that selection is cycle-free it is
// optimal; otherwise contract one cycle into a super-node, recurse on
// the smaller graph, then expand the contracted node's chosen edge
// back out, replacing the one cycle-internal edge it displaces.
func minimumArborescence(nodes []domain.Token, edges []edge, root domain.Token) map[domain.Token]domain.Token {
	best := map[domain.Token]edge{}
	for _, n := range nodes {
		if n == root {
			continue
		}
		var chosen edge
		found := false
		for _, e := range edges {
			if e.to != n {
				continue
			}
			if !found || e.weight < chosen.weight {
				chosen = e
				found = true
			}
		}
		if !found {
			return nil // n unreachable: no spanning arborescence exists
		}
		best[n] = chosen
	}

	cycle := findCycle(best, root)
	if cycle == nil {
		tree := make(map[domain.Token]domain.Token, len(best))
		for child, e := range best {
			tree[child] = e.from
		}
		return tree
	}

	return contractAndSolve(nodes, edges, root, best, cycle)
}

// findCycle walks best's child->edge.from chain from every node and
// returns the member set of the first cycle found, or nil if best (as
// a functional graph over non-root nodes) is acyclic.
func findCycle(best map[domain.Token]edge, root domain.Token) map[domain.Token]bool {
	const (
		unvisited = iota
		inProgress
		done
	)
	color := map[domain.Token]int{}
	var path []domain.Token

	var visit func(n domain.Token) map[domain.Token]bool
	visit = func(n domain.Token) map[domain.Token]bool {
		if n == root {
			return nil
		}
		switch color[n] {
		case done:
			return nil
		case inProgress:
			cycle := map[domain.Token]bool{}
			started := false
			for _, p := range path {
				if p == n {
					started = true
				}
				if started {
					cycle[p] = true
				}
			}
			return cycle
		}
		color[n] = inProgress
		path = append(path, n)
		if e, ok := best[n]; ok {
			if c := visit(e.from); c != nil {
				return c
			}
		}
		path = path[:len(path)-1]
		color[n] = done
		return nil
	}

	for n := range best {
		if color[n] == unvisited {
			if c := visit(n); c != nil {
				return c
			}
		}
	}
	return nil
}

const superNode domain.Token = "\x00__arborescence_supernode__"

// contractAndSolve contracts cycle into superNode, recursively solves
// the smaller graph, then expands superNode back into the cycle
// members it stands for.
func contractAndSolve(nodes []domain.Token, edges []edge, root domain.Token, best map[domain.Token]edge, cycle map[domain.Token]bool) map[domain.Token]domain.Token {
	newNodes := make([]domain.Token, 0, len(nodes)-len(cycle)+1)
	newNodes = append(newNodes, superNode)
	for _, n := range nodes {
		if !cycle[n] {
			newNodes = append(newNodes, n)
		}
	}

	// contractIn[outsideNode] = cheapest edge from any cycle member into it.
	contractIn := map[domain.Token]edge{}
	// contractOut[outsideNode] = cheapest edge from it into the cycle,
	// reweighted by what the entered member already costs internally so
	// the recursive solve picks the entry point that saves the most.
	contractOut := map[domain.Token]edge{}

	var newEdges []edge
	for _, e := range edges {
		inCycle := cycle[e.from]
		outCycle := cycle[e.to]
		switch {
		case inCycle && !outCycle:
			if cur, ok := contractIn[e.to]; !ok || e.weight < cur.weight {
				contractIn[e.to] = e
			}
		case !inCycle && outCycle:
			reduced := edge{from: e.from, to: e.to, weight: e.weight - best[e.to].weight}
			if cur, ok := contractOut[e.from]; !ok || reduced.weight < cur.weight {
				contractOut[e.from] = reduced
			}
		case !inCycle && !outCycle:
			newEdges = append(newEdges, e)
		}
	}
	for outsideTo, e := range contractIn {
		newEdges = append(newEdges, edge{from: superNode, to: outsideTo, weight: e.weight})
	}
	for outsideFrom, e := range contractOut {
		newEdges = append(newEdges, edge{from: outsideFrom, to: superNode, weight: e.weight})
	}

	subTree := minimumArborescence(newNodes, newEdges, root)
	if subTree == nil {
		return nil
	}

	tree := make(map[domain.Token]domain.Token)
	var enteredFrom domain.Token
	haveEntry := false
	for child, parent := range subTree {
		switch {
		case child == superNode:
			enteredFrom = parent
			haveEntry = true
		case parent == superNode:
			tree[child] = contractIn[child].from
		default:
			tree[child] = parent
		}
	}

	enteredMember := domain.Token("")
	if haveEntry {
		enteredMember = contractOut[enteredFrom].to
		tree[enteredMember] = enteredFrom
	}
	for member := range cycle {
		if member == enteredMember {
			continue
		}
		tree[member] = best[member].from
	}

	return tree
}
