// Copyright 2025 The Presto-Go Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"github.com/bits-and-blooms/bitset"
	"go.uber.org/zap"

	"github.com/td-commit-queue/presto/expression"
	"github.com/td-commit-queue/presto/sessionctx"
	"github.com/td-commit-queue/presto/util/logutil"
)

// EliminateCrossJoins reorders a connected component of inner joins into a
// left-deep chain that uses every available equi-join predicate, so that
// cross joins remain only where the predicate graph is genuinely
// disconnected.
//
// The component never extends across an outer join, a join with a residual
// filter, or a non-join operator; those are leaf boundaries. Group
// references are passed through unexamined.
type EliminateCrossJoins struct{}

// NewEliminateCrossJoins creates the rule.
func NewEliminateCrossJoins() *EliminateCrossJoins {
	return &EliminateCrossJoins{}
}

// Apply rewrites the inner-join component rooted at node. It reports false
// (rule does not fire) when reordering is disabled, the component has fewer
// than two leaves, no equi-join predicate connects any pair of leaves, or
// the component contains no cross join to eliminate.
func (r *EliminateCrossJoins) Apply(sctx sessionctx.Context, node PlanNode, idAllocator *PlanNodeIDAllocator) (PlanNode, bool, error) {
	if !sctx.GetSessionVars().EnableJoinReorder {
		return nil, false, nil
	}
	root, ok := node.(*JoinNode)
	if !ok || root.JoinType() != InnerJoin || root.Filter() != nil {
		return nil, false, nil
	}

	graph := flattenJoinComponent(root)
	if len(graph.leaves) < 2 || graph.crossJoinCount == 0 {
		return nil, false, nil
	}
	edges := graph.resolveEdges()
	if len(edges) == 0 {
		return nil, false, nil
	}

	chain := buildLeftDeepChain(graph.leaves, edges, idAllocator)

	logutil.BgLogger().Debug("eliminated cross joins",
		zap.Int("plan", int(root.ID())),
		zap.Int("leaves", len(graph.leaves)),
		zap.Int("crossJoins", graph.crossJoinCount))

	// The chain's output order differs from the original join's; an identity
	// projection on top restores the declared layout.
	return NewIdentityProjection(idAllocator.NextID(), chain, root.OutputSymbols()), true, nil
}

// joinGraph is the flattened form of an inner-join component: its leaf
// inputs in original left-to-right order and every equi-join clause found
// anywhere in the component.
type joinGraph struct {
	leaves         []PlanNode
	clauses        []EquiJoinClause
	crossJoinCount int
}

// edge is a clause resolved to leaf indices: from is the leaf producing
// clause.Left, to the leaf producing clause.Right.
type edge struct {
	clause EquiJoinClause
	from   int
	to     int
}

func flattenJoinComponent(root *JoinNode) *joinGraph {
	graph := &joinGraph{}
	graph.flatten(root)
	return graph
}

func (g *joinGraph) flatten(node PlanNode) {
	join, ok := node.(*JoinNode)
	if !ok || join.JoinType() != InnerJoin || join.Filter() != nil {
		g.leaves = append(g.leaves, node)
		return
	}
	if len(join.Criteria()) == 0 {
		g.crossJoinCount++
	}
	g.flatten(join.Left())
	g.flatten(join.Right())
	g.clauses = append(g.clauses, join.Criteria()...)
}

// resolveEdges maps each clause's symbols to the leaves producing them.
// Clauses whose symbols cannot be attributed to a leaf (for example symbols
// synthesized above the component) are skipped.
func (g *joinGraph) resolveEdges() []edge {
	symbolToLeaf := make(map[expression.Symbol]int)
	for i, leaf := range g.leaves {
		for _, s := range leaf.OutputSymbols() {
			symbolToLeaf[s] = i
		}
	}
	edges := make([]edge, 0, len(g.clauses))
	for _, clause := range g.clauses {
		from, okFrom := symbolToLeaf[clause.Left]
		to, okTo := symbolToLeaf[clause.Right]
		if !okFrom || !okTo || from == to {
			continue
		}
		edges = append(edges, edge{clause: clause, from: from, to: to})
	}
	return edges
}

// buildLeftDeepChain greedily rebuilds the component. Starting from the
// first leaf, it repeatedly joins in the first remaining leaf (in original
// order) connected to the placed set by at least one predicate, using every
// connecting predicate as an equi-join clause. When nothing connects, the
// next leaf in original order is joined as a cross join, which both
// guarantees termination and preserves the cross-product semantics of a
// disconnected graph.
func buildLeftDeepChain(leaves []PlanNode, edges []edge, idAllocator *PlanNodeIDAllocator) PlanNode {
	n := uint(len(leaves))

	// Per-leaf adjacency over leaf indices.
	adjacency := make([]*bitset.BitSet, n)
	for i := range adjacency {
		adjacency[i] = bitset.New(n)
	}
	for _, e := range edges {
		adjacency[e.from].Set(uint(e.to))
		adjacency[e.to].Set(uint(e.from))
	}

	placed := bitset.New(n)
	placed.Set(0)
	current := leaves[0]

	for placed.Count() < n {
		next := -1
		for i := range leaves {
			if placed.Test(uint(i)) {
				continue
			}
			if adjacency[i].IntersectionCardinality(placed) > 0 {
				next = i
				break
			}
		}

		var criteria []EquiJoinClause
		if next == -1 {
			// Disconnected from everything placed so far: cross join the
			// next leaf in original order.
			for i := range leaves {
				if !placed.Test(uint(i)) {
					next = i
					break
				}
			}
		} else {
			criteria = connectingClauses(edges, placed, next)
		}

		right := leaves[next]
		outputSymbols := append(append([]expression.Symbol{}, current.OutputSymbols()...), right.OutputSymbols()...)
		current = NewJoinNode(
			idAllocator.NextID(),
			InnerJoin,
			current,
			right,
			criteria,
			outputSymbols,
			nil,
			nil,
			nil,
		)
		placed.Set(uint(next))
	}
	return current
}

// connectingClauses returns, in discovery order, every clause joining leaf
// next to the placed set, oriented so the placed side is on the left.
func connectingClauses(edges []edge, placed *bitset.BitSet, next int) []EquiJoinClause {
	var criteria []EquiJoinClause
	for _, e := range edges {
		switch {
		case e.to == next && placed.Test(uint(e.from)):
			criteria = append(criteria, e.clause)
		case e.from == next && placed.Test(uint(e.to)):
			criteria = append(criteria, e.clause.Flip())
		}
	}
	return criteria
}
