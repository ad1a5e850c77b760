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

package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/td-commit-queue/presto/expression"
	core "github.com/td-commit-queue/presto/planner/core"
	"github.com/td-commit-queue/presto/sessionctx"
	"github.com/td-commit-queue/presto/util/mock"
)

// mapCostCalculator serves canned estimates keyed by node id; everything
// else is unknown.
type mapCostCalculator struct {
	costs map[core.PlanNodeID]core.PlanNodeCost
}

func (c mapCostCalculator) CalculateCostForNode(_ sessionctx.Context, node core.PlanNode) core.PlanNodeCost {
	if cost, ok := c.costs[node.ID()]; ok {
		return cost
	}
	return core.UnknownPlanNodeCost
}

func sizeCost(bytes float64) core.PlanNodeCost {
	return core.PlanNodeCost{OutputSizeInBytes: core.NewEstimate(bytes)}
}

func rowCost(rows float64) core.PlanNodeCost {
	return core.PlanNodeCost{OutputRowCount: core.NewEstimate(rows)}
}

func scan(id core.PlanNodeID, table string, columns ...string) *core.TableScanNode {
	symbols := make([]expression.Symbol, 0, len(columns))
	for _, c := range columns {
		symbols = append(symbols, expression.Symbol(c))
	}
	return core.NewTableScanNode(id, table, symbols)
}

func TestFlipOnLargerRightSize(t *testing.T) {
	left := scan(1, "nation", "n.regionkey")
	right := scan(2, "region", "r.regionkey")
	join := core.NewJoinNode(3, core.InnerJoin, left, right,
		[]core.EquiJoinClause{{Left: "n.regionkey", Right: "r.regionkey"}},
		[]expression.Symbol{"n.regionkey", "r.regionkey"}, nil, nil, nil)

	calculator := mapCostCalculator{costs: map[core.PlanNodeID]core.PlanNodeCost{
		1: sizeCost(10),
		2: sizeCost(100),
	}}
	optimized, err := core.NewJoinReorderingOptimizer(calculator).Optimize(mock.NewContext(), join)
	require.NoError(t, err)

	result, ok := optimized.(*core.JoinNode)
	require.True(t, ok)
	require.Same(t, right, result.Left())
	require.Same(t, left, result.Right())
	require.Equal(t, core.InnerJoin, result.JoinType())
	require.Equal(t, []core.EquiJoinClause{{Left: "r.regionkey", Right: "n.regionkey"}}, result.Criteria())
	// The output layout is part of the node's contract and does not move.
	require.Equal(t, join.OutputSymbols(), result.OutputSymbols())
}

func TestNoFlipWhenLeftAlreadyLarger(t *testing.T) {
	left := scan(1, "region", "r.regionkey")
	right := scan(2, "nation", "n.regionkey")
	join := core.NewJoinNode(3, core.InnerJoin, left, right,
		[]core.EquiJoinClause{{Left: "r.regionkey", Right: "n.regionkey"}},
		[]expression.Symbol{"r.regionkey", "n.regionkey"}, nil, nil, nil)

	calculator := mapCostCalculator{costs: map[core.PlanNodeID]core.PlanNodeCost{
		1: sizeCost(100),
		2: sizeCost(10),
	}}
	optimized, err := core.NewJoinReorderingOptimizer(calculator).Optimize(mock.NewContext(), join)
	require.NoError(t, err)
	require.Same(t, core.PlanNode(join), optimized)
}

func TestLeftJoinFlipsToRightJoin(t *testing.T) {
	leftHash := expression.Symbol("lh")
	rightHash := expression.Symbol("rh")
	left := scan(1, "orders", "o.custkey", "lh")
	right := scan(2, "customer", "c.custkey", "rh")
	join := core.NewJoinNode(3, core.LeftOuterJoin, left, right,
		[]core.EquiJoinClause{{Left: "o.custkey", Right: "c.custkey"}},
		[]expression.Symbol{"o.custkey", "c.custkey"}, nil, &leftHash, &rightHash)

	calculator := mapCostCalculator{costs: map[core.PlanNodeID]core.PlanNodeCost{
		1: sizeCost(10),
		2: sizeCost(100),
	}}
	optimized, err := core.NewJoinReorderingOptimizer(calculator).Optimize(mock.NewContext(), join)
	require.NoError(t, err)

	result, ok := optimized.(*core.JoinNode)
	require.True(t, ok)
	// The preserved side stays preserved: LEFT with swapped children is RIGHT.
	require.Equal(t, core.RightOuterJoin, result.JoinType())
	require.Same(t, right, result.Left())
	require.Same(t, left, result.Right())
	require.Equal(t, []core.EquiJoinClause{{Left: "c.custkey", Right: "o.custkey"}}, result.Criteria())
	require.Equal(t, &rightHash, result.LeftHashSymbol())
	require.Equal(t, &leftHash, result.RightHashSymbol())
}

func TestRowCountFallback(t *testing.T) {
	left := scan(1, "small", "a")
	right := scan(2, "big", "b")
	join := core.NewJoinNode(3, core.InnerJoin, left, right, nil,
		[]expression.Symbol{"a", "b"}, nil, nil, nil)

	// Sizes unknown on one side: row counts decide.
	calculator := mapCostCalculator{costs: map[core.PlanNodeID]core.PlanNodeCost{
		1: rowCost(10),
		2: rowCost(100),
	}}
	optimized, err := core.NewJoinReorderingOptimizer(calculator).Optimize(mock.NewContext(), join)
	require.NoError(t, err)
	result, ok := optimized.(*core.JoinNode)
	require.True(t, ok)
	require.Same(t, right, result.Left())
}

func TestSizeTakesPrecedenceOverRowCount(t *testing.T) {
	left := scan(1, "t1", "a")
	right := scan(2, "t2", "b")
	join := core.NewJoinNode(3, core.InnerJoin, left, right, nil,
		[]expression.Symbol{"a", "b"}, nil, nil, nil)

	// Equal sizes, diverging row counts: sizes rule and there is no
	// fall-through, so no flip happens.
	calculator := mapCostCalculator{costs: map[core.PlanNodeID]core.PlanNodeCost{
		1: {OutputSizeInBytes: core.NewEstimate(50), OutputRowCount: core.NewEstimate(10)},
		2: {OutputSizeInBytes: core.NewEstimate(50), OutputRowCount: core.NewEstimate(100)},
	}}
	optimized, err := core.NewJoinReorderingOptimizer(calculator).Optimize(mock.NewContext(), join)
	require.NoError(t, err)
	require.Same(t, core.PlanNode(join), optimized)
}

func TestUnknownCostsPreserveIdentity(t *testing.T) {
	left := scan(1, "t1", "a")
	right := scan(2, "t2", "b")
	join := core.NewJoinNode(3, core.FullOuterJoin, left, right, nil,
		[]expression.Symbol{"a", "b"}, nil, nil, nil)

	optimized, err := core.NewJoinReorderingOptimizer(mapCostCalculator{}).Optimize(mock.NewContext(), join)
	require.NoError(t, err)
	// Nothing known, nothing below changed: the exact same node comes back.
	require.Same(t, core.PlanNode(join), optimized)
}

func TestNestedJoinsRewrittenBottomUp(t *testing.T) {
	a := scan(1, "a", "a.k")
	b := scan(2, "b", "b.k")
	inner := core.NewJoinNode(3, core.InnerJoin, a, b,
		[]core.EquiJoinClause{{Left: "a.k", Right: "b.k"}},
		[]expression.Symbol{"a.k", "b.k"}, nil, nil, nil)
	c := scan(4, "c", "c.k")
	outer := core.NewJoinNode(5, core.InnerJoin, inner, c, nil,
		[]expression.Symbol{"a.k", "b.k", "c.k"}, nil, nil, nil)

	// The inner join flips; the outer join has no estimates but must be
	// rebuilt because its child changed.
	calculator := mapCostCalculator{costs: map[core.PlanNodeID]core.PlanNodeCost{
		1: sizeCost(1),
		2: sizeCost(2),
	}}
	optimized, err := core.NewJoinReorderingOptimizer(calculator).Optimize(mock.NewContext(), outer)
	require.NoError(t, err)

	result, ok := optimized.(*core.JoinNode)
	require.True(t, ok)
	require.NotSame(t, core.PlanNode(outer), optimized)
	require.Same(t, c, result.Right())
	flipped, ok := result.Left().(*core.JoinNode)
	require.True(t, ok)
	require.Same(t, b, flipped.Left())
	require.Same(t, a, flipped.Right())
}

func TestReorderingDisabled(t *testing.T) {
	left := scan(1, "region", "r.regionkey")
	right := scan(2, "nation", "n.regionkey")
	join := core.NewJoinNode(3, core.InnerJoin, left, right, nil,
		[]expression.Symbol{"r.regionkey", "n.regionkey"}, nil, nil, nil)

	calculator := mapCostCalculator{costs: map[core.PlanNodeID]core.PlanNodeCost{
		1: sizeCost(10),
		2: sizeCost(100),
	}}
	ctx := mock.NewContext()
	ctx.GetSessionVars().EnableJoinReorder = false
	optimized, err := core.NewJoinReorderingOptimizer(calculator).Optimize(ctx, join)
	require.NoError(t, err)
	require.Same(t, core.PlanNode(join), optimized)
}

func TestRewriteDescendsThroughOtherOperators(t *testing.T) {
	left := scan(1, "t1", "a")
	right := scan(2, "t2", "b")
	join := core.NewJoinNode(3, core.InnerJoin, left, right, nil,
		[]expression.Symbol{"a", "b"}, nil, nil, nil)
	projection := core.NewIdentityProjection(4, join, []expression.Symbol{"a", "b"})

	calculator := mapCostCalculator{costs: map[core.PlanNodeID]core.PlanNodeCost{
		1: sizeCost(10),
		2: sizeCost(100),
	}}
	optimized, err := core.NewJoinReorderingOptimizer(calculator).Optimize(mock.NewContext(), projection)
	require.NoError(t, err)

	result, ok := optimized.(*core.ProjectionNode)
	require.True(t, ok)
	require.NotSame(t, core.PlanNode(projection), optimized)
	rewritten, ok := result.Children()[0].(*core.JoinNode)
	require.True(t, ok)
	require.Same(t, right, rewritten.Left())
}
