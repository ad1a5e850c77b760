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
	"github.com/pingcap/errors"
	"go.uber.org/zap"

	"github.com/td-commit-queue/presto/sessionctx"
	"github.com/td-commit-queue/presto/util/logutil"
)

// JoinReorderingOptimizer is a whole-tree rewrite pass that flips the sides
// of each binary join when the estimates say the right input is larger. The
// physical hash join favors a larger left input, so the pass prefers putting
// the bigger side there. Children are optimized before the parent decides.
//
// Output size in bytes takes absolute precedence over row count: when both
// sizes are known, row counts are never consulted, even on a tie.
type JoinReorderingOptimizer struct {
	costCalculator CostCalculator
}

// NewJoinReorderingOptimizer creates the pass over the given cost oracle.
func NewJoinReorderingOptimizer(costCalculator CostCalculator) *JoinReorderingOptimizer {
	if costCalculator == nil {
		panic("cost calculator is nil")
	}
	return &JoinReorderingOptimizer{costCalculator: costCalculator}
}

// Optimize rewrites plan top-down. With join reordering disabled it is an
// identity pass. The input plan is never mutated; unchanged subtrees are
// returned as-is, so callers can detect a no-op by pointer equality.
func (o *JoinReorderingOptimizer) Optimize(sctx sessionctx.Context, plan PlanNode) (PlanNode, error) {
	if plan == nil {
		return nil, errors.New("plan is nil")
	}
	if !sctx.GetSessionVars().EnableJoinReorder {
		return plan, nil
	}
	return o.rewrite(sctx, plan)
}

func (o *JoinReorderingOptimizer) rewrite(sctx sessionctx.Context, node PlanNode) (PlanNode, error) {
	join, ok := node.(*JoinNode)
	if !ok {
		return rewriteChildren(node, func(child PlanNode) (PlanNode, error) {
			return o.rewrite(sctx, child)
		})
	}

	left, err := o.rewrite(sctx, join.Left())
	if err != nil {
		return nil, err
	}
	right, err := o.rewrite(sctx, join.Right())
	if err != nil {
		return nil, err
	}

	leftCost := o.costCalculator.CalculateCostForNode(sctx, left)
	rightCost := o.costCalculator.CalculateCostForNode(sctx, right)

	if flipNeeded(leftCost, rightCost) {
		flippedType, err := flipJoinType(join.JoinType())
		if err != nil {
			return nil, err
		}
		logutil.BgLogger().Debug("flipping join sides",
			zap.Int("plan", int(join.ID())),
			zap.String("joinType", join.JoinType().String()),
			zap.String("leftSize", leftCost.OutputSizeInBytes.String()),
			zap.String("rightSize", rightCost.OutputSizeInBytes.String()))
		return NewJoinNode(
			join.ID(),
			flippedType,
			right,
			left,
			flipJoinCriteria(join.Criteria()),
			join.OutputSymbols(),
			join.Filter(),
			join.RightHashSymbol(),
			join.LeftHashSymbol(),
		), nil
	}

	if left != join.Left() || right != join.Right() {
		return NewJoinNode(
			join.ID(),
			join.JoinType(),
			left,
			right,
			join.Criteria(),
			join.OutputSymbols(),
			join.Filter(),
			join.LeftHashSymbol(),
			join.RightHashSymbol(),
		), nil
	}

	return join, nil
}

// flipNeeded prefers the larger estimated input on the left. Sizes rule when
// both are known; row counts are the fallback when they are not.
func flipNeeded(leftCost, rightCost PlanNodeCost) bool {
	leftSize, rightSize := leftCost.OutputSizeInBytes, rightCost.OutputSizeInBytes
	if !leftSize.IsUnknown() && !rightSize.IsUnknown() {
		return leftSize.Value() < rightSize.Value()
	}
	leftCount, rightCount := leftCost.OutputRowCount, rightCost.OutputRowCount
	return !leftCount.IsUnknown() && !rightCount.IsUnknown() && leftCount.Value() < rightCount.Value()
}

// flipJoinType mirrors a join type for swapped sides. LEFT and RIGHT
// exchange, keeping the outer-row semantics; INNER and FULL are symmetric.
// An unrecognized type means a join type was added without updating this
// pass, which is a planner bug, not a recoverable condition.
func flipJoinType(joinType JoinType) (JoinType, error) {
	switch joinType {
	case LeftOuterJoin:
		return RightOuterJoin, nil
	case RightOuterJoin:
		return LeftOuterJoin, nil
	case InnerJoin, FullOuterJoin:
		return joinType, nil
	default:
		return 0, errors.Errorf("unknown join type %v while flipping join sides", joinType)
	}
}

func flipJoinCriteria(criteria []EquiJoinClause) []EquiJoinClause {
	flipped := make([]EquiJoinClause, 0, len(criteria))
	for _, clause := range criteria {
		flipped = append(flipped, clause.Flip())
	}
	return flipped
}
