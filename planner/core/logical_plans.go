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
	"fmt"
	"slices"

	"github.com/td-commit-queue/presto/expression"
)

// JoinType is the semantic type of a JoinNode.
type JoinType int

// Join types.
const (
	InnerJoin JoinType = iota
	LeftOuterJoin
	RightOuterJoin
	FullOuterJoin
)

func (t JoinType) String() string {
	switch t {
	case InnerJoin:
		return "INNER"
	case LeftOuterJoin:
		return "LEFT"
	case RightOuterJoin:
		return "RIGHT"
	case FullOuterJoin:
		return "FULL"
	default:
		return fmt.Sprintf("JoinType(%d)", int(t))
	}
}

// EquiJoinClause is one join key: an equality between a left-side and a
// right-side column.
type EquiJoinClause struct {
	Left  expression.Symbol
	Right expression.Symbol
}

// Flip swaps the clause's sides.
func (c EquiJoinClause) Flip() EquiJoinClause {
	return EquiJoinClause{Left: c.Right, Right: c.Left}
}

func (c EquiJoinClause) String() string {
	return fmt.Sprintf("%s=%s", c.Left, c.Right)
}

// JoinNode joins two subtrees on equi-join clauses, with an optional
// residual filter. A join with no clauses and no filter is a cross join.
type JoinNode struct {
	id              PlanNodeID
	joinType        JoinType
	left            PlanNode
	right           PlanNode
	criteria        []EquiJoinClause
	outputSymbols   []expression.Symbol
	filter          expression.Expression
	leftHashSymbol  *expression.Symbol
	rightHashSymbol *expression.Symbol
}

// NewJoinNode builds a join. outputSymbols fixes the node's output layout;
// filter and the hash symbols may be nil.
func NewJoinNode(
	id PlanNodeID,
	joinType JoinType,
	left, right PlanNode,
	criteria []EquiJoinClause,
	outputSymbols []expression.Symbol,
	filter expression.Expression,
	leftHashSymbol, rightHashSymbol *expression.Symbol,
) *JoinNode {
	return &JoinNode{
		id:              id,
		joinType:        joinType,
		left:            left,
		right:           right,
		criteria:        slices.Clone(criteria),
		outputSymbols:   slices.Clone(outputSymbols),
		filter:          filter,
		leftHashSymbol:  leftHashSymbol,
		rightHashSymbol: rightHashSymbol,
	}
}

// ID implements PlanNode.
func (n *JoinNode) ID() PlanNodeID { return n.id }

// Children implements PlanNode.
func (n *JoinNode) Children() []PlanNode { return []PlanNode{n.left, n.right} }

// OutputSymbols implements PlanNode.
func (n *JoinNode) OutputSymbols() []expression.Symbol { return n.outputSymbols }

// JoinType returns the join's semantic type.
func (n *JoinNode) JoinType() JoinType { return n.joinType }

// Left returns the left (outer/probe) subtree.
func (n *JoinNode) Left() PlanNode { return n.left }

// Right returns the right (build) subtree.
func (n *JoinNode) Right() PlanNode { return n.right }

// Criteria returns the equi-join clauses.
func (n *JoinNode) Criteria() []EquiJoinClause { return n.criteria }

// Filter returns the residual filter, nil when absent.
func (n *JoinNode) Filter() expression.Expression { return n.filter }

// LeftHashSymbol returns the precomputed hash column of the left side.
func (n *JoinNode) LeftHashSymbol() *expression.Symbol { return n.leftHashSymbol }

// RightHashSymbol returns the precomputed hash column of the right side.
func (n *JoinNode) RightHashSymbol() *expression.Symbol { return n.rightHashSymbol }

// IsCrossJoin reports whether the join has no keys and no filter.
func (n *JoinNode) IsCrossJoin() bool {
	return len(n.criteria) == 0 && n.filter == nil
}

// TableScanNode produces the rows of a base table.
type TableScanNode struct {
	id            PlanNodeID
	table         string
	outputSymbols []expression.Symbol
}

// NewTableScanNode builds a scan of table producing outputSymbols.
func NewTableScanNode(id PlanNodeID, table string, outputSymbols []expression.Symbol) *TableScanNode {
	return &TableScanNode{id: id, table: table, outputSymbols: slices.Clone(outputSymbols)}
}

// ID implements PlanNode.
func (n *TableScanNode) ID() PlanNodeID { return n.id }

// Children implements PlanNode.
func (n *TableScanNode) Children() []PlanNode { return nil }

// OutputSymbols implements PlanNode.
func (n *TableScanNode) OutputSymbols() []expression.Symbol { return n.outputSymbols }

// Table returns the scanned table's name.
func (n *TableScanNode) Table() string { return n.table }

// Assignment is one output column of a projection.
type Assignment struct {
	Output expression.Symbol
	Expr   expression.Expression
}

// ProjectionNode computes a new output layout from its child.
type ProjectionNode struct {
	id          PlanNodeID
	child       PlanNode
	assignments []Assignment
}

// NewProjectionNode builds a projection with explicit assignments.
func NewProjectionNode(id PlanNodeID, child PlanNode, assignments []Assignment) *ProjectionNode {
	return &ProjectionNode{id: id, child: child, assignments: slices.Clone(assignments)}
}

// NewIdentityProjection builds a projection passing symbols through
// unchanged. Rewrites use it to pin a subtree's output layout.
func NewIdentityProjection(id PlanNodeID, child PlanNode, symbols []expression.Symbol) *ProjectionNode {
	assignments := make([]Assignment, 0, len(symbols))
	for _, s := range symbols {
		assignments = append(assignments, Assignment{Output: s, Expr: expression.NewSymbolReference(s)})
	}
	return &ProjectionNode{id: id, child: child, assignments: assignments}
}

// ID implements PlanNode.
func (n *ProjectionNode) ID() PlanNodeID { return n.id }

// Children implements PlanNode.
func (n *ProjectionNode) Children() []PlanNode { return []PlanNode{n.child} }

// OutputSymbols implements PlanNode.
func (n *ProjectionNode) OutputSymbols() []expression.Symbol {
	symbols := make([]expression.Symbol, 0, len(n.assignments))
	for _, a := range n.assignments {
		symbols = append(symbols, a.Output)
	}
	return symbols
}

// Assignments returns the projection's output columns in order.
func (n *ProjectionNode) Assignments() []Assignment { return n.assignments }

// IsIdentity reports whether every assignment passes a symbol through under
// its own name.
func (n *ProjectionNode) IsIdentity() bool {
	for _, a := range n.assignments {
		ref, ok := a.Expr.(*expression.SymbolReference)
		if !ok || ref.Symbol() != a.Output {
			return false
		}
	}
	return true
}

// FilterNode drops the child's rows not satisfying the predicate.
type FilterNode struct {
	id        PlanNodeID
	child     PlanNode
	predicate expression.Expression
}

// NewFilterNode builds a filter.
func NewFilterNode(id PlanNodeID, child PlanNode, predicate expression.Expression) *FilterNode {
	return &FilterNode{id: id, child: child, predicate: predicate}
}

// ID implements PlanNode.
func (n *FilterNode) ID() PlanNodeID { return n.id }

// Children implements PlanNode.
func (n *FilterNode) Children() []PlanNode { return []PlanNode{n.child} }

// OutputSymbols implements PlanNode.
func (n *FilterNode) OutputSymbols() []expression.Symbol { return n.child.OutputSymbols() }

// Predicate returns the filter predicate.
func (n *FilterNode) Predicate() expression.Expression { return n.predicate }

// ValuesNode produces literal rows.
type ValuesNode struct {
	id            PlanNodeID
	outputSymbols []expression.Symbol
	rows          [][]expression.NullableValue
}

// NewValuesNode builds a literal relation.
func NewValuesNode(id PlanNodeID, outputSymbols []expression.Symbol, rows [][]expression.NullableValue) *ValuesNode {
	return &ValuesNode{id: id, outputSymbols: slices.Clone(outputSymbols), rows: rows}
}

// ID implements PlanNode.
func (n *ValuesNode) ID() PlanNodeID { return n.id }

// Children implements PlanNode.
func (n *ValuesNode) Children() []PlanNode { return nil }

// OutputSymbols implements PlanNode.
func (n *ValuesNode) OutputSymbols() []expression.Symbol { return n.outputSymbols }

// Rows returns the literal rows.
func (n *ValuesNode) Rows() [][]expression.NullableValue { return n.rows }

// GroupReference stands in for a subtree owned by the iterative optimizer's
// memo. Rules treat it as an opaque leaf; resolving it would force
// materialization of a group that is still being explored.
type GroupReference struct {
	id            PlanNodeID
	groupID       int
	outputSymbols []expression.Symbol
}

// NewGroupReference builds a reference to memo group groupID.
func NewGroupReference(id PlanNodeID, groupID int, outputSymbols []expression.Symbol) *GroupReference {
	return &GroupReference{id: id, groupID: groupID, outputSymbols: slices.Clone(outputSymbols)}
}

// ID implements PlanNode.
func (n *GroupReference) ID() PlanNodeID { return n.id }

// Children implements PlanNode.
func (n *GroupReference) Children() []PlanNode { return nil }

// OutputSymbols implements PlanNode.
func (n *GroupReference) OutputSymbols() []expression.Symbol { return n.outputSymbols }

// GroupID returns the referenced memo group.
func (n *GroupReference) GroupID() int { return n.groupID }
