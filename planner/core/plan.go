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

	"github.com/td-commit-queue/presto/expression"
)

// PlanNodeID identifies a plan node within one query's plan.
type PlanNodeID int

// PlanNodeIDAllocator hands out fresh node ids during plan construction and
// rewrites. Not safe for concurrent use; each query optimization owns one.
type PlanNodeIDAllocator struct {
	next PlanNodeID
}

// NewPlanNodeIDAllocator creates an allocator starting at the given id.
func NewPlanNodeIDAllocator(next PlanNodeID) *PlanNodeIDAllocator {
	return &PlanNodeIDAllocator{next: next}
}

// NextID returns a fresh node id.
func (a *PlanNodeIDAllocator) NextID() PlanNodeID {
	id := a.next
	a.next++
	return id
}

// PlanNode is one operator of a logical plan. The variant set is closed:
// optimizer passes dispatch with type switches, and an unhandled variant in
// a place that must be exhaustive is an internal error.
//
// Nodes are immutable. Rewrites build fresh nodes bottom-up and share
// unchanged subtrees, so an unchanged result is detected by pointer
// identity, never by value comparison.
type PlanNode interface {
	// ID returns the node's id.
	ID() PlanNodeID
	// Children returns the node's inputs, leftmost first.
	Children() []PlanNode
	// OutputSymbols returns the columns the node produces, in order.
	OutputSymbols() []expression.Symbol
}

// rewriteChildren applies fn to every child of node and reconstructs the
// node only when some child changed identity. Unchanged nodes are returned
// as-is so callers can short-circuit on pointer equality.
func rewriteChildren(node PlanNode, fn func(PlanNode) (PlanNode, error)) (PlanNode, error) {
	children := node.Children()
	if len(children) == 0 {
		return node, nil
	}
	rewritten := make([]PlanNode, len(children))
	changed := false
	for i, child := range children {
		newChild, err := fn(child)
		if err != nil {
			return nil, err
		}
		rewritten[i] = newChild
		if newChild != child {
			changed = true
		}
	}
	if !changed {
		return node, nil
	}
	return withChildren(node, rewritten)
}

// withChildren reconstructs node with new children, keeping everything else.
func withChildren(node PlanNode, children []PlanNode) (PlanNode, error) {
	switch x := node.(type) {
	case *JoinNode:
		return &JoinNode{
			id:              x.id,
			joinType:        x.joinType,
			left:            children[0],
			right:           children[1],
			criteria:        x.criteria,
			outputSymbols:   x.outputSymbols,
			filter:          x.filter,
			leftHashSymbol:  x.leftHashSymbol,
			rightHashSymbol: x.rightHashSymbol,
		}, nil
	case *ProjectionNode:
		return &ProjectionNode{id: x.id, child: children[0], assignments: x.assignments}, nil
	case *FilterNode:
		return &FilterNode{id: x.id, child: children[0], predicate: x.predicate}, nil
	case *TableScanNode, *ValuesNode, *GroupReference:
		return node, nil
	default:
		return nil, errors.Errorf("unexpected plan node type %T in rewrite", node)
	}
}
