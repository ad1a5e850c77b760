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

	"github.com/td-commit-queue/presto/sessionctx"
)

// Estimate is a numeric estimate that may be unknown. Unknown is a
// first-class value, never conflated with zero or NaN: passes consulting an
// unknown estimate skip that decision criterion.
type Estimate struct {
	value float64
	known bool
}

// NewEstimate builds a known estimate.
func NewEstimate(value float64) Estimate {
	return Estimate{value: value, known: true}
}

// UnknownEstimate builds the unknown sentinel.
func UnknownEstimate() Estimate {
	return Estimate{}
}

// IsUnknown reports whether the estimate carries no value.
func (e Estimate) IsUnknown() bool {
	return !e.known
}

// Value returns the estimate's value; only meaningful when !IsUnknown.
func (e Estimate) Value() float64 {
	return e.value
}

func (e Estimate) String() string {
	if !e.known {
		return "?"
	}
	return fmt.Sprintf("%g", e.value)
}

// PlanNodeCost is the cost oracle's estimate for one plan subtree.
type PlanNodeCost struct {
	OutputRowCount    Estimate
	OutputSizeInBytes Estimate
}

// UnknownPlanNodeCost is the cost with both estimates unknown.
var UnknownPlanNodeCost = PlanNodeCost{}

// CostCalculator supplies per-subtree output estimates. It is external to
// this core: implementations are side-effect-free, safe to call repeatedly
// for the same subtree, and responsible for their own memoization.
type CostCalculator interface {
	CalculateCostForNode(sctx sessionctx.Context, node PlanNode) PlanNodeCost
}
