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
	"strings"
)

// ToString renders a plan as a compact one-line description, used by logs
// and test assertions. Joins render their children in braces so side order
// is visible: INNERJoin{Scan(a)->Scan(b)}(a.x=b.x).
func ToString(p PlanNode) string {
	strs, _ := toString(p, []string{}, []int{})
	return strings.Join(strs, "->")
}

func toString(in PlanNode, strs []string, idxs []int) ([]string, []int) {
	if len(in.Children()) > 1 {
		idxs = append(idxs, len(strs))
	}
	for _, c := range in.Children() {
		strs, idxs = toString(c, strs, idxs)
	}

	var str string
	switch x := in.(type) {
	case *TableScanNode:
		str = fmt.Sprintf("Scan(%s)", x.Table())
	case *JoinNode:
		last := len(idxs) - 1
		idx := idxs[last]
		children := strs[idx:]
		strs = strs[:idx]
		idxs = idxs[:last]
		str = x.JoinType().String() + "Join{" + strings.Join(children, "->") + "}"
		for _, clause := range x.Criteria() {
			str += fmt.Sprintf("(%s)", clause)
		}
	case *ProjectionNode:
		if x.IsIdentity() {
			str = "Projection"
		} else {
			parts := make([]string, 0, len(x.Assignments()))
			for _, a := range x.Assignments() {
				parts = append(parts, fmt.Sprintf("%s<-%s", a.Output, a.Expr))
			}
			str = "Projection(" + strings.Join(parts, ",") + ")"
		}
	case *FilterNode:
		str = fmt.Sprintf("Filter(%s)", x.Predicate())
	case *ValuesNode:
		str = fmt.Sprintf("Values(%d)", len(x.Rows()))
	case *GroupReference:
		str = fmt.Sprintf("Group#%d", x.GroupID())
	default:
		str = fmt.Sprintf("%T", in)
	}
	strs = append(strs, str)
	return strs, idxs
}
