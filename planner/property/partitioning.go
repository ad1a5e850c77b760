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

package property

import (
	"strings"

	"github.com/td-commit-queue/presto/expression"
)

// PartitioningHandle identifies a distribution strategy. Handles are opaque
// to this core except for the single-node and coordinator-only bits, which
// the property queries need. The system handles below are singletons and
// compared by pointer.
type PartitioningHandle struct {
	name            string
	singleNode      bool
	coordinatorOnly bool
}

// System distribution handles. A plan fragment partitioned on
// SingleDistribution or CoordinatorDistribution with zero partitioning
// columns runs as a single stream on one node.
var (
	SingleDistribution      = &PartitioningHandle{name: "SINGLE", singleNode: true}
	CoordinatorDistribution = &PartitioningHandle{name: "COORDINATOR_ONLY", singleNode: true, coordinatorOnly: true}
	SourceDistribution      = &PartitioningHandle{name: "SOURCE"}
	FixedHashDistribution   = &PartitioningHandle{name: "FIXED_HASH"}
	ArbitraryDistribution   = &PartitioningHandle{name: "FIXED_ARBITRARY"}
)

// IsSingleNode reports whether the handle pins execution to one node.
func (h *PartitioningHandle) IsSingleNode() bool {
	return h.singleNode
}

// IsCoordinatorOnly reports whether the handle pins execution to the
// coordinator.
func (h *PartitioningHandle) IsCoordinatorOnly() bool {
	return h.coordinatorOnly
}

func (h *PartitioningHandle) String() string {
	return h.name
}

// ArgumentBinding is one positional argument of a Partitioning: either a
// column symbol or a constant. Constant arguments arise when translation
// discovers that a partitioning column is pinned to a single value.
type ArgumentBinding struct {
	symbol   expression.Symbol
	constant *expression.NullableValue
}

// SymbolArgument binds the argument to a column.
func SymbolArgument(s expression.Symbol) ArgumentBinding {
	return ArgumentBinding{symbol: s}
}

// ConstantArgument binds the argument to a fixed value.
func ConstantArgument(v expression.NullableValue) ArgumentBinding {
	return ArgumentBinding{constant: &v}
}

// IsConstant reports whether the argument is a constant binding.
func (b ArgumentBinding) IsConstant() bool {
	return b.constant != nil
}

// Symbol returns the bound column. Only meaningful when !IsConstant.
func (b ArgumentBinding) Symbol() expression.Symbol {
	return b.symbol
}

// Constant returns the bound value. Only meaningful when IsConstant.
func (b ArgumentBinding) Constant() expression.NullableValue {
	return *b.constant
}

// Equal reports structural equality of two bindings.
func (b ArgumentBinding) Equal(other ArgumentBinding) bool {
	if b.IsConstant() != other.IsConstant() {
		return false
	}
	if b.IsConstant() {
		return b.constant.Equal(*other.constant)
	}
	return b.symbol == other.symbol
}

func (b ArgumentBinding) String() string {
	if b.IsConstant() {
		return b.constant.String()
	}
	return b.symbol.String()
}

// Partitioning describes how rows are routed: a handle naming the strategy
// plus the ordered arguments that feed it. Partitioning values are immutable.
type Partitioning struct {
	handle    *PartitioningHandle
	arguments []ArgumentBinding
}

// NewPartitioning builds a partitioning over plain column arguments.
func NewPartitioning(handle *PartitioningHandle, columns []expression.Symbol) Partitioning {
	arguments := make([]ArgumentBinding, 0, len(columns))
	for _, c := range columns {
		arguments = append(arguments, SymbolArgument(c))
	}
	return Partitioning{handle: handle, arguments: arguments}
}

// NewPartitioningWithArguments builds a partitioning over mixed
// symbol/constant arguments.
func NewPartitioningWithArguments(handle *PartitioningHandle, arguments []ArgumentBinding) Partitioning {
	return Partitioning{handle: handle, arguments: append([]ArgumentBinding(nil), arguments...)}
}

// Handle returns the distribution handle.
func (p Partitioning) Handle() *PartitioningHandle {
	return p.handle
}

// Arguments returns the positional argument bindings.
func (p Partitioning) Arguments() []ArgumentBinding {
	return p.arguments
}

// Columns returns the set of column symbols among the arguments.
func (p Partitioning) Columns() expression.SymbolSet {
	columns := make(expression.SymbolSet, len(p.arguments))
	for _, arg := range p.arguments {
		if !arg.IsConstant() {
			columns.Insert(arg.Symbol())
		}
	}
	return columns
}

// IsPartitionedOn reports whether every partitioning column is covered by
// columns or pinned by knownConstants. A constant column cannot introduce
// skew, so it acts as a wildcard. Argument order is irrelevant.
func (p Partitioning) IsPartitionedOn(columns, knownConstants expression.SymbolSet) bool {
	for _, arg := range p.arguments {
		if arg.IsConstant() {
			continue
		}
		s := arg.Symbol()
		if !knownConstants.Contains(s) && !columns.Contains(s) {
			return false
		}
	}
	return true
}

// IsEffectivelySinglePartition reports whether, modulo known constants, the
// partitioning routes every row to the same partition.
func (p Partitioning) IsEffectivelySinglePartition(knownConstants expression.SymbolSet) bool {
	return p.IsPartitionedOn(expression.SymbolSet{}, knownConstants)
}

// IsRepartitionEffective reports whether repartitioning on keys would change
// the physical layout. It is ineffective only when the current non-constant
// partitioning columns are exactly the non-constant keys.
func (p Partitioning) IsRepartitionEffective(keys []expression.Symbol, knownConstants expression.SymbolSet) bool {
	keysWithoutConstants := make(expression.SymbolSet, len(keys))
	for _, key := range keys {
		if !knownConstants.Contains(key) {
			keysWithoutConstants.Insert(key)
		}
	}
	nonConstantArgs := make(expression.SymbolSet, len(p.arguments))
	for _, arg := range p.arguments {
		if !arg.IsConstant() && !knownConstants.Contains(arg.Symbol()) {
			nonConstantArgs.Insert(arg.Symbol())
		}
	}
	return !nonConstantArgs.Equal(keysWithoutConstants)
}

// ConstantLookup resolves a symbol to its known constant value, if any.
type ConstantLookup func(expression.Symbol) (expression.NullableValue, bool)

// IsPartitionedWith reports whether two partitionings are structurally
// equivalent under a symbol-equivalence relation, meaning the two producing
// subtrees are already co-partitioned and can be joined without a shuffle.
// Position by position, either both arguments resolve to equal constants, or
// the left symbol maps onto the right symbol under symbolMappings.
func (p Partitioning) IsPartitionedWith(
	right Partitioning,
	symbolMappings func(expression.Symbol) expression.SymbolSet,
	leftConstant ConstantLookup,
	rightConstant ConstantLookup,
) bool {
	if p.handle != right.handle {
		return false
	}
	if len(p.arguments) != len(right.arguments) {
		return false
	}
	for i, leftArg := range p.arguments {
		rightArg := right.arguments[i]
		leftValue, leftKnown := resolveConstant(leftArg, leftConstant)
		rightValue, rightKnown := resolveConstant(rightArg, rightConstant)
		if leftKnown && rightKnown {
			if leftValue.Equal(rightValue) {
				continue
			}
			return false
		}
		if leftArg.IsConstant() || rightArg.IsConstant() {
			return false
		}
		if !symbolMappings(leftArg.Symbol()).Contains(rightArg.Symbol()) {
			return false
		}
	}
	return true
}

func resolveConstant(arg ArgumentBinding, lookup ConstantLookup) (expression.NullableValue, bool) {
	if arg.IsConstant() {
		return arg.Constant(), true
	}
	if lookup == nil {
		return expression.NullableValue{}, false
	}
	return lookup(arg.Symbol())
}

// SymbolTranslator remaps a symbol, reporting whether a mapping exists.
type SymbolTranslator func(expression.Symbol) (expression.Symbol, bool)

// Translate remaps every column argument through translator. When a column
// has no translation the partitioning as a whole is untranslatable and ok is
// false; callers drop the property rather than keep an invalid one.
func (p Partitioning) Translate(translator SymbolTranslator) (Partitioning, bool) {
	return p.TranslateWithConstants(translator, nil)
}

// TranslateWithConstants is Translate with a fallback: a column that has no
// translation but whose value is a known constant becomes a constant
// argument instead of failing the whole translation.
func (p Partitioning) TranslateWithConstants(translator SymbolTranslator, constants ConstantLookup) (Partitioning, bool) {
	arguments := make([]ArgumentBinding, 0, len(p.arguments))
	for _, arg := range p.arguments {
		if arg.IsConstant() {
			arguments = append(arguments, arg)
			continue
		}
		if translated, ok := translator(arg.Symbol()); ok {
			arguments = append(arguments, SymbolArgument(translated))
			continue
		}
		if constants != nil {
			if value, ok := constants(arg.Symbol()); ok {
				arguments = append(arguments, ConstantArgument(value))
				continue
			}
		}
		return Partitioning{}, false
	}
	return Partitioning{handle: p.handle, arguments: arguments}, true
}

// Equal reports structural equality.
func (p Partitioning) Equal(other Partitioning) bool {
	if p.handle != other.handle || len(p.arguments) != len(other.arguments) {
		return false
	}
	for i, arg := range p.arguments {
		if !arg.Equal(other.arguments[i]) {
			return false
		}
	}
	return true
}

func (p Partitioning) String() string {
	var sb strings.Builder
	sb.WriteString(p.handle.String())
	sb.WriteByte('[')
	for i, arg := range p.arguments {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
