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
	"fmt"

	"github.com/pingcap/errors"

	"github.com/td-commit-queue/presto/expression"
)

// Global describes how a subtree's output is spread across the cluster: an
// optional node-level partitioning, an optional stream-level partitioning and
// a replication mode. A missing partitioning means "partitioned by some
// unknown scheme", which is distinct from a single partition.
//
// Partitioning on zero columns (or effectively zero, once constants are
// folded in) sends all rows to one node or stream; the plan may still run on
// many servers, with only one of them receiving data.
type Global struct {
	nodePartitioning   *Partitioning
	streamPartitioning *Partitioning
	replication        Replication
}

// SingleStreamPartition is the Global of a plan running as one stream on a
// single worker node.
func SingleStreamPartition() Global {
	return PartitionedOn(SingleDistribution, nil, []expression.Symbol{})
}

// CoordinatorSingleStreamPartition is the Global of a plan running as one
// stream on the coordinator.
func CoordinatorSingleStreamPartition() Global {
	single := NewPartitioning(CoordinatorDistribution, nil)
	stream := NewPartitioning(SourceDistribution, nil)
	return Global{nodePartitioning: &single, streamPartitioning: &stream}
}

// ArbitraryPartition is the Global of a plan partitioned by an unknown
// scheme at both levels.
func ArbitraryPartition() Global {
	return Global{}
}

// PartitionedOn builds a Global node-partitioned on the handle and columns.
// A nil streamColumns leaves the stream partitioning unknown.
func PartitionedOn(handle *PartitioningHandle, nodeColumns []expression.Symbol, streamColumns []expression.Symbol) Global {
	node := NewPartitioning(handle, nodeColumns)
	g := Global{nodePartitioning: &node}
	if streamColumns != nil {
		stream := NewPartitioning(SourceDistribution, streamColumns)
		g.streamPartitioning = &stream
	}
	return g
}

// PartitionedOnPartitioning builds a Global from prebuilt partitionings.
func PartitionedOnPartitioning(nodePartitioning Partitioning, streamPartitioning *Partitioning) Global {
	return Global{nodePartitioning: &nodePartitioning, streamPartitioning: streamPartitioning}
}

// StreamPartitionedOn builds a Global with only the stream partitioning
// known.
func StreamPartitionedOn(streamColumns []expression.Symbol) Global {
	stream := NewPartitioning(SourceDistribution, streamColumns)
	return Global{streamPartitioning: &stream}
}

// WithReplication returns a copy with the replication mode replaced. The
// mode must be compatible with the column count of every known partitioning;
// an incompatible combination is a planner bug surfaced at construction.
func (g Global) WithReplication(replication Replication) (Global, error) {
	for _, partitioning := range []*Partitioning{g.nodePartitioning, g.streamPartitioning} {
		if partitioning == nil {
			continue
		}
		if count := partitioning.Columns().Len(); !replication.IsCompatibleWithPartitioningColumns(count) {
			return Global{}, errors.Errorf("replication %s cannot be used with %d partitioning columns", replication, count)
		}
	}
	return Global{nodePartitioning: g.nodePartitioning, streamPartitioning: g.streamPartitioning, replication: replication}, nil
}

// Replication returns the replication mode.
func (g Global) Replication() Replication {
	return g.replication
}

func (g Global) isSingleNode() bool {
	return g.nodePartitioning != nil && g.nodePartitioning.Handle().IsSingleNode()
}

func (g Global) isCoordinatorOnly() bool {
	return g.nodePartitioning != nil && g.nodePartitioning.Handle().IsCoordinatorOnly()
}

func (g Global) isNodePartitionedOn(columns, constants expression.SymbolSet, replication Replication) bool {
	return g.nodePartitioning != nil &&
		g.nodePartitioning.IsPartitionedOn(columns, constants) &&
		g.replication == replication
}

func (g Global) isNodePartitionedOnExact(partitioning Partitioning, replication Replication) bool {
	return g.nodePartitioning != nil &&
		g.nodePartitioning.Equal(partitioning) &&
		g.replication == replication
}

func (g Global) isNodePartitionedWith(
	other Global,
	symbolMappings func(expression.Symbol) expression.SymbolSet,
	leftConstant ConstantLookup,
	rightConstant ConstantLookup,
) bool {
	return g.nodePartitioning != nil &&
		other.nodePartitioning != nil &&
		g.nodePartitioning.IsPartitionedWith(*other.nodePartitioning, symbolMappings, leftConstant, rightConstant) &&
		g.replication == other.replication
}

func (g Global) isStreamPartitionedOn(columns, constants expression.SymbolSet, replication Replication) bool {
	return g.streamPartitioning != nil &&
		g.streamPartitioning.IsPartitionedOn(columns, constants) &&
		g.replication == replication
}

// isEffectivelySingleStream: replicated data occupies multiple nodes even
// when the partitioning resolves to a single logical partition.
func (g Global) isEffectivelySingleStream(constants expression.SymbolSet) bool {
	return g.streamPartitioning != nil &&
		g.streamPartitioning.IsEffectivelySinglePartition(constants) &&
		g.replication.ReplicatesNothing()
}

// isStreamRepartitionEffective: an ineffective repartition must never run on
// replicated data, because it would silently deduplicate the replicas.
func (g Global) isStreamRepartitionEffective(keys []expression.Symbol, constants expression.SymbolSet) bool {
	return (g.streamPartitioning == nil || g.streamPartitioning.IsRepartitionEffective(keys, constants)) &&
		g.replication.ReplicatesNothing()
}

func (g Global) translate(translator SymbolTranslator, constants ConstantLookup) Global {
	result := Global{replication: g.replication}
	if g.nodePartitioning != nil {
		if translated, ok := g.nodePartitioning.TranslateWithConstants(translator, constants); ok {
			result.nodePartitioning = &translated
		}
	}
	if g.streamPartitioning != nil {
		if translated, ok := g.streamPartitioning.TranslateWithConstants(translator, constants); ok {
			result.streamPartitioning = &translated
		}
	}
	return result
}

// NodePartitioning returns the node-level partitioning, if known.
func (g Global) NodePartitioning() (Partitioning, bool) {
	if g.nodePartitioning == nil {
		return Partitioning{}, false
	}
	return *g.nodePartitioning, true
}

// Equal reports structural equality.
func (g Global) Equal(other Global) bool {
	return partitioningPtrEqual(g.nodePartitioning, other.nodePartitioning) &&
		partitioningPtrEqual(g.streamPartitioning, other.streamPartitioning) &&
		g.replication == other.replication
}

func partitioningPtrEqual(a, b *Partitioning) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || a.Equal(*b)
}

func (g Global) String() string {
	node, stream := "<unknown>", "<unknown>"
	if g.nodePartitioning != nil {
		node = g.nodePartitioning.String()
	}
	if g.streamPartitioning != nil {
		stream = g.streamPartitioning.String()
	}
	return fmt.Sprintf("Global{node: %s, stream: %s, replication: %s}", node, stream, g.replication)
}

// ActualProperties aggregates everything known about the rows a plan subtree
// produces: the Global distribution, the local (sort/grouping) properties
// within each stream, and the columns known to hold a single constant value.
//
// Construction always re-normalizes: the constant keys are folded into the
// local-property list as leading constant properties and the list is pruned,
// so two ActualProperties built from equivalent inputs in different
// representations compare equal.
type ActualProperties struct {
	global          Global
	localProperties []LocalProperty
	constants       map[expression.Symbol]expression.NullableValue
}

// NewActualProperties builds properties holding only a Global.
func NewActualProperties(global Global) ActualProperties {
	return newActualProperties(global, nil, nil)
}

func newActualProperties(
	global Global,
	localProperties []LocalProperty,
	constants map[expression.Symbol]expression.NullableValue,
) ActualProperties {
	// The constants map implies a constant property in localProperties, but
	// not vice versa. Fold the map keys in with any leading constants before
	// normalizing.
	leading := ExtractLeadingConstants(localProperties)
	rest := StripLeadingConstants(localProperties)
	for key := range constants {
		leading.Insert(key)
	}

	merged := make([]LocalProperty, 0, leading.Len()+len(rest))
	for _, s := range leading.Sorted() {
		merged = append(merged, NewConstantProperty(s))
	}
	merged = append(merged, rest...)

	constantsCopy := make(map[expression.Symbol]expression.NullableValue, len(constants))
	for key, value := range constants {
		constantsCopy[key] = value
	}

	return ActualProperties{
		global:          global,
		localProperties: NormalizeAndPrune(merged),
		constants:       constantsCopy,
	}
}

// WithLocalProperties returns a copy with the local properties replaced and
// re-normalized.
func (p ActualProperties) WithLocalProperties(localProperties []LocalProperty) ActualProperties {
	return newActualProperties(p.global, localProperties, p.constants)
}

// WithConstants returns a copy with the constants map replaced and the local
// properties re-normalized against it.
func (p ActualProperties) WithConstants(constants map[expression.Symbol]expression.NullableValue) ActualProperties {
	return newActualProperties(p.global, p.localProperties, constants)
}

// WithGlobal returns a copy with the Global replaced.
func (p ActualProperties) WithGlobal(global Global) ActualProperties {
	return newActualProperties(global, p.localProperties, p.constants)
}

// WithReplication returns a copy with the Global's replication replaced,
// subject to the same compatibility check as Global.WithReplication.
func (p ActualProperties) WithReplication(replication Replication) (ActualProperties, error) {
	global, err := p.global.WithReplication(replication)
	if err != nil {
		return ActualProperties{}, err
	}
	return newActualProperties(global, p.localProperties, p.constants), nil
}

// IsCoordinatorOnly reports whether the plan executes only on the
// coordinator.
func (p ActualProperties) IsCoordinatorOnly() bool {
	return p.global.isCoordinatorOnly()
}

// IsSingleNode reports whether the plan executes on a single node.
func (p ActualProperties) IsSingleNode() bool {
	return p.global.isSingleNode()
}

// Replication returns the replication mode.
func (p ActualProperties) Replication() Replication {
	return p.global.Replication()
}

// IsNodePartitionedOn reports whether the node partitioning is covered by
// columns (with known constants acting as wildcards) under the given
// replication mode.
func (p ActualProperties) IsNodePartitionedOn(columns expression.SymbolSet, replication Replication) bool {
	return p.global.isNodePartitionedOn(columns, p.constantKeys(), replication)
}

// IsNodePartitionedOnExact reports whether the node partitioning equals
// partitioning structurally under the given replication mode.
func (p ActualProperties) IsNodePartitionedOnExact(partitioning Partitioning, replication Replication) bool {
	return p.global.isNodePartitionedOnExact(partitioning, replication)
}

// IsNodePartitionedWith reports whether this subtree and other are
// co-partitioned under the symbol-equivalence relation, so a join of the two
// needs no shuffle.
func (p ActualProperties) IsNodePartitionedWith(other ActualProperties, symbolMappings func(expression.Symbol) expression.SymbolSet) bool {
	return p.global.isNodePartitionedWith(
		other.global,
		symbolMappings,
		p.constantLookup(),
		other.constantLookup(),
	)
}

// IsStreamPartitionedOn reports whether the stream partitioning is covered
// by columns under the given replication mode.
func (p ActualProperties) IsStreamPartitionedOn(columns expression.SymbolSet, replication Replication) bool {
	return p.global.isStreamPartitionedOn(columns, p.constantKeys(), replication)
}

// IsEffectivelySingleStream reports whether all data lands in one stream.
func (p ActualProperties) IsEffectivelySingleStream() bool {
	return p.global.isEffectivelySingleStream(p.constantKeys())
}

// IsStreamRepartitionEffective reports whether repartitioning the streams on
// keys would change the physical layout.
func (p ActualProperties) IsStreamRepartitionEffective(keys []expression.Symbol) bool {
	return p.global.isStreamRepartitionEffective(keys, p.constantKeys())
}

// Translate remaps every symbol through translator. Properties whose symbols
// have no translation are dropped, conservatively losing information rather
// than producing an invalid property.
func (p ActualProperties) Translate(translator SymbolTranslator) ActualProperties {
	translatedConstants := make(map[expression.Symbol]expression.NullableValue, len(p.constants))
	for key, value := range p.constants {
		if translated, ok := translator(key); ok {
			translatedConstants[translated] = value
		}
	}
	return newActualProperties(
		p.global.translate(translator, p.constantLookup()),
		TranslateLocalProperties(p.localProperties, translator),
		translatedConstants,
	)
}

// NodePartitioning returns the node-level partitioning, if known.
func (p ActualProperties) NodePartitioning() (Partitioning, bool) {
	return p.global.NodePartitioning()
}

// Constants returns a copy of the known-constant mapping.
func (p ActualProperties) Constants() map[expression.Symbol]expression.NullableValue {
	result := make(map[expression.Symbol]expression.NullableValue, len(p.constants))
	for key, value := range p.constants {
		result[key] = value
	}
	return result
}

// LocalProperties returns the normalized local-property list.
func (p ActualProperties) LocalProperties() []LocalProperty {
	return p.localProperties
}

// Equal reports structural equality. Constant values are ignored; only the
// constant keys matter, because downstream decisions depend on which columns
// are pinned, not on what they are pinned to.
func (p ActualProperties) Equal(other ActualProperties) bool {
	return p.global.Equal(other.global) &&
		LocalPropertiesEqual(p.localProperties, other.localProperties) &&
		p.constantKeys().Equal(other.constantKeys())
}

func (p ActualProperties) constantKeys() expression.SymbolSet {
	keys := make(expression.SymbolSet, len(p.constants))
	for key := range p.constants {
		keys.Insert(key)
	}
	return keys
}

func (p ActualProperties) constantLookup() ConstantLookup {
	return func(s expression.Symbol) (expression.NullableValue, bool) {
		value, ok := p.constants[s]
		return value, ok
	}
}

func (p ActualProperties) String() string {
	return fmt.Sprintf("ActualProperties{global: %s, local: %s, constants: %s}",
		p.global, formatLocalProperties(p.localProperties), p.constantKeys())
}
