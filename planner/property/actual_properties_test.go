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

package property_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/td-commit-queue/presto/expression"
	"github.com/td-commit-queue/presto/planner/property"
)

func constant(v int64) expression.NullableValue {
	return expression.NonNullValue("bigint", v)
}

func TestConstantsFoldIntoLocalProperties(t *testing.T) {
	props := property.NewActualProperties(property.ArbitraryPartition()).
		WithLocalProperties([]property.LocalProperty{property.NewSortingProperty("b", property.Ascending)}).
		WithConstants(map[expression.Symbol]expression.NullableValue{"s": constant(1)})

	local := props.LocalProperties()
	require.NotEmpty(t, local)
	require.True(t, local[0].Equal(property.NewConstantProperty("s")))
	// The sort property survives behind the folded constant.
	require.True(t, local[len(local)-1].Equal(property.NewSortingProperty("b", property.Ascending)))
}

func TestConstantColumnBehavesAsPartitioningColumn(t *testing.T) {
	global := property.PartitionedOn(property.FixedHashDistribution, symbols("s"), nil)
	props := property.NewActualProperties(global).
		WithConstants(map[expression.Symbol]expression.NullableValue{"s": constant(42)})

	// No concrete columns offered, yet the partitioning is covered because
	// its only column is pinned.
	require.True(t, props.IsNodePartitionedOn(expression.SymbolSet{}, property.ReplicateNothing))
	require.False(t, props.IsNodePartitionedOn(expression.SymbolSet{}, property.ReplicateNulls))
}

func TestNormalizationIsOrderInsensitive(t *testing.T) {
	a := property.NewActualProperties(property.ArbitraryPartition()).
		WithLocalProperties([]property.LocalProperty{
			property.NewConstantProperty("k"),
			property.NewSortingProperty("b", property.Descending),
		})
	b := property.NewActualProperties(property.ArbitraryPartition()).
		WithLocalProperties([]property.LocalProperty{property.NewSortingProperty("b", property.Descending)}).
		WithConstants(map[expression.Symbol]expression.NullableValue{"k": constant(9)})

	// One expressed the constant as a leading local property, the other via
	// the constants map; local properties normalize identically.
	require.True(t, property.LocalPropertiesEqual(a.LocalProperties(), b.LocalProperties()))
}

func TestTranslateRoundTrip(t *testing.T) {
	global := property.PartitionedOn(property.FixedHashDistribution, symbols("a", "b"), symbols("a"))
	props := property.NewActualProperties(global).
		WithLocalProperties([]property.LocalProperty{property.NewSortingProperty("a", property.Ascending)}).
		WithConstants(map[expression.Symbol]expression.NullableValue{"b": constant(5)})

	forward := map[expression.Symbol]expression.Symbol{"a": "x", "b": "y"}
	backward := map[expression.Symbol]expression.Symbol{"x": "a", "y": "b"}

	roundTripped := props.Translate(mapTranslator(forward)).Translate(mapTranslator(backward))
	require.True(t, props.Equal(roundTripped))
}

func TestTranslateDropsUnmappableProperties(t *testing.T) {
	global := property.PartitionedOn(property.FixedHashDistribution, symbols("a"), nil)
	props := property.NewActualProperties(global).
		WithLocalProperties([]property.LocalProperty{property.NewSortingProperty("a", property.Ascending)})

	translated := props.Translate(mapTranslator(nil))
	_, known := translated.NodePartitioning()
	require.False(t, known)
	require.Empty(t, translated.LocalProperties())
}

func TestIsEffectivelySingleStream(t *testing.T) {
	singleStream := property.NewActualProperties(property.SingleStreamPartition())
	require.True(t, singleStream.IsEffectivelySingleStream())

	// A single-column stream partitioning becomes single stream once the
	// column is pinned.
	partitioned := property.NewActualProperties(property.StreamPartitionedOn(symbols("a")))
	require.False(t, partitioned.IsEffectivelySingleStream())
	pinned := partitioned.WithConstants(map[expression.Symbol]expression.NullableValue{"a": constant(1)})
	require.True(t, pinned.IsEffectivelySingleStream())

	// Replication always defeats single-stream, whatever the partitioning.
	for _, replication := range []property.Replication{property.ReplicateNulls, property.ReplicateNullsAndAny} {
		replicated, err := pinned.WithReplication(replication)
		require.NoError(t, err)
		require.False(t, replicated.IsEffectivelySingleStream())
	}
}

func TestIsStreamRepartitionEffective(t *testing.T) {
	// Unknown stream partitioning: repartitioning always changes something.
	unknown := property.NewActualProperties(property.ArbitraryPartition())
	require.True(t, unknown.IsStreamRepartitionEffective(symbols("a")))

	matching := property.NewActualProperties(property.StreamPartitionedOn(symbols("a")))
	require.False(t, matching.IsStreamRepartitionEffective(symbols("a")))
	require.True(t, matching.IsStreamRepartitionEffective(symbols("b")))

	// Replicated rows must never be deduplicated by a repartition that
	// would otherwise be a no-op.
	replicated, err := matching.WithReplication(property.ReplicateNulls)
	require.NoError(t, err)
	require.False(t, replicated.IsStreamRepartitionEffective(symbols("b")))
}

func TestWithReplicationValidation(t *testing.T) {
	twoColumns := property.NewActualProperties(
		property.PartitionedOn(property.FixedHashDistribution, symbols("a", "b"), nil))
	_, err := twoColumns.WithReplication(property.ReplicateNulls)
	require.Error(t, err)

	oneColumn := property.NewActualProperties(
		property.PartitionedOn(property.FixedHashDistribution, symbols("a"), nil))
	replicated, err := oneColumn.WithReplication(property.ReplicateNullsAndAny)
	require.NoError(t, err)
	require.Equal(t, property.ReplicateNullsAndAny, replicated.Replication())
}

func TestEqualityIgnoresConstantValues(t *testing.T) {
	base := property.NewActualProperties(property.ArbitraryPartition())
	a := base.WithConstants(map[expression.Symbol]expression.NullableValue{"s": constant(1)})
	b := base.WithConstants(map[expression.Symbol]expression.NullableValue{"s": constant(2)})
	c := base.WithConstants(map[expression.Symbol]expression.NullableValue{"t": constant(1)})

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestSingleNodeAndCoordinatorOnly(t *testing.T) {
	single := property.NewActualProperties(property.SingleStreamPartition())
	require.True(t, single.IsSingleNode())
	require.False(t, single.IsCoordinatorOnly())

	coordinator := property.NewActualProperties(property.CoordinatorSingleStreamPartition())
	require.True(t, coordinator.IsSingleNode())
	require.True(t, coordinator.IsCoordinatorOnly())

	arbitrary := property.NewActualProperties(property.ArbitraryPartition())
	require.False(t, arbitrary.IsSingleNode())
}

func TestIsNodePartitionedWith(t *testing.T) {
	left := property.NewActualProperties(
		property.PartitionedOn(property.FixedHashDistribution, symbols("a"), nil))
	right := property.NewActualProperties(
		property.PartitionedOn(property.FixedHashDistribution, symbols("x"), nil))

	aToX := func(s expression.Symbol) expression.SymbolSet {
		if s == "a" {
			return expression.NewSymbolSet("x")
		}
		return expression.SymbolSet{}
	}
	require.True(t, left.IsNodePartitionedWith(right, aToX))

	// Unknown partitioning on either side can never be co-partitioned.
	unknown := property.NewActualProperties(property.ArbitraryPartition())
	require.False(t, left.IsNodePartitionedWith(unknown, aToX))
}
