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
	"slices"

	"github.com/pingcap/errors"

	"github.com/td-commit-queue/presto/expression"
)

// Replication describes which rows are duplicated to every node instead of
// being routed by partitioning key. Replicating null-keyed rows keeps outer
// and semi joins correct when the null key matches nothing.
type Replication int

// Replication modes.
const (
	// ReplicateNothing routes every row by its partitioning key.
	ReplicateNothing Replication = iota
	// ReplicateNullsAndAny replicates null-keyed rows and, as a fallback,
	// may replicate arbitrary rows.
	ReplicateNullsAndAny
	// ReplicateNulls replicates null-keyed rows only.
	ReplicateNulls
)

// ReplicatesNulls reports whether null-keyed rows go to every node.
func (r Replication) ReplicatesNulls() bool {
	return r == ReplicateNulls || r == ReplicateNullsAndAny
}

// ReplicatesAnyRow reports whether arbitrary rows may go to every node.
func (r Replication) ReplicatesAnyRow() bool {
	return r == ReplicateNullsAndAny
}

// ReplicatesNothing reports whether no row is replicated.
func (r Replication) ReplicatesNothing() bool {
	return !r.ReplicatesNulls() && !r.ReplicatesAnyRow()
}

// IsCompatibleWithPartitioningColumns reports whether the mode can be used
// with the given number of partitioning columns. Null replication is defined
// per key, so the null-replicating modes require at most one column.
func (r Replication) IsCompatibleWithPartitioningColumns(columnsCount int) bool {
	switch r {
	case ReplicateNothing:
		return true
	case ReplicateNullsAndAny, ReplicateNulls:
		return columnsCount <= 1
	default:
		return false
	}
}

func (r Replication) String() string {
	switch r {
	case ReplicateNothing:
		return "REPLICATE_NOTHING"
	case ReplicateNullsAndAny:
		return "REPLICATE_NULLS_AND_ANY"
	case ReplicateNulls:
		return "REPLICATE_NULLS"
	default:
		return fmt.Sprintf("Replication(%d)", int(r))
	}
}

// PartitioningScheme describes the concrete physical partitioning a plan
// producer must honor: the partitioning, the producer's output layout, an
// optional precomputed hash column, the replication mode, and an optional
// bucket-to-partition placement table. The scheme is validated on
// construction and never exists in an invalid state.
type PartitioningScheme struct {
	partitioning      Partitioning
	outputLayout      []expression.Symbol
	hashColumn        *expression.Symbol
	replication       Replication
	bucketToPartition []int
}

// NewPartitioningScheme builds a scheme with no hash column, no replication
// and no bucket map.
func NewPartitioningScheme(partitioning Partitioning, outputLayout []expression.Symbol) (*PartitioningScheme, error) {
	return NewPartitioningSchemeWithOptions(partitioning, outputLayout, nil, ReplicateNothing, nil)
}

// NewPartitioningSchemeWithOptions builds a fully specified scheme. A nil
// bucketToPartition means placement is not yet assigned.
func NewPartitioningSchemeWithOptions(
	partitioning Partitioning,
	outputLayout []expression.Symbol,
	hashColumn *expression.Symbol,
	replication Replication,
	bucketToPartition []int,
) (*PartitioningScheme, error) {
	layout := expression.NewSymbolSet(outputLayout...)
	columns := partitioning.Columns()
	for _, column := range columns.Sorted() {
		if !layout.Contains(column) {
			return nil, errors.Errorf("output layout %v does not include all partitioning columns %v", outputLayout, columns)
		}
	}
	if hashColumn != nil && !layout.Contains(*hashColumn) {
		return nil, errors.Errorf("output layout %v does not include hash column %s", outputLayout, *hashColumn)
	}
	if !replication.IsCompatibleWithPartitioningColumns(columns.Len()) {
		return nil, errors.Errorf("replication %s cannot be used with %d partitioning columns", replication, columns.Len())
	}
	return &PartitioningScheme{
		partitioning:      partitioning,
		outputLayout:      slices.Clone(outputLayout),
		hashColumn:        hashColumn,
		replication:       replication,
		bucketToPartition: slices.Clone(bucketToPartition),
	}, nil
}

// Partitioning returns the partitioning.
func (s *PartitioningScheme) Partitioning() Partitioning {
	return s.partitioning
}

// OutputLayout returns the producer's ordered output columns.
func (s *PartitioningScheme) OutputLayout() []expression.Symbol {
	return s.outputLayout
}

// HashColumn returns the precomputed hash column, if any.
func (s *PartitioningScheme) HashColumn() (expression.Symbol, bool) {
	if s.hashColumn == nil {
		return "", false
	}
	return *s.hashColumn, true
}

// Replication returns the replication mode.
func (s *PartitioningScheme) Replication() Replication {
	return s.replication
}

// BucketToPartition returns the bucket placement table, nil when unassigned.
func (s *PartitioningScheme) BucketToPartition() []int {
	return s.bucketToPartition
}

// WithBucketToPartition returns a copy overriding only the bucket placement
// table. Used once the scheduler has decided concrete node assignment.
func (s *PartitioningScheme) WithBucketToPartition(bucketToPartition []int) *PartitioningScheme {
	return &PartitioningScheme{
		partitioning:      s.partitioning,
		outputLayout:      s.outputLayout,
		hashColumn:        s.hashColumn,
		replication:       s.replication,
		bucketToPartition: slices.Clone(bucketToPartition),
	}
}

// TranslateOutputLayout remaps the scheme onto a new output layout after a
// projection renamed the visible columns. Positional correspondence with the
// old layout is required.
func (s *PartitioningScheme) TranslateOutputLayout(newOutputLayout []expression.Symbol) (*PartitioningScheme, error) {
	if len(newOutputLayout) != len(s.outputLayout) {
		return nil, errors.Errorf("new output layout has %d columns, want %d", len(newOutputLayout), len(s.outputLayout))
	}
	translator := func(symbol expression.Symbol) (expression.Symbol, bool) {
		idx := slices.Index(s.outputLayout, symbol)
		if idx < 0 {
			return "", false
		}
		return newOutputLayout[idx], true
	}
	newPartitioning, ok := s.partitioning.Translate(translator)
	if !ok {
		// Unreachable as long as the scheme invariant (partitioning columns
		// are a subset of the layout) holds.
		return nil, errors.Errorf("partitioning %s not covered by output layout %v", s.partitioning, s.outputLayout)
	}
	var newHashColumn *expression.Symbol
	if s.hashColumn != nil {
		translated := newOutputLayout[slices.Index(s.outputLayout, *s.hashColumn)]
		newHashColumn = &translated
	}
	return NewPartitioningSchemeWithOptions(newPartitioning, newOutputLayout, newHashColumn, s.replication, s.bucketToPartition)
}

// Equal reports structural equality. The hash column is deliberately
// excluded, matching the identity used by exchange planning.
func (s *PartitioningScheme) Equal(other *PartitioningScheme) bool {
	return s.partitioning.Equal(other.partitioning) &&
		slices.Equal(s.outputLayout, other.outputLayout) &&
		s.replication == other.replication &&
		slices.Equal(s.bucketToPartition, other.bucketToPartition)
}

func (s *PartitioningScheme) String() string {
	hash := "<none>"
	if s.hashColumn != nil {
		hash = s.hashColumn.String()
	}
	return fmt.Sprintf("PartitioningScheme{partitioning: %s, layout: %v, hash: %s, replication: %s}",
		s.partitioning, s.outputLayout, hash, s.replication)
}
