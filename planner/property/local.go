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
	"strings"

	"github.com/td-commit-queue/presto/expression"
)

// LocalProperty is an ordering or grouping constraint that holds within each
// stream of a plan subtree's output.
type LocalProperty interface {
	// Columns returns the symbols the property constrains.
	Columns() expression.SymbolSet
	// Translate remaps the property's symbols, reporting false when any
	// symbol has no translation and the property must be dropped.
	Translate(translator SymbolTranslator) (LocalProperty, bool)
	// withoutConstants simplifies the property given columns known to be
	// constant, reporting false when nothing of it remains.
	withoutConstants(constants expression.SymbolSet) (LocalProperty, bool)
	// Equal reports structural equality with another property.
	Equal(other LocalProperty) bool
	String() string
}

// ConstantProperty marks a column as having a single value in every row.
type ConstantProperty struct {
	column expression.Symbol
}

// NewConstantProperty builds a constant property for column.
func NewConstantProperty(column expression.Symbol) ConstantProperty {
	return ConstantProperty{column: column}
}

// Column returns the constant column.
func (p ConstantProperty) Column() expression.Symbol {
	return p.column
}

// Columns implements LocalProperty.
func (p ConstantProperty) Columns() expression.SymbolSet {
	return expression.NewSymbolSet(p.column)
}

// Translate implements LocalProperty.
func (p ConstantProperty) Translate(translator SymbolTranslator) (LocalProperty, bool) {
	if translated, ok := translator(p.column); ok {
		return ConstantProperty{column: translated}, true
	}
	return nil, false
}

func (p ConstantProperty) withoutConstants(constants expression.SymbolSet) (LocalProperty, bool) {
	if constants.Contains(p.column) {
		return nil, false
	}
	return p, true
}

// Equal implements LocalProperty.
func (p ConstantProperty) Equal(other LocalProperty) bool {
	o, ok := other.(ConstantProperty)
	return ok && o.column == p.column
}

func (p ConstantProperty) String() string {
	return fmt.Sprintf("C(%s)", p.column)
}

// SortOrder is the direction of a SortingProperty.
type SortOrder int

// Sort directions.
const (
	Ascending SortOrder = iota
	Descending
)

func (o SortOrder) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// SortingProperty states that rows are sorted on a column.
type SortingProperty struct {
	column expression.Symbol
	order  SortOrder
}

// NewSortingProperty builds a sorting property.
func NewSortingProperty(column expression.Symbol, order SortOrder) SortingProperty {
	return SortingProperty{column: column, order: order}
}

// Column returns the sort column.
func (p SortingProperty) Column() expression.Symbol {
	return p.column
}

// Order returns the sort direction.
func (p SortingProperty) Order() SortOrder {
	return p.order
}

// Columns implements LocalProperty.
func (p SortingProperty) Columns() expression.SymbolSet {
	return expression.NewSymbolSet(p.column)
}

// Translate implements LocalProperty.
func (p SortingProperty) Translate(translator SymbolTranslator) (LocalProperty, bool) {
	if translated, ok := translator(p.column); ok {
		return SortingProperty{column: translated, order: p.order}, true
	}
	return nil, false
}

func (p SortingProperty) withoutConstants(constants expression.SymbolSet) (LocalProperty, bool) {
	// Sorting on a constant column constrains nothing.
	if constants.Contains(p.column) {
		return nil, false
	}
	return p, true
}

// Equal implements LocalProperty.
func (p SortingProperty) Equal(other LocalProperty) bool {
	o, ok := other.(SortingProperty)
	return ok && o.column == p.column && o.order == p.order
}

func (p SortingProperty) String() string {
	return fmt.Sprintf("S(%s %s)", p.column, p.order)
}

// GroupingProperty states that rows with equal values on the columns are
// contiguous within each stream.
type GroupingProperty struct {
	columns expression.SymbolSet
}

// NewGroupingProperty builds a grouping property over columns.
func NewGroupingProperty(columns ...expression.Symbol) GroupingProperty {
	return GroupingProperty{columns: expression.NewSymbolSet(columns...)}
}

// Columns implements LocalProperty.
func (p GroupingProperty) Columns() expression.SymbolSet {
	return p.columns
}

// Translate implements LocalProperty.
func (p GroupingProperty) Translate(translator SymbolTranslator) (LocalProperty, bool) {
	translated := make(expression.SymbolSet, len(p.columns))
	for _, column := range p.columns.Sorted() {
		t, ok := translator(column)
		if !ok {
			return nil, false
		}
		translated.Insert(t)
	}
	return GroupingProperty{columns: translated}, true
}

func (p GroupingProperty) withoutConstants(constants expression.SymbolSet) (LocalProperty, bool) {
	remaining := make(expression.SymbolSet, len(p.columns))
	for s := range p.columns {
		if !constants.Contains(s) {
			remaining.Insert(s)
		}
	}
	if remaining.Len() == 0 {
		return nil, false
	}
	return GroupingProperty{columns: remaining}, true
}

// Equal implements LocalProperty.
func (p GroupingProperty) Equal(other LocalProperty) bool {
	o, ok := other.(GroupingProperty)
	return ok && o.columns.Equal(p.columns)
}

func (p GroupingProperty) String() string {
	return fmt.Sprintf("G%s", p.columns)
}

// ExtractLeadingConstants returns the columns of the constant properties at
// the head of the list.
func ExtractLeadingConstants(properties []LocalProperty) expression.SymbolSet {
	constants := expression.SymbolSet{}
	for _, p := range properties {
		c, ok := p.(ConstantProperty)
		if !ok {
			break
		}
		constants.Insert(c.column)
	}
	return constants
}

// StripLeadingConstants returns the list with the leading constant
// properties removed.
func StripLeadingConstants(properties []LocalProperty) []LocalProperty {
	for i, p := range properties {
		if _, ok := p.(ConstantProperty); !ok {
			return properties[i:]
		}
	}
	return nil
}

// NormalizeAndPrune canonicalizes a local-property list: constant properties
// are deduplicated, properties already implied by known constants are
// simplified or dropped, and adjacent duplicates are removed. Two lists
// describing the same constraints normalize to the same result regardless of
// input order or representation.
func NormalizeAndPrune(properties []LocalProperty) []LocalProperty {
	constants := expression.SymbolSet{}
	result := make([]LocalProperty, 0, len(properties))
	for _, p := range properties {
		if c, ok := p.(ConstantProperty); ok {
			if constants.Contains(c.column) {
				continue
			}
			constants.Insert(c.column)
			result = append(result, c)
			continue
		}
		simplified, ok := p.withoutConstants(constants)
		if !ok {
			continue
		}
		if len(result) > 0 && result[len(result)-1].Equal(simplified) {
			continue
		}
		result = append(result, simplified)
	}
	return result
}

// TranslateLocalProperties remaps every property through translator,
// dropping the ones that do not translate.
func TranslateLocalProperties(properties []LocalProperty, translator SymbolTranslator) []LocalProperty {
	result := make([]LocalProperty, 0, len(properties))
	for _, p := range properties {
		if translated, ok := p.Translate(translator); ok {
			result = append(result, translated)
		}
	}
	return result
}

// LocalPropertiesEqual compares two property lists element-wise.
func LocalPropertiesEqual(a, b []LocalProperty) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func formatLocalProperties(properties []LocalProperty) string {
	parts := make([]string, 0, len(properties))
	for _, p := range properties {
		parts = append(parts, p.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
