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

package expression

import (
	"slices"
	"strings"
)

// Symbol identifies one logical column produced somewhere in a plan. Symbols
// are allocated during plan construction and referenced, never owned, by the
// property and partitioning structures built on top of them.
type Symbol string

func (s Symbol) String() string {
	return string(s)
}

// SymbolSet is an unordered set of symbols.
type SymbolSet map[Symbol]struct{}

// NewSymbolSet builds a set from the given symbols.
func NewSymbolSet(symbols ...Symbol) SymbolSet {
	set := make(SymbolSet, len(symbols))
	for _, s := range symbols {
		set[s] = struct{}{}
	}
	return set
}

// Contains reports whether s is a member of the set.
func (set SymbolSet) Contains(s Symbol) bool {
	_, ok := set[s]
	return ok
}

// Insert adds s to the set.
func (set SymbolSet) Insert(s Symbol) {
	set[s] = struct{}{}
}

// Len returns the number of members.
func (set SymbolSet) Len() int {
	return len(set)
}

// Union returns a new set holding the members of both sets.
func (set SymbolSet) Union(other SymbolSet) SymbolSet {
	result := make(SymbolSet, len(set)+len(other))
	for s := range set {
		result[s] = struct{}{}
	}
	for s := range other {
		result[s] = struct{}{}
	}
	return result
}

// Equal reports whether both sets hold exactly the same members.
func (set SymbolSet) Equal(other SymbolSet) bool {
	if len(set) != len(other) {
		return false
	}
	for s := range set {
		if !other.Contains(s) {
			return false
		}
	}
	return true
}

// Sorted returns the members in lexical order. Used wherever deterministic
// output matters, such as logs and error messages.
func (set SymbolSet) Sorted() []Symbol {
	result := make([]Symbol, 0, len(set))
	for s := range set {
		result = append(result, s)
	}
	slices.Sort(result)
	return result
}

func (set SymbolSet) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, s := range set.Sorted() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(string(s))
	}
	sb.WriteByte(']')
	return sb.String()
}
