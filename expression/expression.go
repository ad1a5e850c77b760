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

// Expression is a scalar expression carried through the plan. The reordering
// passes treat expressions as opaque: they only need to know which symbols an
// expression references.
type Expression interface {
	Symbols() []Symbol
	String() string
}

// SymbolReference is the trivial expression referring to a single column.
type SymbolReference struct {
	symbol Symbol
}

// NewSymbolReference builds a reference to s.
func NewSymbolReference(s Symbol) *SymbolReference {
	return &SymbolReference{symbol: s}
}

// Symbol returns the referenced column.
func (r *SymbolReference) Symbol() Symbol {
	return r.symbol
}

// Symbols implements Expression.
func (r *SymbolReference) Symbols() []Symbol {
	return []Symbol{r.symbol}
}

func (r *SymbolReference) String() string {
	return string(r.symbol)
}

// Raw is an opaque expression rendered from SQL text. Residual join filters
// reach this core in that form; the passes never look inside them.
type Raw struct {
	sql     string
	symbols []Symbol
}

// NewRaw builds an opaque expression over the given symbols.
func NewRaw(sql string, symbols ...Symbol) *Raw {
	return &Raw{sql: sql, symbols: symbols}
}

// Symbols implements Expression.
func (r *Raw) Symbols() []Symbol {
	return r.symbols
}

func (r *Raw) String() string {
	return r.sql
}
