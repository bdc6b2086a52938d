// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package expr provides the immutable expression tree for deferred calls.
//
// An expression is a literal number, a named symbol, or a named function
// call over sub-expressions. Building a Call never invokes anything: the
// tree is a description of a pending invocation, and stays inert until
// the dispatch package resolves it against a registry.
//
// Thread Safety:
//
//	Expressions are immutable after construction. Substitute returns a
//	new tree and never mutates the receiver, so expressions may be
//	shared freely across goroutines.
package expr

import (
	"sort"
	"strconv"
	"strings"
)

// Expr is a node in the expression tree.
//
// Exactly three concrete types implement it: *Literal, *Symbol, and
// *Call. The interface is sealed so dispatch can switch exhaustively.
type Expr interface {
	// String returns the canonical textual form of the expression.
	// Parse(e.String()) yields an equal tree.
	String() string

	// Substitute returns a new expression with every symbol that
	// appears in values replaced by its literal. Symbols absent from
	// values are left in place; map keys that match nothing are
	// ignored. The receiver is never modified.
	Substitute(values map[string]float64) Expr

	// Equal reports structural equality.
	Equal(other Expr) bool

	collectSymbols(set map[string]struct{})
	sealed()
}

// =============================================================================
// Literal
// =============================================================================

// Literal is a concrete numeric value.
type Literal struct {
	value float64
}

// Lit constructs a literal node.
func Lit(v float64) *Literal { return &Literal{value: v} }

// Value returns the literal's numeric value.
func (l *Literal) Value() float64 { return l.value }

func (l *Literal) String() string {
	return strconv.FormatFloat(l.value, 'g', -1, 64)
}

func (l *Literal) Substitute(map[string]float64) Expr { return l }

func (l *Literal) Equal(other Expr) bool {
	o, ok := other.(*Literal)
	return ok && l.value == o.value
}

func (l *Literal) collectSymbols(map[string]struct{}) {}
func (l *Literal) sealed()                            {}

// =============================================================================
// Symbol
// =============================================================================

// Symbol is a named placeholder for a not-yet-known numeric value.
type Symbol struct {
	name string
}

// Sym constructs a symbol node.
func Sym(name string) *Symbol { return &Symbol{name: name} }

// Name returns the symbol's identifier.
func (s *Symbol) Name() string { return s.name }

func (s *Symbol) String() string { return s.name }

func (s *Symbol) Substitute(values map[string]float64) Expr {
	if v, ok := values[s.name]; ok {
		return Lit(v)
	}
	return s
}

func (s *Symbol) Equal(other Expr) bool {
	o, ok := other.(*Symbol)
	return ok && s.name == o.name
}

func (s *Symbol) collectSymbols(set map[string]struct{}) {
	set[s.name] = struct{}{}
}
func (s *Symbol) sealed() {}

// =============================================================================
// Call
// =============================================================================

// Call is a named function applied to an ordered argument list.
//
// The function name and arity are fixed at construction. A Call is
// never auto-evaluated; dispatch.Resolver is the only component that
// turns one into a numeric result.
type Call struct {
	name string
	args []Expr
}

// CallOf constructs a call node over the given arguments.
//
// The argument slice is copied, so the caller may reuse its backing
// array. Zero arguments is legal (a nullary callable).
func CallOf(name string, args ...Expr) *Call {
	copied := make([]Expr, len(args))
	copy(copied, args)
	return &Call{name: name, args: copied}
}

// FuncName returns the function name the call is bound to.
func (c *Call) FuncName() string { return c.name }

// Arity returns the number of arguments.
func (c *Call) Arity() int { return len(c.args) }

// Args returns a copy of the ordered argument list.
func (c *Call) Args() []Expr {
	out := make([]Expr, len(c.args))
	copy(out, c.args)
	return out
}

func (c *Call) String() string {
	parts := make([]string, len(c.args))
	for i, a := range c.args {
		parts[i] = a.String()
	}
	return c.name + "(" + strings.Join(parts, ", ") + ")"
}

func (c *Call) Substitute(values map[string]float64) Expr {
	newArgs := make([]Expr, len(c.args))
	for i, a := range c.args {
		newArgs[i] = a.Substitute(values)
	}
	return &Call{name: c.name, args: newArgs}
}

func (c *Call) Equal(other Expr) bool {
	o, ok := other.(*Call)
	if !ok || c.name != o.name || len(c.args) != len(o.args) {
		return false
	}
	for i := range c.args {
		if !c.args[i].Equal(o.args[i]) {
			return false
		}
	}
	return true
}

func (c *Call) collectSymbols(set map[string]struct{}) {
	for _, a := range c.args {
		a.collectSymbols(set)
	}
}
func (c *Call) sealed() {}

// =============================================================================
// Helpers
// =============================================================================

// FreeSymbols returns the names of all symbols remaining in e.
//
// Outputs:
//
//	[]string - Sorted symbol names. Empty when e is fully substituted.
func FreeSymbols(e Expr) []string {
	set := make(map[string]struct{})
	e.collectSymbols(set)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsFullySubstituted reports whether e contains no remaining symbols.
func IsFullySubstituted(e Expr) bool {
	set := make(map[string]struct{})
	e.collectSymbols(set)
	return len(set) == 0
}
