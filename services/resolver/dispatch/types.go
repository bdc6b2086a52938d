// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dispatch provides the callable registry and the deferred-call
// resolver.
//
// A Callable is an opaque numeric function registered under a name. The
// Resolver takes a fully substituted call expression, looks the name up
// in the registry, and invokes the callable with the literal arguments.
// Registration happens once at startup; after that the registry is
// treated as read-only and resolution is lock-free apart from the
// registry's read lock.
//
// Thread Safety:
//
//	All types in this package are safe for concurrent use, provided
//	the registered callables are themselves reentrant.
package dispatch

import (
	"context"
)

// ArityVariadic marks a callable that accepts any argument count.
const ArityVariadic = -1

// Callable is an invocable numeric function held by the registry.
//
// Implementations must be reentrant: the resolver invokes callables
// concurrently during batch resolution. A callable that wraps a
// non-reentrant collaborator must serialize internally.
type Callable interface {
	// Name is the registry key the callable is registered under.
	Name() string

	// Arity is the fixed argument count, or ArityVariadic.
	Arity() int

	// Invoke runs the function with the ordered numeric arguments.
	// The result is a scalar or a short numeric vector.
	Invoke(ctx context.Context, args []float64) ([]float64, error)
}

// funcCallable adapts a plain function to the Callable interface.
type funcCallable struct {
	name  string
	arity int
	fn    func(ctx context.Context, args []float64) ([]float64, error)
}

// NewCallable wraps a function as a Callable.
//
// Inputs:
//
//	name - The registry key. Must be a valid identifier.
//	arity - Fixed argument count, or ArityVariadic.
//	fn - The function to invoke. Must not be nil.
//
// Outputs:
//
//	Callable - The adapter, or nil if fn is nil.
func NewCallable(name string, arity int, fn func(ctx context.Context, args []float64) ([]float64, error)) Callable {
	if fn == nil {
		return nil
	}
	return &funcCallable{name: name, arity: arity, fn: fn}
}

func (f *funcCallable) Name() string { return f.name }
func (f *funcCallable) Arity() int   { return f.arity }
func (f *funcCallable) Invoke(ctx context.Context, args []float64) ([]float64, error) {
	return f.fn(ctx, args)
}

// Scalar wraps a single value as a one-element result vector.
func Scalar(v float64) []float64 { return []float64{v} }
