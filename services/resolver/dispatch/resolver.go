// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/symcall/services/resolver/expr"
)

// DefaultPrefix is the recognized "bound to the caller's own method
// set" prefix. A call named self_func_predict resolves against the
// registry key func_predict.
const DefaultPrefix = "self_"

// Sentinel errors for resolution.
var (
	// ErrNotCall indicates the expression is not a function-application
	// node. Bare literals and symbols cannot be resolved.
	ErrNotCall = errors.New("expression is not a function call")

	// ErrNotFullyResolved indicates the expression still contains
	// symbols; resolution requires complete substitution first.
	ErrNotFullyResolved = errors.New("expression still contains symbols")

	// ErrUnknownFunction indicates the function name is not registered,
	// after prefix stripping if the name carried the recognized prefix.
	ErrUnknownFunction = errors.New("unknown function")

	// ErrArityMismatch indicates the argument count disagrees with the
	// callable's expectation.
	ErrArityMismatch = errors.New("argument count mismatch")

	// ErrInvocation wraps any failure raised by the callable itself.
	ErrInvocation = errors.New("callable invocation failed")
)

// Resolver resolves fully substituted call expressions against a
// registry.
//
// Description:
//
//	The resolver is the only component that turns an expression tree
//	into a numeric result. It performs no substitution itself: the
//	caller substitutes first, then resolves. Partial resolution is
//	explicitly disallowed so placeholders can never reach a numeric
//	callable.
//
// Thread Safety: Resolver is safe for concurrent use.
type Resolver struct {
	registry *Registry
	prefix   string
	logger   *slog.Logger
}

// ResolverOption configures the Resolver.
type ResolverOption func(*Resolver)

// WithPrefix sets the recognized bound-call prefix.
//
// Inputs:
//
//	prefix - The prefix to strip before registry lookup. Empty
//	         disables prefix stripping.
func WithPrefix(prefix string) ResolverOption {
	return func(r *Resolver) {
		r.prefix = prefix
	}
}

// WithLogger sets the structured logger used for resolution events.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a resolver over the given registry.
//
// Inputs:
//
//	registry - The callable registry. Must not be nil.
//	opts - Configuration options
//
// Outputs:
//
//	*Resolver - The configured resolver. Returns nil if registry is nil.
func NewResolver(registry *Registry, opts ...ResolverOption) *Resolver {
	if registry == nil {
		return nil
	}

	r := &Resolver{
		registry: registry,
		prefix:   DefaultPrefix,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve invokes the callable named by a fully substituted call.
//
// Description:
//
//	Checks that e is a call with no remaining symbols, strips the
//	recognized prefix if present, looks the name up in the registry,
//	checks arity, and invokes the callable with the literal arguments
//	in their original order. Nested calls in argument position are
//	resolved depth-first; each must produce a scalar.
//
//	The callable's numeric result is returned unchanged. The expression
//	is not retained: resolve-and-discard is the intended lifecycle.
//
// Inputs:
//
//	ctx - Context passed through to the callable.
//	e - The expression to resolve.
//
// Outputs:
//
//	[]float64 - The callable's result (scalar or short vector)
//	error - Non-nil if resolution failed
//
// Errors:
//
//	ErrNotCall - e is a bare literal or symbol
//	ErrNotFullyResolved - e still contains symbols
//	ErrUnknownFunction - name absent from the registry
//	ErrArityMismatch - argument count disagrees with the callable
//	ErrInvocation - the callable itself failed
//
// Thread Safety: This method is safe for concurrent use.
func (r *Resolver) Resolve(ctx context.Context, e expr.Expr) ([]float64, error) {
	start := time.Now()

	call, ok := e.(*expr.Call)
	if !ok {
		observeResolution("", outcomeNotCall, time.Since(start))
		return nil, fmt.Errorf("%w: %s", ErrNotCall, e.String())
	}

	logger := r.logger.With(
		"function", call.FuncName(),
		"resolution_id", uuid.NewString(),
	)

	result, err := r.resolveCall(ctx, call, logger)
	observeResolution(call.FuncName(), outcomeFor(err), time.Since(start))
	return result, err
}

// ResolveString parses, substitutes, and resolves in one step.
//
// Description:
//
//	Convenience for the CLI and the HTTP handlers, which always run
//	the same three-stage pipeline. Parse failures surface as
//	expr.ErrParse; the remaining stages behave exactly like Resolve.
//
// Inputs:
//
//	ctx - Context passed through to the callable.
//	text - Expression text, e.g. "func_predict(a, b, c)".
//	values - Substitution map from symbol name to numeric value.
//
// Thread Safety: This method is safe for concurrent use.
func (r *Resolver) ResolveString(ctx context.Context, text string, values map[string]float64) ([]float64, error) {
	parsed, err := expr.Parse(text)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, parsed.Substitute(values))
}

func (r *Resolver) resolveCall(ctx context.Context, call *expr.Call, logger *slog.Logger) ([]float64, error) {
	if free := expr.FreeSymbols(call); len(free) > 0 {
		logger.Warn("Resolution attempted with remaining symbols", "symbols", free)
		return nil, fmt.Errorf("%w: %s", ErrNotFullyResolved, strings.Join(free, ", "))
	}

	args, err := r.literalArgs(ctx, call, logger)
	if err != nil {
		return nil, err
	}

	callable, err := r.lookup(call.FuncName())
	if err != nil {
		logger.Warn("Function not found", "error", err)
		return nil, err
	}

	if arity := callable.Arity(); arity != ArityVariadic && arity != len(args) {
		return nil, fmt.Errorf("%w: %s expects %d arguments, got %d",
			ErrArityMismatch, callable.Name(), arity, len(args))
	}

	result, err := callable.Invoke(ctx, args)
	if err != nil {
		logger.Warn("Callable failed", "error", err)
		return nil, fmt.Errorf("%w: %s: %v", ErrInvocation, callable.Name(), err)
	}

	logger.Debug("Resolved", "args", len(args), "results", len(result))
	return result, nil
}

// literalArgs extracts the ordered numeric arguments, resolving nested
// calls depth-first. All symbols were ruled out by the caller.
func (r *Resolver) literalArgs(ctx context.Context, call *expr.Call, logger *slog.Logger) ([]float64, error) {
	args := call.Args()
	out := make([]float64, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case *expr.Literal:
			out[i] = v.Value()
		case *expr.Call:
			inner, err := r.resolveCall(ctx, v, logger.With("nested", v.FuncName()))
			if err != nil {
				return nil, err
			}
			if len(inner) != 1 {
				return nil, fmt.Errorf("%w: nested call %s produced %d values where a scalar argument was required",
					ErrArityMismatch, v.FuncName(), len(inner))
			}
			out[i] = inner[0]
		default:
			// Symbols were ruled out above; anything else is a bug.
			return nil, fmt.Errorf("%w: argument %d is %s", ErrNotFullyResolved, i, a.String())
		}
	}
	return out, nil
}

// lookup finds a callable by name, trying the exact name first and the
// prefix-stripped form second.
func (r *Resolver) lookup(name string) (Callable, error) {
	if c, ok := r.registry.Get(name); ok {
		return c, nil
	}

	if r.prefix != "" && strings.HasPrefix(name, r.prefix) && len(name) > len(r.prefix) {
		stripped := strings.TrimPrefix(name, r.prefix)
		if c, ok := r.registry.Get(stripped); ok {
			return c, nil
		}
		return nil, fmt.Errorf("%w: %q (also tried %q after stripping prefix %q)",
			ErrUnknownFunction, name, stripped, r.prefix)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
}

// BatchResult is the outcome of one expression in a batch resolution.
type BatchResult struct {
	// Index is the expression's position in the input slice.
	Index int `json:"index"`

	// Values is the callable's result. Nil when Err is set.
	Values []float64 `json:"values,omitempty"`

	// Err is the resolution failure for this expression, if any.
	Err error `json:"-"`
}

// ResolveBatch resolves many expressions independently.
//
// Description:
//
//	Each expression is resolved exactly as by Resolve; there is no
//	shared mutable state between items beyond the read-only registry.
//	Failures are reported per item rather than aborting the batch.
//	Concurrency is bounded by GOMAXPROCS.
//
// Inputs:
//
//	ctx - Context passed through to every callable.
//	exprs - The expressions to resolve.
//
// Outputs:
//
//	[]BatchResult - One entry per input, in input order.
//
// Thread Safety: This method is safe for concurrent use.
func (r *Resolver) ResolveBatch(ctx context.Context, exprs []expr.Expr) []BatchResult {
	results := make([]BatchResult, len(exprs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, e := range exprs {
		g.Go(func() error {
			values, err := r.Resolve(gctx, e)
			results[i] = BatchResult{Index: i, Values: values, Err: err}
			return nil
		})
	}
	// Workers never return errors; Wait only fences completion.
	_ = g.Wait()
	return results
}
