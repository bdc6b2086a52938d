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
	"strings"
	"testing"

	"github.com/AleutianAI/symcall/services/resolver/expr"
)

// testResolver builds a resolver over identity_sum registered as
// func_predict, matching the canonical three-feature flow.
func testResolver(t *testing.T, opts ...ResolverOption) *Resolver {
	t.Helper()
	registry := NewRegistry()
	registry.Register(NewCallable("func_predict", ArityVariadic,
		func(_ context.Context, args []float64) ([]float64, error) {
			sum := 0.0
			for _, v := range args {
				sum += v
			}
			return Scalar(sum), nil
		}))
	return NewResolver(registry, opts...)
}

func TestNewResolver_NilRegistry(t *testing.T) {
	if NewResolver(nil) != nil {
		t.Error("NewResolver(nil) should return nil")
	}
}

func TestResolve_FullySubstitutedCall(t *testing.T) {
	r := testResolver(t)

	e := expr.CallOf("func_predict", expr.Sym("a"), expr.Sym("b"), expr.Sym("c"))
	bound := e.Substitute(map[string]float64{"a": 1.2, "b": 3.4, "c": 5.6})

	got, err := r.Resolve(context.Background(), bound)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := 1.2 + 3.4 + 5.6
	if len(got) != 1 || got[0] != want {
		t.Errorf("Resolve() = %v, want [%v]", got, want)
	}
}

func TestResolve_PrefixStripping(t *testing.T) {
	r := testResolver(t)

	// self_func_predict is not registered; func_predict is. The prefix
	// form must dispatch to the same callable.
	e := expr.CallOf("self_func_predict", expr.Lit(1), expr.Lit(2))
	got, err := r.Resolve(context.Background(), e)
	if err != nil {
		t.Fatalf("Resolve(self_ prefixed) error = %v", err)
	}
	if got[0] != 3 {
		t.Errorf("Resolve() = %v, want [3]", got)
	}
}

func TestResolve_ExactNameWinsOverStripped(t *testing.T) {
	registry := NewRegistry()
	registry.Register(constCallable("self_f", 0, 1.0))
	registry.Register(constCallable("f", 0, 2.0))
	r := NewResolver(registry)

	got, err := r.Resolve(context.Background(), expr.CallOf("self_f"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got[0] != 1.0 {
		t.Errorf("Resolve(self_f) = %v, want the exact-name callable's 1", got)
	}
}

func TestResolve_CustomPrefix(t *testing.T) {
	r := testResolver(t, WithPrefix("bound_"))

	if _, err := r.Resolve(context.Background(), expr.CallOf("bound_func_predict", expr.Lit(1))); err != nil {
		t.Errorf("Resolve(bound_ prefixed) error = %v", err)
	}

	// The default prefix is no longer recognized.
	_, err := r.Resolve(context.Background(), expr.CallOf("self_func_predict", expr.Lit(1)))
	if !errors.Is(err, ErrUnknownFunction) {
		t.Errorf("Resolve(self_ with custom prefix) error = %v, want ErrUnknownFunction", err)
	}
}

func TestResolve_NotCall(t *testing.T) {
	r := testResolver(t)

	for _, e := range []expr.Expr{expr.Lit(1.5), expr.Sym("a")} {
		_, err := r.Resolve(context.Background(), e)
		if !errors.Is(err, ErrNotCall) {
			t.Errorf("Resolve(%s) error = %v, want ErrNotCall", e.String(), err)
		}
	}
}

func TestResolve_NotFullyResolved(t *testing.T) {
	r := testResolver(t)

	e := expr.CallOf("func_predict", expr.Sym("a"), expr.Sym("b"), expr.Sym("c"))
	partial := e.Substitute(map[string]float64{"a": 1.2, "b": 3.4})

	_, err := r.Resolve(context.Background(), partial)
	if !errors.Is(err, ErrNotFullyResolved) {
		t.Fatalf("Resolve(partial) error = %v, want ErrNotFullyResolved", err)
	}
	// The message names the offending symbol.
	if !strings.Contains(err.Error(), "c") {
		t.Errorf("error %q does not name the remaining symbol", err)
	}
}

func TestResolve_UnknownFunction(t *testing.T) {
	r := testResolver(t)

	_, err := r.Resolve(context.Background(), expr.CallOf("no_such_fn", expr.Lit(1)))
	if !errors.Is(err, ErrUnknownFunction) {
		t.Fatalf("Resolve(unknown) error = %v, want ErrUnknownFunction", err)
	}

	// The prefixed miss reports both names tried.
	_, err = r.Resolve(context.Background(), expr.CallOf("self_no_such_fn", expr.Lit(1)))
	if !errors.Is(err, ErrUnknownFunction) {
		t.Fatalf("Resolve(prefixed unknown) error = %v, want ErrUnknownFunction", err)
	}
	if !strings.Contains(err.Error(), "no_such_fn") || !strings.Contains(err.Error(), "self_") {
		t.Errorf("error %q does not report the stripped lookup", err)
	}
}

func TestResolve_ArityMismatch(t *testing.T) {
	registry := NewRegistry()
	registry.Register(constCallable("pair", 2, 0))
	r := NewResolver(registry)

	_, err := r.Resolve(context.Background(), expr.CallOf("pair", expr.Lit(1)))
	if !errors.Is(err, ErrArityMismatch) {
		t.Fatalf("Resolve(1 arg to arity-2) error = %v, want ErrArityMismatch", err)
	}
	if !strings.Contains(err.Error(), "expects 2") {
		t.Errorf("error %q does not state the expected count", err)
	}
}

func TestResolve_InvocationError(t *testing.T) {
	registry := NewRegistry()
	failure := fmt.Errorf("model backend unavailable")
	registry.Register(NewCallable("failing", ArityVariadic,
		func(_ context.Context, _ []float64) ([]float64, error) {
			return nil, failure
		}))
	r := NewResolver(registry)

	_, err := r.Resolve(context.Background(), expr.CallOf("failing", expr.Lit(1)))
	if !errors.Is(err, ErrInvocation) {
		t.Fatalf("Resolve(failing) error = %v, want ErrInvocation", err)
	}
	if !strings.Contains(err.Error(), "model backend unavailable") {
		t.Errorf("error %q does not carry the callable's failure", err)
	}
}

func TestResolve_NestedCalls(t *testing.T) {
	r := testResolver(t)

	// func_predict(func_predict(1, 2), 4) -> 7
	e := expr.CallOf("func_predict",
		expr.CallOf("func_predict", expr.Lit(1), expr.Lit(2)),
		expr.Lit(4))
	got, err := r.Resolve(context.Background(), e)
	if err != nil {
		t.Fatalf("Resolve(nested) error = %v", err)
	}
	if got[0] != 7 {
		t.Errorf("Resolve(nested) = %v, want [7]", got)
	}
}

func TestResolve_NestedVectorRejected(t *testing.T) {
	registry := NewRegistry()
	registry.Register(NewCallable("vec", ArityVariadic,
		func(_ context.Context, _ []float64) ([]float64, error) {
			return []float64{1, 2}, nil
		}))
	registry.Register(constCallable("outer", 1, 0))
	r := NewResolver(registry)

	e := expr.CallOf("outer", expr.CallOf("vec", expr.Lit(1)))
	_, err := r.Resolve(context.Background(), e)
	if !errors.Is(err, ErrArityMismatch) {
		t.Errorf("Resolve(vector in argument position) error = %v, want ErrArityMismatch", err)
	}
}

func TestResolveString(t *testing.T) {
	r := testResolver(t)

	got, err := r.ResolveString(context.Background(),
		"self_func_predict(a, b, c)",
		map[string]float64{"a": 1.2, "b": 3.4, "c": 5.6})
	if err != nil {
		t.Fatalf("ResolveString() error = %v", err)
	}
	want := 1.2 + 3.4 + 5.6
	if got[0] != want {
		t.Errorf("ResolveString() = %v, want [%v]", got, want)
	}

	_, err = r.ResolveString(context.Background(), "f(a,", nil)
	if !errors.Is(err, expr.ErrParse) {
		t.Errorf("ResolveString(malformed) error = %v, want expr.ErrParse", err)
	}
}

func TestResolve_ContextReachesCallable(t *testing.T) {
	type key struct{}
	registry := NewRegistry()
	registry.Register(NewCallable("ctx_probe", ArityVariadic,
		func(ctx context.Context, _ []float64) ([]float64, error) {
			if ctx.Value(key{}) != "present" {
				return nil, fmt.Errorf("context value missing")
			}
			return Scalar(1), nil
		}))
	r := NewResolver(registry)

	ctx := context.WithValue(context.Background(), key{}, "present")
	if _, err := r.Resolve(ctx, expr.CallOf("ctx_probe", expr.Lit(0))); err != nil {
		t.Errorf("Resolve() error = %v", err)
	}
}

func TestResolveBatch(t *testing.T) {
	r := testResolver(t)

	exprs := []expr.Expr{
		expr.CallOf("func_predict", expr.Lit(1), expr.Lit(2)),
		expr.CallOf("no_such_fn", expr.Lit(1)),
		expr.CallOf("func_predict", expr.Sym("a")),
		expr.Lit(5),
	}

	results := r.ResolveBatch(context.Background(), exprs)
	if len(results) != len(exprs) {
		t.Fatalf("ResolveBatch() returned %d results, want %d", len(results), len(exprs))
	}

	if results[0].Err != nil || results[0].Values[0] != 3 {
		t.Errorf("results[0] = (%v, %v), want ([3], nil)", results[0].Values, results[0].Err)
	}
	if !errors.Is(results[1].Err, ErrUnknownFunction) {
		t.Errorf("results[1].Err = %v, want ErrUnknownFunction", results[1].Err)
	}
	if !errors.Is(results[2].Err, ErrNotFullyResolved) {
		t.Errorf("results[2].Err = %v, want ErrNotFullyResolved", results[2].Err)
	}
	if !errors.Is(results[3].Err, ErrNotCall) {
		t.Errorf("results[3].Err = %v, want ErrNotCall", results[3].Err)
	}

	for i, res := range results {
		if res.Index != i {
			t.Errorf("results[%d].Index = %d, want %d", i, res.Index, i)
		}
	}
}

func TestOutcomeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, outcomeOK},
		{"not call", fmt.Errorf("%w: x", ErrNotCall), outcomeNotCall},
		{"not fully resolved", fmt.Errorf("%w: a", ErrNotFullyResolved), outcomeNotFullyResolved},
		{"unknown function", fmt.Errorf("%w: f", ErrUnknownFunction), outcomeUnknownFunction},
		{"arity mismatch", fmt.Errorf("%w: f", ErrArityMismatch), outcomeArityMismatch},
		{"invocation", fmt.Errorf("%w: f", ErrInvocation), outcomeInvocationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outcomeFor(tt.err); got != tt.want {
				t.Errorf("outcomeFor() = %q, want %q", got, tt.want)
			}
		})
	}
}
