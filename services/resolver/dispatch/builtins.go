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
	"fmt"
	"sort"
)

// Builtin callables. These are stand-in numeric functions used by
// tests, the CLI, and manifests that do not register a real model.

// IdentitySum returns a callable summing its arguments.
func IdentitySum() Callable {
	return NewCallable("identity_sum", ArityVariadic, func(_ context.Context, args []float64) ([]float64, error) {
		sum := 0.0
		for _, v := range args {
			sum += v
		}
		return Scalar(sum), nil
	})
}

// Mean returns a callable averaging its arguments.
func Mean() Callable {
	return NewCallable("mean", ArityVariadic, func(_ context.Context, args []float64) ([]float64, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("mean of zero arguments is undefined")
		}
		sum := 0.0
		for _, v := range args {
			sum += v
		}
		return Scalar(sum / float64(len(args))), nil
	})
}

// Min returns a callable taking the minimum of its arguments.
func Min() Callable {
	return NewCallable("min", ArityVariadic, func(_ context.Context, args []float64) ([]float64, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("min of zero arguments is undefined")
		}
		m := args[0]
		for _, v := range args[1:] {
			if v < m {
				m = v
			}
		}
		return Scalar(m), nil
	})
}

// Max returns a callable taking the maximum of its arguments.
func Max() Callable {
	return NewCallable("max", ArityVariadic, func(_ context.Context, args []float64) ([]float64, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("max of zero arguments is undefined")
		}
		m := args[0]
		for _, v := range args[1:] {
			if v > m {
				m = v
			}
		}
		return Scalar(m), nil
	})
}

// builtinsByName maps manifest builtin names to constructors.
var builtinsByName = map[string]func() Callable{
	"identity_sum": IdentitySum,
	"mean":         Mean,
	"min":          Min,
	"max":          Max,
}

// BuiltinNames returns the names accepted in a manifest's builtins list.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinsByName))
	for name := range builtinsByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
