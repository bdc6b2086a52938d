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
	"reflect"
	"testing"
)

func TestBuiltins(t *testing.T) {
	tests := []struct {
		name    string
		builtin Callable
		args    []float64
		want    float64
		wantErr bool
	}{
		{"identity_sum", IdentitySum(), []float64{1.2, 3.4, 5.6}, 10.2, false},
		{"identity_sum empty", IdentitySum(), nil, 0, false},
		{"mean", Mean(), []float64{1, 2, 3}, 2, false},
		{"mean empty", Mean(), nil, 0, true},
		{"min", Min(), []float64{3, -1, 2}, -1, false},
		{"min empty", Min(), nil, 0, true},
		{"max", Max(), []float64{3, -1, 2}, 3, false},
		{"max empty", Max(), nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.builtin.Invoke(context.Background(), tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Invoke() succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Invoke() error = %v", err)
			}
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("Invoke() = %v, want [%v]", got, tt.want)
			}
		})
	}
}

func TestBuiltins_AreVariadic(t *testing.T) {
	for _, c := range []Callable{IdentitySum(), Mean(), Min(), Max()} {
		if c.Arity() != ArityVariadic {
			t.Errorf("%s Arity() = %d, want ArityVariadic", c.Name(), c.Arity())
		}
	}
}

func TestBuiltinNames(t *testing.T) {
	want := []string{"identity_sum", "max", "mean", "min"}
	if got := BuiltinNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("BuiltinNames() = %v, want %v", got, want)
	}
}
