// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestResolveRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ResolveRequest
		wantErr bool
	}{
		{"valid", ResolveRequest{Expression: "f(a)"}, false},
		{"valid with values", ResolveRequest{Expression: "f(a)", Values: map[string]float64{"a": 1}}, false},
		{"valid with uuid", ResolveRequest{Expression: "f(a)", RequestID: uuid.NewString()}, false},
		{"missing expression", ResolveRequest{}, true},
		{"oversized expression", ResolveRequest{Expression: strings.Repeat("a", 4097)}, true},
		{"bad request id", ResolveRequest{Expression: "f(a)", RequestID: "not-a-uuid"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveRequest_EnsureDefaults(t *testing.T) {
	req := ResolveRequest{Expression: "f(a)"}
	req.EnsureDefaults()
	if _, err := uuid.Parse(req.RequestID); err != nil {
		t.Errorf("EnsureDefaults() RequestID = %q, not a UUID", req.RequestID)
	}

	fixed := uuid.NewString()
	req2 := ResolveRequest{Expression: "f(a)", RequestID: fixed}
	req2.EnsureDefaults()
	if req2.RequestID != fixed {
		t.Errorf("EnsureDefaults() replaced a client-provided RequestID")
	}
}

func TestBatchResolveRequest_Validate(t *testing.T) {
	valid := BatchResolveRequest{Items: []ResolveRequest{{Expression: "f(a)"}}}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate(valid) error = %v", err)
	}

	empty := BatchResolveRequest{}
	if err := empty.Validate(); err == nil {
		t.Error("Validate(no items) = nil, want error")
	}

	badItem := BatchResolveRequest{Items: []ResolveRequest{{Expression: ""}}}
	if err := badItem.Validate(); err == nil {
		t.Error("Validate(item without expression) = nil, want error")
	}
}

func TestBatchResolveRequest_EnsureDefaults(t *testing.T) {
	req := BatchResolveRequest{Items: []ResolveRequest{{Expression: "f(a)"}, {Expression: "g(b)"}}}
	req.EnsureDefaults()

	if req.RequestID == "" {
		t.Error("batch RequestID not generated")
	}
	for i, item := range req.Items {
		if item.RequestID == "" {
			t.Errorf("Items[%d].RequestID not generated", i)
		}
	}
}

func TestNewResolveResponse(t *testing.T) {
	req := ResolveRequest{Expression: "f(1)", RequestID: uuid.NewString()}
	resp := NewResolveResponse(&req, []float64{4.2}, 1500*time.Microsecond)

	if resp.RequestID != req.RequestID || resp.Expression != "f(1)" {
		t.Errorf("response does not echo the request: %+v", resp)
	}
	if len(resp.Result) != 1 || resp.Result[0] != 4.2 {
		t.Errorf("Result = %v, want [4.2]", resp.Result)
	}
	if resp.ProcessingTimeMs != 1 {
		t.Errorf("ProcessingTimeMs = %d, want 1", resp.ProcessingTimeMs)
	}
}
