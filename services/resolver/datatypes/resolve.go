// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides request and response types for the
// resolver HTTP API.
package datatypes

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// resolveValidate is the shared validator instance for this package.
var resolveValidate = validator.New()

// =============================================================================
// Resolve Request Types
// =============================================================================

// ResolveRequest asks the service to substitute values into an
// expression and resolve the resulting call.
//
// # Fields
//
//   - Expression: The call expression text, e.g. "self_func_predict(a, b, c)".
//   - Values: Symbol name to numeric value substitutions. May be empty
//     when the expression carries only literals.
//   - RequestID: Optional client correlation ID. Generated server-side
//     when absent.
//
// # Examples
//
//	{
//	    "expression": "self_func_predict(a, b, c)",
//	    "values": {"a": 1.2, "b": 3.4, "c": 5.6}
//	}
type ResolveRequest struct {
	Expression string             `json:"expression" validate:"required,max=4096"`
	Values     map[string]float64 `json:"values" validate:"max=256"`
	RequestID  string             `json:"request_id,omitempty" validate:"omitempty,uuid4"`
}

// Validate validates the ResolveRequest fields.
//
// This method should be called after binding the JSON request.
func (r *ResolveRequest) Validate() error {
	return resolveValidate.Struct(r)
}

// EnsureDefaults populates the RequestID when the client omitted it.
func (r *ResolveRequest) EnsureDefaults() {
	if r.RequestID == "" {
		r.RequestID = uuid.NewString()
	}
}

// ResolveResponse carries the numeric result of one resolution.
type ResolveResponse struct {
	// RequestID echoes the request ID for correlation.
	RequestID string `json:"request_id"`

	// Expression echoes the input expression.
	Expression string `json:"expression"`

	// Result holds the resolved numeric values. A scalar result has
	// length one.
	Result []float64 `json:"result"`

	// ProcessingTimeMs is the server-side resolution time.
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// NewResolveResponse assembles a response for a completed resolution.
func NewResolveResponse(req *ResolveRequest, result []float64, elapsed time.Duration) ResolveResponse {
	return ResolveResponse{
		RequestID:        req.RequestID,
		Expression:       req.Expression,
		Result:           result,
		ProcessingTimeMs: elapsed.Milliseconds(),
	}
}

// =============================================================================
// Batch Types
// =============================================================================

// MaxBatchItems caps the number of expressions in one batch request.
const MaxBatchItems = 256

// BatchResolveRequest resolves several expressions in one round trip.
// Items are independent; one failing item does not fail the batch.
type BatchResolveRequest struct {
	Items     []ResolveRequest `json:"items" validate:"required,min=1,max=256,dive"`
	RequestID string           `json:"request_id,omitempty" validate:"omitempty,uuid4"`
}

// Validate validates the BatchResolveRequest and every item.
func (r *BatchResolveRequest) Validate() error {
	return resolveValidate.Struct(r)
}

// EnsureDefaults populates request IDs for the batch and all items.
func (r *BatchResolveRequest) EnsureDefaults() {
	if r.RequestID == "" {
		r.RequestID = uuid.NewString()
	}
	for i := range r.Items {
		r.Items[i].EnsureDefaults()
	}
}

// BatchItemResult is the per-item outcome inside a batch response.
// Exactly one of Result or Error is meaningful.
type BatchItemResult struct {
	Index      int       `json:"index"`
	Expression string    `json:"expression"`
	Result     []float64 `json:"result,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// BatchResolveResponse carries per-item outcomes in input order.
type BatchResolveResponse struct {
	RequestID        string            `json:"request_id"`
	Items            []BatchItemResult `json:"items"`
	ProcessingTimeMs int64             `json:"processing_time_ms"`
}

// =============================================================================
// Function Listing Types
// =============================================================================

// FunctionInfo describes one registered callable.
type FunctionInfo struct {
	// Name is the registry key.
	Name string `json:"name"`

	// Arity is the fixed argument count; -1 means variadic.
	Arity int `json:"arity"`

	// Variadic mirrors Arity == -1 for readability.
	Variadic bool `json:"variadic"`
}

// FunctionsResponse lists the registry contents, sorted by name.
type FunctionsResponse struct {
	Functions []FunctionInfo `json:"functions"`
	Count     int            `json:"count"`
}
