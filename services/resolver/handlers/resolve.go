// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the resolver HTTP API.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/symcall/services/resolver/datatypes"
	"github.com/AleutianAI/symcall/services/resolver/dispatch"
	"github.com/AleutianAI/symcall/services/resolver/expr"
)

var resolveTracer = otel.Tracer("symcall.resolver.handlers")

// statusForError maps resolution failures onto HTTP status codes.
//
// Malformed input and incomplete substitution are client errors. An
// absent registry key is a 404 on the function namespace. A callable
// that accepts the call but fails internally is an upstream failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, expr.ErrParse),
		errors.Is(err, dispatch.ErrNotCall),
		errors.Is(err, dispatch.ErrNotFullyResolved),
		errors.Is(err, dispatch.ErrArityMismatch):
		return http.StatusBadRequest
	case errors.Is(err, dispatch.ErrUnknownFunction):
		return http.StatusNotFound
	case errors.Is(err, dispatch.ErrInvocation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HandleResolve resolves a single expression.
//
// POST /v1/resolve
func HandleResolve(resolver *dispatch.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := resolveTracer.Start(c.Request.Context(), "HandleResolve")
		defer span.End()

		var req datatypes.ResolveRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to parse the resolve request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.EnsureDefaults()

		start := time.Now()
		result, err := resolver.ResolveString(ctx, req.Expression, req.Values)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Warn("Resolution failed",
				"request_id", req.RequestID, "expression", req.Expression, "error", err)
			c.JSON(statusForError(err), gin.H{
				"error":      err.Error(),
				"request_id": req.RequestID,
			})
			return
		}

		c.JSON(http.StatusOK, datatypes.NewResolveResponse(&req, result, time.Since(start)))
	}
}

// HandleBatchResolve resolves several expressions in one round trip.
//
// POST /v1/resolve/batch
//
// Items are independent: a failed item carries its error in place while
// the rest of the batch succeeds, so the endpoint returns 200 whenever
// the batch itself was well formed.
func HandleBatchResolve(resolver *dispatch.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := resolveTracer.Start(c.Request.Context(), "HandleBatchResolve")
		defer span.End()

		var req datatypes.BatchResolveRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to parse the batch resolve request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.EnsureDefaults()

		start := time.Now()
		items := make([]datatypes.BatchItemResult, len(req.Items))

		// Parse and substitute up front so only well-formed expressions
		// enter the concurrent resolution stage.
		exprs := make([]expr.Expr, 0, len(req.Items))
		exprIndex := make([]int, 0, len(req.Items))
		for i, item := range req.Items {
			items[i] = datatypes.BatchItemResult{Index: i, Expression: item.Expression}
			parsed, err := expr.Parse(item.Expression)
			if err != nil {
				items[i].Error = err.Error()
				continue
			}
			exprs = append(exprs, parsed.Substitute(item.Values))
			exprIndex = append(exprIndex, i)
		}

		for _, r := range resolver.ResolveBatch(ctx, exprs) {
			i := exprIndex[r.Index]
			if r.Err != nil {
				items[i].Error = r.Err.Error()
				continue
			}
			items[i].Result = r.Values
		}

		c.JSON(http.StatusOK, datatypes.BatchResolveResponse{
			RequestID:        req.RequestID,
			Items:            items,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		})
	}
}

// ListFunctions reports the registry contents.
//
// GET /v1/functions
func ListFunctions(registry *dispatch.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		names := registry.Names()
		functions := make([]datatypes.FunctionInfo, 0, len(names))
		for _, name := range names {
			callable, ok := registry.Get(name)
			if !ok {
				continue
			}
			functions = append(functions, datatypes.FunctionInfo{
				Name:     name,
				Arity:    callable.Arity(),
				Variadic: callable.Arity() == dispatch.ArityVariadic,
			})
		}
		c.JSON(http.StatusOK, datatypes.FunctionsResponse{
			Functions: functions,
			Count:     len(functions),
		})
	}
}

// HealthCheck reports process liveness.
//
// GET /health
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ReadyCheck reports whether the registry is populated and the service
// can resolve calls.
//
// GET /ready
func ReadyCheck(registry *dispatch.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if registry.Count() == 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": "registry is empty",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"functions": registry.Count(),
		})
	}
}
