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
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for resolution metrics.
const (
	outcomeOK               = "ok"
	outcomeNotCall          = "not_call"
	outcomeNotFullyResolved = "not_fully_resolved"
	outcomeUnknownFunction  = "unknown_function"
	outcomeArityMismatch    = "arity_mismatch"
	outcomeInvocationError  = "invocation_error"
)

var (
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "symcall_resolutions_total",
		Help: "Total resolutions by function and outcome",
	}, []string{"function", "outcome"})

	resolutionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "symcall_resolution_latency_seconds",
		Help:    "Resolution latency including callable invocation",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})
)

// outcomeFor maps a resolution error to its metric label.
func outcomeFor(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrNotCall):
		return outcomeNotCall
	case errors.Is(err, ErrNotFullyResolved):
		return outcomeNotFullyResolved
	case errors.Is(err, ErrUnknownFunction):
		return outcomeUnknownFunction
	case errors.Is(err, ErrArityMismatch):
		return outcomeArityMismatch
	default:
		return outcomeInvocationError
	}
}

func observeResolution(function, outcome string, elapsed time.Duration) {
	resolutionsTotal.WithLabelValues(function, outcome).Inc()
	resolutionLatency.Observe(elapsed.Seconds())
}
