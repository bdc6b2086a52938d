// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package routes wires the resolver HTTP endpoints.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/symcall/services/resolver/dispatch"
	"github.com/AleutianAI/symcall/services/resolver/handlers"
)

// SetupRoutes registers all resolver endpoints on the router.
func SetupRoutes(router *gin.Engine, resolver *dispatch.Resolver, registry *dispatch.Registry) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.ReadyCheck(registry))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		v1.POST("/resolve", handlers.HandleResolve(resolver))
		v1.POST("/resolve/batch", handlers.HandleBatchResolve(resolver))
		v1.GET("/functions", handlers.ListFunctions(registry))
	}
}
