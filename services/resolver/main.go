// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/credentials/insecure"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"

	"github.com/AleutianAI/symcall/services/resolver/dispatch"
	"github.com/AleutianAI/symcall/services/resolver/model"
	"github.com/AleutianAI/symcall/services/resolver/routes"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "symcall-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("resolver-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// buildRegistry assembles the registry from the manifest: builtins from
// the dispatch package, models loaded through the model package.
func buildRegistry(manifest dispatch.Manifest) (*dispatch.Registry, error) {
	registry := manifest.BuildRegistry()
	if err := model.RegisterManifestModels(registry, manifest.Models); err != nil {
		return nil, err
	}
	return registry, nil
}

func main() {
	port := os.Getenv("RESOLVER_PORT")
	if port == "" {
		port = "12270"
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// --- Init the tracer ---
	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	manifest := dispatch.DefaultManifest()
	if manifestPath := os.Getenv("SYMCALL_MANIFEST"); manifestPath != "" {
		manifest, err = dispatch.LoadManifest(manifestPath)
		if err != nil {
			log.Fatalf("FATAL: Could not load the manifest %s: %v", manifestPath, err)
		}
		slog.Info("Loaded manifest", "path", manifestPath,
			"builtins", len(manifest.Builtins), "models", len(manifest.Models))
	} else {
		slog.Info("SYMCALL_MANIFEST not set. Running with the default manifest (builtins only).")
	}

	registry, err := buildRegistry(manifest)
	if err != nil {
		log.Fatalf("FATAL: Could not build the registry: %v", err)
	}
	slog.Info("Registry assembled", "functions", registry.Count())

	resolverOpts := []dispatch.ResolverOption{}
	if manifest.Prefix != "" {
		resolverOpts = append(resolverOpts, dispatch.WithPrefix(manifest.Prefix))
	}
	resolver := dispatch.NewResolver(registry, resolverOpts...)

	router := gin.Default()
	router.Use(otelgin.Middleware("resolver-service"))

	routes.SetupRoutes(router, resolver, registry)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Println("Starting the resolver server on port ", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Block until SIGINT/SIGTERM, then drain in-flight requests.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down the resolver server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
