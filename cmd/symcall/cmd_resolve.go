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
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/symcall/pkg/logging"
	"github.com/AleutianAI/symcall/pkg/ux"
	"github.com/AleutianAI/symcall/services/resolver/dispatch"
	"github.com/AleutianAI/symcall/services/resolver/model"
)

// resolveTimeout caps one CLI resolution, model inference included.
const resolveTimeout = 30 * time.Second

// loadCLIManifest returns the manifest named by --manifest, or the
// embedded default.
func loadCLIManifest() (dispatch.Manifest, error) {
	if manifestPath == "" {
		return dispatch.DefaultManifest(), nil
	}
	return dispatch.LoadManifest(manifestPath)
}

// buildCLIRegistry assembles the registry the CLI resolves against.
func buildCLIRegistry(manifest dispatch.Manifest) (*dispatch.Registry, error) {
	registry := manifest.BuildRegistry()
	if err := model.RegisterManifestModels(registry, manifest.Models); err != nil {
		return nil, err
	}
	return registry, nil
}

// parseModelFlags converts repeated --model name=path pairs into
// manifest-style model entries.
func parseModelFlags(pairs []string) ([]dispatch.ModelEntry, error) {
	entries := make([]dispatch.ModelEntry, 0, len(pairs))
	for _, pair := range pairs {
		name, path, found := strings.Cut(pair, "=")
		if !found || name == "" || path == "" {
			return nil, fmt.Errorf("invalid --model %q, expected name=path", pair)
		}
		entries = append(entries, dispatch.ModelEntry{Name: name, Path: path})
	}
	return entries, nil
}

// parseSetValues converts repeated --set name=value pairs into a
// substitution map. Later pairs override earlier ones for the same name.
func parseSetValues(pairs []string) (map[string]float64, error) {
	values := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, raw, found := strings.Cut(pair, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid --set %q, expected name=value", pair)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --set %q: %q is not a number", pair, raw)
		}
		values[name] = v
	}
	return values, nil
}

func runResolve(cmd *cobra.Command, args []string) {
	logger := logging.New(logging.Config{
		Level:   logging.LevelWarn,
		Service: "cli",
	})
	defer logger.Close()

	values, err := parseSetValues(setValues)
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}

	manifest, err := loadCLIManifest()
	if err != nil {
		ux.Error(fmt.Sprintf("Could not load the manifest: %v", err))
		os.Exit(1)
	}
	registry, err := buildCLIRegistry(manifest)
	if err != nil {
		ux.Error(fmt.Sprintf("Could not build the registry: %v", err))
		os.Exit(1)
	}

	// --model registrations are invocation-local and override manifest
	// entries with the same name.
	extraModels, err := parseModelFlags(modelFiles)
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
	if err := model.RegisterManifestModels(registry, extraModels); err != nil {
		ux.Error(fmt.Sprintf("Could not load a model: %v", err))
		os.Exit(1)
	}

	resolverOpts := []dispatch.ResolverOption{dispatch.WithLogger(logger.Slog())}
	if manifest.Prefix != "" {
		resolverOpts = append(resolverOpts, dispatch.WithPrefix(manifest.Prefix))
	}
	resolver := dispatch.NewResolver(registry, resolverOpts...)

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	expression := args[0]
	result, err := resolver.ResolveString(ctx, expression, values)
	if err != nil {
		ux.Error(fmt.Sprintf("Resolution failed: %v", err))
		os.Exit(1)
	}

	if jsonOutput {
		out, err := json.Marshal(map[string]any{
			"expression": expression,
			"result":     result,
		})
		if err != nil {
			ux.Error(fmt.Sprintf("Could not encode the result: %v", err))
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	rendered := make([]string, len(result))
	for i, v := range result {
		rendered[i] = ux.FormatFloat(v)
	}
	ux.KeyValue(expression, strings.Join(rendered, ", "))
}
