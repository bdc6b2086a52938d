// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package model adapts pre-trained gradient-boosting models to the
// dispatch.Callable interface.
//
// The model itself stays an opaque collaborator: one operation,
// predict(featureVector) -> numericResult, with a fixed feature count.
// Load failures surface at startup; prediction failures surface as
// dispatch.ErrInvocation when invoked through the resolver.
package model

import (
	"context"
	"fmt"

	"github.com/dmitryikh/leaves"

	"github.com/AleutianAI/symcall/services/resolver/dispatch"
)

// LoadLightGBM loads a LightGBM model file and wraps its prediction
// function as a callable.
//
// Description:
//
//	Reads a model in LightGBM text format and returns a callable of
//	fixed arity equal to the model's feature count. The callable is
//	reentrant; leaves ensembles are read-only after load.
//
// Inputs:
//
//	name - The registry key to expose the model under.
//	path - The model file path (LightGBM text format).
//
// Outputs:
//
//	dispatch.Callable - Predict wrapped as a fixed-arity callable
//	error - Non-nil if the file cannot be loaded
func LoadLightGBM(name, path string) (dispatch.Callable, error) {
	ensemble, err := leaves.LGEnsembleFromFile(path, true)
	if err != nil {
		return nil, fmt.Errorf("load lightgbm model %s: %w", path, err)
	}

	arity := ensemble.NFeatures()
	fn := func(_ context.Context, args []float64) ([]float64, error) {
		if len(args) != arity {
			return nil, fmt.Errorf("model %s expects %d features, got %d", name, arity, len(args))
		}
		return dispatch.Scalar(ensemble.PredictSingle(args, 0)), nil
	}
	return dispatch.NewCallable(name, arity, fn), nil
}

// RegisterManifestModels loads and registers every model named in the
// manifest.
//
// Inputs:
//
//	registry - The registry to populate. Must not be nil.
//	entries - Model entries from the manifest.
//
// Outputs:
//
//	error - Non-nil if any model fails to load; the registry is left
//	        with the models registered so far.
func RegisterManifestModels(registry *dispatch.Registry, entries []dispatch.ModelEntry) error {
	for _, entry := range entries {
		callable, err := LoadLightGBM(entry.Name, entry.Path)
		if err != nil {
			return err
		}
		registry.Register(callable)
	}
	return nil
}
