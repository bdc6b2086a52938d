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
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/symcall/pkg/validation"
)

const (
	// MaxManifestSize is the maximum allowed manifest file size (1MB).
	// Prevents memory issues from large files.
	MaxManifestSize = 1024 * 1024

	// MaxModelsInManifest caps the number of model entries.
	MaxModelsInManifest = 64
)

//go:embed manifest.yaml
var defaultManifestYAML []byte

// ModelEntry names a LightGBM model file to register as a callable.
type ModelEntry struct {
	// Name is the registry key the model's predict function is
	// registered under.
	Name string `yaml:"name"`

	// Path is the model file on disk (LightGBM text format).
	Path string `yaml:"path"`
}

// Manifest describes the registry contents assembled at startup.
//
// The manifest is read once; the resulting registry is treated as
// read-only for the life of the process.
type Manifest struct {
	// Prefix is the recognized bound-call prefix (default "self_").
	Prefix string `yaml:"prefix"`

	// Builtins lists stand-in callables to register. Valid names are
	// reported by BuiltinNames().
	Builtins []string `yaml:"builtins"`

	// Models lists LightGBM models to register.
	Models []ModelEntry `yaml:"models"`
}

// DefaultManifest returns the embedded default manifest.
//
// Outputs:
//
//	Manifest - prefix "self_" and all builtins, no models.
func DefaultManifest() Manifest {
	m, err := parseManifest(defaultManifestYAML)
	if err != nil {
		// The embedded manifest is compiled in; failure to parse it is
		// a build defect, not a runtime condition.
		panic("dispatch: embedded manifest invalid: " + err.Error())
	}
	return m
}

// LoadManifest reads a manifest from disk.
//
// Description:
//
//	Reads and validates a YAML manifest. Unknown builtin names and
//	invalid identifiers are rejected here, at startup, rather than
//	surfacing later as resolution failures.
//
// Inputs:
//
//	path - The manifest file path.
//
// Outputs:
//
//	Manifest - The validated manifest
//	error - Non-nil on read, parse, or validation failure
func LoadManifest(path string) (Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("stat manifest: %w", err)
	}
	if info.Size() > MaxManifestSize {
		return Manifest{}, fmt.Errorf("manifest %s exceeds %d bytes", path, MaxManifestSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	return parseManifest(data)
}

func parseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

func (m Manifest) validate() error {
	if m.Prefix != "" {
		if err := validation.ValidateIdentifier(m.Prefix); err != nil {
			return fmt.Errorf("manifest prefix: %w", err)
		}
	}
	for _, b := range m.Builtins {
		if _, ok := builtinsByName[b]; !ok {
			return fmt.Errorf("manifest builtin %q unknown (valid: %v)", b, BuiltinNames())
		}
	}
	if len(m.Models) > MaxModelsInManifest {
		return fmt.Errorf("manifest lists %d models, maximum is %d", len(m.Models), MaxModelsInManifest)
	}
	for _, entry := range m.Models {
		if err := validation.ValidateIdentifier(entry.Name); err != nil {
			return fmt.Errorf("manifest model name: %w", err)
		}
		if entry.Path == "" {
			return fmt.Errorf("manifest model %q has no path", entry.Name)
		}
	}
	return nil
}

// BuildRegistry assembles a registry from the manifest's builtins.
//
// Description:
//
//	Registers the listed builtin callables. Model entries are not
//	handled here; the model package registers those so this package
//	stays free of inference dependencies.
//
// Outputs:
//
//	*Registry - Registry holding the manifest's builtins
func (m Manifest) BuildRegistry() *Registry {
	registry := NewRegistry()
	for _, b := range m.Builtins {
		if ctor, ok := builtinsByName[b]; ok {
			registry.Register(ctor())
		}
	}
	return registry
}
