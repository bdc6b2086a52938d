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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/symcall/pkg/ux"
	"github.com/AleutianAI/symcall/services/resolver/dispatch"
)

func runFunctions(cmd *cobra.Command, args []string) {
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

	ux.Title("Registered functions")
	for _, name := range registry.Names() {
		callable, ok := registry.Get(name)
		if !ok {
			continue
		}
		arity := "variadic"
		if a := callable.Arity(); a != dispatch.ArityVariadic {
			arity = fmt.Sprintf("%d args", a)
		}
		ux.KeyValue(name, arity)
	}
	if manifest.Prefix != "" {
		ux.Muted(fmt.Sprintf("Calls prefixed with %q resolve against the stripped name.", manifest.Prefix))
	}
}
