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
	"github.com/spf13/cobra"

	"github.com/AleutianAI/symcall/pkg/ux"
)

// --- Global Command Variables ---
var (
	manifestPath string   // Path to a registry manifest (default: embedded)
	plainOutput  bool     // Force unstyled output
	jsonOutput   bool     // Output as JSON for scripting
	setValues    []string // Symbol substitutions, name=value pairs
	modelFiles   []string // One-off model registrations, name=path pairs
	gridDate     string   // Target day for the timegrid check
	gridStep     string   // Grid step for the timegrid check

	rootCmd = &cobra.Command{
		Use:   "symcall",
		Short: "A cli to build, substitute, and resolve deferred call expressions",
		Long: `Symcall works with deferred call expressions: function calls whose
				arguments start as symbolic placeholders and get numeric values
				substituted in later. Once every placeholder is bound, the call
				resolves against a registry of named numeric functions.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if plainOutput {
				ux.SetPlain(true)
			}
		},
	}

	// --- Resolution ---
	resolveCmd = &cobra.Command{
		Use:   "resolve [expression]",
		Short: "Substitute values into an expression and invoke the named function",
		Args:  cobra.ExactArgs(1),
		Run:   runResolve, // Defined in cmd_resolve.go
	}

	functionsCmd = &cobra.Command{
		Use:   "functions",
		Short: "List the functions available in the registry",
		Run:   runFunctions, // Defined in cmd_functions.go
	}

	// --- Sensor Data Utilities ---
	timegridCmd = &cobra.Command{
		Use:   "timegrid [file]",
		Short: "Check a file of timestamps against the full grid of one day",
		Long: `Reads timestamp strings (one per line, or stdin when no file is
				given) and reports which instants of the target day's fixed-step
				grid have no sample.`,
		Args: cobra.MaximumNArgs(1),
		Run:  runTimegrid, // Defined in cmd_timegrid.go
	}
)

// init runs when the Go program starts
func init() {
	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false,
		"Disable styled output (also triggered by NO_COLOR or piped stdout)")
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "",
		"Registry manifest file (defaults to the embedded manifest)")

	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringArrayVar(&setValues, "set", nil,
		"Substitution as name=value, repeatable (e.g. --set a=1.2 --set b=3.4)")
	resolveCmd.Flags().StringArrayVar(&modelFiles, "model", nil,
		"Register a LightGBM model for this invocation as name=path, repeatable")
	resolveCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the result as JSON")

	rootCmd.AddCommand(functionsCmd)

	rootCmd.AddCommand(timegridCmd)
	timegridCmd.Flags().StringVar(&gridDate, "date", "",
		"Target day as YYYY-MM-DD (default: today)")
	timegridCmd.Flags().StringVar(&gridStep, "step", "10s",
		"Grid step as a Go duration (e.g. 10s, 1m)")
	timegridCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the result as JSON")
}
