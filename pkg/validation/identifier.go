// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation utilities for names that
// cross trust boundaries.
//
// Symbol and function names arrive from expression text typed by users
// or posted to the resolver service, and end up as registry lookup keys
// and log attributes. Validating them here keeps arbitrary strings out
// of those paths.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierPattern matches valid symbol and function names.
// Allows: letters, digits, underscores; must not start with a digit.
// Max length: 64 characters.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// ValidateIdentifier validates a symbol or function name.
//
// Valid identifiers:
//   - 1-64 characters
//   - Letters A-Z a-z, digits 0-9, underscores
//   - First character is not a digit
//
// Returns an error if the name is invalid.
//
// Example:
//
//	if err := validation.ValidateIdentifier(name); err != nil {
//	    return nil, fmt.Errorf("invalid function name: %w", err)
//	}
//	// Safe to use as a registry key
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("identifier cannot be empty")
	}

	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier: %q (must be 1-64 letters, digits, or underscores, not starting with a digit)", name)
	}

	return nil
}

// ValidateIdentifiers validates multiple names.
// Returns an error listing all invalid names if any fail validation.
func ValidateIdentifiers(names []string) error {
	var invalid []string
	for _, n := range names {
		if err := ValidateIdentifier(n); err != nil {
			invalid = append(invalid, n)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid identifiers: %v", invalid)
	}
	return nil
}

// SanitizeIdentifier normalizes and validates a name.
// Returns the trimmed name if valid, or an error if invalid.
//
// Use this when accepting names from request bodies or CLI flags:
//
//	safeName, err := validation.SanitizeIdentifier(userInput)
//	if err != nil {
//	    return err
//	}
func SanitizeIdentifier(name string) (string, error) {
	normalized := strings.TrimSpace(name)
	if err := ValidateIdentifier(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}
