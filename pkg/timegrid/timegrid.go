// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package timegrid checks a list of timestamp strings against the
// complete fixed-step grid of one calendar day.
//
// Sensor exports are expected to contain one sample per grid instant
// (by default every 10 seconds, 8640 samples per day). The check
// reports instants with no sample and input strings that do not parse
// as timestamps. Samples that parse but fall off-grid or outside the
// target day simply never match a grid instant; they are not errors.
package timegrid

import (
	"fmt"
	"time"
)

// DefaultStep is the expected sample interval.
const DefaultStep = 10 * time.Second

// acceptedLayouts are the timestamp formats recognized in input, tried
// in order.
var acceptedLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Result summarizes a grid check.
type Result struct {
	// Match is true when no instants are missing and no inputs were
	// invalid.
	Match bool `json:"match"`

	// MissingCount is the number of grid instants with no sample.
	MissingCount int `json:"missing_count"`

	// Missing lists the grid instants with no sample, ascending.
	Missing []time.Time `json:"missing,omitempty"`

	// InvalidCount is the number of unparseable input strings.
	InvalidCount int `json:"invalid_count"`

	// InvalidPositions lists the zero-based input positions of
	// unparseable strings, ascending.
	InvalidPositions []int `json:"invalid_positions,omitempty"`
}

// Check verifies values against the grid for one day.
//
// Description:
//
//	Builds the truth grid [00:00:00, 24:00:00) for the given day at
//	the given step, parses every input string, and reports missing
//	grid instants and invalid inputs. Duplicate samples for the same
//	instant collapse onto one grid slot.
//
// Inputs:
//
//	values - Timestamp strings to check.
//	day - Any instant on the target day; truncated to midnight in its
//	      own location.
//	step - Grid step. Zero uses DefaultStep.
//
// Outputs:
//
//	Result - The check summary
//	error - Non-nil only for an invalid step
func Check(values []string, day time.Time, step time.Duration) (Result, error) {
	if step == 0 {
		step = DefaultStep
	}
	if step < 0 {
		return Result{}, fmt.Errorf("timegrid: step must be positive, got %s", step)
	}

	loc := day.Location()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	var result Result
	found := make(map[int64]struct{}, len(values))
	for i, s := range values {
		t, ok := parseTimestamp(s, loc)
		if !ok {
			result.InvalidPositions = append(result.InvalidPositions, i)
			continue
		}
		found[t.Unix()] = struct{}{}
	}
	result.InvalidCount = len(result.InvalidPositions)

	for t := start; t.Before(end); t = t.Add(step) {
		if _, ok := found[t.Unix()]; !ok {
			result.Missing = append(result.Missing, t)
		}
	}
	result.MissingCount = len(result.Missing)
	result.Match = result.MissingCount == 0 && result.InvalidCount == 0
	return result, nil
}

// parseTimestamp tries the accepted layouts in order.
func parseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range acceptedLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
