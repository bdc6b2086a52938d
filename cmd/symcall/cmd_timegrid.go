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
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/symcall/pkg/timegrid"
	"github.com/AleutianAI/symcall/pkg/ux"
)

// maxTimestampLines caps the input size; a full day at one-second
// resolution is 86400 lines.
const maxTimestampLines = 1_000_000

// readTimestampLines collects non-empty trimmed lines from r.
func readTimestampLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) > maxTimestampLines {
			return nil, fmt.Errorf("input exceeds %d lines", maxTimestampLines)
		}
	}
	return lines, scanner.Err()
}

func runTimegrid(cmd *cobra.Command, args []string) {
	var input io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			ux.Error(fmt.Sprintf("Could not open %s: %v", args[0], err))
			os.Exit(1)
		}
		defer f.Close()
		input = f
	}

	day := time.Now()
	if gridDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", gridDate, time.Local)
		if err != nil {
			ux.Error(fmt.Sprintf("Invalid --date %q, expected YYYY-MM-DD", gridDate))
			os.Exit(1)
		}
		day = parsed
	}

	step, err := time.ParseDuration(gridStep)
	if err != nil {
		ux.Error(fmt.Sprintf("Invalid --step %q: %v", gridStep, err))
		os.Exit(1)
	}

	values, err := readTimestampLines(input)
	if err != nil {
		ux.Error(fmt.Sprintf("Could not read timestamps: %v", err))
		os.Exit(1)
	}

	result, err := timegrid.Check(values, day, step)
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}

	if jsonOutput {
		out, err := json.Marshal(result)
		if err != nil {
			ux.Error(fmt.Sprintf("Could not encode the result: %v", err))
			os.Exit(1)
		}
		fmt.Println(string(out))
		if !result.Match {
			os.Exit(2)
		}
		return
	}

	if result.Match {
		ux.Success(fmt.Sprintf("All %d grid instants covered on %s",
			len(values), day.Format("2006-01-02")))
		return
	}

	if result.InvalidCount > 0 {
		ux.Warning(fmt.Sprintf("%d input lines did not parse as timestamps", result.InvalidCount))
	}
	if result.MissingCount > 0 {
		ux.Error(fmt.Sprintf("%d grid instants have no sample", result.MissingCount))
		shown := result.Missing
		if len(shown) > 10 {
			shown = shown[:10]
		}
		for _, t := range shown {
			ux.Info(t.Format("2006-01-02 15:04:05"))
		}
		if len(result.Missing) > 10 {
			ux.Muted(fmt.Sprintf("... and %d more", len(result.Missing)-10))
		}
	}
	os.Exit(2)
}
