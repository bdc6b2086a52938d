// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
		{Level(-1), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.level.String()
			if got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_toSlogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{Level(99), slog.LevelInfo}, // Unknown defaults to Info
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			got := tt.level.toSlogLevel()
			if got != tt.want {
				t.Errorf("Level.toSlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Logger Tests
// =============================================================================

func TestNew_Defaults(t *testing.T) {
	logger := New(Config{})
	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.Slog() == nil {
		t.Error("Slog() returned nil")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	if logger == nil {
		t.Fatal("Default() returned nil")
	}
	if logger.config.Service != "symcall" {
		t.Errorf("Default() service = %q, want %q", logger.config.Service, "symcall")
	}
	if logger.config.Level != LevelInfo {
		t.Errorf("Default() level = %v, want %v", logger.config.Level, LevelInfo)
	}
}

func TestNew_FileLogging(t *testing.T) {
	logDir := t.TempDir()

	logger := New(Config{
		Level:   LevelDebug,
		LogDir:  logDir,
		Service: "testsvc",
		Quiet:   true,
	})
	logger.Info("file logging check", "key", "value")

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	wantName := "testsvc_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(logDir, wantName))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "file logging check") {
		t.Errorf("log file missing message, got: %s", content)
	}
	if !strings.Contains(content, `"service":"testsvc"`) {
		t.Errorf("log file missing service attribute, got: %s", content)
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	logDir := t.TempDir()

	logger := New(Config{
		Level:   LevelWarn,
		LogDir:  logDir,
		Service: "filter",
		Quiet:   true,
	})
	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	wantName := "filter_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(logDir, wantName))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	content := string(data)
	if strings.Contains(content, "debug message") || strings.Contains(content, "info message") {
		t.Errorf("log file contains filtered levels: %s", content)
	}
	if !strings.Contains(content, "warn message") || !strings.Contains(content, "error message") {
		t.Errorf("log file missing expected levels: %s", content)
	}
}

func TestLogger_With(t *testing.T) {
	logDir := t.TempDir()

	base := New(Config{
		Level:   LevelInfo,
		LogDir:  logDir,
		Service: "withsvc",
		Quiet:   true,
	})
	child := base.With("request_id", "abc123")
	child.Info("child message")
	base.Info("base message")

	if err := base.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	wantName := "withsvc_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(logDir, wantName))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		hasAttr := strings.Contains(line, "abc123")
		if strings.Contains(line, "child message") && !hasAttr {
			t.Errorf("child line missing attribute: %s", line)
		}
		if strings.Contains(line, "base message") && hasAttr {
			t.Errorf("base line leaked child attribute: %s", line)
		}
	}
}

// =============================================================================
// Exporter Tests
// =============================================================================

func TestBufferedExporter(t *testing.T) {
	exporter := NewBufferedExporter()
	logger := New(Config{
		Level:    LevelInfo,
		Service:  "export",
		Quiet:    true,
		Exporter: exporter,
	})
	logger.Info("exported message", "k", "v")
	logger.Debug("filtered message")

	// Export runs on a goroutine; give it a moment.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(exporter.Entries()) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	entries := exporter.Entries()
	if len(entries) != 1 {
		t.Fatalf("Entries() len = %d, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Message != "exported message" {
		t.Errorf("Message = %q, want %q", entry.Message, "exported message")
	}
	if entry.Service != "export" {
		t.Errorf("Service = %q, want %q", entry.Service, "export")
	}
	if entry.Attrs["k"] != "v" {
		t.Errorf("Attrs[k] = %v, want %q", entry.Attrs["k"], "v")
	}

	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestArgsToMap(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want int
	}{
		{"empty", nil, 0},
		{"pairs", []any{"a", 1, "b", 2}, 2},
		{"odd trailing key dropped", []any{"a", 1, "dangling"}, 1},
		{"non-string key skipped", []any{42, "x", "a", 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := argsToMap(tt.args)
			if len(got) != tt.want {
				t.Errorf("argsToMap() len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	got := expandPath("~/logs")
	want := filepath.Join(home, "logs")
	if got != want {
		t.Errorf("expandPath(~/logs) = %q, want %q", got, want)
	}

	if got := expandPath("/var/log"); got != "/var/log" {
		t.Errorf("expandPath(/var/log) = %q, want unchanged", got)
	}
}
