// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", buf.String(), err)
	}
	return m
}

func TestSlogHandler_Levels(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
		want  string
	}{
		{"debug", slog.LevelDebug, "debug"},
		{"info", slog.LevelInfo, "info"},
		{"warn", slog.LevelWarn, "warn"},
		{"error", slog.LevelError, "error"},
	}

	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	defer zerolog.SetGlobalLevel(prev)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := NewSlogHandlerWithLogger(zerolog.New(&buf).Level(zerolog.TraceLevel))
			slog.New(h).Log(context.Background(), tt.level, "hello")

			m := decodeLine(t, &buf)
			if m["level"] != tt.want {
				t.Errorf("level = %v, want %s", m["level"], tt.want)
			}
			if m[zerolog.MessageFieldName] != "hello" {
				t.Errorf("message = %v", m[zerolog.MessageFieldName])
			}
		})
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	h := NewSlogHandlerWithLogger(zerolog.New(&bytes.Buffer{}).Level(zerolog.InfoLevel))
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("info logger should not enable debug")
	}
	if !h.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("info logger should enable warn")
	}
}

func TestSlogHandler_Attributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf))).
		With("service", "api-server").
		WithGroup("supervisor")

	logger.Info("service restarted",
		"attempt", 3,
		"healthy", true,
		"backoff", 2*time.Second,
		slog.Group("failure", "reason", "timeout"),
	)

	m := decodeLine(t, &buf)
	checks := map[string]interface{}{
		"service":                   "api-server",
		"supervisor.attempt":        float64(3),
		"supervisor.healthy":        true,
		"supervisor.failure.reason": "timeout",
	}
	for k, want := range checks {
		if m[k] != want {
			t.Errorf("%s = %v, want %v", k, m[k], want)
		}
	}
	if _, ok := m["supervisor.backoff"]; !ok {
		t.Errorf("missing duration attribute: %v", m)
	}
}

func TestSlogHandler_WithGroupEmpty(t *testing.T) {
	h := NewSlogHandlerWithLogger(zerolog.Nop())
	if h.WithGroup("") != h {
		t.Error("WithGroup(\"\") should return the receiver")
	}
}

func TestNewSlogLogger_UsesGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	SetLogger(zerolog.New(&buf))
	defer SetLogger(prev)

	NewSlogLogger().Info("via global", "k", "v")
	if !strings.Contains(buf.String(), "via global") {
		t.Errorf("output = %q", buf.String())
	}
}
