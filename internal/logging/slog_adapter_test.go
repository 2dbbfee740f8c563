// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		zl    zerolog.Level
		level slog.Level
		want  bool
	}{
		{"debug logger accepts debug", zerolog.DebugLevel, slog.LevelDebug, true},
		{"info logger drops debug", zerolog.InfoLevel, slog.LevelDebug, false},
		{"warn logger accepts error", zerolog.WarnLevel, slog.LevelError, true},
		{"error logger drops warn", zerolog.ErrorLevel, slog.LevelWarn, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewSlogHandler(zerolog.New(&bytes.Buffer{}).Level(tt.zl))
			if got := h.Enabled(context.Background(), tt.level); got != tt.want {
				t.Errorf("Enabled = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSlogHandler_Attributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandler(zerolog.New(&buf))).
		With("service", "jobs").
		WithGroup("run")

	logger.Warn("service restarted",
		"attempt", 3,
		"backoff", 2*time.Second,
		"ok", false,
		"error", errors.New("boom"),
	)

	out := buf.String()
	for _, want := range []string{
		`"level":"warn"`,
		`"service":"jobs"`,
		`"run.attempt":3`,
		`"run.ok":false`,
		`"run.error":"boom"`,
		`"message":"service restarted"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}
}

func TestSlogHandler_AttrsKeepTheirGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slog.New(NewSlogHandler(zerolog.New(&buf))).
		With("supervisor", "shopfront").
		WithGroup("event").
		With("service", "api-layer").
		WithGroup("restart").
		Info("backoff", "attempt", 2)

	out := buf.String()
	for _, want := range []string{
		`"supervisor":"shopfront"`,
		`"event.service":"api-layer"`,
		`"event.restart.attempt":2`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}
	for _, unwanted := range []string{`"event.supervisor"`, `"event.restart.service"`} {
		if strings.Contains(out, unwanted) {
			t.Errorf("output %s has %s qualified by a later group", out, unwanted)
		}
	}
}

func TestSlogHandler_WithGroupEmpty(t *testing.T) {
	t.Parallel()

	h := NewSlogHandler(zerolog.Nop())
	if h.WithGroup("") != h {
		t.Error("WithGroup(\"\") should return the same handler")
	}
}
