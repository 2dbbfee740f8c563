// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/tomtom215/shopfront/internal/eventprocessor"
)

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		opt        envOption
		wantStatus string
		unhealthy  string
	}{
		{"all healthy", func(*Dependencies) {}, "healthy", ""},
		{"database down", func(d *Dependencies) { d.DB = fakePinger{err: errBoom} }, "degraded", "database"},
		{"cache missing", func(d *Dependencies) { d.Cache = nil }, "degraded", "cache"},
		{"bus unhealthy", func(d *Dependencies) {
			d.EventHealth = append(d.EventHealth, fakeHealth{eventprocessor.ComponentHealth{Name: "event_bus", Error: "disconnected"}})
		}, "degraded", "event_bus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.opt)
			rec, resp := env.do(t, http.MethodGet, "/api/v1/health", nil, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			var health HealthStatus
			resp.decode(t, &health)
			if health.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", health.Status, tt.wantStatus)
			}
			if tt.unhealthy != "" {
				c, ok := health.Components[tt.unhealthy]
				if !ok || c.Healthy {
					t.Errorf("component %s = %+v, want unhealthy", tt.unhealthy, c)
				}
			}
		})
	}
}

func TestHealthReady(t *testing.T) {
	env := newTestEnv(t)
	if rec, _ := env.do(t, http.MethodGet, "/api/v1/health/ready", nil, nil); rec.Code != http.StatusOK {
		t.Errorf("ready status = %d, want 200", rec.Code)
	}

	down := newTestEnv(t, func(d *Dependencies) { d.DB = fakePinger{err: errBoom} })
	if rec, _ := down.do(t, http.MethodGet, "/api/v1/health/ready", nil, nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want 503", rec.Code)
	}
}

func TestHealthLive(t *testing.T) {
	env := newTestEnv(t, func(d *Dependencies) { d.DB = fakePinger{err: errBoom} })
	if rec, _ := env.do(t, http.MethodGet, "/api/v1/health/live", nil, nil); rec.Code != http.StatusOK {
		t.Errorf("live status = %d, want 200", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/api/v1/health/live", nil, nil)

	rec, _ := env.do(t, http.MethodGet, "/metrics", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "shopfront_api_requests_total") {
		t.Error("metrics output lacks shopfront_api_requests_total")
	}
}
