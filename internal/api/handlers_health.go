// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// healthCheckTimeout bounds each dependency probe.
const healthCheckTimeout = 2 * time.Second

// ComponentStatus is the health of one dependency.
type ComponentStatus struct {
	Healthy bool                   `json:"healthy"`
	Error   string                 `json:"error,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status     string                     `json:"status"`
	Uptime     float64                    `json:"uptime_seconds"`
	Components map[string]ComponentStatus `json:"components"`
}

// breakerStater is implemented by cache.BreakerStore.
type breakerStater interface {
	State() gobreaker.State
}

// Health handles GET /health. The database is required; a degraded cache
// or event bus is reported but recommendations keep working without them.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	components := map[string]ComponentStatus{
		"database": pingStatus(ctx, h.deps.DB),
		"cache":    h.cacheStatus(ctx),
	}
	for _, checkable := range h.deps.EventHealth {
		ch := checkable.HealthCheck(ctx)
		components[ch.Name] = ComponentStatus{Healthy: ch.Healthy, Error: ch.Error, Details: ch.Details}
	}

	status := "healthy"
	for _, c := range components {
		if !c.Healthy {
			status = "degraded"
			break
		}
	}

	NewResponseWriter(w, r).Success(HealthStatus{
		Status:     status,
		Uptime:     time.Since(h.startTime).Seconds(),
		Components: components,
	})
}

// HealthLive handles GET /health/live.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":          true,
		"uptime_seconds": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles GET /health/ready: 503 until the database answers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	db := pingStatus(ctx, h.deps.DB)
	if !db.Healthy {
		NewResponseWriter(w, r).ServiceUnavailable("Database not reachable")
		return
	}
	NewResponseWriter(w, r).Success(map[string]interface{}{"ready": true})
}

func pingStatus(ctx context.Context, p Pinger) ComponentStatus {
	if p == nil {
		return ComponentStatus{Healthy: false, Error: "not configured"}
	}
	if err := p.Ping(ctx); err != nil {
		return ComponentStatus{Healthy: false, Error: err.Error()}
	}
	return ComponentStatus{Healthy: true}
}

func (h *Handler) cacheStatus(ctx context.Context) ComponentStatus {
	if h.deps.Cache == nil {
		return ComponentStatus{Healthy: false, Error: "not configured"}
	}
	status := pingStatus(ctx, h.deps.Cache)
	if b, ok := h.deps.Cache.(breakerStater); ok {
		state := b.State()
		status.Details = map[string]interface{}{"breaker_state": state.String()}
		if state == gobreaker.StateOpen {
			status.Healthy = false
		}
	}
	return status
}
