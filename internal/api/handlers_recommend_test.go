// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/tomtom215/shopfront/internal/recommend"
)

func TestRecommendations_Success(t *testing.T) {
	env := newTestEnv(t)
	env.rec.recs = []recommend.Recommendation{
		{ItemID: 7, Name: "Kettle", CategoryID: 3, Price: 39.9},
		{ItemID: 9, Name: "Teapot", CategoryID: 3, Price: 24.5},
	}

	rec, resp := env.do(t, http.MethodGet, "/api/v1/recommendations?user_id=42&item_id=5&category_id=3&limit=2", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got []recommend.Recommendation
	resp.decode(t, &got)
	if len(got) != 2 || got[0].ItemID != 7 || got[1].Name != "Teapot" {
		t.Errorf("data = %+v", got)
	}
	if resp.Meta == nil || resp.Meta.Count == nil || *resp.Meta.Count != 2 {
		t.Errorf("meta = %+v, want count 2", resp.Meta)
	}
	want := recommend.Query{UserID: 42, ItemID: 5, CategoryID: 3, Limit: 2}
	if q := env.rec.lastQuery(); q != want {
		t.Errorf("query = %+v, want %+v", q, want)
	}
}

func TestRecommendations_AbsentParamsAreZero(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodGet, "/api/v1/recommendations", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if string(resp.Data) != "[]" {
		t.Errorf("data = %s, want []", resp.Data)
	}
	if q := env.rec.lastQuery(); q != (recommend.Query{}) {
		t.Errorf("query = %+v, want zero", q)
	}
}

func TestRecommendations_BadInput(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode string
	}{
		{"non-numeric user", "?user_id=abc", ErrCodeBadRequest},
		{"float item", "?item_id=1.5", ErrCodeBadRequest},
		{"negative category", "?category_id=-1", ErrCodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec, resp := env.do(t, http.MethodGet, "/api/v1/recommendations"+tt.query, nil, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if resp.errorCode() != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.errorCode(), tt.wantCode)
			}
		})
	}
}

func TestRecommendations_LimitIsNeverRejected(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"negative passes through", "?limit=-3", -3},
		{"non-numeric becomes default", "?limit=abc", 0},
		{"float becomes default", "?limit=2.5", 0},
		{"too large is capped", "?limit=500", maxRecommendationLimit},
		{"in range", "?limit=12", 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec, _ := env.do(t, http.MethodGet, "/api/v1/recommendations"+tt.query, nil, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if q := env.rec.lastQuery(); q.Limit != tt.want {
				t.Errorf("limit = %d, want %d", q.Limit, tt.want)
			}
		})
	}
}

func TestRecommendations_Timeout(t *testing.T) {
	env := newTestEnv(t)
	env.rec.delay = 5 * time.Second

	rec, resp := env.do(t, http.MethodGet, "/api/v1/recommendations?user_id=1", nil, nil)
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", rec.Code)
	}
	if resp.errorCode() != ErrCodeTimeout {
		t.Errorf("code = %q", resp.errorCode())
	}
}

func TestRecommendations_ServiceError(t *testing.T) {
	env := newTestEnv(t)
	env.rec.err = errBoom

	rec, resp := env.do(t, http.MethodGet, "/api/v1/recommendations?item_id=1", nil, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if resp.Error == nil || resp.Error.Message == errBoom.Error() {
		t.Errorf("error = %+v, internal error must not leak", resp.Error)
	}
}
