// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func captureSubject(got **AuthSubject) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_JWT(t *testing.T) {
	m := newTestManager(t)
	token, err := m.GenerateToken("ops", []string{RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}
	mw := NewMiddleware(AuthModeJWT, m)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid bearer", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"basic scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var subject *AuthSubject
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/jobs/similarity-rebuild", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			mw.Authenticate(captureSubject(&subject)).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if subject == nil || subject.ID != "ops" || !subject.HasRole(RoleAdmin) {
					t.Errorf("subject = %+v, want ops with admin role", subject)
				}
			} else if subject != nil {
				t.Error("handler ran for a rejected request")
			}
		})
	}
}

func TestAuthenticate_NoneMode(t *testing.T) {
	var subject *AuthSubject
	rec := httptest.NewRecorder()
	NewMiddleware(AuthModeNone, nil).Authenticate(captureSubject(&subject)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if subject == nil || subject.AuthMethod != AuthModeNone || !subject.HasRole(RoleAdmin) {
		t.Errorf("subject = %+v, want local admin", subject)
	}
}

func TestAuthenticate_CustomErrorWriter(t *testing.T) {
	mw := NewMiddleware(AuthModeJWT, newTestManager(t))
	called := false
	mw.SetErrorWriter(func(w http.ResponseWriter, _ *http.Request, status int, _ string) {
		called = true
		w.WriteHeader(status)
	})

	rec := httptest.NewRecorder()
	mw.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if !called || rec.Code != http.StatusUnauthorized {
		t.Errorf("custom writer called = %v, status = %d", called, rec.Code)
	}
}
