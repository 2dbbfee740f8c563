// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package authz

import (
	"net/http"

	"github.com/tomtom215/shopfront/internal/auth"
	"github.com/tomtom215/shopfront/internal/logging"
)

// Middleware authorizes requests already authenticated by auth.Middleware.
type Middleware struct {
	enforcer *Enforcer
	onError  auth.ErrorWriter
}

// NewMiddleware creates a middleware writing plain-text errors.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{
		enforcer: enforcer,
		onError: func(w http.ResponseWriter, _ *http.Request, status int, message string) {
			http.Error(w, message, status)
		},
	}
}

// SetErrorWriter replaces the plain-text error writer.
func (m *Middleware) SetErrorWriter(fn auth.ErrorWriter) {
	if fn != nil {
		m.onError = fn
	}
}

// AuthorizeRequest derives the action from the HTTP method and the object
// from the request path.
func (m *Middleware) AuthorizeRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := auth.SubjectFromContext(r.Context())
		if subject == nil {
			m.onError(w, r, http.StatusForbidden, "Forbidden: no authentication context")
			return
		}

		action := methodToAction(r.Method)
		allowed, err := m.enforcer.EnforceWithRoles(subject.ID, subject.Roles, r.URL.Path, action)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
			m.onError(w, r, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !allowed {
			logging.Ctx(r.Context()).Warn().
				Str("subject", subject.ID).
				Strs("roles", subject.Roles).
				Str("path", r.URL.Path).
				Str("action", action).
				Msg("Access denied")
			m.onError(w, r, http.StatusForbidden, "Forbidden: insufficient permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return "write"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}
