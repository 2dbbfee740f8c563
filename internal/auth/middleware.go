// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/shopfront/internal/logging"
)

// ErrMissingToken is reported when no bearer token is present.
var ErrMissingToken = errors.New("missing bearer token")

// ErrorWriter renders an authentication failure. The API package supplies
// one that writes its JSON envelope.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, message string)

// Middleware authenticates admin requests.
type Middleware struct {
	mode       AuthMode
	jwtManager *JWTManager
	onError    ErrorWriter
}

// NewMiddleware creates the middleware. jwtManager may be nil only in
// AuthModeNone.
func NewMiddleware(mode AuthMode, jwtManager *JWTManager) *Middleware {
	return &Middleware{
		mode:       mode,
		jwtManager: jwtManager,
		onError: func(w http.ResponseWriter, _ *http.Request, status int, message string) {
			http.Error(w, message, status)
		},
	}
}

// SetErrorWriter replaces the plain-text error writer.
func (m *Middleware) SetErrorWriter(fn ErrorWriter) {
	if fn != nil {
		m.onError = fn
	}
}

// Authenticate attaches an AuthSubject to the request context or rejects
// the request with 401.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.mode == AuthModeNone {
			next.ServeHTTP(w, r.WithContext(ContextWithSubject(r.Context(), localOperator())))
			return
		}

		token, err := bearerToken(r)
		if err != nil {
			m.onError(w, r, http.StatusUnauthorized, "Unauthorized: "+err.Error())
			return
		}
		if m.jwtManager == nil {
			m.onError(w, r, http.StatusUnauthorized, "Unauthorized: token validation unavailable")
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg("Token validation failed")
			m.onError(w, r, http.StatusUnauthorized, "Unauthorized: invalid token")
			return
		}

		ctx := ContextWithSubject(r.Context(), SubjectFromClaims(claims))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("authorization header must be 'Bearer <token>'")
	}
	return strings.TrimSpace(token), nil
}
