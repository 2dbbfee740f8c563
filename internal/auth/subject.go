// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package auth

import (
	"context"
	"fmt"
	"slices"
)

// AuthMode is the authentication strategy for admin routes.
type AuthMode string

const (
	// AuthModeNone trusts every caller as the local operator.
	AuthModeNone AuthMode = "none"

	// AuthModeJWT requires an HS256 bearer token.
	AuthModeJWT AuthMode = "jwt"
)

// RoleAdmin may trigger and inspect jobs.
const RoleAdmin = "admin"

// ParseAuthMode converts a config string to AuthMode.
func ParseAuthMode(s string) (AuthMode, error) {
	switch s {
	case "none", "":
		return AuthModeNone, nil
	case "jwt":
		return AuthModeJWT, nil
	default:
		return "", fmt.Errorf("invalid auth mode: %q", s)
	}
}

// AuthSubject is the authenticated caller.
type AuthSubject struct {
	ID         string   `json:"id"`
	Roles      []string `json:"roles,omitempty"`
	Issuer     string   `json:"issuer,omitempty"`
	AuthMethod AuthMode `json:"auth_method"`
	ExpiresAt  int64    `json:"expires_at,omitempty"`
}

// HasRole reports whether the subject carries role.
func (s *AuthSubject) HasRole(role string) bool {
	return role != "" && slices.Contains(s.Roles, role)
}

// SubjectFromClaims converts validated claims. Returns nil for nil claims.
func SubjectFromClaims(claims *Claims) *AuthSubject {
	if claims == nil {
		return nil
	}
	subject := &AuthSubject{
		ID:         claims.Subject,
		Roles:      slices.Clone(claims.Roles),
		Issuer:     claims.Issuer,
		AuthMethod: AuthModeJWT,
	}
	if claims.ExpiresAt != nil {
		subject.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return subject
}

// localOperator is the subject used when authentication is disabled.
func localOperator() *AuthSubject {
	return &AuthSubject{
		ID:         "local",
		Roles:      []string{RoleAdmin},
		Issuer:     "local",
		AuthMethod: AuthModeNone,
	}
}

type subjectKey struct{}

// ContextWithSubject attaches subject to ctx.
func ContextWithSubject(ctx context.Context, subject *AuthSubject) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// SubjectFromContext returns nil for unauthenticated requests.
func SubjectFromContext(ctx context.Context) *AuthSubject {
	subject, _ := ctx.Value(subjectKey{}).(*AuthSubject)
	return subject
}
