// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

/*
Package auth authenticates requests to the admin job endpoints.

Storefront reads and event intake are anonymous; only the admin routes run
behind Middleware.Authenticate. Two modes are supported (AUTH_MODE):

  - jwt: HS256 bearer tokens signed with JWT_SECRET. The token subject and
    roles become an AuthSubject on the request context.
  - none: every request is treated as the local operator with the admin
    role. Refused by config validation when ENVIRONMENT=production.

Authorization decisions are made by package authz from the subject's roles.

Usage:

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
	    return err
	}
	mw := auth.NewMiddleware(auth.AuthModeJWT, jwtManager)
	r.With(mw.Authenticate).Post("/admin/jobs/{job}", handler.TriggerJob)

Tokens are minted out of band, for example with the server's -issue-token
flag:

	token, err := jwtManager.GenerateToken("ops", []string{"admin"})
*/
package auth
