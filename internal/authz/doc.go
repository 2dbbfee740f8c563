// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

// Package authz authorizes admin requests with Casbin RBAC.
//
// The embedded model matches (subject, path, action) with keyMatch2 paths
// and role inheritance. The embedded policy grants the admin role read and
// write access to the job endpoints and the operator role read access.
// Both can be overridden with SECURITY_AUTHZ_MODEL_PATH and
// SECURITY_AUTHZ_POLICY_PATH.
//
// HTTP methods map to actions: GET, HEAD and OPTIONS are read, POST, PUT
// and PATCH are write, DELETE is delete.
package authz
