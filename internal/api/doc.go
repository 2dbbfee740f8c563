// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

/*
Package api provides the HTTP REST API of Shopfront.

Endpoints:

  - GET  /api/v1/recommendations: ranked recommendations for a shopper,
    an anchor item or a category (user_id, item_id, category_id, limit)
  - POST /api/v1/events/views, /searches, /orders: storefront event intake,
    published to the event bus and applied asynchronously (202 Accepted)
  - GET  /api/v1/admin/jobs, POST /api/v1/admin/jobs/{job}: background job
    status and manual triggers, behind JWT authentication and casbin RBAC
  - GET  /api/v1/health, /health/live, /health/ready: health probes
  - GET  /metrics: Prometheus exposition

Every JSON response uses the APIResponse envelope:

	{"success": true, "data": ..., "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "VALIDATION_FAILED", "message": "...", "details": {...}}}

Middleware, outermost first: request id and correlation id, real IP, CORS,
Prometheus request metrics, panic recovery, then per-group rate limiting
(go-chi/httprate) and security headers.
*/
package api
