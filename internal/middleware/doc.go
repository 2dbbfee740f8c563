// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

/*
Package middleware provides the infrastructure HTTP middleware shared by
every route: request id propagation and Prometheus instrumentation.

Both are chi-compatible (func(http.Handler) http.Handler):

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

RequestID honors an incoming X-Request-ID (truncated to 128 bytes) or
generates a UUID, echoes it in the response header and stores it, along
with a fresh correlation id, in the logging context. PrometheusMetrics labels
requests with the chi route pattern rather than the raw path so that ids in
URLs do not explode label cardinality.
*/
package middleware
