// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

// Package logging provides the zerolog-based structured logger shared by every
// Shopfront component.
//
// The global logger is configured once from main via Init and is safe to use
// before that call (it falls back to JSON at info level on stderr).
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Int64("item_id", id).Msg("similarity rebuilt")
//	logging.Ctx(ctx).Warn().Err(err).Msg("cache read failed")
//
// Components that hold their own logger derive it with WithComponent so every
// line carries a "component" field (recommend, similarity, popularity, cache,
// events, jobs, api).
//
// SlogHandler bridges log/slog onto zerolog for libraries that only speak slog,
// most notably sutureslog for supervisor events.
package logging
