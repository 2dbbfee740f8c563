// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

/*
Package config loads Shopfront configuration with Koanf v2.

Sources are layered, later ones overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml or /etc/shopfront/config.yaml
 3. Environment variables, through an explicit name mapping table

Only mapped environment variables are honored so unrelated process
environment never leaks into the configuration. Some examples:

	HTTP_PORT=8080                          -> server.port
	DUCKDB_PATH=/data/shopfront.duckdb      -> database.path
	CACHE_BACKEND=redis                     -> cache.backend
	REDIS_ADDR=redis:6379                   -> cache.redis.addr
	RECOMMEND_SIMILARITY_THRESHOLD=0.2      -> recommend.similarity_threshold
	JOB_SIMILARITY_SCHEDULE="0 3 * * *"     -> jobs.similarity_rebuild.schedule
	EVENTS_TRANSPORT=nats                   -> events.transport
	CORS_ORIGINS=https://a.example,https://b.example

After unmarshaling, Validate runs the struct tags through the shared
validator and then the cross-field rules (JWT secret length, Redis address
when the Redis backend is selected, and so on).

The returned *Config is read-only after Load and safe for concurrent use.
*/
package config
