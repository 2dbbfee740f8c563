// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/shopfront/config.yaml",
	"/etc/shopfront/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/shopfront.duckdb",
			MaxMemory: "1GB",
		},
		Cache: CacheConfig{
			Backend: "memory",
			Redis: RedisConfig{
				Addr:         "127.0.0.1:6379",
				DialTimeout:  2 * time.Second,
				ReadTimeout:  500 * time.Millisecond,
				WriteTimeout: 500 * time.Millisecond,
			},
			Badger: BadgerConfig{
				Path: "/data/cache",
			},
			Breaker: BreakerConfig{
				Enabled:             true,
				ConsecutiveFailures: 5,
				MaxRequests:         1,
				Interval:            time.Minute,
				Timeout:             30 * time.Second,
			},
		},
		Recommend: RecommendConfig{
			DefaultLimit:            6,
			CandidateLimit:          10,
			PopularityLimit:         10,
			CollaborativeMinHistory: 50,
			ResultCacheTTL:          6 * time.Hour,
			PopularityCacheTTL:      6 * time.Hour,
			GraphCacheTTL:           24 * time.Hour,
			SimilarityThreshold:     0.15,
			MaxNeighbors:            20,
			PopularityLookbackWeeks: 4,
			ViewHistoryCap:          50,
		},
		Jobs: JobsConfig{
			SimilarityRebuild: JobConfig{
				Enabled:  true,
				Schedule: "0 3 * * *",
				Timeout:  30 * time.Minute,
			},
			// The aggregation window is the current UTC day, so it runs
			// just before midnight.
			PopularityAggregation: JobConfig{
				Enabled:  true,
				Schedule: "55 23 * * *",
				Timeout:  10 * time.Minute,
			},
			ViewHistoryCleanup: JobConfig{
				Enabled:  true,
				Schedule: "30 4 * * *",
				Timeout:  5 * time.Minute,
			},
			ViewHistoryRetention: 30 * 24 * time.Hour,
		},
		Events: EventsConfig{
			Enabled:   true,
			Transport: "channel",
			NATS: NATSConfig{
				URL:                 "nats://127.0.0.1:4222",
				EmbeddedServer:      true,
				Host:                "127.0.0.1",
				Port:                4222,
				StoreDir:            "/data/nats/jetstream",
				MaxMemory:           256 << 20,
				MaxStore:            2 << 30,
				StreamName:          "SHOPFRONT",
				StreamRetentionDays: 7,
				DurableName:         "shopfront-ingest",
				QueueGroup:          "ingest",
				SubscribersCount:    2,
			},
			RouterRetryCount:           3,
			RouterRetryInitialInterval: 100 * time.Millisecond,
			PoisonQueueTopic:           "shop.poison",
			RouterCloseTimeout:         30 * time.Second,
		},
		Security: SecurityConfig{
			AuthMode:        "jwt",
			JWTIssuer:       "shopfront",
			TokenTTL:        time.Hour,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads defaults, then the optional config file, then mapped
// environment variables, and validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"seed_demo_data":    "database.seed_demo_data",

	// Cache
	"cache_backend":                      "cache.backend",
	"redis_addr":                         "cache.redis.addr",
	"redis_password":                     "cache.redis.password",
	"redis_db":                           "cache.redis.db",
	"redis_dial_timeout":                 "cache.redis.dial_timeout",
	"badger_path":                        "cache.badger.path",
	"badger_in_memory":                   "cache.badger.in_memory",
	"cache_breaker_enabled":              "cache.breaker.enabled",
	"cache_breaker_consecutive_failures": "cache.breaker.consecutive_failures",
	"cache_breaker_timeout":              "cache.breaker.timeout",

	// Recommendation
	"recommend_default_limit":             "recommend.default_limit",
	"recommend_candidate_limit":           "recommend.candidate_limit",
	"recommend_popularity_limit":          "recommend.popularity_limit",
	"recommend_collaborative_min_history": "recommend.collaborative_min_history",
	"recommend_result_cache_ttl":          "recommend.result_cache_ttl",
	"recommend_popularity_cache_ttl":      "recommend.popularity_cache_ttl",
	"recommend_graph_cache_ttl":           "recommend.graph_cache_ttl",
	"recommend_similarity_threshold":      "recommend.similarity_threshold",
	"recommend_max_neighbors":             "recommend.max_neighbors",
	"recommend_similarity_shards":         "recommend.similarity_shards",
	"recommend_popularity_lookback_weeks": "recommend.popularity_lookback_weeks",
	"recommend_view_history_cap":          "recommend.view_history_cap",

	// Jobs
	"job_similarity_enabled":    "jobs.similarity_rebuild.enabled",
	"job_similarity_schedule":   "jobs.similarity_rebuild.schedule",
	"job_similarity_timeout":    "jobs.similarity_rebuild.timeout",
	"job_similarity_on_startup": "jobs.similarity_rebuild.run_on_startup",
	"job_popularity_enabled":    "jobs.popularity_aggregation.enabled",
	"job_popularity_schedule":   "jobs.popularity_aggregation.schedule",
	"job_popularity_timeout":    "jobs.popularity_aggregation.timeout",
	"job_popularity_on_startup": "jobs.popularity_aggregation.run_on_startup",
	"job_cleanup_enabled":       "jobs.view_history_cleanup.enabled",
	"job_cleanup_schedule":      "jobs.view_history_cleanup.schedule",
	"job_cleanup_timeout":       "jobs.view_history_cleanup.timeout",
	"view_history_retention":    "jobs.view_history_retention",

	// Events
	"events_enabled":         "events.enabled",
	"events_transport":       "events.transport",
	"nats_url":               "events.nats.url",
	"nats_embedded":          "events.nats.embedded_server",
	"nats_store_dir":         "events.nats.store_dir",
	"nats_stream_name":       "events.nats.stream_name",
	"nats_durable_name":      "events.nats.durable_name",
	"nats_subscribers":       "events.nats.subscribers_count",
	"events_retry_count":     "events.router_retry_count",
	"events_throttle":        "events.router_throttle_per_second",
	"events_poison_topic":    "events.poison_queue_topic",
	"events_router_shutdown": "events.router_close_timeout",

	// Security
	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"jwt_issuer":          "security.jwt_issuer",
	"jwt_token_ttl":       "security.token_ttl",
	"authz_model_path":    "security.authz_model_path",
	"authz_policy_path":   "security.authz_policy_path",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped names return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
