// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package config

import "time"

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	Recommend RecommendConfig `koanf:"recommend"`
	Jobs      JobsConfig      `koanf:"jobs"`
	Events    EventsConfig    `koanf:"events"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	Environment     string        `koanf:"environment" validate:"oneof=development production"`
}

// DatabaseConfig configures the DuckDB store.
type DatabaseConfig struct {
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads" validate:"gte=0"` // 0 = runtime.NumCPU()

	// SeedDemoData inserts a small demo catalog into an empty database.
	SeedDemoData bool `koanf:"seed_demo_data"`
}

// CacheConfig selects and tunes the recommendation cache backend.
type CacheConfig struct {
	// Backend is memory, redis or badger.
	Backend string        `koanf:"backend" validate:"oneof=memory redis badger"`
	Redis   RedisConfig   `koanf:"redis"`
	Badger  BadgerConfig  `koanf:"badger"`
	Breaker BreakerConfig `koanf:"breaker"`
}

// RedisConfig configures the shared Redis cache.
type RedisConfig struct {
	Addr         string        `koanf:"addr"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db" validate:"gte=0,lte=15"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// BadgerConfig configures the embedded Badger cache.
type BadgerConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// BreakerConfig configures the circuit breaker in front of the cache backend.
type BreakerConfig struct {
	Enabled bool `koanf:"enabled"`

	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32 `koanf:"consecutive_failures" validate:"gte=1"`

	// MaxRequests allowed through while half-open.
	MaxRequests uint32 `koanf:"max_requests" validate:"gte=1"`

	Interval time.Duration `koanf:"interval"`
	Timeout  time.Duration `koanf:"timeout" validate:"gt=0"`
}

// RecommendConfig tunes candidate generation, blending and caching.
type RecommendConfig struct {
	DefaultLimit            int           `koanf:"default_limit" validate:"gte=1"`
	CandidateLimit          int           `koanf:"candidate_limit" validate:"gte=1"`
	PopularityLimit         int           `koanf:"popularity_limit" validate:"gte=1"`
	CollaborativeMinHistory int           `koanf:"collaborative_min_history" validate:"gte=0"`
	ResultCacheTTL          time.Duration `koanf:"result_cache_ttl" validate:"gt=0"`
	PopularityCacheTTL      time.Duration `koanf:"popularity_cache_ttl" validate:"gt=0"`
	GraphCacheTTL           time.Duration `koanf:"graph_cache_ttl" validate:"gt=0"`
	SimilarityThreshold     float64       `koanf:"similarity_threshold" validate:"gte=0,lte=1"`
	MaxNeighbors            int           `koanf:"max_neighbors" validate:"gte=1"`
	SimilarityShards        int           `koanf:"similarity_shards" validate:"gte=0"` // 0 = runtime.NumCPU()
	PopularityLookbackWeeks int           `koanf:"popularity_lookback_weeks" validate:"gte=1"`
	ViewHistoryCap          int           `koanf:"view_history_cap" validate:"gte=1"`
}

// JobsConfig schedules the background jobs.
type JobsConfig struct {
	SimilarityRebuild     JobConfig `koanf:"similarity_rebuild"`
	PopularityAggregation JobConfig `koanf:"popularity_aggregation"`
	ViewHistoryCleanup    JobConfig `koanf:"view_history_cleanup"`

	// ViewHistoryRetention is the age after which view history rows are purged.
	ViewHistoryRetention time.Duration `koanf:"view_history_retention" validate:"gt=0"`
}

// JobConfig schedules one job.
type JobConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Schedule     string        `koanf:"schedule" validate:"omitempty,cron"`
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`
	RunOnStartup bool          `koanf:"run_on_startup"`
}

// EventsConfig configures storefront event ingestion.
type EventsConfig struct {
	Enabled bool `koanf:"enabled"`

	// Transport is channel (in-process) or nats (JetStream).
	Transport string     `koanf:"transport" validate:"oneof=channel nats"`
	NATS      NATSConfig `koanf:"nats"`

	RouterRetryCount           int           `koanf:"router_retry_count" validate:"gte=0"`
	RouterRetryInitialInterval time.Duration `koanf:"router_retry_initial_interval"`
	RouterThrottlePerSecond    int           `koanf:"router_throttle_per_second" validate:"gte=0"` // 0 = unlimited
	PoisonQueueTopic           string        `koanf:"poison_queue_topic"`
	RouterCloseTimeout         time.Duration `koanf:"router_close_timeout"`
}

// NATSConfig configures the JetStream transport.
type NATSConfig struct {
	URL string `koanf:"url"`

	// EmbeddedServer runs nats-server in-process; otherwise URL must be reachable.
	EmbeddedServer bool   `koanf:"embedded_server"`
	Host           string `koanf:"host"`
	Port           int    `koanf:"port"`
	StoreDir       string `koanf:"store_dir"`
	MaxMemory      int64  `koanf:"max_memory"`
	MaxStore       int64  `koanf:"max_store"`

	StreamName          string `koanf:"stream_name"`
	StreamRetentionDays int    `koanf:"stream_retention_days"`
	DurableName         string `koanf:"durable_name"`
	QueueGroup          string `koanf:"queue_group"`
	SubscribersCount    int    `koanf:"subscribers_count"`
}

// SecurityConfig configures authentication, CORS and rate limiting.
type SecurityConfig struct {
	// AuthMode is jwt or none. It guards only the admin job routes.
	AuthMode  string `koanf:"auth_mode" validate:"oneof=jwt none"`
	JWTSecret string `koanf:"jwt_secret"`
	JWTIssuer string `koanf:"jwt_issuer"`

	// TokenTTL bounds tokens minted by the server's -issue-token flag.
	TokenTTL time.Duration `koanf:"token_ttl" validate:"gt=0"`

	// AuthzModelPath and AuthzPolicyPath override the embedded casbin model
	// and policy.
	AuthzModelPath  string `koanf:"authz_model_path"`
	AuthzPolicyPath string `koanf:"authz_policy_path"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}
