// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package config

import (
	"fmt"

	"github.com/tomtom215/shopfront/internal/validation"
)

// Validate checks struct tags first, then rules spanning several fields.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	checks := []func() error{
		c.validateCache,
		c.validateJobs,
		c.validateEvents,
		c.validateSecurity,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND=redis")
		}
	case "badger":
		if !c.Cache.Badger.InMemory && c.Cache.Badger.Path == "" {
			return fmt.Errorf("BADGER_PATH is required when CACHE_BACKEND=badger")
		}
	}
	return nil
}

func (c *Config) validateJobs() error {
	jobs := map[string]JobConfig{
		"similarity_rebuild":     c.Jobs.SimilarityRebuild,
		"popularity_aggregation": c.Jobs.PopularityAggregation,
		"view_history_cleanup":   c.Jobs.ViewHistoryCleanup,
	}
	for name, job := range jobs {
		if job.Enabled && job.Schedule == "" {
			return fmt.Errorf("jobs.%s.schedule is required when the job is enabled", name)
		}
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled || c.Events.Transport != "nats" {
		return nil
	}
	n := c.Events.NATS
	if !n.EmbeddedServer && n.URL == "" {
		return fmt.Errorf("NATS_URL is required when using an external NATS server")
	}
	if n.StreamName == "" {
		return fmt.Errorf("events.nats.stream_name is required")
	}
	if n.SubscribersCount < 1 {
		return fmt.Errorf("events.nats.subscribers_count must be at least 1")
	}
	return nil
}

// minJWTSecretLength matches the HS256 key size.
const minJWTSecretLength = 32

func (c *Config) validateSecurity() error {
	if c.Security.AuthMode == "jwt" && len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters when AUTH_MODE=jwt", minJWTSecretLength)
	}
	if c.Server.Environment == "production" {
		if c.Security.AuthMode == "none" {
			return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production")
		}
		for _, origin := range c.Security.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("wildcard CORS_ORIGINS is not allowed when ENVIRONMENT=production")
			}
		}
	}
	if !c.Security.RateLimitDisabled && (c.Security.RateLimitReqs < 1 || c.Security.RateLimitWindow <= 0) {
		return fmt.Errorf("rate limiting requires RATE_LIMIT_REQUESTS >= 1 and a positive RATE_LIMIT_WINDOW")
	}
	return nil
}
