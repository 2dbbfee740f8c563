// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shopfront/internal/config"
	"github.com/tomtom215/shopfront/internal/jobs"
	"github.com/tomtom215/shopfront/internal/recommend"
	"github.com/tomtom215/shopfront/internal/supervisor/services"
)

// jobTargets is the part of *recommend.Service the jobs drive.
type jobTargets interface {
	RunSimilarityRebuild(ctx context.Context) (*recommend.RebuildResult, error)
	RunPopularityAggregation(ctx context.Context) (*recommend.AggregationResult, error)
	CleanViewHistory(ctx context.Context, retention time.Duration) (int64, error)
}

// ViewHistoryCleanupResult is reported by the cleanup job.
type ViewHistoryCleanupResult struct {
	Removed   int64  `json:"removed"`
	Retention string `json:"retention"`
}

// initJobs registers every job for manual triggering and returns the cron
// bindings of the enabled ones.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initJobs(cfg *config.JobsConfig, target jobTargets, logger zerolog.Logger) (*jobs.Registry, []services.ScheduledJob, error) {
	registry := jobs.NewRegistry(logger)

	defs := []struct {
		name string
		cfg  config.JobConfig
		run  jobs.Func
	}{
		{jobs.SimilarityRebuild, cfg.SimilarityRebuild, func(ctx context.Context) (any, error) {
			res, err := target.RunSimilarityRebuild(ctx)
			if err != nil {
				return nil, err
			}
			return res, nil
		}},
		{jobs.PopularityAggregation, cfg.PopularityAggregation, func(ctx context.Context) (any, error) {
			res, err := target.RunPopularityAggregation(ctx)
			if err != nil {
				return nil, err
			}
			return res, nil
		}},
		{jobs.ViewHistoryCleanup, cfg.ViewHistoryCleanup, func(ctx context.Context) (any, error) {
			removed, err := target.CleanViewHistory(ctx, cfg.ViewHistoryRetention)
			if err != nil {
				return nil, err
			}
			return ViewHistoryCleanupResult{Removed: removed, Retention: cfg.ViewHistoryRetention.String()}, nil
		}},
	}

	var scheduled []services.ScheduledJob
	for _, d := range defs {
		if err := registry.Register(jobs.Job{Name: d.name, Timeout: d.cfg.Timeout, Run: d.run}); err != nil {
			return nil, nil, fmt.Errorf("register job %s: %w", d.name, err)
		}
		if !d.cfg.Enabled {
			logger.Info().Str("job", d.name).Msg("Job schedule disabled, manual trigger only")
			continue
		}
		scheduled = append(scheduled, services.ScheduledJob{
			Name:         d.name,
			Schedule:     d.cfg.Schedule,
			RunOnStartup: d.cfg.RunOnStartup,
		})
	}
	return registry, scheduled, nil
}
