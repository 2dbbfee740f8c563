// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shopfront/internal/jobs"
)

// JobRunner runs a registered job by name.
//
// Satisfied by *jobs.Registry, which also rejects overlapping runs.
type JobRunner interface {
	Run(ctx context.Context, name string) (any, error)
}

// ScheduledJob binds a job to a cron expression. An empty Schedule leaves
// the job manual-only.
type ScheduledJob struct {
	Name         string
	Schedule     string
	RunOnStartup bool
}

// scheduleParser accepts five-field expressions and descriptors such as
// @daily or @every 1h, the same grammar config validation uses.
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// SchedulerService drives the background jobs from a UTC cron.
type SchedulerService struct {
	runner JobRunner
	jobs   []ScheduledJob
	logger zerolog.Logger
	name   string
}

// NewSchedulerService validates every schedule up front so a typo fails
// startup instead of silently never running.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSchedulerService(runner JobRunner, scheduled []ScheduledJob, logger zerolog.Logger) (*SchedulerService, error) {
	for _, j := range scheduled {
		if j.Schedule == "" {
			continue
		}
		if _, err := scheduleParser.Parse(j.Schedule); err != nil {
			return nil, fmt.Errorf("invalid schedule %q for job %s: %w", j.Schedule, j.Name, err)
		}
	}
	return &SchedulerService{
		runner: runner,
		jobs:   scheduled,
		logger: logger.With().Str("service", "scheduler").Logger(),
		name:   "job-scheduler",
	}, nil
}

// Serve implements suture.Service. On cancellation it stops the cron and
// waits for running jobs, which observe the same cancellation.
func (s *SchedulerService) Serve(ctx context.Context) error {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithParser(scheduleParser),
		cron.WithLogger(cronLogger{s.logger}),
	)

	for _, j := range s.jobs {
		if j.Schedule == "" {
			continue
		}
		name := j.Name
		if _, err := c.AddFunc(j.Schedule, func() { s.run(ctx, name, "cron") }); err != nil {
			return fmt.Errorf("schedule job %s: %w", name, err)
		}
		s.logger.Info().Str("job", name).Str("schedule", j.Schedule).Msg("Job scheduled")
	}

	c.Start()

	var startup sync.WaitGroup
	for _, j := range s.jobs {
		if !j.RunOnStartup {
			continue
		}
		startup.Add(1)
		go func(name string) {
			defer startup.Done()
			s.run(ctx, name, "startup")
		}(j.Name)
	}

	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopping")
	<-c.Stop().Done()
	startup.Wait()
	return ctx.Err()
}

func (s *SchedulerService) run(ctx context.Context, name, trigger string) {
	start := time.Now()
	result, err := s.runner.Run(ctx, name)
	switch {
	case err == nil:
		s.logger.Info().Str("job", name).Str("trigger", trigger).
			Dur("duration", time.Since(start)).Interface("result", result).Msg("Job finished")
	case errors.Is(err, jobs.ErrJobRunning):
		s.logger.Warn().Str("job", name).Str("trigger", trigger).Msg("Job still running, skipped")
	case ctx.Err() != nil:
		s.logger.Info().Str("job", name).Str("trigger", trigger).Msg("Job canceled by shutdown")
	default:
		s.logger.Error().Err(err).Str("job", name).Str("trigger", trigger).
			Dur("duration", time.Since(start)).Msg("Job failed, retrying on next schedule")
	}
}

// String names the service in supervisor logs.
func (s *SchedulerService) String() string {
	return s.name
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
