// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shopfront/internal/logging"
	"github.com/tomtom215/shopfront/internal/metrics"
)

// Job names as used in URLs, metrics and logs.
const (
	SimilarityRebuild     = "similarity-rebuild"
	PopularityAggregation = "popularity-aggregation"
	ViewHistoryCleanup    = "view-history-cleanup"
)

var (
	// ErrJobRunning is returned when the job is already running.
	ErrJobRunning = errors.New("job already running")

	// ErrUnknownJob is returned for names that were never registered.
	ErrUnknownJob = errors.New("unknown job")
)

// Func performs one run and returns a JSON-encodable summary.
type Func func(ctx context.Context) (any, error)

// Job is a registered job.
type Job struct {
	Name    string
	Timeout time.Duration
	Run     Func
}

// Status is a snapshot of a job's run history.
type Status struct {
	Name         string     `json:"name"`
	Running      bool       `json:"running"`
	Runs         int64      `json:"runs"`
	Failures     int64      `json:"failures"`
	LastStarted  *time.Time `json:"last_started,omitempty"`
	LastFinished *time.Time `json:"last_finished,omitempty"`
	LastDuration string     `json:"last_duration,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	LastResult   any        `json:"last_result,omitempty"`
}

type entry struct {
	job    Job
	status Status
}

// Registry holds the jobs. It is safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	jobs   map[string]*entry
	order  []string
	logger zerolog.Logger
	now    func() time.Time
}

// NewRegistry creates an empty registry.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		jobs:   make(map[string]*entry),
		logger: logger.With().Str("component", "jobs").Logger(),
		now:    time.Now,
	}
}

// Register adds a job. Names must be unique.
func (r *Registry) Register(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("job name and func are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.Name]; ok {
		return fmt.Errorf("job %q already registered", job.Name)
	}
	r.jobs[job.Name] = &entry{job: job, status: Status{Name: job.Name}}
	r.order = append(r.order, job.Name)
	return nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.jobs[name]
	return ok
}

// Run executes the job now. It fails fast with ErrJobRunning instead of
// queueing behind a run in progress.
func (r *Registry) Run(ctx context.Context, name string) (any, error) {
	e, err := r.begin(name)
	if err != nil {
		if errors.Is(err, ErrJobRunning) {
			metrics.RecordJobRun(name, "skipped")
		}
		return nil, err
	}

	if e.job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.job.Timeout)
		defer cancel()
	}

	logger := logging.Enrich(ctx, r.logger).With().Str("job", name).Logger()
	logger.Info().Msg("job started")
	start := r.now()

	result, runErr := r.invoke(ctx, e.job.Run)

	duration := r.now().Sub(start)
	r.finish(e, result, runErr, duration)

	if runErr != nil {
		metrics.RecordJobRun(name, "error")
		logger.Error().Err(runErr).Dur("duration", duration).Msg("job failed")
		return nil, fmt.Errorf("job %s: %w", name, runErr)
	}
	metrics.RecordJobRun(name, "success")
	logger.Info().Dur("duration", duration).Msg("job finished")
	return result, nil
}

// invoke converts a panic in the job into an error so the running flag is
// always cleared.
func (r *Registry) invoke(ctx context.Context, fn Func) (result any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job panicked: %v", p)
		}
	}()
	return fn(ctx)
}

func (r *Registry) begin(name string) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if e.status.Running {
		return nil, fmt.Errorf("%w: %s", ErrJobRunning, name)
	}
	started := r.now()
	e.status.Running = true
	e.status.LastStarted = &started
	return e, nil
}

func (r *Registry) finish(e *entry, result any, err error, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	finished := r.now()
	e.status.Running = false
	e.status.Runs++
	e.status.LastFinished = &finished
	e.status.LastDuration = duration.String()
	if err != nil {
		e.status.Failures++
		e.status.LastError = err.Error()
		return
	}
	e.status.LastError = ""
	e.status.LastResult = result
}

// Statuses returns a snapshot of every job in registration order.
func (r *Registry) Statuses() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Status, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.jobs[name].status)
	}
	return out
}
