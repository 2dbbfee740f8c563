// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shopfront/internal/auth"
	"github.com/tomtom215/shopfront/internal/jobs"
	"github.com/tomtom215/shopfront/internal/logging"
	"github.com/tomtom215/shopfront/internal/recommend"
)

// JobRun is the response of a triggered job.
type JobRun struct {
	Job    string `json:"job"`
	Result any    `json:"result,omitempty"`
}

// ListJobs handles GET /api/v1/admin/jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	statuses := h.deps.Jobs.Statuses()
	NewResponseWriter(w, r).SuccessWithCount(statuses, len(statuses))
}

// TriggerJob handles POST /api/v1/admin/jobs/{job} and runs the job
// synchronously.
func (h *Handler) TriggerJob(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	name := chi.URLParam(r, "job")
	if !h.deps.Jobs.Has(name) {
		rw.NotFound("Unknown job: " + name)
		return
	}

	actor := "unknown"
	if subject := auth.SubjectFromContext(r.Context()); subject != nil {
		actor = subject.ID
	}
	logging.Ctx(r.Context()).Info().Str("job", name).Str("actor", actor).Msg("Job triggered via API")

	// A disconnecting client must not abort a replace-all rebuild halfway;
	// the job's own timeout still applies.
	result, err := h.deps.Jobs.Run(context.WithoutCancel(r.Context()), name)
	switch {
	case err == nil:
		rw.Success(JobRun{Job: name, Result: result})
	case isJobConflict(err):
		rw.Conflict("Job " + name + " is already running")
	case errors.Is(err, jobs.ErrUnknownJob):
		rw.NotFound("Unknown job: " + name)
	default:
		rw.InternalError("Job "+name+" failed", err)
	}
}

func isJobConflict(err error) bool {
	return errors.Is(err, jobs.ErrJobRunning) ||
		errors.Is(err, recommend.ErrRebuildInProgress) ||
		errors.Is(err, recommend.ErrAggregationInProgress)
}
