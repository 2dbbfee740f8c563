// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/shopfront/internal/recommend"
	"github.com/tomtom215/shopfront/internal/validation"
)

// Recommendations handles GET /api/v1/recommendations.
//
// Query parameters user_id, item_id and category_id are optional; limit
// defaults to 6. Used by product-detail pages (item_id) and the home page
// (user_id, category_id).
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, err := parseRecommendationsRequest(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.RequestTimeout)
	defer cancel()

	recs, err := h.deps.Recommender.GetRecommendations(ctx, recommend.Query{
		UserID:     req.UserID,
		ItemID:     req.ItemID,
		CategoryID: req.CategoryID,
		Limit:      req.Limit,
	})
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		rw.Timeout("Recommendation request timed out")
		return
	case errors.Is(err, context.Canceled):
		rw.ServiceUnavailable("Recommendation request canceled")
		return
	default:
		rw.InternalError("Failed to compute recommendations", err)
		return
	}

	if recs == nil {
		recs = []recommend.Recommendation{}
	}
	rw.SuccessWithCount(recs, len(recs))
}
