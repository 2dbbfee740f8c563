// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shopfront/internal/eventprocessor"
)

// maxRecommendationLimit caps the limit query parameter.
const maxRecommendationLimit = 100

// RecommendationsRequest holds the query of GET /api/v1/recommendations.
// Zero ids mean absent; a limit <= 0 falls back to the default.
type RecommendationsRequest struct {
	UserID     int64 `json:"user_id" validate:"gte=0"`
	ItemID     int64 `json:"item_id" validate:"gte=0"`
	CategoryID int64 `json:"category_id" validate:"gte=0"`
	Limit      int   `json:"limit"`
}

// parseRecommendationsRequest reads query parameters. Non-numeric ids are
// reported by name. limit is never rejected: an unparsable value becomes 0
// (the service default) and a large one is capped at maxRecommendationLimit.
func parseRecommendationsRequest(r *http.Request) (RecommendationsRequest, error) {
	var (
		req RecommendationsRequest
		err error
	)
	q := r.URL.Query()
	if req.UserID, err = int64Param(q.Get("user_id"), "user_id"); err != nil {
		return req, err
	}
	if req.ItemID, err = int64Param(q.Get("item_id"), "item_id"); err != nil {
		return req, err
	}
	if req.CategoryID, err = int64Param(q.Get("category_id"), "category_id"); err != nil {
		return req, err
	}
	req.Limit = limitParam(q.Get("limit"))
	return req, nil
}

func limitParam(raw string) int {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return min(v, maxRecommendationLimit)
}

func int64Param(raw, name string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

// ViewRequest is the body of POST /api/v1/events/views.
type ViewRequest struct {
	EventID   string     `json:"event_id"`
	UserID    int64      `json:"user_id"`
	ItemID    int64      `json:"item_id"`
	SessionID string     `json:"session_id"`
	ViewedAt  *time.Time `json:"viewed_at"`
}

// SearchRequest is the body of POST /api/v1/events/searches.
type SearchRequest struct {
	EventID    string     `json:"event_id"`
	UserID     int64      `json:"user_id"`
	Keyword    string     `json:"keyword"`
	SearchedAt *time.Time `json:"searched_at"`
}

// OrderRequest is the body of POST /api/v1/events/orders.
type OrderRequest struct {
	EventID string                     `json:"event_id"`
	OrderID int64                      `json:"order_id"`
	UserID  int64                      `json:"user_id"`
	PaidAt  *time.Time                 `json:"paid_at"`
	Lines   []eventprocessor.OrderLine `json:"lines"`
}

func (req *ViewRequest) toEvent(now time.Time) eventprocessor.Event {
	return &eventprocessor.ProductViewed{
		EventID:   eventIDOrNew(req.EventID),
		UserID:    req.UserID,
		ItemID:    req.ItemID,
		SessionID: req.SessionID,
		ViewedAt:  utcOr(req.ViewedAt, now),
	}
}

func (req *SearchRequest) toEvent(now time.Time) eventprocessor.Event {
	return &eventprocessor.SearchPerformed{
		EventID:    eventIDOrNew(req.EventID),
		UserID:     req.UserID,
		Keyword:    req.Keyword,
		SearchedAt: utcOr(req.SearchedAt, now),
	}
}

func (req *OrderRequest) toEvent(now time.Time) eventprocessor.Event {
	return &eventprocessor.OrderPaid{
		EventID: eventIDOrNew(req.EventID),
		OrderID: req.OrderID,
		UserID:  req.UserID,
		PaidAt:  utcOr(req.PaidAt, now),
		Lines:   req.Lines,
	}
}

// eventIDOrNew keeps a producer-supplied id so client retries deduplicate.
func eventIDOrNew(id string) string {
	if id != "" {
		return id
	}
	return eventprocessor.NewEventID()
}

func utcOr(t *time.Time, now time.Time) time.Time {
	if t == nil || t.IsZero() {
		return now.UTC()
	}
	return t.UTC()
}

var errEmptyBody = errors.New("request body is empty")

// decodeJSON decodes a bounded body and rejects unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errEmptyBody
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
