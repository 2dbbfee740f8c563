// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/shopfront/internal/eventprocessor"
	"github.com/tomtom215/shopfront/internal/logging"
	"github.com/tomtom215/shopfront/internal/validation"
)

// EventAccepted is returned for every published event.
type EventAccepted struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
}

// eventRequest is implemented by the three intake bodies.
type eventRequest interface {
	toEvent(now time.Time) eventprocessor.Event
}

// EventView handles POST /api/v1/events/views.
func (h *Handler) EventView(w http.ResponseWriter, r *http.Request) {
	h.intake(w, r, &ViewRequest{})
}

// EventSearch handles POST /api/v1/events/searches.
func (h *Handler) EventSearch(w http.ResponseWriter, r *http.Request) {
	h.intake(w, r, &SearchRequest{})
}

// EventOrder handles POST /api/v1/events/orders.
func (h *Handler) EventOrder(w http.ResponseWriter, r *http.Request) {
	h.intake(w, r, &OrderRequest{})
}

// intake validates the body and publishes it. The event is applied
// asynchronously by the ingestion consumer, hence 202.
func (h *Handler) intake(w http.ResponseWriter, r *http.Request, body eventRequest) {
	rw := NewResponseWriter(w, r)
	if h.deps.Events == nil {
		rw.ServiceUnavailable("Event ingestion is disabled")
		return
	}

	if err := decodeJSON(w, r, h.config.MaxBodyBytes, body); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	event := body.toEvent(time.Now())
	if err := event.Validate(); err != nil {
		writeEventError(rw, err)
		return
	}

	if err := h.deps.Events.PublishEvent(r.Context(), event); err != nil {
		if errors.Is(err, eventprocessor.ErrBusUnavailable) {
			logging.Ctx(r.Context()).Warn().Err(err).Str("event_type", event.Type()).Msg("Event bus unavailable")
			rw.ServiceUnavailable("Event bus unavailable, retry later")
			return
		}
		writeEventError(rw, err)
		return
	}

	rw.Accepted(EventAccepted{EventID: event.ID(), Type: event.Type()})
}

func writeEventError(rw *ResponseWriter, err error) {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}
	rw.InternalError("Failed to publish event", err)
}
