// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package eventprocessor

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/shopfront/internal/validation"
)

// Topics. The JetStream stream captures SubjectWildcard.
const (
	TopicProductViewed   = "storefront.product.viewed"
	TopicSearchPerformed = "storefront.search.performed"
	TopicOrderPaid       = "storefront.order.paid"

	SubjectWildcard = "storefront.>"
)

// Event type names, used as metric labels and message metadata.
const (
	TypeProductViewed   = "product_viewed"
	TypeSearchPerformed = "search_performed"
	TypeOrderPaid       = "order_paid"
)

// Event is a storefront event that can travel over the bus.
type Event interface {
	// ID is the idempotency key of the event.
	ID() string
	Type() string
	Topic() string
	Validate() error
}

// ProductViewed is emitted when a shopper opens a product page.
type ProductViewed struct {
	EventID   string    `json:"event_id" validate:"required,max=64"`
	UserID    int64     `json:"user_id" validate:"gte=0"` // 0 for anonymous visitors
	ItemID    int64     `json:"item_id" validate:"gt=0"`
	SessionID string    `json:"session_id,omitempty" validate:"max=128"`
	ViewedAt  time.Time `json:"viewed_at" validate:"required"`
}

func (e *ProductViewed) ID() string    { return e.EventID }
func (e *ProductViewed) Type() string  { return TypeProductViewed }
func (e *ProductViewed) Topic() string { return TopicProductViewed }

// Validate checks field constraints.
func (e *ProductViewed) Validate() error { return validate(e) }

// SearchPerformed is emitted when a signed-in shopper searches.
type SearchPerformed struct {
	EventID    string    `json:"event_id" validate:"required,max=64"`
	UserID     int64     `json:"user_id" validate:"gt=0"`
	Keyword    string    `json:"keyword" validate:"required,max=128"`
	SearchedAt time.Time `json:"searched_at" validate:"required"`
}

func (e *SearchPerformed) ID() string    { return e.EventID }
func (e *SearchPerformed) Type() string  { return TypeSearchPerformed }
func (e *SearchPerformed) Topic() string { return TopicSearchPerformed }

// Validate checks field constraints.
func (e *SearchPerformed) Validate() error { return validate(e) }

// OrderPaid is emitted when the payment of an order is confirmed.
type OrderPaid struct {
	EventID string      `json:"event_id" validate:"required,max=64"`
	OrderID int64       `json:"order_id" validate:"gt=0"`
	UserID  int64       `json:"user_id" validate:"gte=0"`
	PaidAt  time.Time   `json:"paid_at" validate:"required"`
	Lines   []OrderLine `json:"lines" validate:"required,min=1,max=500,dive"`
}

// OrderLine is one purchased item of an order.
type OrderLine struct {
	ItemID   int64 `json:"item_id" validate:"gt=0"`
	Quantity int   `json:"quantity" validate:"gte=1,lte=1000"`
}

func (e *OrderPaid) ID() string    { return e.EventID }
func (e *OrderPaid) Type() string  { return TypeOrderPaid }
func (e *OrderPaid) Topic() string { return TopicOrderPaid }

// Validate checks field constraints.
func (e *OrderPaid) Validate() error { return validate(e) }

func validate(e Event) error {
	if err := validation.ValidateStruct(e); err != nil {
		return err
	}
	return nil
}

// NewEventID returns a fresh event id for producers that have none.
func NewEventID() string {
	return uuid.NewString()
}
