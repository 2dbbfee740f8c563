// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package eventprocessor

import "errors"

// ErrBusUnavailable is returned when an event cannot be handed to the bus
// because the publisher is closed or its circuit breaker is open.
var ErrBusUnavailable = errors.New("event bus unavailable")

// ErrInvalidConfig is returned when configuration is invalid.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrUnknownEventType is returned for a message whose type metadata names no
// known event.
var ErrUnknownEventType = errors.New("unknown event type")
