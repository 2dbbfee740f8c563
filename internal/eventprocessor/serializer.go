// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package eventprocessor

import (
	"fmt"

	"github.com/goccy/go-json"
)

// SerializeEvent validates and encodes an event.
func SerializeEvent(event Event) ([]byte, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// DeserializeEvent decodes payload into event and validates the result.
func DeserializeEvent(payload []byte, event Event) error {
	if err := json.Unmarshal(payload, event); err != nil {
		return fmt.Errorf("unmarshal %s: %w", event.Type(), err)
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("validate %s: %w", event.Type(), err)
	}
	return nil
}
