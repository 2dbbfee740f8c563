// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// EventRunner consumes events until its context is canceled.
//
// Satisfied by *eventprocessor.Processor.
type EventRunner interface {
	Run(ctx context.Context) error
}

// errRouterStopped is returned when the router exits without being asked to.
var errRouterStopped = errors.New("event router stopped unexpectedly")

// EventProcessorService runs the event router under suture. Each restart
// builds a fresh Watermill router; redelivery covers messages that were in
// flight when the previous router died.
type EventProcessorService struct {
	runner EventRunner
	logger zerolog.Logger
	name   string
}

// NewEventProcessorService wraps runner.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEventProcessorService(runner EventRunner, logger zerolog.Logger) *EventProcessorService {
	return &EventProcessorService{
		runner: runner,
		logger: logger.With().Str("service", "event-processor").Logger(),
		name:   "event-processor",
	}
}

// Serve implements suture.Service.
func (s *EventProcessorService) Serve(ctx context.Context) error {
	err := s.runner.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		err = errRouterStopped
	}
	s.logger.Error().Err(err).Msg("Event processor failed, supervisor will restart it")
	return fmt.Errorf("event processor: %w", err)
}

// String names the service in supervisor logs.
func (s *EventProcessorService) String() string {
	return s.name
}
