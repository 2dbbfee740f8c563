// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shopfront/internal/metrics"
)

// WeekStart returns Monday 00:00 UTC of the week containing t.
func WeekStart(t time.Time) time.Time {
	day := DayStart(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

// DayStart returns 00:00 UTC of t's UTC day.
func DayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayWindow returns [start of t's UTC day, start of the next UTC day).
func DayWindow(t time.Time) (start, end time.Time) {
	start = DayStart(t)
	return start, start.AddDate(0, 0, 1)
}

// PopularityAggregator folds the current UTC day's views and paid purchases
// into this week's counters.
//
// Counters are incremented, never overwritten: running twice over the same
// day counts that day twice. Schedule it once per day, close to midnight UTC.
type PopularityAggregator struct {
	store  PopularityStore
	logger zerolog.Logger
	now    func() time.Time

	runMu sync.Mutex
}

// NewPopularityAggregator creates the aggregation job.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPopularityAggregator(store PopularityStore, logger zerolog.Logger) *PopularityAggregator {
	return &PopularityAggregator{
		store:  store,
		logger: logger.With().Str("component", "popularity").Logger(),
		now:    time.Now,
	}
}

// Run aggregates the current day in a single transaction. Any failure rolls
// back every counter change of the run.
func (a *PopularityAggregator) Run(ctx context.Context) (*AggregationResult, error) {
	if !a.runMu.TryLock() {
		metrics.RecordPopularityAggregation("skipped", 0, 0, 0)
		return nil, ErrAggregationInProgress
	}
	defer a.runMu.Unlock()

	start := time.Now()
	now := a.now()
	from, to := DayWindow(now)
	result := &AggregationResult{
		RunID:       uuid.New().String(),
		TimePeriod:  WeekStart(now),
		WindowStart: from,
		WindowEnd:   to,
	}
	logger := a.logger.With().
		Str("run_id", result.RunID).
		Time("time_period", result.TimePeriod).
		Time("window_start", from).
		Logger()

	err := a.store.InAggregationTx(ctx, func(tx AggregationTx) error {
		views, err := tx.CountViews(ctx, from, to)
		if err != nil {
			return fmt.Errorf("count views: %w", err)
		}
		purchases, err := tx.SumPurchases(ctx, from, to)
		if err != nil {
			return fmt.Errorf("sum purchases: %w", err)
		}

		for _, v := range views {
			if err := tx.UpsertView(ctx, v.ItemID, v.CategoryID, result.TimePeriod, v.Count); err != nil {
				return fmt.Errorf("upsert view count for item %d: %w", v.ItemID, err)
			}
		}
		for _, p := range purchases {
			if err := tx.UpsertPurchase(ctx, p.ItemID, p.CategoryID, result.TimePeriod, p.Count); err != nil {
				return fmt.Errorf("upsert purchase count for item %d: %w", p.ItemID, err)
			}
		}
		result.ViewRows = len(views)
		result.PurchaseRows = len(purchases)
		return nil
	})
	result.Duration = time.Since(start)

	if err != nil {
		metrics.RecordPopularityAggregation("error", result.Duration, 0, 0)
		logger.Error().Err(err).Msg("popularity aggregation rolled back")
		return nil, fmt.Errorf("popularity aggregation: %w", err)
	}

	metrics.RecordPopularityAggregation("success", result.Duration, result.ViewRows, result.PurchaseRows)
	logger.Info().
		Int("view_rows", result.ViewRows).
		Int("purchase_rows", result.PurchaseRows).
		Dur("duration", result.Duration).
		Msg("popularity aggregation committed")
	return result, nil
}
