// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/shopfront/internal/config"
)

// testDBSemaphore serializes DuckDB usage across tests. Concurrent CGO calls
// from many in-memory databases can hang under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

var testDBMutex sync.Mutex

// setupTestDB creates an in-memory database. The semaphore is held for the
// whole test and released by t.Cleanup.
func setupTestDB(t *testing.T, opts ...Option) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
	}

	type result struct {
		db  *DB
		err error
	}

	resultCh := make(chan result, 1)
	go func() {
		testDBMutex.Lock()
		db, err := New(cfg, opts...)
		testDBMutex.Unlock()
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		t.Cleanup(func() { _ = res.db.Close() })
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s (DuckDB may be under resource pressure)")
		return nil
	}
}

// fixedClock pins db.now for tests that depend on week or day boundaries.
func fixedClock(db *DB, now time.Time) {
	db.now = func() time.Time { return now }
}

func insertCategory(t *testing.T, db *DB, id int64, name string) {
	t.Helper()
	if _, err := db.conn.Exec(`INSERT INTO categories (id, name) VALUES (?, ?)`, id, name); err != nil {
		t.Fatalf("insert category: %v", err)
	}
}

func seedProducts(t *testing.T, db *DB, products ...Product) {
	t.Helper()
	if err := db.UpsertProducts(context.Background(), products); err != nil {
		t.Fatalf("UpsertProducts: %v", err)
	}
}

// product builds a product with one default variant at price.
func product(id, categoryID int64, name string, price float64) Product {
	return Product{
		ID:         id,
		CategoryID: categoryID,
		Name:       name,
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(id)),
		Variants:   []Variant{{ID: id * 10, SKU: name, Price: price, IsDefault: true}},
	}
}

func checkNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func checkError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}

func TestPing_Success(t *testing.T) {
	db := setupTestDB(t)
	checkNoError(t, db.Ping(context.Background()))
}

func TestPing_ClosedConnection(t *testing.T) {
	db := setupTestDB(t)
	db.Close()
	checkError(t, db.Ping(context.Background()))
}

// TestClose_Idempotent tests that Close can be called multiple times safely
func TestClose_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	checkNoError(t, db.Close())
	if err := db.Close(); err != nil {
		t.Logf("Second close returned: %v (acceptable)", err)
	}
}

func TestSchemaVersion(t *testing.T) {
	db := setupTestDB(t)

	version, err := db.GetCurrentSchemaVersion(context.Background())
	checkNoError(t, err)
	if want := migrations[len(migrations)-1].Version; version != want {
		t.Errorf("schema version = %d, want %d", version, want)
	}

	// Re-running migrations is a no-op.
	checkNoError(t, db.runVersionedMigrations())
}

func TestGetRecordCounts(t *testing.T) {
	db := setupTestDB(t)
	insertCategory(t, db, 1, "Lighting")
	seedProducts(t, db, product(1, 1, "Desk Lamp", 20), product(2, 1, "Floor Lamp", 80))

	counts, err := db.GetRecordCounts(context.Background())
	checkNoError(t, err)
	if counts.Products != 2 {
		t.Errorf("Products = %d, want 2", counts.Products)
	}
	if counts.SimilarityEdges != 0 {
		t.Errorf("SimilarityEdges = %d, want 0", counts.SimilarityEdges)
	}
}

// TestGetRecordCounts_WithContextCancellation tests record counts with canceled context
func TestGetRecordCounts_WithContextCancellation(t *testing.T) {
	db := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := db.GetRecordCounts(ctx); err == nil {
		t.Error("Expected error with canceled context")
	}
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "?"},
		{3, "?, ?, ?"},
	}
	for _, tt := range tests {
		if got := placeholders(tt.n); got != tt.want {
			t.Errorf("placeholders(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
