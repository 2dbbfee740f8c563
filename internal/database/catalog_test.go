// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package database

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/tomtom215/shopfront/internal/recommend"
)

func TestGetByID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	insertCategory(t, db, 2, "Lighting")

	noDefault := product(2, 2, "Pendant Lamp", 0)
	noDefault.Variants = []Variant{{ID: 21, SKU: "PL-1", Price: 55}}
	seedProducts(t, db, product(1, 2, "Desk Lamp", 19.5), noDefault)

	item, err := db.GetByID(ctx, 1)
	checkNoError(t, err)
	if item.Name != "Desk Lamp" || item.CategoryID != 2 {
		t.Errorf("GetByID(1) = %+v", item)
	}
	if !item.HasDefaultVariant() || *item.DefaultPrice != 19.5 {
		t.Errorf("DefaultPrice = %v, want 19.5", item.DefaultPrice)
	}

	item, err = db.GetByID(ctx, 2)
	checkNoError(t, err)
	if item.HasDefaultVariant() {
		t.Errorf("item without default variant reported price %v", *item.DefaultPrice)
	}

	_, err = db.GetByID(ctx, 99)
	if !errors.Is(err, recommend.ErrItemNotFound) {
		t.Errorf("GetByID(99) error = %v, want ErrItemNotFound", err)
	}
}

func TestGetByCategory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedProducts(t, db,
		product(1, 5, "Linen Throw", 30),
		product(2, 5, "Wool Throw", 45),
		product(3, 6, "Copper Pan", 60),
		product(4, 5, "Jute Rug", 120),
	)

	items, err := db.GetByCategory(ctx, 5, 10)
	checkNoError(t, err)
	// product() makes higher ids newer.
	want := []int64{4, 2, 1}
	if got := itemIDs(items); !slices.Equal(got, want) {
		t.Errorf("GetByCategory(5) = %v, want %v", got, want)
	}

	items, err = db.GetByCategory(ctx, 5, 2)
	checkNoError(t, err)
	if len(items) != 2 {
		t.Errorf("limit 2 returned %d items", len(items))
	}

	items, err = db.GetByCategory(ctx, 5, 0)
	checkNoError(t, err)
	if len(items) != 0 {
		t.Errorf("limit 0 returned %d items", len(items))
	}
}

func TestSearchByName(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedProducts(t, db,
		product(1, 1, "Brass Desk LAMP", 30),
		product(2, 1, "Oak Chair", 45),
		product(3, 1, "lamp shade", 12),
		product(4, 1, "50% Off Sign", 5),
	)

	tests := []struct {
		keyword string
		want    []int64
	}{
		{"lamp", []int64{1, 3}},
		{"LAMP", []int64{1, 3}},
		{"chair", []int64{2}},
		{"%", []int64{4}},
		{"sofa", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			items, err := db.SearchByName(ctx, tt.keyword, 10)
			checkNoError(t, err)
			if got := itemIDs(items); !slices.Equal(got, tt.want) {
				t.Errorf("SearchByName(%q) = %v, want %v", tt.keyword, got, tt.want)
			}
		})
	}
}

func TestUpsertProducts_ReplacesVariants(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedProducts(t, db, product(1, 1, "Desk Lamp", 20))

	updated := product(1, 2, "Desk Lamp II", 25)
	updated.Variants = []Variant{
		{ID: 11, SKU: "DL2-S", Price: 22},
		{ID: 12, SKU: "DL2-M", Price: 25, IsDefault: true},
	}
	seedProducts(t, db, updated)

	all, err := db.GetAllBasicInfo(ctx)
	checkNoError(t, err)
	if len(all) != 1 {
		t.Fatalf("GetAllBasicInfo returned %d items, want 1", len(all))
	}
	item := all[0]
	if item.Name != "Desk Lamp II" || item.CategoryID != 2 {
		t.Errorf("product not updated: %+v", item)
	}
	if item.DefaultPrice == nil || *item.DefaultPrice != 25 {
		t.Errorf("DefaultPrice = %v, want 25", item.DefaultPrice)
	}

	var variants int
	checkNoError(t, db.conn.QueryRow(`SELECT COUNT(*) FROM product_variants WHERE product_id = 1`).Scan(&variants))
	if variants != 2 {
		t.Errorf("variants = %d, want 2", variants)
	}
}

func itemIDs(items []recommend.CatalogItem) []int64 {
	var ids []int64
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}
