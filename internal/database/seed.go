// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/shopfront/internal/logging"
)

type demoProduct struct {
	name     string
	category int64
	brand    int64
	price    float64
}

var (
	demoCategories = map[int64]string{1: "Furniture", 2: "Lighting", 3: "Kitchen", 4: "Outdoor", 5: "Textiles"}
	demoBrands     = map[int64]string{1: "Nordhaus", 2: "Lumen & Co", 3: "Copperpot", 4: "Fieldline", 5: "Weaveworks"}

	demoProducts = []demoProduct{
		{"Oak Dining Chair", 1, 1, 129},
		{"Oak Dining Table", 1, 1, 899},
		{"Walnut Dining Chair", 1, 1, 149},
		{"Velvet Lounge Chair", 1, 1, 459},
		{"Oak Bar Stool", 1, 1, 119},
		{"Walnut Coffee Table", 1, 1, 349},
		{"Brass Floor Lamp", 2, 2, 219},
		{"Brass Desk Lamp", 2, 2, 89},
		{"Linen Pendant Lamp", 2, 2, 159},
		{"Ceramic Table Lamp", 2, 2, 99},
		{"Outdoor Wall Lantern", 2, 4, 79},
		{"Copper Saucepan", 3, 3, 69},
		{"Copper Frying Pan", 3, 3, 59},
		{"Cast Iron Frying Pan", 3, 3, 45},
		{"Stoneware Dinner Plate Set", 3, 3, 64},
		{"Oak Cutting Board", 3, 1, 39},
		{"Teak Garden Bench", 4, 4, 389},
		{"Teak Garden Table", 4, 4, 649},
		{"Folding Garden Chair", 4, 4, 89},
		{"Rattan Lounge Chair", 4, 4, 299},
		{"Linen Throw Blanket", 5, 5, 79},
		{"Wool Throw Blanket", 5, 5, 119},
		{"Linen Cushion Cover", 5, 5, 29},
		{"Velvet Cushion Cover", 5, 5, 35},
		{"Jute Area Rug", 5, 5, 249},
		{"Wool Area Rug", 5, 5, 429},
	}
)

// SeedDemoData fills an empty catalog with a small furniture storefront, a
// view history above the collaborative threshold, today's view events, a few
// searches and paid orders. It is a no-op when products already exist.
func (db *DB) SeedDemoData(ctx context.Context) error {
	var existing int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&existing); err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if existing > 0 {
		logging.Debug().Int64("products", existing).Msg("Catalog not empty, skipping demo seed")
		return nil
	}

	logging.Info().Int("products", len(demoProducts)).Msg("Seeding demo catalog")

	now := db.now().UTC()
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		for id, name := range demoCategories {
			if _, err := tx.ExecContext(ctx, `INSERT INTO categories (id, name) VALUES (?, ?)`, id, name); err != nil {
				return fmt.Errorf("insert category: %w", err)
			}
		}
		for id, name := range demoBrands {
			if _, err := tx.ExecContext(ctx, `INSERT INTO brands (id, name) VALUES (?, ?)`, id, name); err != nil {
				return fmt.Errorf("insert brand: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	products := make([]Product, len(demoProducts))
	for i, p := range demoProducts {
		id := int64(i + 1)
		products[i] = Product{
			ID:         id,
			CategoryID: p.category,
			BrandID:    p.brand,
			Name:       p.name,
			CreatedAt:  now.AddDate(0, 0, -i),
			Variants: []Variant{
				{ID: id * 10, SKU: fmt.Sprintf("SKU-%03d-STD", id), Price: p.price, IsDefault: true},
				{ID: id*10 + 1, SKU: fmt.Sprintf("SKU-%03d-XL", id), Price: p.price * 1.2},
			},
		}
	}
	if err := db.UpsertProducts(ctx, products); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}

	// Users 1..12 browse within one category each, which gives the
	// collaborative signal something to find.
	n := int64(len(demoProducts))
	for user := int64(1); user <= 12; user++ {
		for k := int64(0); k < 6; k++ {
			item := (user*3+k)%n + 1
			viewedAt := now.Add(-time.Duration(user*6+k) * time.Hour)
			if _, err := db.IngestView(ctx, ViewEvent{
				EventID:  uuid.NewString(),
				UserID:   user,
				ItemID:   item,
				ViewedAt: viewedAt,
			}); err != nil {
				return fmt.Errorf("seed view: %w", err)
			}
		}
	}

	for user, keyword := range map[int64]string{1: "oak", 2: "lamp", 3: "linen", 4: "copper"} {
		if _, err := db.InsertSearch(ctx, SearchEvent{
			EventID:    uuid.NewString(),
			UserID:     user,
			Keyword:    keyword,
			SearchedAt: now.Add(-time.Duration(user) * time.Minute),
		}); err != nil {
			return fmt.Errorf("seed search: %w", err)
		}
	}

	for i := int64(1); i <= 5; i++ {
		paidAt := now.Add(-time.Duration(i) * time.Hour)
		if err := db.UpsertOrder(ctx, Order{
			OrderID:      1000 + i,
			UserID:       i,
			PaymentState: PaymentStatePaid,
			PaidAt:       &paidAt,
			CreatedAt:    paidAt.Add(-10 * time.Minute),
			Lines: []OrderLine{
				{ItemID: i, Quantity: 1},
				{ItemID: i + 6, Quantity: int(i%3) + 1},
			},
		}); err != nil {
			return fmt.Errorf("seed order: %w", err)
		}
	}

	logging.Info().Msg("Demo catalog seeded")
	return nil
}
