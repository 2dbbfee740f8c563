// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/shopfront/internal/metrics"
	"github.com/tomtom215/shopfront/internal/recommend"
)

// catalogSelect joins every product with its default variant, if any.
const catalogSelect = `
	SELECT p.id, p.category_id, p.brand_id, p.name, p.created_at, v.price
	FROM products p
	LEFT JOIN product_variants v ON v.product_id = p.id AND v.is_default
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCatalogItem(row rowScanner) (recommend.CatalogItem, error) {
	var (
		item  recommend.CatalogItem
		price sql.NullFloat64
	)
	if err := row.Scan(&item.ID, &item.CategoryID, &item.BrandID, &item.Name, &item.CreatedAt, &price); err != nil {
		return item, err
	}
	if price.Valid {
		p := price.Float64
		item.DefaultPrice = &p
	}
	return item, nil
}

func (db *DB) queryCatalog(ctx context.Context, op, query string, args ...any) (items []recommend.CatalogItem, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, "products", time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetByID returns one product. Unknown ids yield ErrNotFound.
func (db *DB) GetByID(ctx context.Context, id int64) (*recommend.CatalogItem, error) {
	start := time.Now()
	item, err := scanCatalogItem(db.conn.QueryRowContext(ctx, catalogSelect+` WHERE p.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("get_by_id", "products", time.Since(start), nil)
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	metrics.RecordDBQuery("get_by_id", "products", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &item, nil
}

// GetByCategory returns up to limit products of a category, newest first.
func (db *DB) GetByCategory(ctx context.Context, categoryID int64, limit int) ([]recommend.CatalogItem, error) {
	if limit <= 0 {
		return nil, nil
	}
	return db.queryCatalog(ctx, "get_by_category",
		catalogSelect+` WHERE p.category_id = ? ORDER BY p.created_at DESC, p.id LIMIT ?`,
		categoryID, limit)
}

// SearchByName returns up to limit products whose name contains keyword,
// case-insensitively. The keyword is matched literally.
func (db *DB) SearchByName(ctx context.Context, keyword string, limit int) ([]recommend.CatalogItem, error) {
	if keyword == "" || limit <= 0 {
		return nil, nil
	}
	return db.queryCatalog(ctx, "search_by_name",
		catalogSelect+` WHERE contains(lower(p.name), lower(?)) ORDER BY p.id LIMIT ?`,
		keyword, limit)
}

// GetAllBasicInfo returns the whole catalog ordered by id.
func (db *DB) GetAllBasicInfo(ctx context.Context) ([]recommend.CatalogItem, error) {
	return db.queryCatalog(ctx, "get_all", catalogSelect+` ORDER BY p.id`)
}

// Product is a catalog row with its variants, for seeding and tests.
type Product struct {
	ID         int64
	CategoryID int64
	BrandID    int64
	Name       string
	CreatedAt  time.Time
	Variants   []Variant
}

// Variant is a sellable variant of a product.
type Variant struct {
	ID        int64
	SKU       string
	Price     float64
	IsDefault bool
}

// UpsertProducts writes products and replaces their variants in one
// transaction.
func (db *DB) UpsertProducts(ctx context.Context, products []Product) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		for i := range products {
			p := &products[i]
			createdAt := p.CreatedAt
			if createdAt.IsZero() {
				createdAt = db.now()
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO products (id, category_id, brand_id, name, created_at)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT (id) DO UPDATE SET
					category_id = excluded.category_id,
					brand_id = excluded.brand_id,
					name = excluded.name`,
				p.ID, p.CategoryID, p.BrandID, p.Name, createdAt.UTC()); err != nil {
				return fmt.Errorf("upsert product %d: %w", p.ID, err)
			}

			if _, err := tx.ExecContext(ctx, `DELETE FROM product_variants WHERE product_id = ?`, p.ID); err != nil {
				return fmt.Errorf("clear variants of product %d: %w", p.ID, err)
			}
			for _, v := range p.Variants {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO product_variants (id, product_id, sku, price, is_default)
					VALUES (?, ?, ?, ?, ?)`,
					v.ID, p.ID, v.SKU, v.Price, v.IsDefault); err != nil {
					return fmt.Errorf("insert variant %d: %w", v.ID, err)
				}
			}
		}
		return nil
	})
}
