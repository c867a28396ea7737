// Package schema owns the DDL of the catalog tables the search index observes.
package schema

import (
	"context"
	"database/sql"
	"fmt"
)

// Tables lists the source tables in creation order.
var Tables = []string{
	"brands",
	"categories",
	"products",
	"variants",
	"price_tiers",
	"orders",
	"designs",
	"lock_techs",
	"images",
}

const ddl = `
CREATE TABLE IF NOT EXISTS brands (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL DEFAULT 'regular',
	external_product_ref TEXT,
	brand_id INTEGER REFERENCES brands(id) ON DELETE SET NULL,
	category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS variants (
	id INTEGER PRIMARY KEY,
	product_id INTEGER NOT NULL REFERENCES products(id),
	name TEXT NOT NULL,
	sku TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_variants_product ON variants(product_id);

CREATE TABLE IF NOT EXISTS price_tiers (
	id INTEGER PRIMARY KEY,
	variant_id INTEGER NOT NULL REFERENCES variants(id),
	external_price_ref TEXT,
	min_quantity INTEGER NOT NULL DEFAULT 1,
	unit_amount_cents INTEGER NOT NULL DEFAULT 0,
	currency TEXT NOT NULL DEFAULT 'eur'
);
CREATE INDEX IF NOT EXISTS idx_price_tiers_variant ON price_tiers(variant_id);

CREATE TABLE IF NOT EXISTS orders (
	id INTEGER PRIMARY KEY,
	order_number TEXT,
	status TEXT NOT NULL DEFAULT 'new',
	payment_status TEXT NOT NULL DEFAULT 'unpaid',
	fulfillment_status TEXT NOT NULL DEFAULT 'unfulfilled',
	source TEXT NOT NULL DEFAULT '',
	payment_method TEXT NOT NULL DEFAULT '',
	customer_name TEXT NOT NULL DEFAULT '',
	customer_email TEXT NOT NULL DEFAULT '',
	customer_phone TEXT NOT NULL DEFAULT '',
	external_payment_ref TEXT,
	external_session_ref TEXT,
	notes TEXT NOT NULL DEFAULT '',
	total_cents INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS designs (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	code TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS lock_techs (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS images (
	id INTEGER PRIMARY KEY,
	url TEXT NOT NULL,
	alt_text TEXT,
	entity_type TEXT NOT NULL,
	entity_id INTEGER NOT NULL,
	sort_order INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_images_entity ON images(entity_type, entity_id);
`

// Migrate creates the catalog tables. Safe to call on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create catalog schema: %w", err)
	}
	return nil
}
