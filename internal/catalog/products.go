package catalog

import (
	"context"
	"database/sql"

	"github.com/Aman-CERP/shopindex/internal/searchindex"
	"github.com/Aman-CERP/shopindex/internal/store"
)

// CreateBrand inserts a brand. Brands are not indexed themselves.
func (s *Store) CreateBrand(ctx context.Context, b Brand) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO brands (id, name) VALUES (?, ?)`, optionalID(b.ID), b.Name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RenameBrand renames a brand. Index entries of its products keep the old
// name until each product is written again or the index is rebuilt.
func (s *Store) RenameBrand(ctx context.Context, id int64, name string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE brands SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "brand", id)
}

// CreateCategory inserts a category. Categories are not indexed themselves.
func (s *Store) CreateCategory(ctx context.Context, c Category) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO categories (id, name) VALUES (?, ?)`, optionalID(c.ID), c.Name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RenameCategory renames a category. Same staleness as RenameBrand.
func (s *Store) RenameCategory(ctx context.Context, id int64, name string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE categories SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "category", id)
}

// CreateProduct inserts a product and indexes it.
func (s *Store) CreateProduct(ctx context.Context, p Product) (int64, error) {
	return s.insert(ctx, searchindex.KindProduct, `
		INSERT INTO products (id, name, description, type, external_product_ref, brand_id, category_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		optionalID(p.ID), p.Name, p.Description, orDefault(p.Type, "regular"),
		nullString(p.ExternalRef), nullInt(p.BrandID), nullInt(p.CategoryID))
}

// UpdateProduct overwrites a product's fields and reindexes it.
func (s *Store) UpdateProduct(ctx context.Context, p Product) error {
	return s.update(ctx, searchindex.KindProduct, p.ID, `
		UPDATE products SET name = ?, description = ?, type = ?, external_product_ref = ?,
			brand_id = ?, category_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		p.Name, p.Description, orDefault(p.Type, "regular"), nullString(p.ExternalRef),
		nullInt(p.BrandID), nullInt(p.CategoryID), p.ID)
}

// DeleteProduct deletes a product together with its variants and their
// price tiers, removing every affected index entry.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	return store.InTx(ctx, s.db, func(tx *sql.Tx) error {
		variants, err := childIDs(ctx, tx, "variants", "product_id", id)
		if err != nil {
			return err
		}
		for _, vid := range variants {
			if err := s.deleteVariantTx(ctx, tx, vid); err != nil {
				return err
			}
		}
		return s.deleteRow(ctx, tx, searchindex.KindProduct, id)
	})
}

// CreateVariant inserts a variant and indexes it.
func (s *Store) CreateVariant(ctx context.Context, v Variant) (int64, error) {
	return s.insert(ctx, searchindex.KindVariant, `
		INSERT INTO variants (id, product_id, name, sku, description) VALUES (?, ?, ?, ?, ?)`,
		optionalID(v.ID), v.ProductID, v.Name, v.SKU, v.Description)
}

// UpdateVariant overwrites a variant's fields and reindexes it.
func (s *Store) UpdateVariant(ctx context.Context, v Variant) error {
	return s.update(ctx, searchindex.KindVariant, v.ID, `
		UPDATE variants SET product_id = ?, name = ?, sku = ?, description = ? WHERE id = ?`,
		v.ProductID, v.Name, v.SKU, v.Description, v.ID)
}

// DeleteVariant deletes a variant and its price tiers.
func (s *Store) DeleteVariant(ctx context.Context, id int64) error {
	return store.InTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.deleteVariantTx(ctx, tx, id)
	})
}

func (s *Store) deleteVariantTx(ctx context.Context, tx *sql.Tx, id int64) error {
	tiers, err := childIDs(ctx, tx, "price_tiers", "variant_id", id)
	if err != nil {
		return err
	}
	for _, tid := range tiers {
		if err := s.deleteRow(ctx, tx, searchindex.KindPriceTier, tid); err != nil {
			return err
		}
	}
	return s.deleteRow(ctx, tx, searchindex.KindVariant, id)
}

// CreatePriceTier inserts a price tier and indexes it.
func (s *Store) CreatePriceTier(ctx context.Context, t PriceTier) (int64, error) {
	minQty := t.MinQuantity
	if minQty <= 0 {
		minQty = 1
	}
	return s.insert(ctx, searchindex.KindPriceTier, `
		INSERT INTO price_tiers (id, variant_id, external_price_ref, min_quantity, unit_amount_cents, currency)
		VALUES (?, ?, ?, ?, ?, ?)`,
		optionalID(t.ID), t.VariantID, nullString(t.ExternalPriceRef), minQty, t.UnitAmountCents,
		orDefault(t.Currency, "eur"))
}

// UpdatePriceTier overwrites a price tier and reindexes it.
func (s *Store) UpdatePriceTier(ctx context.Context, t PriceTier) error {
	minQty := t.MinQuantity
	if minQty <= 0 {
		minQty = 1
	}
	return s.update(ctx, searchindex.KindPriceTier, t.ID, `
		UPDATE price_tiers SET variant_id = ?, external_price_ref = ?, min_quantity = ?,
			unit_amount_cents = ?, currency = ?
		WHERE id = ?`,
		t.VariantID, nullString(t.ExternalPriceRef), minQty, t.UnitAmountCents, orDefault(t.Currency, "eur"), t.ID)
}

// DeletePriceTier deletes a price tier.
func (s *Store) DeletePriceTier(ctx context.Context, id int64) error {
	return s.delete(ctx, searchindex.KindPriceTier, id)
}
