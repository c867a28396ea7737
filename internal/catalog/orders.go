package catalog

import (
	"context"

	"github.com/Aman-CERP/shopindex/internal/searchindex"
)

// CreateOrder inserts an order and indexes it.
func (s *Store) CreateOrder(ctx context.Context, o Order) (int64, error) {
	return s.insert(ctx, searchindex.KindOrder, `
		INSERT INTO orders (id, order_number, status, payment_status, fulfillment_status, source,
			payment_method, customer_name, customer_email, customer_phone,
			external_payment_ref, external_session_ref, notes, total_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		optionalID(o.ID), nullString(o.Number), orDefault(o.Status, "new"), orDefault(o.PaymentStatus, "unpaid"),
		orDefault(o.FulfillmentStatus, "unfulfilled"), o.Source, o.PaymentMethod,
		o.CustomerName, o.CustomerEmail, o.CustomerPhone,
		nullString(o.ExternalPaymentRef), nullString(o.ExternalSessionRef), o.Notes, o.TotalCents)
}

// UpdateOrder overwrites an order and reindexes it.
func (s *Store) UpdateOrder(ctx context.Context, o Order) error {
	return s.update(ctx, searchindex.KindOrder, o.ID, `
		UPDATE orders SET order_number = ?, status = ?, payment_status = ?, fulfillment_status = ?,
			source = ?, payment_method = ?, customer_name = ?, customer_email = ?, customer_phone = ?,
			external_payment_ref = ?, external_session_ref = ?, notes = ?, total_cents = ?
		WHERE id = ?`,
		nullString(o.Number), orDefault(o.Status, "new"), orDefault(o.PaymentStatus, "unpaid"),
		orDefault(o.FulfillmentStatus, "unfulfilled"), o.Source, o.PaymentMethod,
		o.CustomerName, o.CustomerEmail, o.CustomerPhone,
		nullString(o.ExternalPaymentRef), nullString(o.ExternalSessionRef), o.Notes, o.TotalCents, o.ID)
}

// DeleteOrder deletes an order.
func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	return s.delete(ctx, searchindex.KindOrder, id)
}

// CreateDesign inserts a design and indexes it.
func (s *Store) CreateDesign(ctx context.Context, d Design) (int64, error) {
	return s.insert(ctx, searchindex.KindDesign,
		`INSERT INTO designs (id, name, code, description) VALUES (?, ?, ?, ?)`,
		optionalID(d.ID), d.Name, d.Code, d.Description)
}

// UpdateDesign overwrites a design and reindexes it.
func (s *Store) UpdateDesign(ctx context.Context, d Design) error {
	return s.update(ctx, searchindex.KindDesign, d.ID,
		`UPDATE designs SET name = ?, code = ?, description = ? WHERE id = ?`,
		d.Name, d.Code, d.Description, d.ID)
}

// DeleteDesign deletes a design.
func (s *Store) DeleteDesign(ctx context.Context, id int64) error {
	return s.delete(ctx, searchindex.KindDesign, id)
}

// CreateLockTech inserts a lock technology and indexes it.
func (s *Store) CreateLockTech(ctx context.Context, l LockTech) (int64, error) {
	return s.insert(ctx, searchindex.KindLockTech,
		`INSERT INTO lock_techs (id, name) VALUES (?, ?)`, optionalID(l.ID), l.Name)
}

// UpdateLockTech renames a lock technology and reindexes it.
func (s *Store) UpdateLockTech(ctx context.Context, l LockTech) error {
	return s.update(ctx, searchindex.KindLockTech, l.ID,
		`UPDATE lock_techs SET name = ? WHERE id = ?`, l.Name, l.ID)
}

// DeleteLockTech deletes a lock technology.
func (s *Store) DeleteLockTech(ctx context.Context, id int64) error {
	return s.delete(ctx, searchindex.KindLockTech, id)
}

// CreateImage inserts an image and indexes it.
func (s *Store) CreateImage(ctx context.Context, img Image) (int64, error) {
	return s.insert(ctx, searchindex.KindImage, `
		INSERT INTO images (id, url, alt_text, entity_type, entity_id, sort_order) VALUES (?, ?, ?, ?, ?, ?)`,
		optionalID(img.ID), img.URL, nullString(img.AltText), img.EntityType, img.EntityID, img.SortOrder)
}

// UpdateImage overwrites an image and reindexes it.
func (s *Store) UpdateImage(ctx context.Context, img Image) error {
	return s.update(ctx, searchindex.KindImage, img.ID, `
		UPDATE images SET url = ?, alt_text = ?, entity_type = ?, entity_id = ?, sort_order = ? WHERE id = ?`,
		img.URL, nullString(img.AltText), img.EntityType, img.EntityID, img.SortOrder, img.ID)
}

// DeleteImage deletes an image.
func (s *Store) DeleteImage(ctx context.Context, id int64) error {
	return s.delete(ctx, searchindex.KindImage, id)
}
