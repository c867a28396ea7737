package searchindex

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Querier is the subset of *sql.DB and *sql.Tx the index needs.
// Maintainers receive the caller's transaction so index writes commit or
// roll back together with the entity write.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Entry is one row of the search index.
type Entry struct {
	Key      int64
	Kind     Kind
	EntityID int64
	Title    string
	Body     string
	Tags     string
}

// source describes how one kind's entries are assembled from its table.
// selectSQL returns the id first, then len(fields) text columns (NULLs
// coalesced to ''), and must not end in a WHERE clause.
type source struct {
	kind      Kind
	table     string
	alias     string
	selectSQL string
	fields    int
	assemble  func(id int64, f []string) (title, body, tags string)
}

var sources = []source{
	{
		kind:  KindProduct,
		table: "products",
		alias: "p",
		selectSQL: `SELECT p.id, p.name, p.description, COALESCE(p.external_product_ref, ''), p.type,
			COALESCE(b.name, ''), COALESCE(c.name, '')
		FROM products p
		LEFT JOIN brands b ON b.id = p.brand_id
		LEFT JOIN categories c ON c.id = p.category_id`,
		fields: 6,
		assemble: func(_ int64, f []string) (string, string, string) {
			// name, description, ref, type, brand, category
			return f[0], joinText(f[1], f[2], f[4], f[5]), tag("type", f[3])
		},
	},
	{
		kind:  KindVariant,
		table: "variants",
		alias: "v",
		selectSQL: `SELECT v.id, v.name, v.sku, v.description, CAST(v.product_id AS TEXT), COALESCE(p.name, '')
		FROM variants v
		LEFT JOIN products p ON p.id = v.product_id`,
		fields: 5,
		assemble: func(_ int64, f []string) (string, string, string) {
			// name, sku, description, product id, product name
			return f[0], joinText(f[1], f[2], f[4]), tag("product_id", f[3])
		},
	},
	{
		kind:  KindPriceTier,
		table: "price_tiers",
		alias: "t",
		selectSQL: `SELECT t.id, COALESCE(t.external_price_ref, ''), CAST(t.variant_id AS TEXT),
			COALESCE(v.name, ''), COALESCE(p.name, '')
		FROM price_tiers t
		LEFT JOIN variants v ON v.id = t.variant_id
		LEFT JOIN products p ON p.id = v.product_id`,
		fields: 4,
		assemble: func(id int64, f []string) (string, string, string) {
			// price ref, variant id, variant name, product name
			return fallback(f[0], fmt.Sprintf("Price tier %d", id)), joinText(f[0], f[2], f[3]), tag("variant_id", f[1])
		},
	},
	{
		kind:  KindOrder,
		table: "orders",
		alias: "o",
		selectSQL: `SELECT o.id, COALESCE(o.order_number, ''), o.status, o.payment_status, o.fulfillment_status,
			o.source, o.payment_method, o.customer_name, o.customer_email, o.customer_phone,
			COALESCE(o.external_payment_ref, ''), COALESCE(o.external_session_ref, ''), o.notes
		FROM orders o`,
		fields: 12,
		assemble: func(id int64, f []string) (string, string, string) {
			title := fallback(f[0], fmt.Sprintf("Order #%d", id))
			return title, joinText(f[1:]...), joinText(tag("order_status", f[1]), tag("payment_status", f[2]))
		},
	},
	{
		kind:      KindDesign,
		table:     "designs",
		alias:     "d",
		selectSQL: `SELECT d.id, d.name, d.code, d.description FROM designs d`,
		fields:    3,
		assemble: func(_ int64, f []string) (string, string, string) {
			return f[0], joinText(f[1], f[2]), tag("code", f[1])
		},
	},
	{
		kind:      KindLockTech,
		table:     "lock_techs",
		alias:     "l",
		selectSQL: `SELECT l.id, l.name FROM lock_techs l`,
		fields:    1,
		assemble: func(_ int64, f []string) (string, string, string) {
			return f[0], f[0], ""
		},
	},
	{
		kind:  KindImage,
		table: "images",
		alias: "i",
		selectSQL: `SELECT i.id, i.url, COALESCE(i.alt_text, ''), i.entity_type, CAST(i.entity_id AS TEXT)
		FROM images i`,
		fields: 4,
		assemble: func(_ int64, f []string) (string, string, string) {
			// url, alt text, owner kind, owner id
			var tags string
			if f[2] != "" {
				tags = "entity:" + f[2] + ":" + f[3]
			}
			return fallback(f[1], f[0]), joinText(f[0], f[1], f[2], f[3]), tags
		},
	},
}

// sourceFor returns the source for kind.
func sourceFor(kind Kind) (*source, bool) {
	for i := range sources {
		if sources[i].kind == kind {
			return &sources[i], true
		}
	}
	return nil, false
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntry reads one selectSQL row and assembles its entry.
func (s *source) scanEntry(row rowScanner) (Entry, error) {
	var id int64
	fields := make([]string, s.fields)
	dest := make([]any, 0, s.fields+1)
	dest = append(dest, &id)
	for i := range fields {
		dest = append(dest, &fields[i])
	}
	if err := row.Scan(dest...); err != nil {
		return Entry{}, err
	}

	key, err := GlobalKey(s.kind, id)
	if err != nil {
		return Entry{}, err
	}
	title, body, tags := s.assemble(id, fields)
	return Entry{
		Key:      key,
		Kind:     s.kind,
		EntityID: id,
		Title:    title,
		Body:     body,
		Tags:     tags,
	}, nil
}

// loadOne assembles the entry for a single row.
func (s *source) loadOne(ctx context.Context, q Querier, id int64) (Entry, error) {
	query := s.selectSQL + " WHERE " + s.alias + ".id = ?"
	return s.scanEntry(q.QueryRowContext(ctx, query, id))
}

// loadAll assembles entries for every row of the source table.
func (s *source) loadAll(ctx context.Context, q Querier) ([]Entry, error) {
	rows, err := q.QueryContext(ctx, s.selectSQL+" ORDER BY "+s.alias+".id")
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", s.table, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := s.scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("assemble %s: %w", s.kind, err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// joinText joins the non-empty parts with single spaces.
func joinText(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func tag(key, value string) string {
	if value == "" {
		return ""
	}
	return key + ":" + value
}

func fallback(value, label string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return label
}
