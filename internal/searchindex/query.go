package searchindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	shoperrors "github.com/Aman-CERP/shopindex/internal/errors"
)

// Count returns the number of index entries.
func (x *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := x.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+indexTable).Scan(&n); err != nil {
		return 0, fmt.Errorf("count index entries: %w", err)
	}
	return n, nil
}

// CountByKind returns the number of entries per kind. Kinds without
// entries are absent from the map.
func (x *Index) CountByKind(ctx context.Context) (map[Kind]int, error) {
	rows, err := x.db.QueryContext(ctx,
		`SELECT entity_kind, COUNT(*) FROM `+indexTable+` GROUP BY entity_kind`)
	if err != nil {
		return nil, fmt.Errorf("count index entries by kind: %w", err)
	}
	defer rows.Close()

	counts := make(map[Kind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[Kind(kind)] = n
	}
	return counts, rows.Err()
}

// Entry returns the index entry stored at key.
func (x *Index) Entry(ctx context.Context, key int64) (*Entry, error) {
	var e Entry
	var kind string
	err := x.db.QueryRowContext(ctx,
		`SELECT rowid, entity_kind, entity_id, title, body, tags FROM `+indexTable+` WHERE rowid = ?`, key).
		Scan(&e.Key, &kind, &e.EntityID, &e.Title, &e.Body, &e.Tags)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shoperrors.New(shoperrors.ErrCodeNotFound,
			fmt.Sprintf("no index entry at key %d", key), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("read index entry %d: %w", key, err)
	}
	e.Kind = Kind(kind)
	return &e, nil
}

// SearchOptions narrows a Search call.
type SearchOptions struct {
	// Kinds restricts results to these kinds. Empty means all.
	Kinds []Kind
	// Limit caps the result count. Zero means 20.
	Limit int
}

// Hit is one search result.
type Hit struct {
	Key      int64  `json:"key"`
	Kind     Kind   `json:"kind"`
	EntityID int64  `json:"entity_id"`
	Title    string `json:"title"`
	// Score is the negated FTS5 bm25() value: higher is better.
	Score float64 `json:"score"`
}

// Search runs a prefix query over title, body and tags, best match first.
// Each whitespace-separated term must match; terms of two or more
// characters also match as prefixes.
func (x *Index) Search(ctx context.Context, query string, opts SearchOptions) ([]Hit, error) {
	match := matchExpression(query)
	if match == "" {
		return []Hit{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	sqlText := `SELECT rowid, entity_kind, entity_id, title, bm25(` + indexTable + `) AS score
		FROM ` + indexTable + ` WHERE ` + indexTable + ` MATCH ?`
	args := []any{match}
	if len(opts.Kinds) > 0 {
		placeholders := make([]string, len(opts.Kinds))
		for i, k := range opts.Kinds {
			placeholders[i] = "?"
			args = append(args, string(k))
		}
		sqlText += ` AND entity_kind IN (` + strings.Join(placeholders, ",") + `)`
	}
	sqlText += ` ORDER BY score LIMIT ?`
	args = append(args, limit)

	rows, err := x.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		// FTS5 rejects some inputs even after quoting; treat as no results.
		if strings.Contains(err.Error(), "fts5:") || strings.Contains(err.Error(), "syntax error") {
			return []Hit{}, nil
		}
		return nil, shoperrors.New(shoperrors.ErrCodeSearchFailed, "search failed", err)
	}
	defer rows.Close()

	hits := []Hit{}
	for rows.Next() {
		var h Hit
		var kind string
		if err := rows.Scan(&h.Key, &kind, &h.EntityID, &h.Title, &h.Score); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		h.Kind = Kind(kind)
		h.Score = -h.Score
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// matchExpression quotes every term so FTS5 operators in user input are
// treated as text.
func matchExpression(query string) string {
	var terms []string
	for _, field := range strings.Fields(query) {
		field = strings.ReplaceAll(field, `"`, "")
		if field == "" {
			continue
		}
		term := `"` + field + `"`
		if len([]rune(field)) >= 2 {
			term += "*"
		}
		terms = append(terms, term)
	}
	return strings.Join(terms, " ")
}
