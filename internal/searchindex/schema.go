package searchindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	shoperrors "github.com/Aman-CERP/shopindex/internal/errors"
)

// TokenizerMode reports which tokenizer configuration the index was built with.
type TokenizerMode string

const (
	TokenizerEnriched TokenizerMode = "enriched"
	TokenizerPlain    TokenizerMode = "plain"
)

const (
	// DefaultEnrichedTokenizer folds case and diacritics and keeps SKUs like
	// ABC-123 and e-mail addresses together as single terms.
	DefaultEnrichedTokenizer = "unicode61 remove_diacritics 2 tokenchars '-_@.'"

	// DefaultPlainTokenizer only folds case and diacritics.
	DefaultPlainTokenizer = "unicode61 remove_diacritics 1"
)

// DefaultPrefixes are the prefix lengths FTS5 keeps extra index data for.
var DefaultPrefixes = []int{2, 3, 4}

const probeTable = "search_index_probe"

// probe checks that the store can create an FTS5 table at all.
// Any failure means the environment cannot support search.
func (x *Index) probe(ctx context.Context) error {
	stmts := []string{
		"DROP TABLE IF EXISTS " + probeTable,
		"CREATE VIRTUAL TABLE " + probeTable + " USING fts5(probe)",
		"DROP TABLE " + probeTable,
	}
	for _, stmt := range stmts {
		if _, err := x.db.ExecContext(ctx, stmt); err != nil {
			x.metrics.ObserveProbeFailure()
			return shoperrors.New(shoperrors.ErrCodeCapabilityUnavailable,
				"environment cannot support search: the store has no FTS5 full-text capability", err).
				WithSuggestion("use the pure Go sqlite driver, or build with -tags sqlite_fts5 for sqlite3")
		}
	}
	return nil
}

// createIndexSQL renders the index definition for one tokenizer.
func (x *Index) createIndexSQL(tokenizer string) string {
	prefixes := make([]string, len(x.prefixes))
	for i, p := range x.prefixes {
		prefixes[i] = strconv.Itoa(p)
	}
	return fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS %s USING fts5(
		entity_kind UNINDEXED,
		entity_id UNINDEXED,
		title,
		body,
		tags,
		prefix = '%s',
		tokenize = "%s"
	)`, indexTable, strings.Join(prefixes, " "), tokenizer)
}

// buildSchema creates the index table, preferring the enriched tokenizer.
// Only a tokenizer rejection falls back to the plain configuration; every
// other error is returned.
func (x *Index) buildSchema(ctx context.Context) (TokenizerMode, error) {
	definition, exists, err := x.indexDefinition(ctx)
	if err != nil {
		return "", err
	}
	if exists {
		if strings.Contains(definition, x.enrichedTokenizer) {
			return TokenizerEnriched, nil
		}
		return TokenizerPlain, nil
	}

	_, err = x.db.ExecContext(ctx, x.createIndexSQL(x.enrichedTokenizer))
	if err == nil {
		return TokenizerEnriched, nil
	}
	if !isTokenizerRejection(err) {
		return "", shoperrors.New(shoperrors.ErrCodeIndexFailed, "failed to create search index", err)
	}

	rejected := shoperrors.New(shoperrors.ErrCodeTokenizerRejected,
		"enriched tokenizer configuration rejected by this store build", err).
		WithDetail("tokenizer", x.enrichedTokenizer)
	x.logger.Warn("tokenizer_fallback",
		slog.String("rejected", x.enrichedTokenizer),
		slog.String("using", x.plainTokenizer),
		slog.String("error", rejected.Error()))
	x.metrics.ObserveFallback()

	if _, err := x.db.ExecContext(ctx, x.createIndexSQL(x.plainTokenizer)); err != nil {
		return "", shoperrors.New(shoperrors.ErrCodeIndexFailed,
			"failed to create search index with plain tokenizer", err)
	}
	return TokenizerPlain, nil
}

// isTokenizerRejection matches the FTS5 errors raised for an unusable
// tokenize= directive: unknown tokenizer, bad arguments, or a parse error.
func isTokenizerRejection(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "tokenizer") || strings.Contains(msg, "tokenize")
}

// indexDefinition returns the CREATE statement stored for the index table.
func (x *Index) indexDefinition(ctx context.Context) (string, bool, error) {
	var definition string
	err := x.db.QueryRowContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, indexTable).Scan(&definition)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read index definition: %w", err)
	}
	return definition, true, nil
}

// dropIndex removes the index table so the next buildSchema starts fresh.
func (x *Index) dropIndex(ctx context.Context) error {
	if _, err := x.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+indexTable); err != nil {
		return shoperrors.New(shoperrors.ErrCodeIndexFailed, "failed to drop search index", err)
	}
	return nil
}
