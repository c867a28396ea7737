// Package searchindex keeps one SQLite FTS5 index consistent with the
// catalog's entity tables.
//
// Every entity write calls AfterInsert, AfterUpdate or AfterDelete inside its
// own transaction, so an entity row never commits without its index entry.
// Ensure bootstraps the index at startup and rebuilds it when the stored
// content version differs from CurrentVersion.
package searchindex

import (
	"database/sql"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Aman-CERP/shopindex/internal/metrics"
)

// CurrentVersion is the content version of the assembly rules in source.go.
// Bump it whenever an entry's title, body or tags change shape; the next
// Ensure then rebuilds every deployment once.
const CurrentVersion = 1

// indexTable is the FTS5 virtual table holding all entries.
const indexTable = "search_index"

// Index is the search index synchronizer.
type Index struct {
	db      *sql.DB
	logger  *slog.Logger
	metrics *metrics.Metrics

	version           int
	enrichedTokenizer string
	plainTokenizer    string
	prefixes          []int

	// mu serializes Ensure and Rebuild within the process.
	mu sync.Mutex

	// maintainers is nil until Ensure has installed them.
	maintainers atomic.Pointer[map[Kind]*source]
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(x *Index) {
		x.logger = logger
	}
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(x *Index) {
		x.metrics = m
	}
}

// WithExpectedVersion overrides CurrentVersion.
func WithExpectedVersion(version int) Option {
	return func(x *Index) {
		x.version = version
	}
}

// WithTokenizers overrides the enriched and plain tokenizer configurations.
// Empty strings keep the defaults.
func WithTokenizers(enriched, plain string) Option {
	return func(x *Index) {
		if enriched != "" {
			x.enrichedTokenizer = enriched
		}
		if plain != "" {
			x.plainTokenizer = plain
		}
	}
}

// WithPrefixes overrides the indexed prefix lengths.
func WithPrefixes(prefixes ...int) Option {
	return func(x *Index) {
		if len(prefixes) > 0 {
			x.prefixes = prefixes
		}
	}
}

// New creates an Index over db. Call Ensure before any entity write.
func New(db *sql.DB, opts ...Option) *Index {
	x := &Index{
		db:                db,
		logger:            slog.Default(),
		version:           CurrentVersion,
		enrichedTokenizer: DefaultEnrichedTokenizer,
		plainTokenizer:    DefaultPlainTokenizer,
		prefixes:          DefaultPrefixes,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Version returns the content version this Index expects.
func (x *Index) Version() int {
	return x.version
}
