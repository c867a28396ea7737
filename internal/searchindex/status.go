package searchindex

import (
	"context"
	"fmt"
	"strings"
)

// Status is a read-only snapshot of the index.
type Status struct {
	Exists          bool          `json:"exists"`
	Tokenizer       TokenizerMode `json:"tokenizer"`
	StoredVersion   int           `json:"stored_version"`
	HadVersion      bool          `json:"had_version"`
	ExpectedVersion int           `json:"expected_version"`
	Entries         int           `json:"entries"`
	Counts          map[Kind]int  `json:"counts"`
}

// Stale reports whether the next Ensure would rebuild.
func (s *Status) Stale() bool {
	return !s.Exists || !s.HadVersion || s.StoredVersion != s.ExpectedVersion || s.Entries == 0
}

// Status inspects the index without creating or changing anything.
func (x *Index) Status(ctx context.Context) (*Status, error) {
	st := &Status{ExpectedVersion: x.version}

	var metaTables int
	if err := x.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'search_meta'`).Scan(&metaTables); err != nil {
		return nil, fmt.Errorf("inspect search_meta: %w", err)
	}
	if metaTables > 0 {
		version, ok, err := x.storedVersion(ctx)
		if err != nil {
			return nil, err
		}
		st.StoredVersion, st.HadVersion = version, ok
	}

	definition, exists, err := x.indexDefinition(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return st, nil
	}
	st.Exists = true
	st.Tokenizer = TokenizerPlain
	if strings.Contains(definition, x.enrichedTokenizer) {
		st.Tokenizer = TokenizerEnriched
	}

	if st.Entries, err = x.Count(ctx); err != nil {
		return nil, err
	}
	if st.Counts, err = x.CountByKind(ctx); err != nil {
		return nil, err
	}
	return st, nil
}
