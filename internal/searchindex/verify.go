package searchindex

import (
	"context"
	"fmt"
	"time"
)

// IssueType categorizes a detected inconsistency.
type IssueType int

const (
	// IssueOrphan is an index entry whose source row no longer exists.
	IssueOrphan IssueType = iota
	// IssueMissing is a source row without an index entry.
	IssueMissing
)

// String returns a human-readable description of the issue type.
func (t IssueType) String() string {
	switch t {
	case IssueOrphan:
		return "orphan_entry"
	case IssueMissing:
		return "missing_entry"
	default:
		return "unknown"
	}
}

// MarshalText encodes the issue type by name.
func (t IssueType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Issue is one key that differs between the source tables and the index.
// A key outside every partition has Kind KindUnknown and EntityID equal to
// the raw key.
type Issue struct {
	Type     IssueType `json:"type"`
	Key      int64     `json:"key"`
	Kind     Kind      `json:"kind"`
	EntityID int64     `json:"entity_id"`
}

// VerifyResult contains the outcome of a consistency check.
type VerifyResult struct {
	// Checked is the number of source rows compared.
	Checked int `json:"checked"`
	// Entries is the number of index entries compared.
	Entries int           `json:"entries"`
	Issues  []Issue       `json:"issues"`
	Took    time.Duration `json:"took_ns"`
}

// Consistent reports whether no issues were found.
func (r *VerifyResult) Consistent() bool {
	return len(r.Issues) == 0
}

// Verify compares the keys of every source row with the keys in the index.
// Rows written outside the catalog store (raw SQL, restores) show up here.
func (x *Index) Verify(ctx context.Context) (*VerifyResult, error) {
	start := time.Now()
	result := &VerifyResult{}

	want := make(map[int64]struct{})
	for i := range sources {
		src := &sources[i]
		rows, err := x.db.QueryContext(ctx, `SELECT id FROM `+src.table)
		if err != nil {
			return nil, fmt.Errorf("list %s ids: %w", src.table, err)
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("scan %s id: %w", src.table, err)
			}
			key, err := GlobalKey(src.kind, id)
			if err != nil {
				_ = rows.Close()
				return nil, err
			}
			want[key] = struct{}{}
		}
		err = rows.Err()
		_ = rows.Close()
		if err != nil {
			return nil, err
		}
	}
	result.Checked = len(want)

	rows, err := x.db.QueryContext(ctx, `SELECT rowid FROM `+indexTable)
	if err != nil {
		return nil, fmt.Errorf("list index keys: %w", err)
	}
	have := make(map[int64]struct{})
	for rows.Next() {
		var key int64
		if err := rows.Scan(&key); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan index key: %w", err)
		}
		have[key] = struct{}{}
	}
	err = rows.Err()
	_ = rows.Close()
	if err != nil {
		return nil, err
	}
	result.Entries = len(have)

	for key := range have {
		if _, ok := want[key]; !ok {
			result.Issues = append(result.Issues, newIssue(IssueOrphan, key))
		}
	}
	for key := range want {
		if _, ok := have[key]; !ok {
			result.Issues = append(result.Issues, newIssue(IssueMissing, key))
		}
	}

	result.Took = time.Since(start)
	return result, nil
}

func newIssue(t IssueType, key int64) Issue {
	kind, id, err := SplitKey(key)
	if err != nil {
		return Issue{Type: t, Key: key, Kind: KindUnknown, EntityID: key}
	}
	return Issue{Type: t, Key: key, Kind: kind, EntityID: id}
}
