package searchindex

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	shoperrors "github.com/Aman-CERP/shopindex/internal/errors"
	"github.com/Aman-CERP/shopindex/internal/store"
)

// RebuildReason records why a full rebuild ran.
type RebuildReason string

const (
	ReasonNone            RebuildReason = ""
	ReasonForced          RebuildReason = "forced"
	ReasonVersionMismatch RebuildReason = "version_mismatch"
	ReasonEmpty           RebuildReason = "empty"
	ReasonManual          RebuildReason = "manual"
)

// RebuildResult summarizes one full rebuild.
type RebuildResult struct {
	Reason   RebuildReason `json:"reason"`
	Counts   map[Kind]int  `json:"counts"`
	Total    int           `json:"total"`
	Duration time.Duration `json:"duration_ns"`
}

// Rebuild empties the index and repopulates it from every source table.
// The index table must exist, so Ensure has to have run once.
func (x *Index) Rebuild(ctx context.Context) (*RebuildResult, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, exists, err := x.indexDefinition(ctx); err != nil {
		return nil, err
	} else if !exists {
		return nil, shoperrors.New(shoperrors.ErrCodeRebuildFailed,
			"search index does not exist; run ensure first", nil)
	}
	return x.rebuild(ctx, ReasonManual)
}

// rebuild runs in one transaction: readers see either the old or the new
// index. Kinds are independent since every join reads source tables only.
func (x *Index) rebuild(ctx context.Context, reason RebuildReason) (*RebuildResult, error) {
	start := time.Now()
	result := &RebuildResult{
		Reason: reason,
		Counts: make(map[Kind]int, len(sources)),
	}

	err := store.InTx(ctx, x.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+indexTable); err != nil {
			return fmt.Errorf("clear index: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO `+indexTable+` (rowid, entity_kind, entity_id, title, body, tags) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i := range sources {
			src := &sources[i]
			entries, err := src.loadAll(ctx, tx)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if _, err := stmt.ExecContext(ctx, e.Key, string(e.Kind), e.EntityID, e.Title, e.Body, e.Tags); err != nil {
					return fmt.Errorf("insert %s %d: %w", e.Kind, e.EntityID, err)
				}
			}
			result.Counts[src.kind] = len(entries)
			result.Total += len(entries)
		}

		// Merge the b-tree segments written above into one.
		if _, err := tx.ExecContext(ctx, `INSERT INTO `+indexTable+` (`+indexTable+`) VALUES ('optimize')`); err != nil {
			return fmt.Errorf("optimize index: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, shoperrors.New(shoperrors.ErrCodeRebuildFailed, "search index rebuild failed", err)
	}

	result.Duration = time.Since(start)
	x.metrics.ObserveRebuild(string(reason), result.Duration, result.Total)
	x.logger.Info("search_index_rebuilt",
		slog.String("reason", string(reason)),
		slog.Int("entries", result.Total),
		slog.Duration("duration", result.Duration))
	return result, nil
}
