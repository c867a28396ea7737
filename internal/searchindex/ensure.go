package searchindex

import (
	"context"
	"log/slog"
)

// EnsureOptions configures Ensure.
type EnsureOptions struct {
	// Rebuild forces a full rebuild regardless of the version gate.
	Rebuild bool
}

// EnsureResult reports what one Ensure call did.
type EnsureResult struct {
	Tokenizer       TokenizerMode  `json:"tokenizer"`
	PreviousVersion int            `json:"previous_version"` // 0 when HadVersion is false
	HadVersion      bool           `json:"had_version"`
	Version         int            `json:"version"`
	LegacyTriggers  int            `json:"legacy_triggers"`
	Rebuilt         bool           `json:"rebuilt"`
	Reason          RebuildReason  `json:"reason"`
	Rebuild         *RebuildResult `json:"rebuild,omitempty"`
	Entries         int            `json:"entries"`
}

// Ensure bootstraps the index. It is safe and cheap to call repeatedly:
// without a version change or an empty index nothing is rewritten.
//
//  1. probe FTS5 capability (fatal ErrCapabilityUnavailable on failure)
//  2. create the version table
//  3. compare the stored version with the expected one
//  4. create the index table (enriched tokenizer, plain fallback)
//  5. reinstall the per-kind maintainers
//  6. rebuild if forced, the version differs, or the index is empty
//  7. store the expected version
func (x *Index) Ensure(ctx context.Context, opts EnsureOptions) (*EnsureResult, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.probe(ctx); err != nil {
		x.logger.Error("search_index_capability_unavailable", slog.String("error", err.Error()))
		return nil, err
	}

	if err := x.ensureMeta(ctx); err != nil {
		return nil, err
	}

	previous, hadVersion, err := x.storedVersion(ctx)
	if err != nil {
		return nil, err
	}
	versionMismatch := !hadVersion || previous != x.version

	// A version change may also change the table definition, so the old
	// table goes before the schema builder runs.
	if versionMismatch {
		if _, exists, err := x.indexDefinition(ctx); err != nil {
			return nil, err
		} else if exists {
			if err := x.dropIndex(ctx); err != nil {
				return nil, err
			}
		}
	}

	mode, err := x.buildSchema(ctx)
	if err != nil {
		return nil, err
	}

	dropped, err := x.installMaintainers(ctx)
	if err != nil {
		return nil, err
	}

	count, err := x.Count(ctx)
	if err != nil {
		return nil, err
	}

	result := &EnsureResult{
		Tokenizer:       mode,
		PreviousVersion: previous,
		HadVersion:      hadVersion,
		Version:         x.version,
		LegacyTriggers:  dropped,
		Entries:         count,
	}

	switch {
	case opts.Rebuild:
		result.Reason = ReasonForced
	case versionMismatch:
		result.Reason = ReasonVersionMismatch
	case count == 0:
		result.Reason = ReasonEmpty
	}

	if result.Reason != ReasonNone {
		rebuilt, err := x.rebuild(ctx, result.Reason)
		if err != nil {
			return nil, err
		}
		result.Rebuilt = true
		result.Rebuild = rebuilt
		result.Entries = rebuilt.Total
	} else {
		x.metrics.SetEntries(count)
	}

	if err := x.storeVersion(ctx, x.version); err != nil {
		return nil, err
	}

	x.logger.Info("search_index_ready",
		slog.String("tokenizer", string(mode)),
		slog.Int("version", x.version),
		slog.Bool("rebuilt", result.Rebuilt),
		slog.String("reason", string(result.Reason)),
		slog.Int("entries", result.Entries))
	return result, nil
}
