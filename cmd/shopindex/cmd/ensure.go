package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/shopindex/internal/searchindex"
)

func newEnsureCmd() *cobra.Command {
	var rebuild bool
	var jsonOutput bool
	var noWait bool

	cmd := &cobra.Command{
		Use:   "ensure",
		Short: "Bootstrap the search index",
		Long: `Probe full-text capability, create the index if missing and install the
index maintainers. The index is rebuilt only when --rebuild is given,
index.rebuild_on_start is set, the stored content version differs from the
expected one, or the index is empty. Safe to run on every deploy.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), cfg, exclusiveLock(noWait))
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			result, err := s.index.Ensure(cmd.Context(), searchindex.EnsureOptions{
				Rebuild: rebuild || cfg.Index.RebuildOnStart,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			printEnsure(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Force a full rebuild")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Fail instead of waiting when another process holds the database lock")

	return cmd
}

func printEnsure(w io.Writer, r *searchindex.EnsureResult) {
	stored := "none"
	if r.HadVersion {
		stored = fmt.Sprintf("%d", r.PreviousVersion)
	}

	fmt.Fprintln(w, "Search index ready")
	fmt.Fprintf(w, "  Tokenizer: %s\n", r.Tokenizer)
	fmt.Fprintf(w, "  Version:   %d (stored: %s)\n", r.Version, stored)
	if r.Rebuilt {
		fmt.Fprintf(w, "  Rebuilt:   yes (%s) in %s\n", r.Reason, formatDuration(r.Rebuild.Duration))
	} else {
		fmt.Fprintln(w, "  Rebuilt:   no")
	}
	if r.LegacyTriggers > 0 {
		fmt.Fprintf(w, "  Dropped:   %d legacy trigger(s)\n", r.LegacyTriggers)
	}
	fmt.Fprintf(w, "  Entries:   %d\n", r.Entries)
}

// formatDuration rounds d for display, keeping sub-millisecond runs visible.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return d.Round(time.Microsecond).String()
	}
	return d.Round(time.Millisecond).String()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
