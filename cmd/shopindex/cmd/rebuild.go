package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/shopindex/internal/searchindex"
)

func newRebuildCmd() *cobra.Command {
	var jsonOutput bool
	var noWait bool

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the search index from all source tables",
		Long: `Delete every index entry and repopulate the index from the catalog
tables in one transaction. Bootstraps the index first if needed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, cfg, exclusiveLock(noWait))
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			ensured, err := s.index.Ensure(ctx, searchindex.EnsureOptions{})
			if err != nil {
				return err
			}
			result := ensured.Rebuild
			if !ensured.Rebuilt {
				if result, err = s.index.Rebuild(ctx); err != nil {
					return err
				}
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rebuilt %d entries in %s (%s)\n", result.Total, formatDuration(result.Duration), result.Reason)
			for _, kind := range searchindex.AllKinds {
				fmt.Fprintf(out, "  %-10s %d\n", kind, result.Counts[kind])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Fail instead of waiting when another process holds the database lock")

	return cmd
}
