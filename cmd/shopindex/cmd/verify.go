package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	shoperrors "github.com/Aman-CERP/shopindex/internal/errors"
)

func newVerifyCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that every catalog row has exactly one index entry",
		Long: `Compare the keys of all catalog rows with the keys in the index and report
orphan entries (row gone) and missing entries (row not indexed). Exits
non-zero when the index is inconsistent.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, cfg, lockNone)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if err := s.requireIndex(ctx); err != nil {
				return err
			}

			result, err := s.index.Verify(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				if err := writeJSON(out, result); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "Checked %d rows against %d entries in %s\n", result.Checked, result.Entries, formatDuration(result.Took))
				for _, issue := range result.Issues {
					fmt.Fprintf(out, "  %-13s %s #%d (key %d)\n", issue.Type, issue.Kind, issue.EntityID, issue.Key)
				}
			}

			if !result.Consistent() {
				return shoperrors.New(shoperrors.ErrCodeIndexFailed,
					fmt.Sprintf("search index is inconsistent: %d issue(s)", len(result.Issues)), nil).
					WithSuggestion("run 'shopindex rebuild'")
			}
			if !jsonOutput {
				fmt.Fprintln(out, "Index is consistent")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
