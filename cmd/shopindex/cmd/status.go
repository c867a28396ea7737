package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/shopindex/internal/searchindex"
)

// StatusOutput is the JSON output format for the status command.
type StatusOutput struct {
	Database string              `json:"database"`
	Driver   string              `json:"driver"`
	Index    *searchindex.Status `json:"index"`
	Stale    bool                `json:"stale"`
}

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show index health and status",
		Long: `Display the index state without changing it:
  - Whether the index exists and which tokenizer it uses
  - Stored and expected content version
  - Entry counts per entity kind
  - Whether the next 'shopindex ensure' would rebuild`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, cfg, lockNone)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			st, err := s.index.Status(ctx)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), StatusOutput{
					Database: cfg.Database.Path,
					Driver:   cfg.Database.Driver,
					Index:    st,
					Stale:    st.Stale(),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database:  %s (%s)\n", cfg.Database.Path, cfg.Database.Driver)
			if !st.Exists {
				fmt.Fprintln(out, "Index:     missing (run 'shopindex ensure')")
				return nil
			}
			stored := "none"
			if st.HadVersion {
				stored = fmt.Sprintf("%d", st.StoredVersion)
			}
			fmt.Fprintf(out, "Tokenizer: %s\n", st.Tokenizer)
			fmt.Fprintf(out, "Version:   stored %s, expected %d\n", stored, st.ExpectedVersion)
			fmt.Fprintf(out, "Entries:   %d\n", st.Entries)
			for _, kind := range searchindex.AllKinds {
				fmt.Fprintf(out, "  %-10s %d\n", kind, st.Counts[kind])
			}
			if st.Stale() {
				fmt.Fprintln(out, "State:     next ensure will rebuild")
			} else {
				fmt.Fprintln(out, "State:     current")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
