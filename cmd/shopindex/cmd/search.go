package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/shopindex/internal/searchindex"
)

func newSearchCmd() *cobra.Command {
	var kinds []string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the index",
		Long: `Run a prefix search over titles, bodies and tags. Every term must match.

Examples:
  shopindex search mifare
  shopindex search --kind order ada@example.com
  shopindex search --kind product,variant --limit 5 white card`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			opts := searchindex.SearchOptions{Limit: limit}
			for _, k := range kinds {
				kind, err := searchindex.ParseKind(k)
				if err != nil {
					return err
				}
				opts.Kinds = append(opts.Kinds, kind)
			}

			s, err := openSession(ctx, cfg, lockNone)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if err := s.requireIndex(ctx); err != nil {
				return err
			}

			query := strings.Join(args, " ")
			hits, err := s.index.Search(ctx, query, opts)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), hits)
			}

			out := cmd.OutOrStdout()
			if len(hits) == 0 {
				fmt.Fprintf(out, "No results for %q\n", query)
				return nil
			}
			for i, h := range hits {
				fmt.Fprintf(out, "%2d. [%s #%d] %s (score %.2f)\n", i+1, h.Kind, h.EntityID, h.Title, h.Score)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "Restrict to entity kinds (product, variant, price_tier, order, design, lock_tech, image)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of results")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
