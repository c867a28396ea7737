package cmd

import (
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/shopindex/internal/searchindex"
)

func newStatsCmd() *cobra.Command {
	var rebuild bool
	var noWait bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Bootstrap the index and print its metrics",
		Long: `Run the same bootstrap as 'shopindex ensure' and print the collected
Prometheus metrics in text exposition format: rebuilds by reason, rebuild
duration, tokenizer fallbacks, probe failures and the entry gauge.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, cfg, exclusiveLock(noWait))
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if _, err := s.index.Ensure(ctx, searchindex.EnsureOptions{Rebuild: rebuild}); err != nil {
				return err
			}

			families, err := s.registry.Gather()
			if err != nil {
				return err
			}
			for _, mf := range families {
				if _, err := expfmt.MetricFamilyToText(cmd.OutOrStdout(), mf); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Force a full rebuild before reporting")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Fail instead of waiting when another process holds the database lock")

	return cmd
}
