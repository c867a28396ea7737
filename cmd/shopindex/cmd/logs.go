package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/shopindex/internal/logging"
)

func newLogsCmd() *cobra.Command {
	var (
		lines   int
		level   string
		pattern string
		follow  bool
		noColor bool
		file    string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show shopindex log output",
		Long: `Print the last lines of the shopindex log file, written when a command
runs with --debug or logging.file_path is set.`,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := logging.FindLogFile(file)
			if err != nil {
				return err
			}

			vc := logging.ViewerConfig{Level: level, NoColor: noColor || os.Getenv("NO_COLOR") != "" || !isTerminal(cmd.OutOrStdout())}
			if pattern != "" {
				re, err := regexp.Compile(pattern)
				if err != nil {
					return fmt.Errorf("invalid --grep pattern: %w", err)
				}
				vc.Pattern = re
			}
			viewer := logging.NewViewer(vc, cmd.OutOrStdout())

			entries, err := viewer.Tail(path, lines)
			if err != nil {
				return err
			}
			viewer.Print(entries)

			if !follow {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			stream := make(chan logging.LogEntry)
			errCh := make(chan error, 1)
			go func() { errCh <- viewer.Follow(ctx, path, stream) }()
			for {
				select {
				case entry := <-stream:
					fmt.Fprintln(cmd.OutOrStdout(), viewer.FormatEntry(entry))
				case err := <-errCh:
					return err
				}
			}
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level (debug, info, warn, error)")
	cmd.Flags().StringVar(&pattern, "grep", "", "Only show lines matching this regular expression")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored levels")
	cmd.Flags().StringVar(&file, "file", "", "Log file (default ~/.shopindex/logs/shopindex.log)")

	return cmd
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}
