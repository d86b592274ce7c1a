package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/buildview/internal/config"
	"github.com/Iron-Ham/buildview/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View the debug log",
	Long: `View and filter the buildview debug log.

Examples:
  # Show the last 50 entries
  buildview logs

  # Show everything logged for one build
  buildview logs -b 3f2a -n 0

  # Follow the log while building in another terminal
  buildview logs -f

  # Warnings and errors from the last hour
  buildview logs --level warn --since 1h`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsBuildID string
	logsTail    int
	logsFollow  bool
	logsLevel   string
	logsSince   time.Duration
	logsGrep    string
	logsDir     string
)

// followInterval is how often logs --follow checks for new entries.
const followInterval = 500 * time.Millisecond

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().StringVarP(&logsBuildID, "build", "b", "", "Only entries of this build ID (a prefix is enough)")
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output (like tail -f)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().DurationVar(&logsSince, "since", 0, "Show entries since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Only entries whose message contains this text")
	logsCmd.Flags().StringVar(&logsDir, "dir", "", "Log directory (default from logging.dir)")
}

func runLogs(cmd *cobra.Command, args []string) error {
	dir := logsDir
	if dir == "" {
		cfg := config.Get()
		if dir = cfg.Logging.LogDir(); dir == "" {
			return fmt.Errorf("logging is disabled; set logging.enabled to true")
		}
	}

	filter := logging.LogFilter{Level: logsLevel, Contains: logsGrep}
	if logsSince > 0 {
		filter.Since = time.Now().Add(-logsSince)
	}

	entries, err := readLogs(dir, filter)
	if err != nil {
		return err
	}
	if logsTail > 0 && len(entries) > logsTail {
		entries = entries[len(entries)-logsTail:]
	}
	out := cmd.OutOrStdout()
	if err := logging.WriteText(out, entries); err != nil {
		return err
	}
	if !logsFollow {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return followLogs(ctx, dir, filter, entries, func(e []logging.LogEntry) error {
		return logging.WriteText(out, e)
	})
}

// readLogs reads and filters the log in dir, matching --build by prefix.
func readLogs(dir string, filter logging.LogFilter) ([]logging.LogEntry, error) {
	entries, err := logging.ReadLogs(dir)
	if err != nil {
		return nil, err
	}
	entries = logging.FilterLogs(entries, filter)
	if logsBuildID == "" {
		return entries, nil
	}
	var out []logging.LogEntry
	for _, e := range entries {
		if len(e.BuildID) >= len(logsBuildID) && e.BuildID[:len(logsBuildID)] == logsBuildID {
			out = append(out, e)
		}
	}
	return out, nil
}

// followLogs polls the log and passes entries newer than the last one
// seen to emit until ctx is done.
func followLogs(ctx context.Context, dir string, filter logging.LogFilter, seen []logging.LogEntry, emit func([]logging.LogEntry) error) error {
	var last time.Time
	if len(seen) > 0 {
		last = seen[len(seen)-1].Time
	}
	ticker := time.NewTicker(followInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		entries, err := readLogs(dir, filter)
		if err != nil {
			// The log may be mid-rotation
			continue
		}
		var fresh []logging.LogEntry
		for _, e := range entries {
			if e.Time.After(last) {
				fresh = append(fresh, e)
			}
		}
		if len(fresh) == 0 {
			continue
		}
		last = fresh[len(fresh)-1].Time
		if err := emit(fresh); err != nil {
			return err
		}
	}
}
