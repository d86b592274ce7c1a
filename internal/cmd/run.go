package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/buildview/internal/event"
	"github.com/Iron-Ham/buildview/internal/tui"
	"github.com/Iron-Ham/buildview/internal/watch"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build in a terminal panel",
	Long: `Run the configured build and show its output in a terminal panel.

Press b to build again, n and N to step through errors and ? for all keys.

Examples:
  # Build with the configured command
  buildview run

  # Build a one-off command line, panel on the right
  buildview run --cmd "go build ./..." --placement right

  # Rebuild whenever a Go file is saved
  buildview run --watch`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runBuildCmd  string
	runPlacement string
	runWatch     bool
	runNoBuild   bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runBuildCmd, "cmd", "", "Command line to build with (overrides build.cmd)")
	runCmd.Flags().StringVarP(&runPlacement, "placement", "p", "", "Panel placement (bottom/top/left/right)")
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "Rebuild when a watched file is saved")
	runCmd.Flags().BoolVar(&runNoBuild, "no-build", false, "Do not build on start")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(runBuildCmd, runPlacement)
	if err != nil {
		return err
	}
	logger, err := fileLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	bus := event.NewBus(logger)
	session, warnings := newSession(cfg, bus, logger)
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", w)
	}
	saveTranscripts(cfg, bus, session, logger)

	opts := tui.AppOptions{
		Options: tui.Options{
			Session:      session,
			Process:      cfg.Build.Process(),
			Logger:       logger,
			Mouse:        cfg.TUI.Mouse,
			BuildOnStart: !runNoBuild,
		},
		AltScreen:    cfg.TUI.AltScreen,
		ReloadConfig: true,
	}

	// Size the build's pseudo-terminal to the output area so tools that
	// wrap to the terminal width line up with the panel
	if termWidth, termHeight, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		opts.Width, opts.Height = termWidth, termHeight
		if cfg.Build.PTY {
			contentWidth, contentHeight := tui.CalculateContentDimensions(termWidth, termHeight)
			if contentWidth > 0 && contentHeight > 0 {
				opts.Process.Width, opts.Process.Height = contentWidth, contentHeight
			}
		}
	}

	if runWatch || cfg.Watch.BuildOnSave {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		opts.Watch = &watch.Options{
			Root:     cwd,
			Include:  cfg.Watch.Include,
			Ignore:   cfg.Watch.Ignore,
			Debounce: cfg.Watch.Debounce(),
			Logger:   logger,
		}
	}

	if err := tui.New(opts).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
