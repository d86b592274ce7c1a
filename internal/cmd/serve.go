package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/buildview/internal/event"
	"github.com/Iron-Ham/buildview/internal/logging"
	"github.com/Iron-Ham/buildview/internal/server"
	"github.com/Iron-Ham/buildview/internal/view"
	"github.com/Iron-Ham/buildview/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build in a browser panel",
	Long: `Serve the build view over HTTP. The page shows the panel with its
colored output and error links, and updates live as the build runs.

Examples:
  # Serve on the configured address and open a browser
  buildview serve --open

  # Build on every save, listening on all interfaces
  buildview serve --watch --addr 0.0.0.0:7878`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveAddr      string
	serveBuildCmd  string
	servePlacement string
	serveOpen      bool
	serveWatch     bool
	serveBuild     bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&serveBuildCmd, "cmd", "", "Command line to build with (overrides build.cmd)")
	serveCmd.Flags().StringVarP(&servePlacement, "placement", "p", "", "Panel placement (bottom/top/left/right)")
	serveCmd.Flags().BoolVarP(&serveOpen, "open", "o", false, "Open the page in a browser")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "Rebuild when a watched file is saved")
	serveCmd.Flags().BoolVarP(&serveBuild, "build", "b", false, "Build once on start")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(serveBuildCmd, servePlacement)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	logger := logging.NewConsoleLogger(cmd.ErrOrStderr(), cfg.Logging.Level)
	bus := event.NewBus(logger)
	session, warnings := newSession(cfg, bus, logger)
	for _, w := range warnings {
		logger.Warn("error-match pattern skipped", "error", w)
	}
	saveTranscripts(cfg, bus, session, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := view.NewRunner(session, cfg.Build.Process(), nil, logger)
	srv := server.New(server.Options{
		Addr:   cfg.Server.Addr,
		Runner: runner,
		Bus:    bus,
		Logger: logger,
		Title:  cfg.Build.Process().CommandLine(),
	})

	var wg conc.WaitGroup
	wg.Go(func() {
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("runner stopped", "error", err)
		}
	})

	if serveWatch || cfg.Watch.BuildOnSave {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		w, err := watch.New(watch.Options{
			Root:     cwd,
			Include:  cfg.Watch.Include,
			Ignore:   cfg.Watch.Ignore,
			Debounce: cfg.Watch.Debounce(),
			Logger:   logger,
			OnChange: func(paths []string) {
				if _, err := runner.Trigger(); err != nil {
					logger.LogError("build on save failed", err)
				}
			},
		})
		if err != nil {
			stop()
			wg.Wait()
			return err
		}
		w.Start()
		defer w.Stop()
	}

	if serveBuild {
		wg.Go(func() {
			if _, err := runner.Trigger(); err != nil {
				logger.LogError("initial build failed", err)
			}
		})
	}
	if serveOpen || cfg.Server.Open {
		if err := server.OpenBrowser(srv.URL()); err != nil {
			logger.Warn("cannot open browser", "url", srv.URL(), "error", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving build view at %s\n", srv.URL())
	err = srv.Start(ctx)
	stop()
	wg.Wait()
	return err
}
