package cmd

import (
	"fmt"
	"os"

	"github.com/Iron-Ham/buildview/internal/config"
	"github.com/Iron-Ham/buildview/internal/event"
	"github.com/Iron-Ham/buildview/internal/logging"
	"github.com/Iron-Ham/buildview/internal/view"
)

// loadConfig loads the configuration and applies the shared flags.
func loadConfig(build, placement string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if build != "" {
		cfg.Build.Cmd = build
		cfg.Build.Args = nil
		cfg.Build.Shell = shellOrDefault(cfg.Build.Shell)
	}
	if placement != "" {
		cfg.Panel.Orientation = placement
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, config.ValidationErrors(errs)
	}
	return cfg, nil
}

// shellOrDefault returns the shell used for a --cmd command line.
func shellOrDefault(shell string) string {
	if shell != "" {
		return shell
	}
	if s := os.Getenv("SHELL"); s != "" {
		return s
	}
	return "/bin/sh"
}

// fileLogger returns the debug log of cfg, or a discarding logger when
// logging is disabled.
func fileLogger(cfg *config.Config) (*logging.Logger, error) {
	dir := cfg.Logging.LogDir()
	if dir == "" {
		return logging.NopLogger(), nil
	}
	logger, err := logging.NewLoggerWithRotation(dir, cfg.Logging.Level, cfg.Logging.Rotation())
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	return logger, nil
}

// newSession builds the view session described by cfg. Invalid error-match
// patterns are skipped and returned as warnings.
func newSession(cfg *config.Config, bus *event.Bus, logger *logging.Logger) (*view.Session, []error) {
	return view.NewSession(view.Options{
		Patterns:       cfg.Build.ErrorMatch,
		Placement:      cfg.Panel.Placement(),
		Visibility:     cfg.Panel.VisibilityPolicy(),
		StealFocus:     cfg.Panel.StealFocus,
		MaxLines:       cfg.Panel.MaxLines,
		TranscriptSize: cfg.Transcript.Size,
		Bus:            bus,
		Logger:         logger,
	})
}

// saveTranscripts hooks the transcript file of cfg, if any, to bus.
func saveTranscripts(cfg *config.Config, bus *event.Bus, s *view.Session, logger *logging.Logger) {
	if cfg.Transcript.File != "" {
		view.SaveTranscripts(bus, s, cfg.Transcript.File, logger)
	}
}
