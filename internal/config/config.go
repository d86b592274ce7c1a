package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/buildview/internal/build/process"
	"github.com/Iron-Ham/buildview/internal/capture"
	"github.com/Iron-Ham/buildview/internal/errors"
	"github.com/Iron-Ham/buildview/internal/logging"
	"github.com/Iron-Ham/buildview/internal/panel"
)

// Config represents the complete buildview configuration
type Config struct {
	Build      BuildConfig      `mapstructure:"build" yaml:"build"`
	Panel      PanelConfig      `mapstructure:"panel" yaml:"panel"`
	Watch      WatchConfig      `mapstructure:"watch" yaml:"watch"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Transcript TranscriptConfig `mapstructure:"transcript" yaml:"transcript"`
	TUI        TUIConfig        `mapstructure:"tui" yaml:"tui"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// BuildConfig describes the build command
type BuildConfig struct {
	// Cmd is the program to run, or a command line when Shell is set
	Cmd string `mapstructure:"cmd" yaml:"cmd"`
	// Args are passed to Cmd
	Args []string `mapstructure:"args" yaml:"args"`
	// Cwd is the working directory (default: current directory)
	Cwd string `mapstructure:"cwd" yaml:"cwd"`
	// Shell runs the command through "<shell> -c" when set, e.g. "sh"
	Shell string `mapstructure:"shell" yaml:"shell"`
	// PTY runs the command on a pseudo-terminal so tools keep their colors
	PTY bool `mapstructure:"pty" yaml:"pty"`
	// Width and Height size the pseudo-terminal
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
	// Env holds extra environment variables for the build
	Env map[string]string `mapstructure:"env" yaml:"env"`
	// ErrorMatch are the error-match patterns, highest priority first.
	// Named groups file, line, col and message are passed to link handlers.
	ErrorMatch []string `mapstructure:"error_match" yaml:"error_match"`
}

// PanelConfig controls the output panel
type PanelConfig struct {
	// Orientation is the panel slot: Bottom, Top, Left or Right
	Orientation string `mapstructure:"orientation" yaml:"orientation"`
	// Visibility is one of: Toggle, Keep Visible, Show on Error, Hidden
	Visibility string `mapstructure:"visibility" yaml:"visibility"`
	// StealFocus focuses the panel when a build succeeds or fails
	StealFocus bool `mapstructure:"steal_focus" yaml:"steal_focus"`
	// MaxLines limits the kept output lines (0 = unlimited)
	MaxLines int `mapstructure:"max_lines" yaml:"max_lines"`
}

// WatchConfig controls build on save
type WatchConfig struct {
	// BuildOnSave triggers a build when a matching file is written
	BuildOnSave bool `mapstructure:"build_on_save" yaml:"build_on_save"`
	// Include are glob patterns of files that trigger a build (empty = all)
	Include []string `mapstructure:"include" yaml:"include"`
	// Ignore are glob patterns of files and directories to skip
	Ignore []string `mapstructure:"ignore" yaml:"ignore"`
	// DebounceMs is the quiet period after the last write (in milliseconds)
	DebounceMs int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

// ServerConfig controls the web host
type ServerConfig struct {
	// Addr is the listen address of "buildview serve"
	Addr string `mapstructure:"addr" yaml:"addr"`
	// Open launches the page in the default browser
	Open bool `mapstructure:"open" yaml:"open"`
}

// TranscriptConfig controls the raw output transcript
type TranscriptConfig struct {
	// Size is the transcript capacity in bytes
	Size int `mapstructure:"size" yaml:"size"`
	// File, when set, receives the transcript after every finished build
	File string `mapstructure:"file" yaml:"file"`
}

// TUIConfig controls the terminal UI behavior
type TUIConfig struct {
	// Mouse enables clicking links
	Mouse bool `mapstructure:"mouse" yaml:"mouse"`
	// AltScreen runs the UI in the alternate screen buffer
	AltScreen bool `mapstructure:"alt_screen" yaml:"alt_screen"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled writes a debug log when true
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the minimum log level: "debug", "info", "warn", "error"
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the log directory (default: <config dir>/logs)
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB is the maximum log file size before rotation
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of rotated files to keep
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated files
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Build: BuildConfig{
			Width:      120,
			Height:     40,
			Env:        map[string]string{},
			ErrorMatch: []string{},
			Args:       []string{},
		},
		Panel: PanelConfig{
			Orientation: panel.Bottom.String(),
			Visibility:  panel.Toggle.String(),
			StealFocus:  true,
			MaxLines:    10000,
		},
		Watch: WatchConfig{
			BuildOnSave: false,
			Include:     []string{},
			Ignore:      []string{},
			DebounceMs:  200,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:7878",
		},
		Transcript: TranscriptConfig{
			Size: capture.DefaultTranscriptSize,
		},
		TUI: TUIConfig{
			Mouse:     true,
			AltScreen: true,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Process returns the process configuration of the build command
func (b BuildConfig) Process() process.Config {
	cfg := process.DefaultConfig()
	cfg.Command = b.Cmd
	cfg.Args = b.Args
	cfg.Dir = b.Cwd
	cfg.Shell = b.Shell
	cfg.PTY = b.PTY
	if b.Width > 0 {
		cfg.Width = b.Width
	}
	if b.Height > 0 {
		cfg.Height = b.Height
	}
	keys := make([]string, 0, len(b.Env))
	for k := range b.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cfg.Env = append(cfg.Env, fmt.Sprintf("%s=%s", k, b.Env[k]))
	}
	return cfg
}

// Placement returns the parsed orientation, Bottom when invalid
func (p PanelConfig) Placement() panel.Placement {
	placement, _ := panel.ParsePlacement(p.Orientation)
	return placement
}

// VisibilityPolicy returns the parsed visibility, Toggle when invalid
func (p PanelConfig) VisibilityPolicy() panel.Visibility {
	v, _ := panel.ParseVisibility(p.Visibility)
	return v
}

// Debounce returns the debounce period as a time.Duration
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// Rotation returns the log rotation settings
func (l LoggingConfig) Rotation() logging.RotationConfig {
	return logging.RotationConfig{
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		Compress:   l.Compress,
	}
}

// LogDir returns the log directory, or "" when logging is disabled
func (l LoggingConfig) LogDir() string {
	if !l.Enabled {
		return ""
	}
	if l.Dir != "" {
		return l.Dir
	}
	return filepath.Join(ConfigDir(), "logs")
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Build defaults
	viper.SetDefault("build.cmd", defaults.Build.Cmd)
	viper.SetDefault("build.args", defaults.Build.Args)
	viper.SetDefault("build.cwd", defaults.Build.Cwd)
	viper.SetDefault("build.shell", defaults.Build.Shell)
	viper.SetDefault("build.pty", defaults.Build.PTY)
	viper.SetDefault("build.width", defaults.Build.Width)
	viper.SetDefault("build.height", defaults.Build.Height)
	viper.SetDefault("build.env", defaults.Build.Env)
	viper.SetDefault("build.error_match", defaults.Build.ErrorMatch)

	// Panel defaults
	viper.SetDefault("panel.orientation", defaults.Panel.Orientation)
	viper.SetDefault("panel.visibility", defaults.Panel.Visibility)
	viper.SetDefault("panel.steal_focus", defaults.Panel.StealFocus)
	viper.SetDefault("panel.max_lines", defaults.Panel.MaxLines)

	// Watch defaults
	viper.SetDefault("watch.build_on_save", defaults.Watch.BuildOnSave)
	viper.SetDefault("watch.include", defaults.Watch.Include)
	viper.SetDefault("watch.ignore", defaults.Watch.Ignore)
	viper.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)

	// Server defaults
	viper.SetDefault("server.addr", defaults.Server.Addr)
	viper.SetDefault("server.open", defaults.Server.Open)

	// Transcript defaults
	viper.SetDefault("transcript.size", defaults.Transcript.Size)
	viper.SetDefault("transcript.file", defaults.Transcript.File)

	// TUI defaults
	viper.SetDefault("tui.mouse", defaults.TUI.Mouse)
	viper.SetDefault("tui.alt_screen", defaults.TUI.AltScreen)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)
}

// Load reads the configuration from viper
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.NewConfigError("failed to decode configuration", err).WithFile(viper.ConfigFileUsed())
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// Watch calls fn with the reloaded configuration whenever the config
// file changes. A config that fails to load is passed as an error and the
// previous one stays in effect.
func Watch(fn func(*Config, error)) {
	viper.OnConfigChange(func(fsnotify.Event) {
		fn(Load())
	})
	viper.WatchConfig()
}

// ConfigDir returns the configuration directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "buildview")
	}
	// Fall back to ~/.config/buildview
	home, err := os.UserHomeDir()
	if err != nil {
		return ".buildview"
	}
	return filepath.Join(home, ".config", "buildview")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ProjectFile is the per-project config file looked up in the working
// directory before the user config.
const ProjectFile = ".buildview.yaml"
