package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/Iron-Ham/buildview/internal/capture"
	"github.com/Iron-Ham/buildview/internal/panel"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Verify default panel config
	if cfg.Panel.Orientation != "Bottom" {
		t.Errorf("Panel.Orientation = %q, want %q", cfg.Panel.Orientation, "Bottom")
	}
	if cfg.Panel.Visibility != "Toggle" {
		t.Errorf("Panel.Visibility = %q, want %q", cfg.Panel.Visibility, "Toggle")
	}
	if !cfg.Panel.StealFocus {
		t.Error("Panel.StealFocus should be true by default")
	}
	if cfg.Panel.MaxLines != 10000 {
		t.Errorf("Panel.MaxLines = %d, want 10000", cfg.Panel.MaxLines)
	}

	// Verify default build config
	if cfg.Build.Width != 120 || cfg.Build.Height != 40 {
		t.Errorf("Build size = %dx%d, want 120x40", cfg.Build.Width, cfg.Build.Height)
	}
	if cfg.Build.PTY {
		t.Error("Build.PTY should be false by default")
	}

	// Verify default watch config
	if cfg.Watch.BuildOnSave {
		t.Error("Watch.BuildOnSave should be false by default")
	}
	if cfg.Watch.DebounceMs != 200 {
		t.Errorf("Watch.DebounceMs = %d, want 200", cfg.Watch.DebounceMs)
	}

	if cfg.Transcript.Size != capture.DefaultTranscriptSize {
		t.Errorf("Transcript.Size = %d, want %d", cfg.Transcript.Size, capture.DefaultTranscriptSize)
	}
	if cfg.Server.Addr != "127.0.0.1:7878" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestBuildConfig_Process(t *testing.T) {
	b := BuildConfig{
		Cmd:   "make",
		Args:  []string{"-j4", "all"},
		Cwd:   "/src",
		Shell: "",
		Env:   map[string]string{"B": "2", "A": "1"},
	}

	cfg := b.Process()
	if cfg.Command != "make" || cfg.Dir != "/src" {
		t.Errorf("Process() = %+v", cfg)
	}
	if len(cfg.Args) != 2 || cfg.Args[1] != "all" {
		t.Errorf("Args = %v", cfg.Args)
	}
	// Env is sorted for a stable command environment
	if len(cfg.Env) != 2 || cfg.Env[0] != "A=1" || cfg.Env[1] != "B=2" {
		t.Errorf("Env = %v, want [A=1 B=2]", cfg.Env)
	}
	// Zero sizes keep the process defaults
	if cfg.Width != 120 || cfg.Height != 40 {
		t.Errorf("size = %dx%d, want 120x40", cfg.Width, cfg.Height)
	}

	b.Width, b.Height = 80, 24
	if cfg := b.Process(); cfg.Width != 80 || cfg.Height != 24 {
		t.Errorf("size = %dx%d, want 80x24", cfg.Width, cfg.Height)
	}
}

func TestPanelConfig_Parsed(t *testing.T) {
	p := PanelConfig{Orientation: "left", Visibility: "show-on-error"}
	if p.Placement() != panel.Left {
		t.Errorf("Placement() = %v, want Left", p.Placement())
	}
	if p.VisibilityPolicy() != panel.ShowOnError {
		t.Errorf("VisibilityPolicy() = %v, want ShowOnError", p.VisibilityPolicy())
	}

	bad := PanelConfig{Orientation: "diagonal", Visibility: "sometimes"}
	if bad.Placement() != panel.Bottom {
		t.Errorf("invalid orientation should fall back to Bottom, got %v", bad.Placement())
	}
	if bad.VisibilityPolicy() != panel.Toggle {
		t.Errorf("invalid visibility should fall back to Toggle, got %v", bad.VisibilityPolicy())
	}
}

func TestWatchConfig_Debounce(t *testing.T) {
	w := WatchConfig{DebounceMs: 350}
	if w.Debounce() != 350*time.Millisecond {
		t.Errorf("Debounce() = %v, want 350ms", w.Debounce())
	}
}

func TestLoggingConfig(t *testing.T) {
	t.Run("disabled has no dir", func(t *testing.T) {
		l := LoggingConfig{Enabled: false, Dir: "/var/log/bv"}
		if l.LogDir() != "" {
			t.Errorf("LogDir() = %q, want empty", l.LogDir())
		}
	})

	t.Run("explicit dir", func(t *testing.T) {
		l := LoggingConfig{Enabled: true, Dir: "/var/log/bv"}
		if l.LogDir() != "/var/log/bv" {
			t.Errorf("LogDir() = %q", l.LogDir())
		}
	})

	t.Run("default dir under config dir", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		l := LoggingConfig{Enabled: true}
		if l.LogDir() != "/custom/config/buildview/logs" {
			t.Errorf("LogDir() = %q", l.LogDir())
		}
	})

	t.Run("rotation", func(t *testing.T) {
		r := LoggingConfig{MaxSizeMB: 5, MaxBackups: 2, Compress: true}.Rotation()
		if r.MaxSizeMB != 5 || r.MaxBackups != 2 || !r.Compress {
			t.Errorf("Rotation() = %+v", r)
		}
	})
}

func TestConfigDir(t *testing.T) {
	// Test with XDG_CONFIG_HOME set
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		original := os.Getenv("XDG_CONFIG_HOME")
		defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

		_ = os.Setenv("XDG_CONFIG_HOME", "/custom/config")
		result := ConfigDir()
		expected := "/custom/config/buildview"
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})

	// Test without XDG_CONFIG_HOME
	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		original := os.Getenv("XDG_CONFIG_HOME")
		defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

		_ = os.Setenv("XDG_CONFIG_HOME", "")
		result := ConfigDir()

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".config", "buildview")
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})
}

func TestConfigFile(t *testing.T) {
	original := os.Getenv("XDG_CONFIG_HOME")
	defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

	_ = os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	result := ConfigFile()
	expected := "/custom/config/buildview/config.yaml"
	if result != expected {
		t.Errorf("ConfigFile() = %q, want %q", result, expected)
	}
}

func TestGet(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	// Set defaults in viper first (normally done by cmd init)
	SetDefaults()

	// Get() should return defaults when no config file exists
	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}
	if cfg.Panel.Orientation != "Bottom" {
		t.Errorf("Get().Panel.Orientation = %q, want %q", cfg.Panel.Orientation, "Bottom")
	}
}

func TestLoad_FromFile(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `build:
  cmd: go
  args: [build, ./...]
  error_match:
    - '(?<file>[^\s:]+):(?<line>\d+):(?<col>\d+)'
panel:
  orientation: right
  visibility: Show on Error
watch:
  build_on_save: true
  include: ["**/*.go"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() = %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.Build.Cmd != "go" || len(cfg.Build.Args) != 2 {
		t.Errorf("Build = %+v", cfg.Build)
	}
	if len(cfg.Build.ErrorMatch) != 1 {
		t.Errorf("ErrorMatch = %v", cfg.Build.ErrorMatch)
	}
	if cfg.Panel.Placement() != panel.Right || cfg.Panel.VisibilityPolicy() != panel.ShowOnError {
		t.Errorf("Panel = %+v", cfg.Panel)
	}
	if !cfg.Watch.BuildOnSave || len(cfg.Watch.Include) != 1 {
		t.Errorf("Watch = %+v", cfg.Watch)
	}
	// Unset keys keep their defaults
	if cfg.Panel.MaxLines != 10000 {
		t.Errorf("Panel.MaxLines = %d, want default", cfg.Panel.MaxLines)
	}
}

func TestLoad_Invalid(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()

	viper.Set("panel.orientation", "diagonal")
	viper.Set("logging.level", "loud")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail for invalid values")
	}
	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("Load() error = %T, want ValidationErrors", err)
	}
	if len(verrs) != 2 {
		t.Errorf("got %d errors, want 2: %v", len(verrs), verrs)
	}

	// Get falls back to defaults
	if cfg := Get(); cfg.Panel.Orientation != "Bottom" {
		t.Errorf("Get() should fall back to defaults, got %q", cfg.Panel.Orientation)
	}
}
