package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/buildview/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify buildview configuration",
	Long: `View or modify buildview configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  buildview config set build.cmd make
  buildview config set panel.orientation Right
  buildview config set watch.build_on_save true

Valid keys:
  build.cmd               - Program or command line to build with
  build.shell             - Shell that runs build.cmd ("" runs it directly)
  build.cwd               - Working directory of the build
  build.pty               - Run the build on a pseudo-terminal (true/false)
  panel.orientation       - Panel slot: Bottom, Top, Left, Right
  panel.visibility        - Toggle, KeepVisible, ShowOnError, Hidden
  panel.steal_focus       - Focus the panel when a build finishes (true/false)
  panel.max_lines         - Output lines kept per build (0 = all)
  watch.build_on_save     - Rebuild when a watched file is saved (true/false)
  watch.debounce_ms       - Quiet period before a rebuild
  server.addr             - Listen address of buildview serve
  transcript.file         - Where to save the raw output of each build
  logging.level           - debug, info, warn, error`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/buildview/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration",
	Long: `Check the configuration for invalid values and report error-match
patterns that do not compile. Invalid patterns are only warnings: builds
skip them and use the rest.`,
	RunE: runConfigValidate,
}

var configInitForce bool

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "Overwrite an existing config file")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg := config.Get()

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "# Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

// settableKeys maps the keys of config set to their value kind.
var settableKeys = map[string]string{
	"build.cmd":           "string",
	"build.shell":         "string",
	"build.cwd":           "string",
	"build.pty":           "bool",
	"panel.orientation":   "string",
	"panel.visibility":    "string",
	"panel.steal_focus":   "bool",
	"panel.max_lines":     "int",
	"watch.build_on_save": "bool",
	"watch.debounce_ms":   "int",
	"server.addr":         "string",
	"transcript.file":     "string",
	"logging.level":       "string",
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	keyType, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'buildview config set --help' to see valid keys", key)
	}

	// Validate the value based on type
	var typedValue any
	switch keyType {
	case "string":
		typedValue = value
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		typedValue = b
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		typedValue = n
	}

	// Check the resulting configuration before writing it
	previous := viper.Get(key)
	viper.Set(key, typedValue)
	if _, err := config.Load(); err != nil {
		viper.Set(key, previous)
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	// Ensure config directory exists
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil && !configInitForce {
		return fmt.Errorf("config file already exists at %s\nUse 'buildview config set' to modify values", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := defaultConfigFile()
	if err != nil {
		return err
	}
	if err := os.WriteFile(configFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at %s\n", configFile)
	fmt.Fprintln(out, "Edit this file to customize buildview's behavior.")
	return nil
}

// defaultConfigFile renders the defaults as a commented YAML document.
func defaultConfigFile() ([]byte, error) {
	var doc yaml.Node
	if err := doc.Encode(config.Default()); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	comments := map[string]string{
		"build":      "The build command and how it runs",
		"panel":      "Where the output panel lives and when it shows\nOrientation: Bottom, Top, Left, Right\nVisibility: Toggle, KeepVisible, ShowOnError, Hidden",
		"watch":      "Rebuild on save (buildview run --watch)",
		"server":     "Web view (buildview serve)",
		"transcript": "Raw output kept per build; set file to save it after each build",
		"tui":        "Terminal view (buildview run)",
		"logging":    "Debug log, readable with buildview logs",
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i]
		key.HeadComment = comments[key.Value]
	}

	var b strings.Builder
	b.WriteString("# buildview configuration\n\n")
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configFile := config.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", configFile)
	}

	// Also show config search paths
	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Fprintf(out, "  2. $HOME/.config/buildview/config.yaml\n")
	fmt.Fprintf(out, "  3. ./%s (merged over the above)\n", config.ProjectFile)
	fmt.Fprintln(out, "\nEnvironment variables: BUILDVIEW_* (e.g., BUILDVIEW_PANEL_ORIENTATION)")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	for _, w := range cfg.PatternWarnings() {
		fmt.Fprintf(out, "warning: %v\n", w)
	}
	fmt.Fprintln(out, "Configuration is valid.")
	return nil
}
