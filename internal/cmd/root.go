package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/buildview/internal/config"
)

// Version is set at build time.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "buildview",
	Short: "Run a build and browse its colored output",
	Long: `Buildview runs a build command and shows its output in a panel,
with ANSI colors preserved and compiler errors turned into links.

The panel can live in the terminal (buildview run) or in a browser
(buildview serve). Settings come from $HOME/.config/buildview/config.yaml,
a .buildview.yaml in the current directory, and BUILDVIEW_* variables.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/buildview/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/buildview")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("BUILDVIEW")
	// e.g., BUILDVIEW_PANEL_ORIENTATION for panel.orientation
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()

	// A project file in the working directory overrides the user config
	if viper.GetString("config") == "" {
		if _, err := os.Stat(config.ProjectFile); err == nil {
			viper.SetConfigFile(config.ProjectFile)
			_ = viper.MergeInConfig()
		}
	}
}
