package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	engineConfigPath string
	verbose          bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "radar",
	Short: "Radar - dividend stock recommendation engine",
	Long: `Radar backend CLI

Scores dividend stocks against investor archetypes, evaluates
user strategies and generates alerts.

Usage:
  go run ./cmd/radar [command]

Examples:
  go run ./cmd/radar api
  go run ./cmd/radar score --archetype value_hunter
  go run ./cmd/radar alerts --user 42
  go run ./cmd/radar scheduler`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&engineConfigPath, "engine-config", "", "engine config file (default from ENGINE_CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
