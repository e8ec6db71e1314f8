package cmd

import (
	"os"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile      string
	logLevel     string
	logFormat    string
	outputFormat string
	workers      int
	noColor      bool
)

var rootCmd = &cobra.Command{
	Use:   "gonest",
	Short: "Nest flat JOIN result sets into root rows",
	Long: `gonest turns the flat rows produced by LEFT JOIN queries into root rows
that carry one deduplicated list per relationship.

Relationships are recognized by column prefix:
  user_id, user_name, role_id, role_name, book_id, book_name
becomes
  {user_id, user_name, roles: [{id, name}], books: [{id, name}]}

Rows can be read from a JSON/YAML file (transform) or fetched by running a
job's query against MySQL, PostgreSQL or SQLite (query).`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.Disable()
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "gonest.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Output overrides
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "",
		"Override output format (json, yaml, msgpack)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable coloured terminal output")

	// Processing overrides
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0,
		"Override number of jobs run concurrently by query --all")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel     string
	LogFormat    string
	OutputFormat string
	Workers      int
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:     logLevel,
		LogFormat:    logFormat,
		OutputFormat: outputFormat,
		Workers:      workers,
	}
}
