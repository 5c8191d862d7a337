// Package commands provides the CLI commands for scrapekit.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scrapekit-ai/scrapekit/internal/logging"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	logLevel  string
	logFormat string
	logDir    string
)

var rootCmd = &cobra.Command{
	Use:   "scrapekit",
	Short: "scrapekit - scheduled web scraping with a small script language",
	Long: `scrapekit runs scrape scripts: short programs that fetch pages, work
the results down to the data you care about, and hand them to effects
such as desktop notifications or shell commands.

Run 'scrapekit run <script>' to execute a script once, or
'scrapekit daemon <config>' to schedule suites of jobs.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging()
	},
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand, show help
		cmd.Help()
	},
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text|json)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Also write JSON logs to a timestamped file in this directory")

	// Version template
	rootCmd.SetVersionTemplate(fmt.Sprintf("scrapekit %s (%s)\n", Version, BuildTime))

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(scriptsCmd)
	rootCmd.AddCommand(bookCmd)
}

func initLogging() {
	logging.Init(logging.Config{
		Level:     logging.ParseLevel(logLevel),
		Pretty:    logFormat != "json",
		LogToFile: logDir != "",
		LogDir:    logDir,
	})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
