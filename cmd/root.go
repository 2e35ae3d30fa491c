package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/axellelanca/edgelink/internal/app"
	"github.com/axellelanca/edgelink/internal/config"
	"github.com/axellelanca/edgelink/internal/logging"
)

// Cfg is the global variable that will contain the loaded configuration
// It will be accessible to all Cobra commands throughout the application
var Cfg *config.Config

// Logger is built from the log section of Cfg.
var Logger *logrus.Logger

var cfgFile string

// RootCmd is the base command for the CLI application
// All other commands (run-server, create, stats, list, migrate, domain, apikey)
// are added as subcommands
var RootCmd = &cobra.Command{
	Use:   "edgelink",
	Short: "A URL shortener on a key-value store",
	Long: `edgelink resolves short codes to target URLs, counts clicks, serves
rich previews to social crawlers and redirects custom domains.`,
	SilenceUsage: true,
}

// Execute is the main entry point for the Cobra application
// It is called from cmd/edgelink/main.go and handles command execution and error handling
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// init() is a special Go function that executes automatically before main()
// Commands like 'run-server', 'create' or 'stats' register themselves via
// their own init() functions, which prevents import cycles.
func init() {
	cobra.OnInitialize(initConfig)
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./configs/config.yaml)")
}

// initConfig loads the application configuration and builds the logger
// before any command runs.
func initConfig() {
	var err error
	Cfg, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	Logger, err = logging.New(os.Stderr, Cfg.Log.Level, Cfg.Log.Format)
	if err != nil {
		Logger = logrus.New()
		Logger.WithError(err).Warn("invalid log settings, using defaults")
	}
}

// OpenApp wires the application against the configured store. Callers must
// Close it.
func OpenApp(ctx context.Context) (*app.App, error) {
	return app.New(ctx, Cfg, Logger)
}
