package cli

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hypotest/hypotest/internal/logging"
)

var (
	dbPath   string
	logLevel string
	logger   = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "hypotest",
	Short: "hypotest - Z-tests and T-tests from the command line",
	Long: `hypotest runs one- and two-sample Z-tests and T-tests, keeps a history
of every run in an embedded SQLite database, and renders the test
distribution with its rejection regions.

Samples are given inline ("1.2,3.4,5.6") or loaded from a CSV column
("@data.csv:column").`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(logLevel)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", getEnvOrDefault("HYPOTEST_DB_PATH", "./hypotest.db"), "database path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", getEnvOrDefault("HYPOTEST_LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
