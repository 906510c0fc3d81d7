package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hypotest/hypotest/internal/server"
	"github.com/hypotest/hypotest/internal/store"
)

var (
	port      int
	serverURL string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the hypotest HTTP server.

The server provides:
  - JSON API for running Z-tests and T-tests
  - Run history and SVG plots
  - Dashboard for browsing runs
  - Prometheus metrics and a health check

Example:
  hypotest serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	defaultPort := 8080
	if p := os.Getenv("HYPOTEST_PORT"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			defaultPort = parsed
		}
	}

	serveCmd.Flags().IntVarP(&port, "port", "p", defaultPort, "port to listen on")
	serveCmd.Flags().StringVar(&serverURL, "url", os.Getenv("HYPOTEST_SERVER_URL"), "public URL of the server, shown by 'hypotest token'")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	return withStore(func(s *store.SQLiteStore) error {
		url := serverURL
		if url == "" {
			url = fmt.Sprintf("http://localhost:%d", port)
		}
		if err := s.SetSetting(cmd.Context(), "server_url", url); err != nil {
			logger.Warn("failed to save server url", zap.Error(err))
		}

		srv := server.New(s, port, getTokenFilePath(), logger)
		return srv.Start()
	})
}
