package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hypotest/hypotest/internal/store"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Show dashboard URL with access token",
	Long: `Show the dashboard URL with your access token.

Use this when you've scrolled past the startup message or need to
share the dashboard link.

Example:
  hypotest token`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(getTokenFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no server running. Start with: hypotest serve")
		}
		return fmt.Errorf("failed to read token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return fmt.Errorf("token file is empty. Restart the server with: hypotest serve")
	}

	// Try to get the server URL from settings
	url := "http://localhost:8080"
	s, err := store.Open(dbPath)
	if err == nil {
		defer s.Close()
		if u, err := s.GetSetting(context.Background(), "server_url"); err == nil && u != "" {
			url = u
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Dashboard: %s/dashboard?token=%s\n", url, token)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Tip: Bookmark this URL or run 'hypotest token' anytime.")
	return nil
}
