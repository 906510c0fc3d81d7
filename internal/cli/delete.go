package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hypotest/hypotest/internal/store"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	return withStore(func(s *store.SQLiteStore) error {
		run, err := findRun(cmd.Context(), s, args[0])
		if err != nil {
			return err
		}
		if err := s.DeleteRun(cmd.Context(), run.ID); err != nil {
			return fmt.Errorf("failed to delete run: %w", err)
		}

		logger.Info("run deleted", zap.String("id", run.ID))
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", shortID(run.ID))
		return nil
	})
}
