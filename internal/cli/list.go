package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hypotest/hypotest/internal/store"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:     "runs",
	Aliases: []string{"list"},
	Short:   "List recorded runs",
	Long:    `List recorded test runs, newest first.`,
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 20, "maximum number of runs to show (0 for all)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	return withStore(func(s *store.SQLiteStore) error {
		runs, err := s.ListRuns(cmd.Context(), listLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs yet.")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Run a test to record one:")
			fmt.Fprintln(out, "  hypotest ttest 10,12,9,11,13 --mu 10")
			return nil
		}

		// Print table
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTEST\tTAIL\tN\tSTATISTIC\tP-VALUE\tSIG\tCREATED")

		for _, run := range runs {
			n := fmt.Sprintf("%d", len(run.Sample1))
			if run.Sample2 != nil {
				n = fmt.Sprintf("%d/%d", len(run.Sample1), len(run.Sample2))
			}
			sig := ""
			if run.Result().Significant() {
				sig = "*"
			}
			name := run.Name
			if name == "" {
				name = "-"
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.4f\t%s\t%s\t%s\n",
				shortID(run.ID),
				name,
				string(run.Kind),
				string(run.Tail),
				n,
				run.Statistic,
				formatPValue(run.PValue),
				sig,
				run.CreatedAt.Local().Format("2006-01-02 15:04"),
			)
		}

		return w.Flush()
	})
}
