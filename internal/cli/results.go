package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hypotest/hypotest/internal/store"
)

var showNoPlot bool

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a recorded run",
	Long: `Show the inputs and result of a recorded run. The ID may be the
short prefix printed by 'hypotest runs'.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showNoPlot, "no-plot", false, "omit the text plot")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	return withStore(func(s *store.SQLiteStore) error {
		run, err := findRun(cmd.Context(), s, args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "RUN: %s\n", run.ID)
		fmt.Fprintf(w, "CREATED: %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintln(w)
		printResult(w, run)

		fmt.Fprintln(w)
		fmt.Fprintf(w, "Sample 1: %s\n", joinSample(run.Sample1))
		if run.Sample2 != nil {
			fmt.Fprintf(w, "Sample 2: %s\n", joinSample(run.Sample2))
		}

		if showNoPlot {
			return nil
		}
		return printPlot(w, run)
	})
}

func joinSample(xs []float64) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprintf("%g", x)
	}
	return strings.Join(parts, ", ")
}
