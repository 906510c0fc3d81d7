package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hypotest/hypotest/internal/render"
	"github.com/hypotest/hypotest/internal/store"
)

var (
	plotSVG    string
	plotWidth  int
	plotHeight int
)

var plotCmd = &cobra.Command{
	Use:   "plot <id>",
	Short: "Plot the distribution of a recorded run",
	Long: `Plot the null distribution of a recorded run with its rejection
regions and the observed statistic. Prints a text plot unless --svg is given.

Examples:
  hypotest plot 1f3a9c2e
  hypotest plot 1f3a9c2e --svg run.svg`,
	Args: cobra.ExactArgs(1),
	RunE: runPlot,
}

func init() {
	plotCmd.Flags().StringVar(&plotSVG, "svg", "", "write an SVG image to this path")
	plotCmd.Flags().IntVar(&plotWidth, "width", 0, "plot width (default 800 for SVG, 72 for text)")
	plotCmd.Flags().IntVar(&plotHeight, "height", 0, "plot height (default 450 for SVG, 16 for text)")
	rootCmd.AddCommand(plotCmd)
}

func runPlot(cmd *cobra.Command, args []string) error {
	return withStore(func(s *store.SQLiteStore) error {
		run, err := findRun(cmd.Context(), s, args[0])
		if err != nil {
			return err
		}

		fig, err := render.Build(run.Result(), render.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to build plot: %w", err)
		}

		if plotSVG == "" {
			return render.WriteText(cmd.OutOrStdout(), fig, orDefault(plotWidth, 72), orDefault(plotHeight, 16))
		}

		f, err := os.Create(plotSVG)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", plotSVG, err)
		}
		if err := render.WriteSVG(f, fig, orDefault(plotWidth, 800), orDefault(plotHeight, 450)); err != nil {
			f.Close()
			return fmt.Errorf("failed to write svg: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}

		logger.Info("plot written", zap.String("id", run.ID), zap.String("path", plotSVG))
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", plotSVG)
		return nil
	})
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
