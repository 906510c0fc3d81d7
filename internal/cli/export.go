package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hypotest/hypotest/internal/store"
)

var (
	exportFormat string
	exportLimit  int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs",
	Long: `Export recorded runs in CSV or JSON format. JSON includes the samples.

Examples:
  hypotest export --format csv > runs.csv
  hypotest export --format json > runs.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format (csv or json)")
	exportCmd.Flags().IntVarP(&exportLimit, "limit", "l", 0, "maximum number of runs (0 for all)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "csv" && exportFormat != "json" {
		return fmt.Errorf("invalid format: must be 'csv' or 'json'")
	}

	return withStore(func(s *store.SQLiteStore) error {
		runs, err := s.ListRuns(cmd.Context(), exportLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		if exportFormat == "csv" {
			return exportCSV(cmd.OutOrStdout(), runs)
		}
		return exportJSON(cmd.OutOrStdout(), runs)
	})
}

func exportCSV(out io.Writer, runs []*store.Run) error {
	w := csv.NewWriter(out)

	// Write header
	header := []string{"id", "name", "kind", "tail", "alpha", "n1", "n2", "statistic", "p_value", "dof", "standard_error", "created_at"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Write rows
	for _, r := range runs {
		row := []string{
			r.ID,
			r.Name,
			string(r.Kind),
			string(r.Tail),
			formatFloat(r.Alpha),
			strconv.Itoa(len(r.Sample1)),
			strconv.Itoa(len(r.Sample2)),
			formatFloat(r.Statistic),
			formatFloat(r.PValue),
			formatFloat(r.DegreesOfFreedom),
			formatFloat(r.StandardError),
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

type jsonExport struct {
	Runs []jsonRun `json:"runs"`
}

type jsonRun struct {
	ID               string    `json:"id"`
	Name             string    `json:"name,omitempty"`
	Kind             string    `json:"kind"`
	Tail             string    `json:"tail"`
	Alpha            float64   `json:"alpha"`
	PopulationMean   *float64  `json:"population_mean,omitempty"`
	Sigma1           *float64  `json:"sigma1,omitempty"`
	Sigma2           *float64  `json:"sigma2,omitempty"`
	Sample1          []float64 `json:"sample1"`
	Sample2          []float64 `json:"sample2,omitempty"`
	Statistic        float64   `json:"statistic"`
	PValue           float64   `json:"p_value"`
	DegreesOfFreedom float64   `json:"dof,omitempty"`
	StandardError    float64   `json:"standard_error"`
	CreatedAt        int64     `json:"created_at"`
}

func exportJSON(out io.Writer, runs []*store.Run) error {
	export := jsonExport{
		Runs: make([]jsonRun, len(runs)),
	}

	for i, r := range runs {
		export.Runs[i] = jsonRun{
			ID:               r.ID,
			Name:             r.Name,
			Kind:             string(r.Kind),
			Tail:             string(r.Tail),
			Alpha:            r.Alpha,
			PopulationMean:   r.PopulationMean,
			Sigma1:           r.Sigma1,
			Sigma2:           r.Sigma2,
			Sample1:          r.Sample1,
			Sample2:          r.Sample2,
			Statistic:        r.Statistic,
			PValue:           r.PValue,
			DegreesOfFreedom: r.DegreesOfFreedom,
			StandardError:    r.StandardError,
			CreatedAt:        r.CreatedAt.Unix(),
		}
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
