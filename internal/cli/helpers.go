package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hypotest/hypotest/internal/render"
	"github.com/hypotest/hypotest/internal/stats"
	"github.com/hypotest/hypotest/internal/store"
)

// withStore opens the database, executes the function, and handles cleanup.
func withStore(fn func(*store.SQLiteStore) error) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer s.Close()

	return fn(s)
}

// getTokenFilePath returns the path to the token file
func getTokenFilePath() string {
	// Store token file alongside the database
	return filepath.Join(filepath.Dir(dbPath), ".hypotest-token")
}

// findRun looks a run up by full ID or by an unambiguous ID prefix, as
// printed by the runs command.
func findRun(ctx context.Context, s store.Store, id string) (*store.Run, error) {
	run, err := s.GetRun(ctx, id)
	if err == nil || !errors.Is(err, store.ErrNotFound) {
		return run, err
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	var match *store.Run
	for _, r := range runs {
		if !strings.HasPrefix(r.ID, id) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("run ID prefix '%s' is ambiguous", id)
		}
		match = r
	}
	if match == nil {
		return nil, fmt.Errorf("run '%s' not found", id)
	}
	return match, nil
}

// printResult writes the human-readable summary of a run.
func printResult(w io.Writer, run *store.Run) {
	result := run.Result()

	header := fmt.Sprintf("%s (%s-tailed)", kindTitle(run.Kind), run.Tail)
	if run.Name != "" {
		header = run.Name + ": " + header
	}
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("─", 40))

	if run.Sample2 != nil {
		fmt.Fprintf(w, "Samples:    n₁=%d, n₂=%d\n", len(run.Sample1), len(run.Sample2))
	} else {
		fmt.Fprintf(w, "Sample:     n=%d\n", len(run.Sample1))
		if run.PopulationMean != nil {
			fmt.Fprintf(w, "Mean (H0):  %g\n", *run.PopulationMean)
		}
	}
	if run.Sigma1 != nil {
		fmt.Fprintf(w, "σ₁:         %g\n", *run.Sigma1)
	}
	if run.Sigma2 != nil {
		fmt.Fprintf(w, "σ₂:         %g\n", *run.Sigma2)
	}

	fmt.Fprintf(w, "%-12s%.4f\n", statLabel(run.Kind)+":", run.Statistic)
	fmt.Fprintf(w, "p-value:    %s\n", formatPValue(run.PValue))
	if run.Kind == stats.KindT {
		fmt.Fprintf(w, "dof:        %.4g\n", run.DegreesOfFreedom)
	}
	fmt.Fprintf(w, "SE:         %.6g\n", run.StandardError)
	fmt.Fprintf(w, "α:          %g\n", run.Alpha)
	fmt.Fprintln(w)

	if result.Significant() {
		fmt.Fprintf(w, "✓ Significant at α = %g: reject H0\n", run.Alpha)
	} else {
		fmt.Fprintf(w, "Not significant at α = %g: fail to reject H0\n", run.Alpha)
	}
}

// printPlot renders the run's distribution as a text plot.
func printPlot(w io.Writer, run *store.Run) error {
	fig, err := render.Build(run.Result(), render.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to build plot: %w", err)
	}
	fmt.Fprintln(w)
	return render.WriteText(w, fig, 72, 16)
}

func kindTitle(k stats.Kind) string {
	if k == stats.KindT {
		return "T-Test"
	}
	return "Z-Test"
}

func statLabel(k stats.Kind) string {
	if k == stats.KindT {
		return "t"
	}
	return "z"
}

func formatPValue(p float64) string {
	if p < 0.0001 {
		return fmt.Sprintf("%.3e", p)
	}
	return fmt.Sprintf("%.4f", p)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
