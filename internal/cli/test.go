package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hypotest/hypotest/internal/dataset"
	"github.com/hypotest/hypotest/internal/runner"
	"github.com/hypotest/hypotest/internal/stats"
	"github.com/hypotest/hypotest/internal/store"
)

// testFlags holds the flags shared by ztest and ttest.
type testFlags struct {
	mu     float64
	sigma1 float64
	sigma2 float64
	tail   string
	alpha  float64
	name   string
	noSave bool
	plot   bool
}

var (
	zFlags testFlags
	tFlags testFlags
)

var ztestCmd = &cobra.Command{
	Use:   "ztest <sample1> [sample2]",
	Short: "Run a one- or two-sample Z-test",
	Long: `Run a Z-test. With one sample, compares its mean to --mu. With two
samples, compares their means. Population standard deviations given with
--sigma1/--sigma2 are used as known; otherwise they are estimated from
the samples.

Examples:
  hypotest ztest 2.1,1.9,2.4,2.2 --mu 2 --sigma1 0.3
  hypotest ztest 1,2,3,4,5 2,3,4,5,6 --sigma1 1 --sigma2 1 --tail left
  hypotest ztest @before.csv:latency @after.csv:latency --plot`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTest(cmd, args, stats.KindZ, &zFlags)
	},
}

var ttestCmd = &cobra.Command{
	Use:   "ttest <sample1> [sample2]",
	Short: "Run a one-sample or Welch two-sample T-test",
	Long: `Run a T-test. With one sample, compares its mean to --mu (default 0).
With two samples, runs Welch's unequal-variance test.

Examples:
  hypotest ttest 10,12,9,11,13 --mu 10
  hypotest ttest @runs.csv:old @runs.csv:new --tail right --alpha 0.01`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTest(cmd, args, stats.KindT, &tFlags)
	},
}

func init() {
	addTestFlags(ztestCmd.Flags(), &zFlags)
	ztestCmd.Flags().Float64Var(&zFlags.sigma1, "sigma1", 0, "known population standard deviation of sample 1")
	ztestCmd.Flags().Float64Var(&zFlags.sigma2, "sigma2", 0, "known population standard deviation of sample 2")
	rootCmd.AddCommand(ztestCmd)

	addTestFlags(ttestCmd.Flags(), &tFlags)
	rootCmd.AddCommand(ttestCmd)
}

func addTestFlags(fs *pflag.FlagSet, f *testFlags) {
	fs.Float64Var(&f.mu, "mu", 0, "hypothesized population mean (one-sample tests)")
	fs.StringVarP(&f.tail, "tail", "t", "two", "alternative hypothesis: two, left or right")
	fs.Float64VarP(&f.alpha, "alpha", "a", stats.DefaultAlpha, "significance level")
	fs.StringVarP(&f.name, "name", "n", "", "label stored with the run")
	fs.BoolVar(&f.noSave, "no-save", false, "do not record the run in the database")
	fs.BoolVar(&f.plot, "plot", false, "print a text plot of the distribution")
}

func runTest(cmd *cobra.Command, args []string, kind stats.Kind, f *testFlags) error {
	req, err := buildRequest(kind, args, f, cmd.Flags().Changed)
	if err != nil {
		return err
	}

	if f.noSave {
		return executeAndPrint(cmd.Context(), cmd.OutOrStdout(), nil, req, f.plot)
	}
	return withStore(func(s *store.SQLiteStore) error {
		return executeAndPrint(cmd.Context(), cmd.OutOrStdout(), s, req, f.plot)
	})
}

// buildRequest turns positional sample arguments and flags into a runner
// request. changed reports whether a flag was set explicitly, which is how
// optional parameters such as --mu and --sigma1 are told apart from zero.
// Tail and alpha always carry the flag value, whose defaults are "two" and
// stats.DefaultAlpha, so an explicit --alpha 0 reaches validation.
func buildRequest(kind stats.Kind, args []string, f *testFlags, changed func(string) bool) (runner.Request, error) {
	tail, alpha := f.tail, f.alpha
	req := runner.Request{
		Kind:  kind,
		Name:  f.name,
		Tail:  &tail,
		Alpha: &alpha,
	}

	var err error
	req.Sample1, err = dataset.Load(args[0])
	if err != nil {
		return req, fmt.Errorf("sample 1: %w", err)
	}
	if len(args) > 1 {
		req.Sample2, err = dataset.Load(args[1])
		if err != nil {
			return req, fmt.Errorf("sample 2: %w", err)
		}
	}

	if changed("mu") {
		mu := f.mu
		req.PopulationMean = &mu
	}
	if changed("sigma1") {
		sigma := f.sigma1
		req.Sigma1 = &sigma
	}
	if changed("sigma2") {
		sigma := f.sigma2
		req.Sigma2 = &sigma
	}
	return req, nil
}

// executeAndPrint runs req, saving it when s is non-nil, and prints the result.
func executeAndPrint(ctx context.Context, w io.Writer, s store.Store, req runner.Request, plot bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	run, err := runner.New(s, logger, nil).Execute(ctx, req)
	if err != nil {
		return err
	}

	printResult(w, run)
	if plot {
		if err := printPlot(w, run); err != nil {
			return err
		}
	}
	if run.ID != "" {
		fmt.Fprintf(w, "\nSaved as run %s\n", shortID(run.ID))
	}
	return nil
}
