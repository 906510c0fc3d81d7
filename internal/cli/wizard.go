package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/hypotest/hypotest/internal/dataset"
	"github.com/hypotest/hypotest/internal/runner"
	"github.com/hypotest/hypotest/internal/stats"
	"github.com/hypotest/hypotest/internal/store"
)

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Run a test interactively",
	Long: `Walk through choosing a test, entering samples and parameters, and
run it. Samples may be typed inline or loaded with @file.csv:column.`,
	Args: cobra.NoArgs,
	RunE: runWizard,
}

func init() {
	rootCmd.AddCommand(wizardCmd)
}

func runWizard(cmd *cobra.Command, args []string) error {
	req, plot, err := promptRequest()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			os.Exit(0)
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout())
	return withStore(func(s *store.SQLiteStore) error {
		return executeAndPrint(cmd.Context(), cmd.OutOrStdout(), s, req, plot)
	})
}

func promptRequest() (runner.Request, bool, error) {
	var req runner.Request

	kindIdx, err := selectOne("Test", []string{
		"Z-test (known or large-sample standard deviation)",
		"T-test (unknown standard deviation)",
	})
	if err != nil {
		return req, false, err
	}
	req.Kind = stats.KindZ
	if kindIdx == 1 {
		req.Kind = stats.KindT
	}

	samplesIdx, err := selectOne("Samples", []string{
		"One sample vs. a population mean",
		"Two independent samples",
	})
	if err != nil {
		return req, false, err
	}
	twoSample := samplesIdx == 1

	if req.Sample1, err = promptSample("Sample 1"); err != nil {
		return req, false, err
	}
	if twoSample {
		if req.Sample2, err = promptSample("Sample 2"); err != nil {
			return req, false, err
		}
	} else {
		mu, err := promptFloat("Population mean", "0", false)
		if err != nil {
			return req, false, err
		}
		req.PopulationMean = mu
	}

	if req.Kind == stats.KindZ {
		if req.Sigma1, err = promptFloat("σ₁ (blank to estimate)", "", true); err != nil {
			return req, false, err
		}
		if twoSample {
			if req.Sigma2, err = promptFloat("σ₂ (blank to estimate)", "", true); err != nil {
				return req, false, err
			}
		}
	}

	tails := []stats.Tail{stats.TailTwo, stats.TailLeft, stats.TailRight}
	tailIdx, err := selectOne("Alternative hypothesis", []string{
		"two-tailed (means differ)",
		"left-tailed (mean is less)",
		"right-tailed (mean is greater)",
	})
	if err != nil {
		return req, false, err
	}
	tail := string(tails[tailIdx])
	req.Tail = &tail

	alpha, err := promptFloat("Significance level α", strconv.FormatFloat(stats.DefaultAlpha, 'g', -1, 64), false)
	if err != nil {
		return req, false, err
	}
	req.Alpha = alpha

	name, err := (&promptui.Prompt{Label: "Name (optional)"}).Run()
	if err != nil {
		return req, false, err
	}
	req.Name = strings.TrimSpace(name)

	plotIdx, err := selectOne("Show plot", []string{"Yes", "No"})
	if err != nil {
		return req, false, err
	}

	return req, plotIdx == 0, nil
}

func selectOne(label string, items []string) (int, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
		Size:  len(items),
	}
	idx, _, err := prompt.Run()
	return idx, err
}

func promptSample(label string) ([]float64, error) {
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(s string) error {
			_, err := dataset.Load(strings.TrimSpace(s))
			return err
		},
	}
	input, err := prompt.Run()
	if err != nil {
		return nil, err
	}
	return dataset.Load(strings.TrimSpace(input))
}

// promptFloat asks for a number. With optional set, a blank answer yields nil.
func promptFloat(label, def string, optional bool) (*float64, error) {
	prompt := promptui.Prompt{
		Label:   label,
		Default: def,
		Validate: func(s string) error {
			s = strings.TrimSpace(s)
			if s == "" && optional {
				return nil
			}
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				return errors.New("enter a number")
			}
			return nil
		},
	}
	input, err := prompt.Run()
	if err != nil {
		return nil, err
	}
	input = strings.TrimSpace(input)
	if input == "" && optional {
		return nil, nil
	}
	v, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
