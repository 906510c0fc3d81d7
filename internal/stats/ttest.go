package stats

import (
	"math"

	moremath "github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/stat"
)

// TConfig configures a Student's t-test. A nil Sample2 selects the
// one-sample test against PopulationMean; otherwise Welch's unequal-variance
// two-sample test runs and PopulationMean is ignored.
type TConfig struct {
	Sample1        []float64
	Sample2        []float64
	PopulationMean float64
	Tail           Tail
	Alpha          float64
}

// TTest is a validated t-test.
type TTest struct {
	cfg TConfig
}

// NewTTest validates cfg with the same rules as NewZTest.
func NewTTest(cfg TConfig) (*TTest, error) {
	if err := validateSample("sample1", cfg.Sample1); err != nil {
		return nil, err
	}
	if cfg.Sample2 != nil {
		if err := validateSample("sample2", cfg.Sample2); err != nil {
			return nil, err
		}
	}
	if err := validateFinite("population_mean", &cfg.PopulationMean); err != nil {
		return nil, err
	}
	if err := validateTailAlpha(cfg.Tail, cfg.Alpha); err != nil {
		return nil, err
	}

	cfg.Sample1 = clone(cfg.Sample1)
	cfg.Sample2 = clone(cfg.Sample2)
	return &TTest{cfg: cfg}, nil
}

// Run computes the t-statistic, degrees of freedom and tail-adjusted p-value.
// The two-tailed p-value always comes from the packaged moremath routine so
// that statistic and p-value share one source.
func (t *TTest) Run() (Result, error) {
	cfg := t.cfg
	x1 := &moremath.Sample{Xs: cfg.Sample1}

	var (
		res *moremath.TTestResult
		dof float64
		se  float64
		err error
	)
	if cfg.Sample2 == nil {
		res, err = moremath.OneSampleTTest(x1, cfg.PopulationMean, moremath.LocationDiffers)
		dof = float64(len(cfg.Sample1) - 1)
		se = math.Sqrt(stat.Variance(cfg.Sample1, nil) / float64(len(cfg.Sample1)))
	} else {
		x2 := &moremath.Sample{Xs: cfg.Sample2}
		res, err = moremath.TwoSampleWelchTTest(x1, x2, moremath.LocationDiffers)
		dof = WelchDoF(cfg.Sample1, cfg.Sample2)
		se = welchStandardError(cfg.Sample1, cfg.Sample2)
	}
	if err != nil {
		return Result{}, numericf("%v", err)
	}
	if math.IsNaN(res.T) || math.IsInf(res.T, 0) || math.IsNaN(res.P) {
		return Result{}, numericf("t-statistic is undefined")
	}

	return Result{
		Kind:             KindT,
		Tail:             cfg.Tail,
		Statistic:        res.T,
		PValue:           AdjustTail(res.P, res.T, cfg.Tail),
		DegreesOfFreedom: dof,
		StandardError:    se,
		Alpha:            cfg.Alpha,
		N1:               len(cfg.Sample1),
		N2:               len(cfg.Sample2),
	}, nil
}

// WelchDoF returns the Welch–Satterthwaite effective degrees of freedom for
// two samples, using unbiased variances.
func WelchDoF(xs1, xs2 []float64) float64 {
	n1, n2 := float64(len(xs1)), float64(len(xs2))
	v1, v2 := stat.Variance(xs1, nil), stat.Variance(xs2, nil)

	numerator := math.Pow(v1/n1+v2/n2, 2)
	denominator := (v1*v1)/(n1*n1*(n1-1)) + (v2*v2)/(n2*n2*(n2-1))
	return numerator / denominator
}

func welchStandardError(xs1, xs2 []float64) float64 {
	n1, n2 := float64(len(xs1)), float64(len(xs2))
	return math.Sqrt(stat.Variance(xs1, nil)/n1 + stat.Variance(xs2, nil)/n2)
}
