package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ZConfig configures a Z-test. A nil Sample2 selects the one-sample test,
// which requires PopulationMean. Tail and Alpha are required. Sigma1 and Sigma2 are known population
// standard deviations; when nil they are estimated from the samples.
type ZConfig struct {
	Sample1        []float64
	Sample2        []float64
	PopulationMean *float64
	Sigma1         *float64
	Sigma2         *float64
	Tail           Tail
	Alpha          float64
}

// ZTest is a validated Z-test. It holds only its inputs; Run may be called
// any number of times and always returns the same result.
type ZTest struct {
	cfg ZConfig
}

// NewZTest validates cfg and returns a ready-to-run test.
func NewZTest(cfg ZConfig) (*ZTest, error) {
	if err := validateSample("sample1", cfg.Sample1); err != nil {
		return nil, err
	}
	if cfg.Sample2 != nil {
		if err := validateSample("sample2", cfg.Sample2); err != nil {
			return nil, err
		}
	}
	if err := validateFinite("population_mean", cfg.PopulationMean); err != nil {
		return nil, err
	}
	if err := validateSigma("sigma1", cfg.Sigma1); err != nil {
		return nil, err
	}
	if err := validateSigma("sigma2", cfg.Sigma2); err != nil {
		return nil, err
	}
	if err := validateTailAlpha(cfg.Tail, cfg.Alpha); err != nil {
		return nil, err
	}
	if cfg.Sample2 == nil && cfg.PopulationMean == nil {
		return nil, invalidf("population_mean is required for a one-sample test")
	}

	cfg.Sample1 = clone(cfg.Sample1)
	cfg.Sample2 = clone(cfg.Sample2)
	return &ZTest{cfg: cfg}, nil
}

// Run computes the z-statistic and its tail-adjusted p-value.
func (z *ZTest) Run() (Result, error) {
	cfg := z.cfg
	n1 := len(cfg.Sample1)
	mean1 := stat.Mean(cfg.Sample1, nil)
	sigma1 := knownOrEstimated(cfg.Sigma1, cfg.Sample1)

	var se, diff float64
	var n2 int
	if cfg.Sample2 == nil {
		se = sigma1 / math.Sqrt(float64(n1))
		diff = mean1 - *cfg.PopulationMean
	} else {
		n2 = len(cfg.Sample2)
		sigma2 := knownOrEstimated(cfg.Sigma2, cfg.Sample2)
		se = math.Sqrt(sigma1*sigma1/float64(n1) + sigma2*sigma2/float64(n2))
		diff = mean1 - stat.Mean(cfg.Sample2, nil)
	}
	if se == 0 || math.IsNaN(se) {
		return Result{}, numericf("standard error is zero; samples have no variance")
	}
	if math.IsInf(se, 0) {
		return Result{}, numericf("standard error overflows")
	}

	zStat := diff / se
	if math.IsNaN(zStat) || math.IsInf(zStat, 0) {
		return Result{}, numericf("z-statistic is undefined")
	}
	return Result{
		Kind:          KindZ,
		Tail:          cfg.Tail,
		Statistic:     zStat,
		PValue:        normalPValue(zStat, cfg.Tail),
		StandardError: se,
		Alpha:         cfg.Alpha,
		N1:            n1,
		N2:            n2,
	}, nil
}

// knownOrEstimated returns sigma when supplied, otherwise the unbiased
// sample standard deviation.
func knownOrEstimated(sigma *float64, xs []float64) float64 {
	if sigma != nil {
		return *sigma
	}
	return stat.StdDev(xs, nil)
}

func normalPValue(z float64, tail Tail) float64 {
	switch tail {
	case TailRight:
		return 1 - distuv.UnitNormal.CDF(z)
	case TailLeft:
		return distuv.UnitNormal.CDF(z)
	default:
		return 2 * (1 - distuv.UnitNormal.CDF(math.Abs(z)))
	}
}
