package stats_test

import (
	"math"
	"testing"

	moremath "github.com/aclements/go-moremath/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypotest/hypotest/internal/stats"
)

func TestTTest_OneSample(t *testing.T) {
	data := []float64{10, 12, 9, 11, 13}
	tt, err := stats.NewTTest(stats.TConfig{Sample1: data, PopulationMean: 10, Tail: stats.TailTwo, Alpha: 0.05})
	require.NoError(t, err)

	result, err := tt.Run()
	require.NoError(t, err)

	provider, err := moremath.OneSampleTTest(&moremath.Sample{Xs: data}, 10, moremath.LocationDiffers)
	require.NoError(t, err)

	assert.Equal(t, stats.KindT, result.Kind)
	assert.Equal(t, 4.0, result.DegreesOfFreedom)
	assert.Equal(t, provider.T, result.Statistic)
	assert.Equal(t, provider.P, result.PValue)
	assert.InDelta(t, math.Sqrt(2), result.Statistic, 1e-12)
	assert.InDelta(t, 0.2302, result.PValue, 1e-3)
	assert.InDelta(t, math.Sqrt(0.5), result.StandardError, 1e-12)
}

func TestTTest_OneSampleDefaultsToZeroMean(t *testing.T) {
	result := mustRunT(t, stats.TConfig{Sample1: []float64{2, 1, 3, 4}, Tail: stats.TailTwo, Alpha: 0.05})

	assert.InDelta(t, 3.872983346207417, result.Statistic, 1e-9)
	assert.InDelta(t, 0.030466291662170977, result.PValue, 1e-9)
	assert.Equal(t, 3.0, result.DegreesOfFreedom)
}

func TestTTest_WelchTwoSample(t *testing.T) {
	s1 := []float64{2, 1, 3, 4}
	s2 := []float64{6, 5, 7, 9}

	result := mustRunT(t, stats.TConfig{Sample1: s1, Sample2: s2, Tail: stats.TailTwo, Alpha: 0.05})

	assert.InDelta(t, -3.9703446152237674, result.Statistic, 1e-9)
	assert.InDelta(t, 0.0085128631313781695, result.PValue, 1e-9)
	assert.InDelta(t, 5.584615384615385, result.DegreesOfFreedom, 1e-9)
	assert.Equal(t, 4, result.N1)
	assert.Equal(t, 4, result.N2)
}

func TestTTest_WelchPValueComesFromProvider(t *testing.T) {
	s1 := []float64{12.1, 11.4, 13.0, 12.7, 11.9, 12.3}
	s2 := []float64{10.2, 11.8, 9.4, 12.5, 10.1}

	result := mustRunT(t, stats.TConfig{Sample1: s1, Sample2: s2, Tail: stats.TailTwo, Alpha: 0.05})
	provider, err := moremath.TwoSampleWelchTTest(
		&moremath.Sample{Xs: s1}, &moremath.Sample{Xs: s2}, moremath.LocationDiffers)
	require.NoError(t, err)

	assert.Equal(t, provider.T, result.Statistic)
	assert.Equal(t, provider.P, result.PValue)
	assert.Equal(t, stats.WelchDoF(s1, s2), result.DegreesOfFreedom)
}

func TestAdjustTail(t *testing.T) {
	const p2 = 0.08
	tests := []struct {
		name      string
		tail      stats.Tail
		statistic float64
		want      float64
	}{
		{"right, statistic positive", stats.TailRight, 2.1, 0.04},
		{"right, statistic negative", stats.TailRight, -2.1, 0.96},
		{"right, statistic zero", stats.TailRight, 0, 0.96},
		{"left, statistic negative", stats.TailLeft, -2.1, 0.04},
		{"left, statistic positive", stats.TailLeft, 2.1, 0.96},
		{"left, statistic zero", stats.TailLeft, 0, 0.96},
		{"two, statistic positive", stats.TailTwo, 2.1, p2},
		{"two, statistic negative", stats.TailTwo, -2.1, p2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, stats.AdjustTail(p2, tt.statistic, tt.tail), 1e-15)
		})
	}
}

func TestTTest_TailAdjustmentBothSides(t *testing.T) {
	high := []float64{5.5, 6.0, 6.2, 5.8, 6.1}

	for _, mu := range []float64{5.0, 7.0} {
		two := mustRunT(t, stats.TConfig{Sample1: high, PopulationMean: mu, Tail: stats.TailTwo, Alpha: 0.05})
		right := mustRunT(t, stats.TConfig{Sample1: high, PopulationMean: mu, Tail: stats.TailRight, Alpha: 0.05})
		left := mustRunT(t, stats.TConfig{Sample1: high, PopulationMean: mu, Tail: stats.TailLeft, Alpha: 0.05})

		if two.Statistic > 0 {
			assert.Equal(t, two.PValue/2, right.PValue)
			assert.Equal(t, 1-two.PValue/2, left.PValue)
		} else {
			assert.Equal(t, 1-two.PValue/2, right.PValue)
			assert.Equal(t, two.PValue/2, left.PValue)
		}
		assert.Equal(t, two.Statistic, right.Statistic)
		assert.Equal(t, two.Statistic, left.Statistic)
	}
}

func TestWelchDoF_MonotoneInSampleSize(t *testing.T) {
	// alternating +-spread around a centre; variance stays near spread^2.
	sample := func(n int, centre, spread float64) []float64 {
		xs := make([]float64, n)
		for i := range xs {
			if i%2 == 0 {
				xs[i] = centre + spread
			} else {
				xs[i] = centre - spread
			}
		}
		return xs
	}

	// Growing the sample that dominates the standard error.
	fixed := sample(6, 10, 0.5)
	prev := 0.0
	for n := 2; n <= 40; n += 2 {
		grown := sample(n, 12, 10)

		first := stats.WelchDoF(grown, fixed)
		second := stats.WelchDoF(fixed, grown)

		assert.GreaterOrEqual(t, first, prev, "n=%d", n)
		assert.GreaterOrEqual(t, first, 1.0)
		assert.InDelta(t, first, second, 1e-9)
		prev = first
	}

	// Growing both samples together with equal variances.
	prev = 0.0
	for n := 2; n <= 40; n += 2 {
		dof := stats.WelchDoF(sample(n, 0, 1), sample(n, 5, 1))
		assert.GreaterOrEqual(t, dof, prev, "n=%d", n)
		assert.InDelta(t, float64(2*n-2), dof, 1e-9)
		prev = dof
	}
}

func TestWelchDoF_Bounds(t *testing.T) {
	s1 := []float64{1, 4, 2, 8, 5, 7}
	s2 := []float64{3, 3.5, 2.9}

	dof := stats.WelchDoF(s1, s2)

	assert.GreaterOrEqual(t, dof, math.Min(float64(len(s1)-1), float64(len(s2)-1)))
	assert.LessOrEqual(t, dof, float64(len(s1)+len(s2)-2))
}

func TestTTest_Validation(t *testing.T) {
	good := []float64{1, 2, 3}
	tests := []struct {
		name string
		cfg  stats.TConfig
	}{
		{"single element", stats.TConfig{Sample1: []float64{5}, Tail: stats.TailTwo, Alpha: 0.05}},
		{"NaN element", stats.TConfig{Sample1: []float64{1, 2, math.NaN()}, Tail: stats.TailTwo, Alpha: 0.05}},
		{"short second sample", stats.TConfig{Sample1: good, Sample2: []float64{7}, Tail: stats.TailTwo, Alpha: 0.05}},
		{"bad tail", stats.TConfig{Sample1: good, Tail: "up", Alpha: 0.05}},
		{"alpha above one", stats.TConfig{Sample1: good, Tail: stats.TailTwo, Alpha: 1.5}},
		{"zero alpha", stats.TConfig{Sample1: good, Tail: stats.TailTwo}},
		{"empty tail", stats.TConfig{Sample1: good, Alpha: 0.05}},
		{"infinite population mean", stats.TConfig{Sample1: good, PopulationMean: math.Inf(-1), Tail: stats.TailTwo, Alpha: 0.05}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := stats.NewTTest(tt.cfg)
			assert.ErrorIs(t, err, stats.ErrInvalidInput)
		})
	}
}

func TestTTest_ZeroVariance(t *testing.T) {
	tt, err := stats.NewTTest(stats.TConfig{Sample1: []float64{3, 3, 3}, PopulationMean: 1, Tail: stats.TailTwo, Alpha: 0.05})
	require.NoError(t, err)

	_, err = tt.Run()
	assert.ErrorIs(t, err, stats.ErrNumericComputation)
}

func TestTTest_Idempotent(t *testing.T) {
	tt, err := stats.NewTTest(stats.TConfig{
		Sample1: []float64{1.1, 2.3, 1.9, 2.8},
		Sample2: []float64{3.2, 2.9, 3.8, 4.1, 3.5},
		Tail:    stats.TailLeft,
		Alpha:   0.05,
	})
	require.NoError(t, err)

	first, err := tt.Run()
	require.NoError(t, err)
	second, err := tt.Run()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParseTail(t *testing.T) {
	for in, want := range map[string]stats.Tail{
		"two":    stats.TailTwo,
		"LEFT":   stats.TailLeft,
		" right": stats.TailRight,
	} {
		got, err := stats.ParseTail(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"up", "", "  "} {
		_, err := stats.ParseTail(in)
		assert.ErrorIs(t, err, stats.ErrInvalidInput, "%q", in)
	}
}

func TestResult_Significant(t *testing.T) {
	assert.True(t, stats.Result{PValue: 0.01, Alpha: 0.05}.Significant())
	assert.False(t, stats.Result{PValue: 0.2, Alpha: 0.05}.Significant())
}

func mustRunT(t *testing.T, cfg stats.TConfig) stats.Result {
	t.Helper()
	tt, err := stats.NewTTest(cfg)
	require.NoError(t, err)
	result, err := tt.Run()
	require.NoError(t, err)
	return result
}
