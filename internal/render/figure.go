// Package render turns a finished test result into a density figure with
// the rejection regions shaded and the observed statistic marked. It reads
// only stats.Result values and never runs a test itself.
package render

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/hypotest/hypotest/internal/stats"
)

// Options controls the plotted range and resolution. Zero values select
// the defaults: [-4, 4] sampled at 1000 points.
type Options struct {
	Min    float64
	Max    float64
	Points int
}

// DefaultOptions returns the standard plotting range.
func DefaultOptions() Options {
	return Options{Min: -4, Max: 4, Points: 1000}
}

// Point is one sample of the density curve.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Region is a rejection region. Unbounded sides are ±Inf.
type Region struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Figure is a rendering-independent description of a test plot.
type Figure struct {
	Title        string    `json:"title"`
	Subtitle     string    `json:"subtitle"`
	CurveLabel   string    `json:"curve_label"`
	XLabel       string    `json:"x_label"`
	Min          float64   `json:"min"`
	Max          float64   `json:"max"`
	Curve        []Point   `json:"curve"`
	Critical     []float64 `json:"critical"`
	Regions      []Region  `json:"-"`
	Statistic    float64   `json:"statistic"`
	StatLabel    string    `json:"statistic_label"`
	RegionLabel  string    `json:"region_label"`
	PeakDensity  float64   `json:"peak_density"`
	Distribution string    `json:"distribution"`
}

type distribution interface {
	Prob(x float64) float64
	CDF(x float64) float64
	Quantile(p float64) float64
}

// Build computes the figure for result.
func Build(result stats.Result, opts Options) (*Figure, error) {
	if opts.Points == 0 {
		opts.Points = DefaultOptions().Points
	}
	if opts.Min == 0 && opts.Max == 0 {
		opts.Min, opts.Max = DefaultOptions().Min, DefaultOptions().Max
	}
	if opts.Points < 2 || !(opts.Min < opts.Max) {
		return nil, fmt.Errorf("invalid plot range [%v, %v] with %d points", opts.Min, opts.Max, opts.Points)
	}
	if !(result.Alpha > 0 && result.Alpha < 1) {
		return nil, fmt.Errorf("alpha %v out of range", result.Alpha)
	}

	// Keep the marked statistic on the axis.
	if !math.IsInf(result.Statistic, 0) && !math.IsNaN(result.Statistic) {
		if s := result.Statistic; s < opts.Min {
			opts.Min = s - 0.5
		} else if s > opts.Max {
			opts.Max = s + 0.5
		}
	}

	fig := &Figure{
		Min:       opts.Min,
		Max:       opts.Max,
		Statistic: result.Statistic,
	}

	var dist distribution
	switch result.Kind {
	case stats.KindT:
		if !(result.DegreesOfFreedom >= 1) {
			return nil, fmt.Errorf("degrees of freedom %v must be at least 1", result.DegreesOfFreedom)
		}
		dist = distuv.StudentsT{Mu: 0, Sigma: 1, Nu: result.DegreesOfFreedom}
		fig.Distribution = "students-t"
		fig.Title = fmt.Sprintf("T-Test (%s-tailed)", result.Tail)
		fig.Subtitle = fmt.Sprintf("t-statistic: %.2f, p-value: %.4f", result.Statistic, result.PValue)
		fig.CurveLabel = fmt.Sprintf("t-distribution (dof=%.1f)", result.DegreesOfFreedom)
		fig.XLabel = "t-value"
		fig.StatLabel = fmt.Sprintf("t-statistic (%.2f)", result.Statistic)
	default:
		dist = distuv.UnitNormal
		fig.Distribution = "normal"
		fig.Title = fmt.Sprintf("Z-Test (%s-tailed)", result.Tail)
		fig.Subtitle = fmt.Sprintf("Z-statistic: %.2f, p-value: %.4f", result.Statistic, result.PValue)
		fig.CurveLabel = "Standard Normal Distribution"
		fig.XLabel = "Z-value"
		fig.StatLabel = fmt.Sprintf("Z-statistic (%.2f)", result.Statistic)
	}
	fig.RegionLabel = fmt.Sprintf("Rejection Region (α=%g)", result.Alpha)

	fig.Critical, fig.Regions = rejectionRegions(dist, result.Tail, result.Alpha)

	fig.Curve = make([]Point, opts.Points)
	step := (opts.Max - opts.Min) / float64(opts.Points-1)
	for i := range fig.Curve {
		x := opts.Min + float64(i)*step
		y := dist.Prob(x)
		fig.Curve[i] = Point{X: x, Y: y}
		if y > fig.PeakDensity {
			fig.PeakDensity = y
		}
	}

	return fig, nil
}

func rejectionRegions(dist distribution, tail stats.Tail, alpha float64) ([]float64, []Region) {
	inf := math.Inf(1)
	switch tail {
	case stats.TailLeft:
		c := dist.Quantile(alpha)
		return []float64{c}, []Region{{Lower: -inf, Upper: c}}
	case stats.TailRight:
		c := dist.Quantile(1 - alpha)
		return []float64{c}, []Region{{Lower: c, Upper: inf}}
	default:
		c := dist.Quantile(1 - alpha/2)
		return []float64{-c, c}, []Region{{Lower: -inf, Upper: -c}, {Lower: c, Upper: inf}}
	}
}

// InRegion reports whether x falls inside any rejection region.
func (f *Figure) InRegion(x float64) bool {
	for _, r := range f.Regions {
		if x >= r.Lower && x <= r.Upper {
			return true
		}
	}
	return false
}

// clip bounds a region to the plotted axis.
func (f *Figure) clip(r Region) (float64, float64, bool) {
	lo, hi := math.Max(r.Lower, f.Min), math.Min(r.Upper, f.Max)
	return lo, hi, lo < hi
}
