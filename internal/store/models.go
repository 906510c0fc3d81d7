package store

import (
	"time"

	"github.com/hypotest/hypotest/internal/stats"
)

// Run is a persisted test invocation: its inputs and the result it produced.
type Run struct {
	ID               string
	Name             string // Optional label
	Kind             stats.Kind
	Tail             stats.Tail
	Alpha            float64
	PopulationMean   *float64
	Sigma1           *float64  // Z-test only
	Sigma2           *float64  // Z-test only
	Sample1          []float64 // Decoded from JSON
	Sample2          []float64 // Decoded from JSON, nil for one-sample tests
	Statistic        float64
	PValue           float64
	DegreesOfFreedom float64
	StandardError    float64
	CreatedAt        time.Time
}

// Result rebuilds the engine result recorded with the run.
func (r *Run) Result() stats.Result {
	return stats.Result{
		Kind:             r.Kind,
		Tail:             r.Tail,
		Statistic:        r.Statistic,
		PValue:           r.PValue,
		DegreesOfFreedom: r.DegreesOfFreedom,
		StandardError:    r.StandardError,
		Alpha:            r.Alpha,
		N1:               len(r.Sample1),
		N2:               len(r.Sample2),
	}
}
