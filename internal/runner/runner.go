// Package runner turns test requests into engine runs and records them.
package runner

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hypotest/hypotest/internal/metrics"
	"github.com/hypotest/hypotest/internal/stats"
	"github.com/hypotest/hypotest/internal/store"
)

// Request describes one test invocation, as received from the CLI or HTTP API.
type Request struct {
	Kind           stats.Kind `json:"-"`
	Name           string     `json:"name,omitempty"`
	Sample1        []float64  `json:"sample1"`
	Sample2        []float64  `json:"sample2,omitempty"`
	PopulationMean *float64   `json:"population_mean,omitempty"`
	Sigma1         *float64   `json:"sigma1,omitempty"`
	Sigma2         *float64   `json:"sigma2,omitempty"`
	Tail           *string    `json:"tail,omitempty"`
	Alpha          *float64   `json:"alpha,omitempty"`
}

// Evaluate runs the engine selected by req.Kind. It has no side effects.
// An omitted tail means two-tailed and an omitted alpha means
// stats.DefaultAlpha; explicit values are validated as given.
func Evaluate(req Request) (stats.Result, error) {
	tail := stats.TailTwo
	if req.Tail != nil {
		t, err := stats.ParseTail(*req.Tail)
		if err != nil {
			return stats.Result{}, err
		}
		tail = t
	}
	alpha := stats.DefaultAlpha
	if req.Alpha != nil {
		alpha = *req.Alpha
	}

	switch req.Kind {
	case stats.KindZ:
		zt, err := stats.NewZTest(stats.ZConfig{
			Sample1:        req.Sample1,
			Sample2:        req.Sample2,
			PopulationMean: req.PopulationMean,
			Sigma1:         req.Sigma1,
			Sigma2:         req.Sigma2,
			Tail:           tail,
			Alpha:          alpha,
		})
		if err != nil {
			return stats.Result{}, err
		}
		return zt.Run()

	case stats.KindT:
		if req.Sigma1 != nil || req.Sigma2 != nil {
			return stats.Result{}, fmt.Errorf("%w: known sigmas apply to z-tests only", stats.ErrInvalidInput)
		}
		var mu float64
		if req.PopulationMean != nil {
			mu = *req.PopulationMean
		}
		tt, err := stats.NewTTest(stats.TConfig{
			Sample1:        req.Sample1,
			Sample2:        req.Sample2,
			PopulationMean: mu,
			Tail:           tail,
			Alpha:          alpha,
		})
		if err != nil {
			return stats.Result{}, err
		}
		return tt.Run()

	default:
		return stats.Result{}, fmt.Errorf("%w: unknown test kind %q", stats.ErrInvalidInput, req.Kind)
	}
}

// Runner executes requests, logging and counting each one and saving the
// result when a store is configured.
type Runner struct {
	store   store.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New returns a Runner. A nil store disables persistence; nil logger and
// metrics are allowed.
func New(s store.Store, logger *zap.Logger, m *metrics.Metrics) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{store: s, logger: logger, metrics: m}
}

// Execute evaluates req and returns the resulting run. The run is saved
// only when the runner has a store; its ID is empty otherwise.
func (r *Runner) Execute(ctx context.Context, req Request) (*store.Run, error) {
	result, err := Evaluate(req)
	if err != nil {
		reason := failureReason(err)
		r.logger.Warn("test run rejected",
			zap.String("kind", string(req.Kind)),
			zap.String("reason", reason),
			zap.Error(err),
		)
		if r.metrics != nil {
			r.metrics.FailuresTotal.WithLabelValues(string(req.Kind), reason).Inc()
		}
		return nil, err
	}

	run := &store.Run{
		Name:             req.Name,
		Kind:             result.Kind,
		Tail:             result.Tail,
		Alpha:            result.Alpha,
		PopulationMean:   req.PopulationMean,
		Sigma1:           req.Sigma1,
		Sigma2:           req.Sigma2,
		Sample1:          req.Sample1,
		Sample2:          req.Sample2,
		Statistic:        result.Statistic,
		PValue:           result.PValue,
		DegreesOfFreedom: result.DegreesOfFreedom,
		StandardError:    result.StandardError,
	}
	if result.Kind == stats.KindT && req.Sample2 == nil && run.PopulationMean == nil {
		mu := 0.0
		run.PopulationMean = &mu
	}

	if r.store != nil {
		if err := r.store.SaveRun(ctx, run); err != nil {
			r.logger.Error("failed to save run", zap.Error(err))
			if r.metrics != nil {
				r.metrics.FailuresTotal.WithLabelValues(string(req.Kind), "storage").Inc()
			}
			return nil, fmt.Errorf("failed to save run: %w", err)
		}
	}

	if r.metrics != nil {
		r.metrics.RunsTotal.WithLabelValues(string(result.Kind), string(result.Tail)).Inc()
		r.metrics.PValues.WithLabelValues(string(result.Kind)).Observe(result.PValue)
	}
	r.logger.Debug("test run completed",
		zap.String("id", run.ID),
		zap.String("kind", string(result.Kind)),
		zap.String("tail", string(result.Tail)),
		zap.Float64("statistic", result.Statistic),
		zap.Float64("p_value", result.PValue),
		zap.Float64("dof", result.DegreesOfFreedom),
	)

	return run, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, stats.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, stats.ErrNumericComputation):
		return "numeric"
	default:
		return "other"
	}
}
