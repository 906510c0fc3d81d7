package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/hypotest/hypotest/internal/render"
	"github.com/hypotest/hypotest/internal/runner"
	"github.com/hypotest/hypotest/internal/stats"
	"github.com/hypotest/hypotest/internal/store"
)

// maxRequestBody caps the JSON body of a test request.
const maxRequestBody = 8 << 20

type HealthResponse struct {
	Status        string `json:"status"`
	RunsCount     int    `json:"runs_count"`
	DBSizeBytes   int64  `json:"db_size_bytes"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.CountRuns(r.Context())
	if err != nil {
		s.logger.Error("failed to count runs", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var dbSize int64
	row := s.store.DB().QueryRowContext(r.Context(), "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
	if err := row.Scan(&dbSize); err != nil {
		s.logger.Debug("failed to read database size", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		RunsCount:     count,
		DBSizeBytes:   dbSize,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	})
}

// RunResponse is the JSON shape of a completed run. The statistic is keyed
// by test kind so clients can tell z and t results apart.
type RunResponse struct {
	ID               string    `json:"id,omitempty"`
	Name             string    `json:"name,omitempty"`
	Kind             string    `json:"kind"`
	Tail             string    `json:"tail"`
	ZStatistic       *float64  `json:"z_statistic,omitempty"`
	TStatistic       *float64  `json:"t_statistic,omitempty"`
	PValue           float64   `json:"p_value"`
	DegreesOfFreedom *float64  `json:"dof,omitempty"`
	StandardError    float64   `json:"standard_error"`
	Alpha            float64   `json:"alpha"`
	Significant      bool      `json:"significant"`
	N1               int       `json:"n1"`
	N2               int       `json:"n2,omitempty"`
	PopulationMean   *float64  `json:"population_mean,omitempty"`
	Sigma1           *float64  `json:"sigma1,omitempty"`
	Sigma2           *float64  `json:"sigma2,omitempty"`
	Sample1          []float64 `json:"sample1,omitempty"`
	Sample2          []float64 `json:"sample2,omitempty"`
	CreatedAt        string    `json:"created_at,omitempty"`
}

func newRunResponse(run *store.Run, withSamples bool) RunResponse {
	result := run.Result()
	resp := RunResponse{
		ID:             run.ID,
		Name:           run.Name,
		Kind:           string(run.Kind),
		Tail:           string(run.Tail),
		PValue:         run.PValue,
		StandardError:  run.StandardError,
		Alpha:          run.Alpha,
		Significant:    result.Significant(),
		N1:             result.N1,
		N2:             result.N2,
		PopulationMean: run.PopulationMean,
		Sigma1:         run.Sigma1,
		Sigma2:         run.Sigma2,
	}
	statistic := run.Statistic
	if run.Kind == stats.KindT {
		dof := run.DegreesOfFreedom
		resp.TStatistic = &statistic
		resp.DegreesOfFreedom = &dof
	} else {
		resp.ZStatistic = &statistic
	}
	if withSamples {
		resp.Sample1 = run.Sample1
		resp.Sample2 = run.Sample2
	}
	if !run.CreatedAt.IsZero() {
		resp.CreatedAt = run.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func (s *Server) handleZTest(w http.ResponseWriter, r *http.Request) {
	s.handleRun(w, r, stats.KindZ)
}

func (s *Server) handleTTest(w http.ResponseWriter, r *http.Request) {
	s.handleRun(w, r, stats.KindT)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, kind stats.Kind) {
	var req runner.Request
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Kind = kind

	run, err := s.runner.Execute(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, newRunResponse(run, false))
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	items := make([]RunResponse, len(runs))
	for i, run := range runs {
		items[i] = newRunResponse(run, false)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs": items,
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newRunResponse(run, true))
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteRun(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlotSVG(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}

	fig, err := render.Build(run.Result(), render.DefaultOptions())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if err := render.WriteSVG(w, fig, 800, 450); err != nil {
		s.logger.Error("failed to write svg", zap.String("id", run.ID), zap.Error(err))
	}
}

// lookupRun loads the run named by the {id} path value, writing a 404 or
// 500 response when it cannot.
func (s *Server) lookupRun(w http.ResponseWriter, r *http.Request) (*store.Run, bool) {
	run, err := s.store.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("failed to load run", zap.Error(err))
		}
		writeError(w, statusFor(err), "run not found")
		return nil, false
	}
	return run, true
}

// statusFor maps an error to its HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, stats.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, stats.ErrNumericComputation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
