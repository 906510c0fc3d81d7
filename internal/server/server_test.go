package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hypotest/hypotest/internal/runner"
	"github.com/hypotest/hypotest/internal/server"
	"github.com/hypotest/hypotest/internal/stats"
	"github.com/hypotest/hypotest/internal/store"
	"github.com/hypotest/hypotest/internal/testutil"
)

func setupTestServer(t *testing.T) (*server.Server, *store.SQLiteStore) {
	t.Helper()
	s := testutil.SetupTestStore(t)
	return server.New(s, 0, "", zaptest.NewLogger(t)), s
}

func do(t *testing.T, srv *server.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	srv, s := setupTestServer(t)
	testutil.SaveRun(t, s, testutil.OneSampleT())

	w := do(t, srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp server.HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.RunsCount)
	assert.Greater(t, resp.DBSizeBytes, int64(0))
}

func TestZTestAPI_KnownSigma(t *testing.T) {
	srv, s := setupTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/ztest",
		`{"sample1":[1,2,3,4,5],"sample2":[2,3,4,5,6],"sigma1":1,"sigma2":1,"tail":"two"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	assert.Equal(t, "z", resp["kind"])
	assert.InDelta(t, -1.5811388, resp["z_statistic"], 1e-6)
	assert.InDelta(t, 0.1138463, resp["p_value"], 1e-6)
	assert.Equal(t, 0.05, resp["alpha"])
	assert.NotContains(t, resp, "dof")
	assert.NotContains(t, resp, "t_statistic")

	n, err := s.CountRuns(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTTestAPI_OneSample(t *testing.T) {
	srv, _ := setupTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/ttest",
		`{"sample1":[10,12,9,11,13],"population_mean":10}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	assert.Equal(t, "t", resp["kind"])
	assert.InDelta(t, 1.4142136, resp["t_statistic"], 1e-6)
	assert.Equal(t, 4.0, resp["dof"])
	assert.NotEmpty(t, resp["id"])
}

func TestRunAPI_ErrorStatus(t *testing.T) {
	srv, _ := setupTestServer(t)

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"malformed json", "/api/ztest", `{"sample1":`, http.StatusBadRequest},
		{"bad tail", "/api/ztest", `{"sample1":[1,2,3],"population_mean":0,"sigma1":1,"tail":"up"}`, http.StatusBadRequest},
		{"alpha out of range", "/api/ttest", `{"sample1":[1,2,3],"alpha":1.5}`, http.StatusBadRequest},
		{"single element", "/api/ttest", `{"sample1":[1]}`, http.StatusBadRequest},
		{"single element z", "/api/ztest", `{"sample1":[1],"population_mean":0,"sigma1":1}`, http.StatusBadRequest},
		{"sigma on t-test", "/api/ttest", `{"sample1":[1,2,3],"sigma1":1}`, http.StatusBadRequest},
		{"explicit zero alpha", "/api/ztest", `{"sample1":[9,11,12],"population_mean":10,"alpha":0}`, http.StatusBadRequest},
		{"empty tail", "/api/ttest", `{"sample1":[1,2,3],"tail":""}`, http.StatusBadRequest},
		{"overflowing means", "/api/ztest", `{"sample1":[1e308,1e308],"sample2":[1e308,1e308],"sigma1":1,"sigma2":1}`, http.StatusUnprocessableEntity},
		{"zero variance", "/api/ttest", `{"sample1":[5,5,5],"population_mean":5}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Contains(t, decode(t, w), "error")
		})
	}
}

func TestRunAPI_BodyTooLarge(t *testing.T) {
	srv, s := setupTestServer(t)

	body := `{"sample1":[` + strings.Repeat("1.5,", 3<<20) + `2],"population_mean":0}`
	w := do(t, srv, http.MethodPost, "/api/ttest", body)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected status 413, got %d", w.Code)
	}

	n, err := s.CountRuns(t.Context())
	if err != nil {
		t.Fatalf("failed to count runs: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no saved runs, got %d", n)
	}
}

func TestRunAPI_MethodNotAllowed(t *testing.T) {
	srv, _ := setupTestServer(t)

	w := do(t, srv, http.MethodGet, "/api/ztest", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestListAndGetRuns(t *testing.T) {
	srv, s := setupTestServer(t)
	first := testutil.SaveRun(t, s, testutil.OneSampleT())
	second := testutil.SaveRun(t, s, testutil.OneSampleT())

	w := do(t, srv, http.MethodGet, "/api/runs?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Runs []server.RunResponse `json:"runs"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list.Runs, 1)
	assert.Equal(t, second.ID, list.Runs[0].ID)
	assert.Nil(t, list.Runs[0].Sample1)

	w = do(t, srv, http.MethodGet, "/api/runs/"+first.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got server.RunResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, []float64{10, 12, 9, 11, 13}, got.Sample1)
	require.NotNil(t, got.DegreesOfFreedom)
	assert.Equal(t, 4.0, *got.DegreesOfFreedom)

	w = do(t, srv, http.MethodGet, "/api/runs?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRun_NotFound(t *testing.T) {
	srv, _ := setupTestServer(t)

	w := do(t, srv, http.MethodGet, "/api/runs/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodGet, "/api/runs/missing/plot.svg", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlotSVG(t *testing.T) {
	srv, s := setupTestServer(t)
	run := testutil.SaveRun(t, s, testutil.OneSampleT())

	w := do(t, srv, http.MethodGet, "/api/runs/"+run.ID+"/plot.svg", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(w.Body.String()), "<svg"))
	assert.Contains(t, w.Body.String(), "dof")
}

func TestDeleteRun_RequiresToken(t *testing.T) {
	srv, s := setupTestServer(t)
	run := testutil.SaveRun(t, s, testutil.OneSampleT())

	w := do(t, srv, http.MethodDelete, "/api/runs/"+run.ID, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodDelete, "/api/runs/"+run.ID, nil)
	req.Header.Set("Authorization", "Bearer "+srv.Token())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err := s.GetRun(t.Context(), run.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMetrics_CountsRuns(t *testing.T) {
	srv, _ := setupTestServer(t)

	do(t, srv, http.MethodPost, "/api/ttest", `{"sample1":[1,2,4],"population_mean":0}`)
	do(t, srv, http.MethodPost, "/api/ttest", `{"sample1":[1]}`)

	w := do(t, srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `hypotest_runs_total{kind="t",tail="two"} 1`)
	assert.Contains(t, body, `hypotest_run_failures_total{kind="t",reason="invalid_input"} 1`)
}

func TestDashboard_Unauthorized(t *testing.T) {
	srv, _ := setupTestServer(t)

	w := do(t, srv, http.MethodGet, "/dashboard", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestDashboard_ValidTokenSetsCookie(t *testing.T) {
	srv, _ := setupTestServer(t)

	w := do(t, srv, http.MethodGet, "/dashboard?token="+srv.Token(), "")
	if w.Code != http.StatusFound {
		t.Errorf("expected status 302 (redirect), got %d", w.Code)
	}

	var tokenCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "hypotest_token" {
			tokenCookie = c
			break
		}
	}
	if tokenCookie == nil {
		t.Fatal("expected hypotest_token cookie to be set")
	}
	if tokenCookie.Value != srv.Token() {
		t.Errorf("expected cookie value %q, got %q", srv.Token(), tokenCookie.Value)
	}
}

func TestDashboard_InvalidToken(t *testing.T) {
	srv, _ := setupTestServer(t)

	w := do(t, srv, http.MethodGet, "/dashboard?token=wrong", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestDashboard_ListsRuns(t *testing.T) {
	srv, s := setupTestServer(t)
	testutil.SaveRun(t, s, testutil.OneSampleT())

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "hypotest_token", Value: srv.Token()})
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "baseline")
	assert.Contains(t, body, "T-test")
}

func TestDashboard_RunDetailEmbedsPlot(t *testing.T) {
	srv, s := setupTestServer(t)
	sigma := 1.0
	mu := 0.0
	run := testutil.SaveRun(t, s, oneSampleZ(mu, sigma))

	req := httptest.NewRequest(http.MethodGet, "/dashboard/run/"+run.ID, nil)
	req.AddCookie(&http.Cookie{Name: "hypotest_token", Value: srv.Token()})
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "Z-test")
	assert.True(t, bytes.Contains(w.Body.Bytes(), []byte("σ₁")))
}

func TestDashboard_StoreFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	s := testutil.SetupTestStore(t)
	srv := server.New(s, 0, "", zap.New(core))
	s.Close()

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "hypotest_token", Value: srv.Token()})
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}
	if logs.FilterMessage("failed to count runs").Len() != 1 {
		t.Errorf("expected the count failure to be logged, got %v", logs.All())
	}
}

func TestDashboard_RunNotFound(t *testing.T) {
	srv, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/run/missing", nil)
	req.AddCookie(&http.Cookie{Name: "hypotest_token", Value: srv.Token()})
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func oneSampleZ(mu, sigma float64) runner.Request {
	return runner.Request{
		Kind:           stats.KindZ,
		Sample1:        []float64{0.3, -0.1, 0.8, 0.2},
		PopulationMean: &mu,
		Sigma1:         &sigma,
	}
}
