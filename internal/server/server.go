package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/hypotest/hypotest/internal/metrics"
	"github.com/hypotest/hypotest/internal/runner"
	"github.com/hypotest/hypotest/internal/store"
)

type Server struct {
	store     *store.SQLiteStore
	runner    *runner.Runner
	metrics   *metrics.Metrics
	logger    *zap.Logger
	port      int
	token     string
	tokenFile string
	router    *http.ServeMux
	startTime time.Time
}

func New(s *store.SQLiteStore, port int, tokenFile string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := metrics.New()

	srv := &Server{
		store:     s,
		runner:    runner.New(s, logger, m),
		metrics:   m,
		logger:    logger,
		port:      port,
		token:     generateToken(),
		tokenFile: tokenFile,
		router:    http.NewServeMux(),
		startTime: time.Now(),
	}

	srv.setupRoutes()
	return srv
}

func (s *Server) setupRoutes() {
	// Public endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.Handle("GET /metrics", s.metrics.Handler())
	s.router.HandleFunc("POST /api/ztest", s.handleZTest)
	s.router.HandleFunc("POST /api/ttest", s.handleTTest)
	s.router.HandleFunc("GET /api/runs", s.handleListRuns)
	s.router.HandleFunc("GET /api/runs/{id}", s.handleGetRun)
	s.router.HandleFunc("GET /api/runs/{id}/plot.svg", s.handlePlotSVG)

	// Protected endpoints
	s.router.Handle("DELETE /api/runs/{id}", s.authMiddleware(http.HandlerFunc(s.handleDeleteRun)))
	s.router.Handle("GET /dashboard", s.authMiddleware(http.HandlerFunc(s.handleDashboard)))
	s.router.Handle("GET /dashboard/run/{id}", s.authMiddleware(http.HandlerFunc(s.handleDashboardRun)))
}

func (s *Server) Start() error {
	return s.StartWithOptions(true)
}

// StartQuiet starts the server without printing startup messages
func (s *Server) StartQuiet() error {
	return s.StartWithOptions(false)
}

func (s *Server) StartWithOptions(printMessages bool) error {
	// Write token to file for the token command
	if s.tokenFile != "" {
		if err := os.WriteFile(s.tokenFile, []byte(s.token), 0600); err != nil {
			s.logger.Warn("failed to write token file", zap.String("path", s.tokenFile), zap.Error(err))
		}
	}

	addr := fmt.Sprintf(":%d", s.port)

	if printMessages {
		fmt.Println()
		fmt.Printf("hypotest running on http://localhost:%d\n", s.port)
		fmt.Printf("Dashboard: http://localhost:%d/dashboard?token=%s\n", s.port, s.token)
		fmt.Println()
		fmt.Println("Press Ctrl+C to stop")
	}

	s.logger.Info("server listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) Token() string {
	return s.token
}

func (s *Server) Store() *store.SQLiteStore {
	return s.store
}

func (s *Server) StartTime() time.Time {
	return s.startTime
}

// Handler returns the router wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.router)
}

func generateToken() string {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to a simple token if crypto/rand fails
		return "a1b2c3d4"
	}
	return hex.EncodeToString(bytes)
}
