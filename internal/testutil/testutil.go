// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hypotest/hypotest/internal/runner"
	"github.com/hypotest/hypotest/internal/stats"
	"github.com/hypotest/hypotest/internal/store"
)

// SetupTestStore creates a test database and returns the store.
// Uses t.TempDir() for automatic cleanup on test completion.
func SetupTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// SaveRun runs req against s and fails the test on error.
func SaveRun(t *testing.T, s store.Store, req runner.Request) *store.Run {
	t.Helper()

	run, err := runner.New(s, nil, nil).Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("failed to execute %s run: %v", req.Kind, err)
	}
	return run
}

// OneSampleT is a small one-sample t-test request with a known answer
// (t = √2, dof = 4).
func OneSampleT() runner.Request {
	mu := 10.0
	return runner.Request{
		Kind:           stats.KindT,
		Name:           "baseline",
		Sample1:        []float64{10, 12, 9, 11, 13},
		PopulationMean: &mu,
	}
}
