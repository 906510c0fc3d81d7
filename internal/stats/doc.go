// Package stats implements the Z-test and Student's t-test engines.
//
// Both engines are built from an immutable configuration, validate it
// eagerly, and expose a pure Run method:
//
//	zt, err := stats.NewZTest(stats.ZConfig{
//		Sample1:        []float64{5.1, 4.9, 5.3, 5.0},
//		PopulationMean: &mu,
//		Tail:           stats.TailRight,
//		Alpha:          0.05,
//	})
//	result, err := zt.Run()
//
// Malformed samples and parameters fail with ErrInvalidInput; degenerate
// data that passes validation (constant samples) fails with
// ErrNumericComputation.
package stats
