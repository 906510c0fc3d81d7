package stats

import (
	"math"
	"strconv"
	"strings"
)

// MinSampleSize is the smallest sample with a defined unbiased variance.
const MinSampleSize = 2

// ParseSample converts textual observations into a sample. Any token that is
// not a finite number fails with ErrInvalidInput.
func ParseSample(tokens []string) ([]float64, error) {
	xs := make([]float64, 0, len(tokens))
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		x, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, invalidf("element %d (%q) is not numeric", i, tok)
		}
		xs = append(xs, x)
	}
	return xs, nil
}

func validateSample(name string, xs []float64) error {
	if len(xs) < MinSampleSize {
		return invalidf("%s must contain more than one data point", name)
	}
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return invalidf("%s contains a non-numeric value at index %d", name, i)
		}
	}
	return nil
}

func validateFinite(name string, v *float64) error {
	if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
		return invalidf("%s must be a numeric value", name)
	}
	return nil
}

func validateSigma(name string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v <= 0 {
		return invalidf("%s must be a positive number", name)
	}
	return nil
}

func validateTailAlpha(tail Tail, alpha float64) error {
	if !tail.valid() {
		return invalidf("tail must be 'two', 'left', or 'right', got %q", tail)
	}
	if !(alpha > 0 && alpha < 1) {
		return invalidf("alpha must be a probability value between 0 and 1, got %v", alpha)
	}
	return nil
}

func clone(xs []float64) []float64 {
	if xs == nil {
		return nil
	}
	return append([]float64(nil), xs...)
}
