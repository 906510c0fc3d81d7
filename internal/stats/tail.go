package stats

import "strings"

// Tail selects the alternative hypothesis.
type Tail string

const (
	TailTwo   Tail = "two"
	TailLeft  Tail = "left"
	TailRight Tail = "right"
)

// DefaultAlpha is the significance level callers use when none is given.
const DefaultAlpha = 0.05

// ParseTail accepts "two", "left" or "right" (case-insensitive).
func ParseTail(s string) (Tail, error) {
	switch t := Tail(strings.ToLower(strings.TrimSpace(s))); t {
	case TailTwo, TailLeft, TailRight:
		return t, nil
	default:
		return "", invalidf("tail must be 'two', 'left', or 'right', got %q", s)
	}
}

func (t Tail) valid() bool {
	return t == TailTwo || t == TailLeft || t == TailRight
}

// AdjustTail converts a two-tailed p-value into the p-value for tail, given
// the sign of the observed statistic. A statistic on the opposite side of
// zero from the requested tail yields the complement 1 - p2/2.
func AdjustTail(p2, statistic float64, tail Tail) float64 {
	switch tail {
	case TailRight:
		if statistic > 0 {
			return p2 / 2
		}
		return 1 - p2/2
	case TailLeft:
		if statistic < 0 {
			return p2 / 2
		}
		return 1 - p2/2
	default:
		return p2
	}
}
