package stats

// Kind identifies which engine produced a result.
type Kind string

const (
	KindZ Kind = "z"
	KindT Kind = "t"
)

// Result is the outcome of a single test run.
type Result struct {
	Kind      Kind    `json:"kind"`
	Tail      Tail    `json:"tail"`
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	// DegreesOfFreedom is zero for z-tests.
	DegreesOfFreedom float64 `json:"dof,omitempty"`
	StandardError    float64 `json:"standard_error"`
	Alpha            float64 `json:"alpha"`
	N1               int     `json:"n1"`
	N2               int     `json:"n2,omitempty"`
}

// TwoSample reports whether the result compares two samples.
func (r Result) TwoSample() bool {
	return r.N2 > 0
}

// Significant reports whether the p-value falls at or below alpha.
func (r Result) Significant() bool {
	return r.PValue <= r.Alpha
}
