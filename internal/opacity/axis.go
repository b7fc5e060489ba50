package opacity

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// AxisSpec describes an evenly spaced axis from Min to Max inclusive.
type AxisSpec struct {
	Min  float64
	Max  float64
	Step float64
}

// Len returns the number of points on the axis.
func (a AxisSpec) Len() int {
	if a.Step <= 0 || a.Max < a.Min {
		return 0
	}
	return int(math.Round((a.Max-a.Min)/a.Step)) + 1
}

// Values synthesizes the axis points.
func (a AxisSpec) Values() ([]float64, error) {
	n := a.Len()
	switch {
	case n == 0:
		return nil, fmt.Errorf("invalid axis spec min=%v max=%v step=%v", a.Min, a.Max, a.Step)
	case n == 1:
		return []float64{a.Min}, nil
	}
	out := make([]float64, n)
	floats.Span(out, a.Min, a.Min+float64(n-1)*a.Step)
	return out, nil
}

// MergeAxes returns the sorted union of the inputs with exact duplicates
// removed. The result is strictly increasing.
func MergeAxes(axes ...[]float64) []float64 {
	total := 0
	for _, axis := range axes {
		total += len(axis)
	}
	merged := make([]float64, 0, total)
	for _, axis := range axes {
		merged = append(merged, axis...)
	}
	slices.Sort(merged)
	return slices.Compact(merged)
}

// IndexOf returns the position of v in axis using exact equality.
func IndexOf(axis []float64, v float64) (int, bool) {
	for i, x := range axis {
		if x == v {
			return i, true
		}
	}
	return -1, false
}
