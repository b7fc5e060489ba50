package tablefile

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"

	"opacsplice/internal/opacity"
)

// ErrOutOfRange marks a lookup outside the table's logT or logR coverage.
var ErrOutOfRange = errors.New("outside table range")

// Lookup interpolates bilinearly in (logT, logR).
type Lookup struct {
	logT []float64
	logR []float64
	rows []interp.PiecewiseLinear
}

// NewLookup fits one piecewise linear predictor along logR per logT row.
// Both axes must be strictly increasing.
func NewLookup(grid *opacity.Grid) (*Lookup, error) {
	if grid == nil {
		return nil, opacity.Wrap(opacity.ErrFormat, componentName, "lookup", "grid is nil", nil)
	}
	logT := grid.LogT()
	logR := grid.LogR()
	if len(logT) < 2 || len(logR) < 2 {
		return nil, opacity.Wrap(opacity.ErrFormat, componentName, "lookup",
			fmt.Sprintf("need at least two points per axis, have logT=%d logR=%d", len(logT), len(logR)), nil)
	}
	if !increasing(logT) {
		return nil, opacity.Wrap(opacity.ErrFormat, componentName, "lookup", "logT axis not strictly increasing", nil)
	}
	if !increasing(logR) {
		return nil, opacity.Wrap(opacity.ErrFormat, componentName, "lookup", "logR axis not strictly increasing", nil)
	}

	l := &Lookup{logT: logT, logR: logR, rows: make([]interp.PiecewiseLinear, len(logT))}
	for i := range logT {
		if err := l.rows[i].Fit(logR, grid.Values(i+1)); err != nil {
			return nil, opacity.Wrap(opacity.ErrFormat, componentName, "lookup",
				fmt.Sprintf("fit row logT=%g", logT[i]), err)
		}
	}
	return l, nil
}

// Eval returns the interpolated opacity at (logT, logR).
func (l *Lookup) Eval(logT, logR float64) (float64, error) {
	if !within(l.logT, logT) || !within(l.logR, logR) {
		return 0, fmt.Errorf("%w: logT=%g logR=%g (logT %g..%g, logR %g..%g)", ErrOutOfRange,
			logT, logR, l.logT[0], l.logT[len(l.logT)-1], l.logR[0], l.logR[len(l.logR)-1])
	}
	hi := sort.SearchFloat64s(l.logT, logT)
	if hi == 0 {
		return l.rows[0].Predict(logR), nil
	}
	lo := hi - 1
	below := l.rows[lo].Predict(logR)
	above := l.rows[hi].Predict(logR)
	frac := (logT - l.logT[lo]) / (l.logT[hi] - l.logT[lo])
	return below + frac*(above-below), nil
}

func within(axis []float64, v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	return v >= axis[0] && v <= axis[len(axis)-1]
}

func increasing(axis []float64) bool {
	for i := 1; i < len(axis); i++ {
		if !(axis[i] > axis[i-1]) {
			return false
		}
	}
	return true
}
