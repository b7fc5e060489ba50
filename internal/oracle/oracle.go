package oracle

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrRangeMiss marks a point for which the oracle has no opacity. It is
	// not fatal; callers substitute a sentinel.
	ErrRangeMiss = errors.New("oracle range miss")
	// ErrProcess marks an oracle invocation that failed to run or exited
	// with an error.
	ErrProcess = errors.New("oracle process failure")
)

// Query is one interpolation request. T6 is temperature in millions of
// kelvin; R is density divided by T6 cubed.
type Query struct {
	T6 float64
	R  float64
	X  float64
	Z  float64
}

// NewQuery converts grid coordinates into oracle arguments.
func NewQuery(logT, logR, x, z float64) Query {
	return Query{
		T6: 1e-6 * math.Pow(10, logT),
		R:  math.Pow(10, logR),
		X:  x,
		Z:  z,
	}
}

// Args renders the command-line arguments in the order the program expects.
func (q Query) Args() []string {
	return []string{
		strconv.FormatFloat(q.T6, 'e', 6, 64),
		strconv.FormatFloat(q.R, 'e', 6, 64),
		strconv.FormatFloat(q.X, 'g', -1, 64),
		strconv.FormatFloat(q.Z, 'g', -1, 64),
	}
}

// Key identifies the query by its exact argument text, which is all the
// program ever sees.
func (q Query) Key() string {
	return strings.Join(q.Args(), " ")
}

// Oracle answers interpolation queries.
type Oracle interface {
	Query(ctx context.Context, q Query) (float64, error)
}

// Func adapts a function to the Oracle interface.
type Func func(ctx context.Context, q Query) (float64, error)

// Query calls f.
func (f Func) Query(ctx context.Context, q Query) (float64, error) {
	return f(ctx, q)
}

// ParseResponse interprets program output. Anything other than a single
// finite number is a range miss.
func ParseResponse(output string) (float64, error) {
	text := strings.TrimSpace(output)
	if text == "" {
		return 0, errors.Join(ErrRangeMiss, errors.New("empty response"))
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, errors.Join(ErrRangeMiss, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Join(ErrRangeMiss, errors.New("non-finite response "+text))
	}
	return v, nil
}
