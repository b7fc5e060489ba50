package opacity

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// Fraction is a mass fraction that a source may or may not have provided.
type Fraction struct {
	Value float64
	Known bool
}

// KnownFraction returns a Fraction holding v.
func KnownFraction(v float64) Fraction {
	return Fraction{Value: v, Known: true}
}

func (f Fraction) String() string {
	if !f.Known {
		return "?"
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}

// MassFractions is the hydrogen (X), helium (Y), and metal (Z) composition
// associated with one source table.
type MassFractions struct {
	X Fraction
	Y Fraction
	Z Fraction
}

// NewMassFractions builds a fully known composition.
func NewMassFractions(x, y, z float64) MassFractions {
	return MassFractions{X: KnownFraction(x), Y: KnownFraction(y), Z: KnownFraction(z)}
}

// SumTolerance is how far X+Y+Z may stray from one before a composition is
// reported as unbalanced.
const SumTolerance = 1e-3

// Complete reports whether all three fractions are known.
func (m MassFractions) Complete() bool {
	return m.X.Known && m.Y.Known && m.Z.Known
}

// Sum adds the known fractions.
func (m MassFractions) Sum() float64 {
	parts := make([]float64, 0, 3)
	for _, f := range []Fraction{m.X, m.Y, m.Z} {
		if f.Known {
			parts = append(parts, f.Value)
		}
	}
	return floats.Sum(parts)
}

// Normalized reports whether a complete composition sums to one within tol.
func (m MassFractions) Normalized(tol float64) bool {
	if !m.Complete() {
		return false
	}
	return scalar.EqualWithinAbs(m.Sum(), 1, tol)
}

// Unbalanced reports a complete composition whose fractions do not sum to
// one within SumTolerance.
func (m MassFractions) Unbalanced() bool {
	return m.Complete() && !m.Normalized(SumTolerance)
}

// MatchesXZ reports an exact match on X and Z. Unknown fractions never match.
func (m MassFractions) MatchesXZ(x, z float64) bool {
	return m.X.Known && m.Z.Known && m.X.Value == x && m.Z.Value == z
}

func (m MassFractions) String() string {
	return fmt.Sprintf("X=%s Y=%s Z=%s", m.X, m.Y, m.Z)
}
