// Package opacity defines the shared data model of the splice pipeline.
//
// Grid is the rectangular logT × logR table every reader produces and the
// splicer and writer consume: row 0 carries the logR header, column 0 the
// logT axis, and the remaining cells hold log Rosseland mean opacities.
// MassFractions records the (X, Y, Z) composition of a source table with
// explicit "unknown" markers for fields a source omitted.
//
// The package also owns the error taxonomy. Readers, the matcher, and the
// splicer tag fatal failures with ErrFormat, ErrNoMatchingMassFraction, or
// ErrInvalidSpliceTemperature through Wrap so callers can classify them with
// errors.Is.
package opacity
