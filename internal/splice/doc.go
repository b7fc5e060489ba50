// Package splice joins a low-temperature table and the high-temperature
// interpolation oracle into one opacity grid.
//
// The two sources use different logT spacing, so the splicer first merges
// both axes into one strictly increasing axis. Rows below the splice
// temperature are copied from the matched low-temperature table; every cell
// at and above it is computed by the oracle, with a sentinel written where
// the oracle has no answer.
package splice
