// Package oraclecache persists interpolation program responses in SQLite.
//
// Each row maps the exact argument text of one oracle call to either a value
// or a recorded range miss, so repeated splices of the same composition skip
// thousands of process launches. Timeouts and process failures are never
// stored.
package oraclecache
