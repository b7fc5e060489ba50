// Package oracle wraps the external high-temperature opacity interpolation
// program.
//
// The program takes four arguments (T6, R, X, Z) and prints one log opacity,
// or something that is not a number when the point lies outside its tables.
// Process runs it once per point with a timeout, Build compiles it before a
// run, and Cached puts a persistent response cache in front of any Oracle.
package oracle
