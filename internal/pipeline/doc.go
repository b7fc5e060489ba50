// Package pipeline runs one end-to-end splice: it checks the environment,
// reads both source tables, selects the requested composition, fills the
// high-temperature region through the oracle, and writes the spliced table.
//
// A run holds an exclusive lock on the output path for its whole duration,
// and every fatal error is returned before the output file is replaced.
package pipeline
