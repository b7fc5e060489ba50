// Package main hosts the opacsplice CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration, applies command-line
// overrides, and hands the result to the pipeline and inspection packages.
// Keep this package lean: behaviour lives in internal packages and is only
// surfaced here through commands and flags.
package main
