// Package compare renders a visual check of a spliced table against the
// low-temperature source it was built from.
package compare
