// Package textutil formats the short human-facing labels used by plots,
// inspection tables, and check reports.
package textutil
