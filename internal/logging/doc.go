// Package logging assembles the structured slog loggers used by opacsplice.
//
// It owns the console and JSON handlers, level parsing, and the attribute
// helpers every package uses so log lines share one shape. A no-op logger is
// provided for tests and for readers invoked without a logger.
package logging
