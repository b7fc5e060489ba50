package opacity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFormat marks a missing, unreadable, or structurally invalid input.
	ErrFormat = errors.New("format error")
	// ErrNoMatchingMassFraction marks a request whose (X, Z) pair has no exact
	// low-temperature table.
	ErrNoMatchingMassFraction = errors.New("no matching mass fraction")
	// ErrInvalidSpliceTemperature marks a splice point outside the accepted
	// band or absent from the merged temperature axis.
	ErrInvalidSpliceTemperature = errors.New("invalid splice temperature")
)

// Wrap builds an error that carries component and operation context while
// tagging it with marker for errors.Is classification. The marker should be
// one of the exported sentinels above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrFormat
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err carries one of the run-aborting markers.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFormat) ||
		errors.Is(err, ErrNoMatchingMassFraction) ||
		errors.Is(err, ErrInvalidSpliceTemperature)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "opacity failure"
	}
	return strings.Join(parts, ": ")
}
