package opal

import (
	"strconv"
	"strings"

	"opacsplice/internal/opacity"
)

// ScanFractions extracts X, Y, and Z from a table header line. Each marker
// ("X=", "Y=", "Z=") is followed by a fixed-width numeric field. A missing
// marker or an unparsable field leaves that fraction unknown.
func ScanFractions(line string, width int) opacity.MassFractions {
	if width <= 0 {
		width = DefaultFormat.FractionWidth
	}
	return opacity.MassFractions{
		X: scanField(line, "X=", width),
		Y: scanField(line, "Y=", width),
		Z: scanField(line, "Z=", width),
	}
}

func scanField(line, marker string, width int) opacity.Fraction {
	var found opacity.Fraction
	// Later occurrences override earlier ones.
	for offset := 0; offset < len(line); {
		idx := strings.Index(line[offset:], marker)
		if idx < 0 {
			break
		}
		start := offset + idx + len(marker)
		end := min(start+width, len(line))
		if v, err := strconv.ParseFloat(strings.TrimSpace(line[start:end]), 64); err == nil {
			found = opacity.KnownFraction(v)
		} else {
			found = opacity.Fraction{}
		}
		offset = start
	}
	return found
}
