package la08

import (
	"fmt"

	"opacsplice/internal/opacity"
)

// FindIndex returns the position of the first table whose X and Z equal the
// request exactly. There is no tolerance and no interpolation between
// compositions; index 0 is a valid result.
func FindIndex(set *TableSet, x, z float64) (int, error) {
	if set != nil {
		for i, table := range set.Tables {
			if table.Fractions.MatchesXZ(x, z) {
				return i, nil
			}
		}
	}
	return -1, opacity.Wrap(opacity.ErrNoMatchingMassFraction, component, "match",
		fmt.Sprintf("no low-temperature table for X=%v Z=%v", x, z), nil)
}
