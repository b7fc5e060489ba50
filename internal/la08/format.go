package la08

import (
	"fmt"

	"opacsplice/internal/opacity"
)

// Format describes the LA08 bulk file layout.
type Format struct {
	RowsPerTable int
	LogR         opacity.AxisSpec
}

const (
	logTColumn       = 2
	firstValueColumn = 3
	// setsColumns is the number of sets-file columns kept per table,
	// starting at column 1.
	setsColumns = 4
)

// DefaultFormat is the published LA08 layout: 18 logT rows per table and
// logR from -7.0 to 1.0 in steps of 0.5.
var DefaultFormat = Format{
	RowsPerTable: 18,
	LogR:         opacity.AxisSpec{Min: -7, Max: 1, Step: 0.5},
}

// Validate checks that the layout is usable.
func (f Format) Validate() error {
	if f.RowsPerTable <= 0 {
		return fmt.Errorf("la08 format: rows per table must be positive")
	}
	if f.LogR.Len() == 0 {
		return fmt.Errorf("la08 format: empty logR axis")
	}
	return nil
}

// Columns returns the bulk-file width implied by the logR axis.
func (f Format) Columns() int {
	return firstValueColumn + f.LogR.Len()
}
