package opal

import "fmt"

// Format describes the fixed layout of an OPAL multi-table file. Offsets
// are relative to the table header line and all line indexes are 0-based.
type Format struct {
	Tables          int
	LogTRows        int
	LogRCols        int
	LinesPerTable   int
	FirstHeaderLine int
	LogRHeaderLine  int
	FirstDataLine   int
	FractionWidth   int
}

// DefaultFormat is the layout of the GN93 OPAL table distribution.
var DefaultFormat = Format{
	Tables:          126,
	LogTRows:        70,
	LogRCols:        19,
	LinesPerTable:   77,
	FirstHeaderLine: 241,
	LogRHeaderLine:  4,
	FirstDataLine:   6,
	FractionWidth:   6,
}

// Validate checks that the layout is self-consistent.
func (f Format) Validate() error {
	switch {
	case f.Tables <= 0:
		return fmt.Errorf("opal format: tables must be positive")
	case f.LogTRows <= 0 || f.LogRCols <= 0:
		return fmt.Errorf("opal format: table dimensions must be positive")
	case f.FirstHeaderLine < 0:
		return fmt.Errorf("opal format: first header line must be >= 0")
	case f.LogRHeaderLine <= 0 || f.FirstDataLine <= f.LogRHeaderLine:
		return fmt.Errorf("opal format: data rows must follow the logR header")
	case f.FirstDataLine+f.LogTRows > f.LinesPerTable:
		return fmt.Errorf("opal format: %d rows from offset %d overflow %d lines per table",
			f.LogTRows, f.FirstDataLine, f.LinesPerTable)
	case f.FractionWidth <= 0:
		return fmt.Errorf("opal format: fraction width must be positive")
	}
	return nil
}

// requiredLines is the minimum line count for the last table to be complete.
func (f Format) requiredLines() int {
	last := f.FirstHeaderLine + (f.Tables-1)*f.LinesPerTable
	return last + f.FirstDataLine + f.LogTRows
}
