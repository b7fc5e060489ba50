package tablefile

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"opacsplice/internal/fileutil"
	"opacsplice/internal/opacity"
)

const (
	cellWidth     = 7
	logRIndent    = 78
	logRLabel     = "logR"
	logTLabel     = "logT"
	fileMode      = 0o644
	componentName = "tablefile"
)

// Write renders grid to path. The table is written to a temporary file in
// the same directory and renamed into place, so a failure never leaves a
// partial table behind.
func Write(path string, grid *opacity.Grid) error {
	if grid == nil {
		return opacity.Wrap(opacity.ErrFormat, componentName, "write", "grid is nil", nil)
	}
	err := fileutil.WriteAtomic(path, fileMode, func(w io.Writer) error {
		return Encode(w, grid)
	})
	if err != nil {
		return fmt.Errorf("write spliced table %s: %w", path, err)
	}
	return nil
}

// Encode writes the two header lines followed by every grid row.
func Encode(w io.Writer, grid *opacity.Grid) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Repeat(" ", logRIndent))
	bw.WriteString(logRLabel)
	bw.WriteByte('\n')
	bw.WriteString(center(logTLabel, cellWidth))
	bw.WriteByte('\n')
	for i := range grid.Rows() {
		for j := range grid.Cols() {
			bw.WriteString(FormatCell(grid.At(i, j)))
			bw.WriteByte(' ')
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// FormatCell renders v as a signed three-decimal number centred in a
// seven character field. Non-finite values print as +nan, +inf, or -inf.
func FormatCell(v float64) string {
	s := fmt.Sprintf("%+.3f", v)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		s = strings.ToLower(s)
	}
	return center(s, cellWidth)
}

// center pads s to width, putting the smaller half of the padding on the
// left. Strings at least width long are returned unchanged.
func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
