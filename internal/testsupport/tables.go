package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"opacsplice/internal/la08"
	"opacsplice/internal/opacity"
	"opacsplice/internal/opal"
)

// OPALTable describes one synthetic OPAL block. Rows hold logT followed by
// the opacity values and may be shorter than the logR header.
type OPALTable struct {
	X, Y, Z float64
	LogR    []float64
	Rows    [][]float64
}

// WriteOPAL renders tables in the OPAL fixed layout described by format.
func WriteOPAL(t testing.TB, path string, format opal.Format, tables []OPALTable) {
	t.Helper()

	var lines []string
	for i := 0; i < format.FirstHeaderLine; i++ {
		lines = append(lines, fmt.Sprintf(" preamble line %d", i+1))
	}
	for n, table := range tables {
		block := make([]string, format.LinesPerTable)
		block[0] = fmt.Sprintf("TABLE # %2d  X=%.4f Y=%.4f Z=%.4f dXc=0.0000 dXo=0.0000", n+1, table.X, table.Y, table.Z)
		block[2] = "                                   log R"
		block[format.LogRHeaderLine] = "logT " + joinFloats(table.LogR)
		for i, row := range table.Rows {
			block[format.FirstDataLine+i] = "  " + joinFloats(row)
		}
		lines = append(lines, block...)
	}
	writeLines(t, path, lines)
}

// LA08Table describes one synthetic low-temperature table.
type LA08Table struct {
	X, Y, Z float64
	LogT    []float64
	Values  [][]float64
}

// WriteLA08 renders the bulk opacity block and the companion sets file.
func WriteLA08(t testing.TB, opacPath, setsPath string, tables []LA08Table) {
	t.Helper()

	var bulk, sets []string
	for n, table := range tables {
		for i, logT := range table.LogT {
			fields := []string{strconv.Itoa(n + 1), strconv.Itoa(i + 1), formatFloat(logT)}
			for _, v := range table.Values[i] {
				fields = append(fields, formatFloat(v))
			}
			bulk = append(bulk, strings.Join(fields, " "))
		}
		sets = append(sets, strings.Join([]string{
			strconv.Itoa(n + 1), "0", formatFloat(table.X), formatFloat(table.Y), formatFloat(table.Z),
		}, " "))
	}
	writeLines(t, opacPath, bulk)
	writeLines(t, setsPath, sets)
}

// SmallLA08Format is a reduced low-temperature layout for fixtures: four
// logT rows per table and logR -2..0 in steps of 1.
var SmallLA08Format = la08.Format{
	RowsPerTable: 4,
	LogR:         opacity.AxisSpec{Min: -2, Max: 0, Step: 1},
}

// SmallOPALFormat is a reduced OPAL layout for fixtures.
var SmallOPALFormat = opal.Format{
	Tables:          2,
	LogTRows:        4,
	LogRCols:        3,
	LinesPerTable:   12,
	FirstHeaderLine: 3,
	LogRHeaderLine:  4,
	FirstDataLine:   6,
	FractionWidth:   6,
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, " ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeLines(t testing.TB, path string, lines []string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
