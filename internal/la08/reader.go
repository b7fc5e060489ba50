package la08

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"opacsplice/internal/logging"
	"opacsplice/internal/opacity"
)

const component = "la08"

// Table is one low-temperature composition table.
type Table struct {
	Grid      *opacity.Grid
	Fractions opacity.MassFractions
	// Sets holds sets-file columns 1 through 4 verbatim; X, Y, and Z are
	// Sets[1], Sets[2], and Sets[3].
	Sets [setsColumns]float64
}

// TableSet is the ordered collection of low-temperature tables. All tables
// share LogR.
type TableSet struct {
	Tables []Table
	LogR   []float64
}

// Len returns the number of tables.
func (s *TableSet) Len() int { return len(s.Tables) }

// Options tunes Read.
type Options struct {
	Format Format
	Logger *slog.Logger
}

// Read parses the bulk opacity file and the sets file. Any failure is tagged
// with opacity.ErrFormat and no partial set is returned.
func Read(opacPath, setsPath string, opts Options) (*TableSet, error) {
	format := opts.Format
	if format == (Format{}) {
		format = DefaultFormat
	}
	if err := format.Validate(); err != nil {
		return nil, opacity.Wrap(opacity.ErrFormat, component, "read", "", err)
	}
	logger := logging.NewComponentLogger(opts.Logger, component)

	logR, err := format.LogR.Values()
	if err != nil {
		return nil, opacity.Wrap(opacity.ErrFormat, component, "read", "logR axis", err)
	}

	bulk, err := readMatrix(opacPath)
	if err != nil {
		return nil, opacity.Wrap(opacity.ErrFormat, component, "read", fmt.Sprintf("opacity file %s", opacPath), err)
	}
	rows, cols := bulk.Dims()
	if cols != format.Columns() {
		return nil, opacity.Wrap(opacity.ErrFormat, component, "read",
			fmt.Sprintf("%s has %d columns, expected %d", opacPath, cols, format.Columns()), nil)
	}
	if rows%format.RowsPerTable != 0 {
		return nil, opacity.Wrap(opacity.ErrFormat, component, "read",
			fmt.Sprintf("%s has %d rows, not a multiple of %d", opacPath, rows, format.RowsPerTable), nil)
	}
	nTables := rows / format.RowsPerTable

	sets, err := readMatrix(setsPath)
	if err != nil {
		return nil, opacity.Wrap(opacity.ErrFormat, component, "read", fmt.Sprintf("sets file %s", setsPath), err)
	}
	setRows, setCols := sets.Dims()
	if setRows != nTables {
		return nil, opacity.Wrap(opacity.ErrFormat, component, "read",
			fmt.Sprintf("%s lists %d compositions for %d tables", setsPath, setRows, nTables), nil)
	}
	if setCols < 1+setsColumns {
		return nil, opacity.Wrap(opacity.ErrFormat, component, "read",
			fmt.Sprintf("%s has %d columns, expected at least %d", setsPath, setCols, 1+setsColumns), nil)
	}

	set := &TableSet{Tables: make([]Table, 0, nTables), LogR: logR}
	for t := range nTables {
		block := bulk.Slice(t*format.RowsPerTable, (t+1)*format.RowsPerTable, logTColumn, cols)
		grid, err := gridFromBlock(block, logR)
		if err != nil {
			return nil, opacity.Wrap(opacity.ErrFormat, component, "read", fmt.Sprintf("table %d", t+1), err)
		}
		table := Table{Grid: grid}
		for c := range setsColumns {
			table.Sets[c] = sets.At(t, 1+c)
		}
		table.Fractions = opacity.NewMassFractions(table.Sets[1], table.Sets[2], table.Sets[3])
		set.Tables = append(set.Tables, table)
	}

	logger.Info("la08 tables read",
		logging.String("path", opacPath),
		logging.Int("tables", set.Len()),
		logging.Int("logr_points", len(logR)),
	)
	return set, nil
}

// gridFromBlock copies a table block whose column 0 is logT into a grid
// carrying the synthesized logR header.
func gridFromBlock(block mat.Matrix, logR []float64) (*opacity.Grid, error) {
	rows, cols := block.Dims()
	grid, err := opacity.NewGrid(rows, len(logR))
	if err != nil {
		return nil, err
	}
	if cols != grid.Cols() {
		return nil, fmt.Errorf("block has %d columns, grid needs %d", cols, grid.Cols())
	}
	for j, v := range logR {
		grid.Set(0, j+1, v)
	}
	for i := range rows {
		for j := range cols {
			grid.Set(i+1, j, block.At(i, j))
		}
	}
	return grid, nil
}

// readMatrix parses a whitespace-separated numeric matrix. Blank lines and
// lines starting with '#' are skipped; every row must have the same width.
func readMatrix(path string) (*mat.Dense, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var (
		data  []float64
		width int
		rows  int
		line  int
	)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if rows == 0 {
			width = len(fields)
		} else if len(fields) != width {
			return nil, fmt.Errorf("line %d has %d columns, expected %d", line, len(fields), width)
		}
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %d: %w", line, i+1, err)
			}
			data = append(data, v)
		}
		rows++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("no numeric rows")
	}
	return mat.NewDense(rows, width, data), nil
}
