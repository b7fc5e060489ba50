package opal

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"opacsplice/internal/logging"
	"opacsplice/internal/opacity"
)

const component = "opal"

// Table is one composition block of the OPAL file.
type Table struct {
	Grid      *opacity.Grid
	Fractions opacity.MassFractions
	// PaddedCells counts zero cells appended to short rows.
	PaddedCells int
}

// TableSet is the ordered collection of OPAL tables.
type TableSet struct {
	Tables []Table
}

// Len returns the number of tables.
func (s *TableSet) Len() int { return len(s.Tables) }

// LogT returns the shared logT axis, taken from the first table.
func (s *TableSet) LogT() []float64 {
	if len(s.Tables) == 0 {
		return nil
	}
	return s.Tables[0].Grid.LogT()
}

// PaddedCells sums padding across all tables.
func (s *TableSet) PaddedCells() int {
	total := 0
	for _, t := range s.Tables {
		total += t.PaddedCells
	}
	return total
}

// Options tunes Read.
type Options struct {
	Format Format
	Logger *slog.Logger
}

// Read parses the OPAL file at path. Any failure is tagged with
// opacity.ErrFormat and no partial set is returned.
func Read(path string, opts Options) (*TableSet, error) {
	format := opts.Format
	if format == (Format{}) {
		format = DefaultFormat
	}
	if err := format.Validate(); err != nil {
		return nil, opacity.Wrap(opacity.ErrFormat, component, "read", "", err)
	}
	logger := logging.NewComponentLogger(opts.Logger, component)

	lines, err := readLines(path)
	if err != nil {
		return nil, opacity.Wrap(opacity.ErrFormat, component, "read", fmt.Sprintf("open %s", path), err)
	}
	if need := format.requiredLines(); len(lines) < need {
		return nil, opacity.Wrap(opacity.ErrFormat, component, "read",
			fmt.Sprintf("%s has %d lines, layout needs %d", path, len(lines), need), nil)
	}

	set := &TableSet{Tables: make([]Table, 0, format.Tables)}
	for t := 0; t < format.Tables; t++ {
		header := format.FirstHeaderLine + t*format.LinesPerTable
		table, err := parseTable(lines, header, format)
		if err != nil {
			return nil, opacity.Wrap(opacity.ErrFormat, component, "read", fmt.Sprintf("table %d", t+1), err)
		}
		if table.PaddedCells > 0 {
			logger.Debug("padded short rows",
				logging.Int("table", t+1),
				logging.Int("padded_cells", table.PaddedCells),
			)
		}
		if table.Fractions.Unbalanced() {
			logger.Debug("mass fractions do not sum to one",
				logging.Int("table", t+1),
				logging.String("fractions", table.Fractions.String()),
				logging.Float64("sum", table.Fractions.Sum()),
			)
		}
		set.Tables = append(set.Tables, table)
	}

	logger.Info("opal tables read",
		logging.String("path", path),
		logging.Int("tables", set.Len()),
		logging.Int("padded_cells", set.PaddedCells()),
	)
	return set, nil
}

func parseTable(lines []string, header int, format Format) (Table, error) {
	grid, err := opacity.NewGrid(format.LogTRows, format.LogRCols)
	if err != nil {
		return Table{}, err
	}
	table := Table{
		Grid:      grid,
		Fractions: ScanFractions(lines[header], format.FractionWidth),
	}

	logR, err := parseHeader(lines[header+format.LogRHeaderLine], format.LogRCols)
	if err != nil {
		return Table{}, fmt.Errorf("logR header: %w", err)
	}
	for j, v := range logR {
		grid.Set(0, j+1, v)
	}

	for i := 0; i < format.LogTRows; i++ {
		row, padded, err := ParseRow(lines[header+format.FirstDataLine+i], format.LogRCols+1)
		if err != nil {
			return Table{}, fmt.Errorf("logT row %d: %w", i+1, err)
		}
		if err := grid.SetRow(i+1, row); err != nil {
			return Table{}, err
		}
		table.PaddedCells += padded
	}
	return table, nil
}

// ParseRow splits a data line into exactly width numbers. Short rows are
// padded with zeros and the number of appended cells is returned.
func ParseRow(line string, width int) ([]float64, int, error) {
	fields := strings.Fields(line)
	switch {
	case len(fields) == 0:
		return nil, 0, fmt.Errorf("row is empty")
	case len(fields) > width:
		return nil, 0, fmt.Errorf("row has %d fields, expected at most %d", len(fields), width)
	}
	row := make([]float64, width)
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("field %d: %w", i+1, err)
		}
		row[i] = v
	}
	return row, width - len(fields), nil
}

// parseHeader reads the logR values that follow the row label.
func parseHeader(line string, width int) ([]float64, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, fmt.Errorf("no logR values")
	}
	fields = fields[1:]
	if len(fields) > width {
		return nil, fmt.Errorf("%d logR values, expected at most %d", len(fields), width)
	}
	out := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("logR value %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
