package tablefile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"opacsplice/internal/opacity"
)

const headerLines = 2

// Read parses a spliced table written by Write.
func Read(path string) (*opacity.Grid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, opacity.Wrap(opacity.ErrFormat, componentName, "open", path, err)
	}
	defer file.Close()

	grid, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("read spliced table %s: %w", path, err)
	}
	return grid, nil
}

// Decode skips the two header lines and parses every following non-blank
// line as a grid row. All rows must have the same number of cells.
func Decode(r io.Reader) (*opacity.Grid, error) {
	var (
		data  []float64
		width int
		rows  int
		line  int
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line++
		if line <= headerLines {
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if rows == 0 {
			width = len(fields)
		} else if len(fields) != width {
			return nil, opacity.Wrap(opacity.ErrFormat, componentName, "decode",
				fmt.Sprintf("line %d has %d cells, expected %d", line, len(fields), width), nil)
		}
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, opacity.Wrap(opacity.ErrFormat, componentName, "decode",
					fmt.Sprintf("line %d cell %d", line, i+1), err)
			}
			data = append(data, v)
		}
		rows++
	}
	if err := scanner.Err(); err != nil {
		return nil, opacity.Wrap(opacity.ErrFormat, componentName, "decode", "scan", err)
	}
	if rows < 2 || width < 2 {
		return nil, opacity.Wrap(opacity.ErrFormat, componentName, "decode",
			fmt.Sprintf("table has %d rows of %d cells, need at least 2x2", rows, width), nil)
	}
	return opacity.GridFromMatrix(mat.NewDense(rows, width, data))
}
