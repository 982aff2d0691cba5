package fileio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ReadCSV loads a point cloud from a CSV file. The header must contain x,
// y and z columns (case-insensitive, any order); other columns are
// ignored.
func ReadCSV(path string) ([]r3.Vec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var idx [3]int
	for i, name := range []string{"x", "y", "z"} {
		c, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("csv file must contain columns x, y, z (missing %q)", name)
		}
		idx[i] = c
	}

	var points []r3.Vec
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line++
		var vals [3]float64
		for i, c := range idx {
			if c >= len(rec) {
				return nil, fmt.Errorf("%s:%d: short record", path, line)
			}
			vals[i], err = strconv.ParseFloat(strings.TrimSpace(rec[c]), 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: bad value %q", path, line, rec[c])
			}
		}
		points = append(points, r3.Vec{X: vals[0], Y: vals[1], Z: vals[2]})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%s: no data rows", path)
	}
	return points, nil
}
