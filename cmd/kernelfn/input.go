package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dshills/kernelfn/core"
)

// loadPointSet reads a point set from a .json file (array of rows) or a
// .csv file (one row per line, optional header).
func loadPointSet(path string, precision core.Precision) (*core.PointSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var rows [][]float64
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		rows, err = readJSONRows(file)
	case ".csv":
		rows, err = readCSVRows(file)
	default:
		return nil, fmt.Errorf("unsupported input format %q (want .json or .csv)", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	ps, err := core.PointSetFromRows(rows, precision)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ps, nil
}

func readJSONRows(r io.Reader) ([][]float64, error) {
	var rows [][]core.Number
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, err
	}
	return core.NumberRows(rows), nil
}

func readCSVRows(r io.Reader) ([][]float64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are reported by the point set
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	rows := make([][]float64, 0, len(records))
	for i, record := range records {
		row, err := parseRecord(record)
		if err != nil {
			if i == 0 {
				continue // header
			}
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRecord(record []string) ([]float64, error) {
	row := make([]float64, len(record))
	for j, field := range record {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", j+1, err)
		}
		row[j] = v
	}
	return row, nil
}
