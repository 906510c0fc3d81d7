// Package dataset loads samples from inline lists and CSV files.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hypotest/hypotest/internal/stats"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	Column    string // Header name of the value column (default: last column)
	HasHeader bool   // Whether the first row is a header (default: true)
	Delimiter rune   // Field delimiter (default: ',')
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		HasHeader: true,
		Delimiter: ',',
	}
}

// missing cells are skipped rather than rejected.
var missing = map[string]bool{"": true, "NA": true, "NaN": true, "nan": true, "null": true}

// ParseList parses a comma- or whitespace-separated list of numbers.
func ParseList(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	return stats.ParseSample(fields)
}

// Load resolves a sample argument. "@path.csv" or "@path.csv:column" loads a
// CSV column; anything else is parsed as an inline list.
func Load(arg string) ([]float64, error) {
	if !strings.HasPrefix(arg, "@") {
		return ParseList(arg)
	}

	path := arg[1:]
	opts := DefaultCSVOptions()
	if i := strings.LastIndex(path, ":"); i > 0 && !strings.Contains(path[i:], "/") && !strings.Contains(path[i:], `\`) {
		path, opts.Column = path[:i], path[i+1:]
	}
	return LoadCSV(path, opts)
}

// LoadCSV loads one column of a CSV file.
func LoadCSV(filename string, opts *CSVOptions) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads one column of CSV data from r.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) ([]float64, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	valueIdx := -1
	if opts.HasHeader {
		header, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("csv is empty")
			}
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		for i, h := range header {
			if strings.TrimSpace(h) == opts.Column {
				valueIdx = i
			}
		}
		if valueIdx == -1 {
			if opts.Column != "" {
				return nil, fmt.Errorf("column %q not found", opts.Column)
			}
			valueIdx = len(header) - 1
		}
	}

	var tokens []string
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}

		idx := valueIdx
		if idx == -1 {
			idx = len(record) - 1
		}
		if idx >= len(record) {
			continue
		}
		cell := strings.TrimSpace(record[idx])
		if missing[cell] {
			continue
		}
		tokens = append(tokens, cell)
	}

	return stats.ParseSample(tokens)
}
