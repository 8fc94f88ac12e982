// Package dataset loads ddG prediction tables from CSV files.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/verte-zerg/ddgheat/internal/model"
)

const (
	// ColumnMutation holds codes of the form WT_CHAIN_POS_MUT.
	ColumnMutation = "mutation"
	// ColumnDDG holds the predicted stability change.
	ColumnDDG = "ddG_pred"
)

// naValues are cell texts read as a missing value, the same set pandas uses.
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

var (
	// ErrMissingColumn is returned when a required header column is absent.
	ErrMissingColumn = errors.New("missing column")
	// ErrEmptyDataset is returned when there are no rows to plot.
	ErrEmptyDataset = errors.New("empty dataset")
)

// Load reads prediction rows from the CSV file at path.
func Load(path string) ([]model.Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only input.
			_ = cerr
		}
	}()
	rows, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// Read parses prediction rows from CSV data with a header row.
func Read(r io.Reader) ([]model.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no header row", ErrEmptyDataset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	mutCol, ddgCol, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []model.Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}
		if mutCol >= len(record) || ddgCol >= len(record) {
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d", line, maxInt(mutCol, ddgCol)+1, len(record))
		}
		ddg, missing, err := parseDDG(record[ddgCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, model.Row{
			Line:    line,
			Code:    strings.TrimSpace(record[mutCol]),
			DDG:     ddg,
			Missing: missing,
		})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrEmptyDataset)
	}
	return rows, nil
}

// parseDDG reads one ddG cell. NA-like text, NaN and infinities are missing.
func parseDDG(field string) (float64, bool, error) {
	raw := strings.TrimSpace(field)
	if _, ok := naValues[raw]; ok {
		return 0, true, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s value %q", ColumnDDG, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true, nil
	}
	return v, false, nil
}

func locateColumns(header []string) (int, int, error) {
	mutCol, ddgCol := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		switch name {
		case ColumnMutation:
			if mutCol < 0 {
				mutCol = i
			}
		case ColumnDDG:
			if ddgCol < 0 {
				ddgCol = i
			}
		}
	}
	if mutCol < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMissingColumn, ColumnMutation)
	}
	if ddgCol < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMissingColumn, ColumnDDG)
	}
	return mutCol, ddgCol, nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
