// Package ingest reads tabular plan data into the compiler's table model.
// The first record of every source is treated as the header row.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonasRaschidie/designer.opentrons.com/pkg/protocol/models"
)

// ErrUnsupportedFormat indicates the input file extension is not a
// supported table format.
var ErrUnsupportedFormat = errors.New("unsupported table format")

// ReadTable reads a table from path, dispatching on the file extension.
// CSV files are read directly; .xlsx/.xlsm go through excelize. The sheet
// argument selects an Excel sheet by name and is ignored for CSV; empty
// means the first sheet.
func ReadTable(path, sheet string) (models.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(path)
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, sheet)
	default:
		return models.Table{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ReadCSV reads a comma-separated table with a header row.
func ReadCSV(path string) (models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Table{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return models.Table{}, fmt.Errorf("read csv %s: %w", path, err)
	}
	return tableFromRecords(records), nil
}

// ReadXLSX reads one sheet of an Excel workbook as a table with a header
// row. An empty sheet name selects the workbook's first sheet.
func ReadXLSX(path, sheet string) (models.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return models.Table{}, err
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return models.Table{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return tableFromRecords(records), nil
}

func tableFromRecords(records [][]string) models.Table {
	if len(records) == 0 {
		return models.Table{}
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(name)
	}

	rows := make([]models.Row, 0, len(records)-1)
	for i, record := range records[1:] {
		values := make(map[string]interface{}, len(header))
		for j, cell := range record {
			if j >= len(header) || cell == "" {
				continue
			}
			values[header[j]] = parseValue(cell)
		}
		rows = append(rows, models.Row{Index: i, Values: values})
	}
	return models.Table{Columns: header, Rows: rows}
}

// parseValue parses numeric cells as float64 and leaves everything else as
// a string. Volumes are grouped by exact value downstream, so integer and
// decimal spellings of the same number must land in one representation.
func parseValue(s string) interface{} {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return f
	}
	return s
}
