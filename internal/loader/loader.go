// Package loader reads opportunity snapshots from CSV and XLSX files.
package loader

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/forecast-cli/internal/model"
)

// Load reads a snapshot file, dispatching on extension (.csv or .xlsx).
func Load(path string) ([]model.Opportunity, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return LoadCSV(path)
	case ".xlsx":
		return LoadXLSX(path)
	default:
		return nil, eris.Errorf("loader: unsupported file type %q (want .csv or .xlsx)", ext)
	}
}

// LoadCSV reads opportunities from a CSV file with a header row. A record
// that fails schema or date validation aborts the load; bad rows are never
// silently dropped.
func LoadCSV(path string) ([]model.Opportunity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open csv %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "loader: read csv")
	}
	if len(records) < 2 {
		return nil, nil // header only or empty
	}

	return parseRows(records[0], records[1:])
}

// LoadXLSX reads opportunities from the first sheet of an XLSX workbook,
// expecting the same header row as the CSV contract.
func LoadXLSX(path string) ([]model.Opportunity, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("loader: xlsx %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	var rows [][]string
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = c.String()
		}
		rows = append(rows, cells)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	return parseRows(rows[0], rows[1:])
}

func parseRows(header []string, rows [][]string) ([]model.Opportunity, error) {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.ToLower(strings.TrimSpace(h))
	}

	opps := make([]model.Opportunity, 0, len(rows))
	for i, row := range rows {
		rec := make(map[string]string, len(cols))
		for j, col := range cols {
			if j < len(row) {
				rec[col] = row[j]
			}
		}

		o, err := model.ParseRecord(rec)
		if err != nil {
			// +2: header row plus 1-based numbering.
			return nil, eris.Wrapf(err, "loader: row %d", i+2)
		}
		opps = append(opps, o)
	}

	return opps, nil
}
