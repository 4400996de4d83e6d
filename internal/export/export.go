// Package export writes forecast data to CSV and XLSX files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/forecast-cli/internal/analytics"
	"github.com/sells-group/forecast-cli/internal/model"
)

// forecastColumns defines the ordered forecast output columns.
var forecastColumns = []string{
	"Opportunity ID",
	"Opportunity Name",
	"Owner",
	"Stage",
	"Amount",
	"Probability",
	"Weighted Amount",
	"Created Date",
	"Close Date",
}

// totalLabel marks the summary row appended after all opportunity rows.
const totalLabel = "TOTAL FORECAST"

// ForecastRows builds the export rows for open opportunities: one row per
// deal plus a trailing summary row carrying the pipeline and weighted totals.
// Open deals are weighted by their current stage; last_stage only matters for
// closed deals, which the export excludes.
func ForecastRows(opps []model.Opportunity, report analytics.ForecastReport) [][]string {
	rows := make([][]string, 0, len(opps)+1)
	for _, o := range opps {
		if o.Status != model.StatusOpen {
			continue
		}
		prob := report.Probabilities.Prob(o.Stage)
		rows = append(rows, []string{
			o.ID,
			o.Name,
			o.Owner,
			string(o.Stage),
			formatAmount(o.Amount),
			formatPercent(prob),
			formatAmount(o.Amount * prob),
			formatDate(o.CreatedDate),
			formatDate(o.CloseDate),
		})
	}
	rows = append(rows, []string{
		"", totalLabel, "", "",
		formatAmount(report.TotalPipeline),
		"",
		formatAmount(report.WeightedForecast),
		"", "",
	})
	return rows
}

// WriteForecast writes the forecast to outputPath, choosing the format from
// the file extension (.csv or .xlsx).
func WriteForecast(opps []model.Opportunity, report analytics.ForecastReport, outputPath string) error {
	rows := ForecastRows(opps, report)
	switch ext := strings.ToLower(filepath.Ext(outputPath)); ext {
	case ".csv":
		return writeCSV(outputPath, rows)
	case ".xlsx":
		return writeXLSX(outputPath, rows)
	default:
		return eris.Errorf("export: unsupported format %q (want .csv or .xlsx)", ext)
	}
}

func writeCSV(outputPath string, rows [][]string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "export: create file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(forecastColumns); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}
	return nil
}

func writeXLSX(outputPath string, rows [][]string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Forecast")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range forecastColumns {
		header.AddCell().SetString(col)
	}
	for _, row := range rows {
		r := sheet.AddRow()
		for _, val := range row {
			r.AddCell().SetString(val)
		}
	}

	if err := f.Save(outputPath); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}

// formatAmount renders a dollar amount with two decimals, no separators, so
// spreadsheet tools parse it back as a number.
func formatAmount(n float64) string {
	return fmt.Sprintf("%.2f", n)
}

// formatPercent renders a probability as a whole percentage, e.g. "10%".
func formatPercent(p float64) string {
	return fmt.Sprintf("%.0f%%", p*100)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
