// =============================================================================
// CSV Gratuity Report - Report Reader
// =============================================================================
//
// The reader opens a produced report and recovers its summary rows. It is
// used by the inspect command to show the totals of an existing report
// without recomputing them.
//
// The summary block is located by scanning column K from the bottom for the
// "Grand Total" label followed by the gratuity and "Final Total" labels.
//
// =============================================================================

package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNotAReport is returned when a workbook does not have the report layout.
var ErrNotAReport = errors.New("workbook is not a gratuity report")

// Summary holds the summary rows read back from a report.
type Summary struct {
	// Path is the workbook the summary was read from.
	Path string

	// DataRows is the number of transcribed table rows above the summary.
	DataRows int

	// Percentage is the gratuity percentage recovered from the label.
	Percentage float64

	Subtotal       float64
	GratuityAmount float64
	FinalTotal     float64
}

// ReadSummary reads the summary rows of the report at path.
//
// RETURNS:
//   - The Summary of the report.
//   - ErrNotAReport (wrapped) if the sheet or the summary block is missing,
//     or an error if the file cannot be opened.
func ReadSummary(path string) (*Summary, error) {
	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	index, err := f.GetSheetIndex(SheetName)
	if err != nil || index < 0 {
		return nil, fmt.Errorf("%w: no %q sheet in %s", ErrNotAReport, SheetName, path)
	}

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	// getCell returns the cell at a 1-based column of a 0-based row.
	getCell := func(row, column int) string {
		if row < len(rows) && column-1 < len(rows[row]) {
			return rows[row][column-1]
		}
		return ""
	}

	for start := len(rows) - 3; start >= 0; start-- {
		if getCell(start, LabelColumn) != GrandTotalLabel || getCell(start+2, LabelColumn) != FinalTotalLabel {
			continue
		}

		pctText, ok := strings.CutSuffix(getCell(start+1, LabelColumn), GratuitySuffix)
		if !ok {
			continue
		}

		summary := &Summary{Path: path, DataRows: start}
		fields := []struct {
			text string
			dest *float64
		}{
			{pctText, &summary.Percentage},
			{getCell(start, ValueColumn), &summary.Subtotal},
			{getCell(start+1, ValueColumn), &summary.GratuityAmount},
			{getCell(start+2, ValueColumn), &summary.FinalTotal},
		}
		for _, field := range fields {
			value, err := strconv.ParseFloat(field.text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: summary value %q in %s is not a number", ErrNotAReport, field.text, path)
			}
			*field.dest = value
		}

		return summary, nil
	}

	return nil, fmt.Errorf("%w: no summary rows in %s", ErrNotAReport, path)
}
