// =============================================================================
// CSV Gratuity Report - Report Writer
// =============================================================================
//
// This module builds the output workbook from a parsed table and the computed
// totals.
//
// WORKBOOK LAYOUT:
//   A single sheet named "Processed Data".
//
//   | Rows 1..N      | every table row, one field per column, text verbatim |
//   | Row N+1  K / L | Grand Total        | subtotal                       |
//   | Row N+2  K / L | {pct}% Gratuity    | gratuity amount                |
//   | Row N+3  K / L | Final Total        | final total                    |
//
//   The summary cells are bold and the values use the $#,##0.00 format.
//   Columns K and L are fixed and may overlap the data of wide tables.
//
// OUTPUT:
//   The workbook is written to a temporary file beside the destination and
//   renamed over it once complete. An existing destination is replaced.
//
// =============================================================================

package report

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ginjaninja78/csv-gratuity-report/internal/types"
	"github.com/ginjaninja78/csv-gratuity-report/pkg/utils"
)

const (
	// SheetName is the name of the only sheet in the report.
	SheetName = "Processed Data"

	// LabelColumn and ValueColumn hold the summary rows (1-based, K and L).
	LabelColumn = 11
	ValueColumn = 12

	// Application is recorded in the workbook properties.
	Application = "CSV Gratuity Report"
)

// =============================================================================
// WRITER
// =============================================================================

// Writer builds report workbooks.
type Writer struct {
	logger *zap.Logger
}

// NewWriter creates a Writer. A nil logger disables logging.
func NewWriter(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{logger: logger}
}

// Build writes the report for table to dest.
//
// PARAMETERS:
//   - table: The parsed table, transcribed verbatim.
//   - totals: The computed summary values.
//   - percentage: The gratuity percentage, used in the gratuity label.
//   - dest: The destination path. An existing file is replaced.
//
// RETURNS:
//   - An error if the workbook cannot be built or written. In that case the
//     destination is unchanged and no temporary file is left behind.
func (w *Writer) Build(table *types.Table, totals types.ReportTotals, percentage float64, dest string) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			w.logger.Warn("failed to close workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := setProperties(f); err != nil {
		return err
	}

	if err := writeRows(f, table); err != nil {
		return err
	}

	if err := writeSummary(f, table.Len(), totals, percentage); err != nil {
		return err
	}

	if err := w.save(f, dest); err != nil {
		return err
	}

	w.logger.Debug("report written",
		zap.String("output", dest),
		zap.Int("rows", table.Len()),
		zap.Float64("final_total", totals.FinalTotal),
	)

	return nil
}

// =============================================================================
// SHEET CONTENT
// =============================================================================

func setProperties(f *excelize.File) error {
	if err := f.SetAppProps(&excelize.AppProperties{Application: Application}); err != nil {
		return fmt.Errorf("failed to set app properties: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Creator:        Application,
		LastModifiedBy: Application,
		Title:          SheetName,
	}); err != nil {
		return fmt.Errorf("failed to set document properties: %w", err)
	}
	return nil
}

// writeRows transcribes every row as text cells starting at A1.
func writeRows(f *excelize.File, table *types.Table) error {
	for r, row := range table.Rows() {
		for c, field := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("failed to address row %d, column %d: %w", r+1, c+1, err)
			}
			if err := f.SetCellStr(SheetName, cell, field); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}
	return nil
}

// writeSummary appends the three summary rows below the last data row.
func writeSummary(f *excelize.File, dataRows int, totals types.ReportTotals, percentage float64) error {
	styles := NewStyleManager(f)

	labelStyle, err := styles.Label()
	if err != nil {
		return fmt.Errorf("failed to create label style: %w", err)
	}
	currencyStyle, err := styles.Currency()
	if err != nil {
		return fmt.Errorf("failed to create currency style: %w", err)
	}

	lines := []struct {
		label string
		value float64
	}{
		{GrandTotalLabel, totals.Subtotal},
		{GratuityLabel(percentage), totals.GratuityAmount},
		{FinalTotalLabel, totals.FinalTotal},
	}

	for i, line := range lines {
		row := dataRows + i + 1

		labelCell, err := excelize.CoordinatesToCellName(LabelColumn, row)
		if err != nil {
			return err
		}
		valueCell, err := excelize.CoordinatesToCellName(ValueColumn, row)
		if err != nil {
			return err
		}

		if err := f.SetCellStr(SheetName, labelCell, line.label); err != nil {
			return fmt.Errorf("failed to write %s: %w", labelCell, err)
		}
		if err := f.SetCellFloat(SheetName, valueCell, line.value, -1, 64); err != nil {
			return fmt.Errorf("failed to write %s: %w", valueCell, err)
		}
		if err := f.SetCellStyle(SheetName, labelCell, labelCell, labelStyle); err != nil {
			return fmt.Errorf("failed to style %s: %w", labelCell, err)
		}
		if err := f.SetCellStyle(SheetName, valueCell, valueCell, currencyStyle); err != nil {
			return fmt.Errorf("failed to style %s: %w", valueCell, err)
		}
	}

	return nil
}

// =============================================================================
// OUTPUT
// =============================================================================

// save writes the workbook to a temporary file and moves it over dest.
func (w *Writer) save(f *excelize.File, dest string) (err error) {
	tmp := utils.TempPath(dest)

	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	defer func() {
		if err != nil {
			if rmErr := os.Remove(tmp); rmErr != nil && !os.IsNotExist(rmErr) {
				w.logger.Warn("failed to remove temporary file", zap.String("path", tmp), zap.Error(rmErr))
			}
		}
	}()

	if err = f.Write(out); err != nil {
		out.Close()
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return utils.ReplaceFile(tmp, dest)
}
