package report

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ginjaninja78/csv-gratuity-report/internal/types"
)

func scenarioTable() *types.Table {
	return types.NewTable("receipts.csv", []types.Row{
		{"Name", "Total"},
		{"Widget", "$10.00"},
		{"Gadget", "$5.50"},
	})
}

func openReport(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func cellValue(t *testing.T, f *excelize.File, cell string) string {
	t.Helper()
	value, err := f.GetCellValue(SheetName, cell)
	require.NoError(t, err)
	return value
}

func cellFloat(t *testing.T, f *excelize.File, cell string) float64 {
	t.Helper()
	value, err := strconv.ParseFloat(cellValue(t, f, cell), 64)
	require.NoError(t, err)
	return value
}

func cellStyle(t *testing.T, f *excelize.File, cell string) *excelize.Style {
	t.Helper()
	styleID, err := f.GetCellStyle(SheetName, cell)
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	return style
}

func TestComputeTotals(t *testing.T) {
	totals := ComputeTotals(15.5, 20)
	assert.InDelta(t, 15.5, totals.Subtotal, 1e-9)
	assert.InDelta(t, 3.1, totals.GratuityAmount, 1e-9)
	assert.InDelta(t, 18.6, totals.FinalTotal, 1e-9)

	t.Run("zero percent", func(t *testing.T) {
		totals := ComputeTotals(42, 0)
		assert.Equal(t, 0.0, totals.GratuityAmount)
		assert.Equal(t, 42.0, totals.FinalTotal)
	})

	t.Run("repeatable", func(t *testing.T) {
		assert.Equal(t, ComputeTotals(123.45, 17.5), ComputeTotals(123.45, 17.5))
	})
}

func TestGratuityLabel(t *testing.T) {
	tests := []struct {
		percentage float64
		want       string
	}{
		{20, "20% Gratuity"},
		{0, "0% Gratuity"},
		{12.5, "12.5% Gratuity"},
		{17.125, "17.125% Gratuity"},
		{150, "150% Gratuity"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, GratuityLabel(tt.percentage))
		})
	}
}

func TestWriter_Build(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "receipts_processed.xlsx")
	writer := NewWriter(zap.NewNop())

	require.NoError(t, writer.Build(scenarioTable(), ComputeTotals(15.5, 20), 20, dest))

	f := openReport(t, dest)

	t.Run("single sheet", func(t *testing.T) {
		assert.Equal(t, []string{SheetName}, f.GetSheetList())
	})

	t.Run("rows transcribed verbatim", func(t *testing.T) {
		rows, err := f.GetRows(SheetName)
		require.NoError(t, err)
		require.Len(t, rows, 6)
		assert.Equal(t, []string{"Name", "Total"}, rows[0])
		assert.Equal(t, []string{"Widget", "$10.00"}, rows[1])
		assert.Equal(t, []string{"Gadget", "$5.50"}, rows[2])
	})

	t.Run("summary rows at K4:L6", func(t *testing.T) {
		assert.Equal(t, "Grand Total", cellValue(t, f, "K4"))
		assert.Equal(t, "20% Gratuity", cellValue(t, f, "K5"))
		assert.Equal(t, "Final Total", cellValue(t, f, "K6"))

		assert.InDelta(t, 15.5, cellFloat(t, f, "L4"), 1e-9)
		assert.InDelta(t, 3.1, cellFloat(t, f, "L5"), 1e-9)
		assert.InDelta(t, 18.6, cellFloat(t, f, "L6"), 1e-9)
	})

	t.Run("summary cells are bold", func(t *testing.T) {
		for _, cell := range []string{"K4", "L4", "K5", "L5", "K6", "L6"} {
			styleID, err := f.GetCellStyle(SheetName, cell)
			require.NoError(t, err)
			style, err := f.GetStyle(styleID)
			require.NoError(t, err)
			require.NotNil(t, style.Font, cell)
			assert.True(t, style.Font.Bold, cell)
		}
	})

	t.Run("summary values use the currency format", func(t *testing.T) {
		for _, cell := range []string{"L4", "L5", "L6"} {
			style := cellStyle(t, f, cell)
			require.NotNil(t, style.CustomNumFmt, cell)
			assert.Equal(t, CurrencyFormat, *style.CustomNumFmt, cell)
		}
	})

	t.Run("summary labels have no number format", func(t *testing.T) {
		for _, cell := range []string{"K4", "K5", "K6"} {
			style := cellStyle(t, f, cell)
			assert.Nil(t, style.CustomNumFmt, cell)
			assert.Equal(t, 0, style.NumFmt, cell)
		}
	})

	t.Run("data cells are not styled", func(t *testing.T) {
		for _, cell := range []string{"A1", "B1", "A2", "B2", "B3"} {
			styleID, err := f.GetCellStyle(SheetName, cell)
			require.NoError(t, err)
			assert.Equal(t, 0, styleID, cell)
		}
	})

	t.Run("no temporary files remain", func(t *testing.T) {
		entries, err := os.ReadDir(filepath.Dir(dest))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "receipts_processed.xlsx", entries[0].Name())
	})
}

func TestWriter_Build_WideTable(t *testing.T) {
	row := types.Row{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m"}
	table := types.NewTable("wide.csv", []types.Row{append(types.Row{"Total"}, row...)})
	dest := filepath.Join(t.TempDir(), "wide.xlsx")

	require.NoError(t, NewWriter(nil).Build(table, ComputeTotals(0, 10), 10, dest))

	f := openReport(t, dest)
	assert.Equal(t, "m", cellValue(t, f, "N1"))
	assert.Equal(t, "Grand Total", cellValue(t, f, "K2"))
	assert.Equal(t, "10% Gratuity", cellValue(t, f, "K3"))
}

func TestWriter_Build_Overwrite(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, os.WriteFile(dest, []byte("stale contents"), 0644))

	require.NoError(t, NewWriter(nil).Build(scenarioTable(), ComputeTotals(15.5, 20), 20, dest))

	summary, err := ReadSummary(dest)
	require.NoError(t, err)
	assert.InDelta(t, 18.6, summary.FinalTotal, 1e-9)
}

func TestWriter_Build_Failure(t *testing.T) {
	t.Run("destination directory missing", func(t *testing.T) {
		dir := t.TempDir()
		dest := filepath.Join(dir, "missing", "report.xlsx")

		err := NewWriter(nil).Build(scenarioTable(), ComputeTotals(15.5, 20), 20, dest)
		require.Error(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("destination cannot be replaced", func(t *testing.T) {
		dir := t.TempDir()
		dest := filepath.Join(dir, "report.xlsx")
		require.NoError(t, os.Mkdir(dest, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dest, "keep"), nil, 0644))

		err := NewWriter(nil).Build(scenarioTable(), ComputeTotals(15.5, 20), 20, dest)
		require.Error(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "report.xlsx", entries[0].Name())
	})
}

func TestReadSummary(t *testing.T) {
	t.Run("reads written report", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "report.xlsx")
		require.NoError(t, NewWriter(nil).Build(scenarioTable(), ComputeTotals(15.5, 12.5), 12.5, dest))

		summary, err := ReadSummary(dest)
		require.NoError(t, err)
		assert.Equal(t, dest, summary.Path)
		assert.Equal(t, 3, summary.DataRows)
		assert.Equal(t, 12.5, summary.Percentage)
		assert.InDelta(t, 15.5, summary.Subtotal, 1e-9)
		assert.InDelta(t, 1.9375, summary.GratuityAmount, 1e-9)
		assert.InDelta(t, 17.4375, summary.FinalTotal, 1e-9)
	})

	t.Run("workbook without report sheet", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "other.xlsx")
		f := excelize.NewFile()
		require.NoError(t, f.SetCellStr("Sheet1", "A1", "hello"))
		require.NoError(t, f.SaveAs(path))
		require.NoError(t, f.Close())

		_, err := ReadSummary(path)
		assert.ErrorIs(t, err, ErrNotAReport)
	})

	t.Run("report sheet without summary", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "other.xlsx")
		f := excelize.NewFile()
		require.NoError(t, f.SetSheetName("Sheet1", SheetName))
		require.NoError(t, f.SetCellStr(SheetName, "A1", "Total"))
		require.NoError(t, f.SaveAs(path))
		require.NoError(t, f.Close())

		_, err := ReadSummary(path)
		assert.ErrorIs(t, err, ErrNotAReport)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadSummary(filepath.Join(t.TempDir(), "missing.xlsx"))
		assert.Error(t, err)
	})
}
