// =============================================================================
// CSV Gratuity Report - Column Locator
// =============================================================================
//
// The locator finds the header row and the target column of a parsed table:
// the first row that contains a field exactly equal to the target label.
//
// MATCHING RULES:
//   - Rows are scanned top to bottom, fields left to right
//   - The comparison is exact and case-sensitive; nothing is trimmed
//   - Only the first matching row counts; later rows are ignored
//
// =============================================================================

package locator

import (
	"errors"
	"fmt"

	"github.com/ginjaninja78/csv-gratuity-report/internal/types"
)

// TotalLabel is the header label of the column that is summed.
const TotalLabel = "Total"

// ErrHeaderNotFound is returned when no row contains the target label.
var ErrHeaderNotFound = errors.New("header label not found")

// LocateTotal finds the "Total" column. See Locate.
func LocateTotal(table *types.Table) (types.HeaderLocation, error) {
	return Locate(table, TotalLabel)
}

// Locate returns the position of the first field equal to label.
//
// PARAMETERS:
//   - table: The parsed table.
//   - label: The exact header text to look for.
//
// RETURNS:
//   - The HeaderLocation of the first match.
//   - ErrHeaderNotFound (wrapped) if no row contains the label.
func Locate(table *types.Table, label string) (types.HeaderLocation, error) {
	for r := 0; r < table.Len(); r++ {
		for c, field := range table.Row(r) {
			if field == label {
				return types.HeaderLocation{Row: r, Column: c}, nil
			}
		}
	}

	return types.HeaderLocation{}, fmt.Errorf("%w: no %q column in %s", ErrHeaderNotFound, label, table.Source())
}
