// =============================================================================
// CSV Gratuity Report - Aggregator
// =============================================================================
//
// The aggregator sums the target column of every row below the header row.
//
// CELL HANDLING:
//   1. Rows too short to reach the target column contribute 0 (Short)
//   2. Empty cells contribute 0 (Blank)
//   3. Whitespace and a leading/trailing "$" are stripped
//   4. The rest must be a plain decimal number, optionally with correctly
//      grouped thousands separators ("1,234.50"); anything else is malformed
//
// Malformed cells contribute 0 under CellLenient and abort the sum under
// CellStrict.
//
// =============================================================================

package aggregator

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ginjaninja78/csv-gratuity-report/internal/config"
	"github.com/ginjaninja78/csv-gratuity-report/internal/types"
)

// CurrencySymbol is stripped from both ends of a cell before parsing.
const CurrencySymbol = "$"

var (
	// decimalPattern matches the accepted number syntax once grouping
	// separators are removed.
	decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

	// groupedPattern matches an integer part with thousands separators.
	groupedPattern = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d*)?([eE][+-]?\d+)?$`)

	errMalformed = errors.New("not a number")
)

// =============================================================================
// POLICY
// =============================================================================

// CellPolicy decides what happens to Total cells that are not numbers.
type CellPolicy int

const (
	// CellLenient counts malformed cells as 0.
	CellLenient CellPolicy = iota

	// CellStrict aborts on the first malformed cell.
	CellStrict
)

// ParseCellPolicy maps a configuration value to a CellPolicy.
func ParseCellPolicy(name string) (CellPolicy, error) {
	switch name {
	case config.CellPolicyLenient, "":
		return CellLenient, nil
	case config.CellPolicyStrict:
		return CellStrict, nil
	default:
		return CellLenient, fmt.Errorf("unknown cell policy %q", name)
	}
}

// =============================================================================
// RESULT STRUCTURES
// =============================================================================

// Summary is the outcome of Sum.
type Summary struct {
	// Subtotal is the float64 sum of every parsed cell, in row order.
	Subtotal float64

	// Parsed counts cells that contributed a number.
	Parsed int

	// Malformed counts non-empty cells that were not numbers.
	Malformed int

	// Blank counts empty cells.
	Blank int

	// Short counts rows without a field at the target column.
	Short int
}

// Rows returns the number of data rows that were considered.
func (s Summary) Rows() int {
	return s.Parsed + s.Malformed + s.Blank + s.Short
}

// CellError is returned under CellStrict for the first malformed cell.
type CellError struct {
	// Row is the 0-based index of the row in the table.
	Row int

	// Column is the 0-based index of the target column.
	Column int

	// Value is the cell text as it appears in the file.
	Value string
}

func (e *CellError) Error() string {
	return fmt.Sprintf("row %d, column %d: %q is not a number", e.Row+1, e.Column+1, e.Value)
}

// =============================================================================
// AGGREGATION
// =============================================================================

// Sum adds up the target column of every row after the header row.
//
// PARAMETERS:
//   - table: The parsed table.
//   - loc: The header location returned by the locator.
//   - policy: How malformed cells are treated.
//
// RETURNS:
//   - The Summary of the column.
//   - A *CellError under CellStrict, or an error if loc is outside the table.
func Sum(table *types.Table, loc types.HeaderLocation, policy CellPolicy) (Summary, error) {
	var summary Summary

	if loc.Row < 0 || loc.Row >= table.Len() || loc.Column < 0 {
		return summary, fmt.Errorf("header location %d:%d is outside the table", loc.Row, loc.Column)
	}

	for r := loc.Row + 1; r < table.Len(); r++ {
		row := table.Row(r)
		if len(row) <= loc.Column {
			summary.Short++
			continue
		}

		value, err := ParseAmount(row[loc.Column])
		switch {
		case err == nil:
			summary.Subtotal += value
			summary.Parsed++
		case errors.Is(err, ErrBlank):
			summary.Blank++
		case policy == CellStrict:
			return summary, &CellError{Row: r, Column: loc.Column, Value: row[loc.Column]}
		default:
			summary.Malformed++
		}
	}

	return summary, nil
}

// ErrBlank is returned by ParseAmount for an empty cell.
var ErrBlank = errors.New("blank cell")

// ParseAmount converts the text of a Total cell into a number.
//
// Examples:
//
//	"$10.00"    -> 10
//	" 1,234.5 " -> 1234.5
//	"-$3"       -> -3
//	"$-3"       -> -3
//	"$1,2"      -> malformed
//	""          -> ErrBlank
func ParseAmount(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, ErrBlank
	}

	// A sign may precede the currency symbol.
	sign := ""
	if rest := strings.TrimSpace(trimmed[1:]); (trimmed[0] == '-' || trimmed[0] == '+') && strings.HasPrefix(rest, CurrencySymbol) {
		sign, trimmed = trimmed[:1], rest
	}

	trimmed = strings.TrimSpace(strings.Trim(trimmed, CurrencySymbol))
	if sign != "" {
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "+") {
			return 0, fmt.Errorf("%q: %w", text, errMalformed)
		}
		trimmed = sign + trimmed
	}
	if strings.Contains(trimmed, ",") {
		if !groupedPattern.MatchString(trimmed) {
			return 0, fmt.Errorf("%q: %w", text, errMalformed)
		}
		trimmed = strings.ReplaceAll(trimmed, ",", "")
	}

	if !decimalPattern.MatchString(trimmed) {
		return 0, fmt.Errorf("%q: %w", text, errMalformed)
	}

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		// Only out-of-range values reach here.
		return 0, fmt.Errorf("%q: %w", text, err)
	}

	return value, nil
}
