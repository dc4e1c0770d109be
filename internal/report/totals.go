package report

import (
	"strconv"

	"github.com/ginjaninja78/csv-gratuity-report/internal/types"
)

// Summary row labels.
const (
	GrandTotalLabel = "Grand Total"
	GratuitySuffix  = "% Gratuity"
	FinalTotalLabel = "Final Total"
)

// ComputeTotals derives the three summary values from a subtotal and a
// gratuity percentage (20 means 20%).
func ComputeTotals(subtotal, percentage float64) types.ReportTotals {
	gratuity := subtotal * (percentage / 100)
	return types.ReportTotals{
		Subtotal:       subtotal,
		GratuityAmount: gratuity,
		FinalTotal:     subtotal + gratuity,
	}
}

// GratuityLabel renders the label of the gratuity row. The percentage is
// printed with the fewest digits that represent it exactly, so 20 gives
// "20% Gratuity" and 12.5 gives "12.5% Gratuity".
func GratuityLabel(percentage float64) string {
	return FormatPercentage(percentage) + GratuitySuffix
}

// FormatPercentage renders a percentage without rounding.
func FormatPercentage(percentage float64) string {
	return strconv.FormatFloat(percentage, 'f', -1, 64)
}
