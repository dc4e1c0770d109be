// =============================================================================
// CSV Gratuity Report - Shared Types
// =============================================================================
//
// This package contains the data model shared by every pipeline stage. Types
// defined here are used by:
//   - csvparser   (produces a Table)
//   - locator     (produces a HeaderLocation)
//   - aggregator  (reads the Table below the HeaderLocation)
//   - report      (transcribes the Table, writes ReportTotals)
//   - pipeline    (carries all of the above in a run context)
//
// =============================================================================

package types

// =============================================================================
// TABLE TYPES
// =============================================================================

// Row is an ordered sequence of text fields, one per parsed record.
// Rows in the same Table may have different lengths.
type Row []string

// Table is the parsed input file: rows in file line order.
//
// A Table is immutable once built. NewTable copies the rows it is given and
// the accessors never hand out the backing slice of the table itself.
type Table struct {
	source string
	rows   []Row
}

// NewTable builds a Table from parsed rows.
//
// PARAMETERS:
//   - source: The path (or name) the rows were read from. Used in messages.
//   - rows: The parsed rows. They are copied.
func NewTable(source string, rows []Row) *Table {
	copied := make([]Row, len(rows))
	for i, row := range rows {
		copied[i] = append(Row(nil), row...)
	}
	return &Table{source: source, rows: copied}
}

// Source returns the path the table was parsed from.
func (t *Table) Source() string {
	return t.source
}

// Len returns the number of rows in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns the row at index i (0-based). Callers must not modify it.
func (t *Table) Row(i int) Row {
	return t.rows[i]
}

// Rows returns a copy of the row index so callers can range over the table.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// =============================================================================
// LOCATION AND TOTALS
// =============================================================================

// HeaderLocation is the position of the first "Total" label in a Table.
// Both indices are 0-based.
type HeaderLocation struct {
	// Row is the index of the header row.
	Row int

	// Column is the index of the target column within the header row.
	Column int
}

// ReportTotals holds the three computed summary values of a run.
// They are derived from the subtotal and the gratuity percentage and are
// never cached across runs.
type ReportTotals struct {
	Subtotal       float64
	GratuityAmount float64
	FinalTotal     float64
}
