// =============================================================================
// CSV Gratuity Report - CSV Parser Module
// =============================================================================
//
// This module turns a delimited text file into a types.Table. It handles:
//   - A single-character delimiter (comma by default)
//   - Quoted fields, including delimiters and newlines inside quotes
//   - Doubled quotes ("") as an escaped quote character
//   - Ragged rows (any number of fields per record)
//   - A leading UTF-8 byte-order mark
//
// RECORD POLICY:
//   A record the CSV reader rejects (for example a stray quote inside an
//   unquoted field) is either skipped and reported as a Warning (RecordWarn)
//   or aborts parsing (RecordStrict).
//
// Field text is never trimmed or otherwise rewritten: the report transcribes
// it verbatim.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ginjaninja78/csv-gratuity-report/internal/config"
	"github.com/ginjaninja78/csv-gratuity-report/internal/types"
)

// utf8BOM is stripped from the start of the input.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// POLICY
// =============================================================================

// RecordPolicy decides what happens to records the CSV reader rejects.
type RecordPolicy int

const (
	// RecordWarn skips the record and reports a Warning.
	RecordWarn RecordPolicy = iota

	// RecordStrict aborts parsing on the first rejected record.
	RecordStrict
)

// ParseRecordPolicy maps a configuration value to a RecordPolicy.
func ParseRecordPolicy(name string) (RecordPolicy, error) {
	switch name {
	case config.RecordPolicyWarn, "":
		return RecordWarn, nil
	case config.RecordPolicyStrict:
		return RecordStrict, nil
	default:
		return RecordWarn, fmt.Errorf("unknown record policy %q", name)
	}
}

// =============================================================================
// RESULT STRUCTURES
// =============================================================================

// Warning describes a record that was skipped.
type Warning struct {
	// Line is the 1-based line in the input where the record starts.
	Line int

	// Message is the reader's description of the problem.
	Message string
}

// String renders the warning for console output.
func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// Result is the outcome of parsing a file.
type Result struct {
	// Table holds every record that parsed, in file order.
	Table *types.Table

	// Warnings lists the records that were skipped.
	Warnings []Warning
}

// RecordError is returned under RecordStrict when a record cannot be parsed.
type RecordError struct {
	Source string
	Line   int
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: unparseable record at line %d: %v", e.Source, e.Line, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the parsed table.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter and quoting settings.
//   - policy: What to do with records the reader rejects.
//
// RETURNS:
//   - The parsed Result.
//   - An error if the file cannot be opened or read, or if a record is
//     rejected under RecordStrict.
func Parse(filePath string, settings config.CSVSettings, policy RecordPolicy) (*Result, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file, filePath, settings, policy)
}

// ParseReader parses CSV data from r. source names the input in the
// resulting Table and in error messages.
func ParseReader(r io.Reader, source string, settings config.CSVSettings, policy RecordPolicy) (*Result, error) {
	reader := bufio.NewReader(r)

	if err := skipBOM(reader); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, settings)

	var rows []types.Row
	var warnings []Warning

	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("failed to read %s: %w", source, err)
			}

			if policy == RecordStrict {
				return nil, &RecordError{Source: source, Line: parseErr.StartLine, Err: parseErr.Err}
			}

			warnings = append(warnings, Warning{
				Line:    parseErr.StartLine,
				Message: parseErr.Err.Error(),
			})
			continue
		}

		rows = append(rows, types.Row(record))
	}

	return &Result{
		Table:    types.NewTable(source, rows),
		Warnings: warnings,
	}, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	reader.Comma = ','
	if settings.Delimiter != "" {
		reader.Comma = []rune(settings.Delimiter)[0]
	}

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1

	reader.LazyQuotes = settings.LazyQuotes

	// Fields are transcribed verbatim, so leading space is kept.
	reader.TrimLeadingSpace = false

	// Each record gets its own slice; Table keeps references to them.
	reader.ReuseRecord = false
}

// skipBOM discards a UTF-8 byte-order mark at the start of the stream.
func skipBOM(reader *bufio.Reader) error {
	head, err := reader.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return err
	}
	if len(head) == len(utf8BOM) && string(head) == string(utf8BOM) {
		_, err := reader.Discard(len(utf8BOM))
		return err
	}
	return nil
}
