package csvparser

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/csv-gratuity-report/internal/config"
	"github.com/ginjaninja78/csv-gratuity-report/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultSettings() config.CSVSettings {
	return config.CSVSettings{Delimiter: ","}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParse(t *testing.T) {
	t.Run("parses simple file", func(t *testing.T) {
		path := writeFile(t, "Name,Total\nWidget,$10.00\nGadget,$5.50\n")

		result, err := Parse(path, defaultSettings(), RecordWarn)
		require.NoError(t, err)

		assert.Empty(t, result.Warnings)
		assert.Equal(t, path, result.Table.Source())
		assert.Equal(t, []types.Row{
			{"Name", "Total"},
			{"Widget", "$10.00"},
			{"Gadget", "$5.50"},
		}, result.Table.Rows())
	})

	t.Run("missing file returns error", func(t *testing.T) {
		_, err := Parse(filepath.Join(t.TempDir(), "missing.csv"), defaultSettings(), RecordWarn)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
}

func TestParseReader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []types.Row
	}{
		{
			name:  "quoted field with delimiter",
			input: "Name,Total\n\"Widget, large\",\"$1,000.00\"\n",
			want:  []types.Row{{"Name", "Total"}, {"Widget, large", "$1,000.00"}},
		},
		{
			name:  "quoted field with newline",
			input: "Name,Total\n\"Multi\nline\",$5.00\n",
			want:  []types.Row{{"Name", "Total"}, {"Multi\nline", "$5.00"}},
		},
		{
			name:  "escaped quotes",
			input: "Name,Total\n\"The \"\"Best\"\" One\",3\n",
			want:  []types.Row{{"Name", "Total"}, {"The \"Best\" One", "3"}},
		},
		{
			name:  "ragged rows",
			input: "Receipt\nName,Qty,Total\nWidget,2,$4.00,extra\nShort\n",
			want:  []types.Row{{"Receipt"}, {"Name", "Qty", "Total"}, {"Widget", "2", "$4.00", "extra"}, {"Short"}},
		},
		{
			name:  "leading space preserved",
			input: "Name, Total\n",
			want:  []types.Row{{"Name", " Total"}},
		},
		{
			name:  "byte order mark stripped",
			input: "\xEF\xBB\xBFTotal,Name\n1,a\n",
			want:  []types.Row{{"Total", "Name"}, {"1", "a"}},
		},
		{
			name:  "crlf line endings",
			input: "Name,Total\r\nWidget,1\r\n",
			want:  []types.Row{{"Name", "Total"}, {"Widget", "1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseReader(strings.NewReader(tt.input), "test", defaultSettings(), RecordWarn)
			require.NoError(t, err)
			assert.Empty(t, result.Warnings)
			assert.Equal(t, tt.want, result.Table.Rows())
		})
	}
}

func TestParseReader_EmptyInput(t *testing.T) {
	result, err := ParseReader(strings.NewReader(""), "empty", defaultSettings(), RecordWarn)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Table.Len())
}

func TestParseReader_RecordPolicy(t *testing.T) {
	input := "Name,Total\nBroken,1\"0\nWidget,$10.00\n"

	t.Run("warn skips the record", func(t *testing.T) {
		result, err := ParseReader(strings.NewReader(input), "test", defaultSettings(), RecordWarn)
		require.NoError(t, err)

		require.Len(t, result.Warnings, 1)
		assert.Equal(t, 2, result.Warnings[0].Line)
		assert.Contains(t, result.Warnings[0].String(), "line 2")
		assert.Equal(t, []types.Row{{"Name", "Total"}, {"Widget", "$10.00"}}, result.Table.Rows())
	})

	t.Run("strict aborts", func(t *testing.T) {
		_, err := ParseReader(strings.NewReader(input), "test", defaultSettings(), RecordStrict)
		require.Error(t, err)

		var recErr *RecordError
		require.ErrorAs(t, err, &recErr)
		assert.Equal(t, 2, recErr.Line)
	})

	t.Run("lazy quotes accept the record", func(t *testing.T) {
		settings := defaultSettings()
		settings.LazyQuotes = true

		result, err := ParseReader(strings.NewReader(input), "test", settings, RecordStrict)
		require.NoError(t, err)
		assert.Equal(t, 3, result.Table.Len())
		assert.Equal(t, types.Row{"Broken", "1\"0"}, result.Table.Row(1))
	})
}

func TestParseReader_Delimiter(t *testing.T) {
	settings := config.CSVSettings{Delimiter: ";"}
	result, err := ParseReader(strings.NewReader("Name;Total\nA;1,5\n"), "test", settings, RecordWarn)
	require.NoError(t, err)
	assert.Equal(t, types.Row{"A", "1,5"}, result.Table.Row(1))
}

func TestParseRecordPolicy(t *testing.T) {
	p, err := ParseRecordPolicy("warn")
	require.NoError(t, err)
	assert.Equal(t, RecordWarn, p)

	p, err = ParseRecordPolicy("strict")
	require.NoError(t, err)
	assert.Equal(t, RecordStrict, p)

	_, err = ParseRecordPolicy("ignore")
	assert.Error(t, err)
}
