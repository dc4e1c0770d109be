package report

import "github.com/xuri/excelize/v2"

// CurrencyFormat is the number format of the summary value cells.
const CurrencyFormat = "$#,##0.00"

// StyleManager caches workbook styles so each style is created only once per file.
type StyleManager struct {
	file  *excelize.File
	cache map[string]int
}

// NewStyleManager creates a style manager bound to the given file.
func NewStyleManager(f *excelize.File) *StyleManager {
	return &StyleManager{file: f, cache: make(map[string]int)}
}

// Label returns the bold style of the summary labels (cached).
func (sm *StyleManager) Label() (int, error) {
	return sm.getOrCreate("label", &excelize.Style{
		Font: boldFont(),
	})
}

// Currency returns the bold currency style of the summary values (cached).
func (sm *StyleManager) Currency() (int, error) {
	format := CurrencyFormat
	return sm.getOrCreate("currency", &excelize.Style{
		Font:         boldFont(),
		CustomNumFmt: &format,
	})
}

func (sm *StyleManager) getOrCreate(key string, style *excelize.Style) (int, error) {
	if id, ok := sm.cache[key]; ok {
		return id, nil
	}

	id, err := sm.file.NewStyle(style)
	if err != nil {
		return 0, err
	}

	sm.cache[key] = id
	return id, nil
}

func boldFont() *excelize.Font {
	return &excelize.Font{Bold: true}
}
