package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook is the read-only capability the evaluator needs from an
// uploaded spreadsheet file.
type Workbook interface {
	SheetNames() []string
	CellValue(sheet, ref string) (string, error)
	HasPivotTables() bool
	RowCount(sheet string) int
	Close() error
}

// Opener opens workbook files. Any I/O or format error surfaces from
// Open; the evaluator converts it into a single failing test.
type Opener interface {
	Open(path string) (Workbook, error)
}

// XLSXOpener opens xlsx files via excelize
type XLSXOpener struct{}

func NewXLSXOpener() *XLSXOpener {
	return &XLSXOpener{}
}

func (o *XLSXOpener) Open(path string) (Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return &xlsxWorkbook{file: f}, nil
}

type xlsxWorkbook struct {
	file *excelize.File
}

func (w *xlsxWorkbook) SheetNames() []string {
	return w.file.GetSheetList()
}

func (w *xlsxWorkbook) CellValue(sheet, ref string) (string, error) {
	value, err := w.file.GetCellValue(sheet, strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("failed to read cell %s!%s: %w", sheet, ref, err)
	}
	return value, nil
}

func (w *xlsxWorkbook) HasPivotTables() bool {
	for _, sheet := range w.file.GetSheetList() {
		tables, err := w.file.GetPivotTables(sheet)
		if err != nil {
			continue
		}
		if len(tables) > 0 {
			return true
		}
	}
	return false
}

// RowCount returns the number of populated rows on the sheet, 0 when
// the sheet is missing or unreadable.
func (w *xlsxWorkbook) RowCount(sheet string) int {
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return 0
	}
	return len(rows)
}

func (w *xlsxWorkbook) Close() error {
	return w.file.Close()
}
