package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/xuri/excelize/v2"

	"sheet-enricher/models"
)

// WorkbookFile reads sheets from an .xlsx file. It is safe for concurrent use.
type WorkbookFile struct {
	mu   sync.Mutex
	file *excelize.File
}

// OpenWorkbook opens the workbook at path.
func OpenWorkbook(path string) (*WorkbookFile, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open %q: %w", path, err)
	}
	return &WorkbookFile{file: f}, nil
}

// SheetNames lists the sheets in workbook order.
func (w *WorkbookFile) SheetNames() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.GetSheetList()
}

// ReadSheet reads the named sheet, first row as header, with blanks forward-filled.
// Cells are read unformatted so numbers keep their stored precision.
func (w *WorkbookFile) ReadSheet(name string) (*models.Sheet, error) {
	w.mu.Lock()
	rows, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	w.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("xlsx: read sheet %q: %w", name, err)
	}

	s := models.SheetFromRows(name, rows)
	s.ForwardFill()
	return s, nil
}

// Close releases the underlying file.
func (w *WorkbookFile) Close() error {
	return w.file.Close()
}

// SaveWorkbook writes every sheet of wb to a new file at path, replacing any existing file.
func SaveWorkbook(path string, wb *models.Workbook) error {
	sheets := wb.Sheets()
	if len(sheets) == 0 {
		return fmt.Errorf("xlsx: workbook has no sheets")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("xlsx: create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	keepDefault := false
	for _, s := range sheets {
		if s.Name == defaultSheet {
			keepDefault = true
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("xlsx: create sheet %q: %w", s.Name, err)
		}
		if err := writeSheet(f, s.Name, s); err != nil {
			return err
		}
	}
	if !keepDefault {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("xlsx: drop default sheet: %w", err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx: save %q: %w", path, err)
	}
	return nil
}

// ReplaceSheets removes each named sheet from the workbook at path, if present,
// and re-adds it with the new contents at the end.
func ReplaceSheets(path string, sheets ...*models.Sheet) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("xlsx: open %q: %w", path, err)
	}
	defer f.Close()

	for i, s := range sheets {
		// Write under a scratch name first so the workbook never drops to zero sheets.
		tmp := scratchName(f, i)
		if _, err := f.NewSheet(tmp); err != nil {
			return fmt.Errorf("xlsx: create sheet for %q: %w", s.Name, err)
		}
		if err := writeSheet(f, tmp, s); err != nil {
			return err
		}
		if idx, err := f.GetSheetIndex(s.Name); err == nil && idx >= 0 {
			if err := f.DeleteSheet(s.Name); err != nil {
				return fmt.Errorf("xlsx: remove sheet %q: %w", s.Name, err)
			}
		}
		if err := f.SetSheetName(tmp, s.Name); err != nil {
			return fmt.Errorf("xlsx: rename sheet %q: %w", s.Name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Save(); err != nil {
		return fmt.Errorf("xlsx: save %q: %w", path, err)
	}
	return nil
}

// scratchName returns a sheet name not yet present in f.
func scratchName(f *excelize.File, i int) string {
	for n := 0; ; n++ {
		name := fmt.Sprintf("__replace_%d_%d", i, n)
		if idx, err := f.GetSheetIndex(name); err == nil && idx < 0 {
			return name
		}
	}
}

func writeSheet(f *excelize.File, target string, s *models.Sheet) error {
	if err := writeRow(f, target, 1, s.Header); err != nil {
		return err
	}
	for i, row := range s.Rows {
		if err := writeRow(f, target, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("xlsx: row %d: %w", rowNum, err)
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = cellValue(c)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("xlsx: write %s!%s: %w", sheet, cell, err)
	}
	return nil
}

// cellValue writes canonical numeric text as a number so spreadsheet formulas can use it.
// Text such as "007" or "1e3" stays a string.
func cellValue(s string) interface{} {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || strconv.FormatFloat(f, 'f', -1, 64) != s {
		return s
	}
	return f
}
