package models

import "strings"

// Sheet names of the persisted workbook.
const (
	SheetCatalog     = "Справочник"
	SheetMarketing   = "Маркетинговые данные"
	SheetTouchChains = "Цепочки касаний"
	SheetRates       = "Курсы валют"
)

// Sheet is one named table. The first spreadsheet row becomes Header;
// every cell is held as text.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// NewSheet creates an empty sheet with the given header.
func NewSheet(name string, header []string) *Sheet {
	h := make([]string, len(header))
	copy(h, header)
	return &Sheet{Name: name, Header: h}
}

// SheetFromRows builds a sheet from raw spreadsheet rows, the first of which is the header.
// Short rows are padded to the header width.
func SheetFromRows(name string, raw [][]string) *Sheet {
	if len(raw) == 0 {
		return NewSheet(name, nil)
	}
	s := NewSheet(name, raw[0])
	for i, h := range s.Header {
		s.Header[i] = strings.TrimSpace(h)
	}
	for _, r := range raw[1:] {
		s.AppendRow(r)
	}
	return s
}

// Len returns the number of data rows.
func (s *Sheet) Len() int {
	return len(s.Rows)
}

// ColumnIndex returns the index of the named column or -1.
func (s *Sheet) ColumnIndex(name string) int {
	for i, h := range s.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// HasColumns reports whether every named column is present.
func (s *Sheet) HasColumns(names ...string) bool {
	for _, n := range names {
		if s.ColumnIndex(n) < 0 {
			return false
		}
	}
	return true
}

// EnsureColumn returns the index of the named column, appending it when absent.
func (s *Sheet) EnsureColumn(name string) int {
	if idx := s.ColumnIndex(name); idx >= 0 {
		return idx
	}
	s.Header = append(s.Header, name)
	for i := range s.Rows {
		s.Rows[i] = append(s.Rows[i], "")
	}
	return len(s.Header) - 1
}

// AppendRow adds a row, padded or truncated to the header width.
func (s *Sheet) AppendRow(cells []string) {
	row := make([]string, len(s.Header))
	copy(row, cells)
	s.Rows = append(s.Rows, row)
}

// Value returns the cell at row/col, or "" when the column is unknown.
func (s *Sheet) Value(row int, col string) string {
	idx := s.ColumnIndex(col)
	if idx < 0 || row < 0 || row >= len(s.Rows) || idx >= len(s.Rows[row]) {
		return ""
	}
	return s.Rows[row][idx]
}

// Set writes a cell, creating the column if needed.
func (s *Sheet) Set(row int, col, v string) {
	idx := s.EnsureColumn(col)
	s.Rows[row][idx] = v
}

// ForwardFill replaces blank cells with the last non-blank value above them in the same column.
// Leading blanks stay blank.
func (s *Sheet) ForwardFill() {
	last := make([]string, len(s.Header))
	seen := make([]bool, len(s.Header))
	for _, row := range s.Rows {
		for c := range row {
			if strings.TrimSpace(row[c]) == "" {
				if seen[c] {
					row[c] = last[c]
				}
				continue
			}
			last[c] = row[c]
			seen[c] = true
		}
	}
}

// Clone returns a deep copy.
func (s *Sheet) Clone() *Sheet {
	c := NewSheet(s.Name, s.Header)
	c.Rows = make([][]string, len(s.Rows))
	for i, r := range s.Rows {
		c.Rows[i] = append([]string(nil), r...)
	}
	return c
}

// Workbook is an ordered set of sheets.
type Workbook struct {
	order  []string
	sheets map[string]*Sheet
}

// NewWorkbook creates a workbook holding the given sheets in order.
func NewWorkbook(sheets ...*Sheet) *Workbook {
	wb := &Workbook{sheets: make(map[string]*Sheet)}
	for _, s := range sheets {
		wb.Put(s)
	}
	return wb
}

// Put inserts a sheet or replaces the one with the same name, keeping its position.
func (wb *Workbook) Put(s *Sheet) {
	if _, ok := wb.sheets[s.Name]; !ok {
		wb.order = append(wb.order, s.Name)
	}
	wb.sheets[s.Name] = s
}

// Sheet returns the named sheet.
func (wb *Workbook) Sheet(name string) (*Sheet, bool) {
	s, ok := wb.sheets[name]
	return s, ok
}

// Remove drops the named sheet if present.
func (wb *Workbook) Remove(name string) {
	if _, ok := wb.sheets[name]; !ok {
		return
	}
	delete(wb.sheets, name)
	for i, n := range wb.order {
		if n == name {
			wb.order = append(wb.order[:i], wb.order[i+1:]...)
			break
		}
	}
}

// Names returns sheet names in insertion order.
func (wb *Workbook) Names() []string {
	return append([]string(nil), wb.order...)
}

// Sheets returns the sheets in insertion order.
func (wb *Workbook) Sheets() []*Sheet {
	out := make([]*Sheet, 0, len(wb.order))
	for _, n := range wb.order {
		out = append(out, wb.sheets[n])
	}
	return out
}
