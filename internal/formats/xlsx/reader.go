// Package xlsx loads .xlsx templates, fills a single column with copy
// values, and reads workbooks back for inspection. Built on excelize; a
// loaded template keeps all sheets, styles, widths, and merged ranges, so
// saving after a fill leaves everything but the target cells untouched.
package xlsx

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// Sheet holds a single worksheet's cell values.
type Sheet struct {
	Name string     `json:"name"`
	Rows [][]string `json:"rows"`
}

// Workbook is the structured contents of an .xlsx file.
type Workbook struct {
	// Active is the name of the sheet a fill would target.
	Active string  `json:"active"`
	Sheets []Sheet `json:"sheets"`
}

// ReadFile reads an .xlsx file into a Workbook. Used to inspect templates
// and to verify fill output.
func ReadFile(path string) (*Workbook, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s — check that the path is correct", ErrTemplateNotFound, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open %s — is this a valid .xlsx file? (%v)", ErrTemplateFormat, path, err)
	}
	defer f.Close()

	wb := &Workbook{
		Active: f.GetSheetName(f.GetActiveSheetIndex()),
	}

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("could not read sheet %q: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rows})
	}

	return wb, nil
}

// GetSheet returns a sheet by name, or an error naming the sheets that do exist.
func (wb *Workbook) GetSheet(name string) (*Sheet, error) {
	for i := range wb.Sheets {
		if wb.Sheets[i].Name == name {
			return &wb.Sheets[i], nil
		}
	}

	available := make([]string, len(wb.Sheets))
	for i, s := range wb.Sheets {
		available[i] = s.Name
	}
	return nil, fmt.Errorf("sheet %q not found — available sheets: %v", name, available)
}

// ActiveSheet returns the sheet a fill would write into.
func (wb *Workbook) ActiveSheet() (*Sheet, error) {
	return wb.GetSheet(wb.Active)
}

// Cell returns the value at the given 1-based row and column of the sheet,
// or "" when the coordinates fall outside the populated range.
func (s *Sheet) Cell(row, column int) string {
	if row < 1 || column < 1 || row > len(s.Rows) {
		return ""
	}
	r := s.Rows[row-1]
	if column > len(r) {
		return ""
	}
	return r[column-1]
}

// RowCount returns the number of rows with at least one non-empty cell.
func (s *Sheet) RowCount() int {
	count := 0
	for _, row := range s.Rows {
		for _, cell := range row {
			if cell != "" {
				count++
				break
			}
		}
	}
	return count
}
