package xlsx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Sentinel errors for the fill pipeline. Callers match with errors.Is to
// present each failure class with its own message.
var (
	// ErrTemplateNotFound means the template path does not exist or cannot be read.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrTemplateFormat means the template file is not a valid .xlsx workbook.
	ErrTemplateFormat = errors.New("invalid template")
	// ErrOutputWrite means the output file could not be created or replaced.
	ErrOutputWrite = errors.New("could not write output")
)

// FillColumn writes values down a single column of the template's active
// sheet, one row per value starting at startRow (1-based), and saves the
// result to outputPath. Everything else in the workbook — other columns,
// cell styles, column widths, merged ranges, and rows beyond the written
// range — is carried over untouched. Cell styles survive because only the
// value of each target cell is set.
//
// An empty values slice is fine: the output is a plain copy of the
// template. Returns the number of values written.
func FillColumn(templatePath, outputPath string, values []string, startRow, column int) (int, error) {
	if startRow < 1 {
		return 0, fmt.Errorf("start row must be 1 or greater, got %d", startRow)
	}
	if column < 1 {
		return 0, fmt.Errorf("column must be 1 or greater, got %d", column)
	}

	if _, err := os.Stat(templatePath); err != nil {
		return 0, fmt.Errorf("%w: %s — check that the path is correct", ErrTemplateNotFound, templatePath)
	}

	f, err := excelize.OpenFile(templatePath)
	if err != nil {
		return 0, fmt.Errorf("%w: could not open %s — is this a valid .xlsx file? (%v)", ErrTemplateFormat, templatePath, err)
	}
	defer f.Close()

	// The original template decides which sheet receives the copy: fills
	// always target the workbook's active sheet.
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(column, startRow+i)
		if err != nil {
			return 0, fmt.Errorf("invalid cell coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return 0, fmt.Errorf("could not set cell %s: %w", cell, err)
		}
	}

	if err := SaveAtomic(f, outputPath); err != nil {
		return 0, err
	}

	return len(values), nil
}

// SaveAtomic persists a workbook without ever leaving a partial file at
// path: the workbook is written to a temp file in the destination
// directory, then renamed over the target. Parent directories are created
// as needed.
func SaveAtomic(f *excelize.File, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: could not create directory %s (%v)", ErrOutputWrite, dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutputWrite, err)
	}
	tmpPath := tmp.Name()

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %s (%v)", ErrOutputWrite, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %s (%v)", ErrOutputWrite, path, err)
	}
	// CreateTemp opens 0600; give the final file regular file permissions.
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %s (%v)", ErrOutputWrite, path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: could not replace %s (%v)", ErrOutputWrite, path, err)
	}
	return nil
}
