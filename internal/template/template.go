// Package template manages the .xlsx workbooks that conversions fill.
// It provisions a built-in default template on first use and keeps a
// small named library so frequently used templates can be referenced
// by name instead of by path.
package template

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/copykit/internal/formats/xlsx"
)

// DefaultFilename is the file name of the generated default template.
const DefaultFilename = "copy_template.xlsx"

// copyColumnWidth is the width applied to column A of the default
// template so pasted copy stays readable without manual resizing.
const copyColumnWidth = 55.0

// Entry is a named template registered in the library.
type Entry struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Path        string    `json:"path"`
	Sheets      int       `json:"sheets"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Library manages the collection of registered templates on disk.
type Library struct {
	Dir     string  `json:"dir"`
	Entries []Entry `json:"entries"`
}

const libraryFile = "templates.json"

// DefaultDir returns the default template directory.
func DefaultDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".copykit", "templates")
}

// DefaultPath returns where the built-in default template lives.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), DefaultFilename)
}

// EnsureDefault makes sure the default template exists at path, generating
// it on first use. An empty path means the standard location returned by
// DefaultPath. The generated workbook is deliberately plain: one sheet
// with a widened copy column and nothing else, so a fill starting at row 1
// never collides with template content.
func EnsureDefault(path string) (string, error) {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetColWidth(sheet, "A", "A", copyColumnWidth); err != nil {
		return "", fmt.Errorf("could not build default template: %w", err)
	}
	if err := xlsx.SaveAtomic(f, path); err != nil {
		return "", fmt.Errorf("could not provision default template: %w", err)
	}
	return path, nil
}

// LoadLibrary loads the template library from the given directory.
func LoadLibrary(dir string) (*Library, error) {
	lib := &Library{Dir: dir}
	path := filepath.Join(dir, libraryFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lib, nil
		}
		return nil, fmt.Errorf("could not read template library: %w", err)
	}

	if err := json.Unmarshal(data, &lib.Entries); err != nil {
		return nil, fmt.Errorf("could not parse template library: %w", err)
	}
	return lib, nil
}

// Save persists the library to disk.
func (lib *Library) Save() error {
	if err := os.MkdirAll(lib.Dir, 0755); err != nil {
		return fmt.Errorf("could not create template directory: %w", err)
	}

	data, err := json.MarshalIndent(lib.Entries, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal template library: %w", err)
	}

	return os.WriteFile(filepath.Join(lib.Dir, libraryFile), data, 0644)
}

// Add registers a new template in the library. The file must be a valid
// .xlsx workbook; its sheet count is recorded for display.
func (lib *Library) Add(name, description, xlsxPath string) (*Entry, error) {
	if name == "" {
		return nil, fmt.Errorf("template name cannot be empty")
	}
	if looksLikePath(name) {
		return nil, fmt.Errorf("template name %q looks like a path — pick a plain name", name)
	}
	for _, e := range lib.Entries {
		if e.Name == name {
			return nil, fmt.Errorf("template %q already exists", name)
		}
	}

	absPath, err := filepath.Abs(xlsxPath)
	if err != nil {
		return nil, fmt.Errorf("could not resolve path: %w", err)
	}
	wb, err := xlsx.ReadFile(absPath)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entry := Entry{
		Name:        name,
		Description: description,
		Path:        absPath,
		Sheets:      len(wb.Sheets),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	lib.Entries = append(lib.Entries, entry)
	if err := lib.Save(); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Remove deletes a template from the library by name. The .xlsx file
// itself is left in place.
func (lib *Library) Remove(name string) error {
	for i, e := range lib.Entries {
		if e.Name == name {
			lib.Entries = append(lib.Entries[:i], lib.Entries[i+1:]...)
			return lib.Save()
		}
	}
	return fmt.Errorf("template %q not found", name)
}

// Get returns a template by name.
func (lib *Library) Get(name string) (*Entry, error) {
	for _, e := range lib.Entries {
		if e.Name == name {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("template %q not found", name)
}

// List returns all registered templates sorted by name.
func (lib *Library) List() []Entry {
	sorted := make([]Entry, len(lib.Entries))
	copy(sorted, lib.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// Resolve turns a template reference into a concrete file path. An empty
// reference provisions and returns the built-in default. A reference that
// exists on disk, or that looks like a path, is used as-is. Anything else
// is looked up by name in the library under dir.
func Resolve(dir, ref string) (string, error) {
	if ref == "" {
		return EnsureDefault("")
	}
	if _, err := os.Stat(ref); err == nil {
		return ref, nil
	}
	if looksLikePath(ref) {
		// Let the conversion report the missing file with full context.
		return ref, nil
	}

	lib, err := LoadLibrary(dir)
	if err != nil {
		return "", err
	}
	entry, err := lib.Get(ref)
	if err != nil {
		return "", fmt.Errorf("%w — register it with 'copykit template add' or pass a file path", err)
	}
	return entry.Path, nil
}

func looksLikePath(ref string) bool {
	return strings.ContainsAny(ref, `/\`) || strings.EqualFold(filepath.Ext(ref), ".xlsx")
}
