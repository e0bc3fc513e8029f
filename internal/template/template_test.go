package template

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/copykit/internal/formats/xlsx"
)

// newWorkbook writes a minimal .xlsx file and returns its path.
func newWorkbook(t *testing.T, dir, name string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("could not write workbook: %v", err)
	}
	return path
}

func TestEnsureDefaultCreatesWorkbook(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates", DefaultFilename)

	got, err := EnsureDefault(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != path {
		t.Errorf("expected %s, got %s", path, got)
	}

	wb, err := xlsx.ReadFile(path)
	if err != nil {
		t.Fatalf("generated template is not readable: %v", err)
	}
	if len(wb.Sheets) != 1 {
		t.Errorf("expected 1 sheet, got %d", len(wb.Sheets))
	}

	// The generated template must be fillable like any other.
	out := filepath.Join(dir, "out.xlsx")
	count, err := xlsx.FillColumn(path, out, []string{"文案一", "文案二"}, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected 2 values written, got %d", count)
	}
}

func TestEnsureDefaultKeepsExisting(t *testing.T) {
	dir := t.TempDir()

	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetCellValue(sheet, "B1", "keep me"); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, DefaultFilename)
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if _, err := EnsureDefault(path); err != nil {
		t.Fatal(err)
	}

	wb, err := xlsx.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s, err := wb.ActiveSheet()
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Cell(1, 2); got != "keep me" {
		t.Errorf("existing template was overwritten: B1 = %q", got)
	}
}

func TestLibraryAddAndList(t *testing.T) {
	dir := t.TempDir()
	path := newWorkbook(t, dir, "promo.xlsx")

	lib, err := LoadLibrary(dir)
	if err != nil {
		t.Fatal(err)
	}

	entry, err := lib.Add("promo", "Spring promo layout", path)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Name != "promo" {
		t.Errorf("expected name 'promo', got %q", entry.Name)
	}
	if entry.Sheets != 1 {
		t.Errorf("expected 1 sheet, got %d", entry.Sheets)
	}
	if !filepath.IsAbs(entry.Path) {
		t.Errorf("expected absolute path, got %q", entry.Path)
	}

	entries := lib.List()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	got, err := lib.Get("promo")
	if err != nil {
		t.Fatal(err)
	}
	if got.Description != "Spring promo layout" {
		t.Errorf("unexpected description: %q", got.Description)
	}
}

func TestLibraryAddRejectsBadFile(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "broken.xlsx")
	if err := os.WriteFile(bad, []byte("not a workbook"), 0644); err != nil {
		t.Fatal(err)
	}

	lib, _ := LoadLibrary(dir)
	if _, err := lib.Add("broken", "", bad); !errors.Is(err, xlsx.ErrTemplateFormat) {
		t.Errorf("expected ErrTemplateFormat, got %v", err)
	}
	if len(lib.Entries) != 0 {
		t.Errorf("bad file must not be registered, got %d entries", len(lib.Entries))
	}
}

func TestLibraryAddRejectsPathLikeName(t *testing.T) {
	dir := t.TempDir()
	path := newWorkbook(t, dir, "t.xlsx")

	lib, _ := LoadLibrary(dir)
	for _, name := range []string{"", "sub/dir", "notes.xlsx"} {
		if _, err := lib.Add(name, "", path); err == nil {
			t.Errorf("expected error for name %q", name)
		}
	}
}

func TestLibraryDuplicate(t *testing.T) {
	dir := t.TempDir()
	path := newWorkbook(t, dir, "t.xlsx")

	lib, _ := LoadLibrary(dir)
	if _, err := lib.Add("weekly", "", path); err != nil {
		t.Fatal(err)
	}
	if _, err := lib.Add("weekly", "again", path); err == nil {
		t.Error("expected duplicate name to be rejected")
	} else if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLibraryRemove(t *testing.T) {
	dir := t.TempDir()
	path := newWorkbook(t, dir, "t.xlsx")

	lib, _ := LoadLibrary(dir)
	lib.Add("gone", "", path)

	if err := lib.Remove("gone"); err != nil {
		t.Fatal(err)
	}
	if len(lib.Entries) != 0 {
		t.Errorf("expected 0 entries after remove, got %d", len(lib.Entries))
	}
	if err := lib.Remove("gone"); err == nil {
		t.Error("expected error removing unknown template")
	}

	// Removing the registration must not delete the workbook itself.
	if _, err := os.Stat(path); err != nil {
		t.Errorf("workbook file was deleted: %v", err)
	}
}

func TestLibraryPersistence(t *testing.T) {
	dir := t.TempDir()
	path := newWorkbook(t, dir, "t.xlsx")

	lib, _ := LoadLibrary(dir)
	if _, err := lib.Add("kept", "survives reload", path); err != nil {
		t.Fatal(err)
	}

	reloaded, err := LoadLibrary(dir)
	if err != nil {
		t.Fatal(err)
	}
	entry, err := reloaded.Get("kept")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Description != "survives reload" {
		t.Errorf("unexpected description after reload: %q", entry.Description)
	}
}

func TestResolveEmptyProvisionsDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := Resolve(DefaultDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(path, home) {
		t.Errorf("default template outside test home: %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default template was not provisioned: %v", err)
	}
}

func TestResolveExistingPath(t *testing.T) {
	dir := t.TempDir()
	path := newWorkbook(t, dir, "mine.xlsx")

	got, err := Resolve(dir, path)
	if err != nil {
		t.Fatal(err)
	}
	if got != path {
		t.Errorf("expected %s, got %s", path, got)
	}
}

func TestResolveMissingPathPassesThrough(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "nope.xlsx")

	got, err := Resolve(dir, missing)
	if err != nil {
		t.Fatal(err)
	}
	if got != missing {
		t.Errorf("expected pass-through of %s, got %s", missing, got)
	}
}

func TestResolveLibraryName(t *testing.T) {
	dir := t.TempDir()
	path := newWorkbook(t, dir, "t.xlsx")

	lib, _ := LoadLibrary(dir)
	if _, err := lib.Add("named", "", path); err != nil {
		t.Fatal(err)
	}

	got, err := Resolve(dir, "named")
	if err != nil {
		t.Fatal(err)
	}
	abs, _ := filepath.Abs(path)
	if got != abs {
		t.Errorf("expected %s, got %s", abs, got)
	}

	if _, err := Resolve(dir, "unknown"); err == nil {
		t.Error("expected error for unknown template name")
	}
}
