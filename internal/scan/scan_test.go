package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScanFindsTextFiles(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.txt", []byte("第一段\n\n第二段\n"))
	write(t, dir, "b.txt", []byte("single\n"))
	write(t, dir, "notes.md", []byte("ignored"))
	write(t, dir, "sub/deep.txt", []byte("hidden\n"))

	result, err := Scan(dir, Options{CountUnits: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(result.Files))
	}
	if result.TotalUnits != 3 {
		t.Errorf("total units = %d, want 3", result.TotalUnits)
	}
	// Sorted by path
	if result.Files[0].Name != "a.txt" || result.Files[1].Name != "b.txt" {
		t.Errorf("unexpected order: %s, %s", result.Files[0].Name, result.Files[1].Name)
	}
	if result.Files[0].Units != 2 {
		t.Errorf("a.txt units = %d, want 2", result.Files[0].Units)
	}
}

func TestScanRecursive(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "top.txt", []byte("a\n"))
	write(t, dir, "sub/deep.txt", []byte("b\n"))

	result, err := Scan(dir, Options{Recursive: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Files) != 2 {
		t.Errorf("expected 2 files with recursive scan, got %d", len(result.Files))
	}
}

func TestScanMarksConverted(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "done.txt", []byte("x\n"))
	write(t, dir, "done.xlsx", []byte("pretend workbook"))
	write(t, dir, "todo.txt", []byte("y\n"))

	result, err := Scan(dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Converted != 1 {
		t.Errorf("converted = %d, want 1", result.Converted)
	}
	for _, f := range result.Files {
		if f.Name == "done.txt" && !f.Converted {
			t.Error("done.txt should be marked converted")
		}
		if f.Name == "todo.txt" && f.Converted {
			t.Error("todo.txt should not be marked converted")
		}
	}
}

func TestScanReportsUndecodableFiles(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "legacy.txt", []byte{0xFF, 0xFE, 0x41, 0x00})

	result, err := Scan(dir, Options{CountUnits: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(result.Files))
	}
	if result.Files[0].Error == "" {
		t.Error("expected decode error to be reported")
	}
	if result.Files[0].Units != 0 {
		t.Errorf("units = %d, want 0 for undecodable file", result.Files[0].Units)
	}
}

func TestScanExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.txt", []byte("a\n"))
	write(t, dir, "b.text", []byte("b\n"))

	result, err := Scan(dir, Options{Extensions: []string{"text"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Files) != 1 || result.Files[0].Name != "b.text" {
		t.Errorf("unexpected files: %v", result.Files)
	}
}

func TestScanSizeFilter(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "small.txt", []byte("x"))
	write(t, dir, "big.txt", make([]byte, 1024))

	result, err := Scan(dir, Options{MinSize: 100})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Files) != 1 || result.Files[0].Name != "big.txt" {
		t.Errorf("unexpected files after size filter: %v", result.Files)
	}
}

func TestScanNotADirectory(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "a.txt", []byte("a\n"))

	if _, err := Scan(path, Options{}); err == nil {
		t.Error("expected error scanning a file")
	}
	if _, err := Scan(filepath.Join(dir, "missing"), Options{}); err == nil {
		t.Error("expected error scanning missing directory")
	}
}

func TestFindDuplicates(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "spring.txt", []byte("新品上市\n限时折扣\n"))
	write(t, dir, "spring_copy.txt", []byte("新品上市\n限时折扣\n"))
	write(t, dir, "other.txt", []byte("different\n"))

	result, err := Scan(dir, Options{WithHash: true})
	if err != nil {
		t.Fatal(err)
	}

	dupes := FindDuplicates(result.Files)
	if len(dupes.Groups) != 1 {
		t.Fatalf("expected 1 duplicate group, got %d", len(dupes.Groups))
	}
	if dupes.TotalDupes != 1 {
		t.Errorf("total dupes = %d, want 1", dupes.TotalDupes)
	}
	if len(dupes.Groups[0].Files) != 2 {
		t.Errorf("group size = %d, want 2", len(dupes.Groups[0].Files))
	}
}

func TestFindDuplicatesWithoutHashes(t *testing.T) {
	files := []FileInfo{{Path: "a.txt"}, {Path: "b.txt"}}
	dupes := FindDuplicates(files)
	if len(dupes.Groups) != 0 {
		t.Errorf("expected no groups without hashes, got %d", len(dupes.Groups))
	}
}
